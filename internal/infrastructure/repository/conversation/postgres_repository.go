package conversation

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	domain "github.com/Azamsaif47/Alfred-app/internal/domain/conversation"
	"github.com/Azamsaif47/Alfred-app/internal/infrastructure/database/entities"
	"github.com/Azamsaif47/Alfred-app/internal/utils/platformerrors"
)

// Repository persists threads and their messages.
type Repository struct {
	db *gorm.DB
}

var _ domain.Repository = (*Repository)(nil)

// NewRepository builds a conversation repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func storageError(ctx context.Context, message string, err error) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, message, err, "")
}

func notFound(ctx context.Context, conversationID string) error {
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound,
		fmt.Sprintf("thread not found: %s", conversationID), nil, "",
		map[string]any{"conversation_id": conversationID})
}

// AppendTurn inserts one message. Each append is its own transaction.
func (r *Repository) AppendTurn(ctx context.Context, turn domain.NewTurn) (*domain.Turn, error) {
	if !turn.Role.Valid() {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unsupported turn role %q", turn.Role), nil, "")
	}

	metadata, err := marshalMetadata(turn.Metadata)
	if err != nil {
		return nil, storageError(ctx, "failed to encode turn metadata", err)
	}

	entity := entities.Message{
		ThreadID:         turn.ConversationID,
		Role:             string(turn.Role),
		MessageContent:   turn.Content,
		ResponseMetadata: metadata,
		MessageID:        turn.GroupID,
	}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return nil, storageError(ctx, "failed to append turn", err)
	}

	stored := entity.EtoD()
	return &stored, nil
}

// ConversationExists reports whether a thread row exists.
func (r *Repository) ConversationExists(ctx context.Context, conversationID string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Thread{}).
		Where("thread_id = ?", conversationID).
		Count(&count).Error; err != nil {
		return false, storageError(ctx, "failed to check thread", err)
	}
	return count > 0, nil
}

// CreateConversation inserts the thread row.
func (r *Repository) CreateConversation(ctx context.Context, conversationID, displayName string) (*domain.Conversation, error) {
	entity := entities.Thread{ThreadID: conversationID, Name: displayName}
	if err := r.db.WithContext(ctx).Create(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict,
				"thread already exists", err, "")
		}
		return nil, storageError(ctx, "failed to create thread", err)
	}
	return entity.EtoD(), nil
}

// DeleteConversation removes every message and then the thread in a single
// transaction. Any failure rolls both back.
func (r *Repository) DeleteConversation(ctx context.Context, conversationID string) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var thread entities.Thread
		if err := tx.Where("thread_id = ?", conversationID).First(&thread).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFound(ctx, conversationID)
			}
			return storageError(ctx, "failed to fetch thread", err)
		}

		messages := tx.Where("thread_id = ?", conversationID).Delete(&entities.Message{})
		if messages.Error != nil {
			return storageError(ctx, "failed to delete messages", messages.Error)
		}
		deleted = messages.RowsAffected

		if err := tx.Where("thread_id = ?", conversationID).Delete(&entities.Thread{}).Error; err != nil {
			return storageError(ctx, "failed to delete thread", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

// RenameConversation updates the display name.
func (r *Repository) RenameConversation(ctx context.Context, conversationID, newName string) error {
	result := r.db.WithContext(ctx).
		Model(&entities.Thread{}).
		Where("thread_id = ?", conversationID).
		Update("name", newName)
	if result.Error != nil {
		return storageError(ctx, "failed to rename thread", result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound(ctx, conversationID)
	}
	return nil
}

// ListTurns returns the messages of a thread in insertion order.
func (r *Repository) ListTurns(ctx context.Context, conversationID string) ([]domain.Turn, error) {
	var rows []entities.Message
	if err := r.db.WithContext(ctx).
		Where("thread_id = ?", conversationID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, storageError(ctx, "failed to list turns", err)
	}

	turns := make([]domain.Turn, 0, len(rows))
	for _, row := range rows {
		turns = append(turns, row.EtoD())
	}
	return turns, nil
}

// ListConversations returns every thread, oldest first.
func (r *Repository) ListConversations(ctx context.Context) ([]domain.Conversation, error) {
	var rows []entities.Thread
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, storageError(ctx, "failed to list threads", err)
	}

	result := make([]domain.Conversation, 0, len(rows))
	for _, row := range rows {
		result = append(result, *row.EtoD())
	}
	return result, nil
}

// FindConversation fetches a single thread.
func (r *Repository) FindConversation(ctx context.Context, conversationID string) (*domain.Conversation, error) {
	var entity entities.Thread
	if err := r.db.WithContext(ctx).Where("thread_id = ?", conversationID).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(ctx, conversationID)
		}
		return nil, storageError(ctx, "failed to fetch thread", err)
	}
	return entity.EtoD(), nil
}
