// Package conversationtest provides an in-memory conversation.Repository for tests.
package conversationtest

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/Azamsaif47/Alfred-app/internal/domain/conversation"
	"github.com/Azamsaif47/Alfred-app/internal/utils/platformerrors"
)

// MemoryRepository keeps conversations and turns in maps. Set AppendErr to
// make every AppendTurn fail.
type MemoryRepository struct {
	mu            sync.Mutex
	conversations map[string]conversation.Conversation
	turns         map[string][]conversation.Turn
	nextSequence  uint

	AppendErr error
}

var _ conversation.Repository = (*MemoryRepository)(nil)

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		conversations: map[string]conversation.Conversation{},
		turns:         map[string][]conversation.Turn{},
	}
}

func notFound(ctx context.Context) error {
	return platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeNotFound, "conversation not found", nil, "")
}

func (r *MemoryRepository) AppendTurn(ctx context.Context, turn conversation.NewTurn) (*conversation.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.AppendErr != nil {
		return nil, r.AppendErr
	}
	if _, ok := r.conversations[turn.ConversationID]; !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeDatabaseError, "conversation does not exist", nil, "")
	}

	metadata := "{}"
	if turn.Metadata != nil {
		raw, err := json.Marshal(turn.Metadata)
		if err != nil {
			return nil, err
		}
		metadata = string(raw)
	}

	r.nextSequence++
	stored := conversation.Turn{
		SequenceID:     r.nextSequence,
		ConversationID: turn.ConversationID,
		Role:           turn.Role,
		Content:        turn.Content,
		Metadata:       metadata,
		GroupID:        turn.GroupID,
		CreatedAt:      time.Now(),
	}
	r.turns[turn.ConversationID] = append(r.turns[turn.ConversationID], stored)
	return &stored, nil
}

// SeedTurn stores a turn verbatim, including loosely formatted metadata.
func (r *MemoryRepository) SeedTurn(turn conversation.Turn) conversation.Turn {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextSequence++
	turn.SequenceID = r.nextSequence
	r.turns[turn.ConversationID] = append(r.turns[turn.ConversationID], turn)
	return turn
}

func (r *MemoryRepository) ConversationExists(_ context.Context, conversationID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.conversations[conversationID]
	return ok, nil
}

func (r *MemoryRepository) CreateConversation(ctx context.Context, conversationID, displayName string) (*conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conversations[conversationID]; ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository, platformerrors.ErrorTypeConflict, "thread already exists", nil, "")
	}
	now := time.Now()
	conv := conversation.Conversation{ID: conversationID, DisplayName: displayName, CreatedAt: now, UpdatedAt: now}
	r.conversations[conversationID] = conv
	return &conv, nil
}

func (r *MemoryRepository) DeleteConversation(ctx context.Context, conversationID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conversations[conversationID]; !ok {
		return 0, notFound(ctx)
	}
	deleted := int64(len(r.turns[conversationID]))
	delete(r.turns, conversationID)
	delete(r.conversations, conversationID)
	return deleted, nil
}

func (r *MemoryRepository) RenameConversation(ctx context.Context, conversationID, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[conversationID]
	if !ok {
		return notFound(ctx)
	}
	conv.DisplayName = newName
	conv.UpdatedAt = time.Now()
	r.conversations[conversationID] = conv
	return nil
}

func (r *MemoryRepository) ListTurns(_ context.Context, conversationID string) ([]conversation.Turn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	turns := make([]conversation.Turn, len(r.turns[conversationID]))
	copy(turns, r.turns[conversationID])
	return turns, nil
}

func (r *MemoryRepository) ListConversations(_ context.Context) ([]conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]conversation.Conversation, 0, len(r.conversations))
	for _, conv := range r.conversations {
		result = append(result, conv)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r *MemoryRepository) FindConversation(ctx context.Context, conversationID string) (*conversation.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conv, ok := r.conversations[conversationID]
	if !ok {
		return nil, notFound(ctx)
	}
	return &conv, nil
}
