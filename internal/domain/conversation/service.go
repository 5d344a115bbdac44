package conversation

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Azamsaif47/Alfred-app/internal/utils/platformerrors"
)

const maxDisplayNameLength = 255

type nopInvalidator struct{}

func (nopInvalidator) Invalidate(context.Context, string) error { return nil }

// Service manages the conversation lifecycle: creation, listing, renaming and
// cascading deletion.
type Service struct {
	repo        Repository
	cache       CacheInvalidator
	defaultName string
	log         zerolog.Logger
}

// NewService wires dependencies. cache may be nil when no history cache is configured.
func NewService(repo Repository, cache CacheInvalidator, defaultName string, log zerolog.Logger) *Service {
	if cache == nil {
		cache = nopInvalidator{}
	}
	if strings.TrimSpace(defaultName) == "" {
		defaultName = "new_chat"
	}
	return &Service{
		repo:        repo,
		cache:       cache,
		defaultName: defaultName,
		log:         log.With().Str("component", "conversation-service").Logger(),
	}
}

// Create starts an empty conversation with a fresh id.
func (s *Service) Create(ctx context.Context, displayName string) (*Conversation, error) {
	name, err := s.normalizeName(ctx, displayName, true)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateConversation(ctx, uuid.NewString(), name)
}

// List returns every conversation ordered by creation time.
func (s *Service) List(ctx context.Context) ([]Conversation, error) {
	return s.repo.ListConversations(ctx)
}

// Get returns a single conversation.
func (s *Service) Get(ctx context.Context, conversationID string) (*Conversation, error) {
	return s.repo.FindConversation(ctx, conversationID)
}

// EnsureExists creates the conversation on its first message. It reports
// whether a new conversation was created.
func (s *Service) EnsureExists(ctx context.Context, conversationID, displayName string) (bool, error) {
	exists, err := s.repo.ConversationExists(ctx, conversationID)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	name, err := s.normalizeName(ctx, displayName, true)
	if err != nil {
		return false, err
	}
	if _, err := s.repo.CreateConversation(ctx, conversationID, name); err != nil {
		// A concurrent first message created it between the check and the insert.
		if platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict) {
			return false, nil
		}
		return false, err
	}
	s.log.Info().Str("conversation_id", conversationID).Msg("conversation created on first message")
	return true, nil
}

// Rename changes the display name.
func (s *Service) Rename(ctx context.Context, conversationID, newName string) error {
	name, err := s.normalizeName(ctx, newName, false)
	if err != nil {
		return err
	}
	return s.repo.RenameConversation(ctx, conversationID, name)
}

// Delete removes the conversation and all of its turns. When expectedName is
// set it must equal the stored display name, which guards against deleting
// the wrong thread from a stale client.
func (s *Service) Delete(ctx context.Context, conversationID, expectedName string) (int64, error) {
	if expectedName = strings.TrimSpace(expectedName); expectedName != "" {
		conv, err := s.repo.FindConversation(ctx, conversationID)
		if err != nil {
			return 0, err
		}
		if conv.DisplayName != expectedName {
			return 0, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeConflict,
				"conversation name does not match", nil, "",
				map[string]any{"conversation_id": conversationID})
		}
	}

	deleted, err := s.repo.DeleteConversation(ctx, conversationID)
	if err != nil {
		return 0, err
	}

	if err := s.cache.Invalidate(ctx, conversationID); err != nil {
		s.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("invalidate history cache")
	}
	s.log.Info().
		Str("conversation_id", conversationID).
		Int64("deleted_turns", deleted).
		Msg("conversation deleted")
	return deleted, nil
}

func (s *Service) normalizeName(ctx context.Context, raw string, allowDefault bool) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		if allowDefault {
			return s.defaultName, nil
		}
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"conversation name is required", nil, "")
	}
	if len(name) > maxDisplayNameLength {
		return "", platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			fmt.Sprintf("conversation name exceeds %d characters", maxDisplayNameLength), nil, "")
	}
	return name, nil
}
