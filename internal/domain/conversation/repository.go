package conversation

import "context"

// Repository is the persistence gateway for conversations and their turns.
type Repository interface {
	AppendTurn(ctx context.Context, turn NewTurn) (*Turn, error)
	ConversationExists(ctx context.Context, conversationID string) (bool, error)
	CreateConversation(ctx context.Context, conversationID, displayName string) (*Conversation, error)
	// DeleteConversation removes the conversation and all its turns in one
	// transaction and returns the number of turns removed.
	DeleteConversation(ctx context.Context, conversationID string) (int64, error)
	RenameConversation(ctx context.Context, conversationID, newName string) error
	// ListTurns returns turns in sequence order; an empty slice when there are none.
	ListTurns(ctx context.Context, conversationID string) ([]Turn, error)
	ListConversations(ctx context.Context) ([]Conversation, error)
	FindConversation(ctx context.Context, conversationID string) (*Conversation, error)
}

// CacheInvalidator drops any cached view of a conversation's history.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, conversationID string) error
}
