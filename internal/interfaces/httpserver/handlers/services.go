package handlers

import (
	"context"

	"github.com/Azamsaif47/Alfred-app/internal/domain/chat"
	"github.com/Azamsaif47/Alfred-app/internal/domain/conversation"
	"github.com/Azamsaif47/Alfred-app/internal/domain/history"
)

// ChatService is the pipeline behind the run and history endpoints.
type ChatService interface {
	SubmitMessage(ctx context.Context, userText, conversationID, displayName string) (*chat.Reply, error)
	GetHistory(ctx context.Context, conversationID string) (*history.History, error)
}

// ThreadService manages thread lifecycle.
type ThreadService interface {
	Create(ctx context.Context, displayName string) (*conversation.Conversation, error)
	List(ctx context.Context) ([]conversation.Conversation, error)
	Rename(ctx context.Context, conversationID, newName string) error
	Delete(ctx context.Context, conversationID, expectedName string) (int64, error)
}

var (
	_ ChatService   = (*chat.Service)(nil)
	_ ThreadService = (*conversation.Service)(nil)
)
