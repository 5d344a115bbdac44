package handlers

import (
	"github.com/rs/zerolog"

	"github.com/Azamsaif47/Alfred-app/internal/infrastructure/telemetry"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Chat   *ChatHandler
	Thread *ThreadHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(chatService ChatService, threadService ThreadService, sanitizer *telemetry.Sanitizer, log zerolog.Logger) *Provider {
	return &Provider{
		Chat:   NewChatHandler(chatService, sanitizer, log),
		Thread: NewThreadHandler(threadService, log),
	}
}
