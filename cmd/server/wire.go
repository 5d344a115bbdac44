//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/Azamsaif47/Alfred-app/internal/config"
	"github.com/Azamsaif47/Alfred-app/internal/domain/agent"
	"github.com/Azamsaif47/Alfred-app/internal/domain/chat"
	"github.com/Azamsaif47/Alfred-app/internal/domain/citation"
	"github.com/Azamsaif47/Alfred-app/internal/domain/conversation"
	"github.com/Azamsaif47/Alfred-app/internal/domain/history"
	"github.com/Azamsaif47/Alfred-app/internal/infrastructure/llmprovider"
	"github.com/Azamsaif47/Alfred-app/internal/infrastructure/metrics"
	conversationrepo "github.com/Azamsaif47/Alfred-app/internal/infrastructure/repository/conversation"
	"github.com/Azamsaif47/Alfred-app/internal/interfaces/httpserver"
	"github.com/Azamsaif47/Alfred-app/internal/interfaces/httpserver/handlers"
)

var infrastructureSet = wire.NewSet(
	newGormDB,
	newHistoryCache,
	chatCache,
	cacheInvalidator,
	conversationrepo.NewRepository,
	wire.Bind(new(conversation.Repository), new(*conversationrepo.Repository)),
	llmprovider.NewProvider,
	newToolClient,
	metrics.NewRecorder,
	wire.Bind(new(citation.Recorder), new(metrics.Recorder)),
	wire.Bind(new(history.Recorder), new(metrics.Recorder)),
	wire.Bind(new(agent.Recorder), new(metrics.Recorder)),
	wire.Bind(new(chat.Recorder), new(metrics.Recorder)),
)

var domainSet = wire.NewSet(
	newCitationParser,
	newClassifier,
	history.NewReconstructor,
	newOrchestrator,
	wire.Bind(new(chat.Runner), new(*agent.Orchestrator)),
	newConversationService,
	chat.NewService,
)

var interfaceSet = wire.NewSet(
	newSanitizer,
	wire.Bind(new(handlers.ChatService), new(*chat.Service)),
	wire.Bind(new(handlers.ThreadService), new(*conversation.Service)),
	handlers.NewProvider,
	newReadinessChecks,
	httpserver.New,
)

// BuildApplication assembles the service with Wire.
func BuildApplication(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Application, func(), error) {
	wire.Build(
		infrastructureSet,
		domainSet,
		interfaceSet,
		NewApplication,
	)
	return nil, nil, nil
}
