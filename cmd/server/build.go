//go:build !wireinject

package main

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Azamsaif47/Alfred-app/internal/config"
	"github.com/Azamsaif47/Alfred-app/internal/domain/chat"
	"github.com/Azamsaif47/Alfred-app/internal/domain/history"
	"github.com/Azamsaif47/Alfred-app/internal/infrastructure/llmprovider"
	"github.com/Azamsaif47/Alfred-app/internal/infrastructure/metrics"
	conversationrepo "github.com/Azamsaif47/Alfred-app/internal/infrastructure/repository/conversation"
	"github.com/Azamsaif47/Alfred-app/internal/interfaces/httpserver"
	"github.com/Azamsaif47/Alfred-app/internal/interfaces/httpserver/handlers"
)

// BuildApplication assembles the service by hand in the same order as the
// injector in wire.go.
func BuildApplication(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Application, func(), error) {
	db, cleanupDB, err := newGormDB(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	historyCache, cleanupCache, err := newHistoryCache(ctx, cfg, log)
	if err != nil {
		cleanupDB()
		return nil, nil, err
	}
	cleanup := func() {
		cleanupCache()
		cleanupDB()
	}

	provider, err := llmprovider.NewProvider(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	recorder := metrics.NewRecorder()
	repo := conversationrepo.NewRepository(db)
	parser := newCitationParser(cfg, recorder, log)
	reconstructor := history.NewReconstructor(parser, recorder, log)
	orchestrator := newOrchestrator(cfg, provider, newToolClient(cfg), recorder, log)
	conversations := newConversationService(cfg, repo, cacheInvalidator(historyCache), log)
	chatService := chat.NewService(
		conversations,
		repo,
		orchestrator,
		newClassifier(cfg),
		parser,
		reconstructor,
		chatCache(historyCache),
		recorder,
		log,
	)

	handlerProvider := handlers.NewProvider(chatService, conversations, newSanitizer(cfg), log)
	httpServer := httpserver.New(cfg, log, handlerProvider, newReadinessChecks(db, historyCache))
	return NewApplication(httpServer, log), cleanup, nil
}
