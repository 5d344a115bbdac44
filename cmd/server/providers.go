package main

import (
	"context"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/Azamsaif47/Alfred-app/internal/config"
	"github.com/Azamsaif47/Alfred-app/internal/domain/agent"
	"github.com/Azamsaif47/Alfred-app/internal/domain/chat"
	"github.com/Azamsaif47/Alfred-app/internal/domain/citation"
	"github.com/Azamsaif47/Alfred-app/internal/domain/classifier"
	"github.com/Azamsaif47/Alfred-app/internal/domain/conversation"
	"github.com/Azamsaif47/Alfred-app/internal/domain/llm"
	"github.com/Azamsaif47/Alfred-app/internal/domain/retry"
	"github.com/Azamsaif47/Alfred-app/internal/infrastructure/cache"
	"github.com/Azamsaif47/Alfred-app/internal/infrastructure/database"
	"github.com/Azamsaif47/Alfred-app/internal/infrastructure/mcp"
	"github.com/Azamsaif47/Alfred-app/internal/infrastructure/telemetry"
	"github.com/Azamsaif47/Alfred-app/internal/interfaces/httpserver/routes"
)

func newGormDB(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*gorm.DB, func(), error) {
	db, err := database.Connect(ctx, database.ConfigFrom(cfg), log)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(ctx, db, log); err != nil {
		_ = database.Close(db)
		return nil, nil, err
	}
	cleanup := func() {
		if err := database.Close(db); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}
	return db, cleanup, nil
}

// newHistoryCache returns a nil cache when no redis address is configured.
func newHistoryCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*cache.HistoryCache, func(), error) {
	if !cfg.HistoryCacheEnabled() {
		log.Info().Msg("history cache disabled")
		return nil, func() {}, nil
	}
	historyCache, err := cache.NewHistoryCache(ctx, cfg.HistoryCacheRedisAddr, cfg.HistoryCacheTTL, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := historyCache.Close(); err != nil {
			log.Error().Err(err).Msg("close history cache")
		}
	}
	return historyCache, cleanup, nil
}

func chatCache(historyCache *cache.HistoryCache) chat.HistoryCache {
	if historyCache == nil {
		return nil
	}
	return historyCache
}

func cacheInvalidator(historyCache *cache.HistoryCache) conversation.CacheInvalidator {
	if historyCache == nil {
		return nil
	}
	return historyCache
}

func newCitationParser(cfg *config.Config, recorder citation.Recorder, log zerolog.Logger) *citation.Parser {
	return citation.NewParser(log, cfg.CitationWindow, recorder)
}

func newClassifier(cfg *config.Config) *classifier.Classifier {
	return classifier.New(classifier.Windows{
		Human: cfg.HumanWindow,
		Tool:  cfg.ToolWindow,
		AI:    cfg.AIWindow,
	})
}

// newToolClient returns nil when no tool server is configured, which runs the
// agent without tools.
func newToolClient(cfg *config.Config) agent.MCPClient {
	if cfg.MCPToolsURL == "" {
		return nil
	}
	return mcp.NewClient(cfg.MCPToolsURL, cfg.ToolTimeout)
}

func newOrchestrator(cfg *config.Config, provider llm.Provider, tools agent.MCPClient, recorder agent.Recorder, log zerolog.Logger) *agent.Orchestrator {
	return agent.NewOrchestrator(provider, tools, agent.Config{
		Model:           cfg.LLMModel,
		Temperature:     cfg.LLMTemperature,
		SystemPrompt:    cfg.SystemPrompt,
		MaxDepth:        cfg.MaxToolDepth,
		ToolTimeout:     cfg.ToolTimeout,
		RunTimeout:      cfg.AgentRunTimeout,
		MaxEmptyRetries: cfg.MaxEmptyRetries,
		ContextLength:   cfg.LLMContextLength,
		LLMRetry:        retry.DefaultPolicy(),
	}, recorder, log)
}

func newConversationService(cfg *config.Config, repo conversation.Repository, invalidator conversation.CacheInvalidator, log zerolog.Logger) *conversation.Service {
	return conversation.NewService(repo, invalidator, cfg.DefaultThreadName, log)
}

func newSanitizer(cfg *config.Config) *telemetry.Sanitizer {
	return telemetry.NewSanitizer(cfg.LogContentLevel, cfg.ServiceName)
}

func newReadinessChecks(db *gorm.DB, historyCache *cache.HistoryCache) map[string]routes.ReadinessCheck {
	checks := map[string]routes.ReadinessCheck{
		"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
	}
	if historyCache != nil {
		checks["history_cache"] = historyCache.Ping
	}
	return checks
}
