// Package cache keeps reconstructed conversation histories in Redis between writes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Azamsaif47/Alfred-app/internal/domain/history"
)

const keyVersion = "v1"

// HistoryCache implements chat.HistoryCache and conversation.CacheInvalidator.
type HistoryCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	log    zerolog.Logger
}

// NewHistoryCache connects to the addresses in addrs, a comma separated list
// of host:port pairs or redis:// URLs.
func NewHistoryCache(ctx context.Context, addrs string, ttl time.Duration, log zerolog.Logger) (*HistoryCache, error) {
	opts, err := buildUniversalOptions(addrs)
	if err != nil {
		return nil, fmt.Errorf("parse redis address: %w", err)
	}
	client := redis.NewUniversalClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	cache := newHistoryCache(client, ttl, log)
	cache.log.Info().Strs("addrs", opts.Addrs).Dur("ttl", ttl).Msg("history cache connected")
	return cache, nil
}

func newHistoryCache(client redis.UniversalClient, ttl time.Duration, log zerolog.Logger) *HistoryCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &HistoryCache{
		client: client,
		ttl:    ttl,
		log:    log.With().Str("component", "history-cache").Logger(),
	}
}

func historyKey(conversationID string) string {
	return fmt.Sprintf("alfred:%s:history:%s", keyVersion, conversationID)
}

// Get returns the cached history, reporting false on a miss.
func (c *HistoryCache) Get(ctx context.Context, conversationID string) (*history.History, bool, error) {
	raw, err := c.client.Get(ctx, historyKey(conversationID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var h history.History
	if err := json.Unmarshal(raw, &h); err != nil {
		c.log.Warn().Err(err).Str("conversation_id", conversationID).Msg("dropping undecodable cache entry")
		_ = c.client.Del(ctx, historyKey(conversationID)).Err()
		return nil, false, nil
	}
	return &h, true, nil
}

// Set stores the history with the configured TTL.
func (c *HistoryCache) Set(ctx context.Context, conversationID string, h *history.History) error {
	raw, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}
	return c.client.Set(ctx, historyKey(conversationID), raw, c.ttl).Err()
}

// Invalidate drops the cached history of a conversation.
func (c *HistoryCache) Invalidate(ctx context.Context, conversationID string) error {
	return c.client.Del(ctx, historyKey(conversationID)).Err()
}

// Ping checks connectivity for readiness probes.
func (c *HistoryCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the client.
func (c *HistoryCache) Close() error {
	return c.client.Close()
}

func buildUniversalOptions(raw string) (*redis.UniversalOptions, error) {
	opts := &redis.UniversalOptions{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "://") {
			opts.Addrs = append(opts.Addrs, part)
			continue
		}

		parsed, err := redis.ParseURL(part)
		if err != nil {
			return nil, err
		}
		opts.Addrs = append(opts.Addrs, parsed.Addr)
		if opts.Username == "" {
			opts.Username = parsed.Username
		}
		if opts.Password == "" {
			opts.Password = parsed.Password
		}
		if opts.DB == 0 {
			opts.DB = parsed.DB
		}
		if opts.TLSConfig == nil {
			opts.TLSConfig = parsed.TLSConfig
		}
	}

	if len(opts.Addrs) == 0 {
		return nil, fmt.Errorf("no redis addresses provided")
	}
	if len(opts.Addrs) > 1 {
		opts.DB = 0
	}
	return opts, nil
}
