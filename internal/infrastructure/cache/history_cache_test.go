package cache

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUniversalOptions(t *testing.T) {
	opts, err := buildUniversalOptions("redis://:secret@cache:6380/2")
	require.NoError(t, err)
	assert.Equal(t, []string{"cache:6380"}, opts.Addrs)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	opts, err = buildUniversalOptions("node-a:6379, node-b:6379")
	require.NoError(t, err)
	assert.Equal(t, []string{"node-a:6379", "node-b:6379"}, opts.Addrs)
	assert.Zero(t, opts.DB)

	_, err = buildUniversalOptions(" , ")
	assert.Error(t, err)
}

func TestHistoryKeyIsVersioned(t *testing.T) {
	assert.Equal(t, "alfred:v1:history:thread-1", historyKey("thread-1"))
}

func TestNewHistoryCacheFailsWhenUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := NewHistoryCache(ctx, "127.0.0.1:1", time.Minute, zerolog.Nop())
	assert.Error(t, err)
}
