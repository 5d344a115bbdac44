package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "alfred-api", cfg.ServiceName)
	assert.Equal(t, ":8000", cfg.Addr())
	assert.Equal(t, 5, cfg.HumanWindow)
	assert.Equal(t, 3, cfg.ToolWindow)
	assert.Equal(t, 1, cfg.AIWindow)
	assert.Equal(t, 2, cfg.CitationWindow)
	assert.Equal(t, 2, cfg.MaxEmptyRetries)
	assert.Equal(t, LLMBackendLLMAPI, cfg.LLMBackend)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.HistoryCacheEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CLASSIFIER_HUMAN_WINDOW", "7")
	t.Setenv("AGENT_RUN_TIMEOUT", "30s")
	t.Setenv("LLM_BACKEND", "openai")
	t.Setenv("HISTORY_CACHE_REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.HumanWindow)
	assert.Equal(t, 30*time.Second, cfg.AgentRunTimeout)
	assert.Equal(t, LLMBackendOpenAI, cfg.LLMBackend)
	assert.True(t, cfg.HistoryCacheEnabled())
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "zero tool window", key: "CLASSIFIER_TOOL_WINDOW", value: "0"},
		{name: "negative citation window", key: "CITATION_RECENT_WINDOW", value: "-1"},
		{name: "unknown backend", key: "LLM_BACKEND", value: "carrier-pigeon"},
		{name: "not a number", key: "CLASSIFIER_AI_WINDOW", value: "one"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
