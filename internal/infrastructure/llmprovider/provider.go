package llmprovider

import (
	"fmt"

	"github.com/Azamsaif47/Alfred-app/internal/config"
	"github.com/Azamsaif47/Alfred-app/internal/domain/llm"
)

// NewProvider selects the completion backend named by LLM_BACKEND.
func NewProvider(cfg *config.Config) (llm.Provider, error) {
	switch cfg.LLMBackend {
	case config.LLMBackendLLMAPI:
		return NewClient(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMTimeout), nil
	case config.LLMBackendOpenAI:
		return NewOpenAIClient(cfg.LLMAPIURL, cfg.LLMAPIKey), nil
	default:
		return nil, fmt.Errorf("unsupported llm backend %q", cfg.LLMBackend)
	}
}
