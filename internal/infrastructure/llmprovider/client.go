package llmprovider

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/Azamsaif47/Alfred-app/internal/domain/llm"
)

// Client implements llm.Provider against an llm-api compatible
// /v1/chat/completions endpoint.
type Client struct {
	httpClient *resty.Client
}

// Ensure interface compliance.
var _ llm.Provider = (*Client)(nil)

// NewClient creates a Resty-backed client. apiKey may be empty.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 75 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)
	if apiKey != "" {
		httpClient.SetAuthToken(apiKey)
	}
	return &Client{httpClient: httpClient}
}

// CreateChatCompletion calls /v1/chat/completions without streaming.
func (c *Client) CreateChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	req.Stream = false

	var completion llm.ChatCompletionResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&completion).
		Post("/v1/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("llm api request: %w", err)
	}

	if resp.IsError() {
		return nil, statusError(resp.StatusCode(), resp.String(), len(req.Tools) > 0)
	}
	return &completion, nil
}

// statusError converts a non-2xx reply. A tool rejection is reported as
// llm.ErrToolsUnsupported so the caller can retry without tools.
func statusError(code int, body string, sentTools bool) error {
	statusErr := &llm.StatusError{StatusCode: code, Body: body}
	if sentTools && llm.RejectsTools(code, body) {
		return fmt.Errorf("%w: %w", llm.ErrToolsUnsupported, statusErr)
	}
	return statusErr
}
