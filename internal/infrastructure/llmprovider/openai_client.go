package llmprovider

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/Azamsaif47/Alfred-app/internal/domain/llm"
)

// OpenAIClient implements llm.Provider with the go-openai SDK. It serves
// OpenAI itself and OpenAI-compatible servers such as Ollama.
type OpenAIClient struct {
	client *openai.Client
}

var _ llm.Provider = (*OpenAIClient)(nil)

// NewOpenAIClient builds the client. An empty baseURL targets api.openai.com.
func NewOpenAIClient(baseURL, apiKey string) *OpenAIClient {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(clientConfig)}
}

// CreateChatCompletion converts the request to the SDK shape and back.
func (c *OpenAIClient) CreateChatCompletion(ctx context.Context, req llm.ChatCompletionRequest) (*llm.ChatCompletionResponse, error) {
	request := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: toOpenAIMessages(req.Messages),
		Tools:    toOpenAITools(req.Tools),
	}
	if req.Temperature != nil {
		request.Temperature = *req.Temperature
	}

	resp, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, convertError(err, len(req.Tools) > 0)
	}
	return fromOpenAIResponse(resp), nil
}

func convertError(err error, sentTools bool) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return statusError(apiErr.HTTPStatusCode, apiErr.Message, sentTools)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return statusError(reqErr.HTTPStatusCode, reqErr.Error(), sentTools)
	}
	return fmt.Errorf("openai request: %w", err)
}

func toOpenAIMessages(messages []llm.ChatMessage) []openai.ChatCompletionMessage {
	result := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		converted := openai.ChatCompletionMessage{
			Role:       msg.Role,
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
		}
		for _, call := range msg.ToolCalls {
			converted.ToolCalls = append(converted.ToolCalls, openai.ToolCall{
				ID:   call.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      call.Function.Name,
					Arguments: call.Function.Arguments,
				},
			})
		}
		result = append(result, converted)
	}
	return result
}

func toOpenAITools(definitions []llm.ToolDefinition) []openai.Tool {
	if len(definitions) == 0 {
		return nil
	}
	tools := make([]openai.Tool, 0, len(definitions))
	for _, def := range definitions {
		tools = append(tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        def.Function.Name,
				Description: def.Function.Description,
				Parameters:  def.Function.Parameters,
			},
		})
	}
	return tools
}

func fromOpenAIResponse(resp openai.ChatCompletionResponse) *llm.ChatCompletionResponse {
	out := &llm.ChatCompletionResponse{
		ID:      resp.ID,
		Object:  resp.Object,
		Created: resp.Created,
		Model:   resp.Model,
		Usage: &llm.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}
	for _, choice := range resp.Choices {
		message := llm.ChatMessage{
			Role:       choice.Message.Role,
			Content:    choice.Message.Content,
			ToolCallID: choice.Message.ToolCallID,
		}
		for _, call := range choice.Message.ToolCalls {
			message.ToolCalls = append(message.ToolCalls, llm.ToolCall{
				ID:   call.ID,
				Type: string(call.Type),
				Function: llm.ToolFunction{
					Name:      call.Function.Name,
					Arguments: call.Function.Arguments,
				},
			})
		}
		out.Choices = append(out.Choices, llm.ChatCompletionChoice{
			Index:        choice.Index,
			Message:      message,
			FinishReason: string(choice.FinishReason),
		})
	}
	return out
}
