package agent

import (
	"context"
	"strings"

	"github.com/Azamsaif47/Alfred-app/internal/domain/llm"
)

// MCPClient abstracts the tool server: the retriever plus the business tools.
type MCPClient interface {
	ListTools(ctx context.Context) ([]Tool, error)
	CallTool(ctx context.Context, name string, args map[string]any) (*ToolResult, error)
}

// Tool describes one callable tool advertised by the tool server.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// Definition converts tool metadata into an OpenAI-compatible definition.
func (t Tool) Definition() llm.ToolDefinition {
	params := t.InputSchema
	if params == nil {
		params = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	return llm.ToolDefinition{
		Type: "function",
		Function: llm.ToolFunctionSchema{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  params,
		},
	}
}

// ToolResult is the outcome of one tool call.
type ToolResult struct {
	Content []ToolContent `json:"content"`
	IsError bool          `json:"isError"`
}

// ToolContent is one content block of a tool result.
type ToolContent struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Text joins the text blocks of the result.
func (r *ToolResult) Text() string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	for _, c := range r.Content {
		if c.Type != "text" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(c.Text)
	}
	return sb.String()
}

// Recorder observes agent runs, typically for metrics.
type Recorder interface {
	ToolCalled(tool string, failed bool)
	EmptyOutputRetried()
}

type nopRecorder struct{}

func (nopRecorder) ToolCalled(string, bool) {}
func (nopRecorder) EmptyOutputRetried() {}
