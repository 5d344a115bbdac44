package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Azamsaif47/Alfred-app/internal/domain/conversation"
	"github.com/Azamsaif47/Alfred-app/internal/domain/llm"
	"github.com/Azamsaif47/Alfred-app/internal/domain/retry"
)

var (
	// ErrToolDepthExceeded is returned when the model keeps requesting tools past the depth limit.
	ErrToolDepthExceeded = errors.New("tool orchestration depth exceeded")

	// ErrEmptyResponse is returned when the model still produced no output after every nudge.
	ErrEmptyResponse = errors.New("agent produced no output")

	// ErrNoChoices is returned when the provider replied without any completion choice.
	ErrNoChoices = errors.New("llm returned no choices")
)

// emptyOutputNudge is sent when the model replies with nothing at all.
const emptyOutputNudge = "Respond with a real output."

// Config tunes one orchestrator.
type Config struct {
	Model           string
	Temperature     float32
	SystemPrompt    string
	MaxDepth        int
	ToolTimeout     time.Duration
	RunTimeout      time.Duration
	MaxEmptyRetries int
	ContextLength   int
	LLMRetry        retry.Policy
}

// RunParams is the input of a single agent run.
type RunParams struct {
	ConversationID string
	UserText       string
	// History is the stored transcript replayed to the model. Tool turns are skipped.
	History []conversation.Turn
}

// Orchestrator drives the model through tool calls until it answers.
type Orchestrator struct {
	provider llm.Provider
	tools    MCPClient
	cfg      Config
	recorder Recorder
	log      zerolog.Logger
}

// NewOrchestrator constructs an orchestrator. tools and recorder may be nil.
func NewOrchestrator(provider llm.Provider, tools MCPClient, cfg Config, recorder Recorder, log zerolog.Logger) *Orchestrator {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 8
	}
	if cfg.MaxEmptyRetries < 0 {
		cfg.MaxEmptyRetries = 0
	}
	if cfg.LLMRetry.RetryIf == nil {
		cfg.LLMRetry.RetryIf = llm.IsTransient
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Orchestrator{
		provider: provider,
		tools:    tools,
		cfg:      cfg,
		recorder: recorder,
		log:      log.With().Str("component", "agent-orchestrator").Logger(),
	}
}

// Run executes one agent round trip and returns the whole run sequence: the
// replayed history followed by the new human turn, every AI and tool turn the
// model produced, and the final AI answer. Nothing is returned on failure.
func (o *Orchestrator) Run(ctx context.Context, params RunParams) ([]conversation.RawTurn, error) {
	ctx, span := otel.Tracer("alfred-api/agent").Start(ctx, "agent.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("conversation.id", params.ConversationID),
			attribute.String("llm.model", o.cfg.Model),
			attribute.Int("history.turns", len(params.History)),
		),
	)
	defer span.End()

	run, err := o.run(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("run.turns", len(run)))
	return run, nil
}

func (o *Orchestrator) run(ctx context.Context, params RunParams) ([]conversation.RawTurn, error) {
	if o.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.RunTimeout)
		defer cancel()
	}

	log := o.log.With().Str("conversation_id", params.ConversationID).Logger()

	replayed, messages := o.replay(params.History)
	messages = append(messages, llm.ChatMessage{Role: llm.RoleUser, Content: params.UserText})
	messages, dropped := llm.TrimReplayedHistory(messages, o.cfg.ContextLength)
	if dropped > 0 {
		log.Debug().Int("dropped", dropped).Msg("trimmed replayed history to fit context")
	}

	run := append(replayed, conversation.RawTurn{
		Role:     conversation.RoleHuman,
		Content:  params.UserText,
		Metadata: map[string]any{},
	})

	definitions := o.toolDefinitions(ctx, log)
	emptyRetries := 0

	for depth := 0; depth < o.cfg.MaxDepth; {
		choice, model, usage, err := o.complete(ctx, messages, &definitions, log)
		if err != nil {
			return nil, err
		}
		message := choice.Message
		message.Role = llm.RoleAssistant

		if len(message.ToolCalls) == 0 && strings.TrimSpace(message.Content) == "" {
			if emptyRetries >= o.cfg.MaxEmptyRetries {
				return nil, fmt.Errorf("%w after %d retries", ErrEmptyResponse, emptyRetries)
			}
			emptyRetries++
			o.recorder.EmptyOutputRetried()
			log.Warn().Int("retry", emptyRetries).Msg("empty model output, nudging")
			messages = append(messages, llm.ChatMessage{Role: llm.RoleUser, Content: emptyOutputNudge})
			continue
		}

		messages = append(messages, message)
		run = append(run, conversation.RawTurn{
			Role:     conversation.RoleAI,
			Content:  message.Content,
			Metadata: aiMetadata(model, choice.FinishReason, usage, message.ToolCalls),
		})

		if len(message.ToolCalls) == 0 {
			return run, nil
		}

		for _, call := range message.ToolCalls {
			content, metadata := o.callTool(ctx, call, log)
			messages = append(messages, llm.ChatMessage{Role: llm.RoleTool, Content: content, ToolCallID: call.ID})
			run = append(run, conversation.RawTurn{Role: conversation.RoleTool, Content: content, Metadata: metadata})
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		depth++
	}

	return nil, ErrToolDepthExceeded
}

// replay converts stored turns into model messages and run turns. Tool turns
// are not replayed because their tool-call context is not stored.
func (o *Orchestrator) replay(history []conversation.Turn) ([]conversation.RawTurn, []llm.ChatMessage) {
	var messages []llm.ChatMessage
	if prompt := strings.TrimSpace(o.cfg.SystemPrompt); prompt != "" {
		messages = append(messages, llm.ChatMessage{Role: llm.RoleSystem, Content: prompt})
	}

	run := make([]conversation.RawTurn, 0, len(history)+1)
	for _, turn := range history {
		var role string
		switch turn.Role {
		case conversation.RoleHuman:
			role = llm.RoleUser
		case conversation.RoleAI:
			role = llm.RoleAssistant
		default:
			continue
		}
		if strings.TrimSpace(turn.Content) == "" {
			continue
		}
		messages = append(messages, llm.ChatMessage{Role: role, Content: turn.Content})
		run = append(run, conversation.RawTurn{Role: turn.Role, Content: turn.Content})
	}
	return run, messages
}

func (o *Orchestrator) toolDefinitions(ctx context.Context, log zerolog.Logger) []llm.ToolDefinition {
	if o.tools == nil {
		return nil
	}
	tools, err := o.tools.ListTools(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("list tools failed, running without tools")
		return nil
	}
	definitions := make([]llm.ToolDefinition, 0, len(tools))
	for _, tool := range tools {
		definitions = append(definitions, tool.Definition())
	}
	return definitions
}

// complete calls the provider with retries on transient failures. When the
// model rejects tool definitions they are dropped for the rest of the run.
func (o *Orchestrator) complete(ctx context.Context, messages []llm.ChatMessage, definitions *[]llm.ToolDefinition, log zerolog.Logger) (llm.ChatCompletionChoice, string, *llm.Usage, error) {
	call := func(ctx context.Context, _ int) (*llm.ChatCompletionResponse, error) {
		temperature := o.cfg.Temperature
		return o.provider.CreateChatCompletion(ctx, llm.ChatCompletionRequest{
			Model:       o.cfg.Model,
			Messages:    messages,
			Tools:       *definitions,
			Temperature: &temperature,
		})
	}

	resp, err := retry.Do(ctx, o.cfg.LLMRetry, call)
	if err != nil && errors.Is(err, llm.ErrToolsUnsupported) && len(*definitions) > 0 {
		log.Warn().Err(err).Msg("llm provider rejected tool definitions, retrying without tools")
		*definitions = nil
		resp, err = retry.Do(ctx, o.cfg.LLMRetry, call)
	}
	if err != nil {
		return llm.ChatCompletionChoice{}, "", nil, fmt.Errorf("chat completion: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return llm.ChatCompletionChoice{}, "", nil, ErrNoChoices
	}
	return resp.Choices[0], resp.Model, resp.Usage, nil
}

// callTool executes one tool call. Failures become tool turns telling the
// model what went wrong so it can correct itself.
func (o *Orchestrator) callTool(ctx context.Context, call llm.ToolCall, log zerolog.Logger) (string, map[string]any) {
	metadata := map[string]any{
		"tool_call_id": call.ID,
		"tool_name":    call.Function.Name,
	}

	fail := func(err error) (string, map[string]any) {
		o.recorder.ToolCalled(call.Function.Name, true)
		log.Warn().Err(err).Str("tool", call.Function.Name).Msg("tool call failed")
		metadata["is_error"] = true
		return fmt.Sprintf("Error: %s\n Please fix your mistakes.", err.Error()), metadata
	}

	if o.tools == nil {
		return fail(fmt.Errorf("tool %q is not available", call.Function.Name))
	}

	args, err := call.Function.ParsedArguments()
	if err != nil {
		return fail(fmt.Errorf("invalid arguments for %s: %w", call.Function.Name, err))
	}

	callCtx := ctx
	if o.cfg.ToolTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.cfg.ToolTimeout)
		defer cancel()
	}

	start := time.Now()
	result, err := o.tools.CallTool(callCtx, call.Function.Name, args)
	if err != nil {
		return fail(err)
	}
	if result != nil && result.IsError {
		return fail(errors.New(firstNonEmpty(result.Text(), "tool execution returned an error")))
	}

	o.recorder.ToolCalled(call.Function.Name, false)
	log.Debug().
		Str("tool", call.Function.Name).
		Dur("duration", time.Since(start)).
		Msg("tool call completed")
	return result.Text(), metadata
}

func aiMetadata(model, finishReason string, usage *llm.Usage, calls []llm.ToolCall) map[string]any {
	metadata := map[string]any{}
	if model != "" {
		metadata["model"] = model
	}
	if finishReason != "" {
		metadata["finish_reason"] = finishReason
	}
	if usage != nil {
		metadata["usage"] = map[string]any{
			"prompt_tokens":     usage.PromptTokens,
			"completion_tokens": usage.CompletionTokens,
			"total_tokens":      usage.TotalTokens,
		}
	}
	if len(calls) > 0 {
		toolCalls := make([]map[string]any, 0, len(calls))
		for _, call := range calls {
			toolCalls = append(toolCalls, map[string]any{
				"id":        call.ID,
				"name":      call.Function.Name,
				"arguments": call.Function.Arguments,
			})
		}
		metadata["tool_calls"] = toolCalls
	}
	return metadata
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
