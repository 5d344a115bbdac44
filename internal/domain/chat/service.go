// Package chat wires the agent run, turn persistence and citation extraction
// into the two pipeline entry points.
package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Azamsaif47/Alfred-app/internal/domain/agent"
	"github.com/Azamsaif47/Alfred-app/internal/domain/citation"
	"github.com/Azamsaif47/Alfred-app/internal/domain/classifier"
	"github.com/Azamsaif47/Alfred-app/internal/domain/conversation"
	"github.com/Azamsaif47/Alfred-app/internal/domain/history"
	"github.com/Azamsaif47/Alfred-app/internal/utils/platformerrors"
)

const tracerName = "alfred-api/chat"

// Run outcomes reported to the recorder.
const (
	OutcomeSuccess      = "success"
	OutcomeAgentFailure = "agent_failure"
	OutcomeStorageError = "storage_error"
)

// Runner executes one agent run.
type Runner interface {
	Run(ctx context.Context, params agent.RunParams) ([]conversation.RawTurn, error)
}

// HistoryCache stores reconstructed histories between writes.
type HistoryCache interface {
	Get(ctx context.Context, conversationID string) (*history.History, bool, error)
	Set(ctx context.Context, conversationID string, h *history.History) error
	Invalidate(ctx context.Context, conversationID string) error
}

// Recorder observes pipeline runs.
type Recorder interface {
	RunFinished(outcome string, duration time.Duration)
	TurnPersisted(role conversation.Role)
}

type nopRecorder struct{}

func (nopRecorder) RunFinished(string, time.Duration) {}
func (nopRecorder) TurnPersisted(conversation.Role) {}

// Reply is the result of SubmitMessage.
type Reply struct {
	ResponseText string
	Citations    []citation.Citation
}

// Service implements submit_message and get_history.
type Service struct {
	conversations *conversation.Service
	repo          conversation.Repository
	runner        Runner
	classifier    *classifier.Classifier
	parser        *citation.Parser
	reconstructor *history.Reconstructor
	cache         HistoryCache
	recorder      Recorder
	tracer        trace.Tracer
	log           zerolog.Logger
}

// NewService wires dependencies. cache and recorder may be nil.
func NewService(
	conversations *conversation.Service,
	repo conversation.Repository,
	runner Runner,
	turnClassifier *classifier.Classifier,
	parser *citation.Parser,
	reconstructor *history.Reconstructor,
	cache HistoryCache,
	recorder Recorder,
	log zerolog.Logger,
) *Service {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Service{
		conversations: conversations,
		repo:          repo,
		runner:        runner,
		classifier:    turnClassifier,
		parser:        parser,
		reconstructor: reconstructor,
		cache:         cache,
		recorder:      recorder,
		tracer:        otel.Tracer(tracerName),
		log:           log.With().Str("component", "chat-service").Logger(),
	}
}

// SubmitMessage runs the agent for one user message, persists the windowed
// turns of the run and returns the answer with its most recent citations.
func (s *Service) SubmitMessage(ctx context.Context, userText, conversationID, displayName string) (*Reply, error) {
	ctx, span := s.tracer.Start(ctx, "chat.submit_message",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("conversation.id", conversationID)),
	)
	defer span.End()

	if strings.TrimSpace(userText) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"user input is required", nil, "")
	}
	if strings.TrimSpace(conversationID) == "" {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"thread id is required", nil, "")
	}
	if len(conversationID) > conversation.MaxIDLength {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeValidation,
			"thread id is too long", nil, "", map[string]any{"max_length": conversation.MaxIDLength})
	}

	log := s.log.With().Str("conversation_id", conversationID).Logger()
	start := time.Now()

	created, err := s.conversations.EnsureExists(ctx, conversationID, displayName)
	if err != nil {
		s.fail(span, OutcomeStorageError, start, err)
		return nil, err
	}
	span.SetAttributes(attribute.Bool("conversation.created", created))

	turns, err := s.repo.ListTurns(ctx, conversationID)
	if err != nil {
		s.fail(span, OutcomeStorageError, start, err)
		return nil, err
	}

	run, err := s.runner.Run(ctx, agent.RunParams{
		ConversationID: conversationID,
		UserText:       userText,
		History:        turns,
	})
	if err == nil && len(run) == 0 {
		err = errors.New("agent returned no turns")
	}
	if err != nil {
		s.fail(span, OutcomeAgentFailure, start, err)
		log.Error().Err(err).Msg("agent run failed")
		return nil, orchestratorFailure(ctx, err)
	}
	span.AddEvent("agent_run_completed", trace.WithAttributes(attribute.Int("run.turns", len(run))))

	var (
		persisted []conversation.Turn
		citations []citation.Citation
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		persisted, err = s.classifier.Persist(gctx, s.repo, conversationID, run)
		return err
	})
	g.Go(func() error {
		citations = s.parser.Recent(run)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.fail(span, OutcomeStorageError, start, err)
		log.Error().Err(err).Msg("persist run turns failed")
		// Earlier turns of the run may already be stored.
		s.invalidate(ctx, log, conversationID)
		if platformerrors.GetPlatformError(err) != nil {
			return nil, err
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeDatabaseError,
			"persist turns", err, "")
	}
	for _, turn := range persisted {
		s.recorder.TurnPersisted(turn.Role)
	}

	s.invalidate(ctx, log, conversationID)

	s.recorder.RunFinished(OutcomeSuccess, time.Since(start))
	span.SetAttributes(
		attribute.Int("turns.persisted", len(persisted)),
		attribute.Int("citations.count", len(citations)),
	)
	span.SetStatus(codes.Ok, "")
	log.Info().
		Int("run_turns", len(run)).
		Int("persisted_turns", len(persisted)).
		Int("citations", len(citations)).
		Dur("duration", time.Since(start)).
		Msg("message processed")

	if citations == nil {
		citations = []citation.Citation{}
	}
	return &Reply{
		ResponseText: run[len(run)-1].Content,
		Citations:    citations,
	}, nil
}

// GetHistory returns the display transcript and every citation of a
// conversation. A conversation without turns is NotFound.
func (s *Service) GetHistory(ctx context.Context, conversationID string) (*history.History, error) {
	ctx, span := s.tracer.Start(ctx, "chat.get_history",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("conversation.id", conversationID)),
	)
	defer span.End()

	log := s.log.With().Str("conversation_id", conversationID).Logger()

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, conversationID)
		if err != nil {
			log.Warn().Err(err).Msg("read history cache")
		} else if ok {
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return cached, nil
		}
	}

	turns, err := s.repo.ListTurns(ctx, conversationID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	h, err := s.reconstructor.Rebuild(ctx, conversationID, turns)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, conversationID, h); err != nil {
			log.Warn().Err(err).Msg("write history cache")
		}
	}
	span.SetAttributes(
		attribute.Bool("cache.hit", false),
		attribute.Int("transcript.length", len(h.Transcript)),
		attribute.Int("citations.count", len(h.Citations)),
	)
	return h, nil
}

func (s *Service) invalidate(ctx context.Context, log zerolog.Logger, conversationID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, conversationID); err != nil {
		log.Warn().Err(err).Msg("invalidate history cache")
	}
}

func (s *Service) fail(span trace.Span, outcome string, start time.Time, err error) {
	s.recorder.RunFinished(outcome, time.Since(start))
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// orchestratorFailure maps a failed agent run onto the platform taxonomy.
// Deadline errors stay matchable with errors.Is.
func orchestratorFailure(ctx context.Context, err error) error {
	errType := platformerrors.ErrorTypeExternal
	message := "agent run failed"
	if errors.Is(err, context.DeadlineExceeded) {
		errType = platformerrors.ErrorTypeTimeout
		message = "agent run timed out"
	}
	return platformerrors.NewError(ctx, platformerrors.LayerDomain, errType, message, err, "")
}
