package history

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/Azamsaif47/Alfred-app/internal/domain/citation"
	"github.com/Azamsaif47/Alfred-app/internal/domain/conversation"
	"github.com/Azamsaif47/Alfred-app/internal/utils/platformerrors"
)

// Entry is one displayable transcript line.
type Entry struct {
	ID             uint              `json:"id"`
	ConversationID string            `json:"thread_id"`
	Role           conversation.Role `json:"role"`
	Content        string            `json:"message_content"`
	Metadata       map[string]any    `json:"response_metadata"`
	GroupID        string            `json:"message_id"`
}

// History is the display view of a conversation: the human and AI transcript
// plus every citation recovered from its tool turns.
type History struct {
	Transcript []Entry             `json:"response"`
	Citations  []citation.Citation `json:"sources"`
}

// Recorder observes metadata repair failures.
type Recorder interface {
	MetadataRepairFailed()
}

type nopRecorder struct{}

func (nopRecorder) MetadataRepairFailed() {}

// Reconstructor rebuilds History from stored turns.
type Reconstructor struct {
	parser   *citation.Parser
	recorder Recorder
	log      zerolog.Logger
}

// NewReconstructor wires dependencies. recorder may be nil.
func NewReconstructor(parser *citation.Parser, recorder Recorder, log zerolog.Logger) *Reconstructor {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &Reconstructor{
		parser:   parser,
		recorder: recorder,
		log:      log.With().Str("component", "history-reconstructor").Logger(),
	}
}

// Rebuild walks turns in sequence order. Tool turns contribute citations
// tagged with their group id and are left out of the transcript; human and AI
// turns are copied with repaired metadata. Zero turns is NotFound.
func (r *Reconstructor) Rebuild(ctx context.Context, conversationID string, turns []conversation.Turn) (*History, error) {
	if len(turns) == 0 {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain, platformerrors.ErrorTypeNotFound,
			"no messages found for this conversation", nil, "",
			map[string]any{"conversation_id": conversationID})
	}

	ordered := make([]conversation.Turn, len(turns))
	copy(ordered, turns)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].SequenceID < ordered[j].SequenceID })

	result := &History{
		Transcript: make([]Entry, 0, len(ordered)),
		Citations:  []citation.Citation{},
	}
	for _, turn := range ordered {
		if turn.Role == conversation.RoleTool {
			result.Citations = append(result.Citations, r.parser.FromTurn(turn)...)
			continue
		}

		result.Transcript = append(result.Transcript, Entry{
			ID:             turn.SequenceID,
			ConversationID: turn.ConversationID,
			Role:           turn.Role,
			Content:        turn.Content,
			Metadata:       r.metadata(turn),
			GroupID:        turn.GroupID,
		})
	}
	return result, nil
}

func (r *Reconstructor) metadata(turn conversation.Turn) map[string]any {
	metadata, err := RepairMetadata(turn.Metadata)
	if err != nil {
		r.recorder.MetadataRepairFailed()
		r.log.Warn().
			Err(err).
			Uint("turn_id", turn.SequenceID).
			Str("conversation_id", turn.ConversationID).
			Msg("unrepairable turn metadata, using empty mapping")
		return map[string]any{}
	}
	return metadata
}
