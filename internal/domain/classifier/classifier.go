package classifier

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Azamsaif47/Alfred-app/internal/domain/conversation"
)

// Windows bounds how far from the end of a run the last turn of each role may
// sit and still be persisted. For a run of length N the last Human turn is
// kept when its index is >= N-Human, the last Tool turn when >= N-Tool, and
// the last AI turn when >= N-AI. AI of 1 therefore means "only if final".
type Windows struct {
	Human int
	Tool  int
	AI    int
}

// DefaultWindows returns the standard recency windows.
func DefaultWindows() Windows {
	return Windows{Human: 5, Tool: 3, AI: 1}
}

// persistOrder is the order turns are appended in, and the priority for
// first-match-wins role dedup.
var persistOrder = []conversation.Role{conversation.RoleHuman, conversation.RoleTool, conversation.RoleAI}

// Selection is the set of turns chosen from one run. All share GroupID.
type Selection struct {
	GroupID string
	Turns   []conversation.RawTurn
}

// Classifier decides which turns of an agent run are worth persisting.
type Classifier struct {
	windows    Windows
	newGroupID func() string
}

// New creates a classifier. Non-positive windows fall back to the defaults.
func New(windows Windows) *Classifier {
	defaults := DefaultWindows()
	if windows.Human < 1 {
		windows.Human = defaults.Human
	}
	if windows.Tool < 1 {
		windows.Tool = defaults.Tool
	}
	if windows.AI < 1 {
		windows.AI = defaults.AI
	}
	return &Classifier{windows: windows, newGroupID: uuid.NewString}
}

// Select applies the recency windows to the complete run and returns at most
// one turn per role. An empty selection has no group id.
func (c *Classifier) Select(run []conversation.RawTurn) Selection {
	n := len(run)
	if n == 0 {
		return Selection{}
	}

	last := make(map[conversation.Role]int, len(persistOrder))
	for i, turn := range run {
		if turn.Role.Valid() {
			last[turn.Role] = i
		}
	}

	var selection Selection
	for _, role := range persistOrder {
		idx, ok := last[role]
		if !ok || idx < n-c.window(role) {
			continue
		}
		selection.Turns = append(selection.Turns, run[idx])
	}

	if len(selection.Turns) > 0 {
		selection.GroupID = c.newGroupID()
	}
	return selection
}

// Persist selects turns from the run and appends each one. The first append
// failure is returned; turns appended before it stay stored.
func (c *Classifier) Persist(ctx context.Context, repo conversation.Repository, conversationID string, run []conversation.RawTurn) ([]conversation.Turn, error) {
	selection := c.Select(run)
	if len(selection.Turns) == 0 {
		return nil, nil
	}

	stored := make([]conversation.Turn, 0, len(selection.Turns))
	for _, turn := range selection.Turns {
		metadata := turn.Metadata
		if metadata == nil {
			metadata = map[string]any{}
		}
		saved, err := repo.AppendTurn(ctx, conversation.NewTurn{
			ConversationID: conversationID,
			Role:           turn.Role,
			Content:        turn.Content,
			Metadata:       metadata,
			GroupID:        selection.GroupID,
		})
		if err != nil {
			return stored, fmt.Errorf("append %s turn: %w", turn.Role, err)
		}
		stored = append(stored, *saved)
	}
	return stored, nil
}

func (c *Classifier) window(role conversation.Role) int {
	switch role {
	case conversation.RoleHuman:
		return c.windows.Human
	case conversation.RoleTool:
		return c.windows.Tool
	default:
		return c.windows.AI
	}
}
