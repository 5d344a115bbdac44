package classifier

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azamsaif47/Alfred-app/internal/domain/conversation"
	"github.com/Azamsaif47/Alfred-app/internal/domain/conversation/conversationtest"
)

func turns(roles ...conversation.Role) []conversation.RawTurn {
	run := make([]conversation.RawTurn, len(roles))
	for i, role := range roles {
		run[i] = conversation.RawTurn{Role: role, Content: string(role) + "-" + string(rune('0'+i))}
	}
	return run
}

func roles(selection Selection) []conversation.Role {
	out := make([]conversation.Role, 0, len(selection.Turns))
	for _, turn := range selection.Turns {
		out = append(out, turn.Role)
	}
	return out
}

const (
	h = conversation.RoleHuman
	a = conversation.RoleAI
	x = conversation.RoleTool
)

func TestSelectToolLoopRun(t *testing.T) {
	c := New(DefaultWindows())

	// Human at 0 falls outside N-5=1; Tool at 4 >= 3; AI at 5 is final.
	selection := c.Select(turns(h, a, x, a, x, a))

	assert.Equal(t, []conversation.Role{x, a}, roles(selection))
	assert.Equal(t, "Tool-4", selection.Turns[0].Content)
	assert.Equal(t, "AI-5", selection.Turns[1].Content)
	assert.NotEmpty(t, selection.GroupID)
}

func TestSelectHumanWindowBoundary(t *testing.T) {
	c := New(DefaultWindows())

	// N=7: only Human at index 1 = N-6 is dropped.
	dropped := c.Select(turns(a, h, a, a, a, a, a))
	assert.Equal(t, []conversation.Role{a}, roles(dropped))

	// N=6: Human at index 1 = N-5 is kept.
	kept := c.Select(turns(a, h, a, a, a, a))
	assert.Equal(t, []conversation.Role{h, a}, roles(kept))
}

func TestSelectAIMustBeFinal(t *testing.T) {
	c := New(DefaultWindows())

	selection := c.Select(turns(h, a, x))
	assert.Equal(t, []conversation.Role{h, x}, roles(selection))
}

func TestSelectKeepsLastTurnPerRole(t *testing.T) {
	c := New(DefaultWindows())

	selection := c.Select(turns(h, h, a))
	require.Len(t, selection.Turns, 2)
	assert.Equal(t, "Human-1", selection.Turns[0].Content)
}

func TestSelectIgnoresUnknownRoles(t *testing.T) {
	c := New(DefaultWindows())

	selection := c.Select(turns(h, conversation.Role("System")))
	assert.Equal(t, []conversation.Role{h}, roles(selection))
}

func TestSelectNothingSurvives(t *testing.T) {
	c := New(DefaultWindows())

	assert.Empty(t, c.Select(nil).Turns)
	selection := c.Select(turns(h, a, a, a, a, a, conversation.Role("System")))
	assert.Empty(t, selection.Turns)
	assert.Empty(t, selection.GroupID)
}

func TestSelectCustomWindows(t *testing.T) {
	c := New(Windows{Human: 10, Tool: 1, AI: 2})

	selection := c.Select(turns(h, a, x, a, x, a, a))
	assert.Equal(t, []conversation.Role{h, a}, roles(selection))
}

func TestNewFallsBackToDefaults(t *testing.T) {
	c := New(Windows{})
	assert.Equal(t, DefaultWindows(), c.windows)
}

func TestPersistSharesGroupID(t *testing.T) {
	ctx := context.Background()
	repo := conversationtest.NewMemoryRepository()
	_, _ = repo.CreateConversation(ctx, "c1", "Roads")
	c := New(DefaultWindows())
	c.newGroupID = func() string { return "group-1" }

	stored, err := c.Persist(ctx, repo, "c1", turns(h, x, a))
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for _, turn := range stored {
		assert.Equal(t, "group-1", turn.GroupID)
		assert.Equal(t, "{}", turn.Metadata)
	}

	listed, err := repo.ListTurns(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, conversation.RoleHuman, listed[0].Role)
	assert.Equal(t, conversation.RoleTool, listed[1].Role)
	assert.Equal(t, conversation.RoleAI, listed[2].Role)
}

func TestPersistSurfacesAppendFailure(t *testing.T) {
	ctx := context.Background()
	repo := conversationtest.NewMemoryRepository()
	_, _ = repo.CreateConversation(ctx, "c1", "Roads")
	repo.AppendErr = errors.New("connection reset")

	_, err := New(DefaultWindows()).Persist(ctx, repo, "c1", turns(h, a))
	assert.ErrorIs(t, err, repo.AppendErr)
}

func TestPersistEmptySelectionWritesNothing(t *testing.T) {
	ctx := context.Background()
	repo := conversationtest.NewMemoryRepository()
	_, _ = repo.CreateConversation(ctx, "c1", "Roads")

	stored, err := New(DefaultWindows()).Persist(ctx, repo, "c1", nil)
	require.NoError(t, err)
	assert.Empty(t, stored)
}
