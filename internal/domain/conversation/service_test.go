package conversation_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Azamsaif47/Alfred-app/internal/domain/conversation"
	"github.com/Azamsaif47/Alfred-app/internal/domain/conversation/conversationtest"
	"github.com/Azamsaif47/Alfred-app/internal/utils/platformerrors"
)

type recordingInvalidator struct {
	ids []string
	err error
}

func (r *recordingInvalidator) Invalidate(_ context.Context, conversationID string) error {
	r.ids = append(r.ids, conversationID)
	return r.err
}

func newService(t *testing.T) (*conversation.Service, *conversationtest.MemoryRepository, *recordingInvalidator) {
	t.Helper()
	repo := conversationtest.NewMemoryRepository()
	cache := &recordingInvalidator{}
	return conversation.NewService(repo, cache, "new_chat", zerolog.Nop()), repo, cache
}

func TestCreateUsesDefaultName(t *testing.T) {
	svc, _, _ := newService(t)

	conv, err := svc.Create(context.Background(), "  ")
	require.NoError(t, err)
	assert.Equal(t, "new_chat", conv.DisplayName)
	assert.Len(t, conv.ID, 36)
}

func TestEnsureExistsCreatesOnce(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	created, err := svc.EnsureExists(ctx, "c1", "Roads")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureExists(ctx, "c1", "Other")
	require.NoError(t, err)
	assert.False(t, created)

	conv, err := repo.FindConversation(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Roads", conv.DisplayName)
}

// staleExistsRepository answers ConversationExists as if another request had
// not yet committed its insert.
type staleExistsRepository struct {
	*conversationtest.MemoryRepository
}

func (staleExistsRepository) ConversationExists(context.Context, string) (bool, error) {
	return false, nil
}

func TestEnsureExistsTreatsConcurrentCreateAsExisting(t *testing.T) {
	repo := conversationtest.NewMemoryRepository()
	svc := conversation.NewService(staleExistsRepository{repo}, nil, "new_chat", zerolog.Nop())
	ctx := context.Background()

	_, err := repo.CreateConversation(ctx, "c1", "Roads")
	require.NoError(t, err)

	created, err := svc.EnsureExists(ctx, "c1", "Other")
	require.NoError(t, err)
	assert.False(t, created)

	conv, err := repo.FindConversation(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Roads", conv.DisplayName)
}

func TestEnsureExistsConcurrentFirstMessages(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	const callers = 16
	var (
		wg      sync.WaitGroup
		created atomic.Int32
		errs    = make(chan error, callers)
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := svc.EnsureExists(ctx, "c1", "Roads")
			if err != nil {
				errs <- err
				return
			}
			if ok {
				created.Add(1)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), created.Load())
}

func TestRename(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	_, _ = repo.CreateConversation(ctx, "c1", "old")

	require.NoError(t, svc.Rename(ctx, "c1", "new"))
	conv, _ := repo.FindConversation(ctx, "c1")
	assert.Equal(t, "new", conv.DisplayName)

	err := svc.Rename(ctx, "c1", "")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))

	err = svc.Rename(ctx, "missing", "x")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
}

func TestDeleteCascadesAndInvalidatesCache(t *testing.T) {
	svc, repo, cache := newService(t)
	ctx := context.Background()
	_, _ = repo.CreateConversation(ctx, "c1", "Roads")
	for i := 0; i < 5; i++ {
		_, err := repo.AppendTurn(ctx, conversation.NewTurn{ConversationID: "c1", Role: conversation.RoleHuman, Content: "hi", GroupID: "g"})
		require.NoError(t, err)
	}

	deleted, err := svc.Delete(ctx, "c1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(5), deleted)
	assert.Equal(t, []string{"c1"}, cache.ids)

	turns, err := repo.ListTurns(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, turns)

	_, err = svc.Delete(ctx, "c1", "")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeNotFound))
}

func TestDeleteRequiresMatchingName(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()
	_, _ = repo.CreateConversation(ctx, "c1", "Roads")

	_, err := svc.Delete(ctx, "c1", "Bridges")
	assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeConflict))

	exists, _ := repo.ConversationExists(ctx, "c1")
	assert.True(t, exists)

	_, err = svc.Delete(ctx, "c1", "Roads")
	assert.NoError(t, err)
}

func TestDeleteSurvivesCacheFailure(t *testing.T) {
	svc, repo, cache := newService(t)
	cache.err = errors.New("redis down")
	ctx := context.Background()
	_, _ = repo.CreateConversation(ctx, "c1", "Roads")

	_, err := svc.Delete(ctx, "c1", "")
	assert.NoError(t, err)
}
