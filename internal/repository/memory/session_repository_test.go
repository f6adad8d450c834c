package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petsc-chat-be/pkg/store"
)

func TestCreateMintsDistinctIds(t *testing.T) {
	repo := NewSessionRepository(0)
	ctx := context.Background()

	a, err := repo.Create(ctx)
	require.NoError(t, err)
	b, err := repo.Create(ctx)
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Empty(t, a.History)
}

func TestGetReturnsRegisteredSession(t *testing.T) {
	repo := NewSessionRepository(0)
	ctx := context.Background()

	created, err := repo.Create(ctx)
	require.NoError(t, err)

	got, found := repo.Get(ctx, created.ID)
	require.True(t, found)
	assert.Same(t, created, got)

	_, found = repo.Get(ctx, "no-such-session")
	assert.False(t, found)
}

func TestAppendTurnsVisibleOnNextGet(t *testing.T) {
	repo := NewSessionRepository(0)
	ctx := context.Background()

	session, err := repo.Create(ctx)
	require.NoError(t, err)

	require.NoError(t, repo.AppendTurns(ctx, session,
		store.Turn{Role: store.RoleUser, Content: "How do I create a Vec?"},
		store.Turn{Role: store.RoleAssistant, Content: "Use VecCreate."},
	))

	got, found := repo.Get(ctx, session.ID)
	require.True(t, found)
	require.Len(t, got.History, 2)
	assert.Equal(t, store.RoleUser, got.History[0].Role)
	assert.Equal(t, store.RoleAssistant, got.History[1].Role)
}
