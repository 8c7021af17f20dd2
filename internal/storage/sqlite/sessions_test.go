package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sandevgo/sazed/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionsRepo_EnsureIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionsRepo(newTestDB(t))

	require.NoError(t, repo.Ensure(ctx, "s1"))
	require.NoError(t, repo.Ensure(ctx, "s1"))

	sessions, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
}

func TestSessionsRepo_GetMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionsRepo(newTestDB(t))

	_, err := repo.Get(ctx, "nope")
	assert.True(t, errors.Is(err, core.ErrSessionNotFound))
}

func TestSessionsRepo_TouchUpdatesMessageCount(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewSessionsRepo(db)
	messages := NewMessagesRepo(db)

	require.NoError(t, repo.Ensure(ctx, "s1"))
	require.NoError(t, messages.Append(ctx, "s1", core.Message{Role: core.RoleUser, Content: "hi"}))
	require.NoError(t, messages.Append(ctx, "s1", core.Message{Role: core.RoleAssistant, Content: "hello"}))
	require.NoError(t, repo.Touch(ctx, "s1"))

	s, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 2, s.MessageCount)
}

func TestSessionsRepo_MarkProcessed(t *testing.T) {
	ctx := context.Background()
	repo := NewSessionsRepo(newTestDB(t))

	require.NoError(t, repo.Ensure(ctx, "s1"))

	s, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Nil(t, s.ProcessedAt)

	require.NoError(t, repo.MarkProcessed(ctx, "s1", "kb-123"))

	s, err = repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, s.ProcessedAt)
	assert.Equal(t, "kb-123", s.SummaryKBID)
}
