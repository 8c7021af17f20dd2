package sqlite

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sandevgo/sazed/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagesRepo_AppendAndReplay(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	sessions := NewSessionsRepo(db)
	repo := NewMessagesRepo(db)

	require.NoError(t, sessions.Ensure(ctx, "s1"))

	written := []core.Message{
		{Role: core.RoleUser, Content: "what's on my calendar?"},
		{Role: core.RoleAssistant, Content: "checking", ToolCalls: []core.ToolCall{
			{ID: "tc_1", Name: "get_events", Arguments: json.RawMessage(`{"days":7}`)},
		}},
		{Role: core.RoleTool, ToolResults: []core.ToolResult{
			{ToolCallID: "tc_1", Content: `{"events":[]}`},
		}},
		{Role: core.RoleAssistant, Content: "Nothing scheduled this week."},
	}
	for _, msg := range written {
		require.NoError(t, repo.Append(ctx, "s1", msg))
	}

	got, err := repo.GetAll(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, got, len(written))

	// Replay must reproduce the history exactly, in insertion order.
	for i, msg := range written {
		assert.Equal(t, msg.Role, got[i].Role, "message %d role", i)
		assert.Equal(t, msg.Content, got[i].Content, "message %d content", i)
		assert.Equal(t, msg.ToolCalls, got[i].ToolCalls, "message %d tool calls", i)
		assert.Equal(t, msg.ToolResults, got[i].ToolResults, "message %d tool results", i)
	}
}

func TestMessagesRepo_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	sessions := NewSessionsRepo(db)
	repo := NewMessagesRepo(db)

	require.NoError(t, sessions.Ensure(ctx, "a"))
	require.NoError(t, sessions.Ensure(ctx, "b"))

	require.NoError(t, repo.Append(ctx, "a", core.Message{Role: core.RoleUser, Content: "hello a"}))
	require.NoError(t, repo.Append(ctx, "b", core.Message{Role: core.RoleUser, Content: "hello b"}))

	got, err := repo.GetAll(ctx, "a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hello a", got[0].Content)
}

func TestMessagesRepo_EmptyTranscript(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, NewSessionsRepo(db).Ensure(ctx, "empty"))

	got, err := NewMessagesRepo(db).GetAll(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, got)
}
