package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/sazed/internal/core"
)

type scriptedProvider struct {
	script []core.Completion
	deltas [][]string
	models []string
	err    error
}

func (p *scriptedProvider) next() (core.Completion, []string, error) {
	if p.err != nil {
		return core.Completion{}, nil, p.err
	}
	idx := len(p.models) - 1
	if idx >= len(p.script) {
		return core.Completion{}, nil, fmt.Errorf("unscripted call %d", idx)
	}
	var deltas []string
	if idx < len(p.deltas) {
		deltas = p.deltas[idx]
	}
	return p.script[idx], deltas, nil
}

func (p *scriptedProvider) Complete(_ context.Context, req core.CompletionRequest) (core.Completion, error) {
	p.models = append(p.models, req.Model)
	completion, _, err := p.next()
	return completion, err
}

func (p *scriptedProvider) CompleteStream(_ context.Context, req core.CompletionRequest, onDelta func(string) error) (core.Completion, error) {
	p.models = append(p.models, req.Model)
	completion, deltas, err := p.next()
	if err != nil {
		return core.Completion{}, err
	}
	for _, d := range deltas {
		if err := onDelta(d); err != nil {
			return core.Completion{}, err
		}
	}
	return completion, nil
}

type fakeSessions struct {
	ensured   []string
	touched   []string
	processed []string
}

func (f *fakeSessions) Ensure(_ context.Context, id string) error {
	f.ensured = append(f.ensured, id)
	return nil
}

func (f *fakeSessions) Get(context.Context, string) (core.Session, error) {
	return core.Session{}, core.ErrSessionNotFound
}

func (f *fakeSessions) List(context.Context) ([]core.Session, error) { return nil, nil }

func (f *fakeSessions) Touch(_ context.Context, id string) error {
	f.touched = append(f.touched, id)
	return nil
}

func (f *fakeSessions) MarkProcessed(_ context.Context, id, _ string) error {
	f.processed = append(f.processed, id)
	return nil
}

type fakeMessages struct {
	prior    []core.Message
	appended []core.Message
	err      error
}

func (f *fakeMessages) Append(_ context.Context, _ string, msg core.Message) error {
	if f.err != nil {
		return f.err
	}
	f.appended = append(f.appended, msg)
	return nil
}

func (f *fakeMessages) GetAll(context.Context, string) ([]core.Message, error) {
	return f.prior, nil
}

type staticMemory struct{}

func (staticMemory) Snapshot(context.Context) (string, error) { return "(None yet)", nil }

type recordingInvoker struct {
	names  []string
	result string
	isErr  bool
}

func (r *recordingInvoker) Invoke(_ context.Context, name string, _ json.RawMessage) (string, bool) {
	r.names = append(r.names, name)
	return r.result, r.isErr
}

func testConfig() Config {
	return Config{
		MaxTurns:    5,
		HaikuModel:  "haiku-test",
		SonnetModel: "sonnet-test",
		MaxTokens:   4096,
	}
}

func endTurn(text string) core.Completion {
	return core.Completion{
		Message:    core.Message{Role: core.RoleAssistant, Content: text},
		StopReason: core.StopEndTurn,
	}
}

func toolUse(text string, calls ...core.ToolCall) core.Completion {
	return core.Completion{
		Message:    core.Message{Role: core.RoleAssistant, Content: text, ToolCalls: calls},
		StopReason: core.StopToolUse,
	}
}

func TestRun_SingleTurn(t *testing.T) {
	provider := &scriptedProvider{script: []core.Completion{endTurn("Hello there.")}}
	sessions := &fakeSessions{}
	messages := &fakeMessages{}
	a := New(testConfig(), provider, sessions, messages, staticMemory{}, &recordingInvoker{}, nil)

	sessionID, text, err := a.Run(context.Background(), "", "hi")
	require.NoError(t, err)

	assert.NotEmpty(t, sessionID)
	assert.Equal(t, "Hello there.", text)
	assert.Equal(t, []string{sessionID}, sessions.ensured)
	assert.Equal(t, []string{sessionID}, sessions.touched)

	// One user message in, one assistant message out.
	require.Len(t, messages.appended, 2)
	assert.Equal(t, core.RoleUser, messages.appended[0].Role)
	assert.Equal(t, "hi", messages.appended[0].Content)
	assert.Equal(t, core.RoleAssistant, messages.appended[1].Role)
}

func TestRun_ToolCallThenFinish(t *testing.T) {
	provider := &scriptedProvider{script: []core.Completion{
		toolUse("Checking.", core.ToolCall{ID: "t1", Name: "get_events", Arguments: json.RawMessage(`{"days":1}`)}),
		endTurn("You have two meetings today."),
	}}
	invoker := &recordingInvoker{result: `[{"title":"standup"}]`}
	messages := &fakeMessages{}
	a := New(testConfig(), provider, &fakeSessions{}, messages, staticMemory{}, invoker, nil)

	_, text, err := a.Run(context.Background(), "sess-1", "what's today look like?")
	require.NoError(t, err)

	assert.Equal(t, "You have two meetings today.", text)
	assert.Equal(t, []string{"get_events"}, invoker.names)
	assert.Len(t, provider.models, 2)

	// user, assistant(tool_use), tool results, assistant(final)
	require.Len(t, messages.appended, 4)
	assert.Equal(t, core.RoleUser, messages.appended[0].Role)
	assert.Equal(t, core.RoleAssistant, messages.appended[1].Role)
	require.Len(t, messages.appended[1].ToolCalls, 1)
	assert.Equal(t, core.RoleTool, messages.appended[2].Role)
	require.Len(t, messages.appended[2].ToolResults, 1)
	assert.Equal(t, "t1", messages.appended[2].ToolResults[0].ToolCallID)
	assert.Equal(t, `[{"title":"standup"}]`, messages.appended[2].ToolResults[0].Content)
	assert.Equal(t, core.RoleAssistant, messages.appended[3].Role)
}

func TestRun_TurnCeiling(t *testing.T) {
	call := core.ToolCall{ID: "t1", Name: "get_events", Arguments: json.RawMessage(`{}`)}
	provider := &scriptedProvider{script: []core.Completion{
		toolUse("", call), toolUse("", call), toolUse("", call), toolUse("", call), toolUse("", call),
	}}
	invoker := &recordingInvoker{result: "[]"}
	a := New(testConfig(), provider, &fakeSessions{}, &fakeMessages{}, staticMemory{}, invoker, nil)

	_, text, err := a.Run(context.Background(), "sess-1", "hi")
	require.NoError(t, err)

	assert.Len(t, provider.models, 5, "loop must stop at the ceiling")
	assert.Len(t, invoker.names, 5)
	assert.Equal(t, fallbackResponse, text)
}

func TestRun_ModelTierPerTurn(t *testing.T) {
	call := core.ToolCall{ID: "t1", Name: "get_events", Arguments: json.RawMessage(`{}`)}
	provider := &scriptedProvider{script: []core.Completion{
		toolUse("", call), toolUse("", call), toolUse("", call), toolUse("", call), toolUse("", call),
	}}
	a := New(testConfig(), provider, &fakeSessions{}, &fakeMessages{}, staticMemory{}, &recordingInvoker{result: "[]"}, nil)

	_, _, err := a.Run(context.Background(), "", "hi")
	require.NoError(t, err)

	// Short message: cheap model through turn 2, capable after.
	assert.Equal(t, []string{"haiku-test", "haiku-test", "haiku-test", "sonnet-test", "sonnet-test"}, provider.models)
}

func TestRun_UnexpectedStopReason(t *testing.T) {
	provider := &scriptedProvider{script: []core.Completion{
		{Message: core.Message{Role: core.RoleAssistant, Content: "partial"}, StopReason: "max_tokens"},
	}}
	a := New(testConfig(), provider, &fakeSessions{}, &fakeMessages{}, staticMemory{}, &recordingInvoker{}, nil)

	_, text, err := a.Run(context.Background(), "sess-1", "hi")
	require.NoError(t, err)

	assert.Len(t, provider.models, 1)
	assert.Equal(t, "partial", text)
}

func TestRun_CompletionErrorPropagates(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("rate limited")}
	a := New(testConfig(), provider, &fakeSessions{}, &fakeMessages{}, staticMemory{}, &recordingInvoker{}, nil)

	_, _, err := a.Run(context.Background(), "sess-1", "hi")
	assert.ErrorContains(t, err, "rate limited")
}

func TestRun_PersistenceErrorPropagates(t *testing.T) {
	provider := &scriptedProvider{script: []core.Completion{endTurn("ok")}}
	messages := &fakeMessages{err: errors.New("disk full")}
	a := New(testConfig(), provider, &fakeSessions{}, messages, staticMemory{}, &recordingInvoker{}, nil)

	_, _, err := a.Run(context.Background(), "sess-1", "hi")
	assert.ErrorContains(t, err, "persist user message")
}

func TestRun_PriorHistoryIncluded(t *testing.T) {
	prior := []core.Message{
		{Role: core.RoleUser, Content: "earlier question"},
		{Role: core.RoleAssistant, Content: "earlier answer"},
	}
	provider := &scriptedProvider{script: []core.Completion{endTurn("follow-up answer")}}
	messages := &fakeMessages{prior: prior}
	a := New(testConfig(), provider, &fakeSessions{}, messages, staticMemory{}, &recordingInvoker{}, nil)

	_, _, err := a.Run(context.Background(), "sess-1", "and then?")
	require.NoError(t, err)

	// Replay is prior history plus the new user message; only new rows persisted.
	require.Len(t, messages.appended, 2)
	assert.Equal(t, "and then?", messages.appended[0].Content)
}

func TestRunStream_EventOrder(t *testing.T) {
	provider := &scriptedProvider{
		script: []core.Completion{
			toolUse("", core.ToolCall{ID: "t1", Name: "list_tasks", Arguments: json.RawMessage(`{}`)}),
			endTurn("All done."),
		},
		deltas: [][]string{nil, {"All ", "done."}},
	}
	a := New(testConfig(), provider, &fakeSessions{}, &fakeMessages{}, staticMemory{}, &recordingInvoker{result: "[]"}, nil)

	var events []core.Event
	sessionID, text, err := a.RunStream(context.Background(), "", "anything pending?", func(ev core.Event) {
		events = append(events, ev)
	})
	require.NoError(t, err)
	assert.Equal(t, "All done.", text)

	types := make([]core.EventType, 0, len(events))
	for _, ev := range events {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []core.EventType{
		core.EventSession,
		core.EventToolStart,
		core.EventToolDone,
		core.EventTextDelta,
		core.EventTextDelta,
		core.EventDone,
	}, types)

	assert.Equal(t, sessionID, events[0].SessionID)
	assert.Equal(t, "list_tasks", events[1].Tool)
	assert.Equal(t, "All ", events[3].Text)
}

func TestRunStream_CanceledCallerStopsEmissionOnly(t *testing.T) {
	provider := &scriptedProvider{script: []core.Completion{endTurn("late answer")}}
	messages := &fakeMessages{}
	sessions := &fakeSessions{}
	a := New(testConfig(), provider, sessions, messages, staticMemory{}, &recordingInvoker{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var events []core.Event
	_, _, err := a.RunStream(ctx, "sess-1", "hi", func(ev core.Event) {
		events = append(events, ev)
	})
	require.NoError(t, err)

	assert.Empty(t, events, "no events after disconnect")
	assert.Len(t, messages.appended, 2, "persistence still runs")
	assert.NotEmpty(t, sessions.touched)
}
