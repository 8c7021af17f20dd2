package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/sazed/internal/core"
)

type fakeProvider struct {
	factsJSON string
	summary   string
	err       error
	prompts   []string
}

func (f *fakeProvider) Complete(_ context.Context, req core.CompletionRequest) (core.Completion, error) {
	if f.err != nil {
		return core.Completion{}, f.err
	}
	prompt := req.Messages[0].Content
	f.prompts = append(f.prompts, prompt)

	content := f.summary
	if strings.Contains(prompt, "Extract personal facts") {
		content = f.factsJSON
	}
	return core.Completion{
		Message:    core.Message{Role: core.RoleAssistant, Content: content},
		StopReason: core.StopEndTurn,
	}, nil
}

func (f *fakeProvider) CompleteStream(ctx context.Context, req core.CompletionRequest, _ func(string) error) (core.Completion, error) {
	return f.Complete(ctx, req)
}

type fakeSessions struct {
	session   core.Session
	getErr    error
	processed map[string]string
}

func (f *fakeSessions) Ensure(context.Context, string) error { return nil }

func (f *fakeSessions) Get(context.Context, string) (core.Session, error) {
	if f.getErr != nil {
		return core.Session{}, f.getErr
	}
	return f.session, nil
}

func (f *fakeSessions) List(context.Context) ([]core.Session, error) { return nil, nil }
func (f *fakeSessions) Touch(context.Context, string) error          { return nil }

func (f *fakeSessions) MarkProcessed(_ context.Context, id, kbID string) error {
	if f.processed == nil {
		f.processed = map[string]string{}
	}
	f.processed[id] = kbID
	return nil
}

type fakeMessages struct {
	msgs []core.Message
}

func (f *fakeMessages) Append(context.Context, string, core.Message) error { return nil }

func (f *fakeMessages) GetAll(context.Context, string) ([]core.Message, error) {
	return f.msgs, nil
}

type fakeMemory struct {
	existing []core.Fact
	observed []core.Fact
}

func (f *fakeMemory) List(context.Context) ([]core.Fact, error) { return f.existing, nil }

func (f *fakeMemory) Observe(_ context.Context, fact core.Fact) (core.Fact, error) {
	f.observed = append(f.observed, fact)
	return fact, nil
}

type fakeKB struct {
	id    string
	err   error
	texts []string
}

func (f *fakeKB) Ingest(_ context.Context, text string, _ map[string]string) (string, error) {
	f.texts = append(f.texts, text)
	return f.id, f.err
}

func transcript() []core.Message {
	return []core.Message{
		{Role: core.RoleUser, Content: "remember that I write mostly Go these days"},
		{
			Role:      core.RoleAssistant,
			Content:   "Noted.",
			ToolCalls: []core.ToolCall{{ID: "t1", Name: "memory_update"}},
		},
		{Role: core.RoleTool, ToolResults: []core.ToolResult{{ToolCallID: "t1", Content: "Remembered"}}},
	}
}

func TestProcess_ExtractsFactsAndPublishesSummary(t *testing.T) {
	provider := &fakeProvider{
		factsJSON: `[{"fact_type":"personal","key":"primary_language","value":"Go","confidence":1.0}]`,
		summary:   "The user mentioned switching to Go.",
	}
	sessions := &fakeSessions{session: core.Session{ID: "sess-1"}}
	mem := &fakeMemory{}
	kb := &fakeKB{id: "kb-123"}
	p := NewProcessor(provider, sessions, &fakeMessages{msgs: transcript()}, mem, kb, "haiku-test")

	res, err := p.Process(context.Background(), "sess-1", false)
	require.NoError(t, err)

	assert.Equal(t, 1, res.FactsExtracted)
	assert.Equal(t, "The user mentioned switching to Go.", res.Summary)
	assert.Equal(t, "kb-123", res.SummaryKBID)

	require.Len(t, mem.observed, 1)
	assert.Equal(t, "primary_language", mem.observed[0].Key)
	assert.Equal(t, core.SourceInferred, mem.observed[0].Source)
	assert.Equal(t, 1.0, mem.observed[0].Confidence)

	assert.Equal(t, map[string]string{"sess-1": "kb-123"}, sessions.processed)
	require.Len(t, kb.texts, 1)
}

func TestProcess_IsIdempotent(t *testing.T) {
	done := time.Now()
	sessions := &fakeSessions{session: core.Session{ID: "sess-1", ProcessedAt: &done, SummaryKBID: "kb-old"}}
	provider := &fakeProvider{}
	p := NewProcessor(provider, sessions, &fakeMessages{msgs: transcript()}, &fakeMemory{}, &fakeKB{}, "haiku-test")

	res, err := p.Process(context.Background(), "sess-1", false)
	require.NoError(t, err)

	assert.True(t, res.AlreadyProcessed)
	assert.Equal(t, "kb-old", res.SummaryKBID)
	assert.Empty(t, provider.prompts, "no model calls on re-process")
}

func TestProcess_ForceReprocesses(t *testing.T) {
	done := time.Now()
	sessions := &fakeSessions{session: core.Session{ID: "sess-1", ProcessedAt: &done}}
	provider := &fakeProvider{factsJSON: "[]", summary: "short recap"}
	p := NewProcessor(provider, sessions, &fakeMessages{msgs: transcript()}, &fakeMemory{}, &fakeKB{id: "kb-2"}, "haiku-test")

	res, err := p.Process(context.Background(), "sess-1", true)
	require.NoError(t, err)

	assert.False(t, res.AlreadyProcessed)
	assert.Equal(t, "kb-2", res.SummaryKBID)
	assert.Len(t, provider.prompts, 2)
}

func TestProcess_EmptySession(t *testing.T) {
	p := NewProcessor(&fakeProvider{}, &fakeSessions{session: core.Session{ID: "s"}}, &fakeMessages{}, &fakeMemory{}, &fakeKB{}, "haiku-test")

	_, err := p.Process(context.Background(), "s", false)
	assert.ErrorIs(t, err, ErrNothingToProcess)
}

func TestProcess_MissingSession(t *testing.T) {
	p := NewProcessor(&fakeProvider{}, &fakeSessions{getErr: core.ErrSessionNotFound}, &fakeMessages{}, &fakeMemory{}, &fakeKB{}, "haiku-test")

	_, err := p.Process(context.Background(), "nope", false)
	assert.ErrorIs(t, err, core.ErrSessionNotFound)
}

func TestProcess_KBOutageIsNotFatal(t *testing.T) {
	provider := &fakeProvider{factsJSON: "[]", summary: "recap"}
	sessions := &fakeSessions{session: core.Session{ID: "sess-1"}}
	p := NewProcessor(provider, sessions, &fakeMessages{msgs: transcript()}, &fakeMemory{}, &fakeKB{err: errors.New("kb down")}, "haiku-test")

	res, err := p.Process(context.Background(), "sess-1", false)
	require.NoError(t, err)

	assert.Empty(t, res.SummaryKBID)
	assert.Equal(t, map[string]string{"sess-1": ""}, sessions.processed)
}

func TestProcess_SkipsMalformedFacts(t *testing.T) {
	provider := &fakeProvider{
		factsJSON: `[{"fact_type":"personal","key":"","value":"x"},{"fact_type":"preference","key":"editor","value":"neovim"}]`,
		summary:   "recap",
	}
	mem := &fakeMemory{}
	p := NewProcessor(provider, &fakeSessions{session: core.Session{ID: "s"}}, &fakeMessages{msgs: transcript()}, mem, &fakeKB{}, "haiku-test")

	res, err := p.Process(context.Background(), "s", false)
	require.NoError(t, err)

	assert.Equal(t, 1, res.FactsExtracted)
	require.Len(t, mem.observed, 1)
	assert.Equal(t, "editor", mem.observed[0].Key)
}

func TestFormatTranscript_SkipsToolResults(t *testing.T) {
	got := formatTranscript(transcript())

	assert.Contains(t, got, "USER: remember that I write mostly Go these days")
	assert.Contains(t, got, "ASSISTANT: Noted.")
	assert.Contains(t, got, "ASSISTANT [called memory_update]")
	assert.NotContains(t, got, "Remembered")
}

func TestParseFactList_CodeFences(t *testing.T) {
	text := "```json\n[{\"fact_type\":\"personal\",\"key\":\"name\",\"value\":\"Sam\",\"confidence\":1.0}]\n```"

	facts := parseFactList(text)
	require.Len(t, facts, 1)
	assert.Equal(t, "name", facts[0].Key)
}

func TestParseFactList_Garbage(t *testing.T) {
	assert.Nil(t, parseFactList("I could not find any facts."))
}
