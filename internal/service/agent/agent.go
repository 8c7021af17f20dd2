package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sandevgo/sazed/internal/core"
	"github.com/sandevgo/sazed/pkg/log"
	"github.com/sandevgo/sazed/pkg/retry"
)

// Returned when the loop exhausts its turn budget without assistant text.
const fallbackResponse = "I wasn't able to complete that."

// Memory provides the fact snapshot for the system prompt.
type Memory interface {
	Snapshot(ctx context.Context) (string, error)
}

// ToolInvoker executes one tool call and reports whether the result is an error.
type ToolInvoker interface {
	Invoke(ctx context.Context, name string, args json.RawMessage) (string, bool)
}

type Config struct {
	MaxTurns    int
	HaikuModel  string
	SonnetModel string
	MaxTokens   int
}

// Agent runs the bounded reasoning loop: persist the user message, call the
// model with the full history and tool schemas, execute requested tools,
// persist every step, repeat until end_turn or the ceiling.
type Agent struct {
	cfg      Config
	provider core.CompletionProvider
	sessions core.SessionsRepository
	messages core.MessagesRepository
	memory   Memory
	invoker  ToolInvoker
	tools    []core.Tool
	tiers    tierSelector
	writer   *retry.Retrier
}

func New(
	cfg Config,
	provider core.CompletionProvider,
	sessions core.SessionsRepository,
	messages core.MessagesRepository,
	memory Memory,
	invoker ToolInvoker,
	toolSchemas []core.Tool,
) *Agent {
	return &Agent{
		cfg:      cfg,
		provider: provider,
		sessions: sessions,
		messages: messages,
		memory:   memory,
		invoker:  invoker,
		tools:    toolSchemas,
		tiers:    tierSelector{cheap: cfg.HaikuModel, capable: cfg.SonnetModel},
		writer:   retry.NewWriteRetrier(),
	}
}

// Run executes one user turn and returns the session ID and response text.
func (a *Agent) Run(ctx context.Context, sessionID, userText string) (string, string, error) {
	return a.run(ctx, sessionID, userText, nil)
}

// RunStream is Run with live events: session, then interleaved tool_start /
// tool_done / text_delta in production order, then done. If the caller
// disconnects, tool execution and persistence still run to completion, only
// event delivery stops.
func (a *Agent) RunStream(ctx context.Context, sessionID, userText string, sink core.EventSink) (string, string, error) {
	return a.run(ctx, sessionID, userText, sink)
}

func (a *Agent) run(ctx context.Context, sessionID, userText string, sink core.EventSink) (string, string, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	logger := log.FromCtx(ctx)

	// Writes survive caller disconnect. Values (logger) carry over.
	dctx := context.WithoutCancel(ctx)

	emit := func(ev core.Event) {
		if sink != nil && ctx.Err() == nil {
			sink(ev)
		}
	}

	if err := a.writer.Do(dctx, func() error {
		return a.sessions.Ensure(dctx, sessionID)
	}); err != nil {
		return sessionID, "", fmt.Errorf("ensure session: %w", err)
	}

	history, err := a.messages.GetAll(ctx, sessionID)
	if err != nil {
		return sessionID, "", fmt.Errorf("load transcript: %w", err)
	}
	logger.Debug().Str("session", sessionID).Int("messages", len(history)).Msg("transcript loaded")

	userMsg := core.Message{Role: core.RoleUser, Content: userText}
	if err := a.persist(dctx, sessionID, userMsg); err != nil {
		return sessionID, "", err
	}
	history = append(history, userMsg)

	emit(core.Event{Type: core.EventSession, SessionID: sessionID})

	snapshot, err := a.memory.Snapshot(ctx)
	if err != nil {
		return sessionID, "", fmt.Errorf("memory snapshot: %w", err)
	}
	system := buildSystemPrompt(time.Now(), snapshot)

	var lastText string

loop:
	for turn := 0; turn < a.cfg.MaxTurns; turn++ {
		model := a.tiers.Select(userText, turn)
		req := core.CompletionRequest{
			Model:     model,
			System:    system,
			Messages:  history,
			Tools:     a.tools,
			MaxTokens: a.cfg.MaxTokens,
		}

		started := time.Now()
		completion, err := a.complete(ctx, req, sink != nil, emit)
		if err != nil {
			return sessionID, "", fmt.Errorf("completion turn %d: %w", turn, err)
		}
		logger.Debug().
			Str("session", sessionID).
			Int("turn", turn).
			Str("model", model).
			Str("stop_reason", completion.StopReason).
			Dur("took", time.Since(started)).
			Msg("completion finished")

		assistant := completion.Message
		if err := a.persist(dctx, sessionID, assistant); err != nil {
			return sessionID, "", err
		}
		history = append(history, assistant)
		lastText = assistant.Content

		switch completion.StopReason {
		case core.StopEndTurn:
			break loop

		case core.StopToolUse:
			results := make([]core.ToolResult, 0, len(assistant.ToolCalls))
			for _, call := range assistant.ToolCalls {
				emit(core.Event{Type: core.EventToolStart, Tool: call.Name})
				content, isErr := a.invoker.Invoke(dctx, call.Name, call.Arguments)
				emit(core.Event{Type: core.EventToolDone, Tool: call.Name})
				results = append(results, core.ToolResult{
					ToolCallID: call.ID,
					Content:    content,
					IsError:    isErr,
				})
			}

			toolMsg := core.Message{Role: core.RoleTool, ToolResults: results}
			if err := a.persist(dctx, sessionID, toolMsg); err != nil {
				return sessionID, "", err
			}
			history = append(history, toolMsg)

		default:
			logger.Warn().
				Str("session", sessionID).
				Str("stop_reason", completion.StopReason).
				Msg("unexpected stop reason, ending loop")
			break loop
		}
	}

	if err := a.writer.Do(dctx, func() error {
		return a.sessions.Touch(dctx, sessionID)
	}); err != nil {
		return sessionID, "", fmt.Errorf("touch session: %w", err)
	}

	text := strings.TrimSpace(lastText)
	if text == "" {
		text = fallbackResponse
	}
	emit(core.Event{Type: core.EventDone})

	return sessionID, text, nil
}

// complete streams when a sink is attached, otherwise does a plain call.
func (a *Agent) complete(ctx context.Context, req core.CompletionRequest, stream bool, emit func(core.Event)) (core.Completion, error) {
	if !stream {
		return a.provider.Complete(ctx, req)
	}
	return a.provider.CompleteStream(ctx, req, func(text string) error {
		emit(core.Event{Type: core.EventTextDelta, Text: text})
		return nil
	})
}

func (a *Agent) persist(ctx context.Context, sessionID string, msg core.Message) error {
	err := a.writer.Do(ctx, func() error {
		return a.messages.Append(ctx, sessionID, msg)
	})
	if err != nil {
		return fmt.Errorf("persist %s message: %w", msg.Role, err)
	}
	return nil
}
