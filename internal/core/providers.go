package core

import "context"

// Completion service stop reasons, normalized across providers.
const (
	StopEndTurn = "end_turn"
	StopToolUse = "tool_use"
)

type CompletionRequest struct {
	Model     string
	System    string
	Messages  []Message
	Tools     []Tool
	MaxTokens int
}

type Completion struct {
	Message    Message
	StopReason string
}

type CompletionProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
	// CompleteStream invokes onDelta for each text chunk in generation order.
	// The returned Completion carries the accumulated final message.
	CompleteStream(ctx context.Context, req CompletionRequest, onDelta func(text string) error) (Completion, error)
}

// KnowledgeIndex ingests raw text into the external knowledge base.
// Publishing is best-effort from the caller's perspective.
type KnowledgeIndex interface {
	Ingest(ctx context.Context, text string, metadata map[string]string) (string, error)
}
