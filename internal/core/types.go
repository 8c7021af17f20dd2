package core

import (
	"encoding/json"
	"time"
)

const (
	AppName      = "Sazed"
	AppUserAgent = "Sazed-Agent/0.1"
	AppVersion   = "0.1.0"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Fact sources. Explicit statements by the user outrank anything the
// post-processor inferred, regardless of confidence.
const (
	SourceExplicit = "user_explicit"
	SourceInferred = "inferred"
)

type ToolCall struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
	IsError    bool   `json:"is_error,omitempty"`
}

// Message is one entry in a session transcript. A user message carries
// Content; an assistant message carries Content and/or ToolCalls; a tool
// message carries the ToolResults for the preceding assistant turn.
type Message struct {
	Role        string       `json:"role"`
	Content     string       `json:"content,omitempty"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
	CreatedAt   time.Time    `json:"created_at,omitzero"`
}

type Session struct {
	ID           string     `json:"session_id"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActivity time.Time  `json:"last_activity"`
	MessageCount int        `json:"message_count"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	SummaryKBID  string     `json:"summary_kb_id,omitempty"`
}

// Fact is a single piece of durable knowledge about the user, unique per
// (FactType, Key).
type Fact struct {
	FactType   string    `json:"fact_type"`
	Key        string    `json:"key"`
	Value      string    `json:"value"`
	Confidence float64   `json:"confidence"`
	Source     string    `json:"source"`
	CreatedAt  time.Time `json:"created_at,omitzero"`
	UpdatedAt  time.Time `json:"updated_at,omitzero"`
}

// Tool is a capability schema as presented to the completion service.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"`
}
