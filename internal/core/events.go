package core

type EventType string

const (
	EventSession   EventType = "session"
	EventToolStart EventType = "tool_start"
	EventToolDone  EventType = "tool_done"
	EventTextDelta EventType = "text_delta"
	EventDone      EventType = "done"
)

// Event is one item of the streaming turn protocol. For a given turn,
// tool_start precedes the matching tool_done and text deltas arrive in
// generation order.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id,omitempty"`
	Tool      string    `json:"tool,omitempty"`
	Text      string    `json:"text,omitempty"`
}

// EventSink receives turn events. Implementations must not block
// indefinitely; a sink that can no longer deliver should drop quietly.
type EventSink func(Event)
