package relay

import "encoding/json"

// Event is a sealed interface representing a loop progress event. Events are
// purely semantic and arrive in response order. Transport errors come from
// Run's error return, not from events.
// The unexported marker method prevents external implementations.
type Event interface {
	event()
}

// EventText carries one text block from an assistant message.
type EventText struct {
	Text string
}

func (EventText) event() {}

// EventThinking carries one thinking block from an assistant message.
type EventThinking struct {
	Thinking string
}

func (EventThinking) event() {}

// EventToolCall signals that the loop is about to execute a tool.
type EventToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

func (EventToolCall) event() {}

// EventToolResult carries the outcome of a tool execution.
type EventToolResult struct {
	ID       string
	ToolName string
	Content  string
	IsError  bool
}

func (EventToolResult) event() {}

// Interface compliance checks.
var (
	_ Event = EventText{}
	_ Event = EventThinking{}
	_ Event = EventToolCall{}
	_ Event = EventToolResult{}
)
