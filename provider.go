package relay

import "context"

// Provider is a strategy pattern interface for LLM backends. Complete issues
// one blocking request/response round-trip and returns the parsed assistant
// message with content blocks in strict response order.
//
// Errors are transport-level failures (network, HTTP, protocol): fatal to
// the current turn, recoverable by the caller. Context cancellation counts
// as a transport failure; implementations must not return a message the
// caller would append from a call that was abandoned.
type Provider interface {
	Complete(ctx context.Context, req Request) (AssistantMessage, error)
}

// Request carries model selection, generation parameters, the ordered turn
// history, and the tool manifest. The provider uses its own defaults when
// fields are zero/nil.
type Request struct {
	Model        string // model ID, provider-specific; empty = provider default
	SystemPrompt string
	Messages     []Message
	Tools        []ToolInfo
	MaxTokens    int      // 0 = provider default
	Temperature  *float64 // nil = provider default
}
