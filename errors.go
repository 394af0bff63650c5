package relay

import "errors"

// Sentinel errors for common failure modes.
var (
	// ErrValidation indicates a request or message failed validation.
	ErrValidation = errors.New("validation error")

	// ErrToolNotFound indicates the requested tool does not exist. The loop
	// treats this as recoverable: the model may hallucinate a tool name and
	// is told so via an error tool result.
	ErrToolNotFound = errors.New("tool not found")

	// ErrTurnLimit indicates a run exceeded its provider round-trip budget.
	ErrTurnLimit = errors.New("turn limit exceeded")
)
