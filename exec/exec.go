// Package exec provides subprocess tools: bash command execution and
// ripgrep-backed search.
//
// Command output is sanitized (ANSI escapes stripped, carriage returns
// resolved) and tail-truncated before it reaches the model, so a noisy
// command cannot flood the conversation.
package exec

const (
	// DefaultMaxLines and DefaultMaxBytes bound how much of a command's
	// output is returned to the model.
	DefaultMaxLines = 2000
	DefaultMaxBytes = 50 * 1024 // 50KB
)
