package relay

import (
	"context"
	"fmt"
	"time"
)

// DefaultMaxTurns bounds provider round-trips within a single Run. A model
// that keeps invoking a failing tool would otherwise loop forever.
const DefaultMaxTurns = 50

// Loop orchestrates the conversation between a Provider and a Registry: it
// sends the conversation to the provider, executes requested tools in
// response order, appends correlated results, and repeats until the model
// stops requesting tools.
type Loop struct {
	provider Provider
	registry *Registry
}

// NewLoop creates a new Loop with the given provider and tool registry.
func NewLoop(provider Provider, registry *Registry) *Loop {
	return &Loop{provider: provider, registry: registry}
}

// RunOption configures a single Run invocation.
type RunOption func(*runConfig)

type runConfig struct {
	onEvent  func(Event)
	model    string
	maxTurns int
}

// WithEventHandler sets a callback that receives each loop event during the
// run. If nil or not set, events are silently discarded.
func WithEventHandler(h func(Event)) RunOption {
	return func(c *runConfig) {
		c.onEvent = h
	}
}

// WithModel sets the model ID for provider requests during this run.
// Empty string means the provider uses its default model.
func WithModel(model string) RunOption {
	return func(c *runConfig) {
		c.model = model
	}
}

// WithMaxTurns caps provider round-trips for this run. Values < 1 keep
// DefaultMaxTurns.
func WithMaxTurns(n int) RunOption {
	return func(c *runConfig) {
		if n >= 1 {
			c.maxTurns = n
		}
	}
}

// Run executes the agent loop for one logical user request. It appends the
// assistant's messages and all tool results to conv, in response order, and
// returns when a response carries no tool calls.
//
// A provider error aborts the run without appending anything from the failed
// call; everything appended so far stays, so the caller may surface the
// error and accept new user input on the same conversation. Exceeding the
// turn budget returns ErrTurnLimit.
func (l *Loop) Run(ctx context.Context, conv *Conversation, opts ...RunOption) error {
	cfg := runConfig{maxTurns: DefaultMaxTurns}
	for _, opt := range opts {
		opt(&cfg)
	}
	for turn := 0; ; turn++ {
		if turn >= cfg.maxTurns {
			return fmt.Errorf("%w after %d turns", ErrTurnLimit, turn)
		}
		cont, err := l.turn(ctx, conv, &cfg)
		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
	}
}

// turn executes a single provider round-trip. It returns true if the loop
// should continue (tool calls were made), false if it should stop.
func (l *Loop) turn(ctx context.Context, conv *Conversation, cfg *runConfig) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	req := Request{
		Model:        cfg.model,
		SystemPrompt: conv.SystemPrompt(),
		Messages:     conv.Snapshot(),
		Tools:        l.registry.Manifest(),
	}

	msg, err := l.provider.Complete(ctx, req)
	if err != nil {
		return false, err
	}

	// The assistant message is appended whole, tool calls included, so the
	// model sees its own prior calls in subsequent history and every result
	// appended below correlates to an ID in the immediately preceding
	// assistant turn.
	conv.Append(msg)

	if cfg.onEvent != nil {
		for _, block := range msg.Content {
			switch b := block.(type) {
			case TextBlock:
				cfg.onEvent(EventText{Text: b.Text})
			case ThinkingBlock:
				cfg.onEvent(EventThinking{Thinking: b.Thinking})
			}
		}
	}

	toolCalls := msg.ToolCalls()
	if len(toolCalls) == 0 {
		return false, nil
	}

	// Execute sequentially in response order: the model expects correlated
	// results in a deterministic order on the next call.
	for _, tc := range toolCalls {
		if cfg.onEvent != nil {
			cfg.onEvent(EventToolCall{ID: tc.ID, Name: tc.Name, Arguments: tc.Arguments})
		}

		result, execErr := l.execute(ctx, tc)
		if execErr != nil {
			return false, execErr
		}

		conv.Append(ToolResultMessage{
			ToolCallID: tc.ID,
			ToolName:   tc.Name,
			Content:    result.Content,
			IsError:    result.IsError,
			Timestamp:  time.Now(),
		})

		if cfg.onEvent != nil {
			cfg.onEvent(EventToolResult{
				ID:       tc.ID,
				ToolName: tc.Name,
				Content:  result.Text(),
				IsError:  result.IsError,
			})
		}
	}

	return true, nil
}

// execute resolves and invokes one tool call. Unknown tools and invocation
// failures become IsError results; only infrastructure faults surface as
// errors.
func (l *Loop) execute(ctx context.Context, tc ToolCallBlock) (*ToolResult, error) {
	tool, err := l.registry.Lookup(tc.Name)
	if err != nil {
		return ErrorResult(fmt.Sprintf("unknown tool %q: no such tool is registered", tc.Name)), nil
	}
	return tool.Invoke(ctx, tc.Arguments)
}
