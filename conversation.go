package relay

import (
	"fmt"
	"time"
)

// Conversation is an append-only, ordered log of the turns exchanged between
// the user, the assistant, and tool executions. It owns its messages
// exclusively: Snapshot returns a copy, so no caller can reach into the
// internal sequence. Messages are never mutated or removed once appended
// (Clear starts a fresh log; it does not edit history).
//
// A Conversation is not safe for concurrent use. Each active agent owns its
// own instance and mutates it from a single control-loop goroutine.
type Conversation struct {
	id           string
	systemPrompt string
	messages     []Message
	createdAt    time.Time
	updatedAt    time.Time
}

// NewConversation creates an empty conversation with the given system prompt.
func NewConversation(systemPrompt string) *Conversation {
	now := time.Now()
	return &Conversation{
		id:           fmt.Sprintf("conv-%d", now.UnixNano()),
		systemPrompt: systemPrompt,
		createdAt:    now,
		updatedAt:    now,
	}
}

// ID returns the conversation's identifier.
func (c *Conversation) ID() string { return c.id }

// SystemPrompt returns the system prompt sent with every provider call.
func (c *Conversation) SystemPrompt() string { return c.systemPrompt }

// CreatedAt returns the creation time.
func (c *Conversation) CreatedAt() time.Time { return c.createdAt }

// UpdatedAt returns the time of the last append or clear.
func (c *Conversation) UpdatedAt() time.Time { return c.updatedAt }

// Len returns the number of messages.
func (c *Conversation) Len() int { return len(c.messages) }

// Append adds a message to the end of the log. It performs no validation
// beyond the Message type itself and never fails. Role alternation is the
// caller's responsibility: tool results travel as user-role messages on the
// wire, so the loop, not the log, produces valid sequences.
func (c *Conversation) Append(msg Message) {
	c.messages = append(c.messages, msg)
	c.updatedAt = time.Now()
}

// AppendUserText wraps text in a user message and appends it.
func (c *Conversation) AppendUserText(text string) {
	c.Append(UserMessage{
		Content:   []ContentBlock{TextBlock{Text: text}},
		Timestamp: time.Now(),
	})
}

// RestoreConversation rebuilds a conversation from persisted state. The
// message slice is copied, so the caller keeps no handle into the log.
func RestoreConversation(id, systemPrompt string, createdAt, updatedAt time.Time, msgs []Message) *Conversation {
	c := &Conversation{
		id:           id,
		systemPrompt: systemPrompt,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
	c.messages = make([]Message, len(msgs))
	copy(c.messages, msgs)
	return c
}

// Snapshot returns a copy of the ordered message sequence for transmission
// to a provider. Mutating the returned slice does not affect the
// conversation. The Message values themselves are immutable by convention.
func (c *Conversation) Snapshot() []Message {
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Clear discards all messages, keeping identity and system prompt.
func (c *Conversation) Clear() {
	c.messages = nil
	c.updatedAt = time.Now()
}
