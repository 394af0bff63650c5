// Package jsonx persists conversations as versioned JSON transcripts.
//
// The envelope carries an explicit version so old transcripts stay readable
// as the format evolves. Sealed domain types don't round-trip through
// encoding/json directly, so messages and content blocks are mapped through
// DTOs with type discriminators.
package jsonx

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/moczadlo/relay"
)

// envelope is the v1 wire format for a persisted conversation.
type envelope struct {
	Version      int          `json:"version"`
	ID           string       `json:"id"`
	SystemPrompt string       `json:"system_prompt"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
	Messages     []messageDTO `json:"messages"`
}

// MarshalConversation serializes a conversation to JSON in v1 envelope format.
func MarshalConversation(c *relay.Conversation) ([]byte, error) {
	msgs := c.Snapshot()
	env := envelope{
		Version:      1,
		ID:           c.ID(),
		SystemPrompt: c.SystemPrompt(),
		CreatedAt:    c.CreatedAt(),
		UpdatedAt:    c.UpdatedAt(),
		Messages:     make([]messageDTO, len(msgs)),
	}
	for i, msg := range msgs {
		dto, err := marshalMessage(msg)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		env.Messages[i] = dto
	}
	return json.MarshalIndent(env, "", "  ")
}

// UnmarshalConversation deserializes a conversation from JSON in v1 envelope
// format.
func UnmarshalConversation(data []byte) (*relay.Conversation, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	if env.Version != 1 {
		return nil, fmt.Errorf("unsupported envelope version: %d", env.Version)
	}
	msgs := make([]relay.Message, len(env.Messages))
	for i, dto := range env.Messages {
		msg, err := unmarshalMessage(dto)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		msgs[i] = msg
	}
	return relay.RestoreConversation(env.ID, env.SystemPrompt, env.CreatedAt, env.UpdatedAt, msgs), nil
}

// Save writes a conversation to a JSON file, creating parent directories as
// needed. The write goes through a temp file and rename so a crash never
// leaves a half-written transcript.
func Save(path string, c *relay.Conversation) error {
	data, err := MarshalConversation(c)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best-effort cleanup
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Load reads a conversation from a JSON file.
func Load(path string) (*relay.Conversation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return UnmarshalConversation(data)
}
