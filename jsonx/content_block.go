package jsonx

import (
	"encoding/json"
	"fmt"

	"github.com/moczadlo/relay"
)

// contentBlock is the JSON representation of a ContentBlock with a type
// discriminator.
type contentBlock struct {
	Type      string           `json:"type"`
	Text      *string          `json:"text,omitempty"`
	Thinking  *string          `json:"thinking,omitempty"`
	ID        *string          `json:"id,omitempty"`
	Name      *string          `json:"name,omitempty"`
	Arguments *json.RawMessage `json:"arguments,omitempty"`
}

func marshalContentBlocks(blocks []relay.ContentBlock) ([]contentBlock, error) {
	result := make([]contentBlock, len(blocks))
	for i, b := range blocks {
		cb, err := marshalContentBlock(b)
		if err != nil {
			return nil, fmt.Errorf("content block %d: %w", i, err)
		}
		result[i] = cb
	}
	return result, nil
}

func marshalContentBlock(b relay.ContentBlock) (contentBlock, error) {
	switch v := b.(type) {
	case relay.TextBlock:
		return contentBlock{Type: "text", Text: &v.Text}, nil
	case relay.ThinkingBlock:
		return contentBlock{Type: "thinking", Thinking: &v.Thinking}, nil
	case relay.ToolCallBlock:
		args := v.Arguments
		return contentBlock{Type: "tool_call", ID: &v.ID, Name: &v.Name, Arguments: &args}, nil
	default:
		return contentBlock{}, fmt.Errorf("unknown content block type: %T", b)
	}
}

func unmarshalContentBlocks(dtos []contentBlock) ([]relay.ContentBlock, error) {
	result := make([]relay.ContentBlock, len(dtos))
	for i, dto := range dtos {
		b, err := unmarshalContentBlock(dto)
		if err != nil {
			return nil, fmt.Errorf("content block %d: %w", i, err)
		}
		result[i] = b
	}
	return result, nil
}

func unmarshalContentBlock(dto contentBlock) (relay.ContentBlock, error) {
	switch dto.Type {
	case "text":
		var text string
		if dto.Text != nil {
			text = *dto.Text
		}
		return relay.TextBlock{Text: text}, nil
	case "thinking":
		var thinking string
		if dto.Thinking != nil {
			thinking = *dto.Thinking
		}
		return relay.ThinkingBlock{Thinking: thinking}, nil
	case "tool_call":
		var id, name string
		if dto.ID != nil {
			id = *dto.ID
		}
		if dto.Name != nil {
			name = *dto.Name
		}
		var args json.RawMessage
		if dto.Arguments != nil {
			args = *dto.Arguments
		}
		return relay.ToolCallBlock{ID: id, Name: name, Arguments: args}, nil
	default:
		return nil, fmt.Errorf("unknown content block type: %q", dto.Type)
	}
}
