package relay_test

import (
	"testing"
	"time"

	"github.com/moczadlo/relay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversation_Append(t *testing.T) {
	t.Parallel()

	t.Run("appends in order", func(t *testing.T) {
		t.Parallel()
		conv := relay.NewConversation("be helpful")
		conv.AppendUserText("first")
		conv.Append(relay.AssistantMessage{
			Content:    []relay.ContentBlock{relay.TextBlock{Text: "second"}},
			StopReason: relay.StopEndTurn,
		})
		conv.AppendUserText("third")

		msgs := conv.Snapshot()
		require.Len(t, msgs, 3)
		assert.Equal(t, relay.RoleUser, msgs[0].Role())
		assert.Equal(t, relay.RoleAssistant, msgs[1].Role())
		assert.Equal(t, relay.RoleUser, msgs[2].Role())
	})

	t.Run("AppendUserText wraps text in a user message", func(t *testing.T) {
		t.Parallel()
		conv := relay.NewConversation("")
		conv.AppendUserText("hello")

		msgs := conv.Snapshot()
		require.Len(t, msgs, 1)
		um, ok := msgs[0].(relay.UserMessage)
		require.True(t, ok)
		require.Len(t, um.Content, 1)
		assert.Equal(t, relay.TextBlock{Text: "hello"}, um.Content[0])
	})

	t.Run("updates UpdatedAt", func(t *testing.T) {
		t.Parallel()
		conv := relay.NewConversation("")
		before := conv.UpdatedAt()
		time.Sleep(time.Millisecond)
		conv.AppendUserText("hi")
		assert.True(t, conv.UpdatedAt().After(before))
	})
}

func TestConversation_Snapshot(t *testing.T) {
	t.Parallel()

	t.Run("returns a copy", func(t *testing.T) {
		t.Parallel()
		conv := relay.NewConversation("")
		conv.AppendUserText("original")

		snap := conv.Snapshot()
		snap[0] = relay.UserMessage{Content: []relay.ContentBlock{relay.TextBlock{Text: "mutated"}}}

		msgs := conv.Snapshot()
		um, ok := msgs[0].(relay.UserMessage)
		require.True(t, ok)
		assert.Equal(t, relay.TextBlock{Text: "original"}, um.Content[0])
	})

	t.Run("appending to a snapshot does not grow the log", func(t *testing.T) {
		t.Parallel()
		conv := relay.NewConversation("")
		conv.AppendUserText("one")

		snap := conv.Snapshot()
		_ = append(snap, relay.UserMessage{})

		assert.Equal(t, 1, conv.Len())
	})

	t.Run("empty conversation yields empty snapshot", func(t *testing.T) {
		t.Parallel()
		conv := relay.NewConversation("prompt")
		assert.Empty(t, conv.Snapshot())
		assert.Equal(t, 0, conv.Len())
	})
}

func TestConversation_ToolResultRoundTrip(t *testing.T) {
	t.Parallel()

	// A tool result appended after the assistant's call must echo the
	// originating call's ID so the model can correlate them.
	conv := relay.NewConversation("")
	conv.Append(relay.AssistantMessage{
		Content: []relay.ContentBlock{
			relay.ToolCallBlock{ID: "call_42", Name: "add", Arguments: []byte(`{"a":2,"b":3}`)},
		},
		StopReason: relay.StopToolUse,
	})
	conv.Append(relay.ToolResultMessage{
		ToolCallID: "call_42",
		ToolName:   "add",
		Content:    []relay.ContentBlock{relay.TextBlock{Text: "5"}},
	})

	msgs := conv.Snapshot()
	require.Len(t, msgs, 2)
	am, ok := msgs[0].(relay.AssistantMessage)
	require.True(t, ok)
	require.Len(t, am.ToolCalls(), 1)
	trm, ok := msgs[1].(relay.ToolResultMessage)
	require.True(t, ok)
	assert.Equal(t, am.ToolCalls()[0].ID, trm.ToolCallID)
	assert.False(t, trm.IsError)
}

func TestConversation_Clear(t *testing.T) {
	t.Parallel()
	conv := relay.NewConversation("prompt")
	conv.AppendUserText("a")
	conv.AppendUserText("b")
	id := conv.ID()

	conv.Clear()

	assert.Equal(t, 0, conv.Len())
	assert.Equal(t, id, conv.ID())
	assert.Equal(t, "prompt", conv.SystemPrompt())
}
