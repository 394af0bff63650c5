package jsonx_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/moczadlo/relay"
	"github.com/moczadlo/relay/jsonx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleConversation(t *testing.T) *relay.Conversation {
	t.Helper()
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	msgs := []relay.Message{
		relay.UserMessage{
			Content:   []relay.ContentBlock{relay.TextBlock{Text: "what is 2+3?"}},
			Timestamp: ts,
		},
		relay.AssistantMessage{
			Content: []relay.ContentBlock{
				relay.ThinkingBlock{Thinking: "needs the add tool"},
				relay.ToolCallBlock{ID: "tc_1", Name: "add", Arguments: json.RawMessage(`{"a":2,"b":3}`)},
			},
			StopReason:    relay.StopToolUse,
			RawStopReason: "tool_use",
			Usage:         relay.Usage{InputTokens: 12, OutputTokens: 8, CacheReadTokens: 4},
			Timestamp:     ts,
		},
		relay.ToolResultMessage{
			ToolCallID: "tc_1",
			ToolName:   "add",
			Content:    []relay.ContentBlock{relay.TextBlock{Text: "5"}},
			Timestamp:  ts,
		},
		relay.AssistantMessage{
			Content:       []relay.ContentBlock{relay.TextBlock{Text: "The sum is 5"}},
			StopReason:    relay.StopEndTurn,
			RawStopReason: "end_turn",
			Timestamp:     ts,
		},
	}
	return relay.RestoreConversation("conv-42", "be precise", ts, ts.Add(time.Minute), msgs)
}

func TestMarshalConversation_RoundTrip(t *testing.T) {
	t.Parallel()
	conv := sampleConversation(t)

	data, err := jsonx.MarshalConversation(conv)
	require.NoError(t, err)

	got, err := jsonx.UnmarshalConversation(data)
	require.NoError(t, err)

	assert.Equal(t, conv.ID(), got.ID())
	assert.Equal(t, conv.SystemPrompt(), got.SystemPrompt())
	assert.True(t, conv.CreatedAt().Equal(got.CreatedAt()))

	msgs := got.Snapshot()
	require.Len(t, msgs, 4)

	um := msgs[0].(relay.UserMessage)
	assert.Equal(t, "what is 2+3?", um.Content[0].(relay.TextBlock).Text)

	am := msgs[1].(relay.AssistantMessage)
	require.Len(t, am.Content, 2)
	assert.Equal(t, "needs the add tool", am.Content[0].(relay.ThinkingBlock).Thinking)
	tc := am.Content[1].(relay.ToolCallBlock)
	assert.Equal(t, "tc_1", tc.ID)
	assert.Equal(t, "add", tc.Name)
	assert.JSONEq(t, `{"a":2,"b":3}`, string(tc.Arguments))
	assert.Equal(t, relay.StopToolUse, am.StopReason)
	assert.Equal(t, "tool_use", am.RawStopReason)
	assert.Equal(t, relay.Usage{InputTokens: 12, OutputTokens: 8, CacheReadTokens: 4}, am.Usage)

	tr := msgs[2].(relay.ToolResultMessage)
	assert.Equal(t, "tc_1", tr.ToolCallID)
	assert.Equal(t, "add", tr.ToolName)
	assert.False(t, tr.IsError)

	final := msgs[3].(relay.AssistantMessage)
	assert.Equal(t, "The sum is 5", final.Content[0].(relay.TextBlock).Text)
	assert.Equal(t, relay.StopEndTurn, final.StopReason)
}

func TestMarshalConversation_Envelope(t *testing.T) {
	t.Parallel()
	data, err := jsonx.MarshalConversation(sampleConversation(t))
	require.NoError(t, err)

	var env map[string]any
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, float64(1), env["version"])
	assert.Equal(t, "conv-42", env["id"])

	msgs := env["messages"].([]any)
	require.Len(t, msgs, 4)
	assert.Equal(t, "user", msgs[0].(map[string]any)["type"])
	assert.Equal(t, "assistant", msgs[1].(map[string]any)["type"])
	assert.Equal(t, "tool_result", msgs[2].(map[string]any)["type"])

	// Tool call ID survives the round trip through the DTO.
	toolResult := msgs[2].(map[string]any)
	assert.Equal(t, "tc_1", toolResult["tool_call_id"])
}

func TestUnmarshalConversation_Errors(t *testing.T) {
	t.Parallel()

	t.Run("rejects unknown version", func(t *testing.T) {
		t.Parallel()
		_, err := jsonx.UnmarshalConversation([]byte(`{"version": 99, "messages": []}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "version")
	})

	t.Run("rejects unknown message type", func(t *testing.T) {
		t.Parallel()
		_, err := jsonx.UnmarshalConversation([]byte(`{"version": 1, "messages": [{"type": "robot"}]}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "robot")
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		t.Parallel()
		_, err := jsonx.UnmarshalConversation([]byte(`{not json`))
		assert.Error(t, err)
	})
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()
	conv := sampleConversation(t)
	path := filepath.Join(t.TempDir(), "transcripts", "conv.json")

	require.NoError(t, jsonx.Save(path, conv))

	// No leftover temp file.
	_, err := os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))

	got, err := jsonx.Load(path)
	require.NoError(t, err)
	assert.Equal(t, conv.ID(), got.ID())
	assert.Equal(t, conv.Len(), got.Len())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()
	_, err := jsonx.Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
