package bubbletea_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/moczadlo/relay"
	bt "github.com/moczadlo/relay/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Parallel()

	m := bt.New(nopAgent, relay.NewConversation(""), relay.NewRegistry(), relay.DefaultTheme(), "")

	assert.False(t, m.Running())
	assert.NoError(t, m.Err())
}

func TestModel_Update(t *testing.T) {
	t.Parallel()

	t.Run("window size initializes viewport", func(t *testing.T) {
		t.Parallel()

		m := bt.New(nopAgent, relay.NewConversation(""), relay.NewRegistry(), relay.DefaultTheme(), "")
		updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
		model, ok := updated.(bt.Model)
		require.True(t, ok)

		view := model.View()
		assert.NotEmpty(t, view)
	})

	t.Run("window size resize updates viewport dimensions", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopAgent)

		assert.Equal(t, 80, m.Viewport.Width)
		assert.Equal(t, 20, m.Viewport.Height) // 24 - 1 - 1 - 2 = 20

		m = updateModel(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

		assert.Equal(t, 120, m.Viewport.Width)
		assert.Equal(t, 36, m.Viewport.Height)
	})

	t.Run("ctrl+c when idle quits", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopAgent)
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

		require.NotNil(t, cmd)
		_, isQuit := cmd().(tea.QuitMsg)
		assert.True(t, isQuit)
	})

	t.Run("enter with empty input does nothing", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopAgent)
		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		model := updated.(bt.Model)

		assert.False(t, model.Running())
		assert.Nil(t, cmd)
	})

	t.Run("enter submits input and starts the agent", func(t *testing.T) {
		t.Parallel()

		conv := relay.NewConversation("")
		m := initModelConv(t, nopAgent, conv)
		m = typeText(t, m, "hello")

		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		model := updated.(bt.Model)

		assert.True(t, model.Running())
		assert.NotNil(t, cmd)
		require.Equal(t, 1, conv.Len())
		assert.Contains(t, model.View(), "hello")
	})

	t.Run("text event updates output", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopAgent)
		m = updateModel(t, m, bt.EventMsg{Event: relay.EventText{Text: "hello world"}})

		assert.Contains(t, m.View(), "hello world")
	})

	t.Run("tool call and result events render", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopAgent)
		m = updateModel(t, m, bt.EventMsg{Event: relay.EventToolCall{
			ID: "tc-1", Name: "bash", Arguments: json.RawMessage(`{"command":"ls"}`),
		}})
		m = updateModel(t, m, bt.EventMsg{Event: relay.EventToolResult{
			ID: "tc-1", ToolName: "bash", Content: "file.txt\n",
		}})

		view := m.View()
		assert.Contains(t, view, "bash")
		assert.Contains(t, view, "file.txt")
	})

	t.Run("long tool result is elided", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopAgent)
		m = updateModel(t, m, bt.EventMsg{Event: relay.EventToolResult{
			ToolName: "read", Content: strings.Repeat("result line\n", 30),
		}})

		assert.Contains(t, m.View(), "more lines")
	})

	t.Run("agent done with cancellation leaves no error", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopAgent)
		m = typeText(t, m, "hello")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		require.True(t, m.Running())

		m = updateModel(t, m, bt.AgentDoneMsg{Err: context.Canceled})

		assert.False(t, m.Running())
		assert.NoError(t, m.Err())
	})

	t.Run("agent done with failure records the error", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopAgent)
		m = typeText(t, m, "hello")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		m = updateModel(t, m, bt.AgentDoneMsg{Err: errors.New("provider unreachable")})

		assert.False(t, m.Running())
		assert.Error(t, m.Err())
		assert.Contains(t, m.View(), "provider unreachable")
	})

	t.Run("enter while running is ignored", func(t *testing.T) {
		t.Parallel()

		conv := relay.NewConversation("")
		m := initModelConv(t, nopAgent, conv)
		m = typeText(t, m, "first")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})
		require.True(t, m.Running())

		updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		model := updated.(bt.Model)

		assert.True(t, model.Running())
		assert.Nil(t, cmd)
		assert.Equal(t, 1, conv.Len())
	})
}

func TestModel_Commands(t *testing.T) {
	t.Parallel()

	t.Run("help lists commands", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopAgent)
		m = typeText(t, m, "/help")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		view := m.View()
		assert.Contains(t, view, "/tools")
		assert.Contains(t, view, "/save")
		assert.False(t, m.Running())
	})

	t.Run("tools lists registered tools", func(t *testing.T) {
		t.Parallel()

		registry := relay.NewRegistry(relay.Tool{
			Name:        "echo",
			Description: "repeats its input",
		})
		m := bt.New(nopAgent, relay.NewConversation(""), registry, relay.DefaultTheme(), "")
		m = updateModel(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
		m = typeText(t, m, "/tools")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		view := m.View()
		assert.Contains(t, view, "echo")
		assert.Contains(t, view, "repeats its input")
	})

	t.Run("tools with empty registry", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopAgent)
		m = typeText(t, m, "/tools")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		assert.Contains(t, m.View(), "no tools registered")
	})

	t.Run("clear discards history", func(t *testing.T) {
		t.Parallel()

		conv := relay.NewConversation("")
		conv.AppendUserText("earlier message")
		m := initModelConv(t, nopAgent, conv)
		require.Contains(t, m.View(), "earlier message")

		m = typeText(t, m, "/clear")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		assert.Equal(t, 0, conv.Len())
		assert.NotContains(t, m.View(), "earlier message")
		assert.Contains(t, m.View(), "conversation cleared")
	})

	t.Run("save writes the transcript", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "transcript.json")
		conv := relay.NewConversation("be brief")
		conv.AppendUserText("hello")
		m := bt.New(nopAgent, conv, relay.NewRegistry(), relay.DefaultTheme(), path)
		m = updateModel(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

		m = typeText(t, m, "/save")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		assert.Contains(t, m.View(), "saved transcript")
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "hello")
	})

	t.Run("save with explicit path overrides the default", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "other.json")
		m := initModel(t, nopAgent)
		m = typeText(t, m, "/save "+path)
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		_, err := os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("quit exits the program", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopAgent)
		m = typeText(t, m, "/quit")
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

		require.NotNil(t, cmd)
		_, isQuit := cmd().(tea.QuitMsg)
		assert.True(t, isQuit)
	})

	t.Run("unknown command reports an error", func(t *testing.T) {
		t.Parallel()

		m := initModel(t, nopAgent)
		m = typeText(t, m, "/frobnicate")
		m = updateModel(t, m, tea.KeyMsg{Type: tea.KeyEnter})

		assert.Contains(t, m.View(), "unknown command")
		assert.False(t, m.Running())
	})
}

func TestModel_Teatest(t *testing.T) {
	t.Parallel()

	t.Run("full agent cycle with event delivery", func(t *testing.T) {
		t.Parallel()

		agent := func(_ context.Context, conv *relay.Conversation, onEvent func(relay.Event)) error {
			onEvent(relay.EventText{Text: "Hello!"})
			conv.Append(relay.AssistantMessage{
				Content:    []relay.ContentBlock{relay.TextBlock{Text: "Hello!"}},
				StopReason: relay.StopEndTurn,
			})
			return nil
		}

		conv := relay.NewConversation("")
		m := bt.New(agent, conv, relay.NewRegistry(), relay.DefaultTheme(), "")

		tm := teatest.NewTestModel(t, m,
			teatest.WithInitialTermSize(80, 24),
		)

		tm.Type("hi")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("Hello!")) &&
				bytes.Contains(out, []byte("Enter to send"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})

		fm := tm.FinalModel(t, teatest.WithFinalTimeout(5*time.Second))
		final, ok := fm.(bt.Model)
		require.True(t, ok)
		assert.False(t, final.Running())
		assert.NoError(t, final.Err())
		assert.Equal(t, 2, conv.Len())
	})

	t.Run("existing conversation renders on init", func(t *testing.T) {
		t.Parallel()

		conv := relay.NewConversation("")
		conv.AppendUserText("hello there")
		conv.Append(relay.AssistantMessage{
			Content: []relay.ContentBlock{relay.TextBlock{Text: "Hi! How can I help?"}},
		})
		m := bt.New(nopAgent, conv, relay.NewRegistry(), relay.DefaultTheme(), "")

		tm := teatest.NewTestModel(t, m,
			teatest.WithInitialTermSize(80, 24),
		)

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("hello there")) &&
				bytes.Contains(out, []byte("Hi! How can I help?"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
		tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))
	})

	t.Run("tool events appear during agent run", func(t *testing.T) {
		t.Parallel()

		agent := func(_ context.Context, _ *relay.Conversation, onEvent func(relay.Event)) error {
			onEvent(relay.EventToolCall{
				ID: "tc-1", Name: "bash", Arguments: json.RawMessage(`{"command":"echo hi"}`),
			})
			onEvent(relay.EventToolResult{
				ID: "tc-1", ToolName: "bash", Content: "hi\n",
			})
			onEvent(relay.EventText{Text: "Done!"})
			return nil
		}

		conv := relay.NewConversation("")
		m := bt.New(agent, conv, relay.NewRegistry(), relay.DefaultTheme(), "")

		tm := teatest.NewTestModel(t, m,
			teatest.WithInitialTermSize(80, 24),
		)

		tm.Type("run it")
		tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

		teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
			return bytes.Contains(out, []byte("bash")) &&
				bytes.Contains(out, []byte("Done!"))
		}, teatest.WithDuration(5*time.Second))

		tm.Send(tea.KeyMsg{Type: tea.KeyCtrlC})
		tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))
	})
}
