package bubbletea_test

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/moczadlo/relay"
	bt "github.com/moczadlo/relay/bubbletea"
	"github.com/stretchr/testify/require"
)

// initModel creates a model and sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, run bt.AgentFunc) bt.Model {
	t.Helper()
	return initModelConv(t, run, relay.NewConversation(""))
}

// initModelConv creates a model over an existing conversation.
func initModelConv(t *testing.T, run bt.AgentFunc, conv *relay.Conversation) bt.Model {
	t.Helper()
	m := bt.New(run, conv, relay.NewRegistry(), relay.DefaultTheme(), "")
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// typeText sends a string as key runes.
func typeText(t *testing.T, m bt.Model, text string) bt.Model {
	t.Helper()
	return updateModel(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

// nopAgent is a mock agent that does nothing.
func nopAgent(_ context.Context, _ *relay.Conversation, _ func(relay.Event)) error {
	return nil
}
