// Package bubbletea provides a Bubble Tea chat TUI for the relay agent.
//
// The agent runs in a background tea.Cmd; each completed block (assistant
// text, thinking, tool call, tool result) arrives as one [EventMsg] and is
// rendered whole. Slash commands (/help, /tools, /clear, /save, /quit)
// control the session without leaving the input line.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/moczadlo/relay"
)

// AgentFunc runs one agent exchange against the conversation. The onEvent
// callback fires once per completed block. The function blocks until the
// exchange completes or the context is cancelled.
type AgentFunc func(ctx context.Context, conv *relay.Conversation, onEvent func(relay.Event)) error

// Run creates and runs the Bubble Tea TUI program. It blocks until the
// program exits. When ctx is cancelled the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// EventMsg wraps an agent event for delivery to the Bubble Tea model.
type EventMsg struct {
	Event relay.Event
}

// AgentDoneMsg signals that the agent exchange has completed.
type AgentDoneMsg struct {
	Err error
}
