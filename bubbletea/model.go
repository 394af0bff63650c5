package bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/moczadlo/relay"
	"github.com/moczadlo/relay/jsonx"
	"github.com/moczadlo/relay/markdown"
)

var _ tea.Model = Model{}

// resultPreviewLines bounds how many lines of a tool result are shown inline.
const resultPreviewLines = 6

// Model is the Bubble Tea model for the relay TUI.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable output area. Exported for test access.
	Viewport viewport.Model

	run      AgentFunc
	conv     *relay.Conversation
	registry *relay.Registry
	theme    relay.Theme
	styles   Styles
	savePath string

	spin     spinner.Model
	sections []string

	running bool
	cancel  context.CancelFunc
	eventCh chan relay.Event
	doneCh  chan error
	err     error
	ready   bool
}

// New creates a TUI Model. The registry is consulted for /tools; savePath is
// the default target for /save.
func New(run AgentFunc, conv *relay.Conversation, registry *relay.Registry, theme relay.Theme, savePath string) Model {
	ti := textinput.New()
	ti.Placeholder = "Type a message, or /help for commands..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		Input:    ti,
		run:      run,
		conv:     conv,
		registry: registry,
		theme:    theme,
		styles:   NewStyles(theme),
		savePath: savePath,
		spin:     sp,
	}
}

// Running returns whether the agent is currently running.
func (m Model) Running() bool { return m.running }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.running {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case EventMsg:
		m.sections = append(m.sections, m.renderEvent(msg.Event))
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		if m.eventCh != nil {
			return m, listenForEvent(m.eventCh, m.doneCh)
		}
		return m, nil

	case AgentDoneMsg:
		m.running = false
		m.cancel = nil
		m.eventCh = nil
		m.doneCh = nil
		if msg.Err != nil && !errors.Is(msg.Err, context.Canceled) {
			m.err = msg.Err
		}
		cmds = append(cmds, m.Input.Focus())
		return m, tea.Batch(cmds...)
	}

	// Pass remaining messages to sub-components. The viewport always receives
	// messages for scrolling (keyboard and mouse).
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)

	if !m.running {
		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	b.WriteString(m.Viewport.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusH := 1
	borderH := 2 // newlines between sections
	vpHeight := msg.Height - inputH - statusH - borderH
	if vpHeight < 1 {
		vpHeight = 1
	}

	if !m.ready {
		m.Viewport = viewport.New(msg.Width, vpHeight)
		m = m.renderConversation()
		m.Viewport.SetContent(m.renderContent())
		m.Viewport.GotoBottom()
		m.ready = true
	} else {
		m.Viewport.Width = msg.Width
		m.Viewport.Height = vpHeight
	}

	m.Input.Width = msg.Width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.running {
			if m.cancel != nil {
				m.cancel()
			}
			return m, nil
		}
		return m, tea.Quit

	case tea.KeyEsc:
		// Esc interrupts a running exchange but never quits.
		if m.running && m.cancel != nil {
			m.cancel()
		}
		return m, nil

	case tea.KeyEnter:
		if m.running {
			return m, nil
		}
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		if strings.HasPrefix(text, "/") {
			m.Input.SetValue("")
			return m.handleCommand(text)
		}
		return m.submitInput(text)
	}

	if !m.running {
		var cmd tea.Cmd
		var cmds []tea.Cmd

		// Only forward non-character keys to the viewport so typed letters
		// don't double as scroll keys.
		if msg.Type != tea.KeyRunes {
			m.Viewport, cmd = m.Viewport.Update(msg)
			cmds = append(cmds, cmd)
		}

		m.Input, cmd = m.Input.Update(msg)
		cmds = append(cmds, cmd)

		return m, tea.Batch(cmds...)
	}

	return m, nil
}

// handleCommand executes a slash command typed at the prompt.
func (m Model) handleCommand(text string) (tea.Model, tea.Cmd) {
	cmd, rest, _ := strings.Cut(text, " ")
	switch cmd {
	case "/quit":
		return m, tea.Quit

	case "/help":
		m = m.appendNotice(strings.Join([]string{
			"/help          show this help",
			"/tools         list registered tools",
			"/clear         discard conversation history",
			"/save [path]   save the transcript as JSON",
			"/quit          exit",
			"Esc interrupts a running exchange; Ctrl+C quits when idle.",
		}, "\n"))

	case "/tools":
		infos := m.registry.Manifest()
		if len(infos) == 0 {
			m = m.appendNotice("no tools registered")
			break
		}
		var b strings.Builder
		for _, info := range infos {
			fmt.Fprintf(&b, "%s — %s\n", info.Name, info.Description)
		}
		m = m.appendNotice(strings.TrimRight(b.String(), "\n"))

	case "/clear":
		m.conv.Clear()
		m.sections = nil
		m.err = nil
		m = m.appendNotice("conversation cleared")

	case "/save":
		path := strings.TrimSpace(rest)
		if path == "" {
			path = m.savePath
		}
		if path == "" {
			path = m.conv.ID() + ".json"
		}
		if err := jsonx.Save(path, m.conv); err != nil {
			m = m.appendNotice(m.styles.Error.Render(fmt.Sprintf("save failed: %v", err)))
		} else {
			m = m.appendNotice(fmt.Sprintf("saved transcript to %s", path))
		}

	default:
		m = m.appendNotice(m.styles.Error.Render(fmt.Sprintf("unknown command %s (try /help)", cmd)))
	}

	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	return m, nil
}

func (m Model) appendNotice(text string) Model {
	m.sections = append(m.sections, m.styles.Muted.Render(text))
	return m
}

func (m Model) submitInput(text string) (tea.Model, tea.Cmd) {
	m.Input.SetValue("")
	m.err = nil

	m.conv.AppendUserText(text)
	m.sections = append(m.sections, m.styles.UserMsg.Render("> "+text))
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.eventCh = make(chan relay.Event, 256)
	m.doneCh = make(chan error, 1)
	m.running = true

	m.Input.Blur()

	return m, tea.Batch(
		startAgent(m.run, ctx, m.conv, m.eventCh, m.doneCh),
		listenForEvent(m.eventCh, m.doneCh),
		m.spin.Tick,
	)
}

// renderConversation seeds sections from messages already in the log, so a
// loaded transcript shows its history on startup.
func (m Model) renderConversation() Model {
	for _, msg := range m.conv.Snapshot() {
		switch msg := msg.(type) {
		case relay.UserMessage:
			for _, b := range msg.Content {
				if tb, ok := b.(relay.TextBlock); ok {
					m.sections = append(m.sections, m.styles.UserMsg.Render("> "+tb.Text))
				}
			}
		case relay.AssistantMessage:
			for _, b := range msg.Content {
				switch cb := b.(type) {
				case relay.TextBlock:
					m.sections = append(m.sections, m.renderEvent(relay.EventText{Text: cb.Text}))
				case relay.ThinkingBlock:
					m.sections = append(m.sections, m.renderEvent(relay.EventThinking{Thinking: cb.Thinking}))
				case relay.ToolCallBlock:
					m.sections = append(m.sections, m.renderEvent(relay.EventToolCall{ID: cb.ID, Name: cb.Name, Arguments: cb.Arguments}))
				}
			}
		case relay.ToolResultMessage:
			var content strings.Builder
			for _, b := range msg.Content {
				if tb, ok := b.(relay.TextBlock); ok {
					content.WriteString(tb.Text)
				}
			}
			m.sections = append(m.sections, m.renderEvent(relay.EventToolResult{
				ID:       msg.ToolCallID,
				ToolName: msg.ToolName,
				Content:  content.String(),
				IsError:  msg.IsError,
			}))
		}
	}
	return m
}

func (m Model) renderContent() string {
	return strings.Join(m.sections, "\n\n")
}

// renderEvent turns one agent event into a display section.
func (m Model) renderEvent(evt relay.Event) string {
	width := m.Viewport.Width
	if width <= 0 {
		width = 80
	}

	switch e := evt.(type) {
	case relay.EventText:
		return markdown.Render(e.Text, width, m.theme)

	case relay.EventThinking:
		return m.styles.Thinking.Render(e.Thinking)

	case relay.EventToolCall:
		args := string(e.Arguments)
		if args == "{}" {
			args = ""
		}
		header := m.styles.ToolCall.Render("→ " + e.Name)
		if args == "" {
			return header
		}
		return header + " " + m.styles.Muted.Render(args)

	case relay.EventToolResult:
		marker := m.styles.Success.Render("✓")
		if e.IsError {
			marker = m.styles.Error.Render("✗")
		}
		return marker + " " + m.styles.Muted.Render(e.ToolName) + "\n" + previewResult(e.Content, m.styles)

	default:
		return ""
	}
}

// previewResult shows the head of a tool result, eliding the rest.
func previewResult(content string, styles Styles) string {
	lines := strings.Split(strings.TrimRight(content, "\n"), "\n")
	if len(lines) <= resultPreviewLines {
		return strings.Join(lines, "\n")
	}
	shown := strings.Join(lines[:resultPreviewLines], "\n")
	return shown + "\n" + styles.Muted.Render(fmt.Sprintf("… (%d more lines)", len(lines)-resultPreviewLines))
}

func (m Model) statusLine() string {
	if m.err != nil {
		return m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err))
	}
	if m.running {
		return m.spin.View() + m.styles.Muted.Render(" Working... (Esc to interrupt)")
	}
	return m.styles.Muted.Render("Enter to send, /help for commands, Ctrl+C to quit")
}

// startAgent runs the agent exchange in a goroutine and signals completion.
func startAgent(run AgentFunc, ctx context.Context, conv *relay.Conversation, eventCh chan<- relay.Event, doneCh chan<- error) tea.Cmd {
	return func() tea.Msg {
		err := run(ctx, conv, func(e relay.Event) {
			select {
			case eventCh <- e:
			case <-ctx.Done():
			}
		})
		close(eventCh)
		doneCh <- err
		return nil
	}
}

// listenForEvent waits for the next event from the channel. When the channel
// closes, it reads the error from doneCh and returns AgentDoneMsg.
func listenForEvent(ch <-chan relay.Event, doneCh <-chan error) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return AgentDoneMsg{Err: <-doneCh}
		}
		return EventMsg{Event: evt}
	}
}
