// Package console renders the orchestration core's exposed state as an
// interactive terminal console: connection status, transcript feed,
// intake form values, and a prompt box for typed messages.
package console

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"voicedesk-agent/internal/activity"
	"voicedesk-agent/internal/intake"
	"voicedesk-agent/internal/session"
)

const refreshInterval = 250 * time.Millisecond

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	connectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	sourceStyles   = map[activity.Source]lipgloss.Style{
		activity.SourceUser:   lipgloss.NewStyle().Foreground(lipgloss.Color("81")),
		activity.SourceAgent:  lipgloss.NewStyle().Foreground(lipgloss.Color("213")),
		activity.SourceSystem: lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		activity.SourceTool:   lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	}
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")).
			Padding(0, 1)
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Deps are the read and command surfaces the console renders and drives.
type Deps struct {
	Manager *session.Manager
	Log     *activity.Log
	Form    *intake.Store
	// Screen reports the currently active screen name.
	Screen func() string
	// NavigateNext advances the host's screen rotation (home ->
	// services -> intake -> home).
	NavigateNext func()
}

type tickMsg time.Time

// Model is the bubbletea model for the console.
type Model struct {
	deps     Deps
	input    textinput.Model
	feed     viewport.Model
	width    int
	height   int
	ready    bool
	quitting bool
}

// New builds the console model.
func New(deps Deps) Model {
	input := textinput.New()
	input.Placeholder = "Type a message for the agent..."
	input.Prompt = "> "
	input.CharLimit = 500
	input.Focus()

	return Model{deps: deps, input: input}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		feedHeight := msg.Height - 14
		if feedHeight < 3 {
			feedHeight = 3
		}
		if !m.ready {
			m.feed = viewport.New(msg.Width-4, feedHeight)
			m.ready = true
		} else {
			m.feed.Width = msg.Width - 4
			m.feed.Height = feedHeight
		}
		return m, nil

	case tickMsg:
		if m.ready {
			m.feed.SetContent(m.renderFeed())
		}
		return m, tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "enter":
			text := m.input.Value()
			m.input.Reset()
			m.deps.Manager.SendUserMessage(text)
			return m, nil
		case "ctrl+o":
			go func() {
				_ = m.deps.Manager.Start(context.Background(), session.StartOptions{})
			}()
			return m, nil
		case "ctrl+x":
			_ = m.deps.Manager.Stop()
			return m, nil
		case "ctrl+t":
			m.deps.Manager.ToggleMic(nil)
			return m, nil
		case "ctrl+y":
			m.deps.Manager.SendFeedback(true)
			return m, nil
		case "ctrl+b":
			m.deps.Manager.SendFeedback(false)
			return m, nil
		case "tab":
			if m.deps.NavigateNext != nil {
				m.deps.NavigateNext()
			}
			return m, nil
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.feed, cmd = m.feed.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "starting console..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("VoiceDesk Agent Console"))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(panelStyle.Render(m.feed.View()))
	b.WriteString("\n")
	b.WriteString(m.renderForm())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render(
		"enter send · ctrl+o connect · ctrl+x disconnect · ctrl+t mic · ctrl+y/ctrl+b feedback · tab screen · ctrl+c quit"))
	return b.String()
}

func (m Model) renderStatus() string {
	state := m.deps.Manager.State()

	status := statusStyle.Render(string(state.Status))
	if state.Status == session.StatusConnected {
		status = connectedStyle.Render(string(state.Status))
	}

	parts := []string{"status: " + status}
	if state.ConversationID != "" {
		parts = append(parts, "conversation: "+state.ConversationID)
	}
	if m.deps.Screen != nil {
		parts = append(parts, "screen: "+m.deps.Screen())
	}
	if state.IsSpeaking {
		parts = append(parts, "agent speaking")
	}
	if state.IsMicMuted {
		parts = append(parts, "mic muted")
	}
	if state.CanSendFeedback {
		parts = append(parts, "feedback available")
	}
	line := strings.Join(parts, "  ·  ")
	if state.LastError != "" {
		line += "\n" + errorStyle.Render("last error: "+state.LastError)
	}
	return line
}

func (m Model) renderFeed() string {
	entries := m.deps.Log.Entries()
	if len(entries) == 0 {
		return statusStyle.Render("no activity yet")
	}

	// Oldest first reads naturally in a scrolling feed.
	var lines []string
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		style, ok := sourceStyles[e.Source]
		if !ok {
			style = statusStyle
		}
		lines = append(lines, fmt.Sprintf("%s %s",
			style.Render("["+string(e.Source)+"]"), e.Text))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderForm() string {
	values := m.deps.Form.Values()

	var parts []string
	for _, f := range intake.Fields {
		value := values[f]
		if value == "" {
			value = "—"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", f, value))
	}
	line := "intake · " + strings.Join(parts, " | ")

	if last := m.deps.Form.LastSubmission(); last != nil {
		line += "\n" + statusStyle.Render(
			fmt.Sprintf("last submission: %s (%s)", last.SubmittedAt, last.Source))
	}
	return line
}
