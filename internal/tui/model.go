// Package tui provides the full-screen chat front-end built on bubbletea.
package tui

import (
	"context"
	"strings"

	"github.com/Veraticus/medicoder/internal/engine"
	"github.com/Veraticus/medicoder/internal/tui/themes"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	statusQueued    = "Message queued until the assistant replies."
	statusQueueFull = "One message is already queued. Wait for the assistant to reply."
	statusWait      = "Wait for the assistant to reply before starting over."
)

// chrome is the number of rows outside the transcript viewport.
const chrome = 7

type speaker int

const (
	speakerAssistant speaker = iota
	speakerUser
	speakerError
)

type entry struct {
	text    string
	speaker speaker
}

// Model holds the chat TUI state. At most one turn is in flight; one more
// message can wait in the pending slot.
type Model struct {
	ctx          context.Context
	err          error
	conversation Conversation
	theme        themes.Theme
	keymap       KeyMap
	pending      string
	status       string
	transcript   []entry
	input        textinput.Model
	viewport     viewport.Model
	spinner      spinner.Model
	width        int
	height       int
	busy         bool
	hasPending   bool
	quitting     bool
}

// newModel creates a new model with the given configuration.
func newModel(ctx context.Context, conv Conversation, cfg Config) Model {
	input := textinput.New()
	input.Placeholder = "Type a message"
	input.Prompt = "› "
	input.CharLimit = 4000
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(cfg.Theme.Primary)

	m := Model{
		ctx:          contextOrBackground(ctx),
		conversation: conv,
		theme:        cfg.Theme,
		keymap:       DefaultKeyMap(),
		input:        input,
		viewport:     viewport.New(cfg.Width, 1),
		spinner:      sp,
		width:        cfg.Width,
		height:       cfg.Height,
		busy:         true,
	}
	m.resize()
	return m
}

// Init greets the user.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.start(), m.spinner.Tick)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case replyMsg:
		return m.handleReply(msg)

	case resetMsg:
		m.transcript = nil
		m.busy = false
		m.status = ""
		m.appendReply(msg.reply)
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Send):
		return m.submit()

	case key.Matches(msg, m.keymap.NewCase):
		if m.busy {
			m.status = statusWait
			return m, nil
		}
		m.busy = true
		m.status = ""
		return m, tea.Batch(m.reset(), m.spinner.Tick)

	case key.Matches(msg, m.keymap.ScrollUp):
		m.viewport.SetYOffset(m.viewport.YOffset - m.viewport.Height/2)
		return m, nil

	case key.Matches(msg, m.keymap.ScrollDown):
		m.viewport.SetYOffset(m.viewport.YOffset + m.viewport.Height/2)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	if m.busy {
		if m.hasPending {
			m.status = statusQueueFull
			return m, nil
		}
		m.pending = text
		m.hasPending = true
		m.status = statusQueued
		m.input.Reset()
		return m, nil
	}

	m.input.Reset()
	return m, m.dispatch(text)
}

// dispatch starts a turn for text.
func (m *Model) dispatch(text string) tea.Cmd {
	m.appendEntry(speakerUser, text)
	m.busy = true
	m.status = ""
	return tea.Batch(m.handleTurn(text), m.spinner.Tick)
}

func (m Model) handleReply(msg replyMsg) (tea.Model, tea.Cmd) {
	m.busy = false

	if msg.err != nil {
		m.err = msg.err
		m.appendEntry(speakerError, msg.err.Error())
		m.quitting = true
		return m, tea.Quit
	}

	m.appendReply(msg.reply)
	if msg.reply.Done {
		m.quitting = true
		return m, tea.Quit
	}

	if m.hasPending {
		text := m.pending
		m.pending = ""
		m.hasPending = false
		return m, m.dispatch(text)
	}

	m.status = ""
	return m, nil
}

func (m *Model) appendReply(reply engine.Reply) {
	for _, text := range reply.Messages {
		m.appendEntry(speakerAssistant, text)
	}
}

func (m *Model) appendEntry(who speaker, text string) {
	m.transcript = append(m.transcript, entry{speaker: who, text: text})
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// resize adjusts component sizes when the terminal resizes.
func (m *Model) resize() {
	m.viewport.Width = m.width
	m.viewport.Height = max(m.height-chrome, 1)
	m.input.Width = max(m.width-8, 10)
	m.viewport.SetContent(m.renderTranscript())
}
