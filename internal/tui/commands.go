package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// start greets the user.
func (m Model) start() tea.Cmd {
	conv := m.conversation
	return func() tea.Msg {
		return replyMsg{reply: conv.Start()}
	}
}

// handleTurn runs one turn off the UI goroutine.
func (m Model) handleTurn(input string) tea.Cmd {
	conv, ctx := m.conversation, m.ctx
	return func() tea.Msg {
		reply, err := conv.Handle(ctx, input)
		return replyMsg{reply: reply, err: err}
	}
}

// reset starts a new conversation.
func (m Model) reset() tea.Cmd {
	conv := m.conversation
	return func() tea.Msg {
		return resetMsg{reply: conv.Reset()}
	}
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
