package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the chat.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	header := m.theme.Title.Render("🩺 Medical Coding Assistant")
	input := m.theme.RoundedBox.
		Width(max(m.width-2, 10)).
		Render(m.input.View())

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		m.viewport.View(),
		input,
		m.renderStatus(),
		m.renderHelp(),
	)
}

func (m Model) renderTranscript() string {
	width := max(m.width-2, 20)
	parts := make([]string, len(m.transcript))
	for i, e := range m.transcript {
		parts[i] = m.renderEntry(e, width)
	}
	return strings.Join(parts, "\n\n")
}

func (m Model) renderEntry(e entry, width int) string {
	var label string
	body := m.theme.AssistantText
	switch e.speaker {
	case speakerUser:
		label = m.theme.UserLabel.Render("You")
		body = m.theme.UserText
	case speakerError:
		label = m.theme.StatusError.Render("Error")
		body = m.theme.StatusError
	default:
		label = m.theme.AssistantLabel.Render("Assistant")
	}
	return label + "\n" + body.Width(width).Render(e.text)
}

func (m Model) renderStatus() string {
	var parts []string
	if m.busy {
		parts = append(parts, m.spinner.View()+" "+m.theme.StatusPending.Render("Thinking..."))
	}
	if m.status != "" {
		parts = append(parts, m.theme.StatusInfo.Render(m.status))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderHelp() string {
	bindings := m.keymap.ShortHelp()
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		help := b.Help()
		parts[i] = help.Key + " " + help.Desc
	}
	return m.theme.Help.Render(strings.Join(parts, " • "))
}
