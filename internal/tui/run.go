package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run drives conv in a full-screen chat until the conversation ends, the user
// quits or ctx is canceled.
func Run(ctx context.Context, conv Conversation, opts ...Option) error {
	if conv == nil {
		return errors.New("conversation is required")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	final, err := tea.NewProgram(newModel(ctx, conv, cfg), programOpts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("TUI error: %w", err)
	}

	if m, ok := final.(Model); ok && m.err != nil {
		return fmt.Errorf("conversation failed: %w", m.err)
	}
	return nil
}
