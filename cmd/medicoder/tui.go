package main

import (
	"github.com/Veraticus/medicoder/internal/tui"
	"github.com/Veraticus/medicoder/internal/tui/themes"
	"github.com/spf13/cobra"
)

func tuiCmd() *cobra.Command {
	var theme string
	var inline bool

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Start a full-screen coding conversation",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Progress bars would corrupt the screen.
			a, err := newApp(cmd.Context(), nil)
			if err != nil {
				return err
			}
			defer a.Close()

			return tui.Run(cmd.Context(), a.newEngine(),
				tui.WithTheme(themes.ByName(theme)),
				tui.WithAltScreen(!inline))
		},
	}

	cmd.Flags().StringVar(&theme, "theme", "default", "color theme (default, plain)")
	cmd.Flags().BoolVar(&inline, "inline", false, "render in the main screen buffer")
	return cmd
}
