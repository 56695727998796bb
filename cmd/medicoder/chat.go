package main

import (
	"os"

	"github.com/Veraticus/medicoder/internal/cli"
	"github.com/spf13/cobra"
)

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start a line-mode coding conversation",
		Long: `Start a conversation in the terminal. Type "exit", "quit" or "bye" to leave;
finalized claims are written as PDFs and recorded in the claims ledger.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cli.NewInterruptHandler(os.Stdout).HandleInterrupts(cmd.Context())

			a, err := newApp(ctx, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			return cli.NewChat(a.newEngine(), os.Stdin, os.Stdout).Run(ctx)
		},
	}
}
