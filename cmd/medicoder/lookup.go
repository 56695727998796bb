package main

import (
	"fmt"
	"strings"

	"github.com/Veraticus/medicoder/internal/cli"
	"github.com/spf13/cobra"
)

func lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup CODE...",
		Short: "Describe ICD-10 or CPT-4 codes",
		Long: `Look up billing codes by exact, case-insensitive match. The ICD-10 catalog is
searched before the CPT-4 catalog. Codes may be separated by spaces or commas.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			results := loadCatalog().LookupAll(strings.Join(args, ","))

			missing := 0
			for _, result := range results {
				if result.Found() {
					fmt.Fprintln(out, cli.FormatSuccess(result.Describe()))
					continue
				}
				missing++
				fmt.Fprintln(out, cli.FormatWarning(result.Describe()))
			}

			if missing > 0 {
				return fmt.Errorf("%d of %d codes not found", missing, len(results))
			}
			return nil
		},
	}
}
