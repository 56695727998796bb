package main

import (
	"fmt"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/medicoder/internal/cli"
	"github.com/Veraticus/medicoder/internal/matcher"
	"github.com/Veraticus/medicoder/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func matchCmd() *cobra.Command {
	var procedures bool
	var threshold int

	cmd := &cobra.Command{
		Use:   "match TEXT...",
		Short: "Rank catalog codes against a free-text phrase",
		Long: `Fuzzy-match a diagnosis (or, with --procedures, a procedure) phrase against
the code catalog and print the best candidates with their similarity scores.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			phrase := strings.Join(args, " ")
			cat := loadCatalog()

			var results []model.MatchResult
			system := "ICD-10"
			if procedures {
				system = "CPT-4"
				results = matcher.Procedures(phrase, cat.Procedures(), threshold)
			} else {
				results = matcher.Diagnoses(phrase, cat.Diagnoses(), threshold)
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render(fmt.Sprintf("No %s codes matched %q.", system, phrase)))
				return nil
			}

			fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%s matches for %q", system, phrase)))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			defer func() {
				if flushErr := w.Flush(); flushErr != nil {
					slog.Error("failed to flush table writer", "error", flushErr)
				}
			}()

			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(cli.PrimaryColor)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				headerStyle.Render("#"),
				headerStyle.Render("Score"),
				headerStyle.Render("Code"),
				headerStyle.Render("Description"))
			for i, r := range results {
				fmt.Fprintf(w, "%c\t%d\t%s\t%s\n", rune('a'+i), r.Score, r.Code, r.Label)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&procedures, "procedures", false, "match against CPT-4 procedures instead of ICD-10 diagnoses")
	cmd.Flags().IntVar(&threshold, "threshold", matcher.DefaultThreshold, "minimum similarity score (exclusive)")
	return cmd
}
