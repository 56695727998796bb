package main

import (
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/Veraticus/medicoder/internal/cli"
	"github.com/Veraticus/medicoder/internal/model"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

func claimsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "claims",
		Short: "List finalized claims",
		Long: `Display claims recorded in the claims ledger, newest first.

Use 'medicoder claims show ID' to see the codes and transcript of one claim.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Error("failed to close storage", "error", closeErr)
				}
			}()

			records, err := store.ListClaims(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list claims: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No claims found. Finalize a claim in 'medicoder chat' to record one."))
				return nil
			}

			fmt.Fprintln(out, cli.FormatTitle("Finalized Claims"))

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			defer func() {
				if flushErr := w.Flush(); flushErr != nil {
					slog.Error("failed to flush table writer", "error", flushErr)
				}
			}()

			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(cli.PrimaryColor)
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				headerStyle.Render("ID"),
				headerStyle.Render("Created"),
				headerStyle.Render("Patient"),
				headerStyle.Render("Codes"),
				headerStyle.Render("Document"))
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d ICD-10 / %d CPT-4\t%s\n",
					r.ID,
					r.CreatedAt.Local().Format(time.DateTime),
					r.PatientName,
					len(r.Diagnoses),
					len(r.Procedures),
					r.DocumentPath)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of claims to show (0 for all)")
	cmd.AddCommand(claimsShowCmd())
	return cmd
}

func claimsShowCmd() *cobra.Command {
	var transcript bool

	cmd := &cobra.Command{
		Use:   "show ID",
		Short: "Show one finalized claim",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer func() {
				if closeErr := store.Close(); closeErr != nil {
					slog.Error("failed to close storage", "error", closeErr)
				}
			}()

			record, err := store.GetClaim(ctx, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Claim "+record.ID, describeClaim(record, transcript)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&transcript, "transcript", false, "include the conversation transcript")
	return cmd
}

func describeClaim(r *model.ClaimRecord, withTranscript bool) string {
	s := fmt.Sprintf("Patient: %s\nCreated: %s\nDocument: %s\n",
		r.PatientName, r.CreatedAt.Local().Format(time.DateTime), r.DocumentPath)

	s += "\nDiagnoses (ICD-10):\n"
	if len(r.Diagnoses) == 0 {
		s += "  none\n"
	}
	for _, d := range r.Diagnoses {
		s += fmt.Sprintf("  %s - %s\n", d.Code, d.Disease)
	}

	s += "\nProcedures (CPT-4):\n"
	if len(r.Procedures) == 0 {
		s += "  none\n"
	}
	for _, p := range r.Procedures {
		s += fmt.Sprintf("  %s - %s\n", p.Code, p.Procedure)
	}

	if withTranscript {
		s += "\nTranscript:\n"
		for _, m := range r.Transcript {
			if m.Role == model.RoleSystem {
				continue
			}
			s += fmt.Sprintf("  [%s] %s\n", m.Role, m.Content)
		}
	}
	return s
}
