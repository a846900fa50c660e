package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/habitlog/internal/export"
	"github.com/habitlog/internal/service"
	"github.com/habitlog/internal/tracker"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the document as json, csv or xlsx",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("out")

			svc, err := openTracker(cmd.Context())
			if err != nil {
				return err
			}

			var buf bytes.Buffer
			if err := writeExport(&buf, svc.Document(), format); err != nil {
				return err
			}

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", strings.ToLower(format), out)
			return nil
		},
	}

	cmd.Flags().StringP("format", "f", "json", "Output format (json, csv, xlsx)")
	cmd.Flags().StringP("out", "o", "", "Output file, stdout when empty")

	return cmd
}

func writeExport(w io.Writer, doc *tracker.Document, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		data, err := export.EncodeJSON(doc)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "csv":
		return export.WriteCSV(w, doc)
	case "xlsx":
		return export.WriteXLSX(w, doc)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import [file]",
		Short: "Replace the document with a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			svc, err := openTracker(cmd.Context())
			if err != nil {
				return err
			}

			meta, err := svc.Import(cmd.Context(), payload)
			if warning, ok := service.AsPersistenceWarning(err); ok {
				return warning
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d active, %d archived habits across %d days\n",
				meta.Active, meta.Archived, meta.LogDays)
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show completion for a day and its month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateFlag(cmd)
			if err != nil {
				return err
			}
			day, err := tracker.ParseCanonicalDate(date)
			if err != nil {
				return err
			}

			svc, err := openTracker(cmd.Context())
			if err != nil {
				return err
			}

			stats, err := svc.Dashboard(date, day)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date:        %s\n", stats.Date)
			fmt.Fprintf(out, "Done today:  %d/%d\n", stats.DoneCount, stats.DueCount)
			fmt.Fprintf(out, "Month:       %s..%s %d%% (%d/%d)\n",
				stats.MonthStart, stats.MonthEnd, stats.MonthRate, stats.Month.Completed, stats.Month.Total)
			if stats.BestStreak != nil {
				fmt.Fprintf(out, "Best streak: %s, %d days\n", stats.BestStreak.Name, stats.BestStreak.Days)
			} else {
				fmt.Fprintln(out, "Best streak: -")
			}
			return nil
		},
	}

	cmd.Flags().String("date", "", "Day to report (YYYY-MM-DD), defaults to today")

	return cmd
}

func doneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "done [habit-id]",
		Short: "Mark a habit as done for a day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := dateFlag(cmd)
			if err != nil {
				return err
			}
			undo, _ := cmd.Flags().GetBool("undo")

			svc, err := openTracker(cmd.Context())
			if err != nil {
				return err
			}

			entry, err := svc.SetDone(cmd.Context(), args[0], date, !undo)
			if warning, ok := service.AsPersistenceWarning(err); ok {
				return warning
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s done=%t\n", date, args[0], entry.Done)
			return nil
		},
	}

	cmd.Flags().String("date", "", "Day to update (YYYY-MM-DD), defaults to today")
	cmd.Flags().Bool("undo", false, "Mark as not done")

	return cmd
}

func hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hashed, err := bcrypt.GenerateFromPassword([]byte(args[0]), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(hashed))
			return nil
		},
	}
}

func dateFlag(cmd *cobra.Command) (string, error) {
	raw, _ := cmd.Flags().GetString("date")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return tracker.CanonicalDate(time.Now()), nil
	}
	if !tracker.IsCanonicalDate(raw) {
		return "", fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
	}
	return raw, nil
}
