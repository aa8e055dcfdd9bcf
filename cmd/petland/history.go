package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyTarget string
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded check and split runs",
		Long: `Show the most recent database checks and repository splits from the run
journal. The journal must be enabled with --journal or journal.path.`,
		Example: `  petland history --journal ./petland.db
  petland history --limit 5 --target backend`,
		Args: cobra.NoArgs,
		RunE: historyRun,
	}

	cmd.Flags().IntVar(&historyLimit, "limit", 10, "maximum runs to show per table (0 for all)")
	cmd.Flags().StringVar(&historyTarget, "target", "", "only show split runs for this target (backend or frontend)")

	return cmd
}

func historyRun(cmd *cobra.Command, args []string) error {
	if globalStore == nil {
		return fmt.Errorf("run journal is disabled; set journal.path or pass --journal")
	}

	out := cmd.OutOrStdout()

	checks, err := globalStore.ListCheckRuns(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list check runs: %w", err)
	}
	splits, err := globalStore.ListSplitRuns(historyTarget, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list split runs: %w", err)
	}

	fmt.Fprintln(out, "Database Checks")
	fmt.Fprintln(out, "===============")
	if len(checks) == 0 {
		fmt.Fprintln(out, "No check runs recorded.")
	} else {
		fmt.Fprintf(out, "%-17s %-9s %-8s %7s  %s\n", "Started", "Dialect", "Status", "Tables", "Detail")
		fmt.Fprintln(out, strings.Repeat("-", 70))
		for _, run := range checks {
			detail := run.ServerVersion
			if run.ErrorMessage != "" {
				detail = run.ErrorMessage
			}
			fmt.Fprintf(out, "%-17s %-9s %-8s %7d  %s\n",
				formatTime(run.StartTime),
				orDash(run.Dialect),
				run.Status,
				run.TableCount,
				truncate(detail, 60),
			)
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Repository Splits")
	fmt.Fprintln(out, "=================")
	if len(splits) == 0 {
		fmt.Fprintln(out, "No split runs recorded.")
		return nil
	}
	fmt.Fprintf(out, "%-17s %-9s %-8s %6s %7s %4s  %s\n", "Started", "Target", "Status", "Copied", "Skipped", "VCS", "Destination")
	fmt.Fprintln(out, strings.Repeat("-", 70))
	for _, run := range splits {
		fmt.Fprintf(out, "%-17s %-9s %-8s %6d %7d %4d  %s\n",
			formatTime(run.StartTime),
			run.Target,
			run.Status,
			run.FilesCopied,
			run.FilesSkipped,
			run.VCSFailures,
			run.Destination,
		)
		if run.ErrorMessage != "" {
			printIndented(out, run.ErrorMessage)
		}
	}

	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

func printIndented(out io.Writer, msg string) {
	fmt.Fprintf(out, "%17s %s\n", "", truncate(msg, 80))
}
