package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/apalint/internal/storage"
	"github.com/matsen/apalint/internal/validate"
)

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 0, "Show only the most recent N reports")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history FILE",
	Short: "Summarize reports recorded with check --history",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

// HistoryEntry summarizes one recorded report.
type HistoryEntry struct {
	ID       string `json:"id"`
	Created  string `json:"created_at"`
	Passed   bool   `json:"passed"`
	Errors   int    `json:"errors"`
	Warnings int    `json:"warnings"`
	Info     int    `json:"info"`
}

func runHistory(cmd *cobra.Command, args []string) error {
	reports, err := storage.ReadReports(args[0])
	if err != nil {
		exitWithError(ExitDataError, "reading history: %v", err)
	}
	if historyLimit > 0 && len(reports) > historyLimit {
		reports = reports[len(reports)-historyLimit:]
	}

	entries := make([]HistoryEntry, 0, len(reports))
	for i := range reports {
		r := &reports[i]
		entries = append(entries, HistoryEntry{
			ID:       r.ID,
			Created:  r.CreatedAt.Format("2006-01-02 15:04:05"),
			Passed:   r.Passed(),
			Errors:   len(r.BySeverity(validate.SeverityError)),
			Warnings: len(r.BySeverity(validate.SeverityWarning)),
			Info:     len(r.BySeverity(validate.SeverityInfo)),
		})
	}

	if !humanOutput {
		return outputJSON(entries)
	}
	if len(entries) == 0 {
		outputHuman("No reports recorded.\n")
		return nil
	}
	for _, e := range entries {
		status := "PASS"
		if !e.Passed {
			status = "FAIL"
		}
		outputHuman("%s  %s  %d errors, %d warnings, %d info  %s\n",
			e.Created, status, e.Errors, e.Warnings, e.Info, e.ID[:min(8, len(e.ID))])
	}
	return nil
}
