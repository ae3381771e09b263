package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/matsen/apalint/internal/reference"
	"github.com/matsen/apalint/internal/validate"
)

// Constants for output formatting.
const (
	TitleMaxLen   = 60 // Reference titles in human output
	ExcerptMaxLen = 70 // Section content previews
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is a generic response for commands that return status.
type StatusResponse struct {
	Status string `json:"status"`
	Path   string `json:"path,omitempty"`
	Count  int    `json:"count"`
}

// truncateString truncates a string to maxLen runes, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

// formatAuthorsShort formats surnames APA style: one or two names joined
// with "&", three or more as "First et al.".
func formatAuthorsShort(authors []reference.Author) string {
	switch len(authors) {
	case 0:
		return "(no author)"
	case 1:
		return authors[0].Surname()
	case 2:
		return authors[0].Surname() + " & " + authors[1].Surname()
	default:
		return authors[0].Surname() + " et al."
	}
}

// formatReferenceShort renders "Surname (2020a). Title".
func formatReferenceShort(r reference.Reference) string {
	return fmt.Sprintf("%s (%s). %s", formatAuthorsShort(r.Authors), r.DisplayYear(), truncateString(r.Title, TitleMaxLen))
}

// formatIssue renders one report issue on a single line.
func formatIssue(i validate.Issue) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%-7s %-18s %s", strings.ToUpper(string(i.Severity)), i.Code, i.Message)
	if i.Location != "" {
		fmt.Fprintf(&sb, " [%s]", i.Location)
	}
	return sb.String()
}

// printReportHuman prints issues grouped by severity, then a summary line.
func printReportHuman(r validate.Report) {
	for _, sev := range []validate.Severity{validate.SeverityError, validate.SeverityWarning, validate.SeverityInfo} {
		for _, i := range r.BySeverity(sev) {
			outputHuman("%s\n", formatIssue(i))
		}
	}
	status := "PASSED"
	if !r.Passed() {
		status = "FAILED"
	}
	outputHuman("\n%s: %d errors, %d warnings, %d info, %d citations checked\n",
		status,
		len(r.BySeverity(validate.SeverityError)),
		len(r.BySeverity(validate.SeverityWarning)),
		len(r.BySeverity(validate.SeverityInfo)),
		len(r.Citations))
}
