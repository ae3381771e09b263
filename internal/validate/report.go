// Package validate checks a classified document for APA compliance problems
// and cross-checks its citations against its reference list.
package validate

import (
	"encoding/json"
	"time"

	"github.com/matsen/apalint/internal/citation"
)

// Severity of an issue. Only errors fail a report.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Code identifies the rule that produced an issue.
type Code string

const (
	CodeNoReferences     Code = "NO_REFERENCES"
	CodeCiteOrphan       Code = "CITE_ORPHAN"
	CodeCiteYearMismatch Code = "CITE_YEAR_MISMATCH"
	CodeRefUncited       Code = "REF_UNCITED"
	CodeNoTitlePage      Code = "NO_TITLE_PAGE"
	CodeAbstractTooLong  Code = "ABSTRACT_TOO_LONG"
	CodeEmptyParagraphs  Code = "EMPTY_PARAGRAPHS"
	CodeFormatMismatch   Code = "FORMAT_MISMATCH"
)

// Issue is one rule violation.
type Issue struct {
	Code     Code     `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`

	// Location is a human-readable place, such as a section path.
	Location string `json:"location,omitempty"`
	// Position is an offset into the document body text.
	Position *int `json:"position,omitempty"`
	// Ref is an index into the document's parsed references.
	Ref *int `json:"ref,omitempty"`
}

// Report is the result of validating one document.
type Report struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Issues    []Issue          `json:"issues"`
	Citations []citation.Match `json:"citations,omitempty"`
}

// Passed reports whether no issue has error severity.
func (r *Report) Passed() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return false
		}
	}
	return true
}

// BySeverity returns the issues with severity s, in report order.
func (r *Report) BySeverity(s Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == s {
			out = append(out, i)
		}
	}
	return out
}

// Count returns how many issues carry code c.
func (r *Report) Count(c Code) int {
	n := 0
	for _, i := range r.Issues {
		if i.Code == c {
			n++
		}
	}
	return n
}

// MarshalJSON adds the computed "passed" field.
func (r Report) MarshalJSON() ([]byte, error) {
	type plain Report
	return json.Marshal(struct {
		plain
		Passed bool `json:"passed"`
	}{plain(r), r.Passed()})
}
