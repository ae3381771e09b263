package main

import (
	"strings"
	"testing"

	"github.com/matsen/apalint/internal/reference"
	"github.com/matsen/apalint/internal/validate"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"a longer string", 10, "a longe..."},
		{"áéíóúáéíóú más", 10, "áéíóúáé..."},
	}
	for _, tt := range tests {
		if got := truncateString(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestFormatAuthorsShort(t *testing.T) {
	a := reference.Author{Last: "Smith"}
	b := reference.Author{Last: "Jones"}
	g := reference.Author{Group: "World Health Organization"}
	tests := []struct {
		authors []reference.Author
		want    string
	}{
		{nil, "(no author)"},
		{[]reference.Author{a}, "Smith"},
		{[]reference.Author{a, b}, "Smith & Jones"},
		{[]reference.Author{a, b, g}, "Smith et al."},
		{[]reference.Author{g}, "World Health Organization"},
	}
	for _, tt := range tests {
		if got := formatAuthorsShort(tt.authors); got != tt.want {
			t.Errorf("formatAuthorsShort() = %q, want %q", got, tt.want)
		}
	}
}

func TestFormatReferenceShort(t *testing.T) {
	r := reference.Reference{Authors: []reference.Author{{Last: "Smith"}}, Year: 2020, YearSuffix: "b", Title: "A study"}
	if got, want := formatReferenceShort(r), "Smith (2020b). A study"; got != want {
		t.Errorf("formatReferenceShort() = %q, want %q", got, want)
	}
}

func TestFormatIssue(t *testing.T) {
	got := formatIssue(validate.Issue{
		Code:     validate.CodeCiteOrphan,
		Severity: validate.SeverityError,
		Message:  "citation (Smith, 2020) has no matching reference",
		Location: "Introduction",
	})
	if !strings.HasPrefix(got, "ERROR   CITE_ORPHAN") || !strings.HasSuffix(got, "[Introduction]") {
		t.Errorf("formatIssue() = %q", got)
	}
}
