package reference

import (
	"errors"
	"testing"
)

func TestDisplayYear(t *testing.T) {
	tests := []struct {
		name string
		ref  Reference
		want string
	}{
		{"plain", Reference{Year: 2020}, "2020"},
		{"suffix", Reference{Year: 2020, YearSuffix: "b"}, "2020b"},
		{"no date", Reference{}, "n.d."},
		{"no date suffix", Reference{YearSuffix: "a"}, "n.d.-a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ref.DisplayYear(); got != tt.want {
				t.Errorf("DisplayYear() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	if err := (Reference{Type: TypeBook}).Validate(); !errors.Is(err, ErrNoAuthors) {
		t.Errorf("Validate() without authors = %v, want ErrNoAuthors", err)
	}
	if err := (Reference{Type: TypePersonalCommunication}).Validate(); err != nil {
		t.Errorf("personal communication without authors: unexpected error %v", err)
	}
	ok := Reference{Type: TypeBook, Authors: []Author{{Last: "Smith"}}, Year: 2020}
	if err := ok.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	bad := Reference{Type: TypeBook, Authors: []Author{{Last: "Smith"}}, Year: -1}
	if err := bad.Validate(); err == nil {
		t.Error("expected error for negative year")
	}
}

func TestParseType(t *testing.T) {
	got, err := ParseType("journal_article")
	if err != nil || got != TypeJournalArticle {
		t.Errorf("ParseType(journal_article) = %q, %v", got, err)
	}
	if _, err := ParseType("pamphlet"); err == nil {
		t.Error("expected error for unknown type")
	}
}

func TestSurname(t *testing.T) {
	if got := (Author{First: "J.", Last: "Smith"}).Surname(); got != "Smith" {
		t.Errorf("Surname() = %q, want Smith", got)
	}
	group := Author{Group: "World Health Organization", Abbreviation: "WHO"}
	if got := group.Surname(); got != "World Health Organization" {
		t.Errorf("Surname() = %q, want group name", got)
	}
	if !group.IsGroup() {
		t.Error("IsGroup() = false for group author")
	}
	r := Reference{Authors: []Author{{Last: "Lee"}, {Last: "Kim"}}}
	if got := r.FirstSurname(); got != "Lee" {
		t.Errorf("FirstSurname() = %q, want Lee", got)
	}
}
