package disambig

import (
	"sort"
	"strings"

	"github.com/matsen/apalint/internal/normalize"
	"github.com/matsen/apalint/internal/reference"
)

// SortReferences orders refs for an APA reference list: first surname
// ignoring particles, then year (undated first), then suffix, then title.
// Works without authors file under their title.
func SortReferences(refs []reference.Reference) {
	sort.SliceStable(refs, func(i, j int) bool {
		a, b := refs[i], refs[j]
		if na, nb := sortName(a), sortName(b); na != nb {
			return na < nb
		}
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.YearSuffix != b.YearSuffix {
			return a.YearSuffix < b.YearSuffix
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})
}

func sortName(r reference.Reference) string {
	if s := r.FirstSurname(); s != "" {
		return normalize.Surname(s)
	}
	return normalize.Key(r.Title)
}
