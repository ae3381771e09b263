// Package disambig assigns year suffixes to references that share authors
// and year, and orders reference lists.
package disambig

import (
	"sort"
	"strconv"
	"strings"

	"github.com/matsen/apalint/internal/normalize"
	"github.com/matsen/apalint/internal/reference"
)

// Key returns the collision key of a reference: its normalized surnames in
// citation order followed by the year. Personal communications have no key.
func Key(r reference.Reference) string {
	if r.IsPersonalCommunication() {
		return ""
	}
	parts := make([]string, 0, len(r.Authors)+1)
	for _, a := range r.Authors {
		parts = append(parts, normalize.Key(a.Surname()))
	}
	parts = append(parts, strconv.Itoa(r.Year))
	return strings.Join(parts, "|")
}

// Disambiguate rewrites YearSuffix in place. Existing suffixes are cleared,
// then each group of two or more references with the same key gets a, b, c
// in order of case-insensitive title. It returns the number of references
// that received a suffix.
func Disambiguate(refs []reference.Reference) int {
	groups := make(map[string][]int)
	var order []string
	for i := range refs {
		refs[i].YearSuffix = ""
		k := Key(refs[i])
		if k == "" {
			continue
		}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}

	n := 0
	for _, k := range order {
		idx := groups[k]
		if len(idx) < 2 {
			continue
		}
		sort.SliceStable(idx, func(a, b int) bool {
			ta := strings.ToLower(refs[idx[a]].Title)
			tb := strings.ToLower(refs[idx[b]].Title)
			if ta != tb {
				return ta < tb
			}
			return idx[a] < idx[b]
		})
		for rank, i := range idx {
			refs[i].YearSuffix = Suffix(rank)
			n++
		}
	}
	return n
}

// Suffix returns the letter suffix for a zero-based rank: a..z, then aa, ab...
func Suffix(rank int) string {
	if rank < 0 {
		return ""
	}
	var b []byte
	for {
		b = append([]byte{byte('a' + rank%26)}, b...)
		rank = rank/26 - 1
		if rank < 0 {
			break
		}
	}
	return string(b)
}

// Collisions returns the groups of indices that share a key, in order of
// first appearance. Useful for reporting without mutating.
func Collisions(refs []reference.Reference) [][]int {
	groups := make(map[string][]int)
	var order []string
	for i, r := range refs {
		k := Key(r)
		if k == "" {
			continue
		}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], i)
	}
	var out [][]int
	for _, k := range order {
		if len(groups[k]) > 1 {
			out = append(out, groups[k])
		}
	}
	return out
}
