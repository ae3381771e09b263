// Package normalize folds names into comparison keys and measures how far
// apart two keys are.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Key folds a name into its comparison form: diacritics removed, case
// folded, punctuation stripped and whitespace collapsed.
//
//	"García"   → "garcia"
//	"O'Brien"  → "obrien"
//	"Müller-Lüdenscheidt" → "mullerludenscheidt"
func Key(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	stripped = folder.String(stripped)

	var b strings.Builder
	space := false
	for _, r := range stripped {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			space = true
		}
	}
	return b.String()
}

var particles = map[string]bool{
	"de": true, "del": true, "della": true, "der": true, "den": true,
	"di": true, "da": true, "van": true, "von": true, "la": true,
	"le": true, "du": true, "dos": true, "das": true, "las": true, "los": true,
	"y": true,
}

// IsParticle reports whether word, already folded, is a surname particle
// such as "de" or "van".
func IsParticle(word string) bool {
	return particles[word]
}

// Surname is Key with leading name particles dropped, so "de la Cruz" and
// "Cruz" compare equal. A name made only of particles is left as is.
func Surname(s string) string {
	fields := strings.Fields(Key(s))
	for len(fields) > 1 && particles[fields[0]] {
		fields = fields[1:]
	}
	return strings.Join(fields, " ")
}

// Keys folds every name in names.
func Keys(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = Key(n)
	}
	return out
}

// Levenshtein returns the edit distance between two rune slices.
// Uses two rows so memory is O(min(len(a), len(b))).
func Levenshtein(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// Distance returns the edit distance between a and b divided by the length
// of the longer one, in [0,1]. Two empty strings have distance 0.
func Distance(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 0
	}
	return float64(Levenshtein(ra, rb)) / float64(longest)
}

// Similarity is 1 - Distance.
func Similarity(a, b string) float64 {
	return 1 - Distance(a, b)
}
