// Package author parses author names as they appear in APA reference entries.
package author

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/matsen/apalint/internal/reference"
)

var (
	// initialsRe matches "J.", "J. A.", "J.-P." and "M.A."
	initialsRe = regexp.MustCompile(`^(?:\p{Lu}\.?(?:\s*-\s*\p{Lu}\.?)?\s*)+$`)
	// abbrevRe matches a trailing bracketed abbreviation: "World Health Organization [WHO]"
	abbrevRe = regexp.MustCompile(`^(.*?)\s*\[([^\]]+)\]\s*$`)
	// listSepRe matches the separators between names in an author list.
	listSepRe = regexp.MustCompile(`\s*(?:,\s*&|&|,\s+y\s+|\s+y\s+|,\s+and\s+|\s+and\s+)\s*`)
)

// Parse parses a single author name.
//
// Supported formats:
//   - "Smith, J. A."              → last="Smith", first="J.", middle="A"
//   - "John Smith"                → first="John", last="Smith"
//   - "World Health Organization" → group author
//   - "World Health Organization [WHO]" → group author with abbreviation
//
// A single word without initials is treated as a surname.
func Parse(input string) reference.Author {
	input = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(input), ","))
	if input == "" {
		return reference.Author{}
	}

	if m := abbrevRe.FindStringSubmatch(input); m != nil {
		return reference.Author{Group: strings.TrimSpace(m[1]), Abbreviation: strings.TrimSpace(m[2])}
	}

	if idx := strings.Index(input, ","); idx > 0 {
		last := strings.TrimSpace(input[:idx])
		first, middle := splitInitials(strings.TrimSpace(input[idx+1:]))
		return reference.Author{First: first, Last: last, MiddleInitial: middle}
	}

	parts := strings.Fields(input)
	if len(parts) == 1 {
		return reference.Author{Last: parts[0]}
	}
	if looksLikeGroup(parts) {
		return reference.Author{Group: input}
	}

	last := parts[len(parts)-1]
	first, middle := splitInitials(strings.Join(parts[:len(parts)-1], " "))
	return reference.Author{First: first, Last: last, MiddleInitial: middle}
}

// ParseList parses the author segment of an APA entry, for example
// "Smith, J. A., Jones, B., & Lee, C." Ellipses and "et al." are dropped.
func ParseList(segment string) []reference.Author {
	segment = strings.TrimSpace(segment)
	segment = strings.TrimSuffix(segment, ".")
	if segment == "" {
		return nil
	}
	segment = strings.ReplaceAll(segment, ". . .", ",")
	segment = strings.ReplaceAll(segment, "…", ",")
	segment = strings.ReplaceAll(segment, "...", ",")
	segment = listSepRe.ReplaceAllString(segment, ", ")

	var tokens []string
	for _, tok := range strings.Split(segment, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" || strings.EqualFold(tok, "et al.") || strings.EqualFold(tok, "et al") {
			continue
		}
		tokens = append(tokens, tok)
	}

	var authors []reference.Author
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if i+1 < len(tokens) && IsInitials(tokens[i+1]) {
			authors = append(authors, Parse(tok+", "+tokens[i+1]))
			i++
			continue
		}
		if IsInitials(tok) {
			// Stray initials without a surname carry no citation key.
			continue
		}
		a := Parse(tok)
		if !a.IsGroup() && a.First == "" && len(strings.Fields(tok)) > 1 {
			a = reference.Author{Group: tok}
		}
		authors = append(authors, a)
	}
	return authors
}

// IsInitials reports whether s consists only of initials such as "J. A.".
func IsInitials(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && initialsRe.MatchString(s)
}

// splitInitials separates a trailing single-letter middle initial from the
// given names: "J. A." → ("J.", "A").
func splitInitials(given string) (string, string) {
	fields := strings.Fields(given)
	if len(fields) < 2 {
		return given, ""
	}
	lastField := strings.TrimSuffix(fields[len(fields)-1], ".")
	r := []rune(lastField)
	if len(r) == 1 && unicode.IsUpper(r[0]) {
		return strings.Join(fields[:len(fields)-1], " "), lastField
	}
	return given, ""
}

var groupWords = map[string]bool{
	"association": true, "organization": true, "organisation": true,
	"institute": true, "university": true, "universidad": true,
	"ministry": true, "ministerio": true, "department": true,
	"departamento": true, "council": true, "society": true,
	"agency": true, "center": true, "centre": true, "centro": true,
	"foundation": true, "fundación": true, "instituto": true,
	"committee": true, "office": true, "bureau": true, "national": true,
	"world": true, "american": true, "group": true, "consortium": true,
}

func looksLikeGroup(parts []string) bool {
	if len(parts) > 4 {
		return true
	}
	for _, p := range parts {
		if groupWords[strings.ToLower(strings.Trim(p, ".,"))] {
			return true
		}
	}
	return false
}
