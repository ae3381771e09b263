// Package citation finds APA in-text citations in body text and matches
// them against a reference list.
package citation

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matsen/apalint/internal/document"
	"github.com/matsen/apalint/internal/normalize"
)

// Kind distinguishes "(Smith, 2020)" from "Smith (2020)".
type Kind string

const (
	Parenthetical Kind = "parenthetical"
	Narrative     Kind = "narrative"
)

// Citation is one citation occurrence. A multi-cite parenthetical such as
// "(Adams, 2019; Baker, 2020)" yields one Citation per work.
type Citation struct {
	Kind    Kind     `json:"kind"`
	Authors []string `json:"authors"`
	Keys    []string `json:"keys"`
	EtAl    bool     `json:"et_al,omitempty"`

	// Year is 0 for "n.d." and "s.f.".
	Year       int    `json:"year,omitempty"`
	YearSuffix string `json:"year_suffix,omitempty"`

	Raw      string `json:"raw"`
	Position int    `json:"position"`
	// Section is the index path of the section the citation was found in.
	Section []int `json:"section,omitempty"`
}

// DisplayYear renders the year as written in APA style.
func (c Citation) DisplayYear() string {
	if c.Year == 0 {
		if c.YearSuffix != "" {
			return "n.d.-" + c.YearSuffix
		}
		return "n.d."
	}
	return strconv.Itoa(c.Year) + c.YearSuffix
}

// Key identifies the cited work for de-duplication: folded surnames, an et
// al. marker and the year.
func (c Citation) Key() string {
	parts := append([]string(nil), c.Keys...)
	if c.EtAl {
		parts = append(parts, "et al")
	}
	return strings.Join(append(parts, c.DisplayYear()), "|")
}

// Label is a short human form such as "Smith et al., 2020".
func (c Citation) Label() string {
	var names string
	switch {
	case c.EtAl && len(c.Authors) > 0:
		names = c.Authors[0] + " et al."
	case len(c.Authors) == 2:
		names = c.Authors[0] + " & " + c.Authors[1]
	default:
		names = strings.Join(c.Authors, ", ")
	}
	return names + ", " + c.DisplayYear()
}

const yearPattern = `(?:\d{4}|n\.\s?d\.|s\.\s?f\.)(?:-?[a-z])?`

var (
	parenRe = regexp.MustCompile(`\(([^()]+)\)`)
	// segmentRe splits "see Smith & Jones, 2019, 2020, p. 4" into the
	// author part and the year list. Locators after the years are ignored.
	segmentRe = regexp.MustCompile(`(?i)^(?:(?:e\.g\.|i\.e\.|see(?:\s+also)?|cf\.|v[eé]ase(?:\s+tambi[eé]n)?|ver|as\s+cited\s+in|como\s+se\s+cita\s+en)\s*,?\s+)?(.+?),\s*(` +
		yearPattern + `(?:\s*,\s*` + yearPattern + `)*)(?:\s*,.*)?$`)
	narrativeRe = regexp.MustCompile(`(\p{Lu}[\p{L}'’\-]+(?:\s+(?:and|y|&)\s+\p{Lu}[\p{L}'’\-]+)?(?:\s+et\s+al\.)?)\s+\(([^()]+)\)`)
	yearTokRe   = regexp.MustCompile(`^(?:(\d{4})|n\.\s?d\.|s\.\s?f\.)-?([a-z])?$`)
	etAlRe      = regexp.MustCompile(`\s+et\s+al\.?$`)
	groupAbbrRe = regexp.MustCompile(`\s*\[[^\]]*\]`)
	authorSepRe = regexp.MustCompile(`\s*,?\s*(?:&|\band\b|\by\b)\s*|\s*,\s*`)
)

// narrativeStop are capitalized words that precede a parenthesized year
// without being an author.
var narrativeStop = map[string]bool{
	"in": true, "the": true, "since": true, "from": true, "until": true, "during": true,
	"en": true, "el": true, "la": true, "los": true, "las": true, "desde": true, "hasta": true,
	"table": true, "tabla": true, "figure": true, "figura": true, "see": true, "ver": true,
	"year": true, "ano": true,
	"chapter": true, "capitulo": true, "section": true, "seccion": true,
	"phase": true, "fase": true, "wave": true, "ola": true,
	"study": true, "estudio": true, "results": true, "resultados": true,
}

// Extract returns the citations in text ordered by position.
func Extract(text string) []Citation {
	var out []Citation

	for _, loc := range parenRe.FindAllStringSubmatchIndex(text, -1) {
		raw := text[loc[0]:loc[1]]
		inner := text[loc[2]:loc[3]]
		offset := loc[2]
		for _, seg := range strings.Split(inner, ";") {
			pos := offset + len(seg) - len(strings.TrimLeft(seg, " \t\n"))
			offset += len(seg) + 1
			for _, c := range parseSegment(strings.TrimSpace(seg)) {
				c.Kind = Parenthetical
				c.Raw = raw
				c.Position = pos
				out = append(out, c)
			}
		}
	}

	for _, loc := range narrativeRe.FindAllStringSubmatchIndex(text, -1) {
		names := text[loc[2]:loc[3]]
		first := strings.Fields(names)[0]
		if narrativeStop[normalize.Key(first)] {
			continue
		}
		years, ok := parseYears(text[loc[4]:loc[5]], true)
		if !ok {
			continue
		}
		authors, etAl, ok := parseAuthors(names)
		if !ok {
			continue
		}
		for _, y := range years {
			out = append(out, Citation{
				Kind:       Narrative,
				Authors:    authors,
				Keys:       surnameKeys(authors),
				EtAl:       etAl,
				Year:       y.year,
				YearSuffix: y.suffix,
				Raw:        text[loc[0]:loc[1]],
				Position:   loc[0],
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// ExtractDocument scans every section heading and content, in document
// order. Positions are offsets into doc.BodyText().
func ExtractDocument(doc *document.SemanticDocument) []Citation {
	var out []Citation
	offset := 0
	scan := func(path []int, text string) {
		for _, c := range Extract(text) {
			c.Position += offset
			c.Section = path
			out = append(out, c)
		}
		offset += len(text) + len("\n\n")
	}
	doc.Walk(func(path []int, s *document.Section) {
		if s.Heading != nil {
			scan(path, *s.Heading)
		}
		if s.Content != "" {
			scan(path, s.Content)
		}
	})
	return out
}

func parseSegment(seg string) []Citation {
	m := segmentRe.FindStringSubmatch(seg)
	if m == nil {
		return nil
	}
	authors, etAl, ok := parseAuthors(m[1])
	if !ok {
		return nil
	}
	years, ok := parseYears(m[2], false)
	if !ok {
		return nil
	}
	out := make([]Citation, 0, len(years))
	for _, y := range years {
		out = append(out, Citation{
			Authors:    authors,
			Keys:       surnameKeys(authors),
			EtAl:       etAl,
			Year:       y.year,
			YearSuffix: y.suffix,
		})
	}
	return out
}

type citedYear struct {
	year   int
	suffix string
}

// parseYears reads a comma-separated list of years. With locators set,
// anything after the leading years (page numbers) is ignored; otherwise
// every item must be a year.
func parseYears(s string, locators bool) ([]citedYear, bool) {
	var out []citedYear
	for _, tok := range strings.Split(s, ",") {
		m := yearTokRe.FindStringSubmatch(strings.TrimSpace(tok))
		if m == nil {
			if locators && len(out) > 0 {
				break
			}
			return nil, false
		}
		y := citedYear{suffix: m[2]}
		if m[1] != "" {
			y.year, _ = strconv.Atoi(m[1])
		}
		out = append(out, y)
	}
	return out, len(out) > 0
}

// parseAuthors splits "Smith, Jones, & Lee" or "Smith et al." into
// surnames. Bracketed group abbreviations are dropped.
func parseAuthors(s string) ([]string, bool, bool) {
	s = strings.TrimSpace(groupAbbrRe.ReplaceAllString(s, ""))
	etAl := false
	if loc := etAlRe.FindStringIndex(s); loc != nil {
		etAl = true
		s = s[:loc[0]]
	}
	var authors []string
	for _, p := range authorSepRe.Split(s, -1) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !validName(p) {
			return nil, false, false
		}
		authors = append(authors, p)
	}
	return authors, etAl, len(authors) > 0
}

// validName accepts a surname or a group name: no digits, at most eight
// words, and a capital letter once leading particles are skipped.
func validName(s string) bool {
	words := strings.Fields(s)
	if len(words) == 0 || len(words) > 8 || strings.ContainsAny(s, "0123456789") {
		return false
	}
	for len(words) > 1 && normalize.IsParticle(strings.ToLower(words[0])) {
		words = words[1:]
	}
	r, _ := utf8.DecodeRuneInString(words[0])
	return unicode.IsUpper(r)
}

func surnameKeys(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = normalize.Surname(n)
	}
	return out
}
