package classify

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matsen/apalint/internal/blocks"
	"github.com/matsen/apalint/internal/normalize"
)

var (
	numPrefixRe  = regexp.MustCompile(`^[\divxIVX]+[.)]?\s+`)
	bulletRe     = regexp.MustCompile(`^[●•▪◦○\-–—*]\s*`)
	refNumberRe  = regexp.MustCompile(`^(?:\[\d+\]|\d+[.)])\s+`)
	keywordsRe   = regexp.MustCompile(`(?i)^\*{0,2}(?:keywords?|key\s+words|palabras?[\s-]+claves?|descriptores)\*{0,2}\s*[:.]\*{0,2}\s*(.+)$`)
	abstractRe   = regexp.MustCompile(`(?i)^\*{0,2}(?:abstract|resumen|summary)\*{0,2}\s*[:.\-–—]\*{0,2}\s*(.+)$`)
	sentenceEnd  = regexp.MustCompile(`(?:[.!?]["”’)]?|https?://\S+|10\.\d{4,9}/\S+)$`)
	entryStartRe = regexp.MustCompile(`^(?:\p{Lu}|@|\p{N})`)
)

var (
	referenceHeadings = map[string]bool{
		"references": true, "reference list": true, "referencias": true,
		"referencias bibliograficas": true, "bibliografia": true,
		"bibliography": true, "works cited": true, "literature cited": true,
	}
	abstractHeadings = map[string]bool{
		"abstract": true, "resumen": true, "summary": true,
	}
	appendixWords = []string{"appendix", "apendice", "anexo", "anexos", "appendices"}

	// knownSections are level-1 section names recognized without styling.
	// Keys are folded, so "Método" and "metodo" both match.
	knownSections = map[string]bool{
		"introduction": true, "method": true, "methods": true, "results": true,
		"discussion": true, "conclusion": true, "conclusions": true,
		"appendix": true, "appendices": true,
		"introduccion": true, "metodo": true, "metodos": true, "resultados": true,
		"discusion": true, "conclusiones": true, "apendice": true, "apendices": true,
	}
)

// maxInferredHeadingRunes bounds unstyled lines taken as headings.
const maxInferredHeadingRunes = 60

// inferHeadingLevel returns 1 for an unstyled block that reads as a
// level-1 heading: a known section name or a short all-caps line. It
// returns 0 otherwise, and for blocks that already carry a level.
func inferHeadingLevel(b blocks.ContentBlock) int {
	if b.IsHeading() || b.Style.ListItem || !shortLine(b, 10) {
		return 0
	}
	text := strings.TrimSpace(b.Text)
	if knownSections[headingKey(text)] {
		return 1
	}
	if utf8.RuneCountInString(text) >= maxInferredHeadingRunes || strings.HasSuffix(text, ".") {
		return 0
	}
	letters := 0
	for _, r := range text {
		if unicode.IsLower(r) {
			return 0
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters < 4 {
		return 0
	}
	return 1
}

// headingKey strips numbering, emphasis and trailing punctuation, then folds.
func headingKey(text string) string {
	t := strings.TrimSpace(text)
	t = strings.Trim(t, "*_#")
	t = numPrefixRe.ReplaceAllString(t, "")
	t = strings.TrimRight(t, ":. ")
	return normalize.Key(t)
}

// shortLine reports whether a block is short enough to be a label.
func shortLine(b blocks.ContentBlock, maxWords int) bool {
	return b.WordCount() <= maxWords
}

func isReferencesHeading(b blocks.ContentBlock) bool {
	return shortLine(b, 4) && referenceHeadings[headingKey(b.Text)]
}

func isAbstractHeading(b blocks.ContentBlock) bool {
	return shortLine(b, 2) && abstractHeadings[headingKey(b.Text)]
}

func isKeywordsLine(b blocks.ContentBlock) bool {
	return keywordsRe.MatchString(strings.TrimSpace(b.Text))
}

func isAppendixHeading(b blocks.ContentBlock) bool {
	if !shortLine(b, 6) {
		return false
	}
	key := headingKey(b.Text)
	for _, w := range appendixWords {
		if key == w || strings.HasPrefix(key, w+" ") {
			return true
		}
	}
	return false
}

// splitKeywords splits a keyword list on commas and semicolons.
func splitKeywords(s string) []string {
	s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), "*"))
	s = strings.TrimSuffix(s, ".")
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IsReferencesHeading reports whether b opens a reference list.
func IsReferencesHeading(b blocks.ContentBlock) bool {
	return isReferencesHeading(b)
}
