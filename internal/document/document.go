// Package document defines the semantic document produced by the classifier.
package document

import (
	"strings"

	"github.com/matsen/apalint/internal/reference"
)

// TitlePage holds the fields recognized on an APA title page.
type TitlePage struct {
	Title       string   `json:"title"`
	Authors     []string `json:"authors,omitempty"`
	Affiliation string   `json:"affiliation,omitempty"`
	Course      string   `json:"course,omitempty"`
	Instructor  string   `json:"instructor,omitempty"`
	Date        string   `json:"date,omitempty"`

	// Confidence in [0,1]; 0 means no title page was detected.
	Confidence float64 `json:"confidence"`
}

// Section is a heading and its content. Each section owns its subsections.
type Section struct {
	Heading     *string   `json:"heading,omitempty"`
	Level       int       `json:"level"`
	Content     string    `json:"content"`
	Subsections []Section `json:"subsections,omitempty"`
}

// Title returns the heading text, or "" for an untitled section.
func (s Section) Title() string {
	if s.Heading == nil {
		return ""
	}
	return *s.Heading
}

// Margins are page margins in inches.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// DetectedConfig records formatting inferred from the source. Zero values
// mean the source did not report the property.
type DetectedConfig struct {
	Language     string   `json:"language"` // "es" or "en"
	PageSize     string   `json:"page_size,omitempty"`
	Margins      *Margins `json:"margins_in,omitempty"`
	Font         string   `json:"font,omitempty"`
	FontSize     float64  `json:"font_size,omitempty"`
	LineSpacing  float64  `json:"line_spacing,omitempty"`
	HasTitlePage bool     `json:"has_title_page"`
	HasAbstract  bool     `json:"has_abstract"`
}

// SemanticDocument is the classified form of a document.
type SemanticDocument struct {
	TitlePage *TitlePage `json:"title_page,omitempty"`
	Abstract  *string    `json:"abstract,omitempty"`
	Keywords  []string   `json:"keywords,omitempty"`
	Sections  []Section  `json:"sections,omitempty"`

	ReferencesRaw    []string              `json:"references_raw,omitempty"`
	ReferencesParsed []reference.Reference `json:"references_parsed,omitempty"`
	// UnparsedReferences lists indices into ReferencesRaw that the entry
	// parser rejected.
	UnparsedReferences []int `json:"unparsed_references,omitempty"`

	Config DetectedConfig `json:"detected_config"`
}

// TitleConfidence returns the title page confidence, 0 when absent.
func (d *SemanticDocument) TitleConfidence() float64 {
	if d.TitlePage == nil {
		return 0
	}
	return d.TitlePage.Confidence
}

// AbstractText returns the abstract or "".
func (d *SemanticDocument) AbstractText() string {
	if d.Abstract == nil {
		return ""
	}
	return *d.Abstract
}

// Walk visits every section depth-first in document order. path holds the
// index of each ancestor followed by the section's own index.
func (d *SemanticDocument) Walk(fn func(path []int, s *Section)) {
	var walk func(path []int, secs []Section)
	walk = func(path []int, secs []Section) {
		for i := range secs {
			p := append(append([]int(nil), path...), i)
			fn(p, &secs[i])
			walk(p, secs[i].Subsections)
		}
	}
	walk(nil, d.Sections)
}

// BodyText concatenates headings and section content in document order.
func (d *SemanticDocument) BodyText() string {
	var b strings.Builder
	d.Walk(func(_ []int, s *Section) {
		if s.Heading != nil {
			b.WriteString(*s.Heading)
			b.WriteString("\n\n")
		}
		if s.Content != "" {
			b.WriteString(s.Content)
			b.WriteString("\n\n")
		}
	})
	return b.String()
}

// SectionCount returns the number of sections at every depth.
func (d *SemanticDocument) SectionCount() int {
	n := 0
	d.Walk(func([]int, *Section) { n++ })
	return n
}
