package validate

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/matsen/apalint/internal/citation"
	"github.com/matsen/apalint/internal/document"
)

// Config holds rule thresholds.
type Config struct {
	MinTitleConfidence float64
	AbstractMaxWords   int
	// AbstractMaxChars is off when 0.
	AbstractMaxChars int
	FuzzyThreshold   float64
	// CheckFormat enables the font, spacing, page size and margin checks.
	CheckFormat bool
}

// DefaultConfig returns the APA 7 defaults.
func DefaultConfig() Config {
	return Config{
		MinTitleConfidence: 0.4,
		AbstractMaxWords:   250,
		FuzzyThreshold:     citation.DefaultThreshold,
		CheckFormat:        true,
	}
}

// Validator runs every rule over a document. It holds no per-document
// state and is safe for concurrent use.
type Validator struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) { v.logger = l }
}

// WithClock overrides the report timestamp source.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// New creates a Validator.
func New(cfg Config, opts ...Option) *Validator {
	v := &Validator{cfg: cfg, logger: slog.Default(), now: time.Now}
	for _, o := range opts {
		o(v)
	}
	return v
}

// Validate checks doc and returns the issues in detection order.
func (v *Validator) Validate(doc *document.SemanticDocument) Report {
	r := Report{
		ID:        uuid.NewString(),
		CreatedAt: v.now().UTC(),
		Issues:    []Issue{},
	}
	v.checkCitations(doc, &r)
	v.checkTitlePage(doc, &r)
	v.checkAbstract(doc, &r)
	v.checkEmptyParagraphs(doc, &r)
	if v.cfg.CheckFormat {
		v.checkFormat(doc, &r)
	}

	v.logger.Debug("document validated",
		"report", r.ID, "issues", len(r.Issues), "citations", len(r.Citations), "passed", r.Passed())
	return r
}

func (v *Validator) checkCitations(doc *document.SemanticDocument, r *Report) {
	cites := citation.ExtractDocument(doc)
	refs := doc.ReferencesParsed

	if len(cites) > 0 && len(refs) == 0 {
		r.Issues = append(r.Issues, Issue{
			Code:     CodeNoReferences,
			Severity: SeverityError,
			Message:  fmt.Sprintf("found %d in-text citations but no parsed reference list", len(cites)),
		})
	}

	r.Citations = citation.NewMatcher(refs, v.cfg.FuzzyThreshold).MatchAll(cites)
	cited := make([]bool, len(refs))
	seen := make(map[string]bool)
	for _, m := range r.Citations {
		if m.Ref >= 0 {
			cited[m.Ref] = true
		}
		key := string(m.Outcome) + "|" + m.Citation.Key()
		if m.Outcome == citation.Confirmed || seen[key] {
			continue
		}
		seen[key] = true

		pos := m.Citation.Position
		switch m.Outcome {
		case citation.Orphan:
			r.Issues = append(r.Issues, Issue{
				Code:     CodeCiteOrphan,
				Severity: SeverityError,
				Message:  fmt.Sprintf("citation (%s) has no matching reference", m.Citation.Label()),
				Location: sectionPath(doc, m.Citation.Section),
				Position: &pos,
			})
		case citation.YearMismatch:
			ref := m.Ref
			r.Issues = append(r.Issues, Issue{
				Code:     CodeCiteYearMismatch,
				Severity: SeverityWarning,
				Message: fmt.Sprintf("citation (%s) matches %s but the reference year is %s",
					m.Citation.Label(), refs[ref].FirstSurname(), refs[ref].DisplayYear()),
				Location: sectionPath(doc, m.Citation.Section),
				Position: &pos,
				Ref:      &ref,
			})
		}
	}

	for i, ref := range refs {
		if cited[i] || ref.IsPersonalCommunication() {
			continue
		}
		idx := i
		r.Issues = append(r.Issues, Issue{
			Code:     CodeRefUncited,
			Severity: SeverityWarning,
			Message:  fmt.Sprintf("reference %s (%s) is never cited in the text", ref.FirstSurname(), ref.DisplayYear()),
			Location: fmt.Sprintf("references[%d]", i),
			Ref:      &idx,
		})
	}
}

func (v *Validator) checkTitlePage(doc *document.SemanticDocument, r *Report) {
	conf := doc.TitleConfidence()
	if conf >= v.cfg.MinTitleConfidence {
		return
	}
	msg := "no title page detected"
	if conf > 0 {
		msg = fmt.Sprintf("title page detected with low confidence (%.2f)", conf)
	}
	r.Issues = append(r.Issues, Issue{
		Code:     CodeNoTitlePage,
		Severity: SeverityWarning,
		Message:  msg,
		Location: "title page",
	})
}

func (v *Validator) checkAbstract(doc *document.SemanticDocument, r *Report) {
	text := doc.AbstractText()
	if text == "" {
		return
	}
	words := len(strings.Fields(text))
	chars := utf8.RuneCountInString(text)

	var msg string
	switch {
	case v.cfg.AbstractMaxWords > 0 && words > v.cfg.AbstractMaxWords:
		msg = fmt.Sprintf("abstract has %d words (maximum %d)", words, v.cfg.AbstractMaxWords)
	case v.cfg.AbstractMaxChars > 0 && chars > v.cfg.AbstractMaxChars:
		msg = fmt.Sprintf("abstract has %d characters (maximum %d)", chars, v.cfg.AbstractMaxChars)
	default:
		return
	}
	r.Issues = append(r.Issues, Issue{
		Code:     CodeAbstractTooLong,
		Severity: SeverityWarning,
		Message:  msg,
		Location: "abstract",
	})
}

func (v *Validator) checkEmptyParagraphs(doc *document.SemanticDocument, r *Report) {
	doc.Walk(func(path []int, s *document.Section) {
		loc := sectionPath(doc, path)
		content := strings.TrimSpace(s.Content)
		switch {
		case content == "" && len(s.Subsections) == 0:
			r.Issues = append(r.Issues, Issue{
				Code:     CodeEmptyParagraphs,
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("section %q has no content", s.Title()),
				Location: loc,
			})
		case strings.Contains(content, "\n\n\n"):
			r.Issues = append(r.Issues, Issue{
				Code:     CodeEmptyParagraphs,
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("section %q contains empty paragraphs", s.Title()),
				Location: loc,
			})
		}
	})
}

// sectionPath renders an index path as "Method > Participants". Untitled
// sections show as "(untitled)".
func sectionPath(doc *document.SemanticDocument, path []int) string {
	if len(path) == 0 {
		return ""
	}
	var names []string
	secs := doc.Sections
	for _, i := range path {
		if i < 0 || i >= len(secs) {
			break
		}
		name := secs[i].Title()
		if name == "" {
			name = "(untitled)"
		}
		names = append(names, name)
		secs = secs[i].Subsections
	}
	return strings.Join(names, " > ")
}
