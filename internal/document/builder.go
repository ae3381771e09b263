package document

import (
	"strings"

	"github.com/matsen/apalint/internal/blocks"
	"github.com/matsen/apalint/internal/reference"
)

// stackEntry locates an open section by its index among its siblings.
type stackEntry struct {
	index    int
	level    int
	untitled bool
}

// Builder accumulates classification results for one document. It is owned
// by a single classification run and must not be used after Build.
type Builder struct {
	source []blocks.ContentBlock
	doc    SemanticDocument
	// stack is the index path from the top level to the open section.
	stack []stackEntry
}

// NewBuilder returns a builder over the complete block sequence of a document.
func NewBuilder(source []blocks.ContentBlock) *Builder {
	return &Builder{source: source}
}

// Source returns every block of the document, claimed or not.
func (b *Builder) Source() []blocks.ContentBlock {
	return b.source
}

// SetTitlePage records the detected title page.
func (b *Builder) SetTitlePage(tp TitlePage) {
	b.doc.TitlePage = &tp
	b.doc.Config.HasTitlePage = tp.Confidence > 0
}

// TitlePage returns the title page recorded so far, or nil.
func (b *Builder) TitlePage() *TitlePage {
	return b.doc.TitlePage
}

// SetAbstract records the abstract text.
func (b *Builder) SetAbstract(text string) {
	b.doc.Abstract = &text
	b.doc.Config.HasAbstract = true
}

// HasAbstract reports whether an abstract was recorded.
func (b *Builder) HasAbstract() bool {
	return b.doc.Abstract != nil
}

// AddKeywords appends keywords, skipping blanks.
func (b *Builder) AddKeywords(keywords ...string) {
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			b.doc.Keywords = append(b.doc.Keywords, k)
		}
	}
}

// SetConfig records the detected formatting, keeping the title page and
// abstract flags maintained by the builder.
func (b *Builder) SetConfig(c DetectedConfig) {
	c.HasTitlePage = b.doc.Config.HasTitlePage
	c.HasAbstract = b.doc.Config.HasAbstract
	b.doc.Config = c
}

// OpenSection starts a section at level (clamped to 1..5). Open sections
// at the same or a deeper level are closed first, as is a leading untitled
// section, which never parents a heading.
func (b *Builder) OpenSection(heading string, level int) {
	level = min(max(level, 1), blocks.MaxHeadingLevel)
	for len(b.stack) > 0 {
		top := b.stack[len(b.stack)-1]
		if !top.untitled && top.level < level {
			break
		}
		b.stack = b.stack[:len(b.stack)-1]
	}
	b.push(Section{Heading: &heading, Level: level}, false)
}

// AppendContent adds a paragraph to the open section, opening an untitled
// level-1 section when none is open.
func (b *Builder) AppendContent(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if len(b.stack) == 0 {
		b.push(Section{Level: 1}, true)
	}
	s := b.current()
	if s.Content == "" {
		s.Content = text
	} else {
		s.Content += "\n\n" + text
	}
}

// AddReference records a raw reference line and, when parsed is non-nil,
// its structured form. parsed.RawIndex is set to the raw line's index.
func (b *Builder) AddReference(raw string, parsed *reference.Reference) {
	idx := len(b.doc.ReferencesRaw)
	b.doc.ReferencesRaw = append(b.doc.ReferencesRaw, raw)
	if parsed == nil {
		b.doc.UnparsedReferences = append(b.doc.UnparsedReferences, idx)
		return
	}
	r := *parsed
	r.RawIndex = idx
	b.doc.ReferencesParsed = append(b.doc.ReferencesParsed, r)
}

// Build returns the finished document.
func (b *Builder) Build() SemanticDocument {
	doc := b.doc
	b.doc = SemanticDocument{}
	b.stack = nil
	return doc
}

func (b *Builder) push(s Section, untitled bool) {
	if len(b.stack) == 0 {
		b.doc.Sections = append(b.doc.Sections, s)
		b.stack = append(b.stack, stackEntry{index: len(b.doc.Sections) - 1, level: s.Level, untitled: untitled})
		return
	}
	parent := b.current()
	parent.Subsections = append(parent.Subsections, s)
	b.stack = append(b.stack, stackEntry{index: len(parent.Subsections) - 1, level: s.Level, untitled: untitled})
}

// current resolves the stack's index path to the open section.
func (b *Builder) current() *Section {
	secs := b.doc.Sections
	var s *Section
	for _, e := range b.stack {
		s = &secs[e.index]
		secs = s.Subsections
	}
	return s
}
