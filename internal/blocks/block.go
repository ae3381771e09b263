// Package blocks defines the content blocks fed to the classifier and the
// sources that extract them from documents.
package blocks

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned by Open for file types without a source.
var ErrUnsupportedFormat = errors.New("unsupported document format")

// MaxHeadingLevel is the deepest heading level the classifier distinguishes.
const MaxHeadingLevel = 5

// StyleHints carries the formatting signals extracted alongside a block.
type StyleHints struct {
	Bold     bool `json:"bold,omitempty"`
	Italic   bool `json:"italic,omitempty"`
	Centered bool `json:"centered,omitempty"`

	// HeadingLevel is 0 for ordinary paragraphs.
	HeadingLevel int  `json:"heading_level,omitempty"`
	ListItem     bool `json:"list_item,omitempty"`
	// Indented is set when the block starts indented from the left margin,
	// as continuation lines of a hanging-indent reference do.
	Indented bool `json:"indented,omitempty"`

	FontName    string  `json:"font_name,omitempty"`
	FontSize    float64 `json:"font_size,omitempty"`
	LineSpacing float64 `json:"line_spacing,omitempty"`
}

// ContentBlock is one paragraph-like unit of extracted text.
type ContentBlock struct {
	Text     string     `json:"text"`
	Style    StyleHints `json:"style"`
	Position int        `json:"position"`
	Page     int        `json:"page,omitempty"`
}

// IsHeading reports whether the block carries a heading level.
func (b ContentBlock) IsHeading() bool {
	return b.Style.HeadingLevel > 0
}

// WordCount returns the number of whitespace-separated words in the block.
func (b ContentBlock) WordCount() int {
	return len(strings.Fields(b.Text))
}

// Source produces an ordered, finite sequence of blocks.
type Source interface {
	Blocks(ctx context.Context) ([]ContentBlock, error)
}

// PageSize is a page's dimensions in points. Margins are zero when the
// source does not record them.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	MarginTop    float64 `json:"margin_top,omitempty"`
	MarginRight  float64 `json:"margin_right,omitempty"`
	MarginBottom float64 `json:"margin_bottom,omitempty"`
	MarginLeft   float64 `json:"margin_left,omitempty"`
}

// HasMargins reports whether any margin is known.
func (p PageSize) HasMargins() bool {
	return p.MarginTop > 0 || p.MarginRight > 0 || p.MarginBottom > 0 || p.MarginLeft > 0
}

// Name maps common dimensions to a paper name, "custom" otherwise.
func (p PageSize) Name() string {
	near := func(a, b float64) bool { return a-b < 3 && b-a < 3 }
	switch {
	case p.Width == 0 || p.Height == 0:
		return ""
	case near(p.Width, 612) && near(p.Height, 792):
		return "letter"
	case near(p.Width, 595) && near(p.Height, 842):
		return "a4"
	case near(p.Width, 612) && near(p.Height, 1008):
		return "legal"
	default:
		return "custom"
	}
}

// PageSizer is implemented by sources that know their page dimensions.
type PageSizer interface {
	PageSize() PageSize
}

// Open selects a source for path by its extension. PDF sources are
// registered by the pdf package through RegisterOpener to keep this
// package free of the PDF dependency.
func Open(path string) (Source, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if open, ok := openers[ext]; ok {
		return open(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}

// Opener constructs a Source for a file path.
type Opener func(path string) (Source, error)

var openers = map[string]Opener{
	".txt":      func(p string) (Source, error) { return NewTextFile(p), nil },
	".md":       func(p string) (Source, error) { return NewTextFile(p), nil },
	".markdown": func(p string) (Source, error) { return NewTextFile(p), nil },
	".docx":     func(p string) (Source, error) { return NewDOCX(p), nil },
}

// RegisterOpener adds or replaces the opener for a file extension
// (including the dot). It is not safe for concurrent use with Open.
func RegisterOpener(ext string, open Opener) {
	openers[strings.ToLower(ext)] = open
}

// Renumber assigns consecutive positions starting at 0.
func Renumber(bs []ContentBlock) []ContentBlock {
	for i := range bs {
		bs[i].Position = i
	}
	return bs
}
