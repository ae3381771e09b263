// Package pdf extracts content blocks from PDF files.
package pdf

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/matsen/apalint/internal/blocks"
)

func init() {
	blocks.RegisterOpener(".pdf", func(path string) (blocks.Source, error) {
		return NewSource(path), nil
	})
}

// Default page size when a page carries no MediaBox of its own.
const (
	defaultPageWidth  = 612.0
	defaultPageHeight = 792.0
)

// line is one visual row of text on a page.
type line struct {
	text   string
	x0, x1 float64
	y      float64
	size   float64
	font   string
	bold   bool
	italic bool
	page   int
}

// Source reads blocks from a PDF file, reconstructing paragraphs from text
// rows by vertical gaps, indentation and style changes.
type Source struct {
	path     string
	maxPages int
	size     blocks.PageSize
}

// NewSource returns a source for the PDF at path.
func NewSource(path string) *Source {
	return &Source{path: path}
}

// WithMaxPages limits extraction to the first n pages (0 = all).
func (s *Source) WithMaxPages(n int) *Source {
	s.maxPages = n
	return s
}

// PageSize implements blocks.PageSizer. It is only known after Blocks has run.
func (s *Source) PageSize() blocks.PageSize {
	return s.size
}

// Blocks implements blocks.Source.
func (s *Source) Blocks(ctx context.Context) ([]blocks.ContentBlock, error) {
	f, r, err := pdf.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.path, err)
	}
	defer f.Close()

	maxPages := s.maxPages
	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var out []blocks.ContentBlock
	var pages [][]line
	for i := 1; i <= maxPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		if s.size.Width == 0 {
			s.size = mediaBox(page)
		}

		rows, err := page.GetTextByRow()
		if err != nil {
			// Unreadable pages are skipped, as for plain text extraction.
			continue
		}
		pages = append(pages, rowsToLines(rows, i))
	}

	bodySize := dominantSize(pages)
	for _, lines := range pages {
		out = append(out, groupLines(lines, bodySize, s.size.Width)...)
	}
	return blocks.Renumber(out), nil
}

func mediaBox(page pdf.Page) blocks.PageSize {
	box := page.V.Key("MediaBox")
	if box.IsNull() || box.Len() < 4 {
		return blocks.PageSize{Width: defaultPageWidth, Height: defaultPageHeight}
	}
	w := box.Index(2).Float64() - box.Index(0).Float64()
	h := box.Index(3).Float64() - box.Index(1).Float64()
	if w <= 0 || h <= 0 {
		return blocks.PageSize{Width: defaultPageWidth, Height: defaultPageHeight}
	}
	return blocks.PageSize{Width: w, Height: h}
}

func rowsToLines(rows pdf.Rows, pageNum int) []line {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Position > rows[j].Position })

	var lines []line
	for _, row := range rows {
		texts := row.Content
		if len(texts) == 0 {
			continue
		}
		sort.SliceStable(texts, func(i, j int) bool { return texts[i].X < texts[j].X })

		var b strings.Builder
		var l line
		l.x0 = texts[0].X
		l.y = texts[0].Y
		l.page = pageNum
		end := texts[0].X
		for i, t := range texts {
			if i > 0 && t.X-end > 0.25*t.FontSize && !strings.HasSuffix(b.String(), " ") {
				b.WriteByte(' ')
			}
			b.WriteString(t.S)
			end = t.X + t.W
			if t.FontSize > l.size {
				l.size = t.FontSize
				l.font = t.Font
			}
		}
		l.x1 = end
		l.text = strings.Join(strings.Fields(b.String()), " ")
		if l.text == "" {
			continue
		}
		lower := strings.ToLower(l.font)
		l.bold = strings.Contains(lower, "bold") || strings.Contains(lower, "black") || strings.Contains(lower, "heavy")
		l.italic = strings.Contains(lower, "italic") || strings.Contains(lower, "oblique")
		lines = append(lines, l)
	}
	return lines
}

// dominantSize returns the font size carrying the most characters.
func dominantSize(pages [][]line) float64 {
	weights := make(map[float64]int)
	for _, lines := range pages {
		for _, l := range lines {
			weights[math.Round(l.size*2)/2] += len(l.text)
		}
	}
	best, bestW := 0.0, -1
	for size, w := range weights {
		if w > bestW || (w == bestW && size < best) {
			best, bestW = size, w
		}
	}
	return best
}

func groupLines(lines []line, bodySize, pageWidth float64) []blocks.ContentBlock {
	if len(lines) == 0 {
		return nil
	}
	if pageWidth == 0 {
		pageWidth = defaultPageWidth
	}

	margin := leftMargin(lines)
	gap := medianGap(lines)
	indentTol := math.Max(bodySize, 6)

	indented := func(l line) bool { return l.x0 > margin+indentTol }
	centered := func(l line) bool {
		left := l.x0 - margin
		right := (pageWidth - margin) - l.x1
		usable := pageWidth - 2*margin
		return left > indentTol && math.Abs(left-right) < 0.06*pageWidth && (l.x1-l.x0) < 0.8*usable
	}

	var out []blocks.ContentBlock
	var cur []line
	flush := func() {
		if len(cur) == 0 {
			return
		}
		out = append(out, makeBlock(cur, bodySize, gap, indented(cur[0]), allCentered(cur, centered)))
		cur = nil
	}

	for i, l := range lines {
		if i == 0 {
			cur = append(cur, l)
			continue
		}
		prev := lines[i-1]
		split := false
		switch {
		case gap > 0 && prev.y-l.y > 1.4*gap:
			split = true
		case math.Abs(prev.size-l.size) > 0.5 || prev.bold != l.bold:
			split = true
		case centered(l) || centered(prev):
			split = true
		case indented(l) && !indented(prev) && endsSentence(prev.text):
			// First-line indent starts a paragraph.
			split = true
		case !indented(l) && indented(prev) && !indented(cur[0]):
			// Hanging indent: a line back at the margin starts the next entry.
			split = true
		}
		if split {
			flush()
		}
		cur = append(cur, l)
	}
	flush()
	return out
}

func allCentered(ls []line, centered func(line) bool) bool {
	for _, l := range ls {
		if !centered(l) {
			return false
		}
	}
	return true
}

func makeBlock(ls []line, bodySize, gap float64, indented, centered bool) blocks.ContentBlock {
	texts := make([]string, len(ls))
	for i, l := range ls {
		texts[i] = l.text
	}
	text := joinHyphenated(texts)
	first := ls[0]

	st := blocks.StyleHints{
		Bold:     first.bold,
		Italic:   first.italic,
		Centered: centered,
		Indented: indented,
		FontName: first.font,
		FontSize: first.size,
	}
	if gap > 0 && first.size > 0 {
		st.LineSpacing = math.Round(gap/(1.2*first.size)*2) / 2
	}
	st.HeadingLevel = headingLevel(text, len(ls), first, centered, bodySize)
	return blocks.ContentBlock{Text: text, Style: st, Page: first.page}
}

// headingLevel infers an APA heading level from size and emphasis.
// Level 1 is centered bold, level 2 flush-left bold, level 3 bold italic.
func headingLevel(text string, nLines int, l line, centered bool, bodySize float64) int {
	words := len(strings.Fields(text))
	if nLines > 2 || words > 15 || words == 0 || strings.HasSuffix(text, ".") {
		return 0
	}
	if bodySize > 0 {
		switch {
		case l.size >= bodySize*1.4:
			return 1
		case l.size >= bodySize*1.15:
			return 2
		}
	}
	if !l.bold {
		return 0
	}
	switch {
	case centered:
		return 1
	case l.italic:
		return 3
	default:
		return 2
	}
}

func joinHyphenated(parts []string) string {
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			prev := parts[i-1]
			if strings.HasSuffix(prev, "-") && len(prev) > 1 && !strings.HasSuffix(prev, " -") {
				s := b.String()
				b.Reset()
				b.WriteString(strings.TrimSuffix(s, "-"))
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(p)
	}
	return b.String()
}

func endsSentence(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasSuffix(s, ".") || strings.HasSuffix(s, ":") || strings.HasSuffix(s, "?") || strings.HasSuffix(s, "!")
}

// leftMargin returns the most common rounded line start.
func leftMargin(lines []line) float64 {
	counts := make(map[float64]int)
	for _, l := range lines {
		counts[math.Round(l.x0)]++
	}
	best, bestN := 0.0, 0
	for x, n := range counts {
		if n > bestN || (n == bestN && x < best) {
			best, bestN = x, n
		}
	}
	return best
}

func medianGap(lines []line) float64 {
	var gaps []float64
	for i := 1; i < len(lines); i++ {
		if g := lines[i-1].y - lines[i].y; g > 0 {
			gaps = append(gaps, g)
		}
	}
	if len(gaps) == 0 {
		return 0
	}
	sort.Float64s(gaps)
	return gaps[len(gaps)/2]
}
