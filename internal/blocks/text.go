package blocks

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	mdHeadingRe = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*\s*$`)
	mdBoldRe    = regexp.MustCompile(`^\*\*(.+)\*\*$`)
	mdItalicRe  = regexp.MustCompile(`^[*_]([^*_].*)[*_]$`)
	mdListRe    = regexp.MustCompile(`^(?:[-*+•]|\d+[.)])\s+(.+)$`)
	centerRe    = regexp.MustCompile(`(?i)^<center>(.*)</center>$`)
)

// TextSource reads blocks from plain text or lightweight markdown.
//
// In line mode (the default) every non-blank line is a block, which is how
// most text exports lay out paragraphs. In paragraph mode blank lines
// separate blocks and wrapped lines are joined with a space.
//
// Recognized markup: "#" headings, a line wholly wrapped in "**" (bold) or
// "*" (italic), "<center>" wrappers, list markers, and leading whitespace
// (indented).
type TextSource struct {
	path       string
	text       string
	paragraphs bool
}

// NewText returns a line-mode source over s.
func NewText(s string) *TextSource {
	return &TextSource{text: s}
}

// NewTextFile returns a line-mode source reading path.
func NewTextFile(path string) *TextSource {
	return &TextSource{path: path}
}

// Paragraphs switches the source to blank-line separated paragraphs.
func (s *TextSource) Paragraphs() *TextSource {
	s.paragraphs = true
	return s
}

// Blocks implements Source.
func (s *TextSource) Blocks(ctx context.Context) ([]ContentBlock, error) {
	text := s.text
	if s.path != "" {
		data, err := os.ReadFile(s.path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", s.path, err)
		}
		text = string(data)
	}

	var out []ContentBlock
	var para []string
	paraIndented := false

	flush := func() {
		if len(para) == 0 {
			return
		}
		b := parseLine(strings.Join(para, " "))
		b.Style.Indented = b.Style.Indented || paraIndented
		out = append(out, b)
		para = para[:0]
	}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		if !s.paragraphs {
			out = append(out, parseLine(line))
			continue
		}
		trimmed := strings.TrimSpace(line)
		// Headings always stand alone.
		if mdHeadingRe.MatchString(trimmed) {
			flush()
			out = append(out, parseLine(line))
			continue
		}
		if len(para) == 0 {
			paraIndented = isIndented(line)
		}
		para = append(para, trimmed)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning text: %w", err)
	}
	flush()

	return Renumber(out), nil
}

func isIndented(line string) bool {
	return strings.HasPrefix(line, "\t") || strings.HasPrefix(line, "  ")
}

func parseLine(line string) ContentBlock {
	var st StyleHints
	st.Indented = isIndented(line)
	text := strings.TrimSpace(line)

	if m := centerRe.FindStringSubmatch(text); m != nil {
		st.Centered = true
		text = strings.TrimSpace(m[1])
	}
	if m := mdHeadingRe.FindStringSubmatch(text); m != nil {
		st.HeadingLevel = min(len(m[1]), MaxHeadingLevel)
		st.Bold = true
		text = m[2]
	}
	if m := mdBoldRe.FindStringSubmatch(text); m != nil {
		st.Bold = true
		text = strings.TrimSpace(m[1])
	}
	if m := mdItalicRe.FindStringSubmatch(text); m != nil && st.HeadingLevel == 0 {
		st.Italic = true
		text = strings.TrimSpace(m[1])
	}
	if st.HeadingLevel == 0 {
		if m := mdListRe.FindStringSubmatch(text); m != nil {
			st.ListItem = true
			text = m[1]
		}
	}
	return ContentBlock{Text: text, Style: st}
}
