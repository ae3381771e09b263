package classify

import (
	"strings"

	"github.com/matsen/apalint/internal/blocks"
	"github.com/matsen/apalint/internal/document"
)

// minUnlabeledAbstractWords keeps short lines from being taken as an
// unlabeled abstract.
const minUnlabeledAbstractWords = 30

// AbstractHandler claims the abstract following the title zone, either under
// an "Abstract"/"Resumen" label or as a lone short paragraph.
type AbstractHandler struct {
	MaxWords int
}

// Name implements Handler.
func (h *AbstractHandler) Name() string { return "abstract" }

// Claim implements Handler.
func (h *AbstractHandler) Claim(bs []blocks.ContentBlock, b *document.Builder) []blocks.ContentBlock {
	if len(bs) == 0 {
		return bs
	}
	first := bs[0]

	if isAbstractHeading(first) {
		paras, n := collectAbstract(bs[1:])
		if len(paras) > 0 {
			b.SetAbstract(strings.Join(paras, "\n\n"))
		}
		return bs[1+n:]
	}

	if m := abstractRe.FindStringSubmatch(strings.TrimSpace(first.Text)); m != nil && !first.IsHeading() {
		paras, n := collectAbstract(bs[1:])
		b.SetAbstract(strings.Join(append([]string{strings.TrimSpace(m[1])}, paras...), "\n\n"))
		return bs[1+n:]
	}

	// Unlabeled: a single paragraph right after a detected title page and
	// immediately followed by a heading, keywords line or the end.
	tp := b.TitlePage()
	if tp == nil || tp.Confidence == 0 || first.IsHeading() || first.Style.ListItem {
		return bs
	}
	words := first.WordCount()
	if words < minUnlabeledAbstractWords || words > h.maxWords() {
		return bs
	}
	if len(bs) > 1 && !bs[1].IsHeading() && !isKeywordsLine(bs[1]) && !isReferencesHeading(bs[1]) {
		return bs
	}
	b.SetAbstract(strings.TrimSpace(first.Text))
	return bs[1:]
}

func (h *AbstractHandler) maxWords() int {
	if h.MaxWords > 0 {
		return h.MaxWords
	}
	return DefaultOptions().AbstractMaxWords
}

// collectAbstract gathers paragraphs up to the next heading, keywords line,
// references heading or repeated abstract label.
func collectAbstract(bs []blocks.ContentBlock) ([]string, int) {
	var paras []string
	n := 0
	for _, blk := range bs {
		if blk.IsHeading() || isKeywordsLine(blk) || isReferencesHeading(blk) ||
			isAbstractHeading(blk) || (blk.Style.Bold && blk.Style.Centered) || bareHeading(blk) {
			break
		}
		if t := strings.TrimSpace(blk.Text); t != "" {
			paras = append(paras, t)
		}
		n++
	}
	return paras, n
}

// bareHeading reports whether an unstyled block reads like a heading: a
// few capitalized words without closing punctuation.
func bareHeading(blk blocks.ContentBlock) bool {
	t := strings.TrimSpace(blk.Text)
	if t == "" || blk.WordCount() > 8 || strings.ContainsAny(t[len(t)-1:], ".,;:!?") {
		return false
	}
	return entryStartRe.MatchString(t)
}
