package classify

import (
	"strings"

	"github.com/matsen/apalint/internal/blocks"
	"github.com/matsen/apalint/internal/document"
)

// BodyHandler is the default sink. Headings open sections, as do unstyled
// known section names ("Method", "Resultados") and short all-caps lines;
// everything else is appended to the open section. It stops at a references heading unless
// it is the chain's fallback, which claims everything.
type BodyHandler struct {
	sink bool
}

// Name implements Handler.
func (h *BodyHandler) Name() string { return "body" }

// Claim implements Handler.
func (h *BodyHandler) Claim(bs []blocks.ContentBlock, b *document.Builder) []blocks.ContentBlock {
	for i, blk := range bs {
		if !h.sink && isReferencesHeading(blk) {
			return bs[i:]
		}
		switch {
		case blk.IsHeading():
			b.OpenSection(strings.TrimSpace(blk.Text), blk.Style.HeadingLevel)
		case inferHeadingLevel(blk) > 0:
			b.OpenSection(strings.TrimSpace(blk.Text), inferHeadingLevel(blk))
		case blk.Style.ListItem:
			b.AppendContent("- " + strings.TrimSpace(blk.Text))
		default:
			b.AppendContent(blk.Text)
		}
	}
	return nil
}
