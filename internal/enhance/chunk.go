package enhance

import (
	"strings"
	"unicode/utf8"

	"github.com/matsen/apalint/internal/blocks"
	"github.com/matsen/apalint/internal/classify"
	"github.com/matsen/apalint/internal/normalize"
)

// DefaultChunkChars caps the text of a single chunk.
const DefaultChunkChars = 6000

const (
	frontPages = 2
	backPages  = 3
	tocPages   = 2
)

var tocHeadings = map[string]bool{
	"contenido":          true,
	"tabla de contenido": true,
	"table of contents":  true,
	"contents":           true,
	"indice":             true,
}

// Chunks cuts the front, back and table-of-contents regions out of bs.
// Regions are page based when the source reports pages (Page > 0) and
// fall back to character windows otherwise. Empty regions are omitted.
func Chunks(bs []blocks.ContentBlock, maxChars int) []Chunk {
	if len(bs) == 0 {
		return nil
	}
	if maxChars <= 0 {
		maxChars = DefaultChunkChars
	}
	paged := lastPage(bs) > 0

	var out []Chunk
	add := func(kind Kind, region []blocks.ContentBlock) {
		text := truncate(joinText(region), maxChars)
		if text == "" {
			return
		}
		out = append(out, Chunk{Index: len(out), Kind: kind, Text: text})
	}

	add(KindFront, frontRegion(bs, paged))
	add(KindBack, backRegion(bs, paged, maxChars))
	add(KindTOC, tocRegion(bs, paged))
	return out
}

func frontRegion(bs []blocks.ContentBlock, paged bool) []blocks.ContentBlock {
	if !paged {
		return bs
	}
	first := bs[0].Page
	for i, b := range bs {
		if b.Page >= first+frontPages {
			return bs[:i]
		}
	}
	return bs
}

// backRegion starts at the reference heading when there is one, else at
// the last few pages, else at the last maxChars of text.
func backRegion(bs []blocks.ContentBlock, paged bool, maxChars int) []blocks.ContentBlock {
	for i := len(bs) - 1; i >= 0; i-- {
		if classify.IsReferencesHeading(bs[i]) {
			return bs[i:]
		}
	}
	if paged {
		cutoff := lastPage(bs) - backPages + 1
		for i, b := range bs {
			if b.Page >= cutoff {
				return bs[i:]
			}
		}
		return nil
	}
	total := 0
	for i := len(bs) - 1; i >= 0; i-- {
		total += utf8.RuneCountInString(bs[i].Text) + 1
		if total >= maxChars {
			return bs[i:]
		}
	}
	return bs
}

func tocRegion(bs []blocks.ContentBlock, paged bool) []blocks.ContentBlock {
	start := -1
	for i, b := range bs {
		if isTOCHeading(b) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	if !paged {
		return bs[start:]
	}
	limit := bs[start].Page + tocPages
	for i := start; i < len(bs); i++ {
		if bs[i].Page >= limit {
			return bs[start:i]
		}
	}
	return bs[start:]
}

func isTOCHeading(b blocks.ContentBlock) bool {
	if b.WordCount() > 4 {
		return false
	}
	return tocHeadings[normalize.Key(strings.TrimRight(strings.TrimSpace(b.Text), ":."))]
}

func lastPage(bs []blocks.ContentBlock) int {
	last := 0
	for _, b := range bs {
		if b.Page > last {
			last = b.Page
		}
	}
	return last
}

func joinText(bs []blocks.ContentBlock) string {
	lines := make([]string, 0, len(bs))
	for _, b := range bs {
		if t := strings.TrimSpace(b.Text); t != "" {
			lines = append(lines, t)
		}
	}
	return strings.Join(lines, "\n")
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
