package classify

import (
	"log/slog"
	"strings"

	"github.com/matsen/apalint/internal/blocks"
	"github.com/matsen/apalint/internal/document"
)

// ReferenceHandler claims the reference list: a references heading and the
// entries that follow it, up to an appendix heading or the end.
type ReferenceHandler struct {
	Parser EntryParser
	Logger *slog.Logger
}

// Name implements Handler.
func (h *ReferenceHandler) Name() string { return "references" }

// Claim implements Handler.
func (h *ReferenceHandler) Claim(bs []blocks.ContentBlock, b *document.Builder) []blocks.ContentBlock {
	if len(bs) == 0 || !isReferencesHeading(bs[0]) {
		return bs
	}

	end := len(bs)
	for i := 1; i < len(bs); i++ {
		if isAppendixHeading(bs[i]) {
			end = i
			break
		}
	}

	for _, entry := range JoinEntries(bs[1:end]) {
		h.record(b, entry)
	}
	return bs[end:]
}

func (h *ReferenceHandler) record(b *document.Builder, raw string) {
	if h.Parser == nil {
		b.AddReference(raw, nil)
		return
	}
	ref, err := h.Parser.Parse(raw)
	if err != nil {
		h.logger().Debug("reference kept unparsed", "entry", raw, "error", err)
		b.AddReference(raw, nil)
		return
	}
	b.AddReference(raw, &ref)
}

func (h *ReferenceHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// JoinEntries normalizes reference-list blocks into one string per entry.
// Bullets and numbering are removed and always start an entry. A block
// continues the previous entry when the previous entry does not end at a
// sentence boundary followed by a capitalized start, or when it is the
// indented continuation of an entry that began at the margin (hanging
// indent). Lists whose entries are all indented, as first-line indented
// paragraphs are, split on sentence boundaries only.
func JoinEntries(bs []blocks.ContentBlock) []string {
	var entries []string
	var flush []bool // entry began at the left margin
	for _, blk := range bs {
		orig := strings.TrimSpace(blk.Text)
		text := bulletRe.ReplaceAllString(orig, "")
		text = strings.TrimSpace(refNumberRe.ReplaceAllString(text, ""))
		if text == "" {
			continue
		}
		marked := text != orig

		if n := len(entries); n > 0 && !marked && continues(entries[n-1], flush[n-1], text, blk) {
			entries[n-1] = joinContinuation(entries[n-1], text)
			continue
		}
		entries = append(entries, text)
		flush = append(flush, !blk.Style.Indented)
	}
	return entries
}

func continues(prev string, prevFlush bool, text string, blk blocks.ContentBlock) bool {
	if blk.Style.ListItem || strings.HasPrefix(text, "@") {
		return false
	}
	if blk.Style.Indented && prevFlush {
		return true
	}
	return !sentenceEnd.MatchString(prev) || !entryStartRe.MatchString(text)
}

func joinContinuation(prev, text string) string {
	// A line broken inside a URL or after a hyphen joins without a space.
	if strings.HasSuffix(prev, "/") || (strings.HasSuffix(prev, "-") && !strings.HasSuffix(prev, " -")) {
		return prev + text
	}
	return prev + " " + text
}
