package classify

import (
	"math"
	"strings"

	"github.com/matsen/apalint/internal/blocks"
	"github.com/matsen/apalint/internal/document"
)

var (
	spanishStopWords = setOf("de", "la", "que", "el", "en", "y", "los", "del", "las", "un",
		"por", "con", "una", "para", "es", "se", "al", "lo", "como", "más", "su", "sus")
	englishStopWords = setOf("the", "of", "and", "to", "in", "is", "that", "for", "it", "with",
		"as", "was", "on", "are", "be", "by", "this", "an", "which", "from", "their")
)

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// MetadataHandler claims leading keyword lines and records the formatting
// detected across the whole document.
type MetadataHandler struct{}

// Name implements Handler.
func (h *MetadataHandler) Name() string { return "metadata" }

// Claim implements Handler.
func (h *MetadataHandler) Claim(bs []blocks.ContentBlock, b *document.Builder) []blocks.ContentBlock {
	b.SetConfig(DetectConfig(b.Source()))

	n := 0
	for _, blk := range bs {
		m := keywordsRe.FindStringSubmatch(strings.TrimSpace(blk.Text))
		if m == nil {
			break
		}
		b.AddKeywords(splitKeywords(m[1])...)
		n++
	}
	return bs[n:]
}

// DetectConfig infers language, dominant font and line spacing.
func DetectConfig(bs []blocks.ContentBlock) document.DetectedConfig {
	var cfg document.DetectedConfig
	cfg.Language = DetectLanguage(bs)

	fonts := make(map[string]int)
	sizes := make(map[float64]int)
	spacings := make(map[float64]int)
	for _, blk := range bs {
		n := len(blk.Text)
		if blk.Style.FontName != "" {
			fonts[blk.Style.FontName] += n
		}
		if blk.Style.FontSize > 0 {
			sizes[math.Round(blk.Style.FontSize*2)/2] += n
		}
		if blk.Style.LineSpacing > 0 {
			spacings[math.Round(blk.Style.LineSpacing*2)/2] += n
		}
	}
	cfg.Font = dominant(fonts, "")
	cfg.FontSize = dominant(sizes, 0)
	cfg.LineSpacing = dominant(spacings, 0)
	return cfg
}

// DetectLanguage compares Spanish and English stop-word counts. Ties and
// empty input give "en".
func DetectLanguage(bs []blocks.ContentBlock) string {
	es, en := 0, 0
	for _, blk := range bs {
		for _, w := range strings.Fields(strings.ToLower(blk.Text)) {
			w = strings.Trim(w, ".,;:()\"'¿?¡!")
			if spanishStopWords[w] {
				es++
			}
			if englishStopWords[w] {
				en++
			}
		}
	}
	if es > en {
		return "es"
	}
	return "en"
}

// dominant returns the key with the highest weight, breaking ties toward
// the smaller key so results are deterministic.
func dominant[K string | float64](weights map[K]int, zero K) K {
	best, bestW := zero, 0
	for k, w := range weights {
		if w > bestW || (w == bestW && k < best) {
			best, bestW = k, w
		}
	}
	return best
}
