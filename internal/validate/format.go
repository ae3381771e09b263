package validate

import (
	"fmt"
	"math"
	"strings"

	"github.com/matsen/apalint/internal/document"
	"github.com/matsen/apalint/internal/normalize"
)

// APA 7 layout values.
const (
	apaLineSpacing = 2.0
	apaMarginIn    = 1.0
	apaPageSize    = "letter"

	spacingTolerance = 0.1
	marginTolerance  = 0.1
	sizeTolerance    = 0.5
)

// apaFonts maps each accepted font, folded without spaces, to its size in
// points.
var apaFonts = []struct {
	key  string
	name string
	size float64
}{
	{"timesnewroman", "Times New Roman", 12},
	{"calibri", "Calibri", 11},
	{"arial", "Arial", 11},
	{"georgia", "Georgia", 11},
	{"lucidasansunicode", "Lucida Sans Unicode", 10},
	{"computermodern", "Computer Modern", 10},
}

// apaFont finds the accepted font a detected font name belongs to. PDF
// names such as "ABCDEF+TimesNewRomanPS-BoldMT" lose their subset tag and
// match by prefix.
func apaFont(name string) (string, float64, bool) {
	if i := strings.IndexByte(name, '+'); i >= 0 {
		name = name[i+1:]
	}
	key := strings.ReplaceAll(normalize.Key(name), " ", "")
	for _, f := range apaFonts {
		if strings.HasPrefix(key, f.key) {
			return f.name, f.size, true
		}
	}
	return "", 0, false
}

// checkFormat compares the detected layout with APA 7. Properties the
// source did not report are skipped.
func (v *Validator) checkFormat(doc *document.SemanticDocument, r *Report) {
	cfg := doc.Config
	add := func(msg string) {
		r.Issues = append(r.Issues, Issue{
			Code:     CodeFormatMismatch,
			Severity: SeverityWarning,
			Message:  msg,
			Location: "document",
		})
	}

	if cfg.Font != "" {
		name, size, ok := apaFont(cfg.Font)
		switch {
		case !ok:
			add(fmt.Sprintf("font %q is not an APA font (Times New Roman 12, Calibri 11, Arial 11, Georgia 11, Lucida Sans Unicode 10)", cfg.Font))
		case cfg.FontSize > 0 && math.Abs(cfg.FontSize-size) >= sizeTolerance:
			add(fmt.Sprintf("font size is %gpt, want %gpt for %s", cfg.FontSize, size, name))
		}
	}
	if cfg.LineSpacing > 0 && math.Abs(cfg.LineSpacing-apaLineSpacing) >= spacingTolerance {
		add(fmt.Sprintf("line spacing is %g, want double (%g)", cfg.LineSpacing, apaLineSpacing))
	}
	if cfg.PageSize != "" && cfg.PageSize != apaPageSize {
		add(fmt.Sprintf("page size is %s, want letter (8.5 x 11 in)", cfg.PageSize))
	}
	if m := cfg.Margins; m != nil {
		var off []string
		for _, side := range []struct {
			name string
			in   float64
		}{{"top", m.Top}, {"right", m.Right}, {"bottom", m.Bottom}, {"left", m.Left}} {
			if math.Abs(side.in-apaMarginIn) >= marginTolerance {
				off = append(off, fmt.Sprintf("%s %.2fin", side.name, side.in))
			}
		}
		if len(off) > 0 {
			add(fmt.Sprintf("margins should be 1in on every side: %s", strings.Join(off, ", ")))
		}
	}
}
