package classify

import (
	"math"
	"regexp"
	"strings"

	"github.com/matsen/apalint/internal/blocks"
	"github.com/matsen/apalint/internal/document"
)

// Signal weights for title page confidence.
const (
	weightTitle       = 0.25
	weightCentered    = 0.20
	weightBoldTitle   = 0.15
	weightAuthors     = 0.15
	weightInstitution = 0.10
	weightDate        = 0.10
	weightBoundary    = 0.05

	// A zone line longer than this is body prose, not title page metadata.
	titleLineMaxWords = 40
	// Centered lines needed, as a share of the zone, to count as centered.
	centeredRatio = 0.4
)

var (
	institutionRe = regexp.MustCompile(`(?i)\b(?:universidad|university|facultad|faculty|instituto|institute|escuela|school|departamento|department|polit[eé]cnico|college|colegio|sena)\b`)
	dateRe        = regexp.MustCompile(`(?i)\b(?:(?:january|february|march|april|may|june|july|august|september|october|november|december|enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|setiembre|octubre|noviembre|diciembre)\b.*\b\d{4}|\d{1,2}\s+de\s+\p{L}+(?:\s+(?:de|del))?\s+\d{4}|\d{1,2}[/.-]\d{1,2}[/.-]\d{2,4}|\d{4}-\d{2}-\d{2})\b`)
	courseRe      = regexp.MustCompile(`(?i)\b(?:curso|course|asignatura|materia|class|clase)\b|\b\p{Lu}{2,5}\s*-?\s*\d{3,4}\b`)
	instructorRe  = regexp.MustCompile(`(?i)^(?:dr|dra|prof|profa|profesor|profesora|professor|docente|mg|msc|lic|ing)\.?\s`)
	personNameRe  = regexp.MustCompile(`^\p{Lu}[\p{L}'’\-]*\.?(?:\s+(?:\p{Lu}[\p{L}'’\-]*\.?|de|del|la|las|los|van|von|der|den|da|das|do|dos|di|y))+$`)
	nameSepRe     = regexp.MustCompile(`\s*(?:,|;|&|\s+and\s+|\s+y\s+)\s*`)
	// keyValueRe finds labels inside merged lines such as "Autor: X Fecha: Y".
	keyValueRe = regexp.MustCompile(`(?i)\b(autor(?:es|a)?|authors?|estudiantes?|students?|nombres?|names?|docente|profesora?|instructor|professor|tutor|curso|course|asignatura|materia|fecha|date|universidad|institución|institucion|institution|afiliación|afiliacion|affiliation|programa|program)\s*:\s*`)
)

// TitlePageHandler detects an APA title page at the start of the document.
type TitlePageHandler struct {
	MaxBlocks int
}

// Name implements Handler.
func (h *TitlePageHandler) Name() string { return "title_page" }

// Claim implements Handler.
func (h *TitlePageHandler) Claim(bs []blocks.ContentBlock, b *document.Builder) []blocks.ContentBlock {
	end, boundary := h.zoneEnd(bs)
	if end == 0 {
		return bs
	}
	zone := bs[:end]

	styled := false
	for _, blk := range zone {
		if blk.Style.Centered || blk.Style.Bold {
			styled = true
			break
		}
	}
	if len(zone) < 2 && !styled {
		return bs
	}

	tp, signals := parseTitleZone(zone)
	if signals == 0 {
		return bs
	}
	tp.Confidence = titleConfidence(zone, tp, boundary)
	b.SetTitlePage(tp)
	return bs[end:]
}

// zoneEnd returns the length of the title zone and whether it stopped at a
// structural boundary (a heading, abstract, keywords or references marker).
func (h *TitlePageHandler) zoneEnd(bs []blocks.ContentBlock) (int, bool) {
	limit := min(len(bs), h.maxBlocks())
	for i := 0; i < limit; i++ {
		blk := bs[i]
		switch {
		case isAbstractHeading(blk) || abstractRe.MatchString(blk.Text) ||
			isKeywordsLine(blk) || isReferencesHeading(blk):
			return i, true
		case blk.IsHeading() && !(i == 0 && leadsTitleZone(bs)):
			return i, true
		case blk.WordCount() > titleLineMaxWords:
			return i, false
		}
	}
	return limit, false
}

func (h *TitlePageHandler) maxBlocks() int {
	if h.MaxBlocks > 0 {
		return h.MaxBlocks
	}
	return DefaultOptions().MaxTitleBlocks
}

// leadsTitleZone reports whether a leading heading is a document title: it
// must be followed by at least two short metadata lines.
func leadsTitleZone(bs []blocks.ContentBlock) bool {
	n := 0
	for _, blk := range bs[1:] {
		if blk.IsHeading() || blk.WordCount() > 20 || isAbstractHeading(blk) {
			break
		}
		n++
		if n >= 2 {
			return true
		}
	}
	return false
}

// parseTitleZone extracts title page fields. signals counts recognized
// metadata lines beyond the title.
func parseTitleZone(zone []blocks.ContentBlock) (document.TitlePage, int) {
	var tp document.TitlePage
	titleIdx := pickTitle(zone)
	tp.Title = strings.TrimSpace(zone[titleIdx].Text)

	signals := 0
	var unlabeled []string
	for i, blk := range zone {
		if i == titleIdx {
			continue
		}
		// Multi-line titles share the title's emphasis.
		title := zone[titleIdx]
		if i == titleIdx+1 && title.Style.Bold && blk.Style.Bold && len(tp.Authors) == 0 {
			tp.Title += " " + strings.TrimSpace(blk.Text)
			continue
		}
		for _, kv := range splitLabeled(blk.Text) {
			if assignLabeled(&tp, kv.label, kv.value) {
				signals++
				continue
			}
			switch line := kv.value; {
			case institutionRe.MatchString(line) && tp.Affiliation == "":
				tp.Affiliation = line
				signals++
			case dateRe.MatchString(line) && tp.Date == "":
				tp.Date = line
				signals++
			case instructorRe.MatchString(line) && tp.Instructor == "":
				tp.Instructor = line
				signals++
			case courseRe.MatchString(line) && tp.Course == "":
				tp.Course = line
				signals++
			case len(tp.Authors) == 0 && looksLikeNames(line):
				tp.Authors = splitNames(line)
				signals++
			default:
				unlabeled = append(unlabeled, line)
			}
		}
	}

	// APA student pages list course then instructor after the affiliation.
	for _, line := range unlabeled {
		switch {
		case tp.Course == "" && tp.Affiliation != "":
			tp.Course = line
		case tp.Instructor == "" && tp.Course != "":
			tp.Instructor = line
		}
	}
	return tp, signals
}

// pickTitle prefers a bold centered block, then centered, then bold, then the first.
func pickTitle(zone []blocks.ContentBlock) int {
	for _, want := range []func(blocks.StyleHints) bool{
		func(s blocks.StyleHints) bool { return s.Bold && s.Centered },
		func(s blocks.StyleHints) bool { return s.Centered },
		func(s blocks.StyleHints) bool { return s.Bold || s.HeadingLevel > 0 },
	} {
		for i, blk := range zone {
			if want(blk.Style) && !institutionRe.MatchString(blk.Text) {
				return i
			}
		}
	}
	return 0
}

type labeled struct {
	label string
	value string
}

// splitLabeled splits "Autor: X Fecha: Y" into labeled parts. A line
// without labels comes back as one unlabeled part.
func splitLabeled(line string) []labeled {
	line = strings.TrimSpace(line)
	locs := keyValueRe.FindAllStringSubmatchIndex(line, -1)
	if len(locs) == 0 {
		return []labeled{{value: line}}
	}
	var out []labeled
	if pre := strings.TrimSpace(line[:locs[0][0]]); pre != "" {
		out = append(out, labeled{value: pre})
	}
	for i, loc := range locs {
		end := len(line)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		out = append(out, labeled{
			label: strings.ToLower(line[loc[2]:loc[3]]),
			value: strings.TrimSpace(strings.TrimRight(line[loc[1]:end], ",;")),
		})
	}
	return out
}

func assignLabeled(tp *document.TitlePage, label, value string) bool {
	if label == "" || value == "" {
		return false
	}
	switch {
	case strings.HasPrefix(label, "aut"), strings.HasPrefix(label, "estud"),
		strings.HasPrefix(label, "stud"), strings.HasPrefix(label, "nom"), strings.HasPrefix(label, "name"):
		tp.Authors = append(tp.Authors, splitNames(value)...)
	case strings.HasPrefix(label, "doc"), strings.HasPrefix(label, "prof"),
		label == "instructor", label == "tutor":
		tp.Instructor = value
	case strings.HasPrefix(label, "cur"), label == "course", label == "asignatura",
		label == "materia", strings.HasPrefix(label, "program"):
		tp.Course = value
	case label == "fecha" || label == "date":
		tp.Date = value
	default:
		tp.Affiliation = value
	}
	return true
}

func looksLikeNames(line string) bool {
	names := nameSepRe.Split(strings.TrimSpace(line), -1)
	n := 0
	for _, name := range names {
		if name == "" {
			continue
		}
		words := len(strings.Fields(name))
		if words < 2 || words > 5 || !personNameRe.MatchString(name) {
			return false
		}
		n++
	}
	return n > 0
}

func splitNames(line string) []string {
	var out []string
	for _, name := range nameSepRe.Split(strings.TrimSpace(line), -1) {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}

func titleConfidence(zone []blocks.ContentBlock, tp document.TitlePage, boundary bool) float64 {
	score := 0.0
	if tp.Title != "" {
		score += weightTitle
	}
	centered := 0
	for _, blk := range zone {
		if blk.Style.Centered {
			centered++
		}
	}
	if float64(centered)/float64(len(zone)) >= centeredRatio {
		score += weightCentered
	}
	if idx := pickTitle(zone); zone[idx].Style.Bold || zone[idx].IsHeading() {
		score += weightBoldTitle
	}
	if len(tp.Authors) > 0 {
		score += weightAuthors
	}
	if tp.Affiliation != "" {
		score += weightInstitution
	}
	if tp.Date != "" {
		score += weightDate
	}
	if boundary {
		score += weightBoundary
	}
	return math.Min(1, math.Round(score*100)/100)
}
