// Package refparse turns raw reference-list entries into structured references.
package refparse

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/matsen/apalint/internal/author"
	"github.com/matsen/apalint/internal/reference"
)

// ErrUnparseable is returned when an entry has no recognizable author/year
// structure.
var ErrUnparseable = errors.New("unparseable reference")

var (
	// yearRe matches "(2020)", "(2020a)", "(2020, March 3)", "(n.d.)", "(s.f.-b)".
	yearRe = regexp.MustCompile(`\(\s*(?:(\d{4})([a-z])?(?:,\s*[^)]*)?|(n\.\s?d\.|s\.\s?f\.)(?:-([a-z]))?)\s*\)`)
	// anyYearRe finds a bare year, used for personal communications.
	anyYearRe = regexp.MustCompile(`\b(1[5-9]\d{2}|20\d{2})\b`)
	// titleEndRe finds the sentence boundary ending the title.
	titleEndRe = regexp.MustCompile(`[.?!](?:\s|$)`)
	// journalRe matches "Journal Name, 12(3), 45-67" with optional issue and pages.
	journalRe = regexp.MustCompile(`^(.+?),\s*(\d+)\s*(?:\(([^)]+)\))?\s*(?:,\s*((?:e|pp?\.\s*)?[\w]+(?:\s*[-–]\s*[\w]+)?))?\s*\.?$`)
	// chapterRe matches "In A. Editor (Ed.), Book title (pp. 1-10). Publisher".
	chapterRe = regexp.MustCompile(`^(?:In|En)\s+(.+?)\s*\((?:Eds?|Coords?|Comps?)\.\),\s*(.+?)\s*(?:\((?:pp?\.\s*)?([^)]+)\))?\.\s*(.*)$`)
	// bracketRe matches a trailing description such as "[Doctoral dissertation, University]".
	bracketRe = regexp.MustCompile(`\[([^\]]+)\]`)
	// retrievedRe matches retrieval statements.
	retrievedRe = regexp.MustCompile(`(?i)(?:retrieved|recuperado|disponible)\s+(?:\w+\s+)*?(?:from|de|en)\s*:?\s*`)
	// reportNoRe matches "(Report No. 123)".
	reportNoRe = regexp.MustCompile(`(?i)\((?:report|informe)\s+(?:no\.|n\.?º)\s*([^)]+)\)`)
	// doiLabelRe matches a "doi:" label left after the DOI itself is removed.
	doiLabelRe = regexp.MustCompile(`(?i)\bdoi:\s*`)
	// editedRe matches "(Ed.)" or "(Eds.)" after the author list.
	editedRe = regexp.MustCompile(`\s*\((?:Eds?|Coords?)\.\)\s*\.?$`)
)

// Parser parses single reference entries. The zero value is ready to use.
type Parser struct{}

// New returns a Parser.
func New() *Parser {
	return &Parser{}
}

// Parse parses one reference entry. It tries BibTeX first, then the APA
// heuristic. The returned reference has RawIndex -1.
func (p *Parser) Parse(raw string) (reference.Reference, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return reference.Reference{}, fmt.Errorf("%w: empty entry", ErrUnparseable)
	}
	if strings.HasPrefix(raw, "@") {
		return ParseBibTeX(raw)
	}
	return parseAPA(raw)
}

// ParseAll parses every entry, collecting per-entry errors rather than
// stopping at the first failure.
func (p *Parser) ParseAll(entries []string) ([]reference.Reference, []error) {
	var refs []reference.Reference
	var errs []error
	for i, e := range entries {
		ref, err := p.Parse(e)
		if err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		ref.RawIndex = i
		refs = append(refs, ref)
	}
	return refs, errs
}

func parseAPA(raw string) (reference.Reference, error) {
	ref := reference.Reference{RawIndex: -1}
	lower := strings.ToLower(raw)

	if strings.Contains(lower, "personal communication") || strings.Contains(lower, "comunicación personal") {
		return parsePersonalCommunication(raw)
	}

	loc := yearRe.FindStringSubmatchIndex(raw)
	if loc == nil {
		return ref, fmt.Errorf("%w: no year in %q", ErrUnparseable, truncate(raw))
	}

	authorSeg := strings.TrimSpace(raw[:loc[0]])
	if editedRe.MatchString(authorSeg) {
		ref.Type = reference.TypeEditedBook
		authorSeg = editedRe.ReplaceAllString(authorSeg, "")
	}
	ref.Authors = author.ParseList(authorSeg)
	if len(ref.Authors) == 0 {
		return ref, fmt.Errorf("%w: no authors in %q", ErrUnparseable, truncate(raw))
	}

	if loc[2] >= 0 {
		ref.Year, _ = strconv.Atoi(raw[loc[2]:loc[3]])
		if loc[4] >= 0 {
			ref.YearSuffix = raw[loc[4]:loc[5]]
		}
	} else if loc[8] >= 0 {
		ref.YearSuffix = raw[loc[8]:loc[9]]
	}

	rest := strings.TrimLeft(raw[loc[1]:], ". ")
	ref.DOI = NormalizeDOI(FindDOI(rest))
	ref.URL = findURL(rest)
	rest = stripLocators(rest)
	if m := reportNoRe.FindStringSubmatch(rest); m != nil {
		ref.Type = reference.TypeReport
		ref.ReportNumber = strings.TrimSpace(m[1])
		rest = reportNoRe.ReplaceAllString(rest, "")
	}

	if m := titleEndRe.FindStringIndex(rest); m != nil {
		ref.Title = strings.TrimSpace(rest[:m[0]])
		if c := rest[m[0]]; c == '?' || c == '!' {
			ref.Title += string(c)
		}
		rest = strings.TrimSpace(rest[m[1]:])
	} else {
		ref.Title = strings.TrimSpace(rest)
		rest = ""
	}

	if m := bracketRe.FindStringSubmatch(ref.Title); m != nil {
		applyBracket(&ref, m[1])
		ref.Title = strings.TrimSpace(bracketRe.ReplaceAllString(ref.Title, ""))
	}
	if m := bracketRe.FindStringSubmatch(rest); m != nil {
		applyBracket(&ref, m[1])
		rest = strings.TrimSpace(bracketRe.ReplaceAllString(rest, ""))
	}

	parseSource(&ref, rest)
	if ref.Type == "" {
		ref.Type = inferType(ref, lower)
	}
	return ref, nil
}

func parsePersonalCommunication(raw string) (reference.Reference, error) {
	ref := reference.Reference{Type: reference.TypePersonalCommunication, RawIndex: -1}
	seg := raw
	if i := strings.Index(seg, "("); i > 0 {
		seg = seg[:i]
	}
	ref.Authors = author.ParseList(seg)
	if m := anyYearRe.FindString(raw); m != "" {
		ref.Year, _ = strconv.Atoi(m)
	}
	return ref, nil
}

// stripLocators removes DOIs, URLs and retrieval statements from the tail.
func stripLocators(s string) string {
	s = urlPattern.ReplaceAllString(s, "")
	s = doiPattern.ReplaceAllString(s, "")
	s = doiLabelRe.ReplaceAllString(s, "")
	s = retrievedRe.ReplaceAllString(s, "")
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ","))
}

func applyBracket(ref *reference.Reference, desc string) {
	d := strings.ToLower(desc)
	switch {
	case strings.Contains(d, "dissertation") || strings.Contains(d, "thesis") || strings.Contains(d, "tesis"):
		ref.Type = reference.TypeDissertation
		if i := strings.Index(desc, ","); i >= 0 {
			ref.University = strings.TrimSpace(desc[i+1:])
		}
	case strings.Contains(d, "software") || strings.Contains(d, "computer program"):
		ref.Type = reference.TypeSoftware
	case strings.Contains(d, "video") || strings.Contains(d, "film") || strings.Contains(d, "podcast"):
		ref.Type = reference.TypeAudiovisual
	case strings.Contains(d, "tweet") || strings.Contains(d, "status update") || strings.Contains(d, "facebook"):
		ref.Type = reference.TypeSocialMedia
	}
}

func parseSource(ref *reference.Reference, rest string) {
	rest = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), "."))
	if rest == "" {
		return
	}
	if m := chapterRe.FindStringSubmatch(rest + "."); m != nil {
		ref.Type = reference.TypeBookChapter
		ref.Editors = author.ParseList(m[1])
		ref.Source = strings.TrimSpace(m[2])
		ref.Pages = strings.TrimSpace(m[3])
		ref.Publisher = strings.TrimSuffix(strings.TrimSpace(m[4]), ".")
		return
	}
	if m := journalRe.FindStringSubmatch(rest); m != nil {
		ref.Source = strings.TrimSpace(m[1])
		ref.Volume = m[2]
		ref.Issue = strings.TrimSpace(m[3])
		ref.Pages = strings.TrimSpace(m[4])
		return
	}
	if ref.Type == reference.TypeDissertation && ref.University == "" {
		ref.University = rest
		return
	}
	if ref.Type == "" && (ref.URL != "" || strings.Contains(strings.ToLower(rest), "conference") || strings.Contains(strings.ToLower(rest), "proceedings")) {
		ref.Source = rest
		return
	}
	ref.Publisher = rest
}

func inferType(ref reference.Reference, lower string) reference.Type {
	switch {
	case strings.Contains(lower, "proceedings") || strings.Contains(lower, "conference") || strings.Contains(lower, "congreso"):
		return reference.TypeConferencePaper
	case ref.Volume != "":
		return reference.TypeJournalArticle
	case ref.URL != "" && ref.Publisher == "":
		return reference.TypeWebpage
	default:
		return reference.TypeBook
	}
}

func truncate(s string) string {
	const n = 60
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
