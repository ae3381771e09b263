package refparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/matsen/apalint/internal/author"
	"github.com/matsen/apalint/internal/reference"
)

var (
	// bibEntryRe matches the entry start: @type{key,
	bibEntryRe = regexp.MustCompile(`^@(\w+)\s*\{\s*([^,\s]*)\s*,`)
	// bibFieldRe matches name = {value}, name = "value" or name = 123, with
	// one level of nested braces inside the value.
	bibFieldRe = regexp.MustCompile(`(?s)(\w+)\s*=\s*(?:\{((?:[^{}]|\{[^{}]*\})*)\}|"([^"]*)"|(\d+))`)
	// bibAndRe separates names in author and editor fields.
	bibAndRe = regexp.MustCompile(`\s+and\s+`)
	// latexUnescaper undoes the escaping applied when writing BibTeX.
	latexUnescaper = strings.NewReplacer(`\&`, "&", `\%`, "%", `\$`, "$", `\#`, "#", `\_`, "_", "{", "", "}", "", "~", " ")
)

var bibTypes = map[string]reference.Type{
	"article":       reference.TypeJournalArticle,
	"book":          reference.TypeBook,
	"inbook":        reference.TypeBookChapter,
	"incollection":  reference.TypeBookChapter,
	"inproceedings": reference.TypeConferencePaper,
	"conference":    reference.TypeConferencePaper,
	"phdthesis":     reference.TypeDissertation,
	"mastersthesis": reference.TypeDissertation,
	"techreport":    reference.TypeReport,
	"online":        reference.TypeWebpage,
	"software":      reference.TypeSoftware,
}

// ParseBibTeX parses a single BibTeX entry.
func ParseBibTeX(entry string) (reference.Reference, error) {
	ref := reference.Reference{RawIndex: -1}
	entry = strings.TrimSpace(entry)
	m := bibEntryRe.FindStringSubmatch(entry)
	if m == nil {
		return ref, fmt.Errorf("%w: malformed BibTeX entry", ErrUnparseable)
	}

	fields := make(map[string]string)
	for _, f := range bibFieldRe.FindAllStringSubmatch(entry[len(m[0]):], -1) {
		val := f[2]
		if val == "" {
			val = f[3]
		}
		if val == "" {
			val = f[4]
		}
		fields[strings.ToLower(f[1])] = strings.Join(strings.Fields(latexUnescaper.Replace(val)), " ")
	}

	kind := strings.ToLower(m[1])
	ref.Type = bibTypes[kind]
	if ref.Type == "" {
		ref.Type = reference.TypeBook
		if fields["url"] != "" {
			ref.Type = reference.TypeWebpage
		}
	}

	for _, name := range bibAndRe.Split(fields["author"], -1) {
		if a := author.Parse(name); a.Surname() != "" {
			ref.Authors = append(ref.Authors, a)
		}
	}
	if len(ref.Authors) == 0 {
		return ref, fmt.Errorf("%w: BibTeX entry %q has no author", ErrUnparseable, m[2])
	}
	if y := fields["year"]; y != "" {
		year, err := strconv.Atoi(y[:min(4, len(y))])
		if err != nil {
			return ref, fmt.Errorf("%w: BibTeX entry %q has year %q", ErrUnparseable, m[2], y)
		}
		ref.Year = year
	}

	ref.Title = fields["title"]
	ref.Source = firstNonEmpty(fields["journal"], fields["booktitle"], fields["howpublished"])
	ref.Volume = fields["volume"]
	ref.Issue = fields["number"]
	ref.Pages = strings.ReplaceAll(fields["pages"], "--", "–")
	ref.DOI = NormalizeDOI(fields["doi"])
	ref.URL = fields["url"]
	ref.Publisher = firstNonEmpty(fields["publisher"], fields["institution"])
	ref.Edition = fields["edition"]
	ref.University = fields["school"]
	for _, name := range bibAndRe.Split(fields["editor"], -1) {
		if a := author.Parse(name); a.Surname() != "" {
			ref.Editors = append(ref.Editors, a)
		}
	}
	return ref, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
