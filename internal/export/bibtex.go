// Package export writes reference lists to other formats.
package export

import (
	"fmt"
	"strings"

	"github.com/matsen/apalint/internal/normalize"
	"github.com/matsen/apalint/internal/reference"
)

var entryTypes = map[reference.Type]string{
	reference.TypeJournalArticle:  "article",
	reference.TypeNewspaper:       "article",
	reference.TypeMagazine:        "article",
	reference.TypeBook:            "book",
	reference.TypeEditedBook:      "book",
	reference.TypeBookChapter:     "incollection",
	reference.TypeConferencePaper: "inproceedings",
	reference.TypeDissertation:    "phdthesis",
	reference.TypeReport:          "techreport",
	reference.TypeWebpage:         "online",
	reference.TypeSoftware:        "software",
}

// CiteKey returns the citation key for ref: the folded first surname,
// the year ("nd" when undated) and the disambiguation suffix, e.g.
// "garcia2020a".
func CiteKey(ref reference.Reference) string {
	key := strings.ReplaceAll(normalize.Surname(ref.FirstSurname()), " ", "")
	if key == "" {
		key = "anon"
	}
	if ref.Year == 0 {
		key += "nd"
	} else {
		key += fmt.Sprint(ref.Year)
	}
	return key + ref.YearSuffix
}

// ToBibTeX converts a reference to BibTeX format under key.
func ToBibTeX(ref reference.Reference, key string) string {
	entryType := entryTypes[ref.Type]
	if entryType == "" {
		entryType = "misc"
	}
	var b strings.Builder

	fmt.Fprintf(&b, "@%s{%s,\n", entryType, key)

	if len(ref.Authors) > 0 {
		fmt.Fprintf(&b, "  author = {%s},\n", formatAuthors(ref.Authors))
	}
	if len(ref.Editors) > 0 {
		fmt.Fprintf(&b, "  editor = {%s},\n", formatAuthors(ref.Editors))
	}
	fmt.Fprintf(&b, "  title = {%s},\n", escapeLatex(ref.Title))

	if ref.Source != "" {
		fmt.Fprintf(&b, "  %s = {%s},\n", sourceField(entryType), escapeLatex(ref.Source))
	}
	if ref.Year > 0 {
		fmt.Fprintf(&b, "  year = {%d},\n", ref.Year)
	}

	optional := []struct{ name, value string }{
		{"volume", ref.Volume},
		{"number", ref.Issue},
		{"pages", strings.ReplaceAll(ref.Pages, "–", "--")},
		{"edition", ref.Edition},
		{"publisher", ref.Publisher},
		{"school", ref.University},
		{"number", ref.ReportNumber},
		{"doi", ref.DOI},
		{"url", ref.URL},
	}
	for _, f := range optional {
		if f.value == "" {
			continue
		}
		value := f.value
		if f.name != "doi" && f.name != "url" {
			value = escapeLatex(value)
		}
		fmt.Fprintf(&b, "  %s = {%s},\n", f.name, value)
	}

	b.WriteString("}\n")

	return b.String()
}

// ToBibTeXList converts references to BibTeX, making keys unique within
// the list.
func ToBibTeXList(refs []reference.Reference) string {
	var entries []string
	for i, key := range uniqueKeys(refs) {
		entries = append(entries, ToBibTeX(refs[i], key))
	}
	return strings.Join(entries, "\n")
}

// uniqueKeys returns CiteKey for each reference, appending "_2", "_3" and
// so on to repeats. References sharing surname and year but not the full
// author list are not disambiguated by suffix, so repeats do happen.
func uniqueKeys(refs []reference.Reference) []string {
	keys := make([]string, len(refs))
	seen := make(map[string]int)
	for i, ref := range refs {
		key := CiteKey(ref)
		seen[key]++
		if n := seen[key]; n > 1 {
			key = fmt.Sprintf("%s_%d", key, n)
		}
		keys[i] = key
	}
	return keys
}

func sourceField(entryType string) string {
	switch entryType {
	case "inproceedings", "incollection":
		return "booktitle"
	case "online", "misc":
		return "howpublished"
	case "techreport":
		return "institution"
	case "book":
		return "series"
	default:
		return "journal"
	}
}

// formatAuthors formats authors in BibTeX style: "Last, First and Last, First".
// Group authors are braced so BibTeX does not split them.
func formatAuthors(authors []reference.Author) string {
	var formatted []string
	for _, a := range authors {
		switch {
		case a.IsGroup():
			formatted = append(formatted, "{"+escapeLatex(a.Group)+"}")
		case a.First != "":
			formatted = append(formatted, fmt.Sprintf("%s, %s", escapeLatex(a.Last), escapeLatex(a.First)))
		default:
			formatted = append(formatted, escapeLatex(a.Last))
		}
	}
	return strings.Join(formatted, " and ")
}

var latexEscaper = strings.NewReplacer(
	`\`, `\textbackslash{}`,
	"&", `\&`,
	"%", `\%`,
	"$", `\$`,
	"#", `\#`,
	"_", `\_`,
	"{", `\{`,
	"}", `\}`,
	"~", `\textasciitilde{}`,
	"^", `\textasciicircum{}`,
)

// escapeLatex escapes special LaTeX characters.
func escapeLatex(s string) string {
	return latexEscaper.Replace(s)
}
