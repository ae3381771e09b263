package enhance

import (
	"sort"
	"strings"

	"github.com/matsen/apalint/internal/classify"
	"github.com/matsen/apalint/internal/document"
)

const (
	// mergeTitleBelow is the mechanical title confidence under which a
	// provider title page replaces it.
	mergeTitleBelow = 0.5
	// providerTitleConfidence is assigned to a provider title page.
	providerTitleConfidence = 0.9
)

// MergeStats counts what a merge changed.
type MergeStats struct {
	TitlePage  bool `json:"title_page"`
	Abstract   bool `json:"abstract"`
	Keywords   int  `json:"keywords"`
	Sections   int  `json:"sections"`
	References int  `json:"references"`
	Failed     int  `json:"failed_chunks"`
}

// Merge folds provider results into doc. Mechanical findings win: a field
// is only filled when the classifier left it empty (or, for the title page,
// detected it with low confidence). Outcomes are applied in chunk order so
// the result does not depend on completion order. References are parsed
// with parser; entries it rejects are kept raw-only.
func Merge(doc *document.SemanticDocument, outcomes []Outcome, parser classify.EntryParser) MergeStats {
	ordered := append([]Outcome(nil), outcomes...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Chunk.Index < ordered[j].Chunk.Index })

	var st MergeStats
	for _, o := range ordered {
		if o.Err != nil || o.Result == nil {
			st.Failed++
			continue
		}
		res := o.Result

		if tp := res.TitlePage; tp != nil && strings.TrimSpace(tp.Title) != "" && doc.TitleConfidence() < mergeTitleBelow {
			doc.TitlePage = &document.TitlePage{
				Title:       strings.TrimSpace(tp.Title),
				Authors:     nonBlank(tp.Authors),
				Affiliation: tp.University,
				Course:      tp.Course,
				Instructor:  tp.Instructor,
				Date:        tp.DueDate,
				Confidence:  providerTitleConfidence,
			}
			doc.Config.HasTitlePage = true
			st.TitlePage = true
		}

		if doc.Abstract == nil && res.Abstract != nil {
			if text := strings.TrimSpace(*res.Abstract); text != "" {
				doc.Abstract = &text
				doc.Config.HasAbstract = true
				st.Abstract = true
			}
		}

		if len(doc.Keywords) == 0 {
			doc.Keywords = nonBlank(res.Keywords)
			st.Keywords = len(doc.Keywords)
		}

		if len(doc.Sections) == 0 && len(res.Sections) > 0 {
			doc.Sections = skeleton(res.Sections)
			st.Sections = doc.SectionCount()
		}

		if len(doc.ReferencesRaw) == 0 && len(res.References) > 0 {
			st.References = addReferences(doc, res.References, parser)
		}
	}
	return st
}

// skeleton nests table-of-contents entries into sections with no content.
func skeleton(entries []Section) []document.Section {
	b := document.NewBuilder(nil)
	for _, e := range entries {
		if title := strings.TrimSpace(e.Title); title != "" {
			b.OpenSection(title, e.HeadingLevel)
		}
	}
	built := b.Build()
	return built.Sections
}

func addReferences(doc *document.SemanticDocument, refs []Reference, parser classify.EntryParser) int {
	n := 0
	for _, r := range refs {
		raw := strings.TrimSpace(r.RawText)
		if raw == "" {
			continue
		}
		idx := len(doc.ReferencesRaw)
		doc.ReferencesRaw = append(doc.ReferencesRaw, raw)
		n++
		if parser == nil {
			doc.UnparsedReferences = append(doc.UnparsedReferences, idx)
			continue
		}
		parsed, err := parser.Parse(raw)
		if err != nil {
			doc.UnparsedReferences = append(doc.UnparsedReferences, idx)
			continue
		}
		parsed.RawIndex = idx
		doc.ReferencesParsed = append(doc.ReferencesParsed, parsed)
	}
	return n
}

func nonBlank(ss []string) []string {
	var out []string
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
