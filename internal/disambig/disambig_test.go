package disambig

import (
	"testing"

	"github.com/matsen/apalint/internal/reference"
)

func ref(title string, year int, surnames ...string) reference.Reference {
	r := reference.Reference{Type: reference.TypeJournalArticle, Title: title, Year: year}
	for _, s := range surnames {
		r.Authors = append(r.Authors, reference.Author{Last: s, First: "A."})
	}
	return r
}

func suffixes(refs []reference.Reference) []string {
	out := make([]string, len(refs))
	for i, r := range refs {
		out[i] = r.YearSuffix
	}
	return out
}

func TestDisambiguate(t *testing.T) {
	refs := []reference.Reference{
		ref("Zebra studies", 2020, "Smith"),
		ref("Unique work", 2019, "Smith"),
		ref("apple studies", 2020, "SMITH"),
		ref("Middle", 2020, "Smith", "Jones"),
		ref("Mango", 2020, "Smíth"),
	}
	n := Disambiguate(refs)
	if n != 3 {
		t.Errorf("Disambiguate() = %d, want 3", n)
	}
	want := []string{"c", "", "a", "", "b"}
	got := suffixes(refs)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("suffix[%d] = %q, want %q (%q)", i, got[i], want[i], refs[i].Title)
		}
	}
	if refs[2].DisplayYear() != "2020a" {
		t.Errorf("DisplayYear() = %q, want 2020a", refs[2].DisplayYear())
	}
}

func TestDisambiguate_Idempotent(t *testing.T) {
	refs := []reference.Reference{
		ref("B", 2021, "Lee"),
		ref("A", 2021, "Lee"),
		ref("C", 0, "Lee"),
		ref("D", 0, "Lee"),
	}
	Disambiguate(refs)
	first := suffixes(refs)
	Disambiguate(refs)
	second := suffixes(refs)
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("suffix[%d] changed from %q to %q", i, first[i], second[i])
		}
	}
	if refs[2].DisplayYear() != "n.d.-a" || refs[3].DisplayYear() != "n.d.-b" {
		t.Errorf("undated = %q, %q", refs[2].DisplayYear(), refs[3].DisplayYear())
	}
}

func TestDisambiguate_StaleSuffixCleared(t *testing.T) {
	refs := []reference.Reference{ref("Only", 2020, "Kim")}
	refs[0].YearSuffix = "b"
	if n := Disambiguate(refs); n != 0 {
		t.Errorf("Disambiguate() = %d, want 0", n)
	}
	if refs[0].YearSuffix != "" {
		t.Errorf("YearSuffix = %q, want empty", refs[0].YearSuffix)
	}
}

func TestDisambiguate_TitleTieKeepsInputOrder(t *testing.T) {
	refs := []reference.Reference{ref("Same", 2020, "Ng"), ref("same", 2020, "Ng")}
	Disambiguate(refs)
	if refs[0].YearSuffix != "a" || refs[1].YearSuffix != "b" {
		t.Errorf("suffixes = %v", suffixes(refs))
	}
}

func TestDisambiguate_PersonalCommunicationExcluded(t *testing.T) {
	pc := ref("Conversation", 2020, "Smith")
	pc.Type = reference.TypePersonalCommunication
	refs := []reference.Reference{pc, pc, ref("Paper", 2020, "Smith")}
	if n := Disambiguate(refs); n != 0 {
		t.Errorf("Disambiguate() = %d, want 0", n)
	}
}

func TestDisambiguate_GroupAuthors(t *testing.T) {
	who := reference.Author{Group: "World Health Organization", Abbreviation: "WHO"}
	refs := []reference.Reference{
		{Type: reference.TypeReport, Authors: []reference.Author{who}, Year: 2022, Title: "Report two"},
		{Type: reference.TypeReport, Authors: []reference.Author{who}, Year: 2022, Title: "Report one"},
	}
	Disambiguate(refs)
	if refs[0].YearSuffix != "b" || refs[1].YearSuffix != "a" {
		t.Errorf("suffixes = %v", suffixes(refs))
	}
}

func TestSuffix(t *testing.T) {
	tests := []struct {
		rank int
		want string
	}{
		{0, "a"}, {1, "b"}, {25, "z"}, {26, "aa"}, {27, "ab"}, {51, "az"}, {52, "ba"},
	}
	for _, tt := range tests {
		if got := Suffix(tt.rank); got != tt.want {
			t.Errorf("Suffix(%d) = %q, want %q", tt.rank, got, tt.want)
		}
	}
}

func TestCollisions(t *testing.T) {
	refs := []reference.Reference{
		ref("A", 2020, "Smith"),
		ref("B", 2021, "Smith"),
		ref("C", 2020, "smith"),
	}
	got := Collisions(refs)
	if len(got) != 1 || len(got[0]) != 2 || got[0][0] != 0 || got[0][1] != 2 {
		t.Errorf("Collisions() = %v", got)
	}
}

func TestSortReferences(t *testing.T) {
	refs := []reference.Reference{
		ref("T", 2020, "Zapata"),
		ref("T", 2019, "van Dijk"),
		ref("T", 2021, "de la Cruz"),
		ref("T", 2018, "Adams"),
		ref("T", 0, "Adams"),
	}
	SortReferences(refs)
	want := []string{"Adams", "Adams", "de la Cruz", "van Dijk", "Zapata"}
	for i, w := range want {
		if refs[i].FirstSurname() != w {
			t.Errorf("refs[%d] = %q, want %q", i, refs[i].FirstSurname(), w)
		}
	}
	if refs[0].Year != 0 {
		t.Errorf("undated work should sort first, got year %d", refs[0].Year)
	}
}

func TestSortReferences_NoAuthors(t *testing.T) {
	refs := []reference.Reference{
		ref("Zoning rules", 2020, "Young"),
		ref("Manual of style", 2019),
		ref("T", 2018, "Brown"),
		ref("Ética profesional", 2017),
	}
	SortReferences(refs)
	want := []string{"T", "Ética profesional", "Manual of style", "Zoning rules"}
	for i, w := range want {
		if refs[i].Title != w {
			t.Errorf("refs[%d].Title = %q, want %q", i, refs[i].Title, w)
		}
	}
}
