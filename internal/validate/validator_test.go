package validate

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/matsen/apalint/internal/document"
	"github.com/matsen/apalint/internal/reference"
)

func strp(s string) *string { return &s }

func smith2020() reference.Reference {
	return reference.Reference{
		Type:    reference.TypeJournalArticle,
		Authors: []reference.Author{{Last: "Smith", First: "J."}},
		Year:    2020,
		Title:   "A study",
	}
}

// paper returns a document with a confident title page and one section
// holding body.
func paper(body string, refs ...reference.Reference) *document.SemanticDocument {
	return &document.SemanticDocument{
		TitlePage:        &document.TitlePage{Title: "T", Confidence: 0.9},
		Sections:         []document.Section{{Heading: strp("Introduction"), Level: 1, Content: body}},
		ReferencesParsed: refs,
	}
}

func validate(doc *document.SemanticDocument) Report {
	return New(DefaultConfig()).Validate(doc)
}

func TestValidate_CitationMatched(t *testing.T) {
	r := validate(paper("As shown (Smith, 2020).", smith2020()))
	if len(r.Issues) != 0 {
		t.Errorf("issues = %+v, want none", r.Issues)
	}
	if !r.Passed() {
		t.Error("Passed() = false")
	}
	if len(r.Citations) != 1 {
		t.Errorf("citations = %d, want 1", len(r.Citations))
	}
}

func TestValidate_OrphanAfterRemovingReference(t *testing.T) {
	other := reference.Reference{
		Type:    reference.TypeBook,
		Authors: []reference.Author{{Last: "Jones", First: "B."}},
		Year:    2018,
		Title:   "Other",
	}
	r := validate(paper("As shown (Smith, 2020). Again (Smith, 2020). Jones (2018) agrees.", other))
	if got := r.Count(CodeCiteOrphan); got != 1 {
		t.Errorf("CITE_ORPHAN count = %d, want 1", got)
	}
	if r.Passed() {
		t.Error("Passed() = true with an orphan citation")
	}
	orphan := r.BySeverity(SeverityError)[0]
	if orphan.Position == nil || orphan.Location != "Introduction" {
		t.Errorf("orphan = %+v", orphan)
	}
}

func TestValidate_NoReferences(t *testing.T) {
	r := validate(paper("As shown (Smith, 2020)."))
	if r.Count(CodeNoReferences) != 1 || r.Count(CodeCiteOrphan) != 1 {
		t.Errorf("issues = %+v", r.Issues)
	}
	if r.Issues[0].Code != CodeNoReferences {
		t.Errorf("first issue = %s, want NO_REFERENCES", r.Issues[0].Code)
	}

	// No citations and no references: nothing to report.
	r = validate(paper("Plain text."))
	if r.Count(CodeNoReferences) != 0 {
		t.Errorf("NO_REFERENCES without citations: %+v", r.Issues)
	}
}

func TestValidate_Uncited(t *testing.T) {
	pc := reference.Reference{
		Type:    reference.TypePersonalCommunication,
		Authors: []reference.Author{{Last: "Doe", First: "J."}},
		Year:    2021,
	}
	unused := smith2020()
	unused.Authors[0].Last = "Never"
	r := validate(paper("Nothing cited here except (Smith, 2020).", smith2020(), unused, pc))
	if got := r.Count(CodeRefUncited); got != 1 {
		t.Fatalf("REF_UNCITED count = %d, want 1: %+v", got, r.Issues)
	}
	issue := r.BySeverity(SeverityWarning)[0]
	if issue.Ref == nil || *issue.Ref != 1 {
		t.Errorf("uncited ref = %v, want 1", issue.Ref)
	}
	if !r.Passed() {
		t.Error("warnings must not fail the report")
	}
}

func TestValidate_YearMismatch(t *testing.T) {
	r := validate(paper("Smith (2021) said.", smith2020()))
	if r.Count(CodeCiteYearMismatch) != 1 {
		t.Errorf("issues = %+v", r.Issues)
	}
	if r.Count(CodeRefUncited) != 0 || r.Count(CodeCiteOrphan) != 0 {
		t.Errorf("mismatched citation should not also be orphan or leave the reference uncited: %+v", r.Issues)
	}
	if !r.Passed() {
		t.Error("year mismatch is a warning")
	}
}

func TestValidate_TitlePage(t *testing.T) {
	doc := paper("Text.")
	doc.TitlePage.Confidence = 0.3
	r := validate(doc)
	if r.Count(CodeNoTitlePage) != 1 || !strings.Contains(r.Issues[0].Message, "0.30") {
		t.Errorf("issues = %+v", r.Issues)
	}

	doc.TitlePage = nil
	if r := validate(doc); r.Count(CodeNoTitlePage) != 1 {
		t.Errorf("missing title page: %+v", r.Issues)
	}
}

func TestValidate_AbstractTooLong(t *testing.T) {
	long := strings.TrimSpace(strings.Repeat("word ", 251))
	doc := paper("Text.")
	doc.Abstract = &long
	if r := validate(doc); r.Count(CodeAbstractTooLong) != 1 {
		t.Errorf("251 words: %+v", r.Issues)
	}

	ok := strings.TrimSpace(strings.Repeat("word ", 250))
	doc.Abstract = &ok
	if r := validate(doc); r.Count(CodeAbstractTooLong) != 0 {
		t.Errorf("250 words: %+v", r.Issues)
	}

	cfg := DefaultConfig()
	cfg.AbstractMaxChars = 100
	if r := New(cfg).Validate(doc); r.Count(CodeAbstractTooLong) != 1 {
		t.Errorf("character ceiling: %+v", r.Issues)
	}
}

func TestValidate_EmptyParagraphs(t *testing.T) {
	doc := paper("")
	doc.Sections = append(doc.Sections,
		document.Section{Heading: strp("Method"), Level: 1, Content: "One.\n\n\n\nTwo."},
		document.Section{Heading: strp("Results"), Level: 1, Subsections: []document.Section{
			{Heading: strp("Primary"), Level: 2, Content: "Data."},
		}},
	)
	r := validate(doc)
	if got := r.Count(CodeEmptyParagraphs); got != 2 {
		t.Fatalf("EMPTY_PARAGRAPHS count = %d, want 2: %+v", got, r.Issues)
	}
	infos := r.BySeverity(SeverityInfo)
	if infos[0].Location != "Introduction" || infos[1].Location != "Method" {
		t.Errorf("locations = %q, %q", infos[0].Location, infos[1].Location)
	}
}

func TestValidate_EmptyDocument(t *testing.T) {
	r := validate(&document.SemanticDocument{})
	if !r.Passed() {
		t.Errorf("empty document failed: %+v", r.Issues)
	}
	for _, i := range r.Issues {
		if i.Code != CodeNoTitlePage {
			t.Errorf("unexpected issue %+v", i)
		}
	}
}

func TestReport_JSON(t *testing.T) {
	fixed := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	r := New(DefaultConfig(), WithClock(func() time.Time { return fixed })).Validate(paper("(Smith, 2020)"))
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if got["passed"] != false {
		t.Errorf("passed = %v, want false", got["passed"])
	}
	if got["created_at"] != "2024-03-01T12:00:00Z" {
		t.Errorf("created_at = %v", got["created_at"])
	}
	if id, _ := got["id"].(string); len(id) != 36 {
		t.Errorf("id = %q, want a UUID", id)
	}
}

func TestValidate_FormatMismatch(t *testing.T) {
	doc := paper("As shown (Smith, 2020).", smith2020())
	doc.Config = document.DetectedConfig{
		Font:        "Arial",
		FontSize:    12,
		LineSpacing: 1.5,
		PageSize:    "a4",
		Margins:     &document.Margins{Top: 1, Right: 1, Bottom: 1, Left: 1.5},
	}
	r := validate(doc)
	if got := r.Count(CodeFormatMismatch); got != 4 {
		t.Errorf("FORMAT_MISMATCH count = %d, want 4: %+v", got, r.Issues)
	}
	if !r.Passed() {
		t.Error("Passed() = false, format issues are warnings")
	}
	for _, is := range r.Issues {
		if is.Code == CodeFormatMismatch && strings.Contains(is.Message, "margins") && !strings.Contains(is.Message, "left 1.50in") {
			t.Errorf("margin message = %q, want left side named", is.Message)
		}
	}

	doc.Config = document.DetectedConfig{Font: "TimesNewRomanPS-BoldMT", FontSize: 12, LineSpacing: 2, PageSize: "letter"}
	r = validate(doc)
	if got := r.Count(CodeFormatMismatch); got != 0 {
		t.Errorf("APA layout FORMAT_MISMATCH count = %d, want 0", got)
	}

	doc.Config = document.DetectedConfig{Font: "Comic Sans MS", LineSpacing: 1}
	cfg := DefaultConfig()
	cfg.CheckFormat = false
	r = New(cfg).Validate(doc)
	if got := r.Count(CodeFormatMismatch); got != 0 {
		t.Errorf("CheckFormat=false FORMAT_MISMATCH count = %d, want 0", got)
	}
}

func TestAPAFont(t *testing.T) {
	tests := []struct {
		in     string
		name   string
		size   float64
		wantOK bool
	}{
		{"Times New Roman", "Times New Roman", 12, true},
		{"TimesNewRomanPS-BoldMT", "Times New Roman", 12, true},
		{"Calibri", "Calibri", 11, true},
		{"ABCDEF+Calibri-Light", "Calibri", 11, true},
		{"Lucida Sans Unicode", "Lucida Sans Unicode", 10, true},
		{"Comic Sans MS", "", 0, false},
	}
	for _, tt := range tests {
		name, size, ok := apaFont(tt.in)
		if name != tt.name || size != tt.size || ok != tt.wantOK {
			t.Errorf("apaFont(%q) = %q, %v, %v, want %q, %v, %v", tt.in, name, size, ok, tt.name, tt.size, tt.wantOK)
		}
	}
}
