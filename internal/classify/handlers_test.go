package classify

import (
	"strings"
	"testing"

	"github.com/matsen/apalint/internal/blocks"
	"github.com/matsen/apalint/internal/document"
)

func TestTitlePage_StudentPaper(t *testing.T) {
	doc := classify(t,
		centered("Effects of Sleep on Memory", true),
		centered("Jane Doe", false),
		centered("Department of Psychology, University of Somewhere", false),
		centered("PSY 101: Introduction to Psychology", false),
		centered("Dr. John Roe", false),
		centered("March 3, 2024", false),
		blocks.ContentBlock{Text: "Abstract", Style: blocks.StyleHints{HeadingLevel: 1, Bold: true, Centered: true}},
		para(words(120)),
	)

	tp := doc.TitlePage
	if tp == nil {
		t.Fatal("no title page")
	}
	if tp.Title != "Effects of Sleep on Memory" {
		t.Errorf("Title = %q", tp.Title)
	}
	if len(tp.Authors) != 1 || tp.Authors[0] != "Jane Doe" {
		t.Errorf("Authors = %v", tp.Authors)
	}
	if !strings.Contains(tp.Affiliation, "University of Somewhere") {
		t.Errorf("Affiliation = %q", tp.Affiliation)
	}
	if !strings.HasPrefix(tp.Course, "PSY 101") {
		t.Errorf("Course = %q", tp.Course)
	}
	if tp.Instructor != "Dr. John Roe" {
		t.Errorf("Instructor = %q", tp.Instructor)
	}
	if tp.Date != "March 3, 2024" {
		t.Errorf("Date = %q", tp.Date)
	}
	if tp.Confidence != 1 {
		t.Errorf("Confidence = %v, want 1", tp.Confidence)
	}
	if doc.Abstract == nil || !doc.Config.HasAbstract || !doc.Config.HasTitlePage {
		t.Errorf("abstract = %v, config = %+v", doc.Abstract, doc.Config)
	}
}

func TestTitlePage_LabeledMergedLine(t *testing.T) {
	doc := classify(t,
		centered("Un estudio de caso", true),
		para("Autor: María López Fecha: 12 de mayo de 2023"),
		para("Universidad Nacional"),
		heading("Introducción", 1),
		para("El texto de la introducción con palabras en español para que la detección del idioma funcione."),
	)

	tp := doc.TitlePage
	if tp == nil {
		t.Fatal("no title page")
	}
	if len(tp.Authors) != 1 || tp.Authors[0] != "María López" {
		t.Errorf("Authors = %v", tp.Authors)
	}
	if tp.Date != "12 de mayo de 2023" {
		t.Errorf("Date = %q", tp.Date)
	}
	if tp.Affiliation != "Universidad Nacional" {
		t.Errorf("Affiliation = %q", tp.Affiliation)
	}
	if doc.Config.Language != "es" {
		t.Errorf("Language = %q, want es", doc.Config.Language)
	}
}

func TestTitlePage_NotDetected(t *testing.T) {
	tests := []struct {
		name string
		bs   []blocks.ContentBlock
	}{
		{"starts with body heading", []blocks.ContentBlock{heading("Introduction", 1), para(words(60))}},
		{"single unstyled line", []blocks.ContentBlock{para("Notes"), para(words(60))}},
		{"two lines without signals", []blocks.ContentBlock{para("hello there"), para("more text here."), para(words(60))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := classify(t, tt.bs...)
			if doc.TitlePage != nil {
				t.Errorf("unexpected title page %+v", doc.TitlePage)
			}
			if doc.Config.HasTitlePage {
				t.Error("HasTitlePage = true")
			}
		})
	}
}

func TestTitlePage_MarkdownTitleHeading(t *testing.T) {
	doc := classify(t,
		heading("A Markdown Paper", 1),
		para("Ana Torres"),
		para("Instituto Tecnológico"),
		heading("Method", 1),
		para("Text."),
	)
	if doc.TitlePage == nil || doc.TitlePage.Title != "A Markdown Paper" {
		t.Fatalf("title page = %+v", doc.TitlePage)
	}
	if len(doc.Sections) != 1 || doc.Sections[0].Title() != "Method" {
		t.Errorf("sections = %+v", doc.Sections)
	}
}

func TestAbstract_InlineLabelAndKeywords(t *testing.T) {
	b := document.NewBuilder(nil)
	rest := (&AbstractHandler{}).Claim([]blocks.ContentBlock{
		para("Abstract: We study things."),
		para("More abstract text."),
		para("Keywords: sleep, memory; learning."),
		heading("Introduction", 1),
	}, b)
	if len(rest) != 2 {
		t.Fatalf("remaining = %d blocks, want 2", len(rest))
	}
	rest = (&MetadataHandler{}).Claim(rest, b)
	if len(rest) != 1 {
		t.Fatalf("after metadata remaining = %d blocks, want 1", len(rest))
	}

	doc := b.Build()
	if doc.AbstractText() != "We study things.\n\nMore abstract text." {
		t.Errorf("abstract = %q", doc.AbstractText())
	}
	want := []string{"sleep", "memory", "learning"}
	if strings.Join(doc.Keywords, "|") != strings.Join(want, "|") {
		t.Errorf("keywords = %v, want %v", doc.Keywords, want)
	}
}

func TestAbstract_Unlabeled(t *testing.T) {
	paragraph := para(words(80))

	b := document.NewBuilder(nil)
	b.SetTitlePage(document.TitlePage{Title: "T", Confidence: 0.5})
	rest := (&AbstractHandler{MaxWords: 250}).Claim([]blocks.ContentBlock{paragraph, heading("Introduction", 1)}, b)
	if len(rest) != 1 || !b.HasAbstract() {
		t.Errorf("unlabeled abstract not claimed: rest=%d", len(rest))
	}

	// No title page: nothing claimed.
	b = document.NewBuilder(nil)
	rest = (&AbstractHandler{}).Claim([]blocks.ContentBlock{paragraph, heading("Introduction", 1)}, b)
	if len(rest) != 2 || b.HasAbstract() {
		t.Error("abstract claimed without a title page")
	}

	// Over the ceiling: nothing claimed.
	b = document.NewBuilder(nil)
	b.SetTitlePage(document.TitlePage{Title: "T", Confidence: 0.5})
	rest = (&AbstractHandler{MaxWords: 50}).Claim([]blocks.ContentBlock{paragraph, heading("Introduction", 1)}, b)
	if len(rest) != 2 {
		t.Error("over-long paragraph claimed as abstract")
	}

	// Followed by more prose: nothing claimed.
	b = document.NewBuilder(nil)
	b.SetTitlePage(document.TitlePage{Title: "T", Confidence: 0.5})
	rest = (&AbstractHandler{}).Claim([]blocks.ContentBlock{paragraph, para(words(40))}, b)
	if len(rest) != 2 {
		t.Error("paragraph followed by prose claimed as abstract")
	}
}

func TestDetectConfig(t *testing.T) {
	bs := []blocks.ContentBlock{
		{Text: "The results of the study are in the table.", Style: blocks.StyleHints{FontName: "Times New Roman", FontSize: 12, LineSpacing: 2}},
		{Text: "Short", Style: blocks.StyleHints{FontName: "Arial", FontSize: 14}},
	}
	cfg := DetectConfig(bs)
	if cfg.Language != "en" || cfg.Font != "Times New Roman" || cfg.FontSize != 12 || cfg.LineSpacing != 2 {
		t.Errorf("DetectConfig() = %+v", cfg)
	}
	if got := DetectLanguage(nil); got != "en" {
		t.Errorf("DetectLanguage(nil) = %q", got)
	}
}

func TestJoinEntries(t *testing.T) {
	bs := []blocks.ContentBlock{
		para("1. Adams, A. (2001). First. Press."),
		para("2. Baker, B. (2002). Second title continues"),
		para("on this line. Press."),
		para("Clark, C. (2003). Third. https://example.org/a/"),
		para("Davis, D. (2004). Fourth. https://example.org/very/long/"),
		para("path/file"),
		para("@article{k,"),
		para("author = {Evans, E.}, year = {2005}}"),
	}
	got := JoinEntries(bs)
	want := []string{
		"Adams, A. (2001). First. Press.",
		"Baker, B. (2002). Second title continues on this line. Press.",
		"Clark, C. (2003). Third. https://example.org/a/",
		"Davis, D. (2004). Fourth. https://example.org/very/long/path/file",
		"@article{k, author = {Evans, E.}, year = {2005}}",
	}
	if len(got) != len(want) {
		t.Fatalf("JoinEntries() = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func indentedPara(text string) blocks.ContentBlock {
	return blocks.ContentBlock{Text: text, Style: blocks.StyleHints{Indented: true}}
}

func TestJoinEntries_Indentation(t *testing.T) {
	tests := []struct {
		name string
		bs   []blocks.ContentBlock
		want []string
	}{
		{
			name: "first-line indented entries stay separate",
			bs: []blocks.ContentBlock{
				indentedPara("Jones, A. (2019). A title. Journal of Things, 1(2), 3-4."),
				indentedPara("Smith, J. (2020). Another title. Journal of Stuff, 5(6), 7-8."),
			},
			want: []string{
				"Jones, A. (2019). A title. Journal of Things, 1(2), 3-4.",
				"Smith, J. (2020). Another title. Journal of Stuff, 5(6), 7-8.",
			},
		},
		{
			name: "hanging indent continues a flush entry",
			bs: []blocks.ContentBlock{
				para("Jones, A. (2019). A title."),
				indentedPara("Journal of Things, 1(2), 3-4."),
				para("Smith, J. (2020). Another title. Press."),
			},
			want: []string{
				"Jones, A. (2019). A title. Journal of Things, 1(2), 3-4.",
				"Smith, J. (2020). Another title. Press.",
			},
		},
		{
			name: "indented wrapped line without sentence end",
			bs: []blocks.ContentBlock{
				indentedPara("Lee, C. (2018). A title that"),
				indentedPara("wraps. Press."),
			},
			want: []string{"Lee, C. (2018). A title that wraps. Press."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JoinEntries(tt.bs)
			if len(got) != len(tt.want) {
				t.Fatalf("JoinEntries() = %q, want %q", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestClassify_IndentedReferenceList(t *testing.T) {
	doc := classify(t,
		heading("Introduction", 1),
		para("As shown by Jones (2019) and Smith (2020)."),
		heading("References", 1),
		indentedPara("Jones, A. (2019). A title. Journal of Things, 1(2), 3-4."),
		indentedPara("Smith, J. (2020). Another title. Journal of Stuff, 5(6), 7-8."),
	)
	if len(doc.ReferencesRaw) != 2 {
		t.Fatalf("ReferencesRaw = %q, want 2 entries", doc.ReferencesRaw)
	}
	if len(doc.ReferencesParsed) != 2 {
		t.Errorf("ReferencesParsed = %d, want 2", len(doc.ReferencesParsed))
	}
}

func TestHeadingKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"References", "references"},
		{"**REFERENCIAS:**", "referencias"},
		{"7. Bibliografía", "bibliografia"},
		{"IV. Referencias Bibliográficas", "referencias bibliograficas"},
	}
	for _, tt := range tests {
		if got := headingKey(tt.input); got != tt.want {
			t.Errorf("headingKey(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestInferHeadingLevel(t *testing.T) {
	tests := []struct {
		blk  blocks.ContentBlock
		want int
	}{
		{para("Introduction"), 1},
		{para("Método"), 1},
		{para("Resultados:"), 1},
		{para("LITERATURE REVIEW"), 1},
		{para("NASA"), 1},
		{para("USA"), 0},
		{para("THE END."), 0},
		{para("Results were mixed across conditions."), 0},
		{heading("Method", 2), 0},
		{blocks.ContentBlock{Text: "Method", Style: blocks.StyleHints{ListItem: true}}, 0},
	}
	for _, tt := range tests {
		if got := inferHeadingLevel(tt.blk); got != tt.want {
			t.Errorf("inferHeadingLevel(%q) = %d, want %d", tt.blk.Text, got, tt.want)
		}
	}
}

func TestClassify_UnstyledSectionNames(t *testing.T) {
	doc := classify(t,
		heading("Introduction", 1),
		para("Opening paragraph."),
		para("Método"),
		para("Participants were recruited."),
		para("DISCUSSION OF FINDINGS"),
		para("Closing paragraph."),
	)
	var titles []string
	for _, s := range doc.Sections {
		titles = append(titles, s.Title())
	}
	want := []string{"Introduction", "Método", "DISCUSSION OF FINDINGS"}
	if strings.Join(titles, "|") != strings.Join(want, "|") {
		t.Fatalf("sections = %q, want %q", titles, want)
	}
	if doc.Sections[1].Content != "Participants were recruited." {
		t.Errorf("Método content = %q", doc.Sections[1].Content)
	}
}
