package pdf

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/matsen/apalint/internal/blocks"
)

func TestGroupLines_FirstLineIndent(t *testing.T) {
	lines := []line{
		{text: "Introduction", x0: 260, x1: 352, y: 700, size: 12, bold: true},
		{text: "The first paragraph begins here and", x0: 108, x1: 540, y: 672, size: 12},
		{text: "continues on the next row.", x0: 72, x1: 300, y: 644, size: 12},
		{text: "A second paragraph starts indented", x0: 108, x1: 540, y: 616, size: 12},
		{text: "and ends here.", x0: 72, x1: 200, y: 588, size: 12},
	}
	got := groupLines(lines, 12, 612)
	if len(got) != 3 {
		t.Fatalf("got %d blocks, want 3: %+v", len(got), got)
	}
	if got[0].Style.HeadingLevel != 1 || !got[0].Style.Centered {
		t.Errorf("heading block = %+v", got[0])
	}
	if got[1].Text != "The first paragraph begins here and continues on the next row." {
		t.Errorf("paragraph text = %q", got[1].Text)
	}
	if got[2].Text != "A second paragraph starts indented and ends here." {
		t.Errorf("second paragraph = %q", got[2].Text)
	}
}

func TestGroupLines_HangingIndent(t *testing.T) {
	lines := []line{
		{text: "Smith, J. (2020). A long title that wraps", x0: 72, x1: 540, y: 700, size: 12},
		{text: "onto a second line. Journal, 1(2), 3-4.", x0: 108, x1: 400, y: 686, size: 12},
		{text: "Jones, B. (2019). Another entry.", x0: 72, x1: 400, y: 672, size: 12},
		{text: "Lee, C. (2018). Third entry.", x0: 72, x1: 400, y: 658, size: 12},
	}
	got := groupLines(lines, 12, 612)
	if len(got) != 2 {
		t.Fatalf("got %d blocks, want 2: %+v", len(got), got)
	}
	if got[0].Text != "Smith, J. (2020). A long title that wraps onto a second line. Journal, 1(2), 3-4." {
		t.Errorf("first entry = %q", got[0].Text)
	}
	if got[1].Text != "Jones, B. (2019). Another entry. Lee, C. (2018). Third entry." {
		t.Errorf("second block = %q", got[1].Text)
	}
}

func TestHeadingLevel(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		l        line
		centered bool
		want     int
	}{
		{"large", "Results", line{size: 18}, false, 1},
		{"medium", "Results", line{size: 14}, false, 2},
		{"centered bold", "Method", line{size: 12, bold: true}, true, 1},
		{"flush bold", "Participants", line{size: 12, bold: true}, false, 2},
		{"bold italic", "Measures", line{size: 12, bold: true, italic: true}, false, 3},
		{"plain", "Not a heading", line{size: 12}, false, 0},
		{"sentence", "Bold sentence.", line{size: 12, bold: true}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := headingLevel(tt.text, 1, tt.l, tt.centered, 12); got != tt.want {
				t.Errorf("headingLevel() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestJoinHyphenated(t *testing.T) {
	got := joinHyphenated([]string{"inter-", "national studies", "end"})
	if got != "international studies end" {
		t.Errorf("joinHyphenated() = %q", got)
	}
}

func TestOpenRegistersPDF(t *testing.T) {
	src, err := blocks.Open("paper.pdf")
	if err != nil {
		t.Fatalf("Open(.pdf) error = %v", err)
	}
	if _, ok := src.(*Source); !ok {
		t.Errorf("Open(.pdf) returned %T", src)
	}
	if _, err := NewSource(filepath.Join(t.TempDir(), "missing.pdf")).Blocks(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}
