package blocks

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestTextSource_LineMode(t *testing.T) {
	input := `<center>**A Study of Things**</center>
Jane Doe

# Introduction
Some body text here.
## Method
- first item
  continuation line
`
	got, err := NewText(input).Blocks(context.Background())
	if err != nil {
		t.Fatalf("Blocks() error = %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("got %d blocks, want 7: %+v", len(got), got)
	}

	title := got[0]
	if title.Text != "A Study of Things" || !title.Style.Bold || !title.Style.Centered {
		t.Errorf("title block = %+v", title)
	}
	if got[2].Style.HeadingLevel != 1 || got[2].Text != "Introduction" {
		t.Errorf("heading block = %+v", got[2])
	}
	if got[4].Style.HeadingLevel != 2 {
		t.Errorf("level 2 heading = %+v", got[4])
	}
	if !got[5].Style.ListItem || got[5].Text != "first item" {
		t.Errorf("list item = %+v", got[5])
	}
	if !got[6].Style.Indented {
		t.Errorf("indented line = %+v", got[6])
	}
	for i, b := range got {
		if b.Position != i {
			t.Errorf("block %d has position %d", i, b.Position)
		}
	}
}

func TestTextSource_ParagraphMode(t *testing.T) {
	input := "First paragraph\nwrapped here.\n\n# Heading\nSecond paragraph.\n"
	got, err := NewText(input).Paragraphs().Blocks(context.Background())
	if err != nil {
		t.Fatalf("Blocks() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d blocks, want 3: %+v", len(got), got)
	}
	if got[0].Text != "First paragraph wrapped here." {
		t.Errorf("joined paragraph = %q", got[0].Text)
	}
	if !got[1].IsHeading() {
		t.Errorf("expected heading, got %+v", got[1])
	}
}

func TestTextSource_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte("Hello\n"), 0644); err != nil {
		t.Fatal(err)
	}
	src, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	got, err := src.Blocks(context.Background())
	if err != nil {
		t.Fatalf("Blocks() error = %v", err)
	}
	if len(got) != 1 || got[0].Text != "Hello" {
		t.Errorf("got %+v", got)
	}

	if _, err := NewTextFile(filepath.Join(t.TempDir(), "missing.txt")).Blocks(context.Background()); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestOpen_Unsupported(t *testing.T) {
	if _, err := Open("paper.odt"); err == nil {
		t.Error("expected ErrUnsupportedFormat")
	}
}

func TestPageSizeName(t *testing.T) {
	tests := []struct {
		size PageSize
		want string
	}{
		{PageSize{Width: 612, Height: 792}, "letter"},
		{PageSize{Width: 595.3, Height: 841.9}, "a4"},
		{PageSize{Width: 500, Height: 500}, "custom"},
		{PageSize{}, ""},
	}
	for _, tt := range tests {
		if got := tt.size.Name(); got != tt.want {
			t.Errorf("PageSize%v.Name() = %q, want %q", tt.size, got, tt.want)
		}
	}
}
