package blocks

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
)

const docxBodyPath = "word/document.xml"

var headingStyleRe = regexp.MustCompile(`(?i)^(?:heading|ttulo|titulo|título)\s*(\d)$`)

// DOCXSource reads paragraphs from a Word document.
type DOCXSource struct {
	path string
	data []byte
	size PageSize
}

// NewDOCX returns a source reading the .docx file at path.
func NewDOCX(path string) *DOCXSource {
	return &DOCXSource{path: path}
}

// NewDOCXBytes returns a source over an in-memory .docx archive.
func NewDOCXBytes(data []byte) *DOCXSource {
	return &DOCXSource{data: data}
}

// PageSize implements PageSizer. It is only known after Blocks has run.
func (s *DOCXSource) PageSize() PageSize {
	return s.size
}

// Blocks implements Source.
func (s *DOCXSource) Blocks(ctx context.Context) ([]ContentBlock, error) {
	var zr *zip.Reader
	if s.path != "" {
		rc, err := zip.OpenReader(s.path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", s.path, err)
		}
		defer rc.Close()
		zr = &rc.Reader
	} else {
		r, err := zip.NewReader(bytes.NewReader(s.data), int64(len(s.data)))
		if err != nil {
			return nil, fmt.Errorf("opening docx archive: %w", err)
		}
		zr = r
	}

	body, err := readZipEntry(zr, docxBodyPath)
	if err != nil {
		return nil, err
	}
	root, err := xmlquery.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", docxBodyPath, err)
	}

	if sz := xmlquery.FindOne(root, "//*[local-name()='sectPr']/*[local-name()='pgSz']"); sz != nil {
		// Word measures pages in twentieths of a point.
		w, _ := strconv.ParseFloat(attr(sz, "w"), 64)
		h, _ := strconv.ParseFloat(attr(sz, "h"), 64)
		s.size = PageSize{Width: w / 20, Height: h / 20}
	}
	if mar := xmlquery.FindOne(root, "//*[local-name()='sectPr']/*[local-name()='pgMar']"); mar != nil {
		twips := func(name string) float64 {
			v, _ := strconv.ParseFloat(attr(mar, name), 64)
			return v / 20
		}
		s.size.MarginTop = twips("top")
		s.size.MarginRight = twips("right")
		s.size.MarginBottom = twips("bottom")
		s.size.MarginLeft = twips("left")
	}

	paras, err := xmlquery.QueryAll(root, "//*[local-name()='body']//*[local-name()='p']")
	if err != nil {
		return nil, fmt.Errorf("querying paragraphs: %w", err)
	}

	var out []ContentBlock
	for _, p := range paras {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, ok := docxParagraph(p)
		if ok {
			out = append(out, b)
		}
	}
	return Renumber(out), nil
}

func readZipEntry(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%w: archive has no %s", ErrUnsupportedFormat, name)
}

// docxParagraph converts a w:p element. Empty paragraphs are dropped.
func docxParagraph(p *xmlquery.Node) (ContentBlock, bool) {
	var st StyleHints
	var text strings.Builder
	boldRunes, italicRunes, total := 0, 0, 0

	if ppr := child(p, "pPr"); ppr != nil {
		if ps := child(ppr, "pStyle"); ps != nil {
			style := attr(ps, "val")
			if m := headingStyleRe.FindStringSubmatch(style); m != nil {
				lvl, _ := strconv.Atoi(m[1])
				st.HeadingLevel = min(max(lvl, 1), MaxHeadingLevel)
			} else if strings.EqualFold(style, "Title") {
				st.Bold = true
			} else if strings.Contains(strings.ToLower(style), "list") {
				st.ListItem = true
			}
		}
		if jc := child(ppr, "jc"); jc != nil && attr(jc, "val") == "center" {
			st.Centered = true
		}
		if child(ppr, "numPr") != nil {
			st.ListItem = true
		}
		if ind := child(ppr, "ind"); ind != nil {
			if v := attr(ind, "firstLine"); v != "" && v != "0" {
				st.Indented = true
			}
		}
		if sp := child(ppr, "spacing"); sp != nil {
			if line, err := strconv.ParseFloat(attr(sp, "line"), 64); err == nil && attr(sp, "lineRule") != "exact" {
				st.LineSpacing = line / 240
			}
		}
		if rpr := child(ppr, "rPr"); rpr != nil {
			applyRunFont(&st, rpr)
		}
	}

	for r := p.FirstChild; r != nil; r = r.NextSibling {
		runs := []*xmlquery.Node{r}
		if r.Data == "hyperlink" {
			runs = children(r, "r")
		} else if r.Data != "r" {
			continue
		}
		for _, run := range runs {
			bold, italic := false, false
			if rpr := child(run, "rPr"); rpr != nil {
				bold = flagOn(child(rpr, "b"))
				italic = flagOn(child(rpr, "i"))
				applyRunFont(&st, rpr)
			}
			var seg strings.Builder
			for c := run.FirstChild; c != nil; c = c.NextSibling {
				switch c.Data {
				case "t":
					seg.WriteString(c.InnerText())
				case "tab":
					seg.WriteString("\t")
				case "br":
					seg.WriteString(" ")
				}
			}
			n := len([]rune(strings.TrimSpace(seg.String())))
			total += n
			if bold {
				boldRunes += n
			}
			if italic {
				italicRunes += n
			}
			text.WriteString(seg.String())
		}
	}

	s := strings.TrimSpace(text.String())
	if s == "" {
		return ContentBlock{}, false
	}
	if total > 0 {
		st.Bold = st.Bold || boldRunes*2 > total
		st.Italic = italicRunes*2 > total
	}
	return ContentBlock{Text: s, Style: st}, true
}

func applyRunFont(st *StyleHints, rpr *xmlquery.Node) {
	if f := child(rpr, "rFonts"); f != nil && st.FontName == "" {
		st.FontName = attr(f, "ascii")
	}
	if sz := child(rpr, "sz"); sz != nil && st.FontSize == 0 {
		// Half-points.
		if v, err := strconv.ParseFloat(attr(sz, "val"), 64); err == nil {
			st.FontSize = v / 2
		}
	}
}

// flagOn interprets a toggle property such as <w:b/> or <w:b w:val="0"/>.
func flagOn(n *xmlquery.Node) bool {
	if n == nil {
		return false
	}
	switch attr(n, "val") {
	case "0", "false", "off":
		return false
	}
	return true
}

func child(n *xmlquery.Node, local string) *xmlquery.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == local {
			return c
		}
	}
	return nil
}

func children(n *xmlquery.Node, local string) []*xmlquery.Node {
	var out []*xmlquery.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode && c.Data == local {
			out = append(out, c)
		}
	}
	return out
}

func attr(n *xmlquery.Node, local string) string {
	for _, a := range n.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
