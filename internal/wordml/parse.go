package wordml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Parse reads a main document part and returns its body blocks in document
// order.
func Parse(data []byte) (*Document, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("document body not found")
		}
		if err != nil {
			return nil, fmt.Errorf("decode document: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "body" {
			continue
		}
		blocks, err := parseBlocks(dec)
		if err != nil {
			return nil, fmt.Errorf("decode document body: %w", err)
		}
		return &Document{Blocks: blocks}, nil
	}
}

// parseBlocks reads block-level content until the end of the enclosing
// element (w:body or w:sdtContent).
func parseBlocks(dec *xml.Decoder) ([]Block, error) {
	var blocks []Block
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				p, err := parseParagraph(dec)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, p)
			case "tbl":
				tbl, err := parseTable(dec)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, tbl)
			case "altChunk":
				blocks = append(blocks, &AltChunk{RelID: relAttr(t, "id")})
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			case "sdt":
				inner, err := parseContainer(dec, parseBlocks)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, inner...)
			case "customXml":
				inner, err := parseBlocks(dec)
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, inner...)
			default:
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			return blocks, nil
		}
	}
}

// parseContainer unwraps a w:sdt content control, handing its w:sdtContent
// to inner. Control properties are skipped.
func parseContainer[T any](dec *xml.Decoder, inner func(*xml.Decoder) ([]T, error)) ([]T, error) {
	var out []T
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "sdtContent" {
				items, err := inner(dec)
				if err != nil {
					return nil, err
				}
				out = append(out, items...)
				continue
			}
			if err := dec.Skip(); err != nil {
				return nil, err
			}
		case xml.EndElement:
			return out, nil
		}
	}
}

func parseParagraph(dec *xml.Decoder) (*Paragraph, error) {
	p := &Paragraph{}
	if err := parseInline(dec, p); err != nil {
		return nil, err
	}
	return p, nil
}

// parseInline reads paragraph content, descending into inline wrappers so
// that runs inside hyperlinks, fields and content controls keep their order.
func parseInline(dec *xml.Decoder, p *Paragraph) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "pPr":
				style, err := parseParagraphProps(dec)
				if err != nil {
					return err
				}
				p.StyleID = style
			case "r":
				r, err := parseRun(dec)
				if err != nil {
					return err
				}
				p.Runs = append(p.Runs, r)
			case "hyperlink", "smartTag", "fldSimple", "customXml", "sdtContent":
				if err := parseInline(dec, p); err != nil {
					return err
				}
			case "sdt":
				if err := parseInlineSdt(dec, p); err != nil {
					return err
				}
			default:
				// Revision marks (w:ins, w:del, w:moveFrom, w:moveTo) and
				// everything else without runs of its own.
				if err := dec.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			return nil
		}
	}
}

func parseInlineSdt(dec *xml.Decoder, p *Paragraph) error {
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "sdtContent" {
				if err := parseInline(dec, p); err != nil {
					return err
				}
				continue
			}
			if err := dec.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func parseParagraphProps(dec *xml.Decoder) (string, error) {
	var style string
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			// w:rPr inside w:pPr may carry w:rStyle, never w:pStyle.
			if t.Name.Local == "pStyle" && depth == 2 {
				style = attr(t, "val")
			}
		case xml.EndElement:
			depth--
		}
	}
	return style, nil
}

// runScan collects picture references of one run per embedding scheme.
type runScan struct {
	blips   []ImageRef
	vml     []ImageRef
	objects []ObjectRef
}

func parseRun(dec *xml.Decoder) (Run, error) {
	var (
		r    Run
		text strings.Builder
		scan runScan
	)
	for {
		tok, err := dec.Token()
		if err != nil {
			return Run{}, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				s, err := readText(dec)
				if err != nil {
					return Run{}, err
				}
				text.WriteString(s)
				continue
			case "tab":
				text.WriteString("\t")
			case "br", "cr":
				text.WriteString("\n")
			case "noBreakHyphen":
				text.WriteString("-")
			case "drawing", "pict", "object":
				if err := scan.graphic(dec); err != nil {
					return Run{}, err
				}
				continue
			case "AlternateContent":
				if err := scan.alternate(dec); err != nil {
					return Run{}, err
				}
				continue
			}
			if err := dec.Skip(); err != nil {
				return Run{}, err
			}
		case xml.EndElement:
			r.Text = text.String()
			r.Images = append(scan.blips, scan.vml...)
			r.Objects = scan.objects
			return r, nil
		}
	}
}

// graphic scans a picture container subtree for image and object references.
// Text boxes are not descended.
func (s *runScan) graphic(dec *xml.Decoder) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "AlternateContent":
				if err := s.alternate(dec); err != nil {
					return err
				}
				continue
			case "txbxContent":
				if err := dec.Skip(); err != nil {
					return err
				}
				continue
			case "blip":
				if id := attr(t, "embed"); id != "" {
					s.blips = append(s.blips, ImageRef{RelID: id, Scheme: DrawingML})
				}
			case "imagedata":
				if id := relAttr(t, "id"); id != "" {
					s.vml = append(s.vml, ImageRef{RelID: id, Scheme: VML})
				}
			case "OLEObject":
				if id := relAttr(t, "id"); id != "" {
					s.objects = append(s.objects, ObjectRef{RelID: id, ProgID: attr(t, "ProgID")})
				}
			}
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

// alternate reads mc:AlternateContent taking only the first mc:Choice, so a
// picture and its legacy fallback are not both reported.
func (s *runScan) alternate(dec *xml.Decoder) error {
	taken := false
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "Choice" && !taken {
				taken = true
				if err := s.graphic(dec); err != nil {
					return err
				}
				continue
			}
			if t.Name.Local == "Fallback" && !taken {
				taken = true
				if err := s.graphic(dec); err != nil {
					return err
				}
				continue
			}
			if err := dec.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func parseTable(dec *xml.Decoder) (*Table, error) {
	rows, err := parseRows(dec)
	if err != nil {
		return nil, err
	}
	return &Table{Rows: rows}, nil
}

func parseRows(dec *xml.Decoder) ([]Row, error) {
	var rows []Row
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tr":
				cells, err := parseCells(dec)
				if err != nil {
					return nil, err
				}
				rows = append(rows, Row{Cells: cells})
			case "sdt":
				inner, err := parseContainer(dec, parseRows)
				if err != nil {
					return nil, err
				}
				rows = append(rows, inner...)
			default:
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			return rows, nil
		}
	}
}

func parseCells(dec *xml.Decoder) ([]Cell, error) {
	var cells []Cell
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tc":
				paras, err := parseCellParagraphs(dec)
				if err != nil {
					return nil, err
				}
				cells = append(cells, Cell{Paragraphs: paras})
			case "sdt":
				inner, err := parseContainer(dec, parseCells)
				if err != nil {
					return nil, err
				}
				cells = append(cells, inner...)
			default:
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			return cells, nil
		}
	}
}

// parseCellParagraphs keeps the direct paragraphs of a cell; nested tables
// are not descended.
func parseCellParagraphs(dec *xml.Decoder) ([]*Paragraph, error) {
	var paras []*Paragraph
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "p" {
				p, err := parseParagraph(dec)
				if err != nil {
					return nil, err
				}
				paras = append(paras, p)
				continue
			}
			if err := dec.Skip(); err != nil {
				return nil, err
			}
		case xml.EndElement:
			return paras, nil
		}
	}
}

func readText(dec *xml.Decoder) (string, error) {
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.StartElement:
			if err := dec.Skip(); err != nil {
				return "", err
			}
		case xml.EndElement:
			return b.String(), nil
		}
	}
}

func attr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

// relAttr returns an attribute in the relationships namespace, which is how
// r:id is told apart from plain id attributes.
func relAttr(se xml.StartElement, local string) string {
	for _, a := range se.Attr {
		if a.Name.Local == local && strings.Contains(a.Name.Space, "relationships") {
			return a.Value
		}
	}
	return ""
}
