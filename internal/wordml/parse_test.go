package wordml

import (
	"reflect"
	"testing"
)

const docOpen = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
 xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"
 xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
 xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"
 xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
 xmlns:v="urn:schemas-microsoft-com:vml"
 xmlns:o="urn:schemas-microsoft-com:office:office"
 xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006"><w:body>`

const docClose = `<w:sectPr/></w:body></w:document>`

func parseBody(t *testing.T, body string) *Document {
	t.Helper()
	doc, err := Parse([]byte(docOpen + body + docClose))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	return doc
}

func TestParseBlockOrder(t *testing.T) {
	doc := parseBody(t, `
<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>Title</w:t></w:r></w:p>
<w:tbl><w:tblPr/><w:tr><w:tc><w:p><w:r><w:t>a</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
<w:sdt><w:sdtPr/><w:sdtContent><w:p><w:r><w:t>in control</w:t></w:r></w:p></w:sdtContent></w:sdt>
<w:altChunk r:id="rId9"/>
<w:p/>`)

	if len(doc.Blocks) != 5 {
		t.Fatalf("got %d blocks, want 5", len(doc.Blocks))
	}
	if p, ok := doc.Blocks[0].(*Paragraph); !ok || p.StyleID != "Heading1" || p.Text() != "Title" {
		t.Errorf("block 0 = %#v", doc.Blocks[0])
	}
	if _, ok := doc.Blocks[1].(*Table); !ok {
		t.Errorf("block 1 = %T, want *Table", doc.Blocks[1])
	}
	if p, ok := doc.Blocks[2].(*Paragraph); !ok || p.Text() != "in control" {
		t.Errorf("block 2 = %#v", doc.Blocks[2])
	}
	if c, ok := doc.Blocks[3].(*AltChunk); !ok || c.RelID != "rId9" {
		t.Errorf("block 3 = %#v", doc.Blocks[3])
	}
	if p, ok := doc.Blocks[4].(*Paragraph); !ok || len(p.Runs) != 0 {
		t.Errorf("block 4 = %#v", doc.Blocks[4])
	}
}

func TestParseRunText(t *testing.T) {
	doc := parseBody(t, `<w:p>
<w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">Hello </w:t></w:r>
<w:hyperlink r:id="rId3"><w:r><w:t>link</w:t></w:r></w:hyperlink>
<w:r><w:tab/><w:t>x</w:t><w:br/><w:t>y</w:t><w:noBreakHyphen/></w:r>
<w:ins w:id="1"><w:r><w:t>inserted</w:t></w:r></w:ins>
<w:del w:id="2"><w:r><w:delText>deleted</w:delText></w:r></w:del>
<w:r><w:fldChar w:fldCharType="begin"/><w:instrText>PAGE</w:instrText></w:r>
</w:p>`)

	p := doc.Blocks[0].(*Paragraph)
	var texts []string
	for _, r := range p.Runs {
		texts = append(texts, r.Text)
	}
	want := []string{"Hello ", "link", "\tx\ny-", ""}
	if !reflect.DeepEqual(texts, want) {
		t.Errorf("run texts = %q, want %q", texts, want)
	}
}

func TestParseRunImages(t *testing.T) {
	doc := parseBody(t, `<w:p>
<w:r>
  <w:pict><v:shape><v:imagedata r:id="rId20" o:title=""/></v:shape></w:pict>
  <w:drawing><wp:inline><a:graphic><a:graphicData><pic:pic><pic:blipFill><a:blip r:embed="rId10"/></pic:blipFill></pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing>
  <w:t>caption</w:t>
</w:r>
<w:r>
  <mc:AlternateContent>
    <mc:Choice Requires="wps"><w:drawing><a:blip r:embed="rId11"/></w:drawing></mc:Choice>
    <mc:Fallback><w:pict><v:imagedata r:id="rId11"/></w:pict></mc:Fallback>
  </mc:AlternateContent>
</w:r>
<w:r>
  <w:object><v:shape><v:imagedata r:id="rId12"/></v:shape><o:OLEObject Type="Embed" ProgID="Excel.Sheet.12" r:id="rId13"/></w:object>
</w:r>
<w:r>
  <w:drawing><wps:txbx xmlns:wps="http://schemas.microsoft.com/office/word/2010/wordprocessingShape"><w:txbxContent><w:p><w:r><w:drawing><a:blip r:embed="rId99"/></w:drawing></w:r></w:p></w:txbxContent></wps:txbx></w:drawing>
</w:r>
</w:p>`)

	p := doc.Blocks[0].(*Paragraph)
	if len(p.Runs) != 4 {
		t.Fatalf("got %d runs, want 4", len(p.Runs))
	}

	first := []ImageRef{{RelID: "rId10", Scheme: DrawingML}, {RelID: "rId20", Scheme: VML}}
	if !reflect.DeepEqual(p.Runs[0].Images, first) {
		t.Errorf("run 0 images = %v, want %v", p.Runs[0].Images, first)
	}
	if p.Runs[0].Text != "caption" {
		t.Errorf("run 0 text = %q", p.Runs[0].Text)
	}

	second := []ImageRef{{RelID: "rId11", Scheme: DrawingML}}
	if !reflect.DeepEqual(p.Runs[1].Images, second) {
		t.Errorf("run 1 images = %v, want %v", p.Runs[1].Images, second)
	}

	third := []ImageRef{{RelID: "rId12", Scheme: VML}}
	if !reflect.DeepEqual(p.Runs[2].Images, third) {
		t.Errorf("run 2 images = %v, want %v", p.Runs[2].Images, third)
	}
	objects := []ObjectRef{{RelID: "rId13", ProgID: "Excel.Sheet.12"}}
	if !reflect.DeepEqual(p.Runs[2].Objects, objects) {
		t.Errorf("run 2 objects = %v, want %v", p.Runs[2].Objects, objects)
	}

	if len(p.Runs[3].Images) != 0 {
		t.Errorf("text box images should be skipped, got %v", p.Runs[3].Images)
	}
}

func TestParseTable(t *testing.T) {
	doc := parseBody(t, `<w:tbl>
<w:tblPr/><w:tblGrid><w:gridCol/><w:gridCol/></w:tblGrid>
<w:tr><w:tc><w:tcPr/><w:p><w:r><w:t>h1</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>h2</w:t></w:r></w:p><w:p><w:r><w:t>more</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:tbl><w:tr><w:tc><w:p><w:r><w:t>nested</w:t></w:r></w:p></w:tc></w:tr></w:tbl><w:p/></w:tc></w:tr>
<w:tr/>
</w:tbl>`)

	tbl := doc.Blocks[0].(*Table)
	if len(tbl.Rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(tbl.Rows))
	}
	if len(tbl.Rows[0].Cells) != 2 || len(tbl.Rows[0].Cells[1].Paragraphs) != 2 {
		t.Errorf("row 0 = %#v", tbl.Rows[0])
	}
	if got := tbl.Rows[1].Cells[0].Paragraphs; len(got) != 1 || got[0].Text() != "" {
		t.Errorf("nested table should not contribute paragraphs, got %d", len(got))
	}
	if len(tbl.Rows[2].Cells) != 0 {
		t.Errorf("row 2 should be empty")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"no body", `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"/>`},
		{"truncated", docOpen + `<w:p><w:r><w:t>abc`},
		{"not xml", `hello`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); err == nil {
				t.Error("Parse() expected error")
			}
		})
	}
}

func TestStyles(t *testing.T) {
	styles, err := ParseStyles([]byte(`<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/></w:style>
<w:style w:type="paragraph" w:styleId="3"><w:name w:val="标题3"/></w:style>
<w:style w:type="paragraph" w:styleId="NoName"/>
</w:styles>`))
	if err != nil {
		t.Fatalf("ParseStyles() error: %v", err)
	}

	tests := []struct {
		id, want string
	}{
		{"", "Normal"},
		{"Heading2", "heading 2"},
		{"3", "标题3"},
		{"NoName", "NoName"},
		{"Unknown", "Unknown"},
	}
	for _, tt := range tests {
		if got := styles.ParagraphStyleName(tt.id); got != tt.want {
			t.Errorf("ParagraphStyleName(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}

	var none *Styles
	if got := none.ParagraphStyleName(""); got != "" {
		t.Errorf("nil styles ParagraphStyleName(\"\") = %q", got)
	}
}
