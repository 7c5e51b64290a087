package docx2md

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

const (
	relImage    = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
	relStyles   = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	relAFChunk  = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/aFChunk"
	relOLE      = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/package"
	relHyperURL = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/hyperlink"
)

const testStyles = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/></w:style>
<w:style w:type="paragraph" w:styleId="Heading1"><w:name w:val="heading 1"/></w:style>
<w:style w:type="paragraph" w:styleId="Heading2"><w:name w:val="heading 2"/></w:style>
<w:style w:type="paragraph" w:styleId="a3"><w:name w:val="标题 3"/></w:style>
<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/></w:style>
</w:styles>`

// testRel is one relationship of word/document.xml.
type testRel struct {
	id, typ, target string
	external        bool
}

// testDoc describes a .docx built in memory.
type testDoc struct {
	body      string
	noStyles  bool
	rels      []testRel
	parts     map[string][]byte // zip path -> content
	overrides map[string]string // part name -> content type
}

func buildDocx(t *testing.T, d testDoc) []byte {
	t.Helper()

	var ct strings.Builder
	ct.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Default Extension="png" ContentType="image/png"/>
<Default Extension="jpeg" ContentType="image/jpeg"/>
<Default Extension="gif" ContentType="image/gif"/>
<Default Extension="emf" ContentType="image/x-emf"/>
<Default Extension="wmf" ContentType="image/x-wmf"/>
<Default Extension="htm" ContentType="text/html"/>
<Default Extension="txt" ContentType="text/plain"/>
<Default Extension="xlsx" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
`)
	names := make([]string, 0, len(d.overrides))
	for name := range d.overrides {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&ct, `<Override PartName="/%s" ContentType="%s"/>`+"\n", name, d.overrides[name])
	}
	ct.WriteString(`</Types>`)

	var rels strings.Builder
	rels.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
`)
	if !d.noStyles {
		fmt.Fprintf(&rels, `<Relationship Id="rIdStyles" Type="%s" Target="styles.xml"/>`+"\n", relStyles)
	}
	for _, r := range d.rels {
		mode := ""
		if r.external {
			mode = ` TargetMode="External"`
		}
		fmt.Fprintf(&rels, `<Relationship Id="%s" Type="%s" Target="%s"%s/>`+"\n", r.id, r.typ, r.target, mode)
	}
	rels.WriteString(`</Relationships>`)

	files := map[string][]byte{
		"[Content_Types].xml": []byte(ct.String()),
		"_rels/.rels": []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`),
		"word/_rels/document.xml.rels": []byte(rels.String()),
		"word/document.xml":            []byte(wrapBody(d.body)),
	}
	if !d.noStyles {
		files["word/styles.xml"] = []byte(testStyles)
	}
	for name, data := range d.parts {
		files[name] = data
	}

	order := make([]string, 0, len(files))
	for name := range files {
		order = append(order, name)
	}
	sort.Strings(order)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write(files[name]); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func wrapBody(body string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"
 xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"
 xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"
 xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture"
 xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"
 xmlns:v="urn:schemas-microsoft-com:vml"
 xmlns:o="urn:schemas-microsoft-com:office:office"
 xmlns:mc="http://schemas.openxmlformats.org/markup-compatibility/2006"><w:body>` +
		body + `<w:sectPr/></w:body></w:document>`
}

// writeDocx stores the document as <dir>/<name> and returns its path.
func writeDocx(t *testing.T, dir, name string, d testDoc) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, buildDocx(t, d), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func para(style string, runs ...string) string {
	var b strings.Builder
	b.WriteString("<w:p>")
	if style != "" {
		fmt.Fprintf(&b, `<w:pPr><w:pStyle w:val="%s"/></w:pPr>`, style)
	}
	for _, r := range runs {
		b.WriteString(r)
	}
	b.WriteString("</w:p>")
	return b.String()
}

func textRun(text string) string {
	return `<w:r><w:t xml:space="preserve">` + text + `</w:t></w:r>`
}

func blipRun(relID string) string {
	return `<w:r><w:drawing><wp:inline><a:graphic><a:graphicData><pic:pic><pic:blipFill><a:blip r:embed="` +
		relID + `"/></pic:blipFill></pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`
}

func vmlRun(relID string) string {
	return `<w:r><w:pict><v:shape><v:imagedata r:id="` + relID + `" o:title=""/></v:shape></w:pict></w:r>`
}

func tableXML(rows ...[]string) string {
	var b strings.Builder
	b.WriteString("<w:tbl><w:tblPr/>")
	for _, row := range rows {
		b.WriteString("<w:tr>")
		for _, cell := range row {
			b.WriteString("<w:tc>" + cell + "</w:tc>")
		}
		b.WriteString("</w:tr>")
	}
	b.WriteString("</w:tbl>")
	return b.String()
}

func pngBytes(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// emfStub has a valid EMF header and no records worth rendering.
func emfStub() []byte {
	h := make([]byte, 108)
	h[0] = 1
	h[4] = 88
	copy(h[40:], []byte{0x20, 0x45, 0x4D, 0x46})
	h[88] = 14
	h[92] = 20
	return h
}

type stubRasterizer struct {
	png     []byte
	err     error
	formats []string
}

func (s *stubRasterizer) Rasterize(blob []byte, format string) ([]byte, error) {
	s.formats = append(s.formats, format)
	return s.png, s.err
}

type stubCaptioner struct {
	captions map[string]string
	err      error
	calls    []string
}

func (s *stubCaptioner) Describe(imagePath string) (string, error) {
	s.calls = append(s.calls, filepath.Base(imagePath))
	if s.err != nil {
		return "", s.err
	}
	if c, ok := s.captions[filepath.Base(imagePath)]; ok {
		return c, nil
	}
	return "an image", nil
}
