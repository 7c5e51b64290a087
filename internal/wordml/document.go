// Package wordml parses the WordprocessingML main part into an ordered tree
// of blocks. The tree is built once and not modified afterwards.
package wordml

import "strings"

// Block is a top-level structural unit of the document body. The set of
// implementations is closed: *Paragraph, *Table and *AltChunk.
type Block interface {
	block()
}

// Document is the ordered body of a WordprocessingML document.
type Document struct {
	Blocks []Block
}

// Paragraph is a <w:p> element.
type Paragraph struct {
	StyleID string
	Runs    []Run
}

// Text returns the concatenated text of all runs.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Scheme identifies how a picture is embedded in a run.
type Scheme int

const (
	// DrawingML is the <w:drawing>/<a:blip r:embed> scheme.
	DrawingML Scheme = iota
	// VML is the legacy <w:pict>/<v:imagedata r:id> scheme.
	VML
)

func (s Scheme) String() string {
	switch s {
	case DrawingML:
		return "drawingml"
	case VML:
		return "vml"
	default:
		return "unknown"
	}
}

// ImageRef points at an image part through a relationship id.
type ImageRef struct {
	RelID  string
	Scheme Scheme
}

// ObjectRef points at an embedded OLE object part.
type ObjectRef struct {
	RelID  string
	ProgID string
}

// Run is a <w:r> element. Images keep scan order: every DrawingML reference
// of the run comes before every VML reference.
type Run struct {
	Text    string
	Images  []ImageRef
	Objects []ObjectRef
}

// Table is a <w:tbl> element. Spans and merges are not modeled.
type Table struct {
	Rows []Row
}

// Row is a <w:tr> element.
type Row struct {
	Cells []Cell
}

// Cell is a <w:tc> element holding its direct paragraphs.
type Cell struct {
	Paragraphs []*Paragraph
}

// AltChunk is a <w:altChunk> element importing an external content part.
type AltChunk struct {
	RelID string
}

func (*Paragraph) block() {}
func (*Table) block()     {}
func (*AltChunk) block()  {}
