package docx2md

import (
	"strings"

	"github.com/nicholasgasior/docx2md/internal/ooxml"
	"github.com/nicholasgasior/docx2md/internal/wordml"
)

// relationshipMap resolves relationship ids of the main part. It is built
// once per conversion and only read afterwards.
type relationshipMap map[string]ooxml.Part

// session carries the state of a single conversion.
type session struct {
	rels      relationshipMap
	styles    *wordml.Styles
	assets    *assetPipeline
	out       *emitter
	log       Logger
	altChunks bool
	workbooks bool
}

// walk emits every body block in document order.
func (s *session) walk(doc *wordml.Document) error {
	for _, block := range doc.Blocks {
		var err error
		switch b := block.(type) {
		case *wordml.Paragraph:
			err = s.paragraph(b)
		case *wordml.Table:
			err = s.table(b)
		case *wordml.AltChunk:
			if s.altChunks {
				s.altChunk(b)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// paragraph emits a heading line, or the paragraph's text and images split
// at image boundaries. Body paragraphs always end with a blank line.
func (s *session) paragraph(p *wordml.Paragraph) error {
	level := HeadingLevel(s.styles.ParagraphStyleName(p.StyleID))
	if level > 0 {
		if text := strings.TrimSpace(p.Text()); text != "" {
			s.out.add(strings.Repeat("#", level)+" "+text, "")
		}
		return nil
	}

	items, err := s.extractRuns(p, s.workbooks)
	if err != nil {
		return err
	}

	var buf strings.Builder
	flush := func() {
		if strings.TrimSpace(buf.String()) != "" {
			s.out.add(buf.String())
		}
		buf.Reset()
	}
	for _, it := range items {
		switch it.kind {
		case textItem:
			buf.WriteString(it.text)
		case imageItem:
			flush()
			s.out.add(it.image.Markdown())
		case sheetItem:
			flush()
			s.out.add(it.lines...)
		}
	}
	flush()
	s.out.add("")
	return nil
}
