package docx2md

import (
	"strings"

	"github.com/nicholasgasior/docx2md/internal/wordml"
)

// table flattens every cell to one line of text and inline images and
// emits a pipe table. A table without rows emits nothing.
func (s *session) table(t *wordml.Table) error {
	rows := make([][]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		cells := make([]string, 0, len(row.Cells))
		for _, cell := range row.Cells {
			var b strings.Builder
			for _, p := range cell.Paragraphs {
				items, err := s.extractRuns(p, false)
				if err != nil {
					return err
				}
				for _, it := range items {
					switch it.kind {
					case textItem:
						b.WriteString(strings.ReplaceAll(it.text, "\n", " "))
					case imageItem:
						b.WriteString(it.image.Markdown())
					}
				}
			}
			cells = append(cells, strings.TrimSpace(b.String()))
		}
		rows = append(rows, cells)
	}

	if len(rows) == 0 {
		return nil
	}
	s.out.add(renderMarkdownTable(rows)...)
	s.out.add("")
	return nil
}

// renderMarkdownTable renders rows as pipe table lines. The first row is the
// header and sizes the separator; every other row keeps its own cell count.
func renderMarkdownTable(rows [][]string) []string {
	if len(rows) == 0 {
		return nil
	}

	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, tableRow(rows[0]))

	sep := make([]string, len(rows[0]))
	for i := range sep {
		sep[i] = "---"
	}
	lines = append(lines, tableRow(sep))

	for _, row := range rows[1:] {
		lines = append(lines, tableRow(row))
	}
	return lines
}

func tableRow(cells []string) string {
	var b strings.Builder
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |")
	return b.String()
}
