package docx2md

import (
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type headingEdit struct {
	start, stop int
	text        string
}

// ApplyHeadingNumbers rewrites headings with their numbered forms. Headings
// are visited in order; each is matched against the first unused entry of
// numbered, at or after the previous match, that ends with the heading's
// text. Unmatched headings stay as they are. It returns the new text and
// the number of headings rewritten.
func ApplyHeadingNumbers(markdown string, numbered []string) (string, int) {
	if len(numbered) == 0 {
		return markdown, 0
	}

	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	var edits []headingEdit
	next := 0
	ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := node.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		lines := h.Lines()
		if lines.Len() == 0 {
			return ast.WalkSkipChildren, nil
		}
		start, stop := lines.At(0).Start, lines.At(lines.Len()-1).Stop
		current := strings.TrimSpace(string(source[start:stop]))
		if current == "" {
			return ast.WalkSkipChildren, nil
		}

		for k := next; k < len(numbered); k++ {
			candidate := strings.TrimSpace(numbered[k])
			if !strings.HasSuffix(candidate, current) {
				continue
			}
			next = k + 1
			if candidate != current {
				edits = append(edits, headingEdit{start: start, stop: stop, text: candidate})
			}
			break
		}
		return ast.WalkSkipChildren, nil
	})

	if len(edits) == 0 {
		return markdown, 0
	}
	sort.Slice(edits, func(i, j int) bool { return edits[i].start < edits[j].start })

	var b strings.Builder
	b.Grow(len(markdown) + 16*len(edits))
	pos := 0
	for _, e := range edits {
		b.WriteString(markdown[pos:e.start])
		b.WriteString(e.text)
		pos = e.stop
	}
	b.WriteString(markdown[pos:])
	return b.String(), len(edits)
}
