package docx2md

import (
	"strings"

	"github.com/nicholasgasior/docx2md/internal/wordml"
)

type itemKind int

const (
	textItem itemKind = iota
	imageItem
	sheetItem
)

// item is one piece of paragraph content in document order.
type item struct {
	kind  itemKind
	text  string
	image ImageAsset
	lines []string // rendered workbook for sheetItem
}

// extractRuns scans the runs of p in order. Images of a run come before its
// text. Unresolved relationship ids are dropped. Embedded workbooks are
// only rendered when objects is set.
func (s *session) extractRuns(p *wordml.Paragraph, objects bool) ([]item, error) {
	var items []item
	for _, run := range p.Runs {
		for _, ref := range run.Images {
			part, ok := s.rels[ref.RelID]
			if !ok {
				s.log.Debug("unresolved image reference dropped", "rel", ref.RelID, "scheme", ref.Scheme.String())
				continue
			}
			asset, err := s.assets.add(part)
			if err != nil {
				return nil, err
			}
			items = append(items, item{kind: imageItem, image: asset})
		}

		if objects {
			for _, obj := range run.Objects {
				if lines := s.renderObject(obj); len(lines) > 0 {
					items = append(items, item{kind: sheetItem, lines: lines})
				}
			}
		}

		if strings.TrimSpace(run.Text) != "" {
			items = append(items, item{kind: textItem, text: run.Text})
		}
	}
	return items, nil
}
