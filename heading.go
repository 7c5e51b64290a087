package docx2md

import (
	"strconv"
	"strings"
	"unicode"
)

// titleMarker prefixes localized heading style names ("标题 1", "标题2").
const titleMarker = "标题"

// HeadingLevel maps a paragraph style name to a heading level, 0 meaning
// body text. "Heading 2" is 2, "标题3" is 3, anything else is 0.
func HeadingLevel(styleName string) int {
	s := strings.ToLower(strings.TrimSpace(styleName))

	if strings.HasPrefix(s, "heading") {
		fields := strings.Fields(s)
		if len(fields) >= 2 {
			if n, ok := parseDigits(fields[1]); ok {
				return n
			}
		}
		return 0
	}

	if rest, ok := strings.CutPrefix(s, titleMarker); ok {
		rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
		end := 0
		for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
			end++
		}
		if n, ok := parseDigits(rest[:end]); ok {
			return n
		}
	}
	return 0
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
