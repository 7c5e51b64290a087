package wordml

import (
	"encoding/xml"
	"fmt"
)

type stylesXML struct {
	XMLName xml.Name   `xml:"styles"`
	Styles  []styleXML `xml:"style"`
}

type styleXML struct {
	Type    string `xml:"type,attr"`
	Default string `xml:"default,attr"`
	StyleID string `xml:"styleId,attr"`
	Name    struct {
		Val string `xml:"val,attr"`
	} `xml:"name"`
}

// Styles maps style ids to their display names.
type Styles struct {
	names            map[string]string
	defaultParagraph string
}

// ParseStyles reads word/styles.xml.
func ParseStyles(data []byte) (*Styles, error) {
	var doc stylesXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode styles: %w", err)
	}
	s := &Styles{names: make(map[string]string, len(doc.Styles))}
	for _, st := range doc.Styles {
		if st.StyleID == "" {
			continue
		}
		s.names[st.StyleID] = st.Name.Val
		if st.Type == "paragraph" && isOn(st.Default) && s.defaultParagraph == "" {
			s.defaultParagraph = st.StyleID
		}
	}
	return s, nil
}

// ParagraphStyleName resolves the style name of a paragraph style id. An
// empty id selects the default paragraph style; an id with no declared name
// is returned as is. A nil receiver resolves ids to themselves.
func (s *Styles) ParagraphStyleName(styleID string) string {
	if s == nil {
		return styleID
	}
	if styleID == "" {
		styleID = s.defaultParagraph
		if styleID == "" {
			return ""
		}
	}
	if name := s.names[styleID]; name != "" {
		return name
	}
	return styleID
}

func isOn(v string) bool {
	switch v {
	case "1", "true", "on":
		return true
	}
	return false
}
