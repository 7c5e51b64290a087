// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

package docx2md

import (
	"bytes"
	"fmt"
	"mime"
	"slices"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"

	"github.com/nicholasgasior/docx2md/internal/wordml"
)

// altChunk renders an imported chunk in place. HTML chunks go through
// html-to-markdown, plain text is emitted line by line, anything else is
// skipped. A rendered chunk is followed by one blank line.
func (s *session) altChunk(c *wordml.AltChunk) {
	part, ok := s.rels[c.RelID]
	if !ok {
		s.log.Debug("alt chunk target missing", "rel", c.RelID)
		return
	}

	var md string
	var err error
	switch kind := chunkKind(part.ContentType, part.Blob); kind {
	case "html":
		md, err = htmlChunkToMarkdown(part.Blob, part.ContentType)
	case "text":
		_, params, _ := mime.ParseMediaType(part.ContentType)
		md = decodeText(part.Blob, params["charset"])
	default:
		s.log.Debug("alt chunk skipped", "part", part.Name, "content_type", part.ContentType)
		return
	}
	if err != nil {
		s.log.Warn("alt chunk not converted", "part", part.Name, "error", err)
		return
	}

	md = normalizeOutput(md)
	if md == "" {
		return
	}
	s.out.add(strings.Split(md, "\n")...)
	s.out.add("")
}

// chunkKind classifies a chunk as "html", "text" or "" from its declared
// type, falling back to content sniffing when the type is missing.
func chunkKind(contentType string, blob []byte) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil || mediaType == "" || mediaType == "application/octet-stream" {
		mt := mimetype.Detect(blob)
		switch {
		case mt.Is("text/html"):
			return "html"
		case mt.Is("text/plain"):
			return "text"
		}
		return ""
	}
	switch mediaType {
	case "text/html", "application/xhtml+xml":
		return "html"
	case "text/plain":
		return "text"
	}
	return ""
}

// htmlChunkToMarkdown decodes the chunk, drops script, style and head
// content and converts the rest.
func htmlChunkToMarkdown(blob []byte, contentType string) (string, error) {
	enc, name, certain := charset.DetermineEncoding(blob, contentType)
	var text string
	if !certain && name == "windows-1252" {
		text = decodeWithDetection(blob)
	} else {
		out, err := enc.NewDecoder().Bytes(blob)
		if err != nil {
			return "", fmt.Errorf("decode %s: %w", name, err)
		}
		text = string(out)
	}

	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return "", fmt.Errorf("parse HTML: %w", err)
	}
	removeElements(doc, "script", "style", "head")

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return "", fmt.Errorf("render HTML: %w", err)
	}
	md, err := convertHTMLToMarkdown(buf.String())
	if err != nil {
		return "", fmt.Errorf("convert HTML to markdown: %w", err)
	}
	return md, nil
}

// convertHTMLToMarkdown converts HTML to markdown using html-to-markdown.
func convertHTMLToMarkdown(htmlStr string) (string, error) {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(
				commonmark.WithHeadingStyle("atx"),
			),
			table.NewTablePlugin(),
		),
	)
	return conv.ConvertString(htmlStr)
}

// removeElements detaches every element with one of the given tag names.
func removeElements(n *html.Node, tags ...string) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && slices.Contains(tags, c.Data) {
			n.RemoveChild(c)
		} else {
			removeElements(c, tags...)
		}
		c = next
	}
}
