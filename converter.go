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

// DefaultPlaceholder is the caption written for images that have not been
// described yet.
const DefaultPlaceholder = "{{NONE}}"

// Captioner produces a natural-language description of an image file.
type Captioner interface {
	Describe(imagePath string) (string, error)
}

// VectorRasterizer turns an EMF or WMF blob into PNG bytes. format is "emf"
// or "wmf".
type VectorRasterizer interface {
	Rasterize(blob []byte, format string) ([]byte, error)
}

// HeadingSource returns the document's headings as rendered by a word
// processor, list numbering included (e.g. "2.1 Scope").
type HeadingSource interface {
	Headings(docPath string) ([]string, error)
}

// HeadingList is a fixed HeadingSource.
type HeadingList []string

// Headings returns the list regardless of docPath.
func (h HeadingList) Headings(string) ([]string, error) {
	return h, nil
}

// Logger receives structured diagnostics as a message plus key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// ImageAsset is one image extracted from the document.
type ImageAsset struct {
	// Index is the sequence number within one conversion, starting at 0.
	Index int
	// Path is the asset path relative to the Markdown file, using forward
	// slashes.
	Path string
	// File is the location of the written PNG, empty when nothing was
	// persisted.
	File string
	// Caption is the captioner's answer or the placeholder.
	Caption string
	// PNG holds the normalized image.
	PNG []byte
}

// Payload is the text placed between the brackets of the image line.
func (a ImageAsset) Payload() string {
	return a.Path + ": " + a.Caption
}

// Markdown renders the asset as an inline image.
func (a ImageAsset) Markdown() string {
	return "![" + a.Payload() + "]()"
}

// Result holds the output of a conversion.
type Result struct {
	Markdown string
	// OutputPath is the written Markdown file, empty when not persisted.
	OutputPath string
	// AssetDir is the directory images were written to, empty when not
	// persisted.
	AssetDir string
	Images   []ImageAsset
	// HeadingsNumbered counts headings rewritten from a HeadingSource.
	HeadingsNumbered int
}
