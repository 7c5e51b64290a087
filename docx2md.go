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

// Package docx2md converts WordprocessingML documents (.docx) into linear
// Markdown that keeps reading order: headings, paragraphs, tables and
// inline images.
package docx2md

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/nicholasgasior/docx2md/internal/ooxml"
	"github.com/nicholasgasior/docx2md/internal/wordml"
)

const (
	relTypeStyles     = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles"
	defaultStylesPart = "word/styles.xml"
)

// Converter turns documents into Markdown. A Converter holds only
// configuration; every conversion gets its own image counter, so one
// Converter may be used from several goroutines.
type Converter struct {
	outputDir   string
	assetDir    string
	captioner   Captioner
	rasterizer  VectorRasterizer
	headings    HeadingSource
	placeholder string
	logger      Logger
	altChunks   bool
	workbooks   bool
}

// New creates a Converter with the given options.
func New(opts ...Option) *Converter {
	c := &Converter{
		placeholder: DefaultPlaceholder,
		logger:      noopLogger{},
		altChunks:   true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = noopLogger{}
	}
	return c
}

// ConvertFile converts the document at path.
func (c *Converter) ConvertFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ContainerError{Path: path, Err: err}
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, &ContainerError{Path: path, Err: err}
	}
	return c.convert(f, st.Size(), path)
}

// ConvertReader converts a document held in r. name is used for the
// output file stem and in errors; it may be a bare file name.
func (c *Converter) ConvertReader(r io.ReaderAt, size int64, name string) (*Result, error) {
	return c.convert(r, size, name)
}

func (c *Converter) convert(r io.ReaderAt, size int64, name string) (*Result, error) {
	if err := checkFormat(r, size, name); err != nil {
		return nil, err
	}

	pkg, err := ooxml.Open(r, size)
	if err != nil {
		return nil, &ContainerError{Path: name, Err: err}
	}
	main := pkg.MainPart()
	data, err := pkg.ReadPart(main)
	if err != nil {
		return nil, &ContainerError{Path: name, Err: err}
	}
	doc, err := wordml.Parse(data)
	if err != nil {
		return nil, &ContainerError{Path: name, Err: fmt.Errorf("parse %s: %w", main, err)}
	}
	parts, err := pkg.Parts(main)
	if err != nil {
		return nil, &ContainerError{Path: name, Err: err}
	}
	styles := c.loadStyles(pkg, main)

	c.logger.Debug("container opened", "path", name, "main_part", main, "blocks", len(doc.Blocks), "relationships", len(parts))

	stem := fileStem(name)
	var mdPath, assetDir string
	relBase := "images_" + stem
	if c.assetDir != "" {
		relBase = filepath.Base(c.assetDir)
	}
	assetDir = c.assetDir
	if c.outputDir != "" {
		mdPath = filepath.Join(c.outputDir, stem+".md")
		if assetDir == "" {
			assetDir = filepath.Join(c.outputDir, relBase)
		}
	}

	assets := &assetPipeline{
		dir:         assetDir,
		relBase:     relBase,
		rasterizer:  c.rasterizer,
		captioner:   c.captioner,
		placeholder: c.placeholder,
		log:         c.logger,
	}
	s := &session{
		rels:      relationshipMap(parts),
		styles:    styles,
		assets:    assets,
		out:       &emitter{},
		log:       c.logger,
		altChunks: c.altChunks,
		workbooks: c.workbooks,
	}

	if err := s.walk(doc); err != nil {
		assets.cleanup()
		return nil, err
	}

	result := &Result{
		Markdown: s.out.text(),
		Images:   assets.images,
	}

	if c.headings != nil {
		numbered, err := c.headings.Headings(name)
		if err != nil {
			c.logger.Warn("heading numbering unavailable", "path", name, "error", err)
		} else {
			result.Markdown, result.HeadingsNumbered = ApplyHeadingNumbers(result.Markdown, numbered)
		}
	}

	if mdPath != "" {
		if err := writeMarkdown(mdPath, result.Markdown); err != nil {
			assets.cleanup()
			return nil, err
		}
		result.OutputPath = mdPath
	}
	if len(assets.written) > 0 {
		result.AssetDir = assetDir
	}

	c.logger.Info("document converted", "path", name, "images", len(result.Images), "output", result.OutputPath)
	return result, nil
}

// loadStyles reads the style table of the main part. Without a usable
// style part, style ids stand in for style names.
func (c *Converter) loadStyles(pkg *ooxml.Package, main string) *wordml.Styles {
	part := defaultStylesPart
	if rels, err := pkg.Relationships(main); err == nil {
		for _, rel := range rels {
			if rel.Type == relTypeStyles && !rel.External() {
				part = ooxml.ResolveTarget(main, rel.Target)
				break
			}
		}
	}
	if !pkg.Has(part) {
		return nil
	}
	data, err := pkg.ReadPart(part)
	if err != nil {
		c.logger.Warn("read styles", "part", part, "error", err)
		return nil
	}
	styles, err := wordml.ParseStyles(data)
	if err != nil {
		c.logger.Warn("parse styles", "part", part, "error", err)
		return nil
	}
	return styles
}

// checkFormat rejects input that is neither a zip container nor named like
// a Word document.
func checkFormat(r io.ReaderAt, size int64, name string) error {
	mt, err := mimetype.DetectReader(io.NewSectionReader(r, 0, size))
	if err != nil {
		return &ContainerError{Path: name, Err: err}
	}
	for m := mt; m != nil; m = m.Parent() {
		if m.Is("application/zip") {
			return nil
		}
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == ".docx" || ext == ".docm" {
		return nil
	}
	return &UnsupportedFormatError{Extension: ext, MIMEType: mt.String()}
}

// fileStem is the base name up to its first dot.
func fileStem(name string) string {
	base := filepath.Base(name)
	if i := strings.IndexByte(base, '.'); i > 0 {
		return base[:i]
	}
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "document"
	}
	return base
}
