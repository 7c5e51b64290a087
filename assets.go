package docx2md

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/nicholasgasior/docx2md/internal/metafile"
	"github.com/nicholasgasior/docx2md/internal/ooxml"
	"github.com/nicholasgasior/docx2md/internal/raster"
)

// vectorTypes maps declared content types of Windows metafiles to the
// format name handed to the rasterizer. An empty value means the format is
// read from the blob header.
var vectorTypes = map[string]string{
	"image/x-emf":              metafile.EMF,
	"image/emf":                metafile.EMF,
	"image/x-wmf":              metafile.WMF,
	"image/wmf":                metafile.WMF,
	"application/x-msmetafile": "",
}

// assetPipeline owns the image counter of one conversion. It is not safe
// for concurrent use and is never shared between conversions.
type assetPipeline struct {
	dir         string // "" disables writing and captioning
	relBase     string
	next        int
	rasterizer  VectorRasterizer
	captioner   Captioner
	placeholder string
	log         Logger

	images     []ImageAsset
	written    []string
	createdDir bool
}

// add assigns the next index to part and normalizes it to PNG. With an
// asset directory the PNG is written as image_<n>.png and captioned.
func (a *assetPipeline) add(part ooxml.Part) (ImageAsset, error) {
	name := fmt.Sprintf("image_%d.png", a.next)
	asset := ImageAsset{
		Index:   a.next,
		Path:    path.Join(a.relBase, name),
		Caption: a.placeholder,
	}

	png, err := a.normalize(part)
	if err != nil {
		return ImageAsset{}, &AssetConversionError{
			Index:       asset.Index,
			Part:        part.Name,
			ContentType: part.ContentType,
			Err:         err,
		}
	}
	asset.PNG = png

	if a.dir != "" {
		if err := a.ensureDir(); err != nil {
			return ImageAsset{}, err
		}
		file := filepath.Join(a.dir, name)
		if err := os.WriteFile(file, png, 0o644); err != nil {
			return ImageAsset{}, fmt.Errorf("write image: %w", err)
		}
		a.written = append(a.written, file)
		asset.File = file
		a.log.Debug("image written", "index", asset.Index, "part", part.Name, "file", file, "bytes", len(png))

		if a.captioner != nil {
			asset.Caption = a.caption(file)
		}
	}

	a.next++
	a.images = append(a.images, asset)
	return asset, nil
}

// normalize produces opaque PNG bytes for a raster or vector part.
func (a *assetPipeline) normalize(part ooxml.Part) ([]byte, error) {
	if format, ok := vectorFormat(part.ContentType, part.Blob); ok {
		r := a.rasterizer
		if r == nil {
			r = metafile.Rasterizer{}
		}
		out, err := r.Rasterize(part.Blob, format)
		if err != nil {
			return nil, fmt.Errorf("rasterize %s: %w", format, err)
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("rasterize %s: empty output", format)
		}
		return raster.Normalize(out)
	}

	if mt := mimetype.Detect(part.Blob); !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("not an image: %s", mt.String())
	}
	return raster.Normalize(part.Blob)
}

// vectorFormat reports whether a part is a Windows metafile. Declared
// metafile types win; parts without a specific image type are sniffed.
func vectorFormat(contentType string, blob []byte) (string, bool) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}

	if format, ok := vectorTypes[ct]; ok {
		if format == "" {
			format = metafile.Detect(blob)
			if format == "" {
				format = metafile.WMF
			}
		}
		return format, true
	}

	if ct == "" || ct == "application/octet-stream" || !strings.HasPrefix(ct, "image/") {
		if format := metafile.Detect(blob); format != "" {
			return format, true
		}
	}
	return "", false
}

func (a *assetPipeline) caption(file string) string {
	text, err := a.captioner.Describe(file)
	if err != nil {
		a.log.Warn("caption failed, keeping placeholder", "file", file, "error", err)
		return a.placeholder
	}
	text = sanitizeCaption(text)
	if text == "" {
		return a.placeholder
	}
	return text
}

func (a *assetPipeline) ensureDir() error {
	if a.createdDir || len(a.written) > 0 {
		return nil
	}
	if _, err := os.Stat(a.dir); errors.Is(err, os.ErrNotExist) {
		a.createdDir = true
	}
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return fmt.Errorf("create asset directory: %w", err)
	}
	return nil
}

// cleanup removes every file this pipeline wrote, and the asset directory
// when this pipeline created it and it is empty again.
func (a *assetPipeline) cleanup() {
	for _, f := range a.written {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			a.log.Warn("remove image", "file", f, "error", err)
		}
	}
	a.written = nil
	if a.createdDir {
		os.Remove(a.dir)
		a.createdDir = false
	}
}

// sanitizeCaption makes a description safe for the brackets of an image
// line: one line, no square brackets.
func sanitizeCaption(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.ReplaceAll(s, "[", " ")
	s = strings.ReplaceAll(s, "]", " ")
	// Collapse multiple spaces
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}
