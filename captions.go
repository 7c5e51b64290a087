package docx2md

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var reImageFile = regexp.MustCompile(`(?i)^image_(\d+)\.(?:png|jpe?g)$`)

// MergeCaptions replaces DefaultPlaceholder occurrences in markdown with
// captions, in order.
func MergeCaptions(markdown string, captions []string) (string, error) {
	return ReplacePlaceholders(markdown, DefaultPlaceholder, captions)
}

// ReplacePlaceholders replaces each occurrence of placeholder with the next
// caption. The counts are checked first: on mismatch a
// PlaceholderMismatchError is returned and nothing is replaced.
func ReplacePlaceholders(markdown, placeholder string, captions []string) (string, error) {
	if placeholder == "" {
		return "", fmt.Errorf("empty placeholder")
	}
	n := strings.Count(markdown, placeholder)
	if n != len(captions) {
		return "", &PlaceholderMismatchError{Placeholders: n, Captions: len(captions)}
	}

	var b strings.Builder
	b.Grow(len(markdown))
	rest := markdown
	for _, caption := range captions {
		i := strings.Index(rest, placeholder)
		b.WriteString(rest[:i])
		b.WriteString(sanitizeCaption(caption))
		rest = rest[i+len(placeholder):]
	}
	b.WriteString(rest)
	return b.String(), nil
}

// ImageFiles lists image_<n>.png/.jpg/.jpeg files in dir ordered by n.
func ImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read asset directory: %w", err)
	}

	type indexed struct {
		n    int
		path string
	}
	var files []indexed
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := reImageFile.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		files = append(files, indexed{n: n, path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].n < files[j].n })

	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.path
	}
	return out, nil
}

// CaptionMarkdownFile captions every image of assetDir in index order and
// writes the Markdown at mdPath, placeholders filled, to
// <outDir>/<stem>_img.md. The image count is checked against the
// placeholders before any captioning. It returns the written path.
func CaptionMarkdownFile(mdPath, assetDir, outDir string, c Captioner) (string, error) {
	data, err := os.ReadFile(mdPath)
	if err != nil {
		return "", fmt.Errorf("read markdown: %w", err)
	}
	markdown := string(data)

	images, err := ImageFiles(assetDir)
	if err != nil {
		return "", err
	}
	if n := strings.Count(markdown, DefaultPlaceholder); n != len(images) {
		return "", &PlaceholderMismatchError{Placeholders: n, Captions: len(images)}
	}

	captions := make([]string, 0, len(images))
	for _, img := range images {
		caption, err := c.Describe(img)
		if err != nil {
			return "", fmt.Errorf("caption %s: %w", filepath.Base(img), err)
		}
		captions = append(captions, caption)
	}

	merged, err := MergeCaptions(markdown, captions)
	if err != nil {
		return "", err
	}

	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	stem := strings.TrimSuffix(filepath.Base(mdPath), filepath.Ext(mdPath))
	out := filepath.Join(outDir, stem+"_img.md")
	if err := os.WriteFile(out, []byte(merged), 0o644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}
	return out, nil
}
