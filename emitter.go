package docx2md

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// emitter collects output lines in order.
type emitter struct {
	lines []string
}

func (e *emitter) add(lines ...string) {
	e.lines = append(e.lines, lines...)
}

// text joins the lines with newlines, without further changes.
func (e *emitter) text() string {
	return strings.Join(e.lines, "\n")
}

// writeMarkdown writes text to path, creating the parent directory.
func writeMarkdown(path, text string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write markdown: %w", err)
	}
	return nil
}
