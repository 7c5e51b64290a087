package docx2md

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestMergeCaptions(t *testing.T) {
	md := "![a/image_0.png: {{NONE}}]()\ntext\n![a/image_1.png: {{NONE}}]()\n"

	got, err := MergeCaptions(md, []string{"a cat", "a [red]\nbox"})
	if err != nil {
		t.Fatalf("MergeCaptions() error: %v", err)
	}
	want := "![a/image_0.png: a cat]()\ntext\n![a/image_1.png: a red box]()\n"
	if got != want {
		t.Errorf("MergeCaptions() = %q, want %q", got, want)
	}

	_, err = MergeCaptions(md+"![a/image_2.png: {{NONE}}]()\n", []string{"x", "y"})
	var mismatch *PlaceholderMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("MergeCaptions() error = %v, want PlaceholderMismatchError", err)
	}
	if mismatch.Placeholders != 3 || mismatch.Captions != 2 {
		t.Errorf("mismatch = %+v, want 3 placeholders and 2 captions", mismatch)
	}
}

func TestReplacePlaceholders(t *testing.T) {
	got, err := ReplacePlaceholders("![x: ??]() ![y: ??]()", "??", []string{"one", "two"})
	if err != nil {
		t.Fatalf("ReplacePlaceholders() error: %v", err)
	}
	if want := "![x: one]() ![y: two]()"; got != want {
		t.Errorf("ReplacePlaceholders() = %q, want %q", got, want)
	}
	if _, err := ReplacePlaceholders("text", "", nil); err == nil {
		t.Error("ReplacePlaceholders() with empty placeholder expected error")
	}
}

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestImageFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "image_10.png", "image_2.jpg", "image_0.png", "notes.txt", "image_x.png", "IMAGE_1.JPEG")
	if err := os.Mkdir(filepath.Join(dir, "image_3.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := ImageFiles(dir)
	if err != nil {
		t.Fatalf("ImageFiles() error: %v", err)
	}
	var names []string
	for _, p := range got {
		names = append(names, filepath.Base(p))
	}
	want := []string{"image_0.png", "IMAGE_1.JPEG", "image_2.jpg", "image_10.png"}
	if !reflect.DeepEqual(names, want) {
		t.Errorf("ImageFiles() = %v, want %v", names, want)
	}

	if _, err := ImageFiles(filepath.Join(dir, "missing")); err == nil {
		t.Error("ImageFiles() on missing dir expected error")
	}
}

func TestCaptionMarkdownFile(t *testing.T) {
	dir := t.TempDir()
	assets := filepath.Join(dir, "images_report")
	if err := os.Mkdir(assets, 0o755); err != nil {
		t.Fatal(err)
	}
	touch(t, assets, "image_0.png", "image_1.png")

	mdPath := filepath.Join(dir, "report.md")
	md := "# Report\n\n![images_report/image_0.png: {{NONE}}]()\n\n![images_report/image_1.png: {{NONE}}]()\n"
	if err := os.WriteFile(mdPath, []byte(md), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("writes captioned copy", func(t *testing.T) {
		c := &stubCaptioner{captions: map[string]string{"image_0.png": "a chart", "image_1.png": "a logo"}}
		outDir := filepath.Join(dir, "out")
		out, err := CaptionMarkdownFile(mdPath, assets, outDir, c)
		if err != nil {
			t.Fatalf("CaptionMarkdownFile() error: %v", err)
		}
		if want := filepath.Join(outDir, "report_img.md"); out != want {
			t.Errorf("path = %q, want %q", out, want)
		}
		data, err := os.ReadFile(out)
		if err != nil {
			t.Fatal(err)
		}
		want := "# Report\n\n![images_report/image_0.png: a chart]()\n\n![images_report/image_1.png: a logo]()\n"
		if string(data) != want {
			t.Errorf("content = %q, want %q", data, want)
		}
		if !reflect.DeepEqual(c.calls, []string{"image_0.png", "image_1.png"}) {
			t.Errorf("calls = %v", c.calls)
		}
	})

	t.Run("count mismatch captions nothing", func(t *testing.T) {
		touch(t, assets, "image_2.png")
		defer os.Remove(filepath.Join(assets, "image_2.png"))

		c := &stubCaptioner{}
		outDir := filepath.Join(dir, "mismatch")
		_, err := CaptionMarkdownFile(mdPath, assets, outDir, c)
		if !IsPlaceholderMismatch(err) {
			t.Fatalf("error = %v, want PlaceholderMismatchError", err)
		}
		if len(c.calls) != 0 {
			t.Errorf("captioner called %d times", len(c.calls))
		}
		if _, err := os.Stat(outDir); !os.IsNotExist(err) {
			t.Errorf("output directory created: %v", err)
		}
	})

	t.Run("captioner error", func(t *testing.T) {
		c := &stubCaptioner{err: errors.New("quota")}
		if _, err := CaptionMarkdownFile(mdPath, assets, filepath.Join(dir, "failed"), c); err == nil {
			t.Error("CaptionMarkdownFile() expected error")
		}
	})
}
