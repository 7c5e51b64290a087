package docx2md

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// decodeText converts chunk bytes to UTF-8. A declared charset is tried
// first, then byte order marks, then statistical detection.
func decodeText(data []byte, declared string) string {
	if declared != "" {
		if enc := lookupEncoding(declared); enc != nil {
			if out, err := enc.NewDecoder().Bytes(data); err == nil {
				return string(out)
			}
		}
	}

	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return string(data[3:])
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}), bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		if out, err := dec.Bytes(data); err == nil {
			return string(out)
		}
	}

	if utf8.Valid(data) {
		return string(data)
	}

	return decodeWithDetection(data)
}

// decodeWithDetection decodes with every charset chardet proposes and keeps
// the rendition that scores best.
func decodeWithDetection(data []byte) string {
	results, err := chardet.NewTextDetector().DetectAll(data)
	if err != nil || len(results) == 0 {
		return strings.ToValidUTF8(string(data), "")
	}

	best, bestScore := "", -1<<31
	for _, r := range results {
		enc := lookupEncoding(r.Charset)
		if enc == nil {
			continue
		}
		out, err := enc.NewDecoder().Bytes(data)
		if err != nil {
			continue
		}
		if score := scoreDecodedText(string(out), r.Confidence); score > bestScore {
			best, bestScore = string(out), score
		}
	}
	if best == "" {
		return strings.ToValidUTF8(string(data), "")
	}
	return best
}

// scoreDecodedText favors decodings without replacement or control
// characters, starting from the detector's confidence.
func scoreDecodedText(text string, confidence int) int {
	score := confidence
	for _, r := range text {
		switch {
		case r == utf8.RuneError:
			score -= 10
		case r < 0x20 && r != '\n' && r != '\r' && r != '\t':
			score -= 5
		case r >= 0x3040 && r <= 0x30FF, r >= 0x4E00 && r <= 0x9FFF, r >= 0xAC00 && r <= 0xD7AF:
			score += 2
		case r >= 'A' && r <= 'z':
			score++
		}
	}
	return score
}

// lookupEncoding maps a charset label (WHATWG names and common aliases) to
// an encoding.
func lookupEncoding(charset string) encoding.Encoding {
	label := strings.ToLower(strings.TrimSpace(charset))
	switch label {
	case "utf-16le", "utf-16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case "ascii", "us-ascii":
		return unicode.UTF8
	case "gb-18030":
		label = "gb18030"
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil
	}
	return enc
}
