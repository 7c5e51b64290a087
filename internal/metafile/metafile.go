// Package metafile recovers raster content from Windows metafiles (EMF and
// WMF). Most metafiles embedded in office documents are wrappers around a
// single bitmap; drawings made only of vector records are not rendered.
package metafile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
)

// Format names accepted by Rasterize.
const (
	EMF = "emf"
	WMF = "wmf"
)

const (
	emfSignature      = 0x464D4520 // " EMF"
	wmfPlaceableMagic = 0x9AC6CDD7

	emrStretchDIBits     = 0x51
	emrSetDIBitsToDevice = 0x49

	metaStretchDIB    = 0x0F43
	metaDIBStretchBlt = 0x0B41

	biRGB  = 0
	biJPEG = 4
	biPNG  = 5

	maxDimension = 20000
)

// ErrNoRaster is returned when a metafile carries no bitmap payload.
var ErrNoRaster = errors.New("metafile has no embedded raster")

// Detect reports the metafile format of data from its header, or "" when
// data is not a metafile.
func Detect(data []byte) string {
	if len(data) >= 44 && binary.LittleEndian.Uint32(data[0:4]) == 1 &&
		binary.LittleEndian.Uint32(data[40:44]) == emfSignature {
		return EMF
	}
	if len(data) >= 4 && binary.LittleEndian.Uint32(data[0:4]) == wmfPlaceableMagic {
		return WMF
	}
	if len(data) >= 18 {
		typ := binary.LittleEndian.Uint16(data[0:2])
		hdr := binary.LittleEndian.Uint16(data[2:4])
		if (typ == 1 || typ == 2) && hdr == 9 {
			return WMF
		}
	}
	return ""
}

// Rasterizer extracts the raster payload of EMF and WMF blobs as PNG.
type Rasterizer struct {
	// MinSize is the smallest payload in bytes accepted as the picture.
	// Zero accepts any size.
	MinSize int
}

// Rasterize returns PNG bytes for the largest bitmap found in the metafile.
func (r Rasterizer) Rasterize(blob []byte, format string) ([]byte, error) {
	if format == "" {
		format = Detect(blob)
	}

	if img := r.findEmbeddedRaster(blob); img != nil {
		return toPNG(img)
	}

	var dib []byte
	switch format {
	case EMF:
		dib = dibFromEMF(blob)
	case WMF:
		dib = dibFromWMF(blob)
	default:
		return nil, fmt.Errorf("unknown metafile format %q", format)
	}
	if len(dib) == 0 || len(dib) < r.MinSize {
		return nil, fmt.Errorf("%s: %w", format, ErrNoRaster)
	}
	out, err := dibToPNG(dib)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", format, err)
	}
	return out, nil
}

// findEmbeddedRaster scans for JPEG or PNG signatures and returns the
// largest complete image.
func (r Rasterizer) findEmbeddedRaster(data []byte) []byte {
	var best []byte

	for i := 0; i+3 <= len(data); i++ {
		if data[i] == 0xFF && data[i+1] == 0xD8 && data[i+2] == 0xFF {
			if end := jpegEnd(data[i:]); end > len(best) {
				best = data[i : i+end]
			}
		}
	}

	for i := 0; i+8 <= len(data); i++ {
		if data[i] == 0x89 && data[i+1] == 'P' && data[i+2] == 'N' && data[i+3] == 'G' {
			if end := pngEnd(data[i:]); end > len(best) {
				best = data[i : i+end]
			}
		}
	}

	if len(best) == 0 || len(best) < r.MinSize {
		return nil
	}
	return best
}

// toPNG re-encodes an embedded JPEG or PNG so callers always get PNG.
func toPNG(data []byte) ([]byte, error) {
	if bytes.HasPrefix(data, []byte("\x89PNG")) {
		return append([]byte(nil), data...), nil
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode embedded raster: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func jpegEnd(data []byte) int {
	for i := 2; i+1 < len(data); i++ {
		if data[i] == 0xFF && data[i+1] == 0xD9 {
			return i + 2
		}
	}
	return 0
}

// pngEnd returns the length up to and including the IEND chunk CRC.
func pngEnd(data []byte) int {
	iend := []byte("IEND")
	for i := 8; i+8 <= len(data); i++ {
		if bytes.Equal(data[i:i+4], iend) {
			return i + 8
		}
	}
	return 0
}

// dibFromEMF walks EMF records and returns the largest DIB carried by a
// bitmap record.
func dibFromEMF(data []byte) []byte {
	var best []byte
	pos := 0
	for pos+8 <= len(data) {
		recType := binary.LittleEndian.Uint32(data[pos : pos+4])
		recSize := int(binary.LittleEndian.Uint32(data[pos+4 : pos+8]))
		if recSize < 8 || recSize > len(data)-pos {
			break
		}
		rec := data[pos : pos+recSize]
		if recType == emrStretchDIBits || recType == emrSetDIBitsToDevice {
			if dib := dibFromBitmapRecord(rec); len(dib) > len(best) {
				best = dib
			}
		}
		pos += recSize
	}
	return best
}

// dibFromBitmapRecord joins the BITMAPINFO and bits of EMR_STRETCHDIBITS or
// EMR_SETDIBITSTODEVICE. Both records keep offBmiSrc, cbBmiSrc, offBitsSrc
// and cbBitsSrc at offsets 48..64.
func dibFromBitmapRecord(rec []byte) []byte {
	if len(rec) < 76 {
		return nil
	}
	offBmi := int(binary.LittleEndian.Uint32(rec[48:52]))
	cbBmi := int(binary.LittleEndian.Uint32(rec[52:56]))
	offBits := int(binary.LittleEndian.Uint32(rec[56:60]))
	cbBits := int(binary.LittleEndian.Uint32(rec[60:64]))
	if cbBmi == 0 || cbBits == 0 {
		return nil
	}
	if offBmi+cbBmi > len(rec) || offBits+cbBits > len(rec) {
		return nil
	}
	dib := make([]byte, cbBmi+cbBits)
	copy(dib, rec[offBmi:offBmi+cbBmi])
	copy(dib[cbBmi:], rec[offBits:offBits+cbBits])
	return dib
}

// dibFromWMF walks WMF records (after the optional placeable header) and
// returns the largest DIB of a stretch record.
func dibFromWMF(data []byte) []byte {
	pos := 0
	if len(data) >= 4 && binary.LittleEndian.Uint32(data[0:4]) == wmfPlaceableMagic {
		pos = 22
	}
	if pos+18 > len(data) {
		return nil
	}
	pos += int(binary.LittleEndian.Uint16(data[pos+2:pos+4])) * 2

	var best []byte
	for pos+6 <= len(data) {
		size := int(binary.LittleEndian.Uint32(data[pos:pos+4])) * 2
		fn := binary.LittleEndian.Uint16(data[pos+4 : pos+6])
		if size < 6 || pos+size > len(data) || fn == 0 {
			break
		}
		if off := wmfDIBOffset(fn); off > 0 && size > off {
			if dib := data[pos+off : pos+size]; len(dib) > len(best) {
				best = append([]byte(nil), dib...)
			}
		}
		pos += size
	}
	return best
}

// wmfDIBOffset is where the DIB starts in a stretch record: the record
// header (6) plus raster op and geometry (20), plus ColorUsage (2) for
// META_STRETCHDIB. Other records return 0.
func wmfDIBOffset(fn uint16) int {
	switch fn {
	case metaStretchDIB:
		return 28
	case metaDIBStretchBlt:
		return 26
	}
	return 0
}

// dibToPNG converts a BITMAPINFOHEADER + pixel array to PNG. Uncompressed
// 24 and 32 bit DIBs are decoded; JPEG and PNG compressed DIBs are unwrapped.
func dibToPNG(dib []byte) ([]byte, error) {
	if len(dib) < 40 {
		return nil, errors.New("short DIB header")
	}
	headerSize := int(binary.LittleEndian.Uint32(dib[0:4]))
	width := int(int32(binary.LittleEndian.Uint32(dib[4:8])))
	height := int(int32(binary.LittleEndian.Uint32(dib[8:12])))
	bitCount := int(binary.LittleEndian.Uint16(dib[14:16]))
	compression := binary.LittleEndian.Uint32(dib[16:20])

	if headerSize < 40 || headerSize > len(dib) {
		return nil, errors.New("invalid DIB header size")
	}

	if compression == biJPEG || compression == biPNG {
		return toPNG(dib[headerSize:])
	}
	if compression != biRGB || (bitCount != 24 && bitCount != 32) {
		return nil, fmt.Errorf("unsupported DIB: %d bpp, compression %d", bitCount, compression)
	}

	topDown := height < 0
	if height < 0 {
		height = -height
	}
	if width < 0 {
		width = -width
	}
	if width == 0 || height == 0 || width > maxDimension || height > maxDimension {
		return nil, fmt.Errorf("invalid DIB size %dx%d", width, height)
	}

	bpp := bitCount / 8
	stride := (width*bpp + 3) &^ 3
	pixels := dib[headerSize:]
	if len(pixels) < stride*height {
		return nil, errors.New("truncated DIB pixel data")
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		srcY := y
		if !topDown {
			srcY = height - 1 - y
		}
		row := pixels[srcY*stride:]
		for x := 0; x < width; x++ {
			px := row[x*bpp:]
			c := color.NRGBA{R: px[2], G: px[1], B: px[0], A: 0xFF}
			// BI_RGB 32 bpp usually leaves the reserved byte at zero.
			if bpp == 4 && px[3] != 0 {
				c.A = px[3]
			}
			img.SetNRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
