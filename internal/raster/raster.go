// Package raster normalizes embedded bitmaps to opaque PNG.
package raster

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode decodes any registered raster format (PNG, JPEG, GIF, BMP, TIFF,
// WebP) and returns the image with its format name.
func Decode(blob []byte) (image.Image, string, error) {
	img, format, err := image.Decode(bytes.NewReader(blob))
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	return img, format, nil
}

// HasAlpha reports whether the image model carries an alpha channel or the
// palette has transparent entries.
func HasAlpha(img image.Image) bool {
	switch m := img.ColorModel().(type) {
	case color.Palette:
		for _, c := range m {
			if _, _, _, a := c.RGBA(); a != 0xFFFF {
				return true
			}
		}
		return false
	}
	switch img.ColorModel() {
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model, color.AlphaModel, color.Alpha16Model:
		return true
	}
	return false
}

// Flatten returns an opaque RGB rendition of img. Images with transparency
// are composited onto a white background of the same size, using their
// alpha channel as the mask.
func Flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))

	if !HasAlpha(img) {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}

	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	colors, mask := split(img)
	draw.DrawMask(dst, dst.Bounds(), colors, image.Point{}, mask, image.Point{}, draw.Over)
	return dst
}

// split separates img into its unpremultiplied colors (fully opaque) and
// its alpha channel.
func split(img image.Image) (*image.RGBA, *image.Alpha) {
	b := img.Bounds()
	colors := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	mask := image.NewAlpha(colors.Bounds())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			colors.SetRGBA(x-b.Min.X, y-b.Min.Y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xFF})
			mask.SetAlpha(x-b.Min.X, y-b.Min.Y, color.Alpha{A: c.A})
		}
	}
	return colors, mask
}

// EncodePNG writes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Normalize decodes blob, flattens any transparency onto white and returns
// PNG bytes.
func Normalize(blob []byte) ([]byte, error) {
	img, _, err := Decode(blob)
	if err != nil {
		return nil, err
	}
	return EncodePNG(Flatten(img))
}
