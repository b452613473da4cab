package export

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
)

const jpegQuality = 92

// Opaque composites img over a fresh canvas filled with bg at full opacity,
// so transparent corners never reach the exported file. A fully transparent
// bg falls back to white.
func Opaque(img image.Image, bg color.NRGBA) *image.RGBA {
	if bg.A == 0 {
		bg = color.NRGBA{R: 0xff, G: 0xff, B: 0xff}
	}
	bg.A = 0xff
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Over)
	return out
}

// WritePNG writes img composited over bg as PNG.
func WritePNG(w io.Writer, img image.Image, bg color.NRGBA) error {
	if err := png.Encode(w, Opaque(img, bg)); err != nil {
		return errors.Join(ErrExport, err)
	}
	return nil
}

// WriteJPEG writes img composited over bg as JPEG.
func WriteJPEG(w io.Writer, img image.Image, bg color.NRGBA) error {
	if err := jpeg.Encode(w, Opaque(img, bg), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return errors.Join(ErrExport, err)
	}
	return nil
}
