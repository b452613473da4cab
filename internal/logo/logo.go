// Package logo decodes user-supplied logo files into bitmaps.
package logo

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrDecode is returned when a logo file cannot be read as an image.
var ErrDecode = errors.New("failed to read logo file")

// DefaultMaxBytes caps logo uploads when no limit is configured.
const DefaultMaxBytes = 5 << 20

// maxRasterSide bounds the bitmap an SVG logo is rasterized to.
const maxRasterSide = 1024

// MaxSide bounds the width and height of a raster logo. It is checked from
// the image header before any pixels are decoded.
const MaxSide = 4096

// Decode sniffs data and decodes it as a raster or SVG image. maxBytes <= 0
// selects DefaultMaxBytes.
func Decode(data []byte, maxBytes int64) (image.Image, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if len(data) == 0 {
		return nil, errors.Join(ErrDecode, errors.New("file is empty"))
	}
	if int64(len(data)) > maxBytes {
		return nil, errors.Join(ErrDecode, fmt.Errorf("file is larger than %d bytes", maxBytes))
	}

	mt := mimetype.Detect(data)
	if mt.Is("image/svg+xml") {
		return decodeSVG(data)
	}
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, errors.Join(ErrDecode, fmt.Errorf("%s is not an image", mt.String()))
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	if cfg.Width > MaxSide || cfg.Height > MaxSide {
		return nil, errors.Join(ErrDecode, fmt.Errorf("image is %dx%d, larger than %dx%d", cfg.Width, cfg.Height, MaxSide, MaxSide))
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	if img.Bounds().Empty() {
		return nil, errors.Join(ErrDecode, errors.New("image has no pixels"))
	}
	return img, nil
}

// DecodeDataURL decodes a data:image/...;base64, URL.
func DecodeDataURL(s string, maxBytes int64) (image.Image, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(s), "data:")
	if !ok {
		return nil, errors.Join(ErrDecode, errors.New("not a data URL"))
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, errors.Join(ErrDecode, errors.New("malformed data URL"))
	}
	if !strings.HasPrefix(meta, "image/") {
		return nil, errors.Join(ErrDecode, fmt.Errorf("data URL type %q is not an image", meta))
	}
	if !strings.HasSuffix(meta, ";base64") {
		return nil, errors.Join(ErrDecode, errors.New("data URL must be base64 encoded"))
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.Join(ErrDecode, err)
	}
	return Decode(data, maxBytes)
}

// decodeSVG rasterizes an SVG document at its own size, scaled down so the
// longer side is at most maxRasterSide.
func decodeSVG(data []byte) (image.Image, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, errors.Join(ErrDecode, err)
	}

	w, h := icon.ViewBox.W, icon.ViewBox.H
	if w <= 0 || h <= 0 {
		w, h = maxRasterSide, maxRasterSide
	}
	scale := math.Min(1, maxRasterSide/math.Max(w, h))
	outW := max(1, int(math.Round(w*scale)))
	outH := max(1, int(math.Round(h*scale)))

	icon.SetTarget(0, 0, float64(outW), float64(outH))
	img := image.NewRGBA(image.Rect(0, 0, outW, outH))
	scanner := rasterx.NewScannerGV(outW, outH, img, img.Bounds())
	raster := rasterx.NewDasher(outW, outH, scanner)
	icon.Draw(raster, 1.0)
	return img, nil
}
