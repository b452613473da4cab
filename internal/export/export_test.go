package export_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrcreator/internal/export"
	"github.com/cristianadrielbraun/qrcreator/internal/qr"
	"github.com/cristianadrielbraun/qrcreator/internal/render"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func decodeQR(t *testing.T, img image.Image) string {
	t.Helper()
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)
	res, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)
	return res.GetText()
}

// rasterizeSVG renders an SVG document the way an image viewer would.
func rasterizeSVG(t *testing.T, data []byte, size int) *image.RGBA {
	t.Helper()
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	require.NoError(t, err)
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)
	return img
}

func TestFilename(t *testing.T) {
	t.Parallel()

	now := time.UnixMilli(1700000000123)
	assert.Equal(t, "qr-1700000000123.png", export.Filename(now, export.PNG))
	assert.Equal(t, "qr-1700000000123.svg", export.Filename(now, export.SVG))
	assert.NotEqual(t, export.Filename(now, export.PNG), export.Filename(now.Add(time.Millisecond), export.PNG))
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]export.Format{"png": export.PNG, "SVG": export.SVG, "jpeg": export.JPEG, "jpg": export.JPEG} {
		got, err := export.ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := export.ParseFormat("gif")
	assert.Error(t, err)

	assert.Equal(t, "image/png", export.PNG.ContentType())
	assert.Equal(t, "image/svg+xml", export.SVG.ContentType())
	assert.Equal(t, "image/jpeg", export.JPEG.ContentType())
}

func TestWritePNGIsOpaque(t *testing.T) {
	t.Parallel()

	opts := render.DefaultOptions()
	opts.Light = color.NRGBA{0xfe, 0xf3, 0xc7, 0x00}
	s, err := render.New(nil).Render(context.Background(), "https://example.com", opts, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, export.WritePNG(&buf, s.Copy(), color.NRGBA{0xfe, 0xf3, 0xc7, 0x40}))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())

	for _, p := range []image.Point{{0, 0}, {319, 0}, {0, 319}, {319, 319}} {
		r, g, b, a := img.At(p.X, p.Y).RGBA()
		assert.Equal(t, uint32(0xffff), a)
		assert.Equal(t, [3]uint32{0xfefe, 0xf3f3, 0xc7c7}, [3]uint32{r, g, b})
	}
	assert.Equal(t, "https://example.com", decodeQR(t, img))
}

func TestOpaqueTransparentBackgroundFallsBackToWhite(t *testing.T) {
	t.Parallel()

	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	out := export.Opaque(src, color.NRGBA{})
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, out.RGBAAt(2, 2))
}

func TestWriteJPEG(t *testing.T) {
	t.Parallel()

	s, err := render.New(nil).Render(context.Background(), "hello", render.DefaultOptions(), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, export.WriteJPEG(&buf, s.Copy(), render.DefaultOptions().Light))
	img, err := jpeg.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
}

func TestSVGRoundTrip(t *testing.T) {
	t.Parallel()

	p := render.New(nil)
	for _, level := range qr.Levels() {
		opts := render.DefaultOptions()
		opts.Level = level

		data, err := export.Vector(p, "https://example.com", opts)
		require.NoError(t, err)

		doc := string(data)
		assert.True(t, strings.HasPrefix(doc, `<?xml version="1.0" encoding="UTF-8"?>`))
		assert.Contains(t, doc, `width="320" height="320"`)
		assert.Contains(t, doc, `shape-rendering="crispEdges"`)
		assert.Contains(t, doc, `fill="#111827"`)
		assert.Contains(t, doc, `fill="#ffffff"`)

		vector := rasterizeSVG(t, data, opts.Width)
		assert.Equal(t, "https://example.com", decodeQR(t, vector), level.String())

		s, err := p.Render(context.Background(), "https://example.com", opts, nil)
		require.NoError(t, err)
		assert.Equal(t, decodeQR(t, s.Copy()), decodeQR(t, vector))
	}
}

func TestSVGViewBoxIncludesMargin(t *testing.T) {
	t.Parallel()

	p := render.New(nil)
	opts := render.DefaultOptions()
	opts.Margin = 2

	m, err := p.Matrix("abc", opts)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, export.WriteSVG(&buf, m, opts))
	n := m.Size() + 4
	assert.Contains(t, buf.String(), `viewBox="0 0 `+strconv.Itoa(n)+` `+strconv.Itoa(n)+`"`)
	// The top-left finder starts at the margin offset.
	assert.Contains(t, buf.String(), `d="M2 2h7v1h-7z`)
}

func TestSVGTransparentBackground(t *testing.T) {
	t.Parallel()

	opts := render.DefaultOptions()
	opts.Light = color.NRGBA{}
	opts.Dark = color.NRGBA{0, 0, 0, 0x80}

	data, err := export.Vector(render.New(nil), "abc", opts)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "M0 0h")
	assert.Contains(t, string(data), `fill-opacity="0.50"`)
}

func TestSVGEncodingError(t *testing.T) {
	t.Parallel()

	opts := render.DefaultOptions()
	opts.Level = qr.LevelH
	_, err := export.Vector(render.New(nil), strings.Repeat("x", 3000), opts)
	assert.True(t, errors.Is(err, qr.ErrEncoding))
}

func TestExportWriteFailures(t *testing.T) {
	t.Parallel()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	assert.True(t, errors.Is(export.WritePNG(failingWriter{}, img, color.NRGBA{A: 255}), export.ErrExport))
	assert.True(t, errors.Is(export.WriteJPEG(failingWriter{}, img, color.NRGBA{A: 255}), export.ErrExport))

	m, err := qr.Default().Encode("abc", qr.LevelM)
	require.NoError(t, err)
	assert.True(t, errors.Is(export.WriteSVG(failingWriter{}, m, render.DefaultOptions()), export.ErrExport))
}
