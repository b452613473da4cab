package render_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"testing"

	"github.com/makiuchi-d/gozxing"
	zxqrcode "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrcreator/internal/qr"
	"github.com/cristianadrielbraun/qrcreator/internal/render"
)

func decodeQR(t *testing.T, img image.Image) string {
	t.Helper()
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	require.NoError(t, err)
	res, err := zxqrcode.NewQRCodeReader().Decode(bmp, nil)
	require.NoError(t, err)
	return res.GetText()
}

func solidLogo(c color.Color, side int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, side, side))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func TestRenderExample(t *testing.T) {
	t.Parallel()

	p := render.New(nil)
	opts := render.DefaultOptions()
	s, err := p.Render(context.Background(), "https://example.com", opts, nil)
	require.NoError(t, err)

	img := s.Copy()
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 320, img.Bounds().Dy())
	assert.Equal(t, "https://example.com", decodeQR(t, img))

	m, err := p.Matrix("https://example.com", opts)
	require.NoError(t, err)

	// Quiet zone is the light color, the top-left finder corner is dark.
	assert.Equal(t, color.RGBA{0xff, 0xff, 0xff, 0xff}, img.RGBAAt(1, 1))
	px := 320*opts.Margin/(m.Size()+2*opts.Margin) + 1
	assert.Equal(t, color.RGBA{0x11, 0x18, 0x27, 0xff}, img.RGBAAt(px+1, px+1))
}

func TestRenderSurfaceSize(t *testing.T) {
	t.Parallel()

	p := render.New(nil)
	for width := render.MinWidth; width <= render.MaxWidth; width += 64 {
		for _, margin := range []int{render.MinMargin, 4, render.MaxMargin} {
			opts := render.DefaultOptions()
			opts.Width = width
			opts.Margin = margin

			s, err := p.Render(context.Background(), "hello", opts, nil)
			require.NoError(t, err, "width=%d margin=%d", width, margin)
			assert.Equal(t, width, s.Width())
			b := s.Copy().Bounds()
			assert.Equal(t, width, b.Dx())
			assert.Equal(t, width, b.Dy())
		}
	}
}

func TestRenderAllBackendsDecode(t *testing.T) {
	t.Parallel()

	for _, name := range qr.Backends() {
		enc, err := qr.NewEncoder(name)
		require.NoError(t, err)
		for _, level := range qr.Levels() {
			opts := render.DefaultOptions()
			opts.Level = level
			s, err := render.New(enc).Render(context.Background(), "WIFI:S:home;T:WPA;P:secret;;", opts, nil)
			require.NoError(t, err, name)
			assert.Equal(t, "WIFI:S:home;T:WPA;P:secret;;", decodeQR(t, s.Copy()), "%s/%s", name, level)
		}
	}
}

func TestRenderIdempotent(t *testing.T) {
	t.Parallel()

	p := render.New(nil)
	opts := render.DefaultOptions()
	opts.Level = qr.LevelH
	logo := solidLogo(color.RGBA{0xe1, 0x1d, 0x48, 0xff}, 50)

	a, err := p.Render(context.Background(), "https://example.com", opts, logo)
	require.NoError(t, err)
	b, err := p.Render(context.Background(), "https://example.com", opts, logo)
	require.NoError(t, err)

	assert.Equal(t, a.Copy().Pix, b.Copy().Pix)
}

func TestRenderWithLogo(t *testing.T) {
	t.Parallel()

	opts := render.DefaultOptions()
	opts.Level = qr.LevelH
	red := color.RGBA{0xff, 0, 0, 0xff}

	s, err := render.New(nil).Render(context.Background(), "https://example.com", opts, solidLogo(red, 64))
	require.NoError(t, err)
	img := s.Copy()

	l := render.LayoutLogo(opts.Width, opts.Width)
	centre := l.Logo.Min.Add(image.Pt(l.Logo.Dx()/2, l.Logo.Dy()/2))
	assert.Equal(t, red, img.RGBAAt(centre.X, centre.Y))

	// Midpoints of the plate border strip are white.
	white := color.RGBA{0xff, 0xff, 0xff, 0xff}
	assert.Equal(t, white, img.RGBAAt(centre.X, l.Plate.Min.Y+2))
	assert.Equal(t, white, img.RGBAAt(l.Plate.Min.X+2, centre.Y))
	assert.Equal(t, white, img.RGBAAt(centre.X, l.Plate.Max.Y-3))
	assert.Equal(t, white, img.RGBAAt(l.Plate.Max.X-3, centre.Y))

	assert.Equal(t, "https://example.com", decodeQR(t, img))
}

func TestLayoutLogo(t *testing.T) {
	t.Parallel()

	for width := render.MinWidth; width <= render.MaxWidth; width += render.WidthStep {
		l := render.LayoutLogo(width, width)

		side := l.Logo.Dx()
		assert.Equal(t, side, l.Logo.Dy())
		assert.InDelta(t, 0.22*float64(width), float64(side), 0.5)

		// Centred to within the rounding of one pixel.
		assert.LessOrEqual(t, abs(l.Logo.Min.X+l.Logo.Max.X-width), 1)
		assert.LessOrEqual(t, abs(l.Logo.Min.Y+l.Logo.Max.Y-width), 1)

		assert.Equal(t, l.Logo.Inset(-6), l.Plate)
		assert.LessOrEqual(t, float64(l.Plate.Dx()), 0.22*float64(width)+24)
		assert.True(t, l.Plate.In(image.Rect(0, 0, width, width)))

		assert.GreaterOrEqual(t, l.Radius, 6.0)
		assert.LessOrEqual(t, l.Radius, float64(l.Plate.Dx())/2)
	}

	l := render.LayoutLogo(320, 320)
	assert.Equal(t, image.Rect(125, 125, 195, 195), l.Logo)
	assert.Equal(t, 8.0, l.Radius)
}

func TestRenderEmptyTextIsSpace(t *testing.T) {
	t.Parallel()

	p := render.New(nil)
	opts := render.DefaultOptions()

	empty, err := p.Render(context.Background(), "", opts, nil)
	require.NoError(t, err)
	space, err := p.Render(context.Background(), " ", opts, nil)
	require.NoError(t, err)

	assert.Equal(t, space.Copy().Pix, empty.Copy().Pix)
	assert.Equal(t, " ", render.PayloadText(""))
	assert.Equal(t, "x", render.PayloadText("x"))
}

func TestRenderErrors(t *testing.T) {
	t.Parallel()

	p := render.New(nil)

	t.Run("width out of range", func(t *testing.T) {
		t.Parallel()
		opts := render.DefaultOptions()
		opts.Width = 100
		_, err := p.Render(context.Background(), "x", opts, nil)
		assert.True(t, errors.Is(err, qr.ErrEncoding))
	})

	t.Run("margin out of range", func(t *testing.T) {
		t.Parallel()
		opts := render.DefaultOptions()
		opts.Margin = 21
		_, err := p.Render(context.Background(), "x", opts, nil)
		assert.True(t, errors.Is(err, qr.ErrEncoding))
	})

	t.Run("data too long", func(t *testing.T) {
		t.Parallel()
		opts := render.DefaultOptions()
		opts.Level = qr.LevelH
		_, err := p.Render(context.Background(), strings.Repeat("x", 3000), opts, nil)
		assert.True(t, errors.Is(err, qr.ErrEncoding))
	})

	t.Run("surface too small for symbol", func(t *testing.T) {
		t.Parallel()
		opts := render.DefaultOptions()
		opts.Width = render.MinWidth
		opts.Margin = render.MaxMargin
		opts.Level = qr.LevelH
		_, err := p.Render(context.Background(), strings.Repeat("x", 500), opts, nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, qr.ErrEncoding))
		assert.Contains(t, err.Error(), "too small")
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := p.Render(ctx, "x", render.DefaultOptions(), nil)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("empty logo", func(t *testing.T) {
		t.Parallel()
		_, err := p.Render(context.Background(), "x", render.DefaultOptions(), image.NewRGBA(image.Rect(0, 0, 0, 0)))
		assert.Error(t, err)
	})
}

func TestPaintResizesSurface(t *testing.T) {
	t.Parallel()

	s := render.NewSurface(200)
	opts := render.DefaultOptions()
	require.NoError(t, render.New(nil).Paint(context.Background(), s, "abc", opts, nil))
	assert.Equal(t, opts.Width, s.Width())
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
