// Package render paints QR matrices onto pixel surfaces and composites the
// optional centre logo.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/cristianadrielbraun/qrcreator/internal/qr"
)

// Pipeline draws text onto surfaces with a fixed encoder.
type Pipeline struct {
	enc qr.Encoder
}

// New returns a pipeline using enc, or the default encoder when enc is nil.
func New(enc qr.Encoder) *Pipeline {
	if enc == nil {
		enc = qr.Default()
	}
	return &Pipeline{enc: enc}
}

// Encoder is the backend the pipeline encodes with.
func (p *Pipeline) Encoder() qr.Encoder { return p.enc }

// PayloadText is what actually gets encoded for the user's text. The encoder
// is never handed an empty string.
func PayloadText(text string) string {
	if text == "" {
		return " "
	}
	return text
}

// Matrix validates opts and encodes text.
func (p *Pipeline) Matrix(text string, opts Options) (*qr.Matrix, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	m, err := p.enc.Encode(PayloadText(text), opts.Level)
	if err != nil {
		return nil, err
	}
	if n := m.Size() + 2*opts.Margin; opts.Width < n {
		return nil, errors.Join(qr.ErrEncoding,
			fmt.Errorf("size %dpx is too small for a %d module symbol with margin %d, need at least %dpx", opts.Width, m.Size(), opts.Margin, n))
	}
	return m, nil
}

// Render allocates a new surface and paints into it.
func (p *Pipeline) Render(ctx context.Context, text string, opts Options, logo image.Image) (*Surface, error) {
	s := NewSurface(opts.Width)
	if err := p.Paint(ctx, s, text, opts, logo); err != nil {
		return nil, err
	}
	return s, nil
}

// Paint draws text onto dst, resizing it to opts.Width first. A failed or
// cancelled pass leaves dst in an unspecified state.
func (p *Pipeline) Paint(ctx context.Context, dst *Surface, text string, opts Options, logo image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m, err := p.Matrix(text, opts)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	return dst.edit(opts.Width, func(img *image.RGBA) error {
		paintMatrix(img, m, opts)
		if logo == nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		return overlayLogo(img, logo)
	})
}

// paintMatrix fills img with the symbol plus quiet zone. With n total modules
// per side, pixel p falls into module floor(p*n/width) - margin.
func paintMatrix(img *image.RGBA, m *qr.Matrix, opts Options) {
	width := img.Bounds().Dx()
	n := m.Size() + 2*opts.Margin

	modules := make([]int, width)
	for p := range modules {
		modules[p] = p*n/width - opts.Margin
	}

	dark := color.RGBAModel.Convert(opts.Dark).(color.RGBA)
	light := color.RGBAModel.Convert(opts.Light).(color.RGBA)

	for y := 0; y < width; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+width*4]
		my := modules[y]
		for x := 0; x < width; x++ {
			c := light
			if m.Dark(modules[x], my) {
				c = dark
			}
			i := x * 4
			row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, c.A
		}
	}
}
