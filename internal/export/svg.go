package export

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"strings"

	"github.com/cristianadrielbraun/qrcreator/internal/qr"
	"github.com/cristianadrielbraun/qrcreator/internal/render"
)

// Vector re-encodes text with opts and returns the vector document. It does not
// rasterize an existing surface, so the output stays sharp at any scale.
func Vector(p *render.Pipeline, text string, opts render.Options) ([]byte, error) {
	m, err := p.Matrix(text, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := WriteSVG(&buf, m, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSVG writes m as an SVG document. The viewBox is measured in modules,
// quiet zone included, and the document is opts.Width pixels wide.
func WriteSVG(w io.Writer, m *qr.Matrix, opts render.Options) error {
	n := m.Size() + 2*opts.Margin

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`,
		opts.Width, opts.Width, n, n))

	if opts.Light.A > 0 {
		sb.WriteString(fmt.Sprintf(`<path%s d="M0 0h%dv%dH0z"/>`, fillAttrs(opts.Light), n, n))
	}

	var d strings.Builder
	for y := 0; y < m.Size(); y++ {
		for x := 0; x < m.Size(); {
			if !m.Dark(x, y) {
				x++
				continue
			}
			run := 1
			for x+run < m.Size() && m.Dark(x+run, y) {
				run++
			}
			d.WriteString(fmt.Sprintf("M%d %dh%dv1h-%dz", x+opts.Margin, y+opts.Margin, run, run))
			x += run
		}
	}
	if d.Len() > 0 && opts.Dark.A > 0 {
		sb.WriteString(fmt.Sprintf(`<path%s d="%s"/>`, fillAttrs(opts.Dark), d.String()))
	}

	sb.WriteString("</svg>\n")

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return errors.Join(ErrExport, err)
	}
	return nil
}

func fillAttrs(c color.NRGBA) string {
	attrs := fmt.Sprintf(` fill="#%02x%02x%02x"`, c.R, c.G, c.B)
	if c.A < 0xff {
		attrs += fmt.Sprintf(` fill-opacity="%.2f"`, float64(c.A)/255)
	}
	return attrs
}
