package render

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/cristianadrielbraun/qrcreator/internal/qr"
)

// Input limits accepted by the form.
const (
	MinWidth   = 120
	MaxWidth   = 1024
	WidthStep  = 8
	MinMargin  = 0
	MaxMargin  = 20
	MarginStep = 1
)

// Options is the derived encoding options value handed to the pipeline.
// Margin is the quiet zone width in modules.
type Options struct {
	Width  int
	Margin int
	Level  qr.Level
	Dark   color.NRGBA
	Light  color.NRGBA
}

// DefaultOptions matches the initial form state.
func DefaultOptions() Options {
	return Options{
		Width:  320,
		Margin: 4,
		Level:  qr.LevelM,
		Dark:   color.NRGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xff},
		Light:  color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
}

// Validate reports options the pipeline cannot render.
func (o Options) Validate() error {
	if o.Width < MinWidth || o.Width > MaxWidth {
		return errors.Join(qr.ErrEncoding, fmt.Errorf("size must be between %d and %d, got %d", MinWidth, MaxWidth, o.Width))
	}
	if o.Margin < MinMargin || o.Margin > MaxMargin {
		return errors.Join(qr.ErrEncoding, fmt.Errorf("margin must be between %d and %d, got %d", MinMargin, MaxMargin, o.Margin))
	}
	if _, err := qr.ParseLevel(o.Level.String()); err != nil {
		return errors.Join(qr.ErrEncoding, err)
	}
	return nil
}

// ParseColor parses #rgb, #rrggbb, #rrggbbaa or "transparent".
func ParseColor(s string) (color.NRGBA, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "transparent" {
		return color.NRGBA{}, nil
	}
	v = strings.TrimPrefix(v, "#")

	switch len(v) {
	case 3:
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]}) + "ff"
	case 6:
		v += "ff"
	case 8:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}

	n, err := strconv.ParseUint(v, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	return color.NRGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}

// ParseColorOr returns def when s is empty or malformed.
func ParseColorOr(s string, def color.NRGBA) color.NRGBA {
	if strings.TrimSpace(s) == "" {
		return def
	}
	c, err := ParseColor(s)
	if err != nil {
		return def
	}
	return c
}

// FormatColor renders c as #rrggbb, or #rrggbbaa when not opaque.
func FormatColor(c color.NRGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
