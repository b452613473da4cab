package session

import (
	"github.com/cristianadrielbraun/qrcreator/internal/qr"
	"github.com/cristianadrielbraun/qrcreator/internal/render"
)

// Form is the raw state of the input controls.
type Form struct {
	Text       string `json:"text" form:"text"`
	Size       int    `json:"size" form:"size"`
	Margin     int    `json:"margin" form:"margin"`
	Level      string `json:"ecLevel" form:"ecLevel"`
	Foreground string `json:"fg" form:"fg"`
	Background string `json:"bg" form:"bg"`
}

// DefaultForm is the state the page opens with.
func DefaultForm() Form {
	d := render.DefaultOptions()
	return Form{
		Text:       "https://example.com",
		Size:       d.Width,
		Margin:     d.Margin,
		Level:      d.Level.String(),
		Foreground: render.FormatColor(d.Dark),
		Background: render.FormatColor(d.Light),
	}
}

// Normalize replaces a zero size with the default and clamps size and margin
// into the accepted ranges. Invalid colors and levels fall back to defaults.
// A zero margin is a valid choice and is kept.
func (f Form) Normalize() Form {
	d := DefaultForm()

	if f.Size == 0 {
		f.Size = d.Size
	}
	f.Size = clamp(f.Size, render.MinWidth, render.MaxWidth)
	f.Margin = clamp(f.Margin, render.MinMargin, render.MaxMargin)

	if l, err := qr.ParseLevel(f.Level); err == nil {
		f.Level = l.String()
	} else {
		f.Level = d.Level
	}

	dopts := render.DefaultOptions()
	f.Foreground = render.FormatColor(render.ParseColorOr(f.Foreground, dopts.Dark))
	f.Background = render.FormatColor(render.ParseColorOr(f.Background, dopts.Light))
	return f
}

// Options derives the encoding options from a normalized form.
func (f Form) Options() render.Options {
	n := f.Normalize()
	level, _ := qr.ParseLevel(n.Level)
	d := render.DefaultOptions()
	return render.Options{
		Width:  n.Size,
		Margin: n.Margin,
		Level:  level,
		Dark:   render.ParseColorOr(n.Foreground, d.Dark),
		Light:  render.ParseColorOr(n.Background, d.Light),
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
