package render_test

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrcreator/internal/render"
)

func TestParseColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want color.NRGBA
	}{
		{"#111827", color.NRGBA{0x11, 0x18, 0x27, 0xff}},
		{"FFFFFF", color.NRGBA{0xff, 0xff, 0xff, 0xff}},
		{"#abc", color.NRGBA{0xaa, 0xbb, 0xcc, 0xff}},
		{"#11182780", color.NRGBA{0x11, 0x18, 0x27, 0x80}},
		{"transparent", color.NRGBA{}},
		{" TRANSPARENT ", color.NRGBA{}},
	}
	for _, tt := range tests {
		got, err := render.ParseColor(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "#12", "#12345", "#ggggggg", "blue"} {
		_, err := render.ParseColor(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseColorOr(t *testing.T) {
	t.Parallel()

	def := color.NRGBA{1, 2, 3, 255}
	assert.Equal(t, def, render.ParseColorOr("", def))
	assert.Equal(t, def, render.ParseColorOr("nope", def))
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, render.ParseColorOr("#000", def))
}

func TestFormatColor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "#111827", render.FormatColor(color.NRGBA{0x11, 0x18, 0x27, 0xff}))
	assert.Equal(t, "#11182780", render.FormatColor(color.NRGBA{0x11, 0x18, 0x27, 0x80}))
}

func TestOptionsValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, render.DefaultOptions().Validate())

	o := render.DefaultOptions()
	o.Level = 0
	assert.Error(t, o.Validate())

	o = render.DefaultOptions()
	o.Width = render.MaxWidth + 1
	assert.Error(t, o.Validate())

	o = render.DefaultOptions()
	o.Margin = -1
	assert.Error(t, o.Validate())
}
