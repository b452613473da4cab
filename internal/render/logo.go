package render

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"github.com/nfnt/resize"
)

const (
	logoScale    = 0.22
	platePadding = 6
	minRadius    = 6
	radiusScale  = 0.12
)

// LogoLayout describes where the logo and its backing plate go.
type LogoLayout struct {
	// Logo is the square the logo image is scaled into.
	Logo image.Rectangle
	// Plate is the white backing square, platePadding larger on every side.
	Plate image.Rectangle
	// Radius is the plate corner radius after clamping to half its side.
	Radius float64
}

// LayoutLogo computes the centred logo placement on a width x height surface.
func LayoutLogo(width, height int) LogoLayout {
	side := int(math.Floor(logoScale*float64(min(width, height)) + 0.5))
	x := int(math.Floor(float64(width-side)/2 + 0.5))
	y := int(math.Floor(float64(height-side)/2 + 0.5))

	logo := image.Rect(x, y, x+side, y+side)
	plate := logo.Inset(-platePadding)

	radius := float64(max(minRadius, int(math.Floor(float64(side)*radiusScale))))
	radius = math.Min(radius, math.Min(float64(plate.Dx())/2, float64(plate.Dy())/2))

	return LogoLayout{Logo: logo, Plate: plate, Radius: radius}
}

// overlayLogo draws the rounded white plate and the scaled logo over img.
func overlayLogo(img *image.RGBA, logo image.Image) error {
	if logo.Bounds().Empty() {
		return errors.New("logo image is empty")
	}

	b := img.Bounds()
	l := LayoutLogo(b.Dx(), b.Dy())

	dc := gg.NewContextForRGBA(img)
	dc.DrawRoundedRectangle(
		float64(l.Plate.Min.X), float64(l.Plate.Min.Y),
		float64(l.Plate.Dx()), float64(l.Plate.Dy()),
		l.Radius,
	)
	dc.SetColor(color.White)
	dc.Fill()

	scaled := resize.Resize(uint(l.Logo.Dx()), uint(l.Logo.Dy()), logo, resize.Bilinear)
	dc.DrawImage(scaled, l.Logo.Min.X, l.Logo.Min.Y)
	return nil
}
