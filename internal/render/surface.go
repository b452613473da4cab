package render

import (
	"image"
	"image/draw"
	"sync"
)

// Surface is a square pixel buffer owned by exactly one writer at a time.
// A render pass mutates it in place; readers take a Copy.
type Surface struct {
	mu  sync.RWMutex
	img *image.RGBA
}

// NewSurface allocates a transparent width x width surface.
func NewSurface(width int) *Surface {
	return &Surface{img: image.NewRGBA(image.Rect(0, 0, width, width))}
}

// Width is the side length in pixels.
func (s *Surface) Width() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.img.Bounds().Dx()
}

// Copy returns a snapshot of the current pixels.
func (s *Surface) Copy() *image.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := image.NewRGBA(s.img.Bounds())
	draw.Draw(out, out.Bounds(), s.img, s.img.Bounds().Min, draw.Src)
	return out
}

// Replace swaps the pixels with src's. src must not be written afterwards.
func (s *Surface) Replace(src *Surface) {
	if src == s {
		return
	}
	src.mu.RLock()
	img := src.img
	src.mu.RUnlock()

	s.mu.Lock()
	s.img = img
	s.mu.Unlock()
}

// edit runs fn with exclusive access, resizing first when width differs.
func (s *Surface) edit(width int, fn func(img *image.RGBA) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.img == nil || s.img.Bounds().Dx() != width || s.img.Bounds().Dy() != width {
		s.img = image.NewRGBA(image.Rect(0, 0, width, width))
	}
	return fn(s.img)
}
