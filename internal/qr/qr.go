// Package qr adapts third-party QR encoders to a single module matrix type.
//
// The symbol encoding itself (segmentation, Reed-Solomon, masking) is done by
// the upstream libraries. This package only picks a backend, maps the
// error-correction level and copies the resulting modules out.
package qr

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEncoding is returned when text cannot be encoded with the given options.
var ErrEncoding = errors.New("failed to encode QR code")

// Level is a QR error-correction level.
type Level uint8

const (
	LevelL Level = iota + 1
	LevelM
	LevelQ
	LevelH
)

// ParseLevel accepts L, M, Q or H (case-insensitive).
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "L":
		return LevelL, nil
	case "M":
		return LevelM, nil
	case "Q":
		return LevelQ, nil
	case "H":
		return LevelH, nil
	}
	return 0, fmt.Errorf("unknown error correction level %q", s)
}

func (l Level) String() string {
	switch l {
	case LevelL:
		return "L"
	case LevelM:
		return "M"
	case LevelQ:
		return "Q"
	case LevelH:
		return "H"
	}
	return fmt.Sprintf("Level(%d)", uint8(l))
}

// Label is the human readable name shown in the level selector.
func (l Level) Label() string {
	switch l {
	case LevelL:
		return "Low"
	case LevelM:
		return "Medium"
	case LevelQ:
		return "Quartile"
	case LevelH:
		return "High"
	}
	return l.String()
}

// Levels lists every level in ascending redundancy.
func Levels() []Level { return []Level{LevelL, LevelM, LevelQ, LevelH} }

// Matrix is a square grid of modules without the quiet zone.
type Matrix struct {
	size int
	bits []bool
}

// NewMatrix allocates an all-light matrix of size x size modules.
func NewMatrix(size int) *Matrix {
	return &Matrix{size: size, bits: make([]bool, size*size)}
}

// Size is the number of modules per side.
func (m *Matrix) Size() int { return m.size }

// Dark reports whether the module at (x, y) is set. Out of range is light.
func (m *Matrix) Dark(x, y int) bool {
	if x < 0 || y < 0 || x >= m.size || y >= m.size {
		return false
	}
	return m.bits[y*m.size+x]
}

// Set marks the module at (x, y).
func (m *Matrix) Set(x, y int, dark bool) {
	if x < 0 || y < 0 || x >= m.size || y >= m.size {
		return
	}
	m.bits[y*m.size+x] = dark
}

// Encoder turns text into a QR module matrix.
type Encoder interface {
	Encode(text string, level Level) (*Matrix, error)
}

// Backend names accepted by NewEncoder.
const (
	BackendYeqown    = "yeqown"
	BackendSkip2     = "skip2"
	BackendBoombuler = "boombuler"
)

// Backends lists the supported encoder backends, default first.
func Backends() []string { return []string{BackendYeqown, BackendSkip2, BackendBoombuler} }

// NewEncoder returns the encoder registered under name. An empty name selects
// the default backend.
func NewEncoder(name string) (Encoder, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendYeqown:
		return Yeqown{}, nil
	case BackendSkip2:
		return Skip2{}, nil
	case BackendBoombuler:
		return Boombuler{}, nil
	}
	return nil, fmt.Errorf("unknown QR encoder %q (want one of %s)", name, strings.Join(Backends(), ", "))
}

// Default is the encoder used when none is configured.
func Default() Encoder { return Yeqown{} }
