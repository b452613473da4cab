// Package export serializes rendered QR codes into downloadable artifacts.
package export

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrExport is returned when an artifact cannot be serialized.
var ErrExport = errors.New("failed to export QR code")

// Format is an export file format.
type Format string

const (
	PNG  Format = "png"
	SVG  Format = "svg"
	JPEG Format = "jpg"
)

// ParseFormat accepts png, svg, jpg and jpeg.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return PNG, nil
	case "svg":
		return SVG, nil
	case "jpg", "jpeg":
		return JPEG, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case PNG:
		return "image/png"
	case SVG:
		return "image/svg+xml"
	case JPEG:
		return "image/jpeg"
	}
	return "application/octet-stream"
}

// Filename returns qr-<unix millis>.<ext> for now.
func Filename(now time.Time, f Format) string {
	return fmt.Sprintf("qr-%d.%s", now.UnixMilli(), f)
}
