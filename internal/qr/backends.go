package qr

import (
	"errors"
	"fmt"

	"github.com/boombuler/barcode"
	bqr "github.com/boombuler/barcode/qr"
	skipqrcode "github.com/skip2/go-qrcode"
	"github.com/yeqown/go-qrcode/v2"
)

// Yeqown encodes with github.com/yeqown/go-qrcode/v2.
type Yeqown struct{}

func (Yeqown) Encode(text string, level Level) (*Matrix, error) {
	var opt qrcode.EncodeOption
	switch level {
	case LevelL:
		opt = qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionLow)
	case LevelM:
		opt = qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionMedium)
	case LevelQ:
		opt = qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionQuart)
	case LevelH:
		opt = qrcode.WithErrorCorrectionLevel(qrcode.ErrorCorrectionHighest)
	default:
		return nil, errors.Join(ErrEncoding, fmt.Errorf("unsupported level %v", level))
	}

	qrc, err := qrcode.NewWith(text, opt)
	if err != nil {
		return nil, errors.Join(ErrEncoding, err)
	}

	w := &matrixWriter{}
	if err := qrc.Save(w); err != nil {
		return nil, errors.Join(ErrEncoding, err)
	}
	if w.mat == nil {
		return nil, errors.Join(ErrEncoding, errors.New("encoder produced no matrix"))
	}
	return w.mat, nil
}

// matrixWriter implements qrcode.Writer and copies the symbol modules.
type matrixWriter struct {
	mat *Matrix
}

func (w *matrixWriter) Write(mat qrcode.Matrix) error {
	if mat.Width() <= 0 || mat.Width() != mat.Height() {
		return fmt.Errorf("invalid QR matrix dimension %dx%d", mat.Width(), mat.Height())
	}
	m := NewMatrix(mat.Width())
	mat.Iterate(qrcode.IterDirection_ROW, func(x, y int, v qrcode.QRValue) {
		m.Set(x, y, v.IsSet())
	})
	w.mat = m
	return nil
}

func (w *matrixWriter) Close() error { return nil }

// Skip2 encodes with github.com/skip2/go-qrcode.
type Skip2 struct{}

func (Skip2) Encode(text string, level Level) (*Matrix, error) {
	var rl skipqrcode.RecoveryLevel
	switch level {
	case LevelL:
		rl = skipqrcode.Low
	case LevelM:
		rl = skipqrcode.Medium
	case LevelQ:
		rl = skipqrcode.High
	case LevelH:
		rl = skipqrcode.Highest
	default:
		return nil, errors.Join(ErrEncoding, fmt.Errorf("unsupported level %v", level))
	}

	q, err := skipqrcode.New(text, rl)
	if err != nil {
		return nil, errors.Join(ErrEncoding, err)
	}
	q.DisableBorder = true

	bitmap := q.Bitmap()
	m := NewMatrix(len(bitmap))
	for y, row := range bitmap {
		for x, dark := range row {
			m.Set(x, y, dark)
		}
	}
	return m, nil
}

// Boombuler encodes with github.com/boombuler/barcode/qr.
type Boombuler struct{}

func (Boombuler) Encode(text string, level Level) (*Matrix, error) {
	var ecl bqr.ErrorCorrectionLevel
	switch level {
	case LevelL:
		ecl = bqr.L
	case LevelM:
		ecl = bqr.M
	case LevelQ:
		ecl = bqr.Q
	case LevelH:
		ecl = bqr.H
	default:
		return nil, errors.Join(ErrEncoding, fmt.Errorf("unsupported level %v", level))
	}

	code, err := bqr.Encode(text, ecl, bqr.Auto)
	if err != nil {
		return nil, errors.Join(ErrEncoding, err)
	}
	return fromBarcode(code), nil
}

func fromBarcode(code barcode.Barcode) *Matrix {
	b := code.Bounds()
	m := NewMatrix(b.Dx())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, _, _, _ := code.At(b.Min.X+x, b.Min.Y+y).RGBA()
			m.Set(x, y, r < 0x8000)
		}
	}
	return m
}
