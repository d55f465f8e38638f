// Package qrcode turns text into QR code images and back, on top of the
// gozxing port of ZXing.
package qrcode

import (
	"fmt"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"

	"qrquicker/internal/domain"
)

// Matrix is a dense grid of modules where true means a dark pixel.
type Matrix struct {
	width  int
	height int
	bits   []bool
}

// NewMatrix allocates an all-light matrix.
func NewMatrix(width, height int) *Matrix {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Matrix{width: width, height: height, bits: make([]bool, width*height)}
}

func (m *Matrix) Width() int  { return m.width }
func (m *Matrix) Height() int { return m.height }

// Get reports whether (x, y) is dark. Out of range coordinates are light.
func (m *Matrix) Get(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.bits[y*m.width+x]
}

func (m *Matrix) Set(x, y int, dark bool) {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return
	}
	m.bits[y*m.width+x] = dark
}

// Encoder converts text into a matrix of the requested size.
type Encoder interface {
	Encode(text string, width, height int) (*Matrix, error)
}

// ZXingEncoder encodes QR symbols with gozxing. The returned matrix already
// includes the quiet zone and is scaled to the requested size.
type ZXingEncoder struct {
	CharacterSet string
}

// NewEncoder returns a UTF-8 QR encoder.
func NewEncoder() *ZXingEncoder {
	return &ZXingEncoder{CharacterSet: "UTF-8"}
}

func (e *ZXingEncoder) Encode(text string, width, height int) (*Matrix, error) {
	if text == "" {
		return nil, domain.ErrEmptyText
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", domain.ErrEncode, width, height)
	}
	hints := map[gozxing.EncodeHintType]interface{}{}
	if e != nil && e.CharacterSet != "" {
		hints[gozxing.EncodeHintType_CHARACTER_SET] = e.CharacterSet
	}
	bm, err := zxqr.NewQRCodeWriter().Encode(text, gozxing.BarcodeFormat_QR_CODE, width, height, hints)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEncode, err)
	}
	if bm == nil {
		return nil, fmt.Errorf("%w: empty matrix", domain.ErrEncode)
	}
	m := NewMatrix(bm.GetWidth(), bm.GetHeight())
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			m.bits[y*m.width+x] = bm.Get(x, y)
		}
	}
	return m, nil
}
