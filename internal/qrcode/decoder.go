package qrcode

import (
	"fmt"
	"image"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"

	"qrquicker/internal/domain"
)

// Decoder extracts the text of a QR code found in an image.
type Decoder interface {
	Decode(img image.Image) (string, error)
}

// ZXingDecoder decodes with gozxing.
type ZXingDecoder struct{}

func NewDecoder() *ZXingDecoder {
	return &ZXingDecoder{}
}

func (ZXingDecoder) Decode(img image.Image) (string, error) {
	if img == nil {
		return "", fmt.Errorf("%w: nil image", domain.ErrDecode)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := zxqr.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDecode, err)
	}
	text := result.GetText()
	if text == "" {
		return "", fmt.Errorf("%w: empty result", domain.ErrDecode)
	}
	return text, nil
}
