package qrcode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strconv"
	"strings"

	// Formats accepted by DecodeImage besides PNG.
	_ "image/gif"
	_ "image/jpeg"
)

// MIMEType is the format every rendered code is stored in.
const MIMEType = "image/png"

// Palette holds the dark and light module colors.
type Palette struct {
	Foreground color.Color
	Background color.Color
}

// DefaultPalette is dark grey on white.
var DefaultPalette = Palette{
	Foreground: color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 0xff},
	Background: color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
}

// ParsePalette builds a palette from two hex colors.
func ParsePalette(fg, bg string) (Palette, error) {
	f, err := ParseHexColor(fg)
	if err != nil {
		return Palette{}, fmt.Errorf("foreground: %w", err)
	}
	b, err := ParseHexColor(bg)
	if err != nil {
		return Palette{}, fmt.Errorf("background: %w", err)
	}
	return Palette{Foreground: f, Background: b}, nil
}

// ParseHexColor accepts #RRGGBB or #AARRGGBB.
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	switch len(s) {
	case 6:
		s = "ff" + s
	case 8:
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.NRGBA{
		A: uint8(v >> 24),
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
	}, nil
}

// Rasterize maps each matrix cell to exactly one pixel.
func Rasterize(m *Matrix, p Palette) *image.Paletted {
	if p.Foreground == nil || p.Background == nil {
		p = DefaultPalette
	}
	img := image.NewPaletted(image.Rect(0, 0, m.Width(), m.Height()), color.Palette{p.Background, p.Foreground})
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			if m.Get(x, y) {
				img.SetColorIndex(x, y, 1)
			}
		}
	}
	return img
}

// EncodePNG writes img losslessly.
func EncodePNG(w io.Writer, img image.Image) error {
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	return enc.Encode(w, img)
}

// DecodePNG reads a PNG image.
func DecodePNG(r io.Reader) (image.Image, error) {
	return png.Decode(r)
}

// DecodeImage reads a PNG, JPEG or GIF image.
func DecodeImage(r io.Reader) (image.Image, error) {
	img, _, err := image.Decode(r)
	return img, err
}

// DefaultMaxPixels bounds the area of images handed to DecodeImageLimited.
const DefaultMaxPixels = 4096 * 4096

// ErrImageTooLarge is returned when an image header declares more pixels
// than allowed.
var ErrImageTooLarge = errors.New("image too large")

// DecodeImageLimited reads the image header first and refuses images whose
// declared area exceeds maxPixels before any pixel buffer is allocated.
func DecodeImageLimited(r io.Reader, maxPixels int) (image.Image, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}
	var head bytes.Buffer
	cfg, _, err := image.DecodeConfig(io.TeeReader(r, &head))
	if err != nil {
		return nil, err
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	if int64(cfg.Width)*int64(cfg.Height) > int64(maxPixels) {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrImageTooLarge, cfg.Width, cfg.Height, maxPixels)
	}
	return DecodeImage(io.MultiReader(&head, r))
}

// Renderer produces QR images of a fixed size and palette.
type Renderer struct {
	Encoder Encoder
	Palette Palette
	Size    int
}

// Render encodes text and rasterizes the result.
func (r *Renderer) Render(text string) (image.Image, error) {
	m, err := r.Encoder.Encode(text, r.Size, r.Size)
	if err != nil {
		return nil, err
	}
	return Rasterize(m, r.Palette), nil
}

// RenderPNG renders text and returns the PNG bytes.
func (r *Renderer) RenderPNG(text string) ([]byte, error) {
	img, err := r.Render(text)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
