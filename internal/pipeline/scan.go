package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"qrquicker/internal/domain"
	"qrquicker/internal/metrics"
	"qrquicker/internal/notify"
	"qrquicker/internal/qrcode"
)

// ScanResult is the text found in a picked image. Weblink is set only for
// https URLs, which clients may open directly.
type ScanResult struct {
	Text    string `json:"text"`
	Weblink string `json:"weblink,omitempty"`
}

// Scanner decodes QR codes from user supplied images.
type Scanner struct {
	decoder  qrcode.Decoder
	notifier domain.Notifier
	texts    *notify.Catalog
	logger   zerolog.Logger

	maxPixels int
}

// NewScanner builds a Scanner. maxPixels caps the declared width times
// height of accepted images; zero or less uses qrcode.DefaultMaxPixels.
func NewScanner(decoder qrcode.Decoder, notifier domain.Notifier, texts *notify.Catalog, maxPixels int, logger zerolog.Logger) *Scanner {
	if maxPixels <= 0 {
		maxPixels = qrcode.DefaultMaxPixels
	}
	return &Scanner{
		decoder:   decoder,
		notifier:  notifier,
		texts:     texts,
		logger:    logger.With().Str("component", "scan").Logger(),
		maxPixels: maxPixels,
	}
}

// Scan reads an image from r and decodes it. Unreadable images, oversized
// images and images without a code all post DECODE_FAILURE and return an
// error wrapping domain.ErrDecode.
func (s *Scanner) Scan(ctx context.Context, r io.Reader, locale string) (ScanResult, error) {
	img, err := qrcode.DecodeImageLimited(r, s.maxPixels)
	if err != nil {
		return ScanResult{}, s.fail(ctx, locale, fmt.Errorf("%w: read image: %w", domain.ErrDecode, err))
	}
	text, err := s.decoder.Decode(img)
	if err != nil {
		return ScanResult{}, s.fail(ctx, locale, err)
	}

	metrics.DecodeTotal.WithLabelValues("succeeded").Inc()
	res := ScanResult{Text: text}
	if strings.HasPrefix(text, "https://") {
		res.Weblink = text
	}
	s.logger.Debug().Int("length", len(text)).Bool("weblink", res.Weblink != "").Msg("scan: decoded")
	return res, nil
}

func (s *Scanner) fail(ctx context.Context, locale string, err error) error {
	metrics.DecodeTotal.WithLabelValues("failed").Inc()
	s.logger.Info().Err(err).Msg("scan: no code detected")
	postNotice(ctx, s.notifier, s.logger, s.texts.Event(domain.SlotDecodeFailure, locale))
	return err
}
