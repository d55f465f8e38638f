package pipeline

import (
	"bytes"
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"qrquicker/internal/domain"
	"qrquicker/internal/notify"
	"qrquicker/internal/qrcode"
	"qrquicker/internal/storage"
)

const (
	// TempFilePrefix and TempFileExt name every generated temp file.
	TempFilePrefix = "qr-code-output-"
	TempFileExt    = ".png"
	// TempFilePattern matches generated temp files inside the temp store.
	TempFilePattern = TempFilePrefix + "*" + TempFileExt
)

// GenerateConfig sizes and colors the generated image.
type GenerateConfig struct {
	Size    int
	Palette qrcode.Palette
}

// GenerateStep encodes the request text and writes the image to a private
// temp file.
type GenerateStep struct {
	encoder  qrcode.Encoder
	cfg      GenerateConfig
	temp     *storage.FileStore
	notifier domain.Notifier
	texts    *notify.Catalog
	logger   zerolog.Logger
	newID    func() string
}

func NewGenerateStep(encoder qrcode.Encoder, temp *storage.FileStore, notifier domain.Notifier, texts *notify.Catalog, cfg GenerateConfig, logger zerolog.Logger) *GenerateStep {
	if cfg.Size <= 0 {
		cfg.Size = 256
	}
	if cfg.Palette.Foreground == nil || cfg.Palette.Background == nil {
		cfg.Palette = qrcode.DefaultPalette
	}
	return &GenerateStep{
		encoder:  encoder,
		cfg:      cfg,
		temp:     temp,
		notifier: notifier,
		texts:    texts,
		logger:   logger.With().Str("component", "generate").Logger(),
		newID:    uuid.NewString,
	}
}

func (s *GenerateStep) Name() domain.StepName { return domain.StepGenerate }

// Generate posts SAVING, then encodes req.Text into a temp PNG. Every failure
// posts SAVE_FAILURE exactly once.
func (s *GenerateStep) Generate(ctx context.Context, req domain.CreationRequest) domain.GenerateResult {
	s.post(ctx, domain.SlotSaving, req.Locale)

	if req.Text == "" {
		return s.fail(ctx, req, domain.FailureEmptyText, domain.ErrEmptyText)
	}

	matrix, err := s.encoder.Encode(req.Text, s.cfg.Size, s.cfg.Size)
	if err != nil {
		return s.fail(ctx, req, domain.FailureEncode, fmt.Errorf("%w: %v", domain.ErrEncode, err))
	}
	img := qrcode.Rasterize(matrix, s.cfg.Palette)

	var buf bytes.Buffer
	if err := qrcode.EncodePNG(&buf, img); err != nil {
		return s.fail(ctx, req, domain.FailureTempWrite, fmt.Errorf("%w: %v", domain.ErrTempWrite, err))
	}

	key, err := s.temp.Write(ctx, TempFilePrefix+s.newID()+TempFileExt, buf.Bytes())
	if err != nil {
		return s.fail(ctx, req, domain.FailureTempWrite, fmt.Errorf("%w: %v", domain.ErrTempWrite, err))
	}
	ref, err := s.temp.URI(key)
	if err != nil {
		return s.fail(ctx, req, domain.FailureTempWrite, fmt.Errorf("%w: %v", domain.ErrTempWrite, err))
	}

	s.logger.Info().Str("job_id", req.ID).Str("path", key).Int("bytes", buf.Len()).Msg("generate: temp file written")
	return domain.GenerateSucceeded(ref)
}

// Run adapts Generate to the chain payload.
func (s *GenerateStep) Run(ctx context.Context, in Data) StepOutcome {
	res := s.Generate(ctx, requestFromData(in))
	if !res.Succeeded() {
		return StepOutcome{Status: res.Status, Failure: res.Failure, Err: res.Err}
	}
	return StepOutcome{Status: res.Status, Output: Data{KeyQrCodeOutput: res.FileRef}}
}

// ReportFailure posts SAVE_FAILURE for a run that could not report itself.
func (s *GenerateStep) ReportFailure(ctx context.Context, in Data) {
	s.post(ctx, domain.SlotSaveFailure, in.Get(KeyLocale))
}

func (s *GenerateStep) fail(ctx context.Context, req domain.CreationRequest, kind domain.FailureKind, err error) domain.GenerateResult {
	s.logger.Warn().Err(err).Str("job_id", req.ID).Str("failure", string(kind)).Msg("generate: failed")
	s.post(ctx, domain.SlotSaveFailure, req.Locale)
	return domain.GenerateFailed(kind, err)
}

func (s *GenerateStep) post(ctx context.Context, slot domain.Slot, locale string) {
	postNotice(ctx, s.notifier, s.logger, s.texts.Event(slot, locale))
}

func requestFromData(in Data) domain.CreationRequest {
	return domain.CreationRequest{
		ID:     in.Get(KeyChainID),
		Text:   in.Get(KeyTextInput),
		Locale: in.Get(KeyLocale),
	}
}
