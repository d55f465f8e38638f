package pipeline

import (
	"context"
	"fmt"
	"image"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"qrquicker/internal/domain"
	"qrquicker/internal/notify"
	"qrquicker/internal/qrcode"
	"qrquicker/internal/storage"
)

// TitleLayout formats the timestamp embedded in gallery titles.
const TitleLayout = "2006.01.02 at 15:04:05 MST"

// Publisher is the shared store the save step writes into.
type Publisher interface {
	Insert(ctx context.Context, meta domain.EntryMetadata) (*domain.GalleryEntry, error)
	OpenWriter(ctx context.Context, entry *domain.GalleryEntry) (io.WriteCloser, error)
	Discard(ctx context.Context, entry *domain.GalleryEntry) error
}

// SaveStep reads the temp image back and publishes it to the gallery.
type SaveStep struct {
	temp        *storage.FileStore
	gallery     Publisher
	notifier    domain.Notifier
	texts       *notify.Catalog
	titlePrefix string
	logger      zerolog.Logger
	now         func() time.Time
}

func NewSaveStep(temp *storage.FileStore, gallery Publisher, notifier domain.Notifier, texts *notify.Catalog, titlePrefix string, logger zerolog.Logger) *SaveStep {
	return &SaveStep{
		temp:        temp,
		gallery:     gallery,
		notifier:    notifier,
		texts:       texts,
		titlePrefix: titlePrefix,
		logger:      logger.With().Str("component", "save").Logger(),
		now:         time.Now,
	}
}

func (s *SaveStep) Name() domain.StepName { return domain.StepSave }

// FormatTitle returns "<prefix> <timestamp>".
func FormatTitle(prefix string, t time.Time) string {
	return strings.TrimSpace(prefix + " " + t.Format(TitleLayout))
}

// Save publishes the image behind fileRef. It posts exactly one of
// SAVE_SUCCESS or SAVE_FAILURE.
func (s *SaveStep) Save(ctx context.Context, jobID, fileRef, locale string) domain.SaveResult {
	rc, err := s.temp.OpenURI(ctx, fileRef)
	if err != nil {
		return s.fail(ctx, jobID, locale, domain.FailureTempRead, fmt.Errorf("%w: %v", domain.ErrTempRead, err))
	}
	img, err := qrcode.DecodePNG(rc)
	_ = rc.Close()
	if err != nil {
		return s.fail(ctx, jobID, locale, domain.FailureTempRead, fmt.Errorf("%w: %v", domain.ErrTempRead, err))
	}

	now := s.now()
	title := FormatTitle(s.titlePrefix, now)
	entry, err := s.gallery.Insert(ctx, domain.EntryMetadata{
		DisplayName: title + ".png",
		Title:       title,
		MIME:        qrcode.MIMEType,
		DateAdded:   now.Unix(),
		DateTaken:   now.UnixMilli(),
	})
	if err != nil {
		return s.fail(ctx, jobID, locale, domain.FailureStore, fmt.Errorf("%w: %v", domain.ErrStoreInsert, err))
	}
	if entry == nil {
		return s.fail(ctx, jobID, locale, domain.FailureStore, fmt.Errorf("%w: no entry returned", domain.ErrStoreInsert))
	}

	if err := s.write(ctx, entry, img); err != nil {
		if derr := s.gallery.Discard(ctx, entry); derr != nil {
			s.logger.Warn().Err(derr).Str("job_id", jobID).Str("entry_id", entry.ID).Msg("save: discard failed")
		}
		return s.fail(ctx, jobID, locale, domain.FailureStore, fmt.Errorf("%w: %v", domain.ErrStoreWrite, err))
	}

	evt := s.texts.Event(domain.SlotSaveSuccess, locale)
	evt.Action = domain.Action{Kind: domain.ActionOpenGallery, URI: entry.URI}
	postNotice(ctx, s.notifier, s.logger, evt)

	s.logger.Info().Str("job_id", jobID).Str("entry_id", entry.ID).Str("uri", entry.URI).Msg("save: published")
	return domain.SaveSucceeded(entry.ID, entry.URI)
}

func (s *SaveStep) write(ctx context.Context, entry *domain.GalleryEntry, img image.Image) error {
	w, err := s.gallery.OpenWriter(ctx, entry)
	if err != nil {
		return err
	}
	if err := qrcode.EncodePNG(w, img); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// Run adapts Save to the chain payload.
func (s *SaveStep) Run(ctx context.Context, in Data) StepOutcome {
	res := s.Save(ctx, in.Get(KeyChainID), in.Get(KeyQrCodeOutput), in.Get(KeyLocale))
	if !res.Succeeded() {
		return StepOutcome{Status: res.Status, Failure: res.Failure, Err: res.Err}
	}
	return StepOutcome{Status: res.Status, Output: Data{KeyPublishedURI: res.PublishedURI, KeyEntryID: res.EntryID}}
}

// ReportFailure posts SAVE_FAILURE for a run that could not report itself.
func (s *SaveStep) ReportFailure(ctx context.Context, in Data) {
	postNotice(ctx, s.notifier, s.logger, s.texts.Event(domain.SlotSaveFailure, in.Get(KeyLocale)))
}

func (s *SaveStep) fail(ctx context.Context, jobID, locale string, kind domain.FailureKind, err error) domain.SaveResult {
	s.logger.Warn().Err(err).Str("job_id", jobID).Str("failure", string(kind)).Msg("save: failed")
	postNotice(ctx, s.notifier, s.logger, s.texts.Event(domain.SlotSaveFailure, locale))
	return domain.SaveFailed(kind, err)
}
