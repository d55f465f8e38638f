package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"qrquicker/internal/domain"
	"qrquicker/internal/gallery"
	"qrquicker/internal/notify"
	"qrquicker/internal/notify/notifytest"
	"qrquicker/internal/qrcode"
	"qrquicker/internal/storage"
)

type fixture struct {
	temp     *storage.FileStore
	gallery  *gallery.Store
	recorder *notifytest.Recorder
	texts    *notify.Catalog
	gen      *GenerateStep
	save     *SaveStep
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	temp, err := storage.NewFileStore(filepath.Join(t.TempDir(), "qr_quicker_output"))
	require.NoError(t, err)
	files, err := storage.NewFileStore(filepath.Join(t.TempDir(), "gallery"))
	require.NoError(t, err)

	f := &fixture{
		temp:     temp,
		gallery:  gallery.NewStore(files, gallery.NewMemoryCatalog(), "http://localhost:8080/v1/gallery", zerolog.Nop()),
		recorder: notifytest.New(),
		texts:    notify.NewCatalog(),
	}
	f.gen = NewGenerateStep(qrcode.NewEncoder(), temp, f.recorder, f.texts, GenerateConfig{Size: 256, Palette: qrcode.DefaultPalette}, zerolog.Nop())
	f.save = NewSaveStep(temp, f.gallery, f.recorder, f.texts, "QR Quicker", zerolog.Nop())
	return f
}

func (f *fixture) tempFiles(t *testing.T) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(f.temp.BasePath(), TempFilePattern))
	require.NoError(t, err)
	return matches
}

func (f *fixture) galleryEntries(t *testing.T) []domain.GalleryEntry {
	t.Helper()
	items, err := f.gallery.List(context.Background(), 100, 0)
	require.NoError(t, err)
	return items
}

// breakStore replaces the store root with a regular file so writes fail.
func breakStore(t *testing.T, s *storage.FileStore) {
	t.Helper()
	require.NoError(t, os.RemoveAll(s.BasePath()))
	require.NoError(t, os.WriteFile(s.BasePath(), []byte("not a directory"), 0o644))
}

type failingEncoder struct{ err error }

func (e failingEncoder) Encode(string, int, int) (*qrcode.Matrix, error) {
	return nil, e.err
}

// stubPublisher simulates gallery failures.
type stubPublisher struct {
	insertErr error
	nilEntry  bool
	openErr   error
	writeErr  error
	discarded []string
}

func (p *stubPublisher) Insert(_ context.Context, meta domain.EntryMetadata) (*domain.GalleryEntry, error) {
	if p.insertErr != nil {
		return nil, p.insertErr
	}
	if p.nilEntry {
		return nil, nil
	}
	return &domain.GalleryEntry{ID: "entry-1", DisplayName: meta.DisplayName, MIME: meta.MIME, URI: "http://localhost/v1/gallery/entry-1"}, nil
}

func (p *stubPublisher) OpenWriter(context.Context, *domain.GalleryEntry) (io.WriteCloser, error) {
	if p.openErr != nil {
		return nil, p.openErr
	}
	return failingWriter{err: p.writeErr}, nil
}

func (p *stubPublisher) Discard(_ context.Context, entry *domain.GalleryEntry) error {
	p.discarded = append(p.discarded, entry.ID)
	return nil
}

type failingWriter struct{ err error }

func (w failingWriter) Write(b []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	return len(b), nil
}

func (failingWriter) Close() error { return nil }

var errBoom = errors.New("boom")

func waitOutcome(t *testing.T, ch <-chan ChainOutcome) ChainOutcome {
	t.Helper()
	select {
	case out, ok := <-ch:
		require.True(t, ok, "outcome channel closed without a value")
		return out
	case <-time.After(10 * time.Second):
		t.Fatal("timed out waiting for chain outcome")
		return ChainOutcome{}
	}
}
