// Package gallery is the shared image store finished QR codes are published
// into. Image bytes live in a FileStore, entry metadata in a catalog.
package gallery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"qrquicker/internal/domain"
	"qrquicker/internal/storage"
	"qrquicker/pkg/zip"
)

const (
	defaultListLimit = 20
	maxListLimit     = 200
)

// Store publishes images and serves them back.
type Store struct {
	files   *storage.FileStore
	catalog domain.GalleryCatalog
	baseURL string
	logger  zerolog.Logger
	now     func() time.Time
	newID   func() string
}

// NewStore wires a gallery over files and catalog. baseURL prefixes entry URIs.
func NewStore(files *storage.FileStore, catalog domain.GalleryCatalog, baseURL string, logger zerolog.Logger) *Store {
	return &Store{
		files:   files,
		catalog: catalog,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger.With().Str("component", "gallery").Logger(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Insert creates a pending entry and returns its handle. The entry becomes
// visible once the writer returned by OpenWriter is closed.
func (s *Store) Insert(ctx context.Context, meta domain.EntryMetadata) (*domain.GalleryEntry, error) {
	if strings.TrimSpace(meta.DisplayName) == "" {
		return nil, fmt.Errorf("%w: display name is required", domain.ErrStoreInsert)
	}
	id := s.newID()
	entry := &domain.GalleryEntry{
		ID:          id,
		DisplayName: meta.DisplayName,
		Title:       meta.Title,
		MIME:        meta.MIME,
		StorageKey:  "images/" + id + extensionForMIME(meta.MIME),
		URI:         s.entryURI(id),
		Status:      domain.EntryStatusPending,
		DateAdded:   meta.DateAdded,
		DateTaken:   meta.DateTaken,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.catalog.Insert(ctx, entry); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreInsert, err)
	}
	s.logger.Debug().Str("entry_id", id).Str("display_name", meta.DisplayName).Msg("gallery: entry inserted")
	return entry, nil
}

// OpenWriter opens the byte stream of a pending entry.
func (s *Store) OpenWriter(ctx context.Context, entry *domain.GalleryEntry) (io.WriteCloser, error) {
	if entry == nil {
		return nil, fmt.Errorf("%w: no entry", domain.ErrStoreWrite)
	}
	f, _, err := s.files.Create(ctx, entry.StorageKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreWrite, err)
	}
	return &entryWriter{ctx: ctx, store: s, entry: entry, file: f}, nil
}

// Discard removes an entry and its bytes.
func (s *Store) Discard(ctx context.Context, entry *domain.GalleryEntry) error {
	if entry == nil {
		return nil
	}
	var errs []error
	if err := s.files.Remove(ctx, entry.StorageKey); err != nil {
		errs = append(errs, err)
	}
	if err := s.catalog.Delete(ctx, entry.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		s.logger.Warn().Err(errors.Join(errs...)).Str("entry_id", entry.ID).Msg("gallery: discard incomplete")
	}
	return errors.Join(errs...)
}

// Get returns a published entry. Ids that are not UUIDs are never issued
// and report domain.ErrNotFound without reaching the catalog.
func (s *Store) Get(ctx context.Context, id string) (*domain.GalleryEntry, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrNotFound
	}
	entry, err := s.catalog.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry.Status != domain.EntryStatusPublished {
		return nil, domain.ErrNotFound
	}
	return entry, nil
}

// List returns published entries, newest first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]domain.GalleryEntry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.catalog.List(ctx, limit, offset)
}

// Open returns the image bytes of a published entry.
func (s *Store) Open(ctx context.Context, id string) (io.ReadCloser, *domain.GalleryEntry, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.files.Open(ctx, entry.StorageKey)
	if err != nil {
		return nil, nil, err
	}
	return rc, entry, nil
}

// Export writes every published entry into a zip archive on w and returns
// the number of files written.
func (s *Store) Export(ctx context.Context, w io.Writer) (int, error) {
	var assets []zip.Asset
	for offset := 0; ; offset += maxListLimit {
		page, err := s.catalog.List(ctx, maxListLimit, offset)
		if err != nil {
			return 0, err
		}
		for _, entry := range page {
			key := entry.StorageKey
			assets = append(assets, zip.Asset{
				Filename: entry.DisplayName,
				MIME:     entry.MIME,
				Modified: time.UnixMilli(entry.DateTaken),
				Open: func() (io.ReadCloser, error) {
					return s.files.Open(ctx, key)
				},
			})
		}
		if len(page) < maxListLimit {
			break
		}
	}
	if err := zip.WriteArchive(w, assets); err != nil {
		return 0, err
	}
	return len(assets), nil
}

func (s *Store) entryURI(id string) string {
	return s.baseURL + "/" + id
}

type entryWriter struct {
	ctx    context.Context
	store  *Store
	entry  *domain.GalleryEntry
	file   io.WriteCloser
	n      int64
	closed bool
}

func (w *entryWriter) Write(p []byte) (int, error) {
	n, err := w.file.Write(p)
	w.n += int64(n)
	if err != nil {
		return n, fmt.Errorf("%w: %v", domain.ErrStoreWrite, err)
	}
	return n, nil
}

// Close flushes the file and publishes the entry.
func (w *entryWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreWrite, err)
	}
	if err := w.store.catalog.MarkPublished(w.ctx, w.entry.ID, w.n); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStoreWrite, err)
	}
	w.entry.Bytes = w.n
	w.entry.Status = domain.EntryStatusPublished
	return nil
}

func extensionForMIME(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	default:
		return ".bin"
	}
}
