package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"qrquicker/internal/domain"
	"qrquicker/internal/infra"
	"qrquicker/internal/sqlinline"
)

// GalleryRepositoryPG implements domain.GalleryCatalog on PostgreSQL.
type GalleryRepositoryPG struct {
	db infra.SQLExecutor
}

// NewGalleryRepository constructs a gallery catalog over db.
func NewGalleryRepository(db infra.SQLExecutor) *GalleryRepositoryPG {
	return &GalleryRepositoryPG{db: db}
}

// EnsureSchema creates the gallery table and its index when missing.
func (r *GalleryRepositoryPG) EnsureSchema(ctx context.Context) error {
	for _, q := range []string{sqlinline.QCreateGalleryEntries, sqlinline.QCreateGalleryEntriesIndex} {
		if _, err := r.db.Exec(ctx, q); err != nil {
			return fmt.Errorf("ensure gallery schema: %w", err)
		}
	}
	return nil
}

func (r *GalleryRepositoryPG) Insert(ctx context.Context, entry *domain.GalleryEntry) error {
	if entry == nil || entry.ID == "" {
		return errors.New("entry id is required")
	}
	_, err := r.db.Exec(ctx, sqlinline.QInsertGalleryEntry,
		entry.ID,
		entry.DisplayName,
		entry.Title,
		entry.MIME,
		entry.StorageKey,
		entry.URI,
		string(entry.Status),
		entry.DateAdded,
		entry.DateTaken,
		entry.CreatedAt,
	)
	return err
}

func (r *GalleryRepositoryPG) MarkPublished(ctx context.Context, id string, bytes int64) error {
	tag, err := r.db.Exec(ctx, sqlinline.QPublishGalleryEntry, id, bytes)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GalleryRepositoryPG) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, sqlinline.QDeleteGalleryEntry, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *GalleryRepositoryPG) Get(ctx context.Context, id string) (*domain.GalleryEntry, error) {
	entry, err := scanEntry(r.db.QueryRow(ctx, sqlinline.QSelectGalleryEntryByID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *GalleryRepositoryPG) List(ctx context.Context, limit, offset int) ([]domain.GalleryEntry, error) {
	rows, err := r.db.Query(ctx, sqlinline.QListPublishedGalleryEntries, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.GalleryEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func scanEntry(row pgx.Row) (*domain.GalleryEntry, error) {
	var (
		e      domain.GalleryEntry
		status string
	)
	if err := row.Scan(
		&e.ID,
		&e.DisplayName,
		&e.Title,
		&e.MIME,
		&e.StorageKey,
		&e.URI,
		&e.Bytes,
		&status,
		&e.DateAdded,
		&e.DateTaken,
		&e.CreatedAt,
	); err != nil {
		return nil, err
	}
	e.Status = domain.EntryStatus(status)
	return &e, nil
}

var _ domain.GalleryCatalog = (*GalleryRepositoryPG)(nil)
