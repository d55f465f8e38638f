package domain

import "context"

// GalleryCatalog persists gallery entry metadata. Image bytes live elsewhere.
type GalleryCatalog interface {
	Insert(ctx context.Context, entry *GalleryEntry) error
	MarkPublished(ctx context.Context, id string, bytes int64) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*GalleryEntry, error)
	// List returns published entries, newest first.
	List(ctx context.Context, limit, offset int) ([]GalleryEntry, error)
}
