package gallery

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"qrquicker/internal/domain"
)

// MemoryCatalog keeps entry metadata in process memory. It is used when no
// database is configured.
type MemoryCatalog struct {
	mu      sync.RWMutex
	entries map[string]domain.GalleryEntry
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{entries: make(map[string]domain.GalleryEntry)}
}

func (c *MemoryCatalog) Insert(_ context.Context, entry *domain.GalleryEntry) error {
	if entry == nil || entry.ID == "" {
		return fmt.Errorf("entry id is required")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[entry.ID]; ok {
		return fmt.Errorf("entry %s already exists", entry.ID)
	}
	c.entries[entry.ID] = *entry
	return nil
}

func (c *MemoryCatalog) MarkPublished(_ context.Context, id string, bytes int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return domain.ErrNotFound
	}
	e.Status = domain.EntryStatusPublished
	e.Bytes = bytes
	c.entries[id] = e
	return nil
}

func (c *MemoryCatalog) Delete(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[id]; !ok {
		return domain.ErrNotFound
	}
	delete(c.entries, id)
	return nil
}

func (c *MemoryCatalog) Get(_ context.Context, id string) (*domain.GalleryEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &e, nil
}

func (c *MemoryCatalog) List(_ context.Context, limit, offset int) ([]domain.GalleryEntry, error) {
	c.mu.RLock()
	all := make([]domain.GalleryEntry, 0, len(c.entries))
	for _, e := range c.entries {
		all = append(all, e)
	}
	c.mu.RUnlock()
	return pagePublished(all, limit, offset), nil
}

// pagePublished keeps published entries, orders them newest first with the
// id as tie breaker and cuts the requested page.
func pagePublished(all []domain.GalleryEntry, limit, offset int) []domain.GalleryEntry {
	out := make([]domain.GalleryEntry, 0, len(all))
	for _, e := range all {
		if e.Status == domain.EntryStatusPublished {
			out = append(out, e)
		}
	}
	slices.SortFunc(out, func(a, b domain.GalleryEntry) int {
		if n := b.CreatedAt.Compare(a.CreatedAt); n != 0 {
			return n
		}
		return strings.Compare(a.ID, b.ID)
	})

	if offset >= len(out) {
		return nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

var _ domain.GalleryCatalog = (*MemoryCatalog)(nil)
