package gallery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"qrquicker/internal/domain"
)

// CatalogFileName is the metadata file FileCatalog keeps next to the images.
const CatalogFileName = "catalog.json"

type catalogRecord struct {
	ID          string             `json:"id"`
	DisplayName string             `json:"display_name"`
	Title       string             `json:"title"`
	MIME        string             `json:"mime"`
	StorageKey  string             `json:"storage_key"`
	URI         string             `json:"uri"`
	Bytes       int64              `json:"bytes"`
	Status      domain.EntryStatus `json:"status"`
	DateAdded   int64              `json:"date_added"`
	DateTaken   int64              `json:"date_taken"`
	CreatedAt   time.Time          `json:"created_at"`
}

// FileCatalog keeps entry metadata in a JSON file so separate processes
// sharing a gallery directory see the same entries. The file is re-read on
// every call and replaced atomically on every change.
type FileCatalog struct {
	path string
	mu   sync.Mutex
}

// NewFileCatalog opens the catalog stored in dir, creating dir if needed.
// A malformed existing file is reported here rather than on first use.
func NewFileCatalog(dir string) (*FileCatalog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create catalog dir: %w", err)
	}
	c := &FileCatalog{path: filepath.Join(dir, CatalogFileName)}
	if _, err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

// Path returns the metadata file location.
func (c *FileCatalog) Path() string { return c.path }

func (c *FileCatalog) Insert(_ context.Context, entry *domain.GalleryEntry) error {
	if entry == nil || entry.ID == "" {
		return fmt.Errorf("entry id is required")
	}
	return c.update(func(records map[string]catalogRecord) error {
		if _, ok := records[entry.ID]; ok {
			return fmt.Errorf("entry %s already exists", entry.ID)
		}
		records[entry.ID] = toRecord(*entry)
		return nil
	})
}

func (c *FileCatalog) MarkPublished(_ context.Context, id string, bytes int64) error {
	return c.update(func(records map[string]catalogRecord) error {
		r, ok := records[id]
		if !ok {
			return domain.ErrNotFound
		}
		r.Status = domain.EntryStatusPublished
		r.Bytes = bytes
		records[id] = r
		return nil
	})
}

func (c *FileCatalog) Delete(_ context.Context, id string) error {
	return c.update(func(records map[string]catalogRecord) error {
		if _, ok := records[id]; !ok {
			return domain.ErrNotFound
		}
		delete(records, id)
		return nil
	})
}

func (c *FileCatalog) Get(_ context.Context, id string) (*domain.GalleryEntry, error) {
	c.mu.Lock()
	records, err := c.load()
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	r, ok := records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	e := r.entry()
	return &e, nil
}

func (c *FileCatalog) List(_ context.Context, limit, offset int) ([]domain.GalleryEntry, error) {
	c.mu.Lock()
	records, err := c.load()
	c.mu.Unlock()
	if err != nil {
		return nil, err
	}
	all := make([]domain.GalleryEntry, 0, len(records))
	for _, r := range records {
		all = append(all, r.entry())
	}
	return pagePublished(all, limit, offset), nil
}

func (c *FileCatalog) update(fn func(map[string]catalogRecord) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	records, err := c.load()
	if err != nil {
		return err
	}
	if err := fn(records); err != nil {
		return err
	}
	return c.save(records)
}

func (c *FileCatalog) load() (map[string]catalogRecord, error) {
	records := make(map[string]catalogRecord)
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return records, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if len(data) == 0 {
		return records, nil
	}
	var list []catalogRecord
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", c.path, err)
	}
	for _, r := range list {
		records[r.ID] = r
	}
	return records, nil
}

func (c *FileCatalog) save(records map[string]catalogRecord) error {
	list := make([]catalogRecord, 0, len(records))
	for _, r := range records {
		list = append(list, r)
	}
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(c.path), ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("write catalog: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write catalog: %w", err)
	}
	return nil
}

func toRecord(e domain.GalleryEntry) catalogRecord {
	return catalogRecord{
		ID:          e.ID,
		DisplayName: e.DisplayName,
		Title:       e.Title,
		MIME:        e.MIME,
		StorageKey:  e.StorageKey,
		URI:         e.URI,
		Bytes:       e.Bytes,
		Status:      e.Status,
		DateAdded:   e.DateAdded,
		DateTaken:   e.DateTaken,
		CreatedAt:   e.CreatedAt,
	}
}

func (r catalogRecord) entry() domain.GalleryEntry {
	return domain.GalleryEntry{
		ID:          r.ID,
		DisplayName: r.DisplayName,
		Title:       r.Title,
		MIME:        r.MIME,
		StorageKey:  r.StorageKey,
		URI:         r.URI,
		Bytes:       r.Bytes,
		Status:      r.Status,
		DateAdded:   r.DateAdded,
		DateTaken:   r.DateTaken,
		CreatedAt:   r.CreatedAt,
	}
}

var _ domain.GalleryCatalog = (*FileCatalog)(nil)
