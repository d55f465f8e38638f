package domain

import "time"

// EntryStatus enumerates the publication state of a gallery entry.
type EntryStatus string

const (
	EntryStatusPending   EntryStatus = "pending"
	EntryStatusPublished EntryStatus = "published"
)

// GalleryEntry is one image published into the shared gallery.
type GalleryEntry struct {
	ID          string
	DisplayName string
	Title       string
	MIME        string
	StorageKey  string
	URI         string
	Bytes       int64
	Status      EntryStatus
	// DateAdded is in seconds, DateTaken in milliseconds since the epoch.
	DateAdded int64
	DateTaken int64
	CreatedAt time.Time
}

// EntryMetadata describes an entry about to be inserted.
type EntryMetadata struct {
	DisplayName string
	Title       string
	MIME        string
	DateAdded   int64
	DateTaken   int64
}
