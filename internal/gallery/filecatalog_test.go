package gallery

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrquicker/internal/domain"
	"qrquicker/internal/storage"
)

func TestFileCatalogSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	created := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

	c, err := NewFileCatalog(dir)
	require.NoError(t, err)
	require.NoError(t, c.Insert(ctx, &domain.GalleryEntry{
		ID: "a", DisplayName: "a.png", MIME: "image/png", StorageKey: "images/a.png",
		Status: domain.EntryStatusPending, DateAdded: 1, DateTaken: 1000, CreatedAt: created,
	}))
	require.NoError(t, c.MarkPublished(ctx, "a", 42))

	reopened, err := NewFileCatalog(dir)
	require.NoError(t, err)
	got, err := reopened.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, domain.EntryStatusPublished, got.Status)
	assert.Equal(t, int64(42), got.Bytes)
	assert.Equal(t, "images/a.png", got.StorageKey)
	assert.True(t, created.Equal(got.CreatedAt))

	items, err := reopened.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestFileCatalogSeesWritesFromAnotherHandle(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	first, err := NewFileCatalog(dir)
	require.NoError(t, err)
	second, err := NewFileCatalog(dir)
	require.NoError(t, err)

	require.NoError(t, first.Insert(ctx, &domain.GalleryEntry{ID: "a", CreatedAt: time.Now()}))
	require.NoError(t, second.MarkPublished(ctx, "a", 3))

	items, err := first.List(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(3), items[0].Bytes)
}

func TestFileCatalogErrors(t *testing.T) {
	c, err := NewFileCatalog(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()
	assert.ErrorIs(t, c.MarkPublished(ctx, "missing", 1), domain.ErrNotFound)
	assert.ErrorIs(t, c.Delete(ctx, "missing"), domain.ErrNotFound)
	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, c.Insert(ctx, &domain.GalleryEntry{ID: "a"}))
	assert.Error(t, c.Insert(ctx, &domain.GalleryEntry{ID: "a"}))
	assert.Error(t, c.Insert(ctx, &domain.GalleryEntry{}))
	require.NoError(t, c.Delete(ctx, "a"))
	_, err = c.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFileCatalogRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, CatalogFileName), []byte("{not json"), 0o644))
	_, err := NewFileCatalog(dir)
	assert.Error(t, err)
}

func TestStoreOverFileCatalog(t *testing.T) {
	dir := t.TempDir()
	files, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	catalog, err := NewFileCatalog(dir)
	require.NoError(t, err)
	s := NewStore(files, catalog, "http://localhost:8080/v1/gallery", zerolog.Nop())

	entry := publish(t, s, "file.png", []byte("png"))

	reopened, err := NewFileCatalog(dir)
	require.NoError(t, err)
	again := NewStore(files, reopened, "http://localhost:8080/v1/gallery", zerolog.Nop())
	rc, got, err := again.Open(context.Background(), entry.ID)
	require.NoError(t, err)
	_ = rc.Close()
	assert.Equal(t, "file.png", got.DisplayName)
}
