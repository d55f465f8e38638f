package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ErrOutsideRoot is returned for references that do not point into the store.
var ErrOutsideRoot = errors.New("storage: reference outside store root")

// FileStore keeps files under a single root directory. Keys are relative,
// slash separated paths below that root.
type FileStore struct {
	basePath string
}

// NewFileStore initializes a FileStore rooted at basePath, creating the
// directory when it does not exist.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if abs, err := filepath.Abs(basePath); err == nil {
		basePath = abs
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Write persists data at key and returns the canonical key.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	fullPath, cleanKey, err := s.prepare(ctx, key)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return cleanKey, nil
}

// Create opens key for writing, truncating any existing file. The caller
// must close the returned writer.
func (s *FileStore) Create(ctx context.Context, key string) (io.WriteCloser, string, error) {
	fullPath, cleanKey, err := s.prepare(ctx, key)
	if err != nil {
		return nil, "", err
	}
	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, "", fmt.Errorf("storage: create file: %w", err)
	}
	return f, cleanKey, nil
}

// Open returns a reader for key.
func (s *FileStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	fullPath, err := s.Path(key)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("storage: open file: %w", err)
	}
	return f, nil
}

// Remove deletes key. Missing files are not an error.
func (s *FileStore) Remove(ctx context.Context, key string) error {
	fullPath, err := s.Path(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: remove file: %w", err)
	}
	return nil
}

// Path resolves key to an absolute filesystem path inside the root.
func (s *FileStore) Path(key string) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, filepath.FromSlash(cleanKey)), nil
}

// URI returns the file:// reference of key.
func (s *FileStore) URI(key string) (string, error) {
	p, err := s.Path(key)
	if err != nil {
		return "", err
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(p)}
	return u.String(), nil
}

// KeyFromURI maps a file:// reference produced by URI back to its key.
func (s *FileStore) KeyFromURI(ref string) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return "", fmt.Errorf("storage: parse reference: %w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("storage: unsupported scheme %q", u.Scheme)
	}
	rel, err := filepath.Rel(s.basePath, filepath.FromSlash(u.Path))
	if err != nil {
		return "", ErrOutsideRoot
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", ErrOutsideRoot
	}
	return sanitizeKey(rel)
}

// OpenURI opens the file behind a reference produced by URI.
func (s *FileStore) OpenURI(ctx context.Context, ref string) (io.ReadCloser, error) {
	key, err := s.KeyFromURI(ref)
	if err != nil {
		return nil, err
	}
	return s.Open(ctx, key)
}

// Sweep deletes files in the root matching pattern whose modification time
// is before cutoff. It returns the number of files removed.
func (s *FileStore) Sweep(ctx context.Context, pattern string, cutoff time.Time) (int, error) {
	if s == nil {
		return 0, errors.New("storage: no store configured")
	}
	matches, err := filepath.Glob(filepath.Join(s.basePath, pattern))
	if err != nil {
		return 0, fmt.Errorf("storage: glob: %w", err)
	}
	removed := 0
	var errs []error
	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

func (s *FileStore) prepare(ctx context.Context, key string) (string, string, error) {
	if s == nil {
		return "", "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", "", err
	}
	fullPath := filepath.Join(s.basePath, filepath.FromSlash(cleanKey))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	return fullPath, cleanKey, nil
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
