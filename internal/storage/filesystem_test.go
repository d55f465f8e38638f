package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSanitizeKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{name: "plain", key: "qr-code-output-1.png", want: "qr-code-output-1.png"},
		{name: "leading slash", key: "/images/a.png", want: "images/a.png"},
		{name: "backslashes", key: `images\a.png`, want: "images/a.png"},
		{name: "dot prefix", key: "./a.png", want: "a.png"},
		{name: "inner traversal collapses", key: "images/../a.png", want: "a.png"},
		{name: "escape", key: "../a.png", wantErr: true},
		{name: "parent only", key: "..", wantErr: true},
		{name: "empty", key: "  ", wantErr: true},
		{name: "dot", key: ".", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := sanitizeKey(tc.key)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("sanitizeKey(%q) = %q, want error", tc.key, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("sanitizeKey(%q) returned error: %v", tc.key, err)
			}
			if got != tc.want {
				t.Fatalf("sanitizeKey(%q) = %q, want %q", tc.key, got, tc.want)
			}
		})
	}
}

func TestWriteOpenRemove(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	key, err := store.Write(ctx, "nested/dir/file.png", []byte("data"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if key != "nested/dir/file.png" {
		t.Fatalf("Write key = %q", key)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "data" {
		t.Fatalf("Open data = %q", data)
	}

	if err := store.Remove(ctx, key); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := store.Remove(ctx, key); err != nil {
		t.Fatalf("Remove missing file: %v", err)
	}
	if _, err := store.Open(ctx, key); err == nil {
		t.Fatal("Open after Remove succeeded")
	}
}

func TestCreateWritesThroughWriter(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	w, key, err := store.Create(ctx, "a/b.png")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := w.Write([]byte("png")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	path, _ := store.Path(key)
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "png" {
		t.Fatalf("file content = %q, err %v", data, err)
	}
}

func TestURIRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	key, err := store.Write(ctx, "qr-code-output-x.png", []byte("x"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	uri, err := store.URI(key)
	if err != nil {
		t.Fatalf("URI: %v", err)
	}
	got, err := store.KeyFromURI(uri)
	if err != nil {
		t.Fatalf("KeyFromURI(%q): %v", uri, err)
	}
	if got != key {
		t.Fatalf("KeyFromURI = %q, want %q", got, key)
	}
	rc, err := store.OpenURI(ctx, uri)
	if err != nil {
		t.Fatalf("OpenURI: %v", err)
	}
	_ = rc.Close()
}

func TestKeyFromURIRejectsForeignReferences(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	outside := filepath.Join(filepath.Dir(store.BasePath()), "other.png")
	for _, ref := range []string{
		"https://example.com/a.png",
		"file://" + filepath.ToSlash(outside),
		"file://" + filepath.ToSlash(store.BasePath()),
	} {
		if _, err := store.KeyFromURI(ref); err == nil {
			t.Fatalf("KeyFromURI(%q) succeeded", ref)
		}
	}
}

func TestSweepRemovesOnlyOldMatches(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	for _, key := range []string{"qr-code-output-old.png", "qr-code-output-new.png", "keep-old.png"} {
		if _, err := store.Write(ctx, key, []byte("x")); err != nil {
			t.Fatalf("Write %s: %v", key, err)
		}
	}
	old := time.Now().Add(-48 * time.Hour)
	for _, key := range []string{"qr-code-output-old.png", "keep-old.png"} {
		p, _ := store.Path(key)
		if err := os.Chtimes(p, old, old); err != nil {
			t.Fatalf("Chtimes: %v", err)
		}
	}

	removed, err := store.Sweep(ctx, "qr-code-output-*.png", time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if removed != 1 {
		t.Fatalf("Sweep removed %d files, want 1", removed)
	}
	for key, exists := range map[string]bool{
		"qr-code-output-old.png": false,
		"qr-code-output-new.png": true,
		"keep-old.png":           true,
	} {
		p, _ := store.Path(key)
		_, err := os.Stat(p)
		if exists && err != nil {
			t.Fatalf("%s missing after sweep", key)
		}
		if !exists && err == nil {
			t.Fatalf("%s still present after sweep", key)
		}
	}
}

func TestWriteHonorsCanceledContext(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.Write(ctx, "a.png", []byte("x")); err == nil {
		t.Fatal("Write with canceled context succeeded")
	}
}
