package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"qrquicker/internal/domain"
)

func (a *App) ListGallery(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	entries, err := a.Gallery.List(r.Context(), limit, offset)
	if err != nil {
		a.Logger.Error().Err(err).Msg("http: list gallery failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load gallery")
		return
	}
	items := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		items = append(items, map[string]any{
			"id":           e.ID,
			"display_name": e.DisplayName,
			"title":        e.Title,
			"mime":         e.MIME,
			"uri":          e.URI,
			"bytes":        e.Bytes,
			"date_added":   e.DateAdded,
			"date_taken":   e.DateTaken,
			"created_at":   e.CreatedAt,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

// GalleryImage streams the bytes of one published entry.
func (a *App) GalleryImage(w http.ResponseWriter, r *http.Request) {
	rc, entry, err := a.Gallery.Open(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "entry not found")
			return
		}
		a.Logger.Error().Err(err).Msg("http: open gallery entry failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to open entry")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", entry.MIME)
	if entry.Bytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(entry.Bytes, 10))
	}
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": entry.DisplayName}))
	w.Header().Set("Last-Modified", time.UnixMilli(entry.DateTaken).UTC().Format(http.TimeFormat))
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}

// ExportGallery streams every published entry as one zip archive. The
// entry count follows the body as the X-Entry-Count trailer.
func (a *App) ExportGallery(w http.ResponseWriter, r *http.Request) {
	out := &exportWriter{ResponseWriter: w}
	n, err := a.Gallery.Export(r.Context(), out)
	if err != nil {
		if !out.started {
			a.Logger.Error().Err(err).Msg("http: export gallery failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to export gallery")
			return
		}
		// Headers are gone; drop the connection so the client sees a
		// truncated transfer instead of a short archive.
		a.Logger.Error().Err(err).Int("entries", n).Msg("http: export gallery aborted")
		panic(http.ErrAbortHandler)
	}
	out.start()
	w.Header().Set("X-Entry-Count", strconv.Itoa(n))
}

// exportWriter sends the archive headers on the first write, so failures
// before any byte is produced still get a JSON error.
type exportWriter struct {
	http.ResponseWriter
	started bool
}

func (e *exportWriter) start() {
	if e.started {
		return
	}
	e.started = true
	h := e.Header()
	h.Set("Content-Type", "application/zip")
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=qr-quicker-%s.zip", time.Now().UTC().Format("20060102-150405")))
	h.Set("Trailer", "X-Entry-Count")
	e.WriteHeader(http.StatusOK)
}

func (e *exportWriter) Write(p []byte) (int, error) {
	e.start()
	return e.ResponseWriter.Write(p)
}
