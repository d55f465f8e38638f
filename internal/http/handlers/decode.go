package handlers

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"qrquicker/internal/domain"
	"qrquicker/internal/middleware"
)

const maxUploadBytes = 10 << 20

// Decode reads a QR code from an uploaded image, either a multipart "image"
// field or the raw request body.
func (a *App) Decode(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	data, err := readUpload(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "image too large")
			return
		}
		a.error(w, http.StatusBadRequest, "bad_request", "invalid upload")
		return
	}
	if len(data) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "image required")
		return
	}

	res, err := a.Scanner.Scan(r.Context(), bytes.NewReader(data), middleware.LocaleFromContext(r.Context()))
	if err != nil {
		if errors.Is(err, domain.ErrDecode) {
			a.error(w, http.StatusUnprocessableEntity, "decode_failed", "no QR code detected")
			return
		}
		a.error(w, http.StatusInternalServerError, "internal", "failed to decode image")
		return
	}
	a.json(w, http.StatusOK, res)
}

func readUpload(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		return io.ReadAll(r.Body)
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
