package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"unicode/utf8"

	"qrquicker/internal/domain"
	"qrquicker/internal/middleware"
)

type createQrCodeRequest struct {
	Text string `json:"text"`
}

type createQrCodeResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// CreateQrCode queues a generate -> save chain. The outcome is reported
// through notifications only.
func (a *App) CreateQrCode(w http.ResponseWriter, r *http.Request) {
	var req createQrCodeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if !a.validText(w, req.Text) {
		return
	}

	locale := middleware.LocaleFromContext(r.Context())
	id, err := a.Creator.Enqueue(req.Text, locale)
	if err != nil {
		if errors.Is(err, domain.ErrQueueFull) || errors.Is(err, domain.ErrNotAccepting) {
			w.Header().Set("Retry-After", "1")
			a.error(w, http.StatusServiceUnavailable, "unavailable", "pipeline is not accepting requests")
			return
		}
		a.Logger.Error().Err(err).Msg("http: enqueue failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue request")
		return
	}
	a.json(w, http.StatusAccepted, createQrCodeResponse{JobID: id, Status: "QUEUED"})
}

// Preview renders the code for text without storing anything.
func (a *App) Preview(w http.ResponseWriter, r *http.Request) {
	text := r.URL.Query().Get("text")
	if !a.validText(w, text) {
		return
	}
	data, err := a.Renderer.RenderPNG(text)
	if err != nil {
		a.error(w, http.StatusUnprocessableEntity, "encode_failed", "text cannot be encoded as a QR code")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (a *App) validText(w http.ResponseWriter, text string) bool {
	if text == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "text required")
		return false
	}
	if limit := a.Config.QRMaxTextLength; limit > 0 && utf8.RuneCountInString(text) > limit {
		a.error(w, http.StatusBadRequest, "text_too_long", fmt.Sprintf("text must be at most %d characters", limit))
		return false
	}
	return true
}
