package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"qrquicker/internal/gallery"
	"qrquicker/internal/infra"
	"qrquicker/internal/notify"
	"qrquicker/internal/pipeline"
	"qrquicker/internal/qrcode"
)

// Creator schedules QR creation chains.
type Creator interface {
	Enqueue(text, locale string) (string, error)
	Pending() int
}

type App struct {
	Config   *infra.Config
	Logger   zerolog.Logger
	Creator  Creator
	Renderer *qrcode.Renderer
	Scanner  *pipeline.Scanner
	Board    *notify.Board
	Gallery  *gallery.Store
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]errorBody{"error": {Code: errCode, Message: message}})
}
