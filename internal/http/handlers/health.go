package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if a.Creator != nil {
		resp["pending"] = a.Creator.Pending()
	}
	a.json(w, http.StatusOK, resp)
}
