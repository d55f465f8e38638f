package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"qrquicker/internal/domain"
)

// ListNotifications returns the visible notification of every slot.
func (a *App) ListNotifications(w http.ResponseWriter, r *http.Request) {
	active := a.Board.Active()
	items := make([]map[string]any, 0, len(active))
	for _, evt := range active {
		item := map[string]any{
			"id":        int(evt.Slot),
			"slot":      evt.Slot.String(),
			"title":     evt.Title,
			"body":      evt.Body,
			"posted_at": evt.PostedAt,
		}
		if evt.Action.Kind != domain.ActionNone {
			item["action"] = evt.Action
		}
		items = append(items, item)
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) DismissNotification(w http.ResponseWriter, r *http.Request) {
	slot, err := domain.ParseSlot(chi.URLParam(r, "slot"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unknown notification slot")
		return
	}
	if !a.Board.Dismiss(slot) {
		a.error(w, http.StatusNotFound, "not_found", "notification not active")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
