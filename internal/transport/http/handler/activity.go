package handler

import (
	"net/http"

	"github.com/recruit-notes/internal/application/activity"
)

// ActivityHandler serves the recent-activity feed and the online list.
type ActivityHandler struct {
	svc activity.Service
}

func NewActivityHandler(svc activity.Service) *ActivityHandler { return &ActivityHandler{svc: svc} }

func (h *ActivityHandler) Recent(w http.ResponseWriter, r *http.Request) {
	me, ok := actor(w, r)
	if !ok {
		return
	}
	limit, ok := intParam(w, r.URL.Query().Get("limit"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Recent(r.Context(), me.UserID, limit))
}

func (h *ActivityHandler) Presence(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Online(r.Context()))
}
