package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health-check endpoints.
type HealthHandler struct {
	cache pinger
}

func NewHealthHandler(cache pinger) *HealthHandler { return &HealthHandler{cache: cache} }

func (h *HealthHandler) Ping(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "ping":
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "pong"})
	case "cache":
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.cache.Ping(ctx); err != nil {
			writeError(w, http.StatusServiceUnavailable, "cache unavailable: "+err.Error())
			return
		}
		writeJSON(w, http.StatusOK, MessageEnvelope{Message: "cache ok"})
	default:
		writeError(w, http.StatusBadRequest, "unknown action")
	}
}
