package handler

import (
	"net/http"
	"strconv"

	"github.com/recruit-notes/internal/application/note"
	"github.com/recruit-notes/internal/domain"
)

// MessageHandler handles the note thread of a candidate.
type MessageHandler struct {
	svc note.Service
}

func NewMessageHandler(svc note.Service) *MessageHandler { return &MessageHandler{svc: svc} }

func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	candidateID := q.Get("candidateId")
	if candidateID == "" {
		writeError(w, http.StatusBadRequest, "candidateId is required")
		return
	}
	limit, ok := intParam(w, q.Get("limit"))
	if !ok {
		return
	}
	page, err := h.svc.List(r.Context(), candidateID, int32(limit), q.Get("cursor"))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *MessageHandler) Create(w http.ResponseWriter, r *http.Request) {
	me, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.CreateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	n, err := h.svc.Create(r.Context(), me, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

// intParam parses an optional non-negative integer query value; empty is 0.
func intParam(w http.ResponseWriter, raw string) (int, bool) {
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
		return 0, false
	}
	return n, true
}
