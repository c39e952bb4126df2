package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/recruit-notes/internal/application/notification"
	"github.com/recruit-notes/internal/domain"
	"github.com/recruit-notes/internal/pkg/validate"
)

// NotificationHandler handles the caller's inbox.
type NotificationHandler struct {
	svc notification.Service
}

func NewNotificationHandler(svc notification.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	me, ok := actor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	limit, ok := intParam(w, q.Get("limit"))
	if !ok {
		return
	}
	page, err := h.svc.List(r.Context(), me.UserID, notification.ListQuery{
		UnreadOnly: q.Get("unreadOnly") == "true",
		Limit:      limit,
		Cursor:     q.Get("cursor"),
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	me, ok := actor(w, r)
	if !ok {
		return
	}
	n, err := h.svc.UnreadCount(r.Context(), me.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountEnvelope{Count: n})
}

func (h *NotificationHandler) Get(w http.ResponseWriter, r *http.Request) {
	me, ok := actor(w, r)
	if !ok {
		return
	}
	n, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"), me.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// Mark sets the read state of one notification from {"read": bool}.
func (h *NotificationHandler) Mark(w http.ResponseWriter, r *http.Request) {
	me, ok := actor(w, r)
	if !ok {
		return
	}
	var req domain.MarkNotificationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		httpError(w, err)
		return
	}
	var (
		n   *domain.Notification
		err error
	)
	if *req.Read {
		n, err = h.svc.MarkAsRead(r.Context(), chi.URLParam(r, "id"), me.UserID)
	} else {
		n, err = h.svc.MarkUnread(r.Context(), chi.URLParam(r, "id"), me.UserID)
	}
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NotificationHandler) MarkAll(w http.ResponseWriter, r *http.Request) {
	me, ok := actor(w, r)
	if !ok {
		return
	}
	n, err := h.svc.MarkAllAsRead(r.Context(), me.UserID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CountEnvelope{Count: n})
}
