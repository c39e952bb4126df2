package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/recruit-notes/internal/domain"
	"github.com/recruit-notes/internal/pkg/realtime"
)

const defaultHeartbeat = 25 * time.Second

type inboxWatcher interface {
	Watch(ctx context.Context, userID string) *realtime.Subscription
}

type candidateLookup interface {
	Get(ctx context.Context, candidateID string) (*domain.Candidate, error)
}

type presenceTracker interface {
	Connect(ctx context.Context, userID string)
	Disconnect(ctx context.Context, userID string)
}

// StreamHandler serves server-sent event streams.
type StreamHandler struct {
	inbox      inboxWatcher
	candidates candidateLookup
	broker     realtime.Broker
	presence   presenceTracker
	heartbeat  time.Duration
}

type StreamDeps struct {
	Inbox      inboxWatcher
	Candidates candidateLookup
	Broker     realtime.Broker
	Presence   presenceTracker
	Heartbeat  time.Duration
}

func NewStreamHandler(deps StreamDeps) *StreamHandler {
	h := &StreamHandler{
		inbox:      deps.Inbox,
		candidates: deps.Candidates,
		broker:     deps.Broker,
		presence:   deps.Presence,
		heartbeat:  deps.Heartbeat,
	}
	if h.heartbeat <= 0 {
		h.heartbeat = defaultHeartbeat
	}
	return h
}

// Notifications streams the caller's inbox, starting with a snapshot. The
// caller is marked online while connected.
func (h *StreamHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	me, ok := actor(w, r)
	if !ok {
		return
	}
	sub := h.inbox.Watch(r.Context(), me.UserID)
	defer sub.Close()

	if h.presence != nil {
		h.presence.Connect(r.Context(), me.UserID)
		defer h.presence.Disconnect(context.WithoutCancel(r.Context()), me.UserID)
	}
	h.serve(w, r, sub, func() {
		if h.presence != nil {
			h.presence.Connect(r.Context(), me.UserID)
		}
	})
}

// CandidateNotes streams notes added to one candidate's thread.
func (h *StreamHandler) CandidateNotes(w http.ResponseWriter, r *http.Request) {
	candidateID := chi.URLParam(r, "id")
	if _, err := h.candidates.Get(r.Context(), candidateID); err != nil {
		httpError(w, err)
		return
	}
	sub := h.broker.Subscribe(realtime.CandidateTopic(candidateID))
	defer sub.Close()
	h.serve(w, r, sub, nil)
}

func (h *StreamHandler) serve(w http.ResponseWriter, r *http.Request, sub *realtime.Subscription, onBeat func()) {
	rc := http.NewResponseController(w)
	// Streams outlive the server's WriteTimeout.
	_ = rc.SetWriteDeadline(time.Time{})
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		slog.Warn("stream: flush unsupported", "err", err)
		return
	}

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()
	for {
		var err error
		select {
		case <-r.Context().Done():
			return
		case <-sub.Done():
			return
		case ev := <-sub.Events():
			err = writeEvent(w, ev.Type, ev.Data)
		case serr := <-sub.Errors():
			err = writeEvent(w, "error", MessageEnvelope{Error: serr.Error()})
		case <-ticker.C:
			if onBeat != nil {
				onBeat()
			}
			_, err = fmt.Fprint(w, ": heartbeat\n\n")
		}
		if err == nil {
			err = rc.Flush()
		}
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				slog.Debug("stream closed", "err", err)
			}
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, name string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, payload)
	return err
}
