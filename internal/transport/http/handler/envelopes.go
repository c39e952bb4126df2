package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/recruit-notes/internal/domain"
	"github.com/recruit-notes/internal/transport/http/middleware"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message   string `json:"message,omitempty"`
	Error     string `json:"error,omitempty"`
	ErrorCode int    `json:"error_code,omitempty"`
}

// AuthEnvelope wraps sign-up and sign-in responses.
type AuthEnvelope struct {
	Bearer string       `json:"Bearer,omitempty"`
	User   *domain.User `json:"user,omitempty"`
}

type CountEnvelope struct {
	Count int `json:"count"`
}

type URLEnvelope struct {
	URL string `json:"url"`
}

type QuestionsEnvelope struct {
	Questions []string `json:"questions"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg, ErrorCode: status})
}

var errBadBody = errors.New("invalid request body")

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errBadBody
	}
	return nil
}

// actor returns the calling user, preferring the profile resolved by
// CurrentUser over the token claims.
func actor(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	if u, ok := middleware.UserFromContext(r.Context()); ok {
		return u, true
	}
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return domain.User{}, false
	}
	return domain.User{UserID: claims.UserID, Name: claims.Name, Email: claims.Email}, true
}
