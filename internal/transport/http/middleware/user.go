package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/recruit-notes/internal/domain"
)

const userKey contextKey = "user"

type identity interface {
	Profile(ctx context.Context, userID string) (*domain.User, error)
	SignedOut(ctx context.Context, userID, sessionID string) bool
}

// CurrentUser runs after Auth. It rejects bearers whose session was signed
// out and loads the caller's stored profile so handlers see the current
// display name rather than the one signed into the token. A user that no
// longer exists is rejected; any other lookup failure falls back to the claims.
func CurrentUser(profiles identity) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			if profiles.SignedOut(r.Context(), claims.UserID, claims.SessionID) {
				writeJSONError(w, http.StatusUnauthorized, "session ended")
				return
			}
			u, err := profiles.Profile(r.Context(), claims.UserID)
			switch {
			case err == nil:
				me := *u
				me.PasswordHash = ""
				next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), me)))
			case errors.Is(err, domain.ErrNotFound):
				writeJSONError(w, http.StatusUnauthorized, "unknown user")
			default:
				slog.Warn("profile lookup failed, using token claims", "user_id", claims.UserID, "err", err)
				next.ServeHTTP(w, r)
			}
		})
	}
}

// WithUser returns a copy of ctx carrying the resolved caller.
func WithUser(ctx context.Context, u domain.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

// UserFromContext returns the caller resolved by CurrentUser.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(userKey).(domain.User)
	return u, ok
}
