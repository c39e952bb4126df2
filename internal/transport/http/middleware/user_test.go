package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/recruit-notes/internal/domain"
	jwtinfra "github.com/recruit-notes/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profileFunc func(ctx context.Context, userID string) (*domain.User, error)

func (f profileFunc) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return f(ctx, userID)
}

func (f profileFunc) SignedOut(context.Context, string, string) bool { return false }

type signedOut struct{ profileFunc }

func (signedOut) SignedOut(_ context.Context, _, sessionID string) bool { return sessionID == "s1" }

func serveWithClaims(t *testing.T, profiles identity) (*httptest.ResponseRecorder, domain.User, bool) {
	t.Helper()
	var seen domain.User
	var found bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, found = UserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithClaims(req.Context(), &jwtinfra.Claims{UserID: "u1", Name: "Alice", SessionID: "s1"}))
	rr := httptest.NewRecorder()
	CurrentUser(profiles)(next).ServeHTTP(rr, req)
	return rr, seen, found
}

func TestCurrentUser_UsesStoredName(t *testing.T) {
	rr, u, ok := serveWithClaims(t, profileFunc(func(_ context.Context, id string) (*domain.User, error) {
		return &domain.User{UserID: id, Name: "Alicia", PasswordHash: "hash"}, nil
	}))

	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, ok)
	assert.Equal(t, "Alicia", u.Name)
	assert.Empty(t, u.PasswordHash)
}

func TestCurrentUser_UnknownUserRejected(t *testing.T) {
	rr, _, _ := serveWithClaims(t, profileFunc(func(context.Context, string) (*domain.User, error) {
		return nil, fmt.Errorf("user not found: %w", domain.ErrNotFound)
	}))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCurrentUser_LookupFailureFallsBackToClaims(t *testing.T) {
	rr, _, ok := serveWithClaims(t, profileFunc(func(context.Context, string) (*domain.User, error) {
		return nil, errors.New("dynamo down")
	}))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, ok)
}

func TestCurrentUser_SignedOutSessionRejected(t *testing.T) {
	rr, _, _ := serveWithClaims(t, signedOut{profileFunc(func(context.Context, string) (*domain.User, error) {
		t.Fatal("profile must not be read for an ended session")
		return nil, nil
	})})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCurrentUser_NoClaims(t *testing.T) {
	rr := httptest.NewRecorder()
	CurrentUser(profileFunc(func(context.Context, string) (*domain.User, error) {
		t.Fatal("profile must not be read without claims")
		return nil, nil
	}))(http.HandlerFunc(okHandler)).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
