package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/recruit-notes/internal/domain"
	"github.com/recruit-notes/internal/infrastructure/cache"
	jwtinfra "github.com/recruit-notes/internal/infrastructure/jwt"
	"github.com/recruit-notes/internal/pkg/id"
	"github.com/recruit-notes/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

// Session is the cached record of a signed-out bearer. It lives until the
// bearer itself would have expired.
type Session struct {
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	SignedOutAt time.Time `json:"signed_out_at"`
}

// Result is returned by sign-up and sign-in.
type Result struct {
	User   *domain.User `json:"user"`
	Bearer string       `json:"bearer"`
}

type Service interface {
	SignUp(ctx context.Context, req domain.SignUpRequest) (*Result, error)
	SignIn(ctx context.Context, req domain.SignInRequest) (*Result, error)
	Profile(ctx context.Context, userID string) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error)
	Verify(ctx context.Context, bearer string) (*domain.User, error)
	SignOut(ctx context.Context, claims *jwtinfra.Claims) error
	// SignedOut reports whether the session has been ended. A cache miss
	// counts as still signed in.
	SignedOut(ctx context.Context, userID, sessionID string) bool
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	UpdateName(ctx context.Context, userID, name string) error
}

type tokenProvider interface {
	Sign(userID, email, name, sessionID string) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
}

type service struct {
	users  userStore
	tokens tokenProvider
	cache  cache.Cache
}

type ServiceDeps struct {
	UserRepo    userStore
	JWTProvider tokenProvider
	Cache       cache.Cache
}

func NewService(deps ServiceDeps) Service {
	c := deps.Cache
	if c == nil {
		c = cache.Noop{}
	}
	return &service{users: deps.UserRepo, tokens: deps.JWTProvider, cache: c}
}

func (s *service) SignUp(ctx context.Context, req domain.SignUpRequest) (*Result, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	_, err := s.users.GetByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, fmt.Errorf("email already registered: %w", domain.ErrConflict)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:       id.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, err
	}
	return s.startSession(u)
}

func (s *service) SignIn(ctx context.Context, req domain.SignInRequest) (*Result, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	return s.startSession(u)
}

func (s *service) Profile(ctx context.Context, userID string) (*domain.User, error) {
	return cache.Fetch(ctx, s.cache, cache.UserProfileKey(userID), cache.TTLLong,
		func(ctx context.Context) (*domain.User, error) {
			return s.users.Get(ctx, userID)
		})
}

func (s *service) UpdateProfile(ctx context.Context, userID string, req domain.UpdateProfileRequest) (*domain.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if err := s.users.UpdateName(ctx, userID, req.Name); err != nil {
		return nil, err
	}
	s.cache.Delete(ctx, cache.UserProfileKey(userID))
	return s.users.Get(ctx, userID)
}

func (s *service) Verify(ctx context.Context, bearer string) (*domain.User, error) {
	claims, err := s.tokens.Verify(bearer)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", domain.ErrUnauthorized)
	}
	if s.SignedOut(ctx, claims.UserID, claims.SessionID) {
		return nil, fmt.Errorf("session ended: %w", domain.ErrUnauthorized)
	}
	u, err := s.Profile(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("unknown user: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	return u, nil
}

// SignOut records the bearer's session as ended and drops the cached profile.
// Other sessions of the same user stay valid.
func (s *service) SignOut(ctx context.Context, claims *jwtinfra.Claims) error {
	if claims == nil || claims.SessionID == "" {
		return fmt.Errorf("missing session: %w", domain.ErrUnauthorized)
	}
	ttl := cache.TTLDay
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl > 0 {
		rec := Session{SessionID: claims.SessionID, UserID: claims.UserID, SignedOutAt: time.Now().UTC()}
		s.cache.SetJSON(ctx, cache.UserSessionKey(claims.UserID, claims.SessionID), rec, ttl)
	}
	s.cache.Delete(ctx, cache.UserProfileKey(claims.UserID))
	return nil
}

func (s *service) SignedOut(ctx context.Context, userID, sessionID string) bool {
	if sessionID == "" {
		return false
	}
	var rec Session
	return s.cache.GetJSON(ctx, cache.UserSessionKey(userID, sessionID), &rec)
}

func (s *service) startSession(u *domain.User) (*Result, error) {
	bearer, err := s.tokens.Sign(u.UserID, u.Email, u.Name, id.New())
	if err != nil {
		return nil, err
	}
	return &Result{User: u, Bearer: bearer}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
