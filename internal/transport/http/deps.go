package http

import (
	"context"
	"io"
	"time"

	"github.com/recruit-notes/internal/application/summary"
	"github.com/recruit-notes/internal/domain"
	"github.com/recruit-notes/internal/infrastructure/cache"
	jwtinfra "github.com/recruit-notes/internal/infrastructure/jwt"
	"github.com/recruit-notes/internal/infrastructure/push"
	"github.com/recruit-notes/internal/infrastructure/sns"
	"github.com/recruit-notes/internal/pkg/realtime"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateName(ctx context.Context, userID, name string) error
	ListAll(ctx context.Context) ([]domain.User, error)
}

// CandidateRepository is the minimal interface the router requires from a candidate store.
type CandidateRepository interface {
	Put(ctx context.Context, c *domain.Candidate) error
	Get(ctx context.Context, candidateID string) (*domain.Candidate, error)
	GetByEmail(ctx context.Context, email string) (*domain.Candidate, error)
	ListAll(ctx context.Context) ([]domain.Candidate, error)
	Update(ctx context.Context, candidateID string, req domain.UpdateCandidateRequest) error
	SetResumeKey(ctx context.Context, candidateID, key string) error
	Delete(ctx context.Context, candidateID string) error
}

// NoteRepository is the minimal interface the router requires from a note store.
type NoteRepository interface {
	Put(ctx context.Context, n *domain.Note) error
	ListByCandidate(ctx context.Context, candidateID string, limit int32, cursor string) ([]domain.Note, string, error)
}

// NotificationRepository is the minimal interface the router requires from a notification store.
type NotificationRepository interface {
	Put(ctx context.Context, n *domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	List(ctx context.Context, userID string, unreadOnly bool, limit int32, cursor string) ([]domain.Notification, string, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	UnreadIDs(ctx context.Context, userID string) ([]string, error)
	MarkRead(ctx context.Context, notificationID string) error
	MarkUnread(ctx context.Context, notificationID, userID string) error
	MarkReadBatch(ctx context.Context, notificationIDs []string) error
}

// DeviceRepository is the minimal interface the router requires from a device store.
type DeviceRepository interface {
	Put(ctx context.Context, d *domain.Device) error
	GetByUUID(ctx context.Context, uuid string) (*domain.Device, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Device, error)
	Reassign(ctx context.Context, deviceID, userID, token string) error
}

// ObjectStore is the minimal interface the router requires from resume storage.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// Deps holds all infrastructure dependencies for the router. Optional
// collaborators (Resumes, Events, Push, Generator) may be left nil; they must
// never hold a typed nil.
type Deps struct {
	UserRepo         UserRepository
	CandidateRepo    CandidateRepository
	NoteRepo         NoteRepository
	NotificationRepo NotificationRepository
	DeviceRepo       DeviceRepository
	Resumes          ObjectStore
	Events           sns.EventPublisher
	Push             push.Sender
	Generator        summary.Generator
	Cache            cache.Cache
	Broker           realtime.Broker
	JWTProvider      *jwtinfra.Provider
}
