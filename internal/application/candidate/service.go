package candidate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/recruit-notes/internal/application/notification"
	"github.com/recruit-notes/internal/domain"
	"github.com/recruit-notes/internal/infrastructure/cache"
	s3infra "github.com/recruit-notes/internal/infrastructure/s3"
	"github.com/recruit-notes/internal/infrastructure/sns"
	"github.com/recruit-notes/internal/pkg/id"
	"github.com/recruit-notes/internal/pkg/realtime"
	"github.com/recruit-notes/internal/pkg/validate"
)

const resumeURLTTL = 15 * time.Minute

type Service interface {
	Create(ctx context.Context, creator domain.User, req domain.CreateCandidateRequest) (*domain.Candidate, error)
	List(ctx context.Context, userID, search string) ([]domain.Candidate, error)
	Get(ctx context.Context, candidateID string) (*domain.Candidate, error)
	Update(ctx context.Context, actor domain.User, candidateID string, req domain.UpdateCandidateRequest) (*domain.Candidate, error)
	Delete(ctx context.Context, actor domain.User, candidateID string) error
	UploadResume(ctx context.Context, candidateID, filename, contentType string, r io.Reader) (*domain.Candidate, error)
	ResumeURL(ctx context.Context, candidateID string) (string, error)
}

type candidateStore interface {
	Put(ctx context.Context, c *domain.Candidate) error
	Get(ctx context.Context, candidateID string) (*domain.Candidate, error)
	GetByEmail(ctx context.Context, email string) (*domain.Candidate, error)
	ListAll(ctx context.Context) ([]domain.Candidate, error)
	Update(ctx context.Context, candidateID string, req domain.UpdateCandidateRequest) error
	SetResumeKey(ctx context.Context, candidateID, key string) error
	Delete(ctx context.Context, candidateID string) error
}

type broadcaster interface {
	NotifyCandidateCreated(ctx context.Context, c domain.Candidate, creator domain.User) notification.Result
}

type resumeStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	repo    candidateStore
	fanout  broadcaster
	resumes resumeStore
	cache   cache.Cache
	events  sns.EventPublisher
	broker  realtime.Broker
	async   func(func())
}

type ServiceDeps struct {
	CandidateRepo candidateStore
	Fanout        broadcaster
	Resumes       resumeStore
	Cache         cache.Cache
	Events        sns.EventPublisher
	Broker        realtime.Broker
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:    deps.CandidateRepo,
		fanout:  deps.Fanout,
		resumes: deps.Resumes,
		cache:   deps.Cache,
		events:  deps.Events,
		broker:  deps.Broker,
		async:   func(f func()) { go f() },
	}
	if s.cache == nil {
		s.cache = cache.Noop{}
	}
	if s.events == nil {
		s.events = sns.Noop{}
	}
	if s.broker == nil {
		s.broker = realtime.NewHub()
	}
	return s
}

func (s *service) Create(ctx context.Context, creator domain.User, req domain.CreateCandidateRequest) (*domain.Candidate, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if req.Status == "" {
		req.Status = domain.CandidatePending
	}
	if !req.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", req.Status, domain.ErrBadRequest)
	}
	if err := s.ensureEmailFree(ctx, req.Email, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	c := &domain.Candidate{
		CandidateID: id.New(),
		Name:        req.Name,
		Email:       req.Email,
		Position:    req.Position,
		Phone:       req.Phone,
		Location:    req.Location,
		Status:      req.Status,
		CreatedBy:   creator.UserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, c); err != nil {
		return nil, err
	}
	s.invalidateLists(ctx)
	s.cache.PushActivity(ctx, creator.UserID, domain.Activity{
		Action: "candidate_created", CandidateID: c.CandidateID, Detail: c.Name, Timestamp: now,
	})
	s.events.Publish(ctx, domain.EventCandidateCreated, c)

	created := *c
	bg := context.WithoutCancel(ctx)
	s.async(func() {
		res := s.fanout.NotifyCandidateCreated(bg, created, creator)
		if res.Failed > 0 {
			slog.Warn("candidate broadcast incomplete", "candidate_id", created.CandidateID, "sent", res.Sent, "failed", res.Failed)
		}
	})
	return c, nil
}

// List returns every candidate newest first. search filters by name, email
// or position, ignoring case.
func (s *service) List(ctx context.Context, userID, search string) ([]domain.Candidate, error) {
	q := strings.ToLower(strings.TrimSpace(search))
	key := cache.CandidateListKey(userID)
	if q != "" {
		key = cache.SearchResultsKey(userID, q)
	}
	return cache.Fetch(ctx, s.cache, key, cache.TTLShort, func(ctx context.Context) ([]domain.Candidate, error) {
		all, err := s.repo.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]domain.Candidate, 0, len(all))
		for _, c := range all {
			if q == "" || matches(c, q) {
				out = append(out, c)
			}
		}
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
		return out, nil
	})
}

func (s *service) Get(ctx context.Context, candidateID string) (*domain.Candidate, error) {
	return cache.Fetch(ctx, s.cache, cache.CandidateKey(candidateID), cache.TTLMedium,
		func(ctx context.Context) (*domain.Candidate, error) {
			return s.repo.Get(ctx, candidateID)
		})
}

func (s *service) Update(ctx context.Context, actor domain.User, candidateID string, req domain.UpdateCandidateRequest) (*domain.Candidate, error) {
	if req.Name != nil {
		trimmed := strings.TrimSpace(*req.Name)
		req.Name = &trimmed
	}
	if req.Email != nil {
		normalized := normalizeEmail(*req.Email)
		req.Email = &normalized
	}
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if req.Status != nil && !req.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", *req.Status, domain.ErrBadRequest)
	}
	if req.Email != nil {
		if err := s.ensureEmailFree(ctx, *req.Email, candidateID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, candidateID, req); err != nil {
		return nil, err
	}
	s.invalidate(ctx, candidateID)
	s.cache.PushActivity(ctx, actor.UserID, domain.Activity{
		Action: "candidate_updated", CandidateID: candidateID, Timestamp: time.Now().UTC(),
	})
	return s.repo.Get(ctx, candidateID)
}

func (s *service) Delete(ctx context.Context, actor domain.User, candidateID string) error {
	c, err := s.repo.Get(ctx, candidateID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, candidateID); err != nil {
		return err
	}
	if c.ResumeKey != nil && s.resumes != nil {
		if err := s.resumes.Delete(ctx, *c.ResumeKey); err != nil {
			slog.Warn("delete resume object", "candidate_id", candidateID, "key", *c.ResumeKey, "err", err)
		}
	}
	s.invalidate(ctx, candidateID)
	s.cache.PushActivity(ctx, actor.UserID, domain.Activity{
		Action: "candidate_deleted", CandidateID: candidateID, Detail: c.Name, Timestamp: time.Now().UTC(),
	})
	s.events.Publish(ctx, "candidate.deleted", map[string]string{"id": candidateID})
	return nil
}

func (s *service) UploadResume(ctx context.Context, candidateID, filename, contentType string, r io.Reader) (*domain.Candidate, error) {
	if s.resumes == nil {
		return nil, fmt.Errorf("resume storage not configured: %w", domain.ErrUnavailable)
	}
	c, err := s.repo.Get(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	key := s3infra.ResumeKey(candidateID, id.New(), filename)
	if err := s.resumes.Upload(ctx, key, r, contentType); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrUnavailable)
	}
	if err := s.repo.SetResumeKey(ctx, candidateID, key); err != nil {
		return nil, err
	}
	if c.ResumeKey != nil {
		if err := s.resumes.Delete(ctx, *c.ResumeKey); err != nil {
			slog.Warn("delete replaced resume", "candidate_id", candidateID, "key", *c.ResumeKey, "err", err)
		}
	}
	s.invalidate(ctx, candidateID)
	c.ResumeKey = &key
	return c, nil
}

func (s *service) ResumeURL(ctx context.Context, candidateID string) (string, error) {
	if s.resumes == nil {
		return "", fmt.Errorf("resume storage not configured: %w", domain.ErrUnavailable)
	}
	c, err := s.Get(ctx, candidateID)
	if err != nil {
		return "", err
	}
	if c.ResumeKey == nil {
		return "", fmt.Errorf("candidate has no resume: %w", domain.ErrNotFound)
	}
	return s.resumes.PresignedURL(ctx, *c.ResumeKey, resumeURLTTL)
}

func (s *service) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing.CandidateID != selfID:
		return fmt.Errorf("candidate with email %s already exists: %w", email, domain.ErrConflict)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return err
	}
	return nil
}

func (s *service) invalidate(ctx context.Context, candidateID string) {
	s.cache.Delete(ctx, cache.CandidateKey(candidateID))
	s.invalidateLists(ctx)
}

// invalidateLists drops every user's cached list and search results, since
// the pipeline is shared.
func (s *service) invalidateLists(ctx context.Context) {
	s.cache.DeletePattern(ctx, cache.CandidateListKey("*"))
	s.cache.DeletePattern(ctx, cache.SearchResultsPattern("*"))
}

func matches(c domain.Candidate, q string) bool {
	if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Email), q) {
		return true
	}
	return c.Position != nil && strings.Contains(strings.ToLower(*c.Position), q)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
