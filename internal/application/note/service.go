package note

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/recruit-notes/internal/application/mention"
	"github.com/recruit-notes/internal/application/notification"
	"github.com/recruit-notes/internal/domain"
	"github.com/recruit-notes/internal/infrastructure/cache"
	"github.com/recruit-notes/internal/infrastructure/sns"
	"github.com/recruit-notes/internal/pkg/id"
	"github.com/recruit-notes/internal/pkg/realtime"
	"github.com/recruit-notes/internal/pkg/validate"
)

const MaxLimit = 100

type Page struct {
	Messages   []domain.Note `json:"messages"`
	NextCursor string        `json:"next_cursor,omitempty"`
	HasNext    bool          `json:"has_next"`
}

type Service interface {
	Create(ctx context.Context, author domain.User, req domain.CreateNoteRequest) (*domain.Note, error)
	List(ctx context.Context, candidateID string, limit int32, cursor string) (Page, error)
}

type noteStore interface {
	Put(ctx context.Context, n *domain.Note) error
	ListByCandidate(ctx context.Context, candidateID string, limit int32, cursor string) ([]domain.Note, string, error)
}

type candidateReader interface {
	Get(ctx context.Context, candidateID string) (*domain.Candidate, error)
}

type mentionResolver interface {
	ResolveAll(ctx context.Context, mentions []string) ([]string, error)
}

type mentionNotifier interface {
	NotifyMentions(ctx context.Context, note domain.Note, candidate domain.Candidate) notification.Result
}

type service struct {
	repo       noteStore
	candidates candidateReader
	resolver   mentionResolver
	fanout     mentionNotifier
	cache      cache.Cache
	broker     realtime.Broker
	events     sns.EventPublisher
	async      func(func())
}

type ServiceDeps struct {
	NoteRepo   noteStore
	Candidates candidateReader
	Resolver   mentionResolver
	Fanout     mentionNotifier
	Cache      cache.Cache
	Broker     realtime.Broker
	Events     sns.EventPublisher
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:       deps.NoteRepo,
		candidates: deps.Candidates,
		resolver:   deps.Resolver,
		fanout:     deps.Fanout,
		cache:      deps.Cache,
		broker:     deps.Broker,
		events:     deps.Events,
		async:      func(f func()) { go f() },
	}
	if s.cache == nil {
		s.cache = cache.Noop{}
	}
	if s.broker == nil {
		s.broker = realtime.NewHub()
	}
	if s.events == nil {
		s.events = sns.Noop{}
	}
	return s
}

// Create stores a note with the user IDs its @mentions resolve to and then
// notifies those users in the background. A failed resolution stores the
// note without mentions.
func (s *service) Create(ctx context.Context, author domain.User, req domain.CreateNoteRequest) (*domain.Note, error) {
	req.Content = strings.TrimSpace(req.Content)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	c, err := s.candidates.Get(ctx, req.CandidateID)
	if err != nil {
		return nil, err
	}

	mentions, err := s.resolver.ResolveAll(ctx, mention.Parse(req.Content))
	if err != nil {
		slog.Warn("resolve mentions", "candidate_id", c.CandidateID, "err", err)
		mentions = nil
	}
	if mentions == nil {
		mentions = []string{}
	}

	now := time.Now().UTC()
	n := &domain.Note{
		NoteID:      id.At(now),
		CandidateID: c.CandidateID,
		Content:     req.Content,
		AuthorID:    author.UserID,
		AuthorName:  author.Name,
		Mentions:    mentions,
		CreatedAt:   now,
	}
	if err := s.repo.Put(ctx, n); err != nil {
		return nil, err
	}

	s.broker.Publish(realtime.CandidateTopic(c.CandidateID), realtime.Event{Type: domain.EventNoteCreated, Data: n})
	s.cache.PushActivity(ctx, author.UserID, domain.Activity{
		Action: "note_created", CandidateID: c.CandidateID, Detail: notification.Preview(n.Content), Timestamp: now,
	})
	s.events.Publish(ctx, domain.EventNoteCreated, n)

	if len(mentions) > 0 {
		note, candidate := *n, *c
		bg := context.WithoutCancel(ctx)
		s.async(func() {
			res := s.fanout.NotifyMentions(bg, note, candidate)
			if res.Failed > 0 {
				slog.Warn("mention fan-out incomplete", "note_id", note.NoteID, "sent", res.Sent, "failed", res.Failed)
			}
		})
	}
	return n, nil
}

// List returns a candidate's thread oldest first. limit 0 returns the whole
// thread.
func (s *service) List(ctx context.Context, candidateID string, limit int32, cursor string) (Page, error) {
	if _, err := s.candidates.Get(ctx, candidateID); err != nil {
		return Page{}, err
	}
	if limit < 0 || limit > MaxLimit {
		limit = MaxLimit
	}
	notes, next, err := s.repo.ListByCandidate(ctx, candidateID, limit, cursor)
	if err != nil {
		return Page{}, err
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	sort.SliceStable(notes, func(i, j int) bool { return notes[i].CreatedAt.Before(notes[j].CreatedAt) })
	return Page{Messages: notes, NextCursor: next, HasNext: next != ""}, nil
}
