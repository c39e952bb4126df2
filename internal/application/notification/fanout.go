package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/recruit-notes/internal/domain"
	"github.com/recruit-notes/internal/infrastructure/cache"
	"github.com/recruit-notes/internal/infrastructure/push"
	"github.com/recruit-notes/internal/pkg/id"
	"github.com/recruit-notes/internal/pkg/realtime"
	"golang.org/x/sync/errgroup"
)

const (
	previewLength      = 100
	defaultConcurrency = 8
)

// Result counts the outcome of one fan-out.
type Result struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

type notificationWriter interface {
	Put(ctx context.Context, n *domain.Notification) error
}

type directory interface {
	ListAll(ctx context.Context) ([]domain.User, error)
}

// Fanout writes one notification per recipient. Writes are independent: a
// failure is logged and counted and never aborts the others or the caller.
type Fanout struct {
	store       notificationWriter
	users       directory
	cache       cache.Cache
	broker      realtime.Broker
	push        push.Sender
	concurrency int
}

type FanoutDeps struct {
	NotificationRepo notificationWriter
	UserRepo         directory
	Cache            cache.Cache
	Broker           realtime.Broker
	Push             push.Sender
	Concurrency      int
}

func NewFanout(deps FanoutDeps) *Fanout {
	f := &Fanout{
		store:       deps.NotificationRepo,
		users:       deps.UserRepo,
		cache:       deps.Cache,
		broker:      deps.Broker,
		push:        deps.Push,
		concurrency: deps.Concurrency,
	}
	if f.cache == nil {
		f.cache = cache.Noop{}
	}
	if f.broker == nil {
		f.broker = realtime.NewHub()
	}
	if f.push == nil {
		f.push = push.Noop{}
	}
	if f.concurrency <= 0 {
		f.concurrency = defaultConcurrency
	}
	return f
}

// NotifyMentions notifies every user in note.Mentions except the author, at
// most once per note.
func (f *Fanout) NotifyMentions(ctx context.Context, note domain.Note, candidate domain.Candidate) Result {
	seen := make(map[string]struct{}, len(note.Mentions))
	var out []*domain.Notification
	now := time.Now().UTC()
	for _, userID := range note.Mentions {
		if userID == note.AuthorID {
			continue
		}
		if _, dup := seen[userID]; dup {
			continue
		}
		seen[userID] = struct{}{}
		out = append(out, &domain.Notification{
			NotificationID: id.At(now),
			UserID:         userID,
			Type:           domain.NotificationMention,
			Message:        fmt.Sprintf("%s mentioned you in a note about %s", note.AuthorName, candidate.Name),
			Content:        Preview(note.Content),
			CandidateID:    candidate.CandidateID,
			CandidateName:  candidate.Name,
			NoteID:         note.NoteID,
			FromUserID:     note.AuthorID,
			FromUserName:   note.AuthorName,
			CreatedAt:      now,
		})
	}
	return f.deliver(ctx, out)
}

// NotifyCandidateCreated tells every user except the creator about a new
// candidate. The directory is read fresh.
func (f *Fanout) NotifyCandidateCreated(ctx context.Context, candidate domain.Candidate, creator domain.User) Result {
	users, err := f.users.ListAll(ctx)
	if err != nil {
		slog.Warn("candidate broadcast: list users", "candidate_id", candidate.CandidateID, "err", err)
		return Result{}
	}
	now := time.Now().UTC()
	var out []*domain.Notification
	for _, u := range users {
		if u.UserID == creator.UserID {
			continue
		}
		out = append(out, &domain.Notification{
			NotificationID: id.At(now),
			UserID:         u.UserID,
			Type:           domain.NotificationCandidate,
			Message:        fmt.Sprintf("New candidate added by %s: %s", creator.Name, candidate.Name),
			CandidateID:    candidate.CandidateID,
			CandidateName:  candidate.Name,
			FromUserID:     creator.UserID,
			FromUserName:   creator.Name,
			CreatedAt:      now,
		})
	}
	return f.deliver(ctx, out)
}

func (f *Fanout) deliver(ctx context.Context, notifications []*domain.Notification) Result {
	var sent, failed atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for _, n := range notifications {
		g.Go(func() error {
			if err := f.store.Put(gctx, n); err != nil {
				failed.Add(1)
				slog.Warn("notification write failed",
					"recipient", n.UserID, "type", n.Type,
					"candidate_id", n.CandidateID, "note_id", n.NoteID, "err", err)
				return nil
			}
			sent.Add(1)
			f.announce(gctx, n)
			return nil
		})
	}
	_ = g.Wait()
	return Result{Sent: int(sent.Load()), Failed: int(failed.Load())}
}

// announce runs the best-effort side effects of a stored notification.
func (f *Fanout) announce(ctx context.Context, n *domain.Notification) {
	f.cache.Delete(ctx, cache.NotificationsKey(n.UserID))
	if n.Type == domain.NotificationCandidate {
		f.cache.Delete(ctx, cache.CandidateListKey(n.UserID))
	}
	f.broker.Publish(realtime.UserTopic(n.UserID), realtime.Event{Type: domain.EventNotificationCreated, Data: n})
	f.push.SendToUser(ctx, n.UserID, "Recruit Notes", n.Message, map[string]string{
		"notification_id": n.NotificationID,
		"type":            string(n.Type),
		"candidate_id":    n.CandidateID,
	})
}

// Preview shortens note content for the notification body.
func Preview(content string) string {
	r := []rune(content)
	if len(r) <= previewLength {
		return content
	}
	return string(r[:previewLength]) + "..."
}
