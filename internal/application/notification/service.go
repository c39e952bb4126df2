package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/recruit-notes/internal/domain"
	"github.com/recruit-notes/internal/infrastructure/cache"
	"github.com/recruit-notes/internal/pkg/realtime"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100

	// markBatchSize matches the DynamoDB transaction item limit.
	markBatchSize = 100
	snapshotSize  = 50

	defaultSnapshotTimeout = 5 * time.Second
)

// ErrSnapshotTimeout is reported on a watch subscription when the initial
// inbox snapshot is late. The subscription stays open.
var ErrSnapshotTimeout = errors.New("inbox snapshot timed out")

type ListQuery struct {
	UnreadOnly bool
	Limit      int
	Cursor     string
}

type Page struct {
	Notifications []domain.Notification `json:"notifications"`
	NextCursor    string                `json:"next_cursor,omitempty"`
	HasNext       bool                  `json:"has_next"`
}

// Snapshot is the first event on a watch subscription.
type Snapshot struct {
	Notifications []domain.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

type Service interface {
	List(ctx context.Context, userID string, q ListQuery) (*Page, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	Get(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
	MarkUnread(ctx context.Context, notificationID, userID string) (*domain.Notification, error)
	MarkAllAsRead(ctx context.Context, userID string) (int, error)
	Watch(ctx context.Context, userID string) *realtime.Subscription
}

type notificationStore interface {
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	List(ctx context.Context, userID string, unreadOnly bool, limit int32, cursor string) ([]domain.Notification, string, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	UnreadIDs(ctx context.Context, userID string) ([]string, error)
	MarkRead(ctx context.Context, notificationID string) error
	MarkUnread(ctx context.Context, notificationID, userID string) error
	MarkReadBatch(ctx context.Context, notificationIDs []string) error
}

type service struct {
	repo            notificationStore
	cache           cache.Cache
	broker          realtime.Broker
	snapshotTimeout time.Duration
}

type ServiceDeps struct {
	NotificationRepo notificationStore
	Cache            cache.Cache
	Broker           realtime.Broker
	SnapshotTimeout  time.Duration
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:            deps.NotificationRepo,
		cache:           deps.Cache,
		broker:          deps.Broker,
		snapshotTimeout: deps.SnapshotTimeout,
	}
	if s.cache == nil {
		s.cache = cache.Noop{}
	}
	if s.broker == nil {
		s.broker = realtime.NewHub()
	}
	if s.snapshotTimeout <= 0 {
		s.snapshotTimeout = defaultSnapshotTimeout
	}
	return s
}

// List returns the user's notifications newest first. The default first page
// is served through the cache.
func (s *service) List(ctx context.Context, userID string, q ListQuery) (*Page, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	load := func(ctx context.Context) (*Page, error) {
		items, next, err := s.repo.List(ctx, userID, q.UnreadOnly, int32(q.Limit), q.Cursor)
		if err != nil {
			return nil, err
		}
		sortNewestFirst(items)
		if items == nil {
			items = []domain.Notification{}
		}
		return &Page{Notifications: items, NextCursor: next, HasNext: next != ""}, nil
	}
	if q.UnreadOnly || q.Cursor != "" || q.Limit != DefaultLimit {
		return load(ctx)
	}
	return cache.Fetch(ctx, s.cache, cache.NotificationsKey(userID), cache.TTLShort, load)
}

func (s *service) UnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *service) Get(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.repo.Get(ctx, notificationID)
	if err != nil {
		return nil, err
	}
	if n.UserID != userID {
		return nil, fmt.Errorf("notification belongs to another user: %w", domain.ErrForbidden)
	}
	return n, nil
}

// MarkAsRead is idempotent: an already-read notification is returned as is.
func (s *service) MarkAsRead(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.Get(ctx, notificationID, userID)
	if err != nil {
		return nil, err
	}
	if n.Read {
		return n, nil
	}
	if err := s.repo.MarkRead(ctx, notificationID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	n.Read, n.ReadAt, n.UnreadUserID = true, &now, ""
	s.changed(ctx, userID, n)
	return n, nil
}

func (s *service) MarkUnread(ctx context.Context, notificationID, userID string) (*domain.Notification, error) {
	n, err := s.Get(ctx, notificationID, userID)
	if err != nil {
		return nil, err
	}
	if !n.Read {
		return n, nil
	}
	if err := s.repo.MarkUnread(ctx, notificationID, userID); err != nil {
		return nil, err
	}
	n.Read, n.ReadAt, n.UnreadUserID = false, nil, userID
	s.changed(ctx, userID, n)
	return n, nil
}

// MarkAllAsRead marks every unread notification of the user in atomic
// batches. When a batch fails the count of already updated items is
// returned together with the error.
func (s *service) MarkAllAsRead(ctx context.Context, userID string) (int, error) {
	ids, err := s.repo.UnreadIDs(ctx, userID)
	if err != nil {
		return 0, err
	}
	updated := 0
	for start := 0; start < len(ids); start += markBatchSize {
		end := min(start+markBatchSize, len(ids))
		if err := s.repo.MarkReadBatch(ctx, ids[start:end]); err != nil {
			if updated > 0 {
				s.changed(ctx, userID, nil)
			}
			return updated, fmt.Errorf("mark all read: %d of %d updated: %w", updated, len(ids), err)
		}
		updated += end - start
	}
	if updated > 0 {
		s.changed(ctx, userID, nil)
	}
	return updated, nil
}

// Watch subscribes to the user's live events. The first event is an inbox
// snapshot; if it is not ready within the snapshot timeout ErrSnapshotTimeout
// is sent on Errors and the snapshot is still delivered when it arrives.
// Cancelling ctx closes the subscription.
func (s *service) Watch(ctx context.Context, userID string) *realtime.Subscription {
	sub := s.broker.Subscribe(realtime.UserTopic(userID))
	go func() {
		select {
		case <-ctx.Done():
			sub.Close()
		case <-sub.Done():
		}
	}()
	go s.sendSnapshot(ctx, userID, sub)
	return sub
}

func (s *service) sendSnapshot(ctx context.Context, userID string, sub *realtime.Subscription) {
	result := make(chan realtime.Event, 1)
	failed := make(chan error, 1)
	go func() {
		ev, err := s.snapshot(ctx, userID)
		if err != nil {
			failed <- err
			return
		}
		result <- ev
	}()

	timer := time.NewTimer(s.snapshotTimeout)
	defer timer.Stop()
	for timedOut := false; ; {
		var timeout <-chan time.Time
		if !timedOut {
			timeout = timer.C
		}
		select {
		case ev := <-result:
			// Live events may have filled the buffer while the snapshot loaded.
			if !sub.SendWait(ev, s.snapshotTimeout) {
				slog.Warn("inbox snapshot not delivered", "user_id", userID)
			}
			return
		case err := <-failed:
			sub.Fail(err)
			return
		case <-timeout:
			timedOut = true
			sub.Fail(ErrSnapshotTimeout)
		case <-sub.Done():
			return
		}
	}
}

func (s *service) snapshot(ctx context.Context, userID string) (realtime.Event, error) {
	items, _, err := s.repo.List(ctx, userID, false, snapshotSize, "")
	if err != nil {
		return realtime.Event{}, err
	}
	count, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return realtime.Event{}, err
	}
	sortNewestFirst(items)
	if items == nil {
		items = []domain.Notification{}
	}
	return realtime.Event{
		Type: domain.EventInboxSnapshot,
		Data: Snapshot{Notifications: items, UnreadCount: count},
	}, nil
}

// changed drops the cached inbox and tells live subscribers. n is nil for
// bulk changes.
func (s *service) changed(ctx context.Context, userID string, n *domain.Notification) {
	s.cache.Delete(ctx, cache.NotificationsKey(userID))
	var data interface{}
	if n != nil {
		data = n
	}
	s.broker.Publish(realtime.UserTopic(userID), realtime.Event{Type: domain.EventNotificationUpdated, Data: data})
}

func sortNewestFirst(items []domain.Notification) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}
