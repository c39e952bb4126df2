package notification

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/recruit-notes/internal/domain"
)

// memStore is an in-memory notification table shared by the tests.
type memStore struct {
	mu            sync.Mutex
	items         map[string]*domain.Notification
	failPutFor    map[string]bool
	failBatch     int
	batches       [][]string
	markReadCalls int
	listGate      chan struct{}
}

func newMemStore() *memStore {
	return &memStore{items: map[string]*domain.Notification{}, failPutFor: map[string]bool{}}
}

func (m *memStore) seed(userID string, n int, read bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("%s-%03d", userID, len(m.items))
		m.items[id] = &domain.Notification{
			NotificationID: id,
			UserID:         userID,
			Type:           domain.NotificationMention,
			Read:           read,
			CreatedAt:      base.Add(time.Duration(len(m.items)) * time.Minute),
		}
	}
}

func (m *memStore) Put(_ context.Context, n *domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPutFor[n.UserID] {
		return errors.New("write throttled")
	}
	cp := *n
	m.items[n.NotificationID] = &cp
	return nil
}

func (m *memStore) Get(_ context.Context, id string) (*domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("notification not found: %w", domain.ErrNotFound)
	}
	cp := *n
	return &cp, nil
}

func (m *memStore) List(_ context.Context, userID string, unreadOnly bool, limit int32, _ string) ([]domain.Notification, string, error) {
	if m.listGate != nil {
		<-m.listGate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for _, n := range m.items {
		if n.UserID != userID || (unreadOnly && n.Read) {
			continue
		}
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NotificationID < out[j].NotificationID })
	if int(limit) < len(out) {
		out = out[:limit]
	}
	return out, "", nil
}

func (m *memStore) CountUnread(_ context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := 0
	for _, n := range m.items {
		if n.UserID == userID && !n.Read {
			c++
		}
	}
	return c, nil
}

func (m *memStore) UnreadIDs(_ context.Context, userID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, n := range m.items {
		if n.UserID == userID && !n.Read {
			ids = append(ids, n.NotificationID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memStore) MarkRead(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.markReadCalls++
	m.items[id].Read = true
	return nil
}

func (m *memStore) MarkUnread(_ context.Context, id, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[id].Read = false
	return nil
}

func (m *memStore) MarkReadBatch(_ context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches = append(m.batches, ids)
	if m.failBatch == len(m.batches) {
		return errors.New("transaction cancelled")
	}
	for _, id := range ids {
		m.items[id].Read = true
	}
	return nil
}

func (m *memStore) forUser(userID string) []domain.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for _, n := range m.items {
		if n.UserID == userID {
			out = append(out, *n)
		}
	}
	return out
}

type staticDirectory struct {
	users []domain.User
	err   error
}

func (d staticDirectory) ListAll(context.Context) ([]domain.User, error) {
	return d.users, d.err
}
