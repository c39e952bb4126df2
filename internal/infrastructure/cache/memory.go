package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/recruit-notes/internal/domain"
)

// Memory is an in-process Cache for single-instance deployments without
// Redis.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memEntry
	lists   map[string][]domain.Activity
	now     func() time.Time
}

type memEntry struct {
	value   []byte
	expires time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]memEntry),
		lists:   make(map[string][]domain.Activity),
		now:     time.Now,
	}
}

func (m *Memory) GetJSON(_ context.Context, key string, dst interface{}) bool {
	m.mu.Lock()
	e, ok := m.live(key)
	m.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(e.value, dst) == nil
}

func (m *Memory) SetJSON(_ context.Context, key string, v interface{}, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		warn("encode", key, err)
		return
	}
	m.mu.Lock()
	m.entries[key] = memEntry{value: b, expires: m.now().Add(ttl)}
	m.mu.Unlock()
}

func (m *Memory) Delete(_ context.Context, keys ...string) {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.entries, k)
		delete(m.lists, k)
	}
	m.mu.Unlock()
}

// DeletePattern matches keys the way Redis SCAN MATCH does: '*' spans any
// character, '/' and ':' included.
func (m *Memory) DeletePattern(_ context.Context, pattern string) {
	g, err := glob.Compile(pattern)
	if err != nil {
		warn("pattern", pattern, err)
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if g.Match(k) {
			delete(m.entries, k)
		}
	}
}

func (m *Memory) PushActivity(_ context.Context, userID string, a domain.Activity) {
	key := RecentActivityKey(userID)
	m.mu.Lock()
	defer m.mu.Unlock()
	list := append([]domain.Activity{a}, m.lists[key]...)
	if len(list) > activityLength {
		list = list[:activityLength]
	}
	m.lists[key] = list
}

func (m *Memory) RecentActivity(_ context.Context, userID string, limit int) []domain.Activity {
	if limit <= 0 || limit > activityLength {
		limit = activityLength
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.lists[RecentActivityKey(userID)]
	if len(list) > limit {
		list = list[:limit]
	}
	out := make([]domain.Activity, len(list))
	copy(out, list)
	return out
}

func (m *Memory) SetPresence(ctx context.Context, userID string) {
	m.SetJSON(ctx, PresenceKey(userID), m.now().UTC(), PresenceTTL)
}

func (m *Memory) ClearPresence(ctx context.Context, userID string) {
	m.Delete(ctx, PresenceKey(userID))
}

func (m *Memory) OnlineUsers(_ context.Context) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := []string{}
	for k := range m.entries {
		if !strings.HasPrefix(k, presencePrefix) {
			continue
		}
		if _, ok := m.live(k); ok {
			ids = append(ids, strings.TrimPrefix(k, presencePrefix))
		}
	}
	return ids
}

func (m *Memory) Ping(context.Context) error { return nil }

// live returns the entry when present and unexpired. Callers hold mu.
func (m *Memory) live(key string) (memEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return memEntry{}, false
	}
	if m.now().After(e.expires) {
		delete(m.entries, key)
		return memEntry{}, false
	}
	return e, true
}
