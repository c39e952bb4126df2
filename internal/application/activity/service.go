// Package activity exposes the recent-activity feed and presence data kept in
// the cache.
package activity

import (
	"context"
	"sort"

	"github.com/recruit-notes/internal/domain"
	"github.com/recruit-notes/internal/infrastructure/cache"
)

const (
	DefaultLimit = 20
	maxLimit     = 50
)

type Service interface {
	Recent(ctx context.Context, userID string, limit int) []domain.Activity
	Online(ctx context.Context) []domain.User
	Connect(ctx context.Context, userID string)
	Disconnect(ctx context.Context, userID string)
}

type directory interface {
	ListAll(ctx context.Context) ([]domain.User, error)
}

type service struct {
	cache cache.Cache
	users directory
}

func NewService(c cache.Cache, users directory) Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &service{cache: c, users: users}
}

func (s *service) Recent(ctx context.Context, userID string, limit int) []domain.Activity {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return s.cache.RecentActivity(ctx, userID, limit)
}

// Online returns the users with a live presence key, sorted by name. Without
// a directory only IDs are filled in.
func (s *service) Online(ctx context.Context) []domain.User {
	ids := s.cache.OnlineUsers(ctx)
	online := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		online[id] = struct{}{}
	}

	out := []domain.User{}
	var all []domain.User
	if s.users != nil && len(ids) > 0 {
		var err error
		if all, err = s.users.ListAll(ctx); err != nil {
			all = nil
		}
	}
	if all == nil {
		for _, id := range ids {
			out = append(out, domain.User{UserID: id})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
		return out
	}
	for _, u := range all {
		if _, ok := online[u.UserID]; ok {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *service) Connect(ctx context.Context, userID string) { s.cache.SetPresence(ctx, userID) }

func (s *service) Disconnect(ctx context.Context, userID string) { s.cache.ClearPresence(ctx, userID) }
