package user

import (
	"context"
	"sort"
	"strings"

	"github.com/recruit-notes/internal/domain"
)

// Service exposes the team directory used for @mention autocomplete.
type Service interface {
	List(ctx context.Context, query string) ([]domain.User, error)
}

type userStore interface {
	ListAll(ctx context.Context) ([]domain.User, error)
}

type service struct {
	repo userStore
}

func NewService(repo userStore) Service {
	return &service{repo: repo}
}

// List returns every user ordered by name. A non-empty query keeps users
// whose name or email contains it, ignoring case.
func (s *service) List(ctx context.Context, query string) ([]domain.User, error) {
	users, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if q == "" ||
			strings.Contains(strings.ToLower(u.Name), q) ||
			strings.Contains(strings.ToLower(u.Email), q) {
			out = append(out, u)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}
