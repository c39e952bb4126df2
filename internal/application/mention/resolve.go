package mention

import (
	"context"
	"log/slog"
	"strings"

	"github.com/recruit-notes/internal/domain"
)

// Matches reports whether u is a candidate target for the mention text.
// Matching is case-insensitive and deliberately permissive: exact name,
// name containing the mention, mention containing the name, or email
// containing the mention all qualify.
func Matches(mention string, u domain.User) bool {
	m := strings.ToLower(strings.TrimSpace(mention))
	if m == "" {
		return false
	}
	name := strings.ToLower(strings.TrimSpace(u.Name))
	email := strings.ToLower(u.Email)
	switch {
	case name != "" && name == m:
		return true
	case name != "" && strings.Contains(name, m):
		return true
	case name != "" && strings.Contains(m, name):
		return true
	case strings.Contains(email, m):
		return true
	}
	return false
}

// Resolve returns every directory user matching the mention, in directory order.
func Resolve(mention string, directory []domain.User) []domain.User {
	var out []domain.User
	for _, u := range directory {
		if Matches(mention, u) {
			out = append(out, u)
		}
	}
	return out
}

type directory interface {
	ListAll(ctx context.Context) ([]domain.User, error)
}

// Resolver turns parsed mention strings into user IDs using a directory read
// fresh on every call.
type Resolver struct {
	users directory
}

func NewResolver(users directory) *Resolver {
	return &Resolver{users: users}
}

// ResolveAll resolves every mention and returns the distinct matching user
// IDs in first-resolution order. Mentions matching more than one user are
// kept and logged.
func (r *Resolver) ResolveAll(ctx context.Context, mentions []string) ([]string, error) {
	if len(mentions) == 0 {
		return nil, nil
	}
	users, err := r.users.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return ResolveIDs(mentions, users), nil
}

// ResolveIDs is the directory-in-hand form of ResolveAll.
func ResolveIDs(mentions []string, users []domain.User) []string {
	seen := make(map[string]struct{})
	ids := []string{}
	for _, m := range mentions {
		matched := Resolve(m, users)
		if len(matched) > 1 {
			matchedIDs := make([]string, len(matched))
			for i, u := range matched {
				matchedIDs[i] = u.UserID
			}
			slog.Info("ambiguous mention", "mention", m, "matches", len(matched), "user_ids", matchedIDs)
		}
		for _, u := range matched {
			if _, ok := seen[u.UserID]; ok {
				continue
			}
			seen[u.UserID] = struct{}{}
			ids = append(ids, u.UserID)
		}
	}
	return ids
}
