package activity

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/recruit-notes/internal/domain"
	"github.com/recruit-notes/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type users []domain.User

func (u users) ListAll(context.Context) ([]domain.User, error) { return u, nil }

type brokenDirectory struct{}

func (brokenDirectory) ListAll(context.Context) ([]domain.User, error) {
	return nil, errors.New("unavailable")
}

func TestRecent_ClampsLimit(t *testing.T) {
	c := cache.NewMemory()
	ctx := context.Background()
	for i := 0; i < 60; i++ {
		c.PushActivity(ctx, "u1", domain.Activity{Action: fmt.Sprintf("a%d", i), Timestamp: time.Now()})
	}
	svc := NewService(c, nil)

	assert.Len(t, svc.Recent(ctx, "u1", 0), DefaultLimit)
	latest := svc.Recent(ctx, "u1", 500)
	require.Len(t, latest, maxLimit)
	assert.Equal(t, "a59", latest[0].Action)
}

func TestOnline_JoinsDirectory(t *testing.T) {
	c := cache.NewMemory()
	ctx := context.Background()
	dir := users{{UserID: "u1", Name: "Zed"}, {UserID: "u2", Name: "Amy"}, {UserID: "u3", Name: "Bo"}}
	svc := NewService(c, dir)

	svc.Connect(ctx, "u1")
	svc.Connect(ctx, "u2")
	online := svc.Online(ctx)
	require.Len(t, online, 2)
	assert.Equal(t, "Amy", online[0].Name)
	assert.Equal(t, "Zed", online[1].Name)

	svc.Disconnect(ctx, "u1")
	assert.Len(t, svc.Online(ctx), 1)
}

func TestOnline_DirectoryDownFallsBackToIDs(t *testing.T) {
	c := cache.NewMemory()
	ctx := context.Background()
	svc := NewService(c, brokenDirectory{})
	svc.Connect(ctx, "u9")

	online := svc.Online(ctx)
	require.Len(t, online, 1)
	assert.Equal(t, "u9", online[0].UserID)
}

func TestOnline_NoCache(t *testing.T) {
	svc := NewService(nil, users{{UserID: "u1"}})
	assert.Empty(t, svc.Online(context.Background()))
}
