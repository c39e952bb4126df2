package cache

import (
	"context"
	"errors"
	"time"

	"github.com/recruit-notes/internal/domain"
)

// ErrDisabled is returned by Noop.Ping.
var ErrDisabled = errors.New("cache disabled")

// Noop is used when Redis is disabled. Every read misses.
type Noop struct{}

func (Noop) GetJSON(context.Context, string, interface{}) bool { return false }
func (Noop) SetJSON(context.Context, string, interface{}, time.Duration) {}
func (Noop) Delete(context.Context, ...string) {}
func (Noop) DeletePattern(context.Context, string) {}
func (Noop) PushActivity(context.Context, string, domain.Activity) {}
func (Noop) RecentActivity(context.Context, string, int) []domain.Activity { return []domain.Activity{} }
func (Noop) SetPresence(context.Context, string) {}
func (Noop) ClearPresence(context.Context, string) {}
func (Noop) OnlineUsers(context.Context) []string { return []string{} }
func (Noop) Ping(context.Context) error { return ErrDisabled }
