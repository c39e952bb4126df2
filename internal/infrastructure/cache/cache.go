// Package cache is the Redis-backed read-through cache. Every operation fails
// open: errors are logged and reported as a miss so callers fall back to the
// primary store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/recruit-notes/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Cache is the set of cache operations services depend on.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst interface{}) bool
	SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration)
	Delete(ctx context.Context, keys ...string)
	DeletePattern(ctx context.Context, pattern string)

	PushActivity(ctx context.Context, userID string, a domain.Activity)
	RecentActivity(ctx context.Context, userID string, limit int) []domain.Activity

	SetPresence(ctx context.Context, userID string)
	ClearPresence(ctx context.Context, userID string)
	OnlineUsers(ctx context.Context) []string

	Ping(ctx context.Context) error
}

// Redis implements Cache on a go-redis client.
type Redis struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *Redis {
	return &Redis{client: client}
}

func (c *Redis) GetJSON(ctx context.Context, key string, dst interface{}) bool {
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			warn("get", key, err)
		}
		return false
	}
	if err := json.Unmarshal(b, dst); err != nil {
		warn("decode", key, err)
		return false
	}
	return true
}

func (c *Redis) SetJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) {
	b, err := json.Marshal(v)
	if err != nil {
		warn("encode", key, err)
		return
	}
	if err := c.client.Set(ctx, key, b, ttl).Err(); err != nil {
		warn("set", key, err)
	}
}

func (c *Redis) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		warn("del", strings.Join(keys, ","), err)
	}
}

// DeletePattern removes every key matching a glob pattern using SCAN.
func (c *Redis) DeletePattern(ctx context.Context, pattern string) {
	keys, err := c.scan(ctx, pattern)
	if err != nil {
		warn("scan", pattern, err)
		return
	}
	c.Delete(ctx, keys...)
}

// PushActivity prepends to the user's activity feed, keeps the newest
// entries and refreshes the week-long expiry.
func (c *Redis) PushActivity(ctx context.Context, userID string, a domain.Activity) {
	key := RecentActivityKey(userID)
	b, err := json.Marshal(a)
	if err != nil {
		warn("encode", key, err)
		return
	}
	pipe := c.client.TxPipeline()
	pipe.LPush(ctx, key, b)
	pipe.LTrim(ctx, key, 0, activityLength-1)
	pipe.Expire(ctx, key, TTLWeek)
	if _, err := pipe.Exec(ctx); err != nil {
		warn("lpush", key, err)
	}
}

func (c *Redis) RecentActivity(ctx context.Context, userID string, limit int) []domain.Activity {
	if limit <= 0 || limit > activityLength {
		limit = activityLength
	}
	key := RecentActivityKey(userID)
	raw, err := c.client.LRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		warn("lrange", key, err)
		return []domain.Activity{}
	}
	out := make([]domain.Activity, 0, len(raw))
	for _, r := range raw {
		var a domain.Activity
		if err := json.Unmarshal([]byte(r), &a); err != nil {
			continue
		}
		out = append(out, a)
	}
	return out
}

func (c *Redis) SetPresence(ctx context.Context, userID string) {
	key := PresenceKey(userID)
	if err := c.client.Set(ctx, key, time.Now().UTC().Format(time.RFC3339), PresenceTTL).Err(); err != nil {
		warn("set", key, err)
	}
}

func (c *Redis) ClearPresence(ctx context.Context, userID string) {
	c.Delete(ctx, PresenceKey(userID))
}

// OnlineUsers lists users whose presence key has not expired.
func (c *Redis) OnlineUsers(ctx context.Context) []string {
	keys, err := c.scan(ctx, presencePrefix+"*")
	if err != nil {
		warn("scan", presencePrefix+"*", err)
		return []string{}
	}
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		ids = append(ids, strings.TrimPrefix(k, presencePrefix))
	}
	return ids
}

func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *Redis) scan(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}

func warn(op, key string, err error) {
	slog.Warn("cache operation failed", "op", op, "key", key, "err", err)
}

// Fetch returns the cached value for key, or calls load and caches its result.
// Load errors are returned uncached.
func Fetch[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	var v T
	if c.GetJSON(ctx, key, &v) {
		return v, nil
	}
	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	c.SetJSON(ctx, key, v, ttl)
	return v, nil
}
