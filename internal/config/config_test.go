package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, "3000", cfg.AppPort)
	assert.Equal(t, "notifications", cfg.DynamoTables.Notifications)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTExpiry)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 8, cfg.FanoutConcurrency)
	assert.Equal(t, 5*time.Second, cfg.SnapshotTimeout)
	assert.Equal(t, 25*time.Second, cfg.StreamHeartbeat)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_PORT", "8080")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("FANOUT_CONCURRENCY", "2")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("INBOX_SNAPSHOT_TIMEOUT", "1500ms")

	cfg := Load()
	assert.Equal(t, "8080", cfg.AppPort)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 2, cfg.FanoutConcurrency)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
	assert.Equal(t, 1500*time.Millisecond, cfg.SnapshotTimeout)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "abc")
	t.Setenv("REDIS_ENABLED", "maybe")
	t.Setenv("STREAM_HEARTBEAT", "-3s")
	cfg := Load()
	assert.Equal(t, 25*time.Second, cfg.StreamHeartbeat)
	assert.Equal(t, 0, cfg.Redis.DB)
	assert.True(t, cfg.Redis.Enabled)
}
