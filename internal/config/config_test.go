package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, QueueRedis, cfg.QueueBackend)
	assert.Equal(t, "predict_queue", cfg.QueueName)
	assert.Equal(t, 600*time.Second, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.LockTTL)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Empty(t, cfg.PostgresURL)
	assert.Empty(t, cfg.AdminToken)
	assert.Empty(t, cfg.QueueConsumer)
	assert.False(t, cfg.TrustProxy)
	assert.Equal(t, 9091, cfg.WorkerMetricsPort)
	assert.Equal(t, 60*time.Second, cfg.QueueClaimIdle)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingRedis(t *testing.T) {
	t.Setenv("REDIS_URL", "")

	_, err := Load()
	assert.ErrorContains(t, err, "REDIS_URL")
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("ENV", "production")
	t.Setenv("QUEUE_BACKEND", "NATS")
	t.Setenv("CACHE_TTL", "2m")
	t.Setenv("WORKER_COUNT", "4")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("PORT", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, QueueNATS, cfg.QueueBackend)
	assert.Equal(t, 2*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 4, cfg.WorkerCount)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 8080, cfg.Port)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unknown backend", "QUEUE_BACKEND", "kafka"},
		{"no workers", "WORKER_COUNT", "0"},
		{"negative lock ttl", "LOCK_TTL", "-1s"},
		{"claiming disabled", "QUEUE_CLAIM_IDLE", "0s"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("REDIS_URL", "redis://localhost:6379/0")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}
