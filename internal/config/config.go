package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Queue backends
const (
	QueueRedis = "redis"
	QueueNATS  = "nats"
)

type Config struct {
	// Server
	Port int
	Env  string

	// CORS
	AllowedOrigins []string

	// Database URLs
	RedisURL      string
	ClickHouseURL string
	PostgresURL   string // optional, fighter cards fall back to FightersPath

	// Queue
	QueueBackend   string
	NATSURL        string
	QueueName      string
	QueueGroup     string
	QueueConsumer  string // consumer name prefix, defaults to the hostname
	QueueClaimIdle time.Duration

	// Prediction pipeline
	CacheTTL    time.Duration
	LockTTL     time.Duration
	WorkerCount int

	// WorkerMetricsPort serves /health and /metrics from the worker process.
	WorkerMetricsPort int

	// Data files
	ModelPath     string
	ProfilesPath  string
	FightersPath  string
	FightsPath    string
	StaticDir     string
	MigrationsDir string

	// Auth
	AdminToken string

	// Rate limiting
	RateLimitPerSecond int
	RateLimitBurst     int
	TrustProxy         bool
}

// Load loads configuration from environment variables.
// It returns an error if critical configuration is missing.
func Load() (*Config, error) {
	cfg := &Config{
		Port: getEnvInt("PORT", 8080),
		Env:  getEnv("ENV", "development"),

		ClickHouseURL: getEnv("CLICKHOUSE_URL", "clickhouse://default:@localhost:9000/ufc_ml"),
		PostgresURL:   getEnv("POSTGRES_URL", ""),

		QueueBackend:   strings.ToLower(getEnv("QUEUE_BACKEND", QueueRedis)),
		NATSURL:        getEnv("NATS_URL", "nats://localhost:4222"),
		QueueName:      getEnv("QUEUE_NAME", "predict_queue"),
		QueueGroup:     getEnv("QUEUE_GROUP", "predict_workers"),
		QueueConsumer:  getEnv("QUEUE_CONSUMER", ""),
		QueueClaimIdle: getEnvDuration("QUEUE_CLAIM_IDLE", 60*time.Second),

		CacheTTL:    getEnvDuration("CACHE_TTL", 600*time.Second),
		LockTTL:     getEnvDuration("LOCK_TTL", 30*time.Second),
		WorkerCount: getEnvInt("WORKER_COUNT", 1),

		WorkerMetricsPort: getEnvInt("WORKER_METRICS_PORT", 9091),

		ModelPath:     getEnv("MODEL_PATH", "data/model.json"),
		ProfilesPath:  getEnv("PROFILES_PATH", "data/profiles.csv"),
		FightersPath:  getEnv("FIGHTERS_PATH", "data/fighters.csv"),
		FightsPath:    getEnv("FIGHTS_PATH", "data/fights.csv"),
		StaticDir:     getEnv("STATIC_DIR", "static"),
		MigrationsDir: getEnv("MIGRATIONS_DIR", "migrations"),

		AdminToken: getEnv("ADMIN_TOKEN", ""),

		RateLimitPerSecond: getEnvInt("RATE_LIMIT_PER_SECOND", 20),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 40),
		TrustProxy:         getEnv("TRUST_PROXY", "false") == "true",
	}

	// CORS
	origins := getEnv("ALLOWED_ORIGINS", "*")
	for _, o := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
		}
	}

	// Critical configuration - fail if missing
	var err error
	if cfg.RedisURL, err = getEnvRequired("REDIS_URL"); err != nil {
		return nil, err
	}

	switch cfg.QueueBackend {
	case QueueRedis, QueueNATS:
	default:
		return nil, fmt.Errorf("invalid QUEUE_BACKEND %q: want %q or %q", cfg.QueueBackend, QueueRedis, QueueNATS)
	}
	if cfg.WorkerCount < 1 {
		return nil, fmt.Errorf("WORKER_COUNT must be at least 1, got %d", cfg.WorkerCount)
	}
	// Entries held by a crashed worker on another host are only recovered by claiming.
	if cfg.QueueClaimIdle <= 0 {
		return nil, fmt.Errorf("QUEUE_CLAIM_IDLE must be positive, got %s", cfg.QueueClaimIdle)
	}
	if cfg.LockTTL <= 0 || cfg.CacheTTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL and LOCK_TTL must be positive")
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvRequired(key string) (string, error) {
	if value := os.Getenv(key); value != "" {
		return value, nil
	}
	return "", fmt.Errorf("missing required environment variable: %s", key)
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
