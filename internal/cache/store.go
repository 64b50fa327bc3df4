// Package cache holds the key-value store used both as the prediction result cache
// and as the per-matchup lock.
package cache

import (
	"context"
	"time"
)

// Store is the subset of a Redis-like store the pipeline needs.
type Store interface {
	// Get returns the value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	// SetNX creates key only when absent. It reports true iff this call created it.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	// SetEx overwrites key with value expiring after ttl.
	SetEx(ctx context.Context, key, value string, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
