package cache

import (
	"context"
	"time"
)

// Cache is the contract of the read-through cache layer.
// Implementations: Redis (infrastructure/cache) and Noop.
type Cache interface {
	// Get unmarshals the cached value into dest.
	// found = false means a miss; dest is left untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set stores value (JSON-encoded) with a TTL.
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// DeletePattern removes every key matching a glob pattern (e.g. "blog:*").
	DeletePattern(ctx context.Context, pattern string) error

	Ping(ctx context.Context) error
}

// Noop is used when Redis is disabled: every read misses, every write succeeds.
type Noop struct{}

func NewNoop() Cache { return Noop{} }

func (Noop) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (Noop) Set(context.Context, string, interface{}, time.Duration) error { return nil }
func (Noop) DeletePattern(context.Context, string) error { return nil }
func (Noop) Ping(context.Context) error { return nil }
