package cache

import (
	"context"
	"time"
)

// Cache is the key/value contract used by the failed-login tracker.
type Cache interface {
	// Get unmarshals the stored value into dest.
	// found = false on a miss, dest untouched.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error

	Increment(ctx context.Context, key string) (int64, error)
	Exists(ctx context.Context, key string) (bool, error)
	Expire(ctx context.Context, key string, ttl time.Duration) error
}
