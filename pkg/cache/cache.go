package cache

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCacheMiss reports an absent or expired key.
var ErrCacheMiss = errors.New("cache: key not found")

// Service is the shared store behind the feed layer and the dashboard
// snapshots. Values are strings, JSON documents in practice, so one
// entry reads identically from the memory and Redis backends.
type Service interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, keys ...string) (bool, error)

	// TryLock grabs a fill lock so a single caller refreshes an
	// expired feed. The lock self-expires after ttl.
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error

	Close() error
}

// Key joins a prefix and its parts into a cache key.
func Key(prefix string, parts ...interface{}) string {
	key := prefix
	for _, p := range parts {
		key = fmt.Sprintf("%s:%v", key, p)
	}
	return key
}
