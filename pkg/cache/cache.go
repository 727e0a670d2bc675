// Package cache provides byte-level caching for asset lookups and rendered
// output.
//
// # Backends
//
//   - [NullCache]: caches nothing; the default when caching is disabled
//   - [FileCache]: JSON entry files under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the server
//
// # Keys
//
// A [Keyer] builds keys for each kind of cached value so that producers
// never hand-format them:
//
//	k := cache.NewDefaultKeyer()
//	key := k.AssetKey("https://assets.example", "img-42")
//
// Use [NewScopedKeyer] to isolate tenants sharing one backend.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
//
// Get reports a miss with ok=false and a nil error. A ttl of zero means the
// entry never expires. Implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
