// Package cache provides pluggable byte caches for computed layouts and
// rendered artifacts.
//
// Layout passes are cheap for small trees but the service mode recomputes
// them per request, so responses are cached keyed by document content hash
// plus the options that shaped the output. Three backends are provided:
//
//   - FileCache: filesystem-backed, for CLI usage (XDG cache dir)
//   - RedisCache: shared cache for multi-instance service deployments
//   - NullCache: disables caching (testing, --no-cache)
package cache

import (
	"context"
	"time"
)

// Cache is the interface implemented by all cache backends.
// Implementations must treat a missing key as (nil, false, nil), not an
// error.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with the given TTL. A zero TTL means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// LayoutKeyOpts are the option fields that shape a layout result and
// therefore participate in its cache key.
type LayoutKeyOpts struct {
	CollapseAll   bool
	SearchTerm    string
	IncludeHidden bool
}

// LayoutKey builds the cache key for a computed layout snapshot.
// The docHash must be the content hash of the source document.
func LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}

// StatsKey builds the cache key for aggregate tree stats.
func StatsKey(docHash string) string {
	return hashKey("stats", docHash)
}

// ArtifactKey builds the cache key for a rendered artifact (SVG, PNG, DOT)
// derived from a layout.
func ArtifactKey(docHash, format string) string {
	return hashKey("artifact", docHash, format)
}
