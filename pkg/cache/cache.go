// Package cache stores alignment results between runs.
//
// Aligning two graphs is deterministic for a given pair of graphs and set of
// options, so results can be reused across CLI invocations and API requests.
// Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for server deployments
//   - [NullCache]: stores nothing, for --no-cache and tests
//
// Keys come from a [Keyer]. [DefaultKeyer] hashes graph content and options;
// [ScopedKeyer] adds a namespace so that different versions of the engine
// never read each other's entries.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
// A miss is reported by hit == false with a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// TTLAlign is how long alignment results are kept.
const TTLAlign = 7 * 24 * time.Hour
