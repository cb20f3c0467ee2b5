// Package cache stores serialized analysis results under content-derived
// keys.
//
// Cone and climb results are deterministic functions of the pedigree
// arrays and the query, so a [Keyer] hashes both into a key and a [Cache]
// backend holds the encoded result. Three backends are provided:
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: a shared Redis instance, for the HTTP server
//   - [NullCache]: stores nothing, for tests and --no-cache
//
// All backends treat a missing or expired entry as a miss (hit == false,
// err == nil). Errors are reserved for backend failures.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value stored under key. hit is false when the key is
	// absent or expired.
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)

	// Set stores data under key. A ttl of zero or less never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default lifetimes for cached entries.
const (
	TTLCones = 7 * 24 * time.Hour
	TTLClimb = 7 * 24 * time.Hour
)
