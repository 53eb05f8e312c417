// Package cache stores solver verdicts so repeated builds over the same
// images skip the packing search.
//
// Three backends are provided:
//   - NullCache: stores nothing, used when caching is disabled
//   - FileCache: one JSON file per entry, for CLI usage
//   - RedisCache: shared storage for several service instances
//
// Open picks a backend from a location string.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data. A ttl of zero means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Open returns the backend named by location: "" disables caching, a
// redis:// or rediss:// URL connects to Redis, anything else is a directory.
func Open(ctx context.Context, location string) (Cache, error) {
	switch {
	case location == "":
		return NewNullCache(), nil
	case strings.HasPrefix(location, "redis://"), strings.HasPrefix(location, "rediss://"):
		c, err := NewRedisCache(ctx, location)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		c, err := NewFileCache(location)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
