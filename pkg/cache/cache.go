// Package cache stores rendered artifacts keyed by the content they were
// rendered from.
//
// Rendering a network through Graphviz is by far the slowest thing the
// tools do, and the same DOT text always yields the same bytes, so both
// the CLI and the HTTP server keep renderings around. Keys come from
// [Key], which hashes the artifact kind and every input that affects it.
//
// Three implementations are provided:
//   - [FileCache] persists entries under a directory (the CLI default)
//   - [MemoryCache] keeps a bounded number of entries in memory (the server)
//   - [NullCache] never stores anything (--no-cache)
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the entry for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Key builds a cache key of the form kind:sha256(parts...).
func Key(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", kind, Hash(data))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
