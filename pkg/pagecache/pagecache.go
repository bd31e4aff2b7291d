// Package pagecache caches anonymous resolution responses in a shared store.
//
// Entries are keyed by the request dimensions that vary the response (path
// and langcode) and carry the cache tags aggregated while the response was
// built. Invalidation is tag-driven: when content changes, invalidating its
// tag drops every response that depended on it, which is what keeps serving
// stale data impossible.
//
// Backends:
//   - memory: in-process map for single-instance deployments and tests
//   - redis: shared store for multi-instance deployments
//   - null: disables caching
package pagecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Entry is one cached response body with its invalidation tags and the
// Cache-Control value it was served with.
type Entry struct {
	Body    []byte   `json:"body"`
	Tags    []string `json:"tags,omitempty"`
	Control string   `json:"control,omitempty"`
}

// Store is the response cache contract.
type Store interface {
	// Get retrieves an entry. The second return value is false on a miss;
	// a miss is not an error.
	Get(ctx context.Context, key string) (*Entry, bool, error)

	// Set stores an entry for at most ttl. A non-positive ttl stores
	// nothing.
	Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error

	// InvalidateTags drops every entry carrying any of the given tags.
	InvalidateTags(ctx context.Context, tags ...string) error

	// Close releases backend resources.
	Close() error
}

// Key derives the cache key for a request from the dimensions that vary the
// response. Hashing keeps keys bounded regardless of path length.
func Key(path, langcode string) string {
	sum := sha256.Sum256([]byte(path + "\x00" + langcode))
	return "page:" + hex.EncodeToString(sum[:])
}
