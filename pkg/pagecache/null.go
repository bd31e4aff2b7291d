package pagecache

import (
	"context"
	"time"
)

// NullStore never caches anything. Used when response caching is disabled.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() *NullStore { return &NullStore{} }

// Get always misses.
func (s *NullStore) Get(ctx context.Context, key string) (*Entry, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (s *NullStore) Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error {
	return nil
}

// InvalidateTags does nothing.
func (s *NullStore) InvalidateTags(ctx context.Context, tags ...string) error { return nil }

// Close does nothing.
func (s *NullStore) Close() error { return nil }

// Ensure NullStore implements Store.
var _ Store = (*NullStore)(nil)
