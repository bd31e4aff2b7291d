package content

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedStore wraps a Store with a fixed-size LRU for entity loads.
//
// Definitions and access checks pass through untouched: definitions are
// cheap, and access must always be evaluated for the current request. Only
// LoadByUUID results are cached, including misses, because layouts routinely
// reference the same entity several times within one page.
type CachedStore struct {
	inner Store
	cache *lru.Cache[string, *Entity]
}

// NewCachedStore wraps inner with an LRU holding up to size entities.
func NewCachedStore(inner Store, size int) (*CachedStore, error) {
	cache, err := lru.New[string, *Entity](size)
	if err != nil {
		return nil, err
	}
	return &CachedStore{inner: inner, cache: cache}, nil
}

// GetDefinition delegates to the wrapped store.
func (s *CachedStore) GetDefinition(ctx context.Context, entityTypeID string) (*Definition, error) {
	return s.inner.GetDefinition(ctx, entityTypeID)
}

// LoadByUUID returns the cached entity when present, loading and caching it
// otherwise. Load errors are never cached.
func (s *CachedStore) LoadByUUID(ctx context.Context, entityTypeID, id string) (*Entity, error) {
	key := entityTypeID + "/" + id
	if e, ok := s.cache.Get(key); ok {
		return e, nil
	}
	e, err := s.inner.LoadByUUID(ctx, entityTypeID, id)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, e)
	return e, nil
}

// Access delegates to the wrapped store.
func (s *CachedStore) Access(ctx context.Context, e *Entity, op string) bool {
	return s.inner.Access(ctx, e, op)
}

// Invalidate drops a cached entity after a write elsewhere.
func (s *CachedStore) Invalidate(entityTypeID, id string) {
	s.cache.Remove(entityTypeID + "/" + id)
}

// Ensure CachedStore implements Store.
var _ Store = (*CachedStore)(nil)
