package pagecache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for single-instance deployments and
// tests. Expired entries are dropped lazily on read.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	byTag   map[string]map[string]struct{}
}

type memoryEntry struct {
	entry     *Entry
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		byTag:   make(map[string]map[string]struct{}),
	}
}

// Get retrieves an entry, treating expiry as a miss.
func (s *MemoryStore) Get(ctx context.Context, key string) (*Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if time.Now().After(e.expiresAt) {
		s.removeLocked(key)
		return nil, false, nil
	}
	return e.entry, true, nil
}

// Set stores an entry and indexes it under its tags.
func (s *MemoryStore) Set(ctx context.Context, key string, entry *Entry, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{entry: entry, expiresAt: time.Now().Add(ttl)}
	for _, tag := range entry.Tags {
		if s.byTag[tag] == nil {
			s.byTag[tag] = make(map[string]struct{})
		}
		s.byTag[tag][key] = struct{}{}
	}
	return nil
}

// InvalidateTags drops every entry indexed under any of the tags.
func (s *MemoryStore) InvalidateTags(ctx context.Context, tags ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tag := range tags {
		for key := range s.byTag[tag] {
			s.removeLocked(key)
		}
		delete(s.byTag, tag)
	}
	return nil
}

// Close does nothing for the memory store.
func (s *MemoryStore) Close() error { return nil }

// removeLocked deletes an entry and its tag index references. Callers hold
// the mutex.
func (s *MemoryStore) removeLocked(key string) {
	e, ok := s.entries[key]
	if !ok {
		return
	}
	for _, tag := range e.entry.Tags {
		delete(s.byTag[tag], key)
		if len(s.byTag[tag]) == 0 {
			delete(s.byTag, tag)
		}
	}
	delete(s.entries, key)
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
