// Package memory provides in-memory implementations of the content storage
// contracts. It backs local development (seeded from a site fixture) and
// tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/wayfind-cms/wayfind/pkg/content"
)

// Store keeps entities, definitions, and block revisions in maps.
// Reads and writes are guarded by a RWMutex, so a Store may be shared by
// concurrent requests once seeded.
type Store struct {
	mu          sync.RWMutex
	definitions map[string]*content.Definition
	entities    map[string]*content.Entity // key: entityType + "/" + uuid
	revisions   map[int]*content.Entity
	hasBlocks   bool
}

// NewStore creates an empty store preloaded with the standard content-bearing
// definitions ("node", "block_content") plus a non-content "config" type.
func NewStore() *Store {
	return &Store{
		definitions: map[string]*content.Definition{
			"node":          {ID: "node", Label: "Content", ContentBearing: true},
			"block_content": {ID: "block_content", Label: "Custom block", ContentBearing: true},
			"config":        {ID: "config", Label: "Configuration", ContentBearing: false},
		},
		entities:  make(map[string]*content.Entity),
		revisions: make(map[int]*content.Entity),
	}
}

// AddDefinition registers or replaces an entity type definition.
func (s *Store) AddDefinition(d *content.Definition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.definitions[d.ID] = d
}

// AddEntity stores an entity, generating a UUID if the fixture omitted one.
func (s *Store) AddEntity(e *content.Entity) {
	if e.UUID == "" {
		e.UUID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entities[e.EntityType+"/"+e.UUID] = e
}

// AddRevision stores a block revision and marks the block subsystem as
// available.
func (s *Store) AddRevision(revisionID int, e *content.Entity) {
	if e.UUID == "" {
		e.UUID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revisions[revisionID] = e
	s.hasBlocks = true
}

// EnableBlocks marks the block subsystem available even with no revisions
// seeded yet.
func (s *Store) EnableBlocks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hasBlocks = true
}

// GetDefinition returns the definition for entityTypeID, or nil if unknown.
func (s *Store) GetDefinition(ctx context.Context, entityTypeID string) (*content.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.definitions[entityTypeID], nil
}

// LoadByUUID returns the stored entity, or nil, nil on a miss.
func (s *Store) LoadByUUID(ctx context.Context, entityTypeID, id string) (*content.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entities[entityTypeID+"/"+id], nil
}

// Access grants "view" on published entities and denies everything else.
func (s *Store) Access(ctx context.Context, e *content.Entity, op string) bool {
	if e == nil || op != "view" {
		return false
	}
	return e.Published
}

// Available reports whether any block content capability was seeded.
func (s *Store) Available() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasBlocks
}

// LoadRevision returns the stored revision, or nil, nil on a miss.
func (s *Store) LoadRevision(ctx context.Context, revisionID int) (*content.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revisions[revisionID], nil
}

// Ensure Store implements both storage contracts.
var (
	_ content.Store      = (*Store)(nil)
	_ content.BlockStore = (*Store)(nil)
)
