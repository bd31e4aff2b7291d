// Package content models the content entities the resolver serves and the
// storage contracts it consumes.
//
// An Entity is one piece of content (a node, a reusable block revision, a
// taxonomy term). Entities are identified across systems by UUID and within
// their own storage by a numeric internal ID; cache tags are derived from
// the latter ("node:42"), cross-system references from the former.
//
// The package defines two storage capabilities:
//   - Store: lookup by UUID, entity-type definitions, translations, and
//     view-access checks.
//   - BlockStore: revision lookup for content embedded inline into layouts.
//
// Backends live in subpackages (memory, mongostore). CachedStore adds a
// read-through LRU in front of any Store.
package content

import (
	"context"
	"fmt"
)

// Definition describes an entity type.
type Definition struct {
	// ID is the entity type machine name (e.g., "node", "block_content").
	ID string

	// Label is the human-readable name.
	Label string

	// ContentBearing reports whether instances are content (as opposed to
	// configuration). Only content-bearing types participate in layout
	// resolution.
	ContentBearing bool
}

// Entity is a single content item, possibly one translation of it.
type Entity struct {
	// UUID is the stable, storage-independent identifier.
	UUID string

	// InternalID is the storage-local numeric identifier. Cache tags and
	// block revision references use it.
	InternalID int

	// EntityType is the entity type machine name.
	EntityType string

	// Bundle is the classification within the entity type (e.g., "page").
	// May be empty for malformed or legacy data; consumers must tolerate
	// that.
	Bundle string

	// Langcode is the language of this entity object.
	Langcode string

	// Label is the administrative title.
	Label string

	// Published gates the default view-access check.
	Published bool

	// Fields holds raw field values. The resolver never exposes these
	// directly; they exist for diagnostics and fixtures.
	Fields map[string]any

	// translations maps langcode to the translated variant.
	translations map[string]*Entity
}

// AddTranslation attaches a translated variant of the entity. The variant
// keeps its own Langcode; all other identifiers should match the original.
func (e *Entity) AddTranslation(t *Entity) {
	if e.translations == nil {
		e.translations = make(map[string]*Entity)
	}
	e.translations[t.Langcode] = t
}

// HasTranslation reports whether a variant exists for langcode.
func (e *Entity) HasTranslation(langcode string) bool {
	_, ok := e.translations[langcode]
	return ok
}

// Translation returns the variant for langcode, or the entity itself when
// no such variant exists.
func (e *Entity) Translation(langcode string) *Entity {
	if t, ok := e.translations[langcode]; ok {
		return t
	}
	return e
}

// CacheTags returns the entity's invalidation tag ("<type>:<internal id>").
func (e *Entity) CacheTags() []string {
	return []string{fmt.Sprintf("%s:%d", e.EntityType, e.InternalID)}
}

// CacheContexts returns nil: an entity itself does not vary by request.
func (e *Entity) CacheContexts() []string { return nil }

// CacheMaxAge returns -1: entities are cacheable until invalidated by tag.
func (e *Entity) CacheMaxAge() int { return -1 }

// Store is the entity lookup capability the resolver consumes.
type Store interface {
	// GetDefinition returns the definition for an entity type, or nil if
	// the type is unknown.
	GetDefinition(ctx context.Context, entityTypeID string) (*Definition, error)

	// LoadByUUID loads an entity by its stable identifier.
	// Returns nil, nil when no such entity exists.
	LoadByUUID(ctx context.Context, entityTypeID, uuid string) (*Entity, error)

	// Access evaluates an operation ("view") on the entity for the
	// current request. Unknown operations are denied.
	Access(ctx context.Context, e *Entity, op string) bool
}

// BlockStore is the lookup capability for content embedded inline into
// layouts as specific revisions. It is optional: a site without reusable
// block content has no BlockStore, which callers observe via Available.
type BlockStore interface {
	// Available reports whether the block content subsystem exists at all.
	Available() bool

	// LoadRevision loads one specific revision by numeric identifier.
	// Returns nil, nil when the revision does not exist.
	LoadRevision(ctx context.Context, revisionID int) (*Entity, error)
}
