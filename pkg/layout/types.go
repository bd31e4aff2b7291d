// Package layout normalizes page-layout definitions into a stable,
// frontend-agnostic tree.
//
// A layout definition is an ordered list of sections, each holding an
// ordered list of component placements (a plugin identifier plus a loose
// configuration blob). The normalizer classifies every placement into one of
// a closed set of component kinds, resolves references to inline block
// content, and emits a JSON-serializable Tree together with the cache
// dependencies it consulted along the way.
//
// The package never fails a whole tree because of one bad placement:
// malformed identifiers, unparseable revision references, missing or
// inaccessible block content all degrade to null sub-fields or to dropping
// the single component.
package layout

import (
	"context"
	"encoding/json"

	"github.com/wayfind-cms/wayfind/pkg/cacheability"
	"github.com/wayfind-cms/wayfind/pkg/content"
)

// Component kinds. The set is closed: anything the normalizer does not
// specially understand becomes KindBlock so a frontend can still render
// metadata-only.
const (
	KindField       = "field"
	KindInlineBlock = "inline_block"
	KindBlock       = "block"
)

// Storage kinds reported as the tree source.
const (
	// StorageDefaults marks sections derived from the bundle's default
	// display.
	StorageDefaults = "defaults"

	// StorageOverrides marks sections overridden on the individual entity.
	StorageOverrides = "overrides"
)

// settingsAllowList is the set of raw configuration keys exposed as
// component settings. Everything else stays backend-only.
var settingsAllowList = []string{"label", "label_display", "formatter", "view_mode"}

// Tree is the normalized layout for one entity, ready to serialize.
type Tree struct {
	// Source is the storage kind that held the sections (StorageDefaults
	// or StorageOverrides).
	Source string `json:"source"`

	// ViewMode is the rendering mode of the display that was used.
	ViewMode string `json:"view_mode"`

	// Sections preserves the source order; order is render order.
	Sections []Section `json:"sections"`
}

// Section is one horizontal slice of the layout.
type Section struct {
	LayoutID       string         `json:"layout_id"`
	LayoutSettings map[string]any `json:"layout_settings"`

	// Components preserves placement order. An empty list is valid.
	Components []Component `json:"components"`
}

// FieldRef identifies the entity field a field component renders.
type FieldRef struct {
	EntityTypeID string `json:"entity_type_id"`
	Bundle       string `json:"bundle"`
	FieldName    string `json:"field_name"`
}

// BlockRef points at embedded block content without carrying the content
// itself. Type is the composite resource kind "<entity_type>--<bundle>".
type BlockRef struct {
	Type       string `json:"type"`
	ID         string `json:"id"`
	JSONAPIURL string `json:"jsonapi_url"`
}

// InlineBlock is the payload of an inline_block component. Every field
// degrades to null independently; the payload itself is never absent.
type InlineBlock struct {
	ViewMode        *string   `json:"view_mode"`
	BlockRevisionID *int      `json:"block_revision_id"`
	Block           *BlockRef `json:"block"`
}

// Component is one normalized placement. Kind selects which payload field
// is meaningful: Field for KindField, Inline for KindInlineBlock, neither
// for KindBlock.
type Component struct {
	Kind     string
	UUID     string
	Region   string
	Weight   int
	PluginID string
	Settings map[string]any
	Field    *FieldRef
	Inline   *InlineBlock
}

// componentCommon is the wire shape shared by every kind.
type componentCommon struct {
	Type     string         `json:"type"`
	UUID     string         `json:"uuid"`
	Region   string         `json:"region"`
	Weight   int            `json:"weight"`
	PluginID string         `json:"plugin_id"`
	Settings map[string]any `json:"settings"`
}

// MarshalJSON emits the tagged-union wire format: common attributes plus the
// kind-specific payload. A field component always carries a "field" key,
// null when the identifier was unparseable.
func (c Component) MarshalJSON() ([]byte, error) {
	common := componentCommon{
		Type:     c.Kind,
		UUID:     c.UUID,
		Region:   c.Region,
		Weight:   c.Weight,
		PluginID: c.PluginID,
		Settings: c.Settings,
	}
	if common.Settings == nil {
		common.Settings = map[string]any{}
	}

	switch c.Kind {
	case KindField:
		return json.Marshal(struct {
			componentCommon
			Field *FieldRef `json:"field"`
		}{common, c.Field})
	case KindInlineBlock:
		inline := c.Inline
		if inline == nil {
			inline = &InlineBlock{}
		}
		return json.Marshal(struct {
			componentCommon
			*InlineBlock
		}{common, inline})
	default:
		return json.Marshal(common)
	}
}

// SectionDefinition is the raw, storage-side shape of one section.
type SectionDefinition struct {
	LayoutID       string
	LayoutSettings map[string]any
	Components     []ComponentDefinition
}

// ComponentDefinition is the raw, storage-side shape of one placement.
type ComponentDefinition struct {
	UUID          string
	Region        string
	Weight        int
	PluginID      string
	Configuration map[string]any
}

/// Display is the view-display collaborator: it knows whether the layout
// builder is enabled for an entity's rendering mode and contributes its own
// cache dependency.
type Display interface {
	cacheability.Dependency

	// IsLayoutEnabled reports whether this display renders through the
	// layout system at all.
	IsLayoutEnabled() bool

	// Mode returns the resolved rendering mode (e.g., "full", "default").
	Mode() string
}

// DisplayProvider resolves the applicable display for an entity at a
// rendering mode, falling back to a default mode when the requested one has
// no configuration.
type DisplayProvider interface {
	CollectDisplay(ctx context.Context, entity *content.Entity, mode string) (Display, error)
}

// SectionStorage holds the concrete ordered sections for one context and
// contributes its own cache dependency.
type SectionStorage interface {
	cacheability.Dependency

	// Sections returns the ordered section definitions.
	Sections() []SectionDefinition

	// StorageKind reports where the sections came from (StorageDefaults
	// or StorageOverrides).
	StorageKind() string
}

// SectionStorageProvider resolves concrete section storage for a context
// set. Implementations must register the cache-relevant influence of the
// lookup into meta even when no storage resolves.
type SectionStorageProvider interface {
	FindByContext(ctx context.Context, sc StorageContext, meta *cacheability.Metadata) (SectionStorage, error)
}

// StorageContext is the context set {entity, display, rendering mode} a
// section-storage lookup operates on.
type StorageContext struct {
	Entity   *content.Entity
	Display  Display
	ViewMode string
}
