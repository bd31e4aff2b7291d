package layout

import (
	"context"
	"fmt"

	"github.com/wayfind-cms/wayfind/pkg/cacheability"
	"github.com/wayfind-cms/wayfind/pkg/content"
)

// StaticDisplay is an in-memory view display, typically seeded from a site
// fixture. It implements Display.
type StaticDisplay struct {
	EntityTypeID  string
	Bundle        string
	ViewMode      string
	LayoutEnabled bool
}

// IsLayoutEnabled reports whether the layout builder is enabled.
func (d *StaticDisplay) IsLayoutEnabled() bool { return d.LayoutEnabled }

// Mode returns the display's rendering mode.
func (d *StaticDisplay) Mode() string { return d.ViewMode }

// CacheTags returns the display's configuration tag.
func (d *StaticDisplay) CacheTags() []string {
	return []string{fmt.Sprintf("config:core.entity_view_display.%s.%s.%s", d.EntityTypeID, d.Bundle, d.ViewMode)}
}

// CacheContexts returns nil: a display does not vary by request.
func (d *StaticDisplay) CacheContexts() []string { return nil }

// CacheMaxAge returns -1: displays are cacheable until reconfigured.
func (d *StaticDisplay) CacheMaxAge() int { return -1 }

// StaticDisplayProvider resolves displays from an in-memory table keyed by
// entity type, bundle, and mode. Read-only after seeding.
type StaticDisplayProvider struct {
	displays map[string]*StaticDisplay
}

// NewStaticDisplayProvider creates an empty provider.
func NewStaticDisplayProvider() *StaticDisplayProvider {
	return &StaticDisplayProvider{displays: make(map[string]*StaticDisplay)}
}

// Add registers a display.
func (p *StaticDisplayProvider) Add(d *StaticDisplay) {
	p.displays[displayKey(d.EntityTypeID, d.Bundle, d.ViewMode)] = d
}

// CollectDisplay returns the display for the requested mode, falling back to
// the "default" mode when the requested one has no configuration. Returns
// nil, nil when neither exists.
func (p *StaticDisplayProvider) CollectDisplay(ctx context.Context, entity *content.Entity, mode string) (Display, error) {
	if d, ok := p.displays[displayKey(entity.EntityType, entity.Bundle, mode)]; ok {
		return d, nil
	}
	if d, ok := p.displays[displayKey(entity.EntityType, entity.Bundle, "default")]; ok {
		return d, nil
	}
	return nil, nil
}

func displayKey(entityTypeID, bundle, mode string) string {
	return entityTypeID + "." + bundle + "." + mode
}

// staticStorage is the resolved in-memory section storage.
type staticStorage struct {
	kind     string
	sections []SectionDefinition
	tags     []string
}

func (s *staticStorage) Sections() []SectionDefinition { return s.sections }
func (s *staticStorage) StorageKind() string           { return s.kind }
func (s *staticStorage) CacheTags() []string           { return s.tags }
func (s *staticStorage) CacheContexts() []string       { return nil }
func (s *staticStorage) CacheMaxAge() int              { return -1 }

// StaticSectionStorageProvider resolves section storage from in-memory
// tables: per-entity override sections win over per-bundle defaults.
// Read-only after seeding.
type StaticSectionStorageProvider struct {
	overrides map[string][]SectionDefinition // entity UUID
	defaults  map[string][]SectionDefinition // "<entity_type>.<bundle>"
}

// NewStaticSectionStorageProvider creates an empty provider.
func NewStaticSectionStorageProvider() *StaticSectionStorageProvider {
	return &StaticSectionStorageProvider{
		overrides: make(map[string][]SectionDefinition),
		defaults:  make(map[string][]SectionDefinition),
	}
}

// AddOverride registers override sections for one entity.
func (p *StaticSectionStorageProvider) AddOverride(entityUUID string, sections []SectionDefinition) {
	p.overrides[entityUUID] = sections
}

// AddDefaults registers default sections for a bundle.
func (p *StaticSectionStorageProvider) AddDefaults(entityTypeID, bundle string, sections []SectionDefinition) {
	p.defaults[entityTypeID+"."+bundle] = sections
}

// FindByContext resolves storage for the context set. The lookup varies by
// route, so that context is registered even when nothing resolves.
func (p *StaticSectionStorageProvider) FindByContext(ctx context.Context, sc StorageContext, meta *cacheability.Metadata) (SectionStorage, error) {
	meta.AddContexts("route")

	if sc.Entity == nil {
		return nil, nil
	}

	if sections, ok := p.overrides[sc.Entity.UUID]; ok {
		return &staticStorage{
			kind:     StorageOverrides,
			sections: sections,
			tags:     sc.Entity.CacheTags(),
		}, nil
	}

	if sections, ok := p.defaults[sc.Entity.EntityType+"."+sc.Entity.Bundle]; ok {
		tags := []string{fmt.Sprintf("config:layout_builder.defaults.%s.%s", sc.Entity.EntityType, sc.Entity.Bundle)}
		return &staticStorage{
			kind:     StorageDefaults,
			sections: sections,
			tags:     tags,
		}, nil
	}

	return nil, nil
}

// Interface assertions.
var (
	_ Display                = (*StaticDisplay)(nil)
	_ DisplayProvider        = (*StaticDisplayProvider)(nil)
	_ SectionStorage         = (*staticStorage)(nil)
	_ SectionStorageProvider = (*StaticSectionStorageProvider)(nil)
)
