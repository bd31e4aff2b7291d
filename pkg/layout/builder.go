package layout

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/wayfind-cms/wayfind/pkg/cacheability"
	"github.com/wayfind-cms/wayfind/pkg/content"
)

// ViewModeFull is the rendering mode layout resolution always starts from.
// Falling back to a default mode is the display provider's responsibility.
const ViewModeFull = "full"

// Builder turns an entity's layout definition into a normalized Tree.
//
// A Builder is stateless across requests and safe for concurrent use as long
// as its collaborators are. Per-request state lives in the cacheability
// accumulator passed to Build.
type Builder struct {
	displays DisplayProvider
	storages SectionStorageProvider
	blocks   content.BlockStore
	access   AccessFunc
	logger   *log.Logger
}

// NewBuilder creates a Builder over the given collaborators. blocks may be
// nil for sites without reusable block content; logger may be nil to
// disable debug logging.
func NewBuilder(displays DisplayProvider, storages SectionStorageProvider, blocks content.BlockStore, access AccessFunc, logger *log.Logger) *Builder {
	if logger == nil {
		logger = log.Default()
	}
	return &Builder{
		displays: displays,
		storages: storages,
		blocks:   blocks,
		access:   access,
		logger:   logger,
	}
}

// Build runs the availability gate and, when a layout applies, assembles the
// normalized tree. It returns (nil, nil) when no layout-capable presentation
// exists for the entity; callers must then omit the layout key entirely.
//
// Every display, storage, and block revision consulted is registered as a
// cache dependency in meta.
func (b *Builder) Build(ctx context.Context, entity *content.Entity, meta *cacheability.Metadata) (*Tree, error) {
	display, err := b.displays.CollectDisplay(ctx, entity, ViewModeFull)
	if err != nil {
		return nil, fmt.Errorf("collect display for %s/%s: %w", entity.EntityType, entity.UUID, err)
	}
	if display == nil {
		return nil, nil
	}
	meta.AddDependency(display)

	if !display.IsLayoutEnabled() {
		b.logger.Debug("layout not enabled for display", "entity_type", entity.EntityType, "bundle", entity.Bundle)
		return nil, nil
	}

	sc := StorageContext{Entity: entity, Display: display, ViewMode: display.Mode()}
	storage, err := b.storages.FindByContext(ctx, sc, meta)
	if err != nil {
		return nil, fmt.Errorf("find section storage for %s/%s: %w", entity.EntityType, entity.UUID, err)
	}
	if storage == nil {
		return nil, nil
	}
	meta.AddDependency(storage)

	definitions := storage.Sections()
	if len(definitions) == 0 {
		return nil, nil
	}

	return b.assemble(ctx, definitions, storage.StorageKind(), display.Mode(), meta), nil
}

// assemble normalizes the ordered section definitions into a Tree.
func (b *Builder) assemble(ctx context.Context, definitions []SectionDefinition, storageKind, viewMode string, meta *cacheability.Metadata) *Tree {
	tree := &Tree{
		Source:   storageKind,
		ViewMode: viewMode,
		Sections: make([]Section, 0, len(definitions)),
	}

	for _, def := range definitions {
		section := Section{
			LayoutID:       def.LayoutID,
			LayoutSettings: def.LayoutSettings,
			Components:     make([]Component, 0, len(def.Components)),
		}
		if section.LayoutSettings == nil {
			section.LayoutSettings = map[string]any{}
		}

		for _, placement := range def.Components {
			component, ok := b.normalize(ctx, placement, meta)
			if !ok {
				b.logger.Debug("dropping placement without plugin id", "uuid", placement.UUID, "region", placement.Region)
				continue
			}
			section.Components = append(section.Components, component)
		}

		tree.Sections = append(tree.Sections, section)
	}

	return tree
}

// normalize classifies one placement. The second return value is false for
// the drop signal.
func (b *Builder) normalize(ctx context.Context, placement ComponentDefinition, meta *cacheability.Metadata) (Component, bool) {
	kind, ok := classifyKind(placement.PluginID)
	if !ok {
		return Component{}, false
	}

	component := Component{
		Kind:     kind,
		UUID:     placement.UUID,
		Region:   placement.Region,
		Weight:   placement.Weight,
		PluginID: placement.PluginID,
		Settings: extractSettings(placement.Configuration),
	}

	switch kind {
	case KindField:
		component.Field = parseFieldRef(placement.PluginID)
	case KindInlineBlock:
		component.Inline = resolveInline(ctx, placement.Configuration, b.blocks, b.access, meta)
	}

	return component, true
}
