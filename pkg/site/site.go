// Package site loads a complete site fixture from TOML: entities, block
// revisions, path aliases, redirects, view displays, and layout sections.
//
// A fixture stands in for the host CMS during development, demos, and tests.
// The serve command wires the loaded site straight into the resolver, so the
// full pipeline can run without any external storage.
package site

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/wayfind-cms/wayfind/pkg/content"
	"github.com/wayfind-cms/wayfind/pkg/content/memory"
	"github.com/wayfind-cms/wayfind/pkg/layout"
	"github.com/wayfind-cms/wayfind/pkg/resolver"
)

// Site is a fully wired in-memory site.
type Site struct {
	Store    *memory.Store
	Paths    *resolver.StaticResolver
	Displays *layout.StaticDisplayProvider
	Storages *layout.StaticSectionStorageProvider
}

// fixture is the TOML document shape.
type fixture struct {
	Home      string        `toml:"home"`
	Entities  []entityDoc   `toml:"entity"`
	Revisions []revisionDoc `toml:"block_revision"`
	Aliases   []aliasDoc    `toml:"alias"`
	Redirects []redirectDoc `toml:"redirect"`
	Displays  []displayDoc  `toml:"display"`
	Defaults  []defaultsDoc `toml:"defaults"`
	Overrides []overrideDoc `toml:"override"`
}

type entityDoc struct {
	UUID         string           `toml:"uuid"`
	InternalID   int              `toml:"internal_id"`
	EntityType   string           `toml:"entity_type"`
	Bundle       string           `toml:"bundle"`
	Langcode     string           `toml:"langcode"`
	Label        string           `toml:"label"`
	Published    bool             `toml:"published"`
	Fields       map[string]any   `toml:"fields"`
	Translations []translationDoc `toml:"translation"`
}

type translationDoc struct {
	Langcode  string `toml:"langcode"`
	Label     string `toml:"label"`
	Published bool   `toml:"published"`
}

type revisionDoc struct {
	RevisionID int       `toml:"revision_id"`
	Entity     entityDoc `toml:"entity"`
}

type aliasDoc struct {
	Path       string `toml:"path"`
	Langcode   string `toml:"langcode"`
	EntityType string `toml:"entity_type"`
	UUID       string `toml:"uuid"`
	Canonical  string `toml:"canonical"`
	Label      string `toml:"label"`
}

type redirectDoc struct {
	From   string `toml:"from"`
	To     string `toml:"to"`
	Status int    `toml:"status"`
}

type displayDoc struct {
	EntityType    string `toml:"entity_type"`
	Bundle        string `toml:"bundle"`
	ViewMode      string `toml:"view_mode"`
	LayoutEnabled bool   `toml:"layout_enabled"`
}

type defaultsDoc struct {
	EntityType string       `toml:"entity_type"`
	Bundle     string       `toml:"bundle"`
	Sections   []sectionDoc `toml:"section"`
}

type overrideDoc struct {
	UUID     string       `toml:"uuid"`
	Sections []sectionDoc `toml:"section"`
}

type sectionDoc struct {
	LayoutID   string         `toml:"layout_id"`
	Settings   map[string]any `toml:"settings"`
	Components []componentDoc `toml:"component"`
}

type componentDoc struct {
	UUID          string         `toml:"uuid"`
	Region        string         `toml:"region"`
	Weight        int            `toml:"weight"`
	PluginID      string         `toml:"plugin_id"`
	Configuration map[string]any `toml:"configuration"`
}

// Load reads and assembles a site fixture from path.
func Load(path string) (*Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site fixture: %w", err)
	}
	return Parse(data)
}

// Parse assembles a site from raw TOML.
func Parse(data []byte) (*Site, error) {
	var f fixture
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse site fixture: %w", err)
	}

	site := Empty()

	if f.Home != "" {
		site.Paths.SetHomePath(f.Home)
	}

	for _, doc := range f.Entities {
		site.Store.AddEntity(buildEntity(doc))
	}
	for _, doc := range f.Revisions {
		if doc.RevisionID <= 0 {
			return nil, fmt.Errorf("block_revision %q: revision_id must be positive", doc.Entity.UUID)
		}
		site.Store.AddRevision(doc.RevisionID, buildEntity(doc.Entity))
	}

	for _, doc := range f.Aliases {
		if doc.Path == "" {
			return nil, fmt.Errorf("alias for %q: path must not be empty", doc.UUID)
		}
		site.Paths.AddAlias(resolver.Alias{
			Path:       doc.Path,
			Langcode:   doc.Langcode,
			EntityType: doc.EntityType,
			UUID:       doc.UUID,
			Canonical:  doc.Canonical,
			Label:      doc.Label,
		})
	}
	for _, doc := range f.Redirects {
		site.Paths.AddRedirect(resolver.Redirect{
			From:   doc.From,
			To:     doc.To,
			Status: doc.Status,
		})
	}

	for _, doc := range f.Displays {
		mode := doc.ViewMode
		if mode == "" {
			mode = layout.ViewModeFull
		}
		site.Displays.Add(&layout.StaticDisplay{
			EntityTypeID:  doc.EntityType,
			Bundle:        doc.Bundle,
			ViewMode:      mode,
			LayoutEnabled: doc.LayoutEnabled,
		})
	}

	for _, doc := range f.Defaults {
		site.Storages.AddDefaults(doc.EntityType, doc.Bundle, buildSections(doc.Sections))
	}
	for _, doc := range f.Overrides {
		site.Storages.AddOverride(doc.UUID, buildSections(doc.Sections))
	}

	return site, nil
}

// Empty creates a site with no content, for when no fixture is configured.
func Empty() *Site {
	return &Site{
		Store:    memory.NewStore(),
		Paths:    resolver.NewStaticResolver(),
		Displays: layout.NewStaticDisplayProvider(),
		Storages: layout.NewStaticSectionStorageProvider(),
	}
}

func buildEntity(doc entityDoc) *content.Entity {
	e := &content.Entity{
		UUID:       doc.UUID,
		InternalID: doc.InternalID,
		EntityType: doc.EntityType,
		Bundle:     doc.Bundle,
		Langcode:   doc.Langcode,
		Label:      doc.Label,
		Published:  doc.Published,
		Fields:     doc.Fields,
	}
	for _, tr := range doc.Translations {
		e.AddTranslation(&content.Entity{
			UUID:       doc.UUID,
			InternalID: doc.InternalID,
			EntityType: doc.EntityType,
			Bundle:     doc.Bundle,
			Langcode:   tr.Langcode,
			Label:      tr.Label,
			Published:  tr.Published,
		})
	}
	return e
}

func buildSections(docs []sectionDoc) []layout.SectionDefinition {
	sections := make([]layout.SectionDefinition, 0, len(docs))
	for _, doc := range docs {
		components := make([]layout.ComponentDefinition, 0, len(doc.Components))
		for _, c := range doc.Components {
			components = append(components, layout.ComponentDefinition{
				UUID:          c.UUID,
				Region:        c.Region,
				Weight:        c.Weight,
				PluginID:      c.PluginID,
				Configuration: c.Configuration,
			})
		}
		sections = append(sections, layout.SectionDefinition{
			LayoutID:       doc.LayoutID,
			LayoutSettings: doc.Settings,
			Components:     components,
		})
	}
	return sections
}
