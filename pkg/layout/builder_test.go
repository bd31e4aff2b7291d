package layout

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/wayfind-cms/wayfind/pkg/cacheability"
	"github.com/wayfind-cms/wayfind/pkg/content"
)

func fixtureEntity() *content.Entity {
	return &content.Entity{
		UUID:       "page-1",
		InternalID: 1,
		EntityType: "node",
		Bundle:     "page",
		Langcode:   "en",
		Label:      "About us",
		Published:  true,
	}
}

func fixtureSections() []SectionDefinition {
	return []SectionDefinition{
		{
			LayoutID:       "layout_onecol",
			LayoutSettings: map[string]any{"label": ""},
			Components: []ComponentDefinition{
				{
					UUID:     "c-title",
					Region:   "content",
					Weight:   0,
					PluginID: "field_block:node:page:title",
					Configuration: map[string]any{
						"label":         "Title",
						"label_display": "0",
					},
				},
				{
					UUID:     "c-inline",
					Region:   "content",
					Weight:   1,
					PluginID: "inline_block:basic",
					Configuration: map[string]any{
						"block_revision_id": 10,
						"view_mode":         "full",
					},
				},
				{
					UUID:     "c-ghost",
					Region:   "content",
					Weight:   2,
					PluginID: "",
				},
				{
					UUID:     "c-unknown",
					Region:   "footer",
					Weight:   3,
					PluginID: "system_menu_block:main",
				},
			},
		},
	}
}

func fixtureBuilder(enabled bool, sections []SectionDefinition) (*Builder, *content.Entity) {
	entity := fixtureEntity()

	displays := NewStaticDisplayProvider()
	displays.Add(&StaticDisplay{
		EntityTypeID:  "node",
		Bundle:        "page",
		ViewMode:      "full",
		LayoutEnabled: enabled,
	})

	storages := NewStaticSectionStorageProvider()
	if sections != nil {
		storages.AddDefaults("node", "page", sections)
	}

	blocks := &stubBlockStore{
		available: true,
		revisions: map[int]*content.Entity{
			10: {UUID: "b-10", InternalID: 3, EntityType: "block_content", Bundle: "basic", Published: true},
		},
	}

	return NewBuilder(displays, storages, blocks, publishedAccess, nil), entity
}

func TestBuildTree(t *testing.T) {
	builder, entity := fixtureBuilder(true, fixtureSections())
	meta := cacheability.New()

	tree, err := builder.Build(context.Background(), entity, meta)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if tree == nil {
		t.Fatal("Build() = nil, want tree")
	}

	if tree.Source != StorageDefaults {
		t.Errorf("Source = %q, want %q", tree.Source, StorageDefaults)
	}
	if tree.ViewMode != "full" {
		t.Errorf("ViewMode = %q, want full", tree.ViewMode)
	}
	if len(tree.Sections) != 1 {
		t.Fatalf("Sections count = %d, want 1", len(tree.Sections))
	}

	section := tree.Sections[0]
	if section.LayoutID != "layout_onecol" {
		t.Errorf("LayoutID = %q, want layout_onecol", section.LayoutID)
	}

	// The empty-plugin placement is dropped entirely.
	if len(section.Components) != 3 {
		t.Fatalf("Components count = %d, want 3", len(section.Components))
	}

	field := section.Components[0]
	if field.Kind != KindField {
		t.Errorf("component 0 kind = %q, want field", field.Kind)
	}
	if field.Field == nil || field.Field.FieldName != "title" {
		t.Errorf("component 0 field = %+v, want title reference", field.Field)
	}
	if field.Settings["label"] != "Title" {
		t.Errorf("component 0 settings = %v, want allow-listed label", field.Settings)
	}

	inline := section.Components[1]
	if inline.Kind != KindInlineBlock {
		t.Errorf("component 1 kind = %q, want inline_block", inline.Kind)
	}
	if inline.Inline == nil || inline.Inline.Block == nil {
		t.Fatalf("component 1 inline = %+v, want resolved block", inline.Inline)
	}

	generic := section.Components[2]
	if generic.Kind != KindBlock {
		t.Errorf("component 2 kind = %q, want block", generic.Kind)
	}
	if generic.Field != nil || generic.Inline != nil {
		t.Error("generic block must carry no kind-specific payload")
	}
}

func TestBuildAbsentWhenLayoutDisabled(t *testing.T) {
	builder, entity := fixtureBuilder(false, fixtureSections())
	meta := cacheability.New()

	tree, err := builder.Build(context.Background(), entity, meta)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if tree != nil {
		t.Errorf("Build() = %+v, want nil when layout is disabled", tree)
	}
}

func TestBuildAbsentWhenNoStorageResolves(t *testing.T) {
	builder, entity := fixtureBuilder(true, nil)
	meta := cacheability.New()

	tree, err := builder.Build(context.Background(), entity, meta)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if tree != nil {
		t.Errorf("Build() = %+v, want nil when no storage resolves", tree)
	}

	// The failed lookup still registers its route influence.
	found := false
	for _, c := range meta.Contexts() {
		if c == "route" {
			found = true
		}
	}
	if !found {
		t.Errorf("Contexts() = %v, want route registered even on failure", meta.Contexts())
	}
}

func TestBuildAbsentWhenSectionsEmpty(t *testing.T) {
	builder, entity := fixtureBuilder(true, []SectionDefinition{})
	meta := cacheability.New()

	tree, err := builder.Build(context.Background(), entity, meta)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if tree != nil {
		t.Errorf("Build() = %+v, want nil for empty sections", tree)
	}
}

func TestBuildEmitsEmptySections(t *testing.T) {
	sections := []SectionDefinition{
		{LayoutID: "layout_onecol", Components: []ComponentDefinition{{PluginID: ""}}},
	}
	builder, entity := fixtureBuilder(true, sections)
	meta := cacheability.New()

	tree, err := builder.Build(context.Background(), entity, meta)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if tree == nil {
		t.Fatal("Build() = nil, want tree: a section with no components is still valid")
	}
	if len(tree.Sections) != 1 {
		t.Fatalf("Sections count = %d, want 1", len(tree.Sections))
	}
	if len(tree.Sections[0].Components) != 0 {
		t.Errorf("Components = %v, want empty list", tree.Sections[0].Components)
	}
}

func TestBuildOverridesWinOverDefaults(t *testing.T) {
	builder, entity := fixtureBuilder(true, fixtureSections())
	builder.storages.(*StaticSectionStorageProvider).AddOverride(entity.UUID, []SectionDefinition{
		{LayoutID: "layout_twocol_section"},
	})
	meta := cacheability.New()

	tree, err := builder.Build(context.Background(), entity, meta)
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	if tree == nil {
		t.Fatal("Build() = nil, want tree")
	}
	if tree.Source != StorageOverrides {
		t.Errorf("Source = %q, want %q", tree.Source, StorageOverrides)
	}
	if tree.Sections[0].LayoutID != "layout_twocol_section" {
		t.Errorf("LayoutID = %q, want layout_twocol_section", tree.Sections[0].LayoutID)
	}
}

func TestBuildAggregatesCacheMetadata(t *testing.T) {
	builder, entity := fixtureBuilder(true, fixtureSections())
	meta := cacheability.New()

	if _, err := builder.Build(context.Background(), entity, meta); err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	wantTags := map[string]bool{
		"config:core.entity_view_display.node.page.full": true,
		"config:layout_builder.defaults.node.page":       true,
		"block_content:3":                                true,
	}
	for _, tag := range meta.Tags() {
		delete(wantTags, tag)
	}
	if len(wantTags) != 0 {
		t.Errorf("missing cache tags: %v (got %v)", wantTags, meta.Tags())
	}
}

func TestBuildIdempotent(t *testing.T) {
	builder, entity := fixtureBuilder(true, fixtureSections())

	first, err := builder.Build(context.Background(), entity, cacheability.New())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}
	second, err := builder.Build(context.Background(), entity, cacheability.New())
	if err != nil {
		t.Fatalf("Build() error: %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("json.Marshal() error: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("json.Marshal() error: %v", err)
	}

	if !bytes.Equal(a, b) {
		t.Errorf("normalized output differs between identical builds:\n%s\n%s", a, b)
	}
}

func TestComponentMarshalShapes(t *testing.T) {
	tests := []struct {
		name      string
		component Component
		wantKeys  []string
		nullKeys  []string
	}{
		{
			name: "field with null payload keeps the field key",
			component: Component{
				Kind:     KindField,
				UUID:     "c1",
				PluginID: "field_block:broken",
			},
			wantKeys: []string{"type", "uuid", "region", "weight", "plugin_id", "settings", "field"},
			nullKeys: []string{"field"},
		},
		{
			name: "inline block always carries its payload fields",
			component: Component{
				Kind:     KindInlineBlock,
				UUID:     "c2",
				PluginID: "inline_block:basic",
			},
			wantKeys: []string{"view_mode", "block_revision_id", "block"},
			nullKeys: []string{"view_mode", "block_revision_id", "block"},
		},
		{
			name: "generic block carries no payload keys",
			component: Component{
				Kind:     KindBlock,
				UUID:     "c3",
				PluginID: "system_menu_block:main",
			},
			wantKeys: []string{"type", "uuid", "plugin_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.component)
			if err != nil {
				t.Fatalf("json.Marshal() error: %v", err)
			}

			var m map[string]json.RawMessage
			if err := json.Unmarshal(data, &m); err != nil {
				t.Fatalf("json.Unmarshal() error: %v", err)
			}

			for _, key := range tt.wantKeys {
				if _, ok := m[key]; !ok {
					t.Errorf("marshaled component missing key %q: %s", key, data)
				}
			}
			for _, key := range tt.nullKeys {
				if string(m[key]) != "null" {
					t.Errorf("key %q = %s, want null", key, m[key])
				}
			}

			if tt.component.Kind == KindBlock {
				for _, forbidden := range []string{"field", "block", "block_revision_id"} {
					if _, ok := m[forbidden]; ok {
						t.Errorf("generic block must not carry %q: %s", forbidden, data)
					}
				}
			}
		})
	}
}
