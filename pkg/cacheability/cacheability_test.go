package cacheability

import (
	"reflect"
	"testing"
)

func TestRestrictMaxAge(t *testing.T) {
	tests := []struct {
		name    string
		inputs  []int
		wantMax int
	}{
		{
			name:    "nothing restricted",
			inputs:  nil,
			wantMax: MaxAgePermanent,
		},
		{
			name:    "permanent never restricts",
			inputs:  []int{MaxAgePermanent, MaxAgePermanent},
			wantMax: MaxAgePermanent,
		},
		{
			name:    "single value",
			inputs:  []int{300},
			wantMax: 300,
		},
		{
			name:    "minimum wins",
			inputs:  []int{300, 60, 3600},
			wantMax: 60,
		},
		{
			name:    "zero is terminal",
			inputs:  []int{300, 0, 3600},
			wantMax: 0,
		},
		{
			name:    "permanent after restriction is a no-op",
			inputs:  []int{120, MaxAgePermanent},
			wantMax: 120,
		},
		{
			name:    "negative values clamp to zero",
			inputs:  []int{-7},
			wantMax: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			for _, n := range tt.inputs {
				m.RestrictMaxAge(n)
			}
			if got := m.MaxAge(); got != tt.wantMax {
				t.Errorf("MaxAge() = %d, want %d", got, tt.wantMax)
			}
		})
	}
}

func TestTagAndContextUnion(t *testing.T) {
	m := New()
	m.AddTags("node:1", "node:2", "node:1", "")
	m.AddContexts("url.query_args:path", "user.roles", "url.query_args:path")

	wantTags := []string{"node:1", "node:2"}
	if got := m.Tags(); !reflect.DeepEqual(got, wantTags) {
		t.Errorf("Tags() = %v, want %v", got, wantTags)
	}

	wantContexts := []string{"url.query_args:path", "user.roles"}
	if got := m.Contexts(); !reflect.DeepEqual(got, wantContexts) {
		t.Errorf("Contexts() = %v, want %v", got, wantContexts)
	}
}

type stubDependency struct {
	tags     []string
	contexts []string
	maxAge   int
}

func (d stubDependency) CacheTags() []string     { return d.tags }
func (d stubDependency) CacheContexts() []string { return d.contexts }
func (d stubDependency) CacheMaxAge() int        { return d.maxAge }

func TestAddDependency(t *testing.T) {
	m := New()
	m.AddDependency(stubDependency{
		tags:     []string{"block_content:9"},
		contexts: []string{"languages:language_interface"},
		maxAge:   600,
	})
	m.AddDependency(stubDependency{tags: []string{"node:4"}, maxAge: MaxAgePermanent})
	m.AddDependency(nil)

	if got := m.MaxAge(); got != 600 {
		t.Errorf("MaxAge() = %d, want 600", got)
	}
	wantTags := []string{"block_content:9", "node:4"}
	if got := m.Tags(); !reflect.DeepEqual(got, wantTags) {
		t.Errorf("Tags() = %v, want %v", got, wantTags)
	}
}

func TestMerge(t *testing.T) {
	a := New()
	a.AddTags("node:1")
	a.RestrictMaxAge(3600)

	b := New()
	b.AddTags("node:2")
	b.AddContexts("user.permissions")
	b.RestrictMaxAge(60)

	a.Merge(b)
	a.Merge(nil)

	if got := a.MaxAge(); got != 60 {
		t.Errorf("MaxAge() = %d, want 60", got)
	}
	wantTags := []string{"node:1", "node:2"}
	if got := a.Tags(); !reflect.DeepEqual(got, wantTags) {
		t.Errorf("Tags() = %v, want %v", got, wantTags)
	}
	if got := b.Tags(); !reflect.DeepEqual(got, []string{"node:2"}) {
		t.Errorf("Merge modified source: Tags() = %v", got)
	}
}

func TestCacheControl(t *testing.T) {
	tests := []struct {
		name   string
		maxAge int
		want   string
	}{
		{"cacheable", 300, "public, max-age=300"},
		{"zero means no-store", 0, "no-store"},
		{"permanent clamps to one year", MaxAgePermanent, "public, max-age=31536000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.RestrictMaxAge(tt.maxAge)
			if got := m.CacheControl(); got != tt.want {
				t.Errorf("CacheControl() = %q, want %q", got, tt.want)
			}
		})
	}
}
