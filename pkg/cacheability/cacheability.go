// Package cacheability aggregates cache-invalidation metadata for a single
// resolution request.
//
// Every object consulted while resolving a path (entities, view displays,
// section storages, the path resolver configuration) declares how long its
// output may be cached, which tags invalidate it, and which request
// dimensions vary it. The Metadata accumulator collects all of these into
// one aggregate that maps onto the response's Cache-Control header and
// invalidation metadata.
//
// A Metadata value is request-scoped: it is created once per request and
// passed by pointer through the availability gate, the tree assembler, and
// the inline reference resolver so every discovered dependency lands in the
// same aggregate. It has a single writer (the request goroutine) and needs
// no locking.
package cacheability

import (
	"fmt"
	"sort"
)

// MaxAgePermanent marks output that may be cached without a time bound.
// It is the identity element for RestrictMaxAge.
const MaxAgePermanent = -1

// Dependency is implemented by anything that contributes cache metadata:
// content entities, view displays, section storages, resolver configuration.
type Dependency interface {
	// CacheTags returns the invalidation tags for this object.
	CacheTags() []string

	// CacheContexts returns the request dimensions that vary output
	// derived from this object.
	CacheContexts() []string

	// CacheMaxAge returns the maximum cache lifetime in seconds, or
	// MaxAgePermanent for no bound.
	CacheMaxAge() int
}

// Metadata accumulates cache dependencies for one request.
//
// MaxAge only ever decreases toward the minimum observed value; tags and
// contexts grow by set union. The zero value is not useful: use New, which
// starts at MaxAgePermanent with empty sets.
type Metadata struct {
	maxAge   int
	tags     map[string]struct{}
	contexts map[string]struct{}
}

// New creates an empty accumulator with an unbounded max-age.
func New() *Metadata {
	return &Metadata{
		maxAge:   MaxAgePermanent,
		tags:     make(map[string]struct{}),
		contexts: make(map[string]struct{}),
	}
}

// RestrictMaxAge lowers the aggregate max-age to n if n is stricter than the
// current value. MaxAgePermanent never restricts anything.
func (m *Metadata) RestrictMaxAge(n int) {
	if n == MaxAgePermanent {
		return
	}
	if n < 0 {
		n = 0
	}
	if m.maxAge == MaxAgePermanent || n < m.maxAge {
		m.maxAge = n
	}
}

// MaxAge returns the aggregate max-age in seconds, or MaxAgePermanent when
// nothing restricted it.
func (m *Metadata) MaxAge() int { return m.maxAge }

// AddTags adds invalidation tags to the aggregate. Duplicates are ignored.
func (m *Metadata) AddTags(tags ...string) {
	for _, t := range tags {
		if t == "" {
			continue
		}
		m.tags[t] = struct{}{}
	}
}

// AddContexts adds cache contexts to the aggregate. Duplicates are ignored.
func (m *Metadata) AddContexts(contexts ...string) {
	for _, c := range contexts {
		if c == "" {
			continue
		}
		m.contexts[c] = struct{}{}
	}
}

// AddDependency registers everything dep declares: its tags, its contexts,
// and its max-age restriction.
func (m *Metadata) AddDependency(dep Dependency) {
	if dep == nil {
		return
	}
	m.AddTags(dep.CacheTags()...)
	m.AddContexts(dep.CacheContexts()...)
	m.RestrictMaxAge(dep.CacheMaxAge())
}

// Merge folds other into m. The other accumulator is not modified.
func (m *Metadata) Merge(other *Metadata) {
	if other == nil {
		return
	}
	m.RestrictMaxAge(other.maxAge)
	for t := range other.tags {
		m.tags[t] = struct{}{}
	}
	for c := range other.contexts {
		m.contexts[c] = struct{}{}
	}
}

// Tags returns the aggregated tags sorted lexicographically. Sorting makes
// the aggregate deterministic for headers and tests.
func (m *Metadata) Tags() []string { return sortedKeys(m.tags) }

// Contexts returns the aggregated contexts sorted lexicographically.
func (m *Metadata) Contexts() []string { return sortedKeys(m.contexts) }

// CacheControl returns the Cache-Control header value for the aggregate:
// "public, max-age=<n>" when the output is cacheable for n > 0 seconds,
// otherwise "no-store".
func (m *Metadata) CacheControl() string {
	if m.maxAge == MaxAgePermanent || m.maxAge > 0 {
		n := m.maxAge
		if n == MaxAgePermanent {
			// Unbounded aggregates are clamped to a year, the usual
			// upper bound shared caches honor.
			n = 31536000
		}
		return fmt.Sprintf("public, max-age=%d", n)
	}
	return "no-store"
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
