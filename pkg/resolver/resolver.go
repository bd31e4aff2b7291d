// Package resolver orchestrates path resolution: it asks the path resolver
// what a site-relative path means, loads the resolved entity, and augments
// the result with a normalized layout tree when one applies.
//
// The orchestrator owns the request's cache-metadata aggregation. Every
// collaborator consulted along the way (resolver configuration, entity,
// display, section storage, inline block revisions) contributes its cache
// dependency to one request-scoped accumulator that finally maps onto the
// response's Cache-Control header and invalidation metadata.
//
// Failures below the request boundary never surface: a malformed entity
// descriptor, a lookup miss, a denied access check, or a layout
// normalization error all result in a response without a layout key, not in
// an error response. The only fatal condition is a blank path.
package resolver

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/wayfind-cms/wayfind/pkg/cacheability"
	"github.com/wayfind-cms/wayfind/pkg/content"
	"github.com/wayfind-cms/wayfind/pkg/layout"
)

// ErrMissingPath is returned for a missing or blank path. It is the single
// client-input error in this package; the transport maps it to HTTP 400.
var ErrMissingPath = errors.New("missing required query parameter: path")

// Resolution kinds.
const (
	KindEntity   = "entity"
	KindRedirect = "redirect"
)

// EntityRef describes the entity a path resolved to. Type is the composite
// resource-kind string "<entity_type>--<bundle>".
type EntityRef struct {
	Type     string `json:"type"`
	UUID     string `json:"uuid"`
	Langcode string `json:"langcode,omitempty"`
}

// Resolution is the generic result of the external path resolver. The
// orchestrator treats it as opaque except for Resolved, Kind, and Entity.
type Resolution struct {
	Resolved       bool       `json:"resolved"`
	Kind           string     `json:"kind,omitempty"`
	Canonical      string     `json:"canonical,omitempty"`
	Label          string     `json:"label,omitempty"`
	Entity         *EntityRef `json:"entity,omitempty"`
	RedirectTarget string     `json:"redirect_target,omitempty"`
	RedirectStatus int        `json:"redirect_status,omitempty"`
	IsHomePath     bool       `json:"is_home_path,omitempty"`
}

// PathResolver is the external alias/redirect/language-negotiation
// collaborator. It also declares the cache influence of its own
// configuration, which the orchestrator registers on every request.
type PathResolver interface {
	cacheability.Dependency

	// Resolve maps a site-relative path (and optional language hint) to a
	// Resolution. An unresolvable path is not an error: it yields a
	// Resolution with Resolved false.
	Resolve(ctx context.Context, path, langcode string) (*Resolution, error)
}

// Result is the outbound payload: the resolution verbatim, optionally
// augmented with the layout key. Meta carries the aggregated cache metadata
// for the transport layer; it is not serialized.
type Result struct {
	Resolution
	Layout *layout.Tree           `json:"layout,omitempty"`
	Meta   *cacheability.Metadata `json:"-"`
}

// Orchestrator glues the path resolver, the entity store, and the layout
// builder together. Stateless across requests; safe for concurrent use when
// its collaborators are.
type Orchestrator struct {
	paths   PathResolver
	store   content.Store
	builder *layout.Builder
	anonTTL int
	logger  *log.Logger
}

// NewOrchestrator creates an Orchestrator. anonTTL is the max-age in seconds
// granted to anonymous responses before any dependency restricts it further;
// logger may be nil.
func NewOrchestrator(paths PathResolver, store content.Store, builder *layout.Builder, anonTTL int, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		paths:   paths,
		store:   store,
		builder: builder,
		anonTTL: anonTTL,
		logger:  logger,
	}
}

// Resolve processes one request end to end. authenticated marks requests
// whose responses must never land in a shared cache.
func (o *Orchestrator) Resolve(ctx context.Context, path, langcode string, authenticated bool) (*Result, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrMissingPath
	}

	meta := cacheability.New()
	meta.AddContexts("url.query_args:path", "url.query_args:langcode")
	meta.AddDependency(o.paths)
	if authenticated {
		meta.RestrictMaxAge(0)
		meta.AddContexts("user")
	} else {
		meta.RestrictMaxAge(o.anonTTL)
	}

	resolution, err := o.paths.Resolve(ctx, path, langcode)
	if err != nil {
		return nil, err
	}

	result := &Result{Resolution: *resolution, Meta: meta}

	entity := o.loadEntity(ctx, resolution, langcode)
	if entity == nil {
		return result, nil
	}

	meta.AddDependency(entity)

	tree, err := o.builder.Build(ctx, entity, meta)
	if err != nil {
		// A normalization failure must not abort the response; the
		// result simply carries no layout.
		o.logger.Warn("layout build failed", "path", path, "err", err)
		return result, nil
	}
	result.Layout = tree

	return result, nil
}

// loadEntity turns a resolution into a loaded, translated, view-accessible
// entity. Any failure returns nil: the resolver may have vetted the path,
// but this layer re-checks everything it depends on.
func (o *Orchestrator) loadEntity(ctx context.Context, resolution *Resolution, langcode string) *content.Entity {
	if resolution.Kind != KindEntity || resolution.Entity == nil {
		return nil
	}

	entityTypeID, bundle, ok := splitDescriptor(resolution.Entity.Type)
	if !ok || resolution.Entity.UUID == "" {
		o.logger.Debug("malformed entity descriptor", "type", resolution.Entity.Type)
		return nil
	}
	_ = bundle // the descriptor's bundle half is informational here

	definition, err := o.store.GetDefinition(ctx, entityTypeID)
	if err != nil || definition == nil || !definition.ContentBearing {
		return nil
	}

	entity, err := o.store.LoadByUUID(ctx, entityTypeID, resolution.Entity.UUID)
	if err != nil || entity == nil {
		return nil
	}

	negotiated := resolution.Entity.Langcode
	if negotiated == "" {
		negotiated = langcode
	}
	if negotiated != "" && entity.HasTranslation(negotiated) {
		entity = entity.Translation(negotiated)
	}

	if !o.store.Access(ctx, entity, "view") {
		return nil
	}

	return entity
}

// splitDescriptor splits a composite "<entity_type>--<bundle>" descriptor.
// Both halves must be non-empty and the separator must occur exactly once.
func splitDescriptor(descriptor string) (entityTypeID, bundle string, ok bool) {
	parts := strings.Split(descriptor, "--")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
