package resolver

import (
	"context"
	"strings"
	"sync"
)

// Alias maps a site-relative path to an entity.
type Alias struct {
	// Path is the site-relative alias (e.g., "/about-us").
	Path string

	// Langcode restricts the alias to one language; empty matches any.
	Langcode string

	// EntityType is the composite descriptor "<entity_type>--<bundle>".
	EntityType string

	// UUID is the entity's stable identifier.
	UUID string

	// Canonical is the internal canonical path (e.g., "/node/1").
	Canonical string

	// Label is the entity label at resolution time.
	Label string
}

// Redirect maps a site-relative path to another path.
type Redirect struct {
	From   string
	To     string
	Status int
}

// StaticResolver is an in-memory PathResolver backed by alias and redirect
// tables, typically seeded from a site fixture. It stands in for the host
// CMS's alias manager during development and testing.
type StaticResolver struct {
	mu        sync.RWMutex
	aliases   map[string][]Alias
	redirects map[string]Redirect
	homePath  string
}

// NewStaticResolver creates an empty resolver.
func NewStaticResolver() *StaticResolver {
	return &StaticResolver{
		aliases:   make(map[string][]Alias),
		redirects: make(map[string]Redirect),
	}
}

// AddAlias registers a path alias. Multiple aliases may share a path with
// different langcodes.
func (r *StaticResolver) AddAlias(a Alias) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[normalizePath(a.Path)] = append(r.aliases[normalizePath(a.Path)], a)
}

// AddRedirect registers a redirect. A zero status defaults to 301.
func (r *StaticResolver) AddRedirect(redirect Redirect) {
	if redirect.Status == 0 {
		redirect.Status = 301
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.redirects[normalizePath(redirect.From)] = redirect
}

// SetHomePath marks one path as the site front page. Resolutions of that
// path carry the is_home_path flag so frontends can special-case it.
func (r *StaticResolver) SetHomePath(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.homePath = normalizePath(path)
}

// Resolve checks redirects first, then aliases. Language negotiation picks
// the alias matching langcode when one exists, otherwise the first
// language-neutral alias, otherwise the first alias registered.
func (r *StaticResolver) Resolve(ctx context.Context, path, langcode string) (*Resolution, error) {
	p := normalizePath(path)

	r.mu.RLock()
	defer r.mu.RUnlock()

	if redirect, ok := r.redirects[p]; ok {
		return &Resolution{
			Resolved:       true,
			Kind:           KindRedirect,
			RedirectTarget: redirect.To,
			RedirectStatus: redirect.Status,
		}, nil
	}

	candidates := r.aliases[p]
	if len(candidates) == 0 {
		return &Resolution{Resolved: false}, nil
	}

	alias := pickAlias(candidates, langcode)
	return &Resolution{
		Resolved:   true,
		Kind:       KindEntity,
		Canonical:  alias.Canonical,
		Label:      alias.Label,
		IsHomePath: r.homePath != "" && p == r.homePath,
		Entity: &EntityRef{
			Type:     alias.EntityType,
			UUID:     alias.UUID,
			Langcode: alias.Langcode,
		},
	}, nil
}

// CacheTags returns the resolver's configuration tag: any alias or redirect
// change must invalidate every cached resolution.
func (r *StaticResolver) CacheTags() []string { return []string{"wayfind_resolver"} }

// CacheContexts returns the dimensions the alias tables vary on.
func (r *StaticResolver) CacheContexts() []string {
	return []string{"languages:language_content"}
}

// CacheMaxAge returns -1: the tables are cacheable until invalidated.
func (r *StaticResolver) CacheMaxAge() int { return -1 }

func pickAlias(candidates []Alias, langcode string) Alias {
	if langcode != "" {
		for _, a := range candidates {
			if a.Langcode == langcode {
				return a
			}
		}
	}
	for _, a := range candidates {
		if a.Langcode == "" {
			return a
		}
	}
	return candidates[0]
}

// normalizePath trims trailing slashes and guarantees a leading one, so
// "/about-us/" and "about-us" resolve identically.
func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	p = strings.TrimRight(p, "/")
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}

// Ensure StaticResolver implements PathResolver.
var _ PathResolver = (*StaticResolver)(nil)
