// Package server exposes the resolver over HTTP.
//
// The surface is deliberately small:
//
//	GET  /resolve?path=<string>&langcode=<string?>&_format=json
//	POST /cache/invalidate
//	GET  /healthz
//
// Responses carry a Cache-Control header derived from the request's
// aggregated cache metadata. Anonymous responses that are cacheable are also
// stored in the shared page cache, keyed by the request dimensions that vary
// them and indexed by their cache tags so the invalidation endpoint can drop
// them when content changes.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wayfind-cms/wayfind/pkg/cacheability"
	"github.com/wayfind-cms/wayfind/pkg/observability"
	"github.com/wayfind-cms/wayfind/pkg/pagecache"
	"github.com/wayfind-cms/wayfind/pkg/resolver"
)

// Server wires the orchestrator and the page cache into an HTTP handler.
type Server struct {
	orchestrator *resolver.Orchestrator
	pages        pagecache.Store
	logger       *log.Logger
}

// New creates a Server. pages may be a NullStore to disable response
// caching; logger may be nil.
func New(orchestrator *resolver.Orchestrator, pages pagecache.Store, logger *log.Logger) *Server {
	if pages == nil {
		pages = pagecache.NewNullStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		orchestrator: orchestrator,
		pages:        pages,
		logger:       logger,
	}
}

// Handler builds the chi router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(noSniff)

	r.Get("/resolve", s.handleResolve)
	r.Post("/cache/invalidate", s.handleInvalidate)
	r.Get("/healthz", s.handleHealthz)

	return r
}

// noSniff sets X-Content-Type-Options on every response, errors included.
func noSniff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}

// handleResolve serves GET /resolve.
func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	path := query.Get("path")
	langcode := query.Get("langcode")
	authenticated := isAuthenticated(r)

	key := pagecache.Key(path, langcode)
	if !authenticated {
		if entry, ok, err := s.pages.Get(r.Context(), key); err == nil && ok {
			observability.Cache().OnCacheHit(r.Context(), key)
			writeCached(w, entry)
			return
		} else if err != nil {
			s.logger.Warn("page cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(r.Context(), key)
	}

	observability.Resolution().OnResolveStart(r.Context(), path, langcode)
	start := time.Now()
	result, err := s.orchestrator.Resolve(r.Context(), path, langcode, authenticated)
	if result != nil {
		observability.Resolution().OnResolveComplete(r.Context(), path, result.Resolved, result.Layout != nil, time.Since(start), err)
	} else {
		observability.Resolution().OnResolveComplete(r.Context(), path, false, false, time.Since(start), err)
	}
	if errors.Is(err, resolver.ErrMissingPath) {
		writeError(w, http.StatusBadRequest, "Bad Request", "Missing required query parameter: path")
		return
	}
	if err != nil {
		s.logger.Error("resolution failed", "path", path, "err", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error", "The path could not be resolved.")
		return
	}

	body, err := json.Marshal(result)
	if err != nil {
		s.logger.Error("encoding failed", "path", path, "err", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error", "The response could not be encoded.")
		return
	}

	control := result.Meta.CacheControl()
	if !authenticated && result.Meta.MaxAge() != 0 {
		ttl := time.Duration(effectiveMaxAge(result.Meta)) * time.Second
		entry := &pagecache.Entry{Body: body, Tags: result.Meta.Tags(), Control: control}
		if err := s.pages.Set(r.Context(), key, entry, ttl); err != nil {
			s.logger.Warn("page cache write failed", "err", err)
		} else {
			observability.Cache().OnCacheSet(r.Context(), key, len(body))
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", control)
	w.Header().Set("X-Wayfind-Cache", "MISS")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// handleInvalidate serves POST /cache/invalidate. The host CMS calls it when
// content changes, passing the tags of everything that was modified.
func (s *Server) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Tags []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || len(payload.Tags) == 0 {
		writeError(w, http.StatusBadRequest, "Bad Request", "Body must be a JSON object with a non-empty tags array")
		return
	}

	if err := s.pages.InvalidateTags(r.Context(), payload.Tags...); err != nil {
		s.logger.Error("invalidation failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error", "Invalidation failed.")
		return
	}
	observability.Cache().OnInvalidate(r.Context(), payload.Tags)

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"invalidated":true}`))
}

// handleHealthz serves GET /healthz.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// isAuthenticated reports whether the request carries credentials. Any
// credentialed response must never land in a shared cache.
func isAuthenticated(r *http.Request) bool {
	if r.Header.Get("Authorization") != "" {
		return true
	}
	if _, err := r.Cookie("session"); err == nil {
		return true
	}
	return false
}

// writeCached serves a page cache hit verbatim.
func writeCached(w http.ResponseWriter, entry *pagecache.Entry) {
	w.Header().Set("Content-Type", "application/json")
	if entry.Control != "" {
		w.Header().Set("Cache-Control", entry.Control)
	}
	w.Header().Set("X-Wayfind-Cache", "HIT")
	w.WriteHeader(http.StatusOK)
	w.Write(entry.Body)
}

// errorBody is the machine-readable error shape.
type errorBody struct {
	Errors []errorObject `json:"errors"`
}

type errorObject struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// writeError emits a JSON error object. Error responses are never cacheable.
func writeError(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)

	body := errorBody{Errors: []errorObject{{
		Status: strconv.Itoa(status),
		Title:  title,
		Detail: detail,
	}}}
	json.NewEncoder(w).Encode(body)
}

// effectiveMaxAge returns the storable TTL in seconds for an aggregate,
// clamping the unbounded case the same way the Cache-Control header does.
func effectiveMaxAge(meta *cacheability.Metadata) int {
	n := meta.MaxAge()
	if n == cacheability.MaxAgePermanent {
		return 31536000
	}
	return n
}
