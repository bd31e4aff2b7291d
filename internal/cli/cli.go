// Package cli implements the wayfind command-line interface.
//
// The main commands are:
//   - serve: run the resolution HTTP service
//   - resolve: resolve one path against a site fixture and print the result
//   - diagram: render a resolved layout as an SVG, PNG, or DOT diagram
//   - inspect: browse a resolved layout interactively
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/wayfind-cms/wayfind/pkg/buildinfo"
	"github.com/wayfind-cms/wayfind/pkg/config"
	"github.com/wayfind-cms/wayfind/pkg/content"
	"github.com/wayfind-cms/wayfind/pkg/content/mongostore"
	"github.com/wayfind-cms/wayfind/pkg/layout"
	"github.com/wayfind-cms/wayfind/pkg/pagecache"
	"github.com/wayfind-cms/wayfind/pkg/resolver"
	"github.com/wayfind-cms/wayfind/pkg/site"
)

// appName is the application name used for display and completions.
const appName = "wayfind"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// entityCacheSize bounds the read-through LRU in front of a remote store.
const entityCacheSize = 1024

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Wayfind resolves CMS paths into entities and layout trees",
		Long:         `Wayfind is a path resolution service for decoupled CMS frontends: it maps site-relative paths to content entities and normalizes their page layouts into a stable JSON tree.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.diagramCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadSite loads the configured site fixture, or an empty site when none is
// configured.
func (c *CLI) loadSite(cfg config.Config) (*site.Site, error) {
	if cfg.SiteFixture == "" {
		c.Logger.Debug("no site fixture configured, starting empty")
		return site.Empty(), nil
	}
	s, err := site.Load(cfg.SiteFixture)
	if err != nil {
		return nil, fmt.Errorf("load site: %w", err)
	}
	return s, nil
}

// buildOrchestrator wires a site into a resolution orchestrator. When a
// MongoDB URI is configured, entity lookups go to Mongo behind an LRU; the
// fixture still provides aliases, displays, and sections.
func (c *CLI) buildOrchestrator(ctx context.Context, cfg config.Config, s *site.Site) (*resolver.Orchestrator, error) {
	var (
		store  content.Store      = s.Store
		blocks content.BlockStore = s.Store
	)
	if cfg.Mongo.URI != "" {
		mongo, err := connectMongo(ctx, cfg)
		if err != nil {
			return nil, err
		}
		cached, err := content.NewCachedStore(mongo, entityCacheSize)
		if err != nil {
			return nil, fmt.Errorf("entity cache: %w", err)
		}
		store, blocks = cached, mongo
	}

	builder := layout.NewBuilder(s.Displays, s.Storages, blocks, store.Access, c.Logger)
	return resolver.NewOrchestrator(s.Paths, store, builder, cfg.AnonTTL, c.Logger), nil
}

// buildPageCache constructs the page cache backend selected by the config.
func (c *CLI) buildPageCache(ctx context.Context, cfg config.Config) (pagecache.Store, error) {
	switch cfg.Cache.Kind {
	case "memory":
		return pagecache.NewMemoryStore(), nil
	case "none":
		return pagecache.NewNullStore(), nil
	case "redis":
		spinner := newSpinnerWithContext(ctx, "Connecting to Redis...")
		spinner.Start()
		store, err := pagecache.NewRedisStore(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			spinner.StopWithError("Redis unavailable")
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		spinner.Stop()
		return store, nil
	default:
		return nil, fmt.Errorf("unknown cache kind %q", cfg.Cache.Kind)
	}
}

func connectMongo(ctx context.Context, cfg config.Config) (*mongostore.Store, error) {
	spinner := newSpinnerWithContext(ctx, "Connecting to MongoDB...")
	spinner.Start()
	store, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		spinner.StopWithError("MongoDB unavailable")
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	spinner.Stop()
	return store, nil
}
