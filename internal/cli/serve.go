package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/wayfind-cms/wayfind/pkg/config"
	"github.com/wayfind-cms/wayfind/pkg/server"
)

// shutdownTimeout is how long in-flight requests get to finish on shutdown.
const shutdownTimeout = 10 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the path resolution HTTP service",
		Long: `Run the path resolution HTTP service.

The service exposes:

  GET  /resolve?path=<path>&langcode=<langcode>
  POST /cache/invalidate
  GET  /healthz

Configuration comes from a TOML file (--config), overridable with WAYFIND_*
environment variables. Without a site fixture the service starts empty and
resolves nothing, which is still useful behind a CMS-backed store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return c.runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to TOML config file")

	return cmd
}

// runServe wires the full pipeline and blocks until ctx is cancelled.
func (c *CLI) runServe(ctx context.Context, cfg config.Config) error {
	prog := newProgress(c.Logger)

	s, err := c.loadSite(cfg)
	if err != nil {
		return err
	}

	orchestrator, err := c.buildOrchestrator(ctx, cfg, s)
	if err != nil {
		return err
	}

	pages, err := c.buildPageCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer pages.Close()

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.New(orchestrator, pages, c.Logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		prog.done(fmt.Sprintf("Listening on %s", cfg.ListenAddr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	c.Logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
