// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/folio/internal/api"
	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/manifest"
	"github.com/starford/folio/internal/mcpserver"
	"github.com/starford/folio/internal/search"
	"github.com/starford/folio/internal/sse"
	"github.com/starford/folio/internal/viewer"
	"github.com/starford/folio/internal/watcher"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	c, err := app.bootstrap(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	cfg, logger := c.cfg, c.logger

	// SSE broker.
	broker := sse.NewBroker(sse.DefaultCorpusThrottle)
	defer broker.Close()

	var ready atomic.Bool

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"preloading"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(c.svc, c.theme, broker, cfg.CORS.AllowedOrigins))

	// Raw site files (images, sources).
	r.Get("/site/*", api.NewSiteHandler(c.provider).ServeFile)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Preload every manifest document so search covers the whole site.
	g.Go(func() error {
		if err := c.preload(gCtx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		ready.Store(true)
		broker.Publish(sse.Event{Type: sse.EventCorpusUpdated, Data: map[string]string{}})
		return nil
	})

	// Start file watcher with SSE callback.
	if cfg.Docs.Watch && c.site != nil {
		g.Go(func() error {
			err := watcher.Watch(gCtx, c.svc, c.site, cfg.Docs.Manifest, c.preloadOptions(), logger, func(kind, path string) {
				broker.PublishDocumentEvent(kind, path)
			})
			if err != nil {
				logger.Warn("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP preloads the site and serves MCP tools over stdio until stdin
// closes. Logs must not go to stdout, which carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(append([]Option{WithLogOutput(os.Stderr)}, opts...))
	if err != nil {
		return err
	}

	c, err := app.bootstrap(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.preload(ctx); err != nil {
		return err
	}

	c.logger.Info("MCP server starting", slog.String("version", app.version))
	if err := mcpserver.New(c.svc, app.version).ServeStdio(); err != nil {
		return fmt.Errorf("mcp: %w", err)
	}
	return nil
}

// Search preloads the site and runs one query against it.
func Search(ctx context.Context, query string, opts ...Option) (*viewer.SearchView, error) {
	if !search.Searchable(viewer.NormalizeQuery(query)) {
		return nil, fmt.Errorf("search %q: %w", query, apperr.ErrInvalidQuery)
	}

	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}

	c, err := app.bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	if err := c.preload(ctx); err != nil {
		return nil, err
	}
	return c.svc.Search(query), nil
}

// GenerateManifest lists the Markdown files under the documents prefix of a
// local site and encodes them as a manifest in the configured format.
func GenerateManifest(ctx context.Context, opts ...Option) ([]byte, error) {
	app, err := newApplication(opts)
	if err != nil {
		return nil, err
	}

	c, err := app.bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	if c.site == nil {
		return nil, fmt.Errorf("generate manifest: docs.source must be %q: %w", SourceFS, apperr.ErrInvalidInput)
	}

	docs, err := c.site.List(strings.TrimSuffix(c.cfg.Docs.Prefix, "/"))
	if err != nil {
		return nil, fmt.Errorf("generate manifest: %w", err)
	}

	root := manifest.FromDocuments(docs, c.cfg.Docs.Prefix)
	c.logger.Info("Manifest generated", slog.Int("documents", len(docs)))
	return manifest.Marshal(root, manifest.FormatFromName(c.cfg.Docs.Manifest))
}
