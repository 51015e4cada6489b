package internal

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/folio/internal/docstore"
	"github.com/starford/folio/internal/markdown"
	"github.com/starford/folio/internal/prefs"
	"github.com/starford/folio/internal/storage"
	"github.com/starford/folio/internal/viewer"
)

// components are the long-lived pieces shared by every entry point.
type components struct {
	cfg      *Config
	logger   *slog.Logger
	provider storage.Provider
	site     *storage.FS // nil unless docs.source is fs
	kv       prefs.KV
	svc      *viewer.Service
	theme    *prefs.Theme
}

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev"}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logOutput == nil {
		app.logOutput = os.Stdout
	}
	return app, nil
}

// bootstrap opens the provider and the preference store and loads the
// manifest. The caller must Close the result.
func (a *application) bootstrap(ctx context.Context) (*components, error) {
	cfg := a.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(a.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("docs_source", cfg.Docs.Source),
		slog.String("docs_root", cfg.Docs.Root),
		slog.String("docs_base_url", cfg.Docs.BaseURL),
		slog.String("prefs_backend", cfg.Prefs.Backend),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c := &components{cfg: cfg, logger: logger}

	// Initialize document provider.
	switch cfg.Docs.Source {
	case SourceHTTP:
		p, err := storage.NewHTTP(cfg.Docs.BaseURL, storage.WithTimeout(cfg.Docs.FetchTimeout))
		if err != nil {
			return nil, fmt.Errorf("init provider: %w", err)
		}
		c.provider = p
	default:
		fs, err := storage.NewFS(cfg.Docs.Root)
		if err != nil {
			return nil, fmt.Errorf("init provider: %w", err)
		}
		c.provider, c.site = fs, fs
	}

	// Initialize preference store.
	kv, err := prefs.Open(ctx, cfg.Prefs.Settings())
	if err != nil {
		return nil, fmt.Errorf("init prefs: %w", err)
	}
	c.kv = kv
	c.theme = prefs.NewTheme(kv)

	history := prefs.NewHistory(kv, cfg.Prefs.MaxRecent, logger)
	c.svc = viewer.NewService(c.provider, docstore.New(), history,
		viewer.WithLogger(logger),
		viewer.WithRenderer(markdown.Options{DocsPrefix: cfg.Docs.Prefix}),
		viewer.WithManifestName(cfg.Docs.Manifest),
	)

	root := c.svc.LoadManifest(ctx)
	logger.Info("Manifest loaded", slog.String("name", cfg.Docs.Manifest), slog.Int("entries", root.Len()))

	return c, nil
}

func (c *components) preloadOptions() docstore.PreloadOptions {
	return docstore.PreloadOptions{
		Concurrency: c.cfg.Docs.PreloadConcurrency,
		RPS:         c.cfg.Docs.PreloadRPS,
	}
}

// preload fills the document store and logs the outcome.
func (c *components) preload(ctx context.Context) error {
	stats, err := c.svc.Preload(ctx, c.preloadOptions())
	if err != nil {
		return fmt.Errorf("preload: %w", err)
	}
	c.logger.Info("Documents preloaded",
		slog.Int("total", stats.Total),
		slog.Int("loaded", stats.Loaded),
		slog.Int("failed", stats.Failed))
	return nil
}

// Close releases the preference store.
func (c *components) Close() {
	if c.kv == nil {
		return
	}
	if err := c.kv.Close(); err != nil {
		c.logger.Warn("close prefs", slog.String("error", err.Error()))
	}
}
