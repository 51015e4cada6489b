package docstore

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/starford/folio/internal/manifest"
)

// DefaultConcurrency is the number of fetches Preload runs at once when the
// caller passes zero.
const DefaultConcurrency = 8

// Fetcher is the part of storage.Provider that Preload needs.
type Fetcher interface {
	Read(ctx context.Context, path string) (string, error)
}

// PreloadOptions tunes Preload.
type PreloadOptions struct {
	// Concurrency bounds in-flight fetches. Zero means DefaultConcurrency.
	Concurrency int
	// RPS caps fetches per second. Zero means unlimited.
	RPS float64
}

// PreloadStats summarises a preload run.
type PreloadStats struct {
	Total  int `json:"total"`
	Loaded int `json:"loaded"`
	Failed int `json:"failed"`
}

// Preload fetches every file in the manifest and commits the successful ones
// to the store in manifest traversal order. Failed fetches are logged and
// leave no entry. Paths already in the store are skipped. Preload only
// returns an error when ctx is cancelled.
func (s *Store) Preload(ctx context.Context, root *manifest.Folder, f Fetcher, opts PreloadOptions, logger *slog.Logger) (PreloadStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	paths := manifest.Paths(root)
	stats := PreloadStats{Total: len(paths)}

	type fetched struct {
		text string
		ok   bool
	}
	results := make([]fetched, len(paths))

	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	var limiter *rate.Limiter
	if opts.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), 1)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, p := range paths {
		if _, ok := s.Get(p); ok {
			continue
		}
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(gctx); err != nil {
					return err
				}
			}
			text, err := f.Read(gctx, p)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				logger.Warn("preload: fetch failed", slog.String("path", p), slog.String("error", err.Error()))
				return nil
			}
			results[i] = fetched{text: text, ok: true}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats, err
	}

	for i, p := range paths {
		if !results[i].ok {
			if _, ok := s.Get(p); !ok {
				stats.Failed++
			}
			continue
		}
		s.Put(p, results[i].text)
		stats.Loaded++
	}
	logger.Info("preload complete",
		slog.Int("total", stats.Total),
		slog.Int("loaded", stats.Loaded),
		slog.Int("failed", stats.Failed),
	)
	return stats, nil
}
