// Package watcher keeps the document store in step with a site directory on
// disk.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/folio/internal/docstore"
	"github.com/starford/folio/internal/manifest"
	"github.com/starford/folio/internal/storage"
)

// manifestDebounce collapses the burst of writes editors emit on save.
const manifestDebounce = 200 * time.Millisecond

// EventCallback is called after a watcher-driven change. kind is one of
// "created", "updated" or "manifest".
type EventCallback func(kind string, path string)

// Target receives the changes. *viewer.Service implements it.
type Target interface {
	Refresh(ctx context.Context, path string) error
	LoadManifest(ctx context.Context) *manifest.Folder
	Preload(ctx context.Context, opts docstore.PreloadOptions) (docstore.PreloadStats, error)
}

// Watch starts an fsnotify watcher on the site root and processes file change
// events until ctx is cancelled. Created or written .md files are re-read into
// the target; removed or renamed files are left in place since stored
// documents are never evicted. Changes to the manifest file reload the
// manifest after a short debounce and preload the documents it newly lists
// with preload.
//
// New directories created at runtime are automatically added to the watch
// list.
func Watch(ctx context.Context, target Target, site *storage.FS, manifestName string, preload docstore.PreloadOptions, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	root := site.Root()
	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root))

	notify := func(kind, path string) {
		if cb != nil {
			cb(kind, path)
		}
	}

	var manifestTimer *time.Timer
	var manifestCh <-chan time.Time

	scheduleManifest := func() {
		if manifestTimer == nil {
			manifestTimer = time.NewTimer(manifestDebounce)
			manifestCh = manifestTimer.C
		} else {
			manifestTimer.Reset(manifestDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if manifestTimer != nil {
				manifestTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-manifestCh:
			m := target.LoadManifest(ctx)
			stats, err := target.Preload(ctx, preload)
			if err != nil {
				// Only cancellation fails a preload.
				continue
			}
			logger.Debug("watcher: manifest reloaded",
				slog.Int("entries", m.Len()),
				slog.Int("loaded", stats.Loaded),
				slog.Int("failed", stats.Failed))
			notify("manifest", manifestName)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			absPath := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(absPath); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, absPath); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", absPath),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", absPath))
					}
					refreshNewDir(ctx, target, site, absPath, logger, notify)
					continue
				}
			}

			rel, relErr := site.Rel(absPath)
			if relErr != nil {
				continue
			}

			if rel == manifestName {
				if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
					scheduleManifest()
				}
				continue
			}

			if !strings.HasSuffix(rel, ".md") {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				if err := target.Refresh(ctx, rel); err != nil {
					logger.Warn("watcher: refresh failed", slog.String("path", rel), slog.String("error", err.Error()))
					continue
				}
				kind := "updated"
				if ev.Op&fsnotify.Create != 0 {
					kind = "created"
				}
				logger.Debug("watcher: refreshed", slog.String("path", rel), slog.String("op", kind))
				notify(kind, rel)

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				logger.Debug("watcher: file gone, keeping stored copy", slog.String("path", rel))
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// refreshNewDir loads any .md files found in a newly created directory.
func refreshNewDir(ctx context.Context, target Target, site *storage.FS, dirPath string, logger *slog.Logger, notify EventCallback) {
	_ = filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".md") {
			return nil
		}
		rel, relErr := site.Rel(path)
		if relErr != nil {
			return nil
		}
		if err := target.Refresh(ctx, rel); err == nil {
			logger.Debug("watcher: refreshed from new dir", slog.String("path", rel))
			notify("created", rel)
		}
		return nil
	})
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return w.Add(path)
		}
		return nil
	})
}
