package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/starford/folio/internal/docstore"
	"github.com/starford/folio/internal/manifest"
	"github.com/starford/folio/internal/storage"
	"github.com/starford/folio/internal/testutil"
)

type fakeTarget struct {
	site *storage.FS

	mu        sync.Mutex
	docs      map[string]string
	root      *manifest.Folder
	manifests int
}

func (f *fakeTarget) Refresh(ctx context.Context, path string) error {
	text, err := f.site.Read(ctx, path)
	if err != nil {
		return err
	}
	f.mu.Lock()
	f.docs[path] = text
	f.mu.Unlock()
	return nil
}

func (f *fakeTarget) LoadManifest(ctx context.Context) *manifest.Folder {
	root := manifest.Load(ctx, f.site, "docs.json", slog.New(slog.NewTextHandler(io.Discard, nil)))
	f.mu.Lock()
	f.manifests++
	f.root = root
	f.mu.Unlock()
	return root
}

// Preload reads every manifest path that is not stored yet.
func (f *fakeTarget) Preload(ctx context.Context, _ docstore.PreloadOptions) (docstore.PreloadStats, error) {
	f.mu.Lock()
	paths := manifest.Paths(f.root)
	f.mu.Unlock()

	stats := docstore.PreloadStats{Total: len(paths)}
	for _, p := range paths {
		if _, ok := f.doc(p); ok {
			continue
		}
		if err := f.Refresh(ctx, p); err != nil {
			stats.Failed++
			continue
		}
		stats.Loaded++
	}
	return stats, nil
}

func (f *fakeTarget) doc(path string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.docs[path]
	return v, ok
}

func (f *fakeTarget) manifestLoads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.manifests
}

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(kind, path string) {
	r.mu.Lock()
	r.events = append(r.events, kind+":"+path)
	r.mu.Unlock()
}

func (r *recorder) has(e string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, got := range r.events {
		if got == e {
			return true
		}
	}
	return false
}

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func startWatcher(t *testing.T, files map[string]string) (string, *fakeTarget, *recorder) {
	t.Helper()
	dir, site := testutil.TestSite(t, files)
	target := &fakeTarget{site: site, docs: map[string]string{}}
	rec := &recorder{}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = Watch(ctx, target, site, "docs.json", docstore.PreloadOptions{}, logger, rec.record)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	time.Sleep(100 * time.Millisecond)
	return dir, target, rec
}

func TestWatcher_WriteRefreshes(t *testing.T) {
	dir, target, rec := startWatcher(t, map[string]string{"docs/a.md": "# Old"})

	_ = os.WriteFile(filepath.Join(dir, "docs", "a.md"), []byte("# New"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		text, ok := target.doc("docs/a.md")
		return ok && text == "# New"
	}, "written file not refreshed")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("updated:docs/a.md") || rec.has("created:docs/a.md")
	}, "expected callback for docs/a.md")
}

func TestWatcher_NewDirWatched(t *testing.T) {
	dir, target, rec := startWatcher(t, map[string]string{"docs/a.md": "a"})

	sub := filepath.Join(dir, "docs", "guide")
	_ = os.MkdirAll(sub, 0o755)
	time.Sleep(100 * time.Millisecond)
	_ = os.WriteFile(filepath.Join(sub, "deep.md"), []byte("# Deep"), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, ok := target.doc("docs/guide/deep.md")
		return ok
	}, "file in new subdir not refreshed")
	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("created:docs/guide/deep.md") || rec.has("updated:docs/guide/deep.md")
	}, "expected callback for new subdir file")
}

func TestWatcher_IgnoresNonMarkdown(t *testing.T) {
	dir, target, _ := startWatcher(t, map[string]string{"docs/a.md": "a"})

	_ = os.WriteFile(filepath.Join(dir, "docs", "notes.txt"), []byte("x"), 0o644)
	time.Sleep(300 * time.Millisecond)

	if _, ok := target.doc("docs/notes.txt"); ok {
		t.Error("non-markdown file should be ignored")
	}
}

func TestWatcher_RemoveKeepsStored(t *testing.T) {
	dir, target, _ := startWatcher(t, map[string]string{"docs/a.md": "a"})

	path := filepath.Join(dir, "docs", "a.md")
	_ = os.WriteFile(path, []byte("b"), 0o644)
	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		text, _ := target.doc("docs/a.md")
		return text == "b"
	}, "precondition: file refreshed")

	_ = os.Remove(path)
	time.Sleep(300 * time.Millisecond)

	if text, ok := target.doc("docs/a.md"); !ok || text != "b" {
		t.Errorf("stored copy evicted: %q %v", text, ok)
	}
}

func TestWatcher_ManifestDebounced(t *testing.T) {
	dir, target, rec := startWatcher(t, map[string]string{"docs.json": "{}"})

	for i := 0; i < 3; i++ {
		_ = os.WriteFile(filepath.Join(dir, "docs.json"), []byte(`{"A.md":"docs/a.md"}`), 0o644)
	}

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("manifest:docs.json")
	}, "manifest reload not reported")

	time.Sleep(400 * time.Millisecond)
	if n := target.manifestLoads(); n != 1 {
		t.Errorf("manifest loads = %d, want 1", n)
	}
}

func TestWatcher_ManifestReloadPreloadsNewDocuments(t *testing.T) {
	dir, target, rec := startWatcher(t, map[string]string{
		"docs.json":      `{"A.md":"docs/a.md"}`,
		"docs/a.md":      "a",
		"docs/late.md":   "# Late",
		"docs/other.txt": "x",
	})

	_ = os.WriteFile(filepath.Join(dir, "docs.json"), []byte(`{"A.md":"docs/a.md","Late.md":"docs/late.md"}`), 0o644)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		return rec.has("manifest:docs.json")
	}, "manifest reload not reported")

	if text, ok := target.doc("docs/late.md"); !ok || text != "# Late" {
		t.Errorf("newly listed document not preloaded: %q %v", text, ok)
	}
	if _, ok := target.doc("docs/a.md"); !ok {
		t.Error("existing manifest document not preloaded")
	}
}
