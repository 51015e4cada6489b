package docstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/folio/internal/manifest"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeFetcher struct {
	docs     map[string]string
	delay    map[string]time.Duration
	inFlight atomic.Int32
	peak     atomic.Int32
	calls    atomic.Int32
}

func (f *fakeFetcher) Read(ctx context.Context, path string) (string, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if d := f.delay[path]; d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	text, ok := f.docs[path]
	if !ok {
		return "", fmt.Errorf("fetch %s: %w", path, errors.New("404"))
	}
	return text, nil
}

func sampleManifest() *manifest.Folder {
	guide := manifest.Empty().
		Add("Setup.md", manifest.File("docs/guide/setup.md", "")).
		Add("Broken.md", manifest.File("docs/guide/broken.md", ""))
	return manifest.Empty().
		Add("Welcome.md", manifest.File("docs/welcome.md", "")).
		Add("Guide", guide).
		Add("Changelog.md", manifest.File("docs/changelog.md", ""))
}

func TestPutGet(t *testing.T) {
	s := New()
	s.Put("docs/a.md", "one")
	s.Put("docs/b.md", "two")
	s.Put("docs/a.md", "uno")

	got, ok := s.Get("docs/a.md")
	require.True(t, ok)
	assert.Equal(t, "uno", got)
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"docs/a.md", "docs/b.md"}, s.Snapshot().Paths())

	_, ok = s.Get("docs/missing.md")
	assert.False(t, ok)
}

func TestSnapshotIsolated(t *testing.T) {
	s := New()
	s.Put("docs/a.md", "one")
	snap := s.Snapshot()
	s.Put("docs/b.md", "two")
	assert.Equal(t, 1, snap.Len())
	assert.Equal(t, 2, s.Len())
}

func TestSearchShortQuery(t *testing.T) {
	s := New()
	s.Put("docs/a.md", "abc")
	assert.Nil(t, s.Search("a"))
	assert.Len(t, s.Search("ab"), 1)
}

func TestPreload_ManifestOrder(t *testing.T) {
	f := &fakeFetcher{
		docs: map[string]string{
			"docs/welcome.md":     "welcome",
			"docs/guide/setup.md": "setup",
			"docs/changelog.md":   "changelog",
		},
		// The first document finishes last.
		delay: map[string]time.Duration{"docs/welcome.md": 30 * time.Millisecond},
	}
	s := New()

	stats, err := s.Preload(context.Background(), sampleManifest(), f, PreloadOptions{Concurrency: 4}, discard)
	require.NoError(t, err)

	assert.Equal(t, PreloadStats{Total: 4, Loaded: 3, Failed: 1}, stats)
	assert.Equal(t, []string{"docs/welcome.md", "docs/guide/setup.md", "docs/changelog.md"}, s.Snapshot().Paths())

	_, ok := s.Get("docs/guide/broken.md")
	assert.False(t, ok, "failed fetch must leave no entry")
}

func TestPreload_BoundedConcurrency(t *testing.T) {
	root := manifest.Empty()
	docs := map[string]string{}
	delay := map[string]time.Duration{}
	for i := range 12 {
		p := fmt.Sprintf("docs/%02d.md", i)
		root.Add(fmt.Sprintf("%02d.md", i), manifest.File(p, ""))
		docs[p] = p
		delay[p] = 5 * time.Millisecond
	}
	f := &fakeFetcher{docs: docs, delay: delay}

	stats, err := New().Preload(context.Background(), root, f, PreloadOptions{Concurrency: 3}, discard)
	require.NoError(t, err)
	assert.Equal(t, 12, stats.Loaded)
	assert.LessOrEqual(t, f.peak.Load(), int32(3))
}

func TestPreload_SkipsStoredPaths(t *testing.T) {
	f := &fakeFetcher{docs: map[string]string{
		"docs/welcome.md":     "fresh",
		"docs/guide/setup.md": "setup",
		"docs/changelog.md":   "changelog",
	}}
	s := New()
	s.Put("docs/welcome.md", "already open")

	stats, err := s.Preload(context.Background(), sampleManifest(), f, PreloadOptions{}, discard)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Loaded)
	assert.Equal(t, int32(3), f.calls.Load())

	got, _ := s.Get("docs/welcome.md")
	assert.Equal(t, "already open", got)
}

func TestPreload_RateLimited(t *testing.T) {
	f := &fakeFetcher{docs: map[string]string{
		"docs/welcome.md":     "a",
		"docs/guide/setup.md": "b",
		"docs/changelog.md":   "c",
	}}
	start := time.Now()
	_, err := New().Preload(context.Background(), sampleManifest(), f, PreloadOptions{RPS: 20}, discard)
	require.NoError(t, err)
	// Four fetches at 20/s with a burst of one need at least three intervals.
	assert.GreaterOrEqual(t, time.Since(start), 140*time.Millisecond)
}

func TestPreload_Cancelled(t *testing.T) {
	f := &fakeFetcher{
		docs:  map[string]string{"docs/welcome.md": "a"},
		delay: map[string]time.Duration{"docs/welcome.md": time.Second},
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	root := manifest.Empty().Add("Welcome.md", manifest.File("docs/welcome.md", ""))
	s := New()
	_, err := s.Preload(ctx, root, f, PreloadOptions{}, discard)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, s.Len())
}

func TestConcurrentAccess(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := range 50 {
				s.Put(fmt.Sprintf("docs/%d-%d.md", i, j), "needle")
			}
		}()
		go func() {
			defer wg.Done()
			for range 50 {
				_ = s.Search("needle")
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 400, s.Len())
}
