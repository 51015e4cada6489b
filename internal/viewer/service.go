// Package viewer coordinates the document provider, the renderer, the search
// engine and the preference store behind the operations a reader performs.
package viewer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/docmeta"
	"github.com/starford/folio/internal/docstore"
	"github.com/starford/folio/internal/manifest"
	"github.com/starford/folio/internal/markdown"
	"github.com/starford/folio/internal/prefs"
	"github.com/starford/folio/internal/search"
	"github.com/starford/folio/internal/storage"
)

// DefaultManifestName is the manifest file read from the site root.
const DefaultManifestName = "docs.json"

// Page is a rendered document.
type Page struct {
	Path     string            `json:"path"`
	FileName string            `json:"file_name"`
	Title    string            `json:"title"`
	Date     string            `json:"date,omitempty"`
	Query    string            `json:"query,omitempty"`
	HTML     string            `json:"html"`
	Outline  []docmeta.Heading `json:"outline"`
	Tags     []string          `json:"tags,omitempty"`
	Checksum string            `json:"checksum"`
}

// Service coordinates provider, store, renderer and preferences.
type Service struct {
	provider     storage.Provider
	store        *docstore.Store
	history      *prefs.History
	renderer     markdown.Options
	manifestName string
	logger       *slog.Logger
	now          func() time.Time

	mu   sync.RWMutex
	root *manifest.Folder
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.logger = l
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithRenderer sets the renderer options (documents-root prefix).
func WithRenderer(o markdown.Options) Option {
	return func(s *Service) {
		s.renderer = o
	}
}

// WithManifestName sets the manifest file name. A .yaml or .yml suffix
// switches the decoder to YAML.
func WithManifestName(name string) Option {
	return func(s *Service) {
		s.manifestName = name
	}
}

// NewService creates a viewer service. history may be nil, in which case
// nothing is recorded.
func NewService(provider storage.Provider, store *docstore.Store, history *prefs.History, opts ...Option) *Service {
	s := &Service{
		provider:     provider,
		store:        store,
		history:      history,
		manifestName: DefaultManifestName,
		logger:       slog.Default(),
		now:          time.Now,
		root:         manifest.Empty(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the document store.
func (s *Service) Store() *docstore.Store {
	return s.store
}

// Provider returns the document provider.
func (s *Service) Provider() storage.Provider {
	return s.provider
}

// LoadManifest fetches and parses the manifest. A missing or invalid
// manifest yields an empty tree.
func (s *Service) LoadManifest(ctx context.Context) *manifest.Folder {
	root := manifest.Load(ctx, s.provider, s.manifestName, s.logger)
	s.SetManifest(root)
	return root
}

// SetManifest replaces the current manifest.
func (s *Service) SetManifest(root *manifest.Folder) {
	if root == nil {
		root = manifest.Empty()
	}
	s.mu.Lock()
	s.root = root
	s.mu.Unlock()
}

// Manifest returns the current manifest.
func (s *Service) Manifest() *manifest.Folder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root
}

// Preload fetches every manifest document into the store.
func (s *Service) Preload(ctx context.Context, opts docstore.PreloadOptions) (docstore.PreloadStats, error) {
	return s.store.Preload(ctx, s.Manifest(), s.provider, opts, s.logger)
}

// Known reports whether path is a manifest document or already stored.
func (s *Service) Known(path string) bool {
	if _, ok := s.store.Get(path); ok {
		return true
	}
	return manifest.Contains(s.Manifest(), path)
}

// Open fetches path, renders it and, when query is searchable, highlights
// the query in the rendered HTML. The source is stored and the path is
// recorded as recently read. A failed fetch returns apperr.ErrNotFound and
// leaves the store untouched.
func (s *Service) Open(ctx context.Context, path, query string) (*Page, error) {
	source, err := s.provider.Read(ctx, path)
	if err != nil {
		s.logger.Warn("viewer: open failed", slog.String("path", path), slog.String("error", err.Error()))
		return nil, fmt.Errorf("viewer: open %s: %w", path, apperr.ErrNotFound)
	}

	html := s.renderer.Render(source, path)
	if search.Searchable(query) {
		html = search.HighlightHTML(html, query)
	} else {
		query = ""
	}

	s.store.Put(path, source)
	if s.history != nil {
		if err := s.history.Add(ctx, path, s.now()); err != nil {
			s.logger.Warn("viewer: record history", slog.String("path", path), slog.String("error", err.Error()))
		}
	}

	meta := docmeta.Parse(source)
	title := meta.Title
	if title == "" {
		title = search.FileName(path)
	}
	date := meta.Date
	if date == "" {
		date = s.manifestDate(path)
	}

	return &Page{
		Path:     path,
		FileName: search.FileName(path),
		Title:    title,
		Date:     date,
		Query:    query,
		HTML:     html,
		Outline:  meta.Outline,
		Tags:     meta.Tags,
		Checksum: checksum.String(source),
	}, nil
}

// Source returns the raw Markdown for path, from the store when present.
func (s *Service) Source(ctx context.Context, path string) (string, error) {
	if text, ok := s.store.Get(path); ok {
		return text, nil
	}
	text, err := s.provider.Read(ctx, path)
	if err != nil {
		return "", fmt.Errorf("viewer: source %s: %w", path, apperr.ErrNotFound)
	}
	return text, nil
}

// Refresh re-reads path into the store without rendering it or touching
// the reading history.
func (s *Service) Refresh(ctx context.Context, path string) error {
	text, err := s.provider.Read(ctx, path)
	if err != nil {
		return fmt.Errorf("viewer: refresh %s: %w", path, err)
	}
	s.store.Put(path, text)
	return nil
}

func (s *Service) manifestDate(path string) string {
	date := ""
	manifest.Walk(s.Manifest(), func(_ []string, _ string, f *manifest.FileEntry) {
		if date == "" && f.Path == path {
			date = f.Date
		}
	})
	return date
}
