package viewer

import (
	"context"
	"fmt"
	"sync"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/manifest"
	"github.com/starford/folio/internal/search"
)

// Tab is a sidebar tab.
type Tab string

const (
	TabDocs    Tab = "docs"
	TabRecent  Tab = "recent"
	TabHistory Tab = "history"
)

// Valid reports whether t names a known tab.
func (t Tab) Valid() bool {
	switch t {
	case TabDocs, TabRecent, TabHistory:
		return true
	}
	return false
}

// State is a snapshot of a Session.
type State struct {
	Current string `json:"current,omitempty"`
	Query   string `json:"query,omitempty"`
	Tab     Tab    `json:"tab"`
	// Visible is nil when every document is visible.
	Visible []string `json:"visible"`
}

// Session holds the state of one reader: the open document, the active
// query, the active tab and the tree visibility filter.
type Session struct {
	svc *Service

	mu      sync.Mutex
	current string
	query   string
	tab     Tab
	visible map[string]struct{}
}

// NewSession starts a session on the docs tab with nothing open.
func NewSession(svc *Service) *Session {
	return &Session{svc: svc, tab: TabDocs}
}

// SetQuery updates the active query. A query shorter than the minimum resets
// the tree visibility and returns nil; otherwise the search view is returned
// and the tree is restricted to matching documents.
func (s *Session) SetQuery(raw string) *SearchView {
	q := NormalizeQuery(raw)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = q
	if !search.Searchable(q) {
		s.visible = nil
		return nil
	}

	view := s.svc.Search(q)
	s.visible = make(map[string]struct{}, len(view.Visible))
	for _, p := range view.Visible {
		s.visible[p] = struct{}{}
	}
	return view
}

// Open loads path from the tree or a list, without highlighting.
func (s *Session) Open(ctx context.Context, path string) (*Page, error) {
	return s.open(ctx, path, "")
}

// OpenResult loads a search result with the active query highlighted.
func (s *Session) OpenResult(ctx context.Context, path string) (*Page, error) {
	return s.open(ctx, path, s.Query())
}

// FollowLink loads the target of an internal link, keeping the active query
// highlighted.
func (s *Session) FollowLink(ctx context.Context, href string) (*Page, error) {
	return s.open(ctx, href, s.Query())
}

// Restore reopens a previously open path (for example from a URL fragment).
// Paths that are neither stored nor in the manifest are rejected.
func (s *Session) Restore(ctx context.Context, path string) (*Page, error) {
	if !s.svc.Known(path) {
		return nil, fmt.Errorf("viewer: restore %s: %w", path, apperr.ErrNotFound)
	}
	return s.Open(ctx, path)
}

func (s *Session) open(ctx context.Context, path, query string) (*Page, error) {
	page, err := s.svc.Open(ctx, path, query)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.current = path
	s.mu.Unlock()
	return page, nil
}

// SwitchTab activates tab.
func (s *Session) SwitchTab(tab Tab) error {
	if !tab.Valid() {
		return fmt.Errorf("viewer: tab %q: %w", tab, apperr.ErrInvalidInput)
	}
	s.mu.Lock()
	s.tab = tab
	s.mu.Unlock()
	return nil
}

// Query returns the active query.
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Tree returns the navigation tree under the current visibility filter.
func (s *Session) Tree() []manifest.TreeNode {
	s.mu.Lock()
	visible := s.visible
	s.mu.Unlock()

	if visible == nil {
		return s.svc.Tree()
	}
	return manifest.Filter(s.svc.Manifest(), func(p string) bool {
		_, ok := visible[p]
		return ok
	})
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{Current: s.current, Query: s.query, Tab: s.tab}
	if s.visible != nil {
		st.Visible = make([]string, 0, len(s.visible))
		manifest.Walk(s.svc.Manifest(), func(_ []string, _ string, f *manifest.FileEntry) {
			if _, ok := s.visible[f.Path]; ok {
				st.Visible = append(st.Visible, f.Path)
			}
		})
	}
	return st
}
