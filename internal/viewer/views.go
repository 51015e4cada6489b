package viewer

import (
	"context"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/starford/folio/internal/manifest"
	"github.com/starford/folio/internal/search"
)

// DisplayDateLayout is the layout used for article dates.
const DisplayDateLayout = "Jan 2, 2006"

// Snippet is one match with its context highlighted for display.
type Snippet struct {
	search.Match
	HTML string `json:"html"`
}

// Hit is one search result with display snippets.
type Hit struct {
	Path     string    `json:"path"`
	FileName string    `json:"file_name"`
	Snippets []Snippet `json:"snippets"`
}

// SearchView is what the reader sees for a query.
type SearchView struct {
	Query        string   `json:"query"`
	Hits         []Hit    `json:"hits"`
	TotalMatches int      `json:"total_matches"`
	Documents    int      `json:"documents"`
	Visible      []string `json:"visible"`
}

// NormalizeQuery trims and lowercases a raw search box value.
func NormalizeQuery(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Search runs query over the store. A query shorter than the minimum yields
// an empty view.
func (s *Service) Search(query string) *SearchView {
	query = NormalizeQuery(query)
	view := &SearchView{Query: query, Hits: []Hit{}, Visible: []string{}}
	if !search.Searchable(query) {
		return view
	}

	for _, r := range s.store.Search(query) {
		hit := Hit{Path: r.Path, FileName: r.FileName, Snippets: make([]Snippet, 0, len(r.Matches))}
		for _, m := range r.Matches {
			hit.Snippets = append(hit.Snippets, Snippet{Match: m, HTML: search.HighlightSnippet(m.Context, query)})
		}
		view.TotalMatches += len(r.Matches)
		view.Hits = append(view.Hits, hit)
		view.Visible = append(view.Visible, r.Path)
	}
	view.Documents = len(view.Hits)
	return view
}

// Article is one entry of the recent-articles list.
type Article struct {
	Path        string `json:"path"`
	FileName    string `json:"file_name"`
	Folder      string `json:"folder"`
	Date        string `json:"date"`
	DisplayDate string `json:"display_date"`
}

// Recent lists every manifest document, most recent date first.
func (s *Service) Recent() []Article {
	files := manifest.ByDate(s.Manifest())
	out := make([]Article, 0, len(files))
	for _, f := range files {
		folder := ""
		if i := strings.LastIndex(f.Path, "/"); i >= 0 {
			folder = f.Path[:i]
		}
		out = append(out, Article{
			Path:        f.Path,
			FileName:    search.FileName(f.Path),
			Folder:      folder,
			Date:        f.Date,
			DisplayDate: FormatDate(f.Date),
		})
	}
	return out
}

// FormatDate renders an ISO date for display. Unparseable input is returned
// unchanged.
func FormatDate(iso string) string {
	if iso == "" {
		return ""
	}
	t, err := time.Parse(time.DateOnly, iso)
	if err != nil {
		return iso
	}
	return t.Format(DisplayDateLayout)
}

// Visit is one entry of the reading history.
type Visit struct {
	Path      string `json:"path"`
	FileName  string `json:"file_name"`
	Timestamp int64  `json:"timestamp"`
	Ago       string `json:"ago"`
}

// History returns the recently-read list with relative time labels.
func (s *Service) History(ctx context.Context) ([]Visit, error) {
	if s.history == nil {
		return []Visit{}, nil
	}
	records, err := s.history.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]Visit, 0, len(records))
	for _, r := range records {
		out = append(out, Visit{
			Path:      r.Path,
			FileName:  search.FileName(r.Path),
			Timestamp: r.Timestamp,
			Ago:       TimeAgo(r.Time(), now),
		})
	}
	return out, nil
}

// TimeAgo labels t relative to now: "Just now" under a minute, a relative
// phrase under a week, the date after that.
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < 7*24*time.Hour:
		return humanize.RelTime(t, now, "ago", "from now")
	default:
		return t.Format(DisplayDateLayout)
	}
}

// Tree returns the full navigation tree.
func (s *Service) Tree() []manifest.TreeNode {
	return manifest.Tree(s.Manifest())
}

// FilteredTree returns the navigation tree restricted to documents matching
// query. A short query returns the full tree.
func (s *Service) FilteredTree(query string) []manifest.TreeNode {
	view := s.Search(query)
	if !search.Searchable(view.Query) {
		return s.Tree()
	}
	return manifest.Filter(s.Manifest(), visibleSet(view.Visible))
}

func visibleSet(paths []string) func(string) bool {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[p] = struct{}{}
	}
	return func(p string) bool {
		_, ok := set[p]
		return ok
	}
}
