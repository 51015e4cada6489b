// Package docstore keeps the raw source of every document fetched so far.
// It is the corpus the search engine runs over.
package docstore

import (
	"sync"

	"github.com/starford/folio/internal/search"
)

// Store maps canonical document paths to raw Markdown source. Entries are
// added by successful fetches only and are never evicted; a second write to
// the same path overwrites the text but keeps the original position.
type Store struct {
	mu     sync.RWMutex
	corpus *search.Corpus
}

// New returns an empty store.
func New() *Store {
	return &Store{corpus: search.NewCorpus()}
}

// Put stores source under path.
func (s *Store) Put(path, source string) {
	s.mu.Lock()
	s.corpus.Set(path, source)
	s.mu.Unlock()
}

// Get returns the source stored under path.
func (s *Store) Get(path string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus.Get(path)
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus.Len()
}

// Snapshot returns a copy of the corpus that is safe to search while other
// goroutines keep writing.
func (s *Store) Snapshot() *search.Corpus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := search.NewCorpus()
	s.corpus.Each(func(path, text string) bool {
		out.Set(path, text)
		return true
	})
	return out
}

// Search runs the search engine over a snapshot of the store.
func (s *Store) Search(query string) []search.Result {
	if !search.Searchable(query) {
		return nil
	}
	return search.Search(s.Snapshot(), query)
}
