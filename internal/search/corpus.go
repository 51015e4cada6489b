package search

import orderedmap "github.com/wk8/go-ordered-map/v2"

// Corpus maps document paths to raw source text and iterates in insertion
// order. Overwriting a path keeps its original position.
type Corpus struct {
	docs *orderedmap.OrderedMap[string, string]
}

// NewCorpus returns an empty corpus.
func NewCorpus() *Corpus {
	return &Corpus{docs: orderedmap.New[string, string]()}
}

// CorpusOf builds a corpus from alternating path, text arguments. It is meant
// for tests and small fixtures.
func CorpusOf(pairs ...string) *Corpus {
	c := NewCorpus()
	for i := 0; i+1 < len(pairs); i += 2 {
		c.Set(pairs[i], pairs[i+1])
	}
	return c
}

// Set stores text under path.
func (c *Corpus) Set(path, text string) {
	c.docs.Set(path, text)
}

// Get returns the text stored under path.
func (c *Corpus) Get(path string) (string, bool) {
	return c.docs.Get(path)
}

// Len returns the number of documents.
func (c *Corpus) Len() int {
	return c.docs.Len()
}

// Paths returns every path in iteration order.
func (c *Corpus) Paths() []string {
	out := make([]string, 0, c.docs.Len())
	for p := c.docs.Oldest(); p != nil; p = p.Next() {
		out = append(out, p.Key)
	}
	return out
}

// Each calls fn for every document in order until fn returns false.
func (c *Corpus) Each(fn func(path, text string) bool) {
	for p := c.docs.Oldest(); p != nil; p = p.Next() {
		if !fn(p.Key, p.Value) {
			return
		}
	}
}
