// Package search implements case-insensitive substring search over an
// in-memory corpus, with per-line context windows and highlighting.
package search

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// MinQueryLength is the shortest query, in characters, that runs a search.
	MinQueryLength = 2
	// ContextChars is the number of characters kept on each side of a match.
	ContextChars = 40
	// MaxMatchesPerDocument caps the matches recorded for one document.
	MaxMatchesPerDocument = 5

	ellipsis = "..."
)

// Match is one occurrence of the query inside a document.
type Match struct {
	LineNumber  int    `json:"line_number"`
	Context     string `json:"context"`
	MatchStart  int    `json:"match_start"`
	MatchLength int    `json:"match_length"`
}

// Result groups the matches found in one document.
type Result struct {
	Path     string  `json:"path"`
	FileName string  `json:"file_name"`
	Matches  []Match `json:"matches"`
}

// Searchable reports whether query is long enough to run a search.
func Searchable(query string) bool {
	return utf8.RuneCountInString(query) >= MinQueryLength
}

// Search returns a result for every document in corpus containing query,
// case-insensitively, in corpus order. Short queries return nil.
func Search(corpus *Corpus, query string) []Result {
	if corpus == nil || !Searchable(query) {
		return nil
	}
	re := compile(query)

	var out []Result
	corpus.Each(func(path, text string) bool {
		if !re.MatchString(text) {
			return true
		}
		out = append(out, Result{
			Path:     path,
			FileName: FileName(path),
			Matches:  findMatches(text, re),
		})
		return true
	})
	return out
}

// FindMatches scans text line by line for query and returns at most
// MaxMatchesPerDocument matches in textual order.
func FindMatches(text, query string) []Match {
	if !Searchable(query) {
		return []Match{}
	}
	return findMatches(text, compile(query))
}

func findMatches(text string, re *regexp.Regexp) []Match {
	matches := []Match{}
	for i, line := range strings.Split(text, "\n") {
		var runes []rune
		pos := 0
		for pos <= len(line) {
			loc := re.FindStringIndex(line[pos:])
			if loc == nil {
				break
			}
			start, end := pos+loc[0], pos+loc[1]
			if runes == nil {
				runes = []rune(line)
			}
			matches = append(matches, contextMatch(runes, line, i+1, start, end))
			if len(matches) == MaxMatchesPerDocument {
				return matches
			}
			// The next scan starts one character after this match began, so
			// overlapping occurrences are reported too.
			_, size := utf8.DecodeRuneInString(line[start:])
			pos = start + size
		}
	}
	return matches
}

// contextMatch builds the context window for the byte range [start, end) of
// line. Offsets in the returned match are counted in characters.
func contextMatch(runes []rune, line string, lineNumber, start, end int) Match {
	matchStart := utf8.RuneCountInString(line[:start])
	matchLen := utf8.RuneCountInString(line[start:end])

	from := max(0, matchStart-ContextChars)
	to := min(len(runes), matchStart+matchLen+ContextChars)

	context := string(runes[from:to])
	offset := matchStart - from
	if from > 0 {
		context = ellipsis + context
		offset += len(ellipsis)
	}
	if to < len(runes) {
		context += ellipsis
	}

	return Match{
		LineNumber:  lineNumber,
		Context:     context,
		MatchStart:  offset,
		MatchLength: matchLen,
	}
}

// FileName returns the last path segment without its ".md" suffix.
func FileName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	return strings.TrimSuffix(path, ".md")
}

func compile(query string) *regexp.Regexp {
	return regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))
}
