package search

import (
	"html"
	"regexp"
	"strings"

	"github.com/starford/folio/internal/markdown"
)

const (
	markOpen  = `<mark class="search-highlight">`
	markClose = `</mark>`
)

// HighlightSnippet escapes a raw context string and wraps every
// case-insensitive occurrence of query in a mark element. Queries shorter
// than MinQueryLength return text unchanged.
func HighlightSnippet(text, query string) string {
	if !Searchable(query) {
		return text
	}
	return markRaw(text, compile(query))
}

// HighlightHTML wraps occurrences of query found in the text between a ">" and
// the next "<" of rendered HTML. Tags and attribute values are never touched,
// and neither is text before the first tag or after the last one.
func HighlightHTML(doc, query string) string {
	if !Searchable(query) {
		return doc
	}
	re := compile(query)

	var b strings.Builder
	b.Grow(len(doc))
	i := 0
	for {
		gt := strings.IndexByte(doc[i:], '>')
		if gt < 0 {
			break
		}
		textStart := i + gt + 1
		lt := strings.IndexByte(doc[textStart:], '<')
		if lt < 0 {
			break
		}
		textEnd := textStart + lt
		b.WriteString(doc[i:textStart])
		b.WriteString(markEscaped(doc[textStart:textEnd], re))
		i = textEnd
	}
	b.WriteString(doc[i:])
	return b.String()
}

// markEscaped highlights inside already-escaped text. Matching runs on the
// unescaped form so a query never splits an entity.
func markEscaped(segment string, re *regexp.Regexp) string {
	raw := html.UnescapeString(segment)
	if !re.MatchString(raw) {
		return segment
	}
	return markRaw(raw, re)
}

func markRaw(raw string, re *regexp.Regexp) string {
	locs := re.FindAllStringIndex(raw, -1)
	var b strings.Builder
	last := 0
	for _, loc := range locs {
		b.WriteString(markdown.EscapeHTML(raw[last:loc[0]]))
		b.WriteString(markOpen)
		b.WriteString(markdown.EscapeHTML(raw[loc[0]:loc[1]]))
		b.WriteString(markClose)
		last = loc[1]
	}
	b.WriteString(markdown.EscapeHTML(raw[last:]))
	return b.String()
}
