package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const mark = `<mark class="search-highlight">`

func TestHighlightSnippet_EscapesThenMarks(t *testing.T) {
	got := HighlightSnippet("a <b> Foo", "foo")
	assert.Equal(t, "a &lt;b&gt; "+mark+"Foo</mark>", got)
}

func TestHighlightSnippet_ShortQueryNoop(t *testing.T) {
	assert.Equal(t, "a <b>", HighlightSnippet("a <b>", "a"))
}

func TestHighlightHTML_MarksEveryOccurrenceInText(t *testing.T) {
	got := HighlightHTML("<p>foo and FOO</p>", "foo")
	assert.Equal(t, "<p>"+mark+"foo</mark> and "+mark+"FOO</mark></p>", got)
}

func TestHighlightHTML_SkipsTagsAndAttributes(t *testing.T) {
	in := `<a href="foo.md" data-internal="true">foo</a>`
	got := HighlightHTML(in, "foo")
	assert.Equal(t, `<a href="foo.md" data-internal="true">`+mark+`foo</mark></a>`, got)
}

func TestHighlightHTML_DoesNotSplitEntities(t *testing.T) {
	in := "<p>a &amp; b</p>"
	assert.Equal(t, in, HighlightHTML(in, "amp"))
}

func TestHighlightHTML_MatchesEscapedText(t *testing.T) {
	got := HighlightHTML("<p>x &lt;tag&gt;</p>", "<tag")
	assert.Equal(t, "<p>x "+mark+"&lt;tag</mark>&gt;</p>", got)
}

func TestHighlightHTML_TextOutsideTagsUntouched(t *testing.T) {
	assert.Equal(t, "foo <b>bar</b> foo", HighlightHTML("foo <b>bar</b> foo", "foo"))
}

func TestHighlightHTML_ShortQueryNoop(t *testing.T) {
	assert.Equal(t, "<p>x</p>", HighlightHTML("<p>x</p>", "x"))
}
