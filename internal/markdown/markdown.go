// Package markdown renders the documentation Markdown subset to HTML.
//
// Rendering is a fixed pipeline of string rewrites. Order matters: code is
// swapped out for opaque placeholders before escaping, every later stage works
// on escaped text, and the placeholders are restored last so code bodies never
// pass through the block or inline rewrites.
package markdown

import "strings"

// DefaultDocsPrefix is the documents-root prefix that marks a link or image
// target as already resolved.
const DefaultDocsPrefix = "docs/"

// Options tunes the renderer. The zero value uses DefaultDocsPrefix.
type Options struct {
	DocsPrefix string
}

// lineEndings folds CRLF and lone CR to LF so the line-anchored stages see
// one terminator.
var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

func (o Options) prefix() string {
	if o.DocsPrefix == "" {
		return DefaultDocsPrefix
	}
	return o.DocsPrefix
}

// Render converts source to HTML using the default options. location is the
// path of the document being rendered and anchors relative links and images.
func Render(source, location string) string {
	return Options{}.Render(source, location)
}

// Render converts source to HTML. It never fails; malformed Markdown produces
// best-effort output.
func (o Options) Render(source, location string) string {
	dir := Dir(location)
	prefix := o.prefix()

	html, fences := ExtractFences(lineEndings.Replace(source))
	html, inlines := ExtractInlineCode(html)
	html = EscapeHTML(html)

	html = Headers(html)
	html = Emphasis(html)
	html = Strikethrough(html)
	html = Images(html, dir, prefix)
	html = Links(html, dir, prefix)
	html = Blockquotes(html)
	html = HorizontalRules(html)
	html = UnorderedItems(html)
	html = OrderedItems(html)

	html = WrapLists(html)
	html = Tables(html)
	html = Paragraphs(html)

	html = inlines.Restore(html)
	return fences.Restore(html)
}
