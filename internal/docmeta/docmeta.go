// Package docmeta extracts display metadata (title, frontmatter, heading
// outline) from Markdown documents. It never changes what gets rendered.
package docmeta

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// Heading is one entry of a document outline.
type Heading struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	ID    string `json:"id"`
}

// Meta holds the output of parsing a Markdown document.
type Meta struct {
	Frontmatter map[string]any `json:"frontmatter,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Date        string         `json:"date,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Outline     []Heading      `json:"outline"`
}

var md = goldmark.New()

// Parse extracts frontmatter, title and outline from raw Markdown. It does
// not fail: invalid frontmatter is ignored.
func Parse(source string) Meta {
	fm, body := splitFrontmatter([]byte(source))
	outline := Outline(body)

	return Meta{
		Frontmatter: fm,
		Title:       deriveTitle(fm, outline),
		Description: stringField(fm, "description"),
		Date:        dateField(fm),
		Tags:        tags(fm),
		Outline:     outline,
	}
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]any, []byte) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, data
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, data
	}

	block := rest[:idx]
	body := bytes.TrimLeft(rest[idx+1+len(delim):], "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(block, &fm); err != nil {
		return nil, data
	}
	return fm, body
}

// Outline returns every ATX or setext heading in document order.
func Outline(source []byte) []Heading {
	doc := md.Parser().Parse(text.NewReader(source))

	out := []Heading{}
	used := map[string]int{}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		plain := strings.TrimSpace(inlineText(h, source))
		out = append(out, Heading{Level: h.Level, Text: plain, ID: uniqueSlug(plain, used)})
		return ast.WalkSkipChildren, nil
	})
	return out
}

func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(v.Value)
		default:
			b.WriteString(inlineText(c, source))
		}
	}
	return b.String()
}

func uniqueSlug(s string, used map[string]int) string {
	base := Slug(s)
	n := used[base]
	used[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, n)
}

// Slug lowercases s, keeps letters, digits, hyphens and underscores, and
// turns whitespace runs into single hyphens.
func Slug(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-':
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
		case unicode.IsSpace(r):
			pendingDash = true
		}
	}
	return b.String()
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// level-1 heading, otherwise empty string.
func deriveTitle(fm map[string]any, outline []Heading) string {
	if s := stringField(fm, "title"); s != "" {
		return s
	}
	for _, h := range outline {
		if h.Level == 1 && h.Text != "" {
			return h.Text
		}
	}
	return ""
}

func stringField(fm map[string]any, key string) string {
	if s, ok := fm[key].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

// dateField accepts both quoted strings and YAML timestamps.
func dateField(fm map[string]any) string {
	switch v := fm["date"].(type) {
	case string:
		return strings.TrimSpace(v)
	case interface{ Format(string) string }:
		return v.Format("2006-01-02")
	}
	return ""
}

func tags(fm map[string]any) []string {
	raw, ok := fm["tags"].([]any)
	if !ok {
		return nil
	}
	seen := make(map[string]struct{}, len(raw))
	var out []string
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
