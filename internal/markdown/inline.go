package markdown

import (
	"fmt"
	"regexp"
	"strings"
)

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// headerRes runs from the deepest level up so "###### x" is not eaten by h1.
var headerRes = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, 6)
	for level := 6; level >= 1; level-- {
		out = append(out, regexp.MustCompile(fmt.Sprintf(`(?m)^#{%d} (.+)$`, level)))
	}
	return out
}()

// Emphasis substitutions in precedence order: triple, double, single.
var emphasisRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`\*\*\*(.+?)\*\*\*`), "<strong><em>${1}</em></strong>"},
	{regexp.MustCompile(`___(.+?)___`), "<strong><em>${1}</em></strong>"},
	{regexp.MustCompile(`\*\*(.+?)\*\*`), "<strong>${1}</strong>"},
	{regexp.MustCompile(`__(.+?)__`), "<strong>${1}</strong>"},
	{regexp.MustCompile(`\*(.+?)\*`), "<em>${1}</em>"},
	{regexp.MustCompile(`_(.+?)_`), "<em>${1}</em>"},
}

var (
	strikeRe = regexp.MustCompile(`~~(.+?)~~`)
	imageRe  = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)`)
	linkRe   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	schemeRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*:`)
)

// linkSchemes are the URL schemes a link may carry. Targets without a scheme
// are relative and always allowed.
var linkSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"mailto": true,
}

// EscapeHTML escapes the five HTML-significant characters. Single quotes
// become &#039; and double quotes &quot;.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// Headers turns "#"-prefixed lines into h1..h6.
func Headers(s string) string {
	for i, re := range headerRes {
		level := 6 - i
		s = re.ReplaceAllString(s, fmt.Sprintf("<h%d>${1}</h%d>", level, level))
	}
	return s
}

// Emphasis applies the bold-italic, bold and italic substitutions as
// independent global passes. Markers are matched textually, so overlapping
// spans like "*a **b** c*" nest by position rather than by meaning.
func Emphasis(s string) string {
	for _, r := range emphasisRules {
		s = r.re.ReplaceAllString(s, r.repl)
	}
	return s
}

// Strikethrough turns ~~x~~ into a del element.
func Strikethrough(s string) string {
	return strikeRe.ReplaceAllString(s, "<del>${1}</del>")
}

// Images turns ![alt](src) into img elements. Sources that are not absolute
// http(s) URLs are resolved against dir.
func Images(s, dir, prefix string) string {
	return replaceSubmatchFunc(imageRe, s, func(m []string) string {
		alt, src := m[1], m[2]
		if !isAbsoluteURL(src) {
			src = ResolvePath(dir, src, prefix)
		}
		return fmt.Sprintf(`<img src="%s" alt="%s">`, src, alt)
	})
}

// Links turns [text](href) into anchors. Relative targets ending in .md are
// resolved against dir and flagged with data-internal so the host can route
// them; everything else opens in a new context. Targets with a scheme other
// than http, https or mailto render as their text alone.
func Links(s, dir, prefix string) string {
	return replaceSubmatchFunc(linkRe, s, func(m []string) string {
		text, href := m[1], m[2]
		if !allowedTarget(href) {
			return text
		}
		if strings.HasSuffix(href, ".md") && !isAbsoluteURL(href) {
			return fmt.Sprintf(`<a href="%s" data-internal="true">%s</a>`, ResolvePath(dir, href, prefix), text)
		}
		return fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener noreferrer">%s</a>`, href, text)
	})
}

func allowedTarget(href string) bool {
	scheme := schemeRe.FindString(strings.TrimSpace(href))
	if scheme == "" {
		return true
	}
	return linkSchemes[strings.ToLower(strings.TrimSuffix(scheme, ":"))]
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
