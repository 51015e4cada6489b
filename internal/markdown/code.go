package markdown

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	fencePlaceholderPrefix  = "FOLIOFENCE"
	inlinePlaceholderPrefix = "FOLIOCODE"
	placeholderSuffix       = "END"
)

var (
	fenceRe  = regexp.MustCompile("```(\\w*)\\n?([\\s\\S]*?)```")
	inlineRe = regexp.MustCompile("`([^`]+)`")

	fencePlaceholderRe  = regexp.MustCompile(fencePlaceholderPrefix + `(\d+)` + placeholderSuffix)
	inlinePlaceholderRe = regexp.MustCompile(inlinePlaceholderPrefix + `(\d+)` + placeholderSuffix)
)

// CodeBlock is a fenced block captured before escaping.
type CodeBlock struct {
	Lang string
	Body string
}

// Fences is the side table of captured fenced blocks, indexed by placeholder.
type Fences []CodeBlock

// InlineCodes is the side table of captured inline code spans.
type InlineCodes []string

// ExtractFences replaces every fenced block with a placeholder and returns the
// captured blocks. The newline after the opening fence is optional and the
// body is trimmed.
func ExtractFences(s string) (string, Fences) {
	var blocks Fences
	out := replaceSubmatchFunc(fenceRe, s, func(m []string) string {
		idx := len(blocks)
		blocks = append(blocks, CodeBlock{Lang: m[1], Body: strings.TrimSpace(m[2])})
		return fencePlaceholder(idx)
	})
	return out, blocks
}

// ExtractInlineCode replaces single-backtick spans with placeholders.
func ExtractInlineCode(s string) (string, InlineCodes) {
	var spans InlineCodes
	out := replaceSubmatchFunc(inlineRe, s, func(m []string) string {
		idx := len(spans)
		spans = append(spans, m[1])
		return inlinePlaceholder(idx)
	})
	return out, spans
}

// Restore swaps fence placeholders for escaped pre/code blocks. Placeholders
// with no matching entry are left as they are.
func (f Fences) Restore(s string) string {
	return replaceSubmatchFunc(fencePlaceholderRe, s, func(m []string) string {
		idx, err := strconv.Atoi(m[1])
		if err != nil || idx >= len(f) {
			return m[0]
		}
		b := f[idx]
		return fmt.Sprintf(`<pre><code class="language-%s">%s</code></pre>`, b.Lang, EscapeHTML(b.Body))
	})
}

// Restore swaps inline placeholders for escaped code elements.
func (c InlineCodes) Restore(s string) string {
	return replaceSubmatchFunc(inlinePlaceholderRe, s, func(m []string) string {
		idx, err := strconv.Atoi(m[1])
		if err != nil || idx >= len(c) {
			return m[0]
		}
		return "<code>" + EscapeHTML(c[idx]) + "</code>"
	})
}

func fencePlaceholder(i int) string {
	return fencePlaceholderPrefix + strconv.Itoa(i) + placeholderSuffix
}

func inlinePlaceholder(i int) string {
	return inlinePlaceholderPrefix + strconv.Itoa(i) + placeholderSuffix
}

// replaceSubmatchFunc is ReplaceAllStringFunc with access to capture groups.
func replaceSubmatchFunc(re *regexp.Regexp, s string, fn func(groups []string) string) string {
	idx := re.FindAllStringSubmatchIndex(s, -1)
	if len(idx) == 0 {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	last := 0
	for _, loc := range idx {
		groups := make([]string, len(loc)/2)
		for g := range groups {
			if loc[2*g] >= 0 {
				groups[g] = s[loc[2*g]:loc[2*g+1]]
			}
		}
		b.WriteString(s[last:loc[0]])
		b.WriteString(fn(groups))
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}
