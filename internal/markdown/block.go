package markdown

import (
	"regexp"
	"strings"
)

const (
	orderedMarker    = ` class="ol-item"`
	orderedItemOpen  = "<li" + orderedMarker + ">"
	unorderedItemTag = "<li>"
)

var (
	blockquoteRe     = regexp.MustCompile(`(?m)^&gt; (.+)$`)
	blockquoteSeamRe = regexp.MustCompile(`</blockquote>\n<blockquote>`)
	dashRuleRe       = regexp.MustCompile(`(?m)^---$`)
	starRuleRe       = regexp.MustCompile(`(?m)^\*\*\*$`)
	unorderedItemRe  = regexp.MustCompile(`(?m)^[*\-] (.+)$`)
	orderedItemRe    = regexp.MustCompile(`(?m)^\d+\. (.+)$`)
	tableRe          = regexp.MustCompile(`(\|.+\|)\n(\|[-:\s|]+\|)\n((?:\|.+\|\n?)+)`)
	emptyParagraphRe = regexp.MustCompile(`<p>\s*</p>`)
)

// Blockquotes wraps escaped "> " lines and merges adjacent quotes into one.
func Blockquotes(s string) string {
	s = blockquoteRe.ReplaceAllString(s, "<blockquote>${1}</blockquote>")
	return blockquoteSeamRe.ReplaceAllString(s, "\n")
}

// HorizontalRules turns lines consisting only of --- or *** into hr.
func HorizontalRules(s string) string {
	s = dashRuleRe.ReplaceAllString(s, "<hr>")
	return starRuleRe.ReplaceAllString(s, "<hr>")
}

// UnorderedItems turns "- x" and "* x" lines into list items.
func UnorderedItems(s string) string {
	return unorderedItemRe.ReplaceAllString(s, "<li>${1}</li>")
}

// OrderedItems turns "1. x" lines into list items tagged as ordered so
// WrapLists can tell the two kinds apart.
func OrderedItems(s string) string {
	return orderedItemRe.ReplaceAllString(s, orderedItemOpen+"${1}</li>")
}

// WrapLists groups consecutive list item lines into ul and ol containers.
// Switching kind or reaching a non-item line closes the open container.
func WrapLists(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines)+4)
	inOrdered, inUnordered := false, false

	closeOpen := func() {
		if inOrdered {
			out = append(out, "</ol>")
			inOrdered = false
		}
		if inUnordered {
			out = append(out, "</ul>")
			inUnordered = false
		}
	}

	for _, line := range lines {
		ordered := strings.Contains(line, orderedItemOpen)
		unordered := !ordered && strings.Contains(line, unorderedItemTag)

		switch {
		case ordered:
			if !inOrdered {
				closeOpen()
				out = append(out, "<ol>")
				inOrdered = true
			}
			out = append(out, strings.Replace(line, orderedMarker, "", 1))
		case unordered:
			if !inUnordered {
				closeOpen()
				out = append(out, "<ul>")
				inUnordered = true
			}
			out = append(out, line)
		default:
			closeOpen()
			out = append(out, line)
		}
	}
	closeOpen()

	return strings.Join(out, "\n")
}

// Tables converts a header row, a separator row and one or more body rows
// into a table. Cells that are empty after trimming are dropped, which also
// discards the cells produced by the outer pipes.
func Tables(s string) string {
	return replaceSubmatchFunc(tableRe, s, func(m []string) string {
		var b strings.Builder
		b.WriteString("<table><thead><tr>")
		for _, cell := range splitCells(m[1]) {
			b.WriteString("<th>" + cell + "</th>")
		}
		b.WriteString("</tr></thead><tbody>")
		for _, row := range strings.Split(strings.TrimSpace(m[3]), "\n") {
			b.WriteString("<tr>")
			for _, cell := range splitCells(row) {
				b.WriteString("<td>" + cell + "</td>")
			}
			b.WriteString("</tr>")
		}
		b.WriteString("</tbody></table>")
		return b.String()
	})
}

func splitCells(row string) []string {
	var cells []string
	for _, c := range strings.Split(row, "|") {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

// Paragraphs wraps every non-blank line that is not already markup and is not
// a fence placeholder. Blank lines are emptied and empty paragraphs removed.
func Paragraphs(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			lines[i] = ""
		case strings.HasPrefix(trimmed, "<"), strings.HasPrefix(trimmed, fencePlaceholderPrefix):
		default:
			lines[i] = "<p>" + line + "</p>"
		}
	}
	return emptyParagraphRe.ReplaceAllString(strings.Join(lines, "\n"), "")
}
