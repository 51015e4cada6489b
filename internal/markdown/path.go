package markdown

import "strings"

// Dir returns everything in location up to and including the last "/", or ""
// when location has no directory part.
func Dir(location string) string {
	i := strings.LastIndex(location, "/")
	if i < 0 {
		return ""
	}
	return location[:i+1]
}

// ResolvePath joins target onto dir and collapses "." and ".." segments.
// Targets that already start with prefix are returned unchanged. A ".." that
// would climb above the root is dropped.
func ResolvePath(dir, target, prefix string) string {
	if strings.HasPrefix(target, prefix) {
		return target
	}
	parts := strings.Split(dir+target, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		switch p {
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		case ".", "":
		default:
			out = append(out, p)
		}
	}
	return strings.Join(out, "/")
}
