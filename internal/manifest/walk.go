package manifest

import (
	"context"
	"log/slog"
	"sort"
)

// WalkFunc is called for every file entry. folders holds the display names of
// the enclosing folders, outermost first.
type WalkFunc func(folders []string, name string, f *FileEntry)

// Walk visits every file entry depth-first in manifest order.
func Walk(root *Folder, fn WalkFunc) {
	walk(root, nil, fn)
}

func walk(f *Folder, folders []string, fn WalkFunc) {
	if f == nil {
		return
	}
	for _, e := range f.Entries {
		switch n := e.Node.(type) {
		case *FileEntry:
			fn(folders, e.Name, n)
		case *Folder:
			walk(n, append(folders[:len(folders):len(folders)], e.Name), fn)
		}
	}
}

// Files returns every file entry in traversal order.
func Files(root *Folder) []FileEntry {
	var out []FileEntry
	Walk(root, func(_ []string, _ string, f *FileEntry) {
		out = append(out, *f)
	})
	return out
}

// Paths returns the document paths in traversal order.
func Paths(root *Folder) []string {
	var out []string
	Walk(root, func(_ []string, _ string, f *FileEntry) {
		out = append(out, f.Path)
	})
	return out
}

// Contains reports whether path is a document listed in the manifest.
func Contains(root *Folder, path string) bool {
	found := false
	Walk(root, func(_ []string, _ string, f *FileEntry) {
		if f.Path == path {
			found = true
		}
	})
	return found
}

// ByDate returns every file entry sorted by date, most recent first. Entries
// with equal dates keep manifest order.
func ByDate(root *Folder) []FileEntry {
	files := Files(root)
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].Date > files[j].Date
	})
	return files
}

// Reader fetches a file by path.
type Reader interface {
	Read(ctx context.Context, path string) (string, error)
}

// Load reads and parses the manifest at name. Any failure is logged and
// yields an empty manifest.
func Load(ctx context.Context, r Reader, name string, logger *slog.Logger) *Folder {
	data, err := r.Read(ctx, name)
	if err != nil {
		logger.Warn("manifest: load failed, using empty manifest",
			slog.String("path", name), slog.String("error", err.Error()))
		return Empty()
	}
	root, err := Parse([]byte(data), FormatFromName(name))
	if err != nil {
		logger.Warn("manifest: parse failed, using empty manifest",
			slog.String("path", name), slog.String("error", err.Error()))
		return Empty()
	}
	logger.Info("manifest: loaded", slog.String("path", name), slog.Int("documents", len(Paths(root))))
	return root
}
