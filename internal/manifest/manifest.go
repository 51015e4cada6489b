// Package manifest models the document tree that drives navigation and
// preloading. A tree node is either a Folder or a FileEntry.
package manifest

import "strings"

// DefaultDate is assigned to file entries that carry no date.
const DefaultDate = "2025-12-01"

// Node is a Folder or a *FileEntry.
type Node interface {
	node()
}

// Entry is a named child of a folder. Entries keep manifest order.
type Entry struct {
	Name string
	Node Node
}

// Folder is an ordered mapping from display name to child node.
type Folder struct {
	Entries []Entry
}

// FileEntry points at one document.
type FileEntry struct {
	Path string `json:"path"`
	Date string `json:"date"`
}

func (*Folder) node()    {}
func (*FileEntry) node() {}

// Empty returns a manifest with no entries.
func Empty() *Folder {
	return &Folder{}
}

// Add appends a named child.
func (f *Folder) Add(name string, n Node) *Folder {
	f.Entries = append(f.Entries, Entry{Name: name, Node: n})
	return f
}

// Len returns the number of direct children.
func (f *Folder) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Entries)
}

// File returns a file entry, filling in DefaultDate when date is empty.
func File(path, date string) *FileEntry {
	if date == "" {
		date = DefaultDate
	}
	return &FileEntry{Path: path, Date: date}
}

// DisplayName is the name shown in navigation: the entry name without ".md".
func DisplayName(name string) string {
	return strings.Replace(name, ".md", "", 1)
}
