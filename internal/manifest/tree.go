package manifest

// Node types in a Tree.
const (
	TypeFolder = "folder"
	TypeFile   = "file"
)

// TreeNode is the navigation view of a manifest node.
type TreeNode struct {
	Name     string     `json:"name"`
	Type     string     `json:"type"`
	Path     string     `json:"path,omitempty"`
	Date     string     `json:"date,omitempty"`
	Children []TreeNode `json:"children,omitempty"`
}

// Tree converts the manifest into navigation nodes. File names lose their
// ".md" suffix.
func Tree(root *Folder) []TreeNode {
	return Filter(root, nil)
}

// Filter is Tree restricted to files for which keep returns true. A folder
// whose files are all hidden is hidden too; a folder that never held a file
// stays. A nil keep shows everything.
func Filter(root *Folder, keep func(path string) bool) []TreeNode {
	nodes, _ := filter(root, keep)
	return nodes
}

// filter returns the visible nodes and whether the subtree holds any file.
func filter(f *Folder, keep func(string) bool) ([]TreeNode, bool) {
	if f == nil {
		return []TreeNode{}, false
	}
	out := []TreeNode{}
	hasFiles := false
	for _, e := range f.Entries {
		switch n := e.Node.(type) {
		case *FileEntry:
			hasFiles = true
			if keep != nil && !keep(n.Path) {
				continue
			}
			out = append(out, TreeNode{Name: DisplayName(e.Name), Type: TypeFile, Path: n.Path, Date: n.Date})
		case *Folder:
			children, childFiles := filter(n, keep)
			hasFiles = hasFiles || childFiles
			if childFiles && len(children) == 0 {
				continue
			}
			out = append(out, TreeNode{Name: e.Name, Type: TypeFolder, Children: children})
		}
	}
	return out, hasFiles
}
