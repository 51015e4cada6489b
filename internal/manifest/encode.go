package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"

	"github.com/starford/folio/internal/models"
)

// FromDocuments builds a manifest from a directory listing. Paths under prefix
// are nested by directory below it; the rest are nested by their full
// directory. Entries keep the order of docs.
func FromDocuments(docs []models.DocumentMeta, prefix string) *Folder {
	root := Empty()
	for _, d := range docs {
		rel := strings.TrimPrefix(d.Path, prefix)
		parts := strings.Split(rel, "/")

		f := root
		for _, dir := range parts[:len(parts)-1] {
			if dir == "" {
				continue
			}
			f = f.folder(dir)
		}
		f.Add(parts[len(parts)-1], File(d.Path, d.Date()))
	}
	return root
}

// folder returns the child folder called name, adding it when missing.
func (f *Folder) folder(name string) *Folder {
	for _, e := range f.Entries {
		if sub, ok := e.Node.(*Folder); ok && e.Name == name {
			return sub
		}
	}
	sub := Empty()
	f.Add(name, sub)
	return sub
}

// Marshal encodes root in the given format, keeping entry order.
func Marshal(root *Folder, format Format) ([]byte, error) {
	if root == nil {
		root = Empty()
	}
	if format == FormatYAML {
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(yamlMapping(root)); err != nil {
			return nil, fmt.Errorf("manifest: encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("manifest: encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	}

	out, err := json.MarshalIndent(jsonMapping(root), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("manifest: encode json: %w", err)
	}
	return append(out, '\n'), nil
}

func jsonMapping(f *Folder) *orderedmap.OrderedMap[string, any] {
	om := orderedmap.New[string, any]()
	for _, e := range f.Entries {
		switch n := e.Node.(type) {
		case *Folder:
			om.Set(e.Name, jsonMapping(n))
		case *FileEntry:
			om.Set(e.Name, n)
		}
	}
	return om
}

func yamlMapping(f *Folder) *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range f.Entries {
		key := &yaml.Node{Kind: yaml.ScalarNode, Value: e.Name}
		switch n := e.Node.(type) {
		case *Folder:
			m.Content = append(m.Content, key, yamlMapping(n))
		case *FileEntry:
			m.Content = append(m.Content, key, &yaml.Node{
				Kind: yaml.MappingNode,
				Content: []*yaml.Node{
					{Kind: yaml.ScalarNode, Value: "path"},
					{Kind: yaml.ScalarNode, Value: n.Path},
					{Kind: yaml.ScalarNode, Value: "date"},
					{Kind: yaml.ScalarNode, Value: n.Date, Style: yaml.DoubleQuotedStyle},
				},
			})
		}
	}
	return m
}
