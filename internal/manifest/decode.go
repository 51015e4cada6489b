package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a manifest file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFromName picks the format from a file extension. Anything that is not
// .yaml or .yml is treated as JSON.
func FormatFromName(name string) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes a manifest, preserving the order of every mapping.
func Parse(data []byte, format Format) (*Folder, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Empty(), nil
	}
	if format == FormatYAML {
		return parseYAML(data)
	}
	return parseJSON(data)
}

func parseJSON(data []byte) (*Folder, error) {
	om := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(data, om); err != nil {
		return nil, fmt.Errorf("manifest: decode json: %w", err)
	}

	root := Empty()
	for p := om.Oldest(); p != nil; p = p.Next() {
		n, err := jsonNode(p.Value)
		if err != nil {
			return nil, fmt.Errorf("manifest: entry %q: %w", p.Key, err)
		}
		if n != nil {
			root.Add(p.Key, n)
		}
	}
	return root, nil
}

// jsonNode returns nil for values that are neither a path, a file entry nor
// a folder (null, numbers, arrays).
func jsonNode(raw json.RawMessage) (Node, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	switch trimmed[0] {
	case '"':
		var p string
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return nil, err
		}
		return File(p, ""), nil
	case '{':
		var probe struct {
			Path any    `json:"path"`
			Date string `json:"date"`
		}
		// A folder may contain a child called "date" or "path" holding an
		// object, so only a string path marks a file entry.
		if err := json.Unmarshal(trimmed, &probe); err == nil {
			if p, ok := probe.Path.(string); ok && p != "" {
				return File(p, probe.Date), nil
			}
		}
		return parseJSON(trimmed)
	default:
		return nil, nil
	}
}

func parseYAML(data []byte) (*Folder, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("manifest: decode yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return Empty(), nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("manifest: top level must be a mapping")
	}
	return yamlFolder(root), nil
}

func yamlFolder(m *yaml.Node) *Folder {
	f := Empty()
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i], m.Content[i+1]
		if n := yamlNode(val); n != nil {
			f.Add(key.Value, n)
		}
	}
	return f
}

func yamlNode(n *yaml.Node) Node {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" || n.Value == "" {
			return nil
		}
		return File(n.Value, "")
	case yaml.MappingNode:
		var p, date string
		isFile := false
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, v := n.Content[i], n.Content[i+1]
			if v.Kind != yaml.ScalarNode {
				continue
			}
			switch k.Value {
			case "path":
				p, isFile = v.Value, v.Value != ""
			case "date":
				date = v.Value
			}
		}
		if isFile {
			return File(p, date)
		}
		return yamlFolder(n)
	case yaml.AliasNode:
		if n.Alias != nil {
			return yamlNode(n.Alias)
		}
	}
	return nil
}
