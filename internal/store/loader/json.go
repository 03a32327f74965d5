package loader

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/Coffigny94/pymanager/internal/host"
	"github.com/Coffigny94/pymanager/internal/store/layer"
)

// JSONLoader loads a workspace settings file (settings.json style).
//
// Workspace settings files conventionally use flat dotted keys
// ("python.condaPath": "..."); those are expanded into nested maps so the
// rest of the store works with one tree shape.
type JSONLoader struct {
	fs   host.FileSystem
	path string
}

// NewJSONLoader creates a JSON loader for the given path.
func NewJSONLoader(path string) *JSONLoader {
	return &JSONLoader{fs: host.DefaultFS(), path: path}
}

// NewJSONLoaderWithFS creates a JSON loader with a custom filesystem.
func NewJSONLoaderWithFS(fs host.FileSystem, path string) *JSONLoader {
	return &JSONLoader{fs: fs, path: path}
}

// Path returns the file path this loader reads.
func (l *JSONLoader) Path() string { return l.path }

// Load reads and parses the file. A missing file yields (nil, nil).
func (l *JSONLoader) Load() (map[string]any, error) {
	data, err := readFile(l.fs, l.path)
	if err != nil || data == nil {
		return nil, err
	}

	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Path: l.path, Message: "invalid JSON"}
	}

	parsed := gjson.ParseBytes(data)
	tree, ok := parsed.Value().(map[string]any)
	if !ok {
		return nil, &ParseError{Path: l.path, Message: "top-level value is not an object"}
	}
	return ExpandDottedKeys(tree), nil
}

// ExpandDottedKeys converts flat dotted keys at any level into nested
// maps, merging with keys that were already nested. Later keys win on
// conflict, matching JSON object semantics.
func ExpandDottedKeys(tree map[string]any) map[string]any {
	if tree == nil {
		return nil
	}

	out := make(map[string]any, len(tree))
	for key, val := range tree {
		if nested, ok := val.(map[string]any); ok {
			val = ExpandDottedKeys(nested)
		}
		if !strings.Contains(key, ".") {
			if existing, ok := out[key].(map[string]any); ok {
				if incoming, ok := val.(map[string]any); ok {
					out[key] = layer.DeepMerge(existing, incoming)
					continue
				}
			}
			out[key] = val
			continue
		}

		sub := make(map[string]any)
		layer.SetByPath(sub, key, val)
		out = layer.DeepMerge(out, sub)
	}
	return out
}
