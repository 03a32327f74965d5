package loader

import (
	"github.com/pelletier/go-toml/v2"

	"github.com/Coffigny94/pymanager/internal/host"
)

// TOMLLoader loads the user settings file.
type TOMLLoader struct {
	fs   host.FileSystem
	path string
}

// NewTOMLLoader creates a TOML loader for the given path.
func NewTOMLLoader(path string) *TOMLLoader {
	return &TOMLLoader{fs: host.DefaultFS(), path: path}
}

// NewTOMLLoaderWithFS creates a TOML loader with a custom filesystem.
func NewTOMLLoaderWithFS(fs host.FileSystem, path string) *TOMLLoader {
	return &TOMLLoader{fs: fs, path: path}
}

// Path returns the file path this loader reads.
func (l *TOMLLoader) Path() string { return l.path }

// Load reads and parses the file. A missing file yields (nil, nil).
func (l *TOMLLoader) Load() (map[string]any, error) {
	data, err := readFile(l.fs, l.path)
	if err != nil || data == nil {
		return nil, err
	}

	var tree map[string]any
	if err := toml.Unmarshal(data, &tree); err != nil {
		return nil, &ParseError{Path: l.path, Message: err.Error(), Err: err}
	}
	return ExpandDottedKeys(tree), nil
}
