// Package loader reads raw settings files into configuration trees.
//
// Two formats are supported: TOML for the user-level settings file and
// JSON for workspace settings files. Both loaders treat a missing file as
// "no data" rather than an error; only unparseable content fails.
package loader

import (
	"fmt"

	"github.com/Coffigny94/pymanager/internal/host"
)

// ParseError describes a failure to parse a settings file.
type ParseError struct {
	Path    string
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Loader reads one settings file into a configuration tree.
// A nil tree with a nil error means the file does not exist.
type Loader interface {
	Load() (map[string]any, error)
	Path() string
}

// readFile loads file contents through the filesystem seam, mapping
// "does not exist" to (nil, nil).
func readFile(fs host.FileSystem, path string) ([]byte, error) {
	if !fs.Exists(path) {
		return nil, nil
	}
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file %s: %w", path, err)
	}
	return data, nil
}
