// Package layer implements priority-ordered configuration layers.
//
// Raw settings arrive from several sources (built-in defaults, the user
// settings file, a workspace settings file). Each source is a Layer; the
// Manager merges them so higher-priority layers override lower ones.
package layer

// Source identifies where a layer's data came from.
type Source int

const (
	// SourceBuiltin is the compiled-in defaults layer.
	SourceBuiltin Source = iota

	// SourceUser is the user-level settings file.
	SourceUser

	// SourceWorkspace is a workspace folder's settings file.
	SourceWorkspace
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceBuiltin:
		return "builtin"
	case SourceUser:
		return "user"
	case SourceWorkspace:
		return "workspace"
	default:
		return "unknown"
	}
}

// Standard layer priorities. Higher values override lower ones.
const (
	PriorityBuiltin   = 0
	PriorityUser      = 100
	PriorityWorkspace = 200
)

// Layer is one source of raw configuration.
type Layer struct {
	// Name identifies the layer within a Manager.
	Name string

	// Source is where the data came from.
	Source Source

	// Priority orders the layer relative to others.
	Priority int

	// Data is the layer's raw key/value tree.
	Data map[string]any

	// ReadOnly prevents Set/Delete on the layer.
	ReadOnly bool
}

// New creates an empty layer.
func New(name string, source Source, priority int) *Layer {
	return &Layer{
		Name:     name,
		Source:   source,
		Priority: priority,
		Data:     make(map[string]any),
	}
}

// NewWithData creates a layer holding the given data.
func NewWithData(name string, source Source, priority int, data map[string]any) *Layer {
	return &Layer{
		Name:     name,
		Source:   source,
		Priority: priority,
		Data:     data,
	}
}
