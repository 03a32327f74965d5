package layer

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrLayerNotFound is returned when addressing a layer by an unknown
	// name.
	ErrLayerNotFound = errors.New("layer not found")

	// ErrLayerReadOnly is returned when writing into a read-only layer.
	ErrLayerReadOnly = errors.New("layer is read-only")
)

// Manager holds a stack of layers and provides merged access.
type Manager struct {
	mu     sync.RWMutex
	layers []*Layer // sorted by priority, ascending
	merged map[string]any
	dirty  bool
}

// NewManager creates an empty layer manager.
func NewManager() *Manager {
	return &Manager{dirty: true}
}

// AddLayer adds a layer. Layers stay sorted by priority; adding a layer
// with a name that already exists replaces it.
func (m *Manager) AddLayer(l *Layer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.layers {
		if existing.Name == l.Name {
			m.layers[i] = l
			m.sortLocked()
			m.dirty = true
			return
		}
	}
	m.layers = append(m.layers, l)
	m.sortLocked()
	m.dirty = true
}

// RemoveLayer removes a layer by name, reporting whether it was present.
func (m *Manager) RemoveLayer(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, l := range m.layers {
		if l.Name == name {
			m.layers = append(m.layers[:i], m.layers[i+1:]...)
			m.dirty = true
			return true
		}
	}
	return false
}

// GetLayer returns a layer by name, or nil.
func (m *Manager) GetLayer(name string) *Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, l := range m.layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// LayerCount returns the number of layers.
func (m *Manager) LayerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.layers)
}

// Merge combines all layers into one tree, lowest priority first. The
// result is cached until a layer changes; callers receive a copy.
func (m *Manager) Merge() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Clone(m.mergedLocked())
}

// Get returns the effective value for a dotted path, searching layers
// from highest to lowest priority. It also returns the providing layer.
func (m *Manager) Get(path string) (any, *Layer, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.layers) - 1; i >= 0; i-- {
		l := m.layers[i]
		if val, ok := GetByPath(l.Data, path); ok {
			return val, l, true
		}
	}
	return nil, nil, false
}

// GetFromSource returns a path's value from the first layer with the
// given source, ignoring priority merging. Used by Inspect.
func (m *Manager) GetFromSource(source Source, path string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, l := range m.layers {
		if l.Source == source {
			if val, ok := GetByPath(l.Data, path); ok {
				return val, true
			}
		}
	}
	return nil, false
}

// Set writes a value into a named layer.
func (m *Manager) Set(layerName, path string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := m.findLocked(layerName)
	if l == nil {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, layerName)
	}
	if l.ReadOnly {
		return fmt.Errorf("%w: %s", ErrLayerReadOnly, layerName)
	}
	if l.Data == nil {
		l.Data = make(map[string]any)
	}
	if !SetByPath(l.Data, path, value) {
		return fmt.Errorf("invalid settings path: %s", path)
	}
	m.dirty = true
	return nil
}

// ReplaceData swaps a layer's data wholesale, e.g. after a file reload.
func (m *Manager) ReplaceData(layerName string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := m.findLocked(layerName)
	if l == nil {
		return fmt.Errorf("%w: %s", ErrLayerNotFound, layerName)
	}
	l.Data = Clone(data)
	m.dirty = true
	return nil
}

// Invalidate marks the merged cache as stale. Call after mutating a
// layer's Data directly.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirty = true
}

// Clear removes all layers.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.layers = nil
	m.merged = nil
	m.dirty = true
}

func (m *Manager) mergedLocked() map[string]any {
	if m.dirty || m.merged == nil {
		result := make(map[string]any)
		for _, l := range m.layers {
			result = DeepMerge(result, l.Data)
		}
		m.merged = result
		m.dirty = false
	}
	return m.merged
}

func (m *Manager) sortLocked() {
	sort.SliceStable(m.layers, func(i, j int) bool {
		return m.layers[i].Priority < m.layers[j].Priority
	})
}

func (m *Manager) findLocked(name string) *Layer {
	for _, l := range m.layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}
