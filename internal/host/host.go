package host

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
)

// FileSystem is the filesystem seam used for path probes and settings
// file access.
type FileSystem interface {
	// Exists reports whether a path exists.
	Exists(path string) bool

	// ReadFile returns the contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces a file's contents, creating parent directories
	// as needed.
	WriteFile(path string, data []byte) error
}

// osFS implements FileSystem against the real filesystem.
type osFS struct{}

func (osFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (osFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (osFS) WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// DefaultFS returns the real filesystem.
func DefaultFS() FileSystem {
	return osFS{}
}

// OSFamily identifies the broad operating system family. The settings
// engine only distinguishes the Windows family from everything else.
type OSFamily int

const (
	// FamilyUnix covers Linux, macOS, and the BSDs.
	FamilyUnix OSFamily = iota

	// FamilyWindows covers all Windows variants.
	FamilyWindows
)

// String returns the family name.
func (f OSFamily) String() string {
	if f == FamilyWindows {
		return "windows"
	}
	return "unix"
}

// CurrentFamily returns the family of the running process.
func CurrentFamily() OSFamily {
	if runtime.GOOS == "windows" {
		return FamilyWindows
	}
	return FamilyUnix
}

// WorkspaceFolder is one open workspace folder.
type WorkspaceFolder struct {
	// Path is the canonical absolute path of the folder root.
	Path string

	// Index is the folder's position in the host's ordered folder list.
	Index int
}

// Workspace enumerates open workspace folders and reports membership
// changes.
type Workspace interface {
	// Folders returns the open folders in host order.
	Folders() []WorkspaceFolder

	// OnDidChangeFolders registers a callback for folder list changes.
	// The returned function removes the registration.
	OnDidChangeFolders(fn func()) (unsubscribe func())
}

// StaticWorkspace is a Workspace with a fixed folder list. Folder-change
// callbacks are retained so tests (and future dynamic hosts) can fire them
// through ChangeFolders.
type StaticWorkspace struct {
	mu        sync.Mutex
	folders   []WorkspaceFolder
	listeners map[uint64]func()
	nextID    uint64
}

// NewStaticWorkspace creates a workspace over the given folder paths.
func NewStaticWorkspace(paths ...string) *StaticWorkspace {
	w := &StaticWorkspace{listeners: make(map[uint64]func())}
	for i, p := range paths {
		w.folders = append(w.folders, WorkspaceFolder{Path: p, Index: i})
	}
	return w
}

// Folders returns the current folder list.
func (w *StaticWorkspace) Folders() []WorkspaceFolder {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]WorkspaceFolder, len(w.folders))
	copy(out, w.folders)
	return out
}

// OnDidChangeFolders registers a folder-change callback.
func (w *StaticWorkspace) OnDidChangeFolders(fn func()) func() {
	w.mu.Lock()
	defer w.mu.Unlock()

	id := w.nextID
	w.nextID++
	w.listeners[id] = fn

	return func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		delete(w.listeners, id)
	}
}

// ChangeFolders replaces the folder list and notifies listeners.
func (w *StaticWorkspace) ChangeFolders(paths ...string) {
	w.mu.Lock()
	w.folders = w.folders[:0]
	for i, p := range paths {
		w.folders = append(w.folders, WorkspaceFolder{Path: p, Index: i})
	}
	listeners := make([]func(), 0, len(w.listeners))
	for _, fn := range w.listeners {
		listeners = append(listeners, fn)
	}
	w.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// PreferredExecutable abstracts the external interpreter-selection
// mechanism. When it supplies a value for a resource, that value wins over
// the raw configured interpreter path.
type PreferredExecutable interface {
	// Get returns the preferred interpreter for a resource, or "".
	Get(resource string) string

	// OnDidChange registers a callback invoked with the affected resource.
	// The returned function removes the registration.
	OnDidChange(fn func(resource string)) (unsubscribe func())
}

// NoPreferredExecutable is a PreferredExecutable that never supplies a
// value. Hosts without an interpreter-selection UI use this.
type NoPreferredExecutable struct{}

func (NoPreferredExecutable) Get(string) string               { return "" }
func (NoPreferredExecutable) OnDidChange(func(string)) func() { return func() {} }

// EnvPreferredExecutable reads the preferred interpreter from a process
// environment variable, ignoring the resource. It never fires changes;
// the environment is fixed for the process lifetime.
type EnvPreferredExecutable struct {
	// Var is the environment variable name, e.g. "PYMANAGER_PYTHON".
	Var string
}

func (e EnvPreferredExecutable) Get(string) string {
	return os.Getenv(e.Var)
}

func (e EnvPreferredExecutable) OnDidChange(func(string)) func() { return func() {} }

// Environ returns the process environment as a sorted list of KEY=VALUE
// entries. Sorting keeps variable-table construction deterministic.
func Environ() []string {
	env := os.Environ()
	out := make([]string, 0, len(env))
	for _, kv := range env {
		if k, _, ok := strings.Cut(kv, "="); ok && k != "" {
			out = append(out, kv)
		}
	}
	sort.Strings(out)
	return out
}
