package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/sjson"

	"github.com/Coffigny94/pymanager/internal/host"
	"github.com/Coffigny94/pymanager/internal/notify"
	"github.com/Coffigny94/pymanager/internal/store/layer"
	"github.com/Coffigny94/pymanager/internal/store/loader"
	"github.com/Coffigny94/pymanager/internal/store/watcher"
)

const (
	layerDefaults  = "defaults"
	layerUser      = "user"
	layerWorkspace = "workspace"

	// workspaceSettingsRel is the settings file path inside each folder.
	workspaceSettingsRel = ".vscode/settings.json"
)

// DefaultUserSettingsPath returns the conventional user settings file
// location for the current platform.
func DefaultUserSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, herr := os.UserHomeDir()
		if herr != nil {
			return "settings.toml"
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "pymanager", "settings.toml")
}

// scopeState is the per-workspace-folder slice of the store.
type scopeState struct {
	folder  host.WorkspaceFolder
	manager *layer.Manager
	path    string         // workspace settings file
	data    map[string]any // last successfully loaded workspace data
}

// Store is the raw settings store.
type Store struct {
	mu sync.RWMutex

	fs        host.FileSystem
	workspace host.Workspace
	userPath  string
	defaults  map[string]any
	live      bool
	debounce  time.Duration

	userData map[string]any
	global   *layer.Manager
	scopes   map[string]*scopeState

	notifier     *notify.Notifier
	fw           *watcher.Watcher
	unsubFolders func()

	loaded bool
	closed bool
}

// Option configures a Store.
type Option func(*Store)

// WithFileSystem overrides the filesystem seam.
func WithFileSystem(fs host.FileSystem) Option {
	return func(s *Store) { s.fs = fs }
}

// WithWorkspace attaches the workspace folder source.
func WithWorkspace(ws host.Workspace) Option {
	return func(s *Store) { s.workspace = ws }
}

// WithUserSettingsPath overrides the user settings file location.
func WithUserSettingsPath(path string) Option {
	return func(s *Store) { s.userPath = path }
}

// WithDefaults sets the built-in defaults layer data.
func WithDefaults(defaults map[string]any) Option {
	return func(s *Store) { s.defaults = layer.Clone(defaults) }
}

// WithLiveReload enables filesystem watching of settings files, with the
// given coalescing window.
func WithLiveReload(debounce time.Duration) Option {
	return func(s *Store) {
		s.live = true
		s.debounce = debounce
	}
}

// New creates a store. Call Load before reading.
func New(opts ...Option) *Store {
	s := &Store{
		fs:        host.DefaultFS(),
		workspace: host.NewStaticWorkspace(),
		userPath:  DefaultUserSettingsPath(),
		scopes:    make(map[string]*scopeState),
		notifier:  notify.New(),
		debounce:  100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads all settings files and starts watching them when live
// reload is enabled. Parse failures degrade to empty data for the failing
// layer; they are joined into the returned error but leave the store
// usable.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	var errs []error

	userData, err := loader.NewTOMLLoaderWithFS(s.fs, s.userPath).Load()
	if err != nil {
		errs = append(errs, err)
	} else {
		s.userData = userData
	}

	s.global = layer.NewManager()
	s.global.AddLayer(layer.NewWithData(layerDefaults, layer.SourceBuiltin, layer.PriorityBuiltin, layer.Clone(s.defaults)))
	s.global.AddLayer(layer.NewWithData(layerUser, layer.SourceUser, layer.PriorityUser, layer.Clone(s.userData)))
	if ro := s.global.GetLayer(layerDefaults); ro != nil {
		ro.ReadOnly = true
	}

	if err := s.syncScopesLocked(); err != nil {
		errs = append(errs, err)
	}

	if s.live && s.fw == nil {
		fw, werr := watcher.New(watcher.WithDebounce(s.debounce))
		if werr != nil {
			errs = append(errs, werr)
		} else {
			s.fw = fw
			fw.OnChange(s.handleFileEvent)
			_ = fw.Watch(s.userPath)
			for _, sc := range s.scopes {
				_ = fw.Watch(sc.path)
			}
		}
	}

	if s.unsubFolders == nil && s.workspace != nil {
		s.unsubFolders = s.workspace.OnDidChangeFolders(s.onFoldersChanged)
	}

	s.loaded = true
	return errors.Join(errs...)
}

// Loaded reports whether Load has completed.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Folders returns the current workspace folders.
func (s *Store) Folders() []host.WorkspaceFolder {
	return s.workspace.Folders()
}

// ScopeFor maps a resource path to its owning workspace folder path. A
// resource outside every folder, or an empty resource, maps to the empty
// scope.
func (s *Store) ScopeFor(resource string) string {
	if resource == "" {
		return ""
	}
	res := filepath.Clean(resource)

	best := ""
	for _, f := range s.workspace.Folders() {
		folder := filepath.Clean(f.Path)
		if res != folder && !strings.HasPrefix(res, folder+string(filepath.Separator)) {
			continue
		}
		if len(folder) > len(best) {
			best = folder
		}
	}
	return best
}

// Get returns the effective value for a key as seen from a resource.
func (s *Store) Get(key, resource string) (any, bool) {
	m := s.managerFor(s.ScopeFor(resource))
	if m == nil {
		return nil, false
	}
	val, _, ok := m.Get(key)
	return val, ok
}

// GetString returns a string-typed setting.
func (s *Store) GetString(key, resource string) (string, bool) {
	val, ok := s.Get(key, resource)
	if !ok {
		return "", false
	}
	str, ok := val.(string)
	return str, ok
}

// GetBool returns a bool-typed setting. Non-bool values report false.
func (s *Store) GetBool(key, resource string) (bool, bool) {
	val, ok := s.Get(key, resource)
	if !ok {
		return false, false
	}
	b, ok := val.(bool)
	return b, ok
}

// GetStringSlice returns a string-list setting. Non-list values and
// non-string elements are dropped.
func (s *Store) GetStringSlice(key, resource string) ([]string, bool) {
	val, ok := s.Get(key, resource)
	if !ok {
		return nil, false
	}
	items, ok := val.([]any)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if str, ok := item.(string); ok {
			out = append(out, str)
		}
	}
	return out, true
}

// Inspection breaks a key's value down by layer.
type Inspection struct {
	Key            string
	Scope          string
	DefaultValue   any
	UserValue      any
	WorkspaceValue any
	Effective      any
}

// Inspect reports a key's value in every layer visible from a resource.
func (s *Store) Inspect(key, resource string) Inspection {
	scope := s.ScopeFor(resource)
	insp := Inspection{Key: key, Scope: scope}

	m := s.managerFor(scope)
	if m == nil {
		return insp
	}
	insp.DefaultValue, _ = m.GetFromSource(layer.SourceBuiltin, key)
	insp.UserValue, _ = m.GetFromSource(layer.SourceUser, key)
	insp.WorkspaceValue, _ = m.GetFromSource(layer.SourceWorkspace, key)
	insp.Effective, _, _ = m.Get(key)
	return insp
}

// Update writes a setting and persists it. Resources inside a workspace
// folder write to that folder's settings file; everything else writes to
// the user settings file. The in-memory layers are updated immediately
// and a change token is delivered before Update returns.
func (s *Store) Update(key string, value any, resource string) error {
	if key == "" {
		return ErrEmptyKey
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if !s.loaded {
		s.mu.Unlock()
		return ErrNotLoaded
	}

	scope := s.ScopeFor(resource)
	var err error
	if sc, ok := s.scopes[scope]; ok && scope != "" {
		err = s.updateWorkspaceLocked(sc, key, value)
	} else {
		scope = ""
		err = s.updateUserLocked(key, value)
	}
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notifier.Notify(notify.NewChangeToken(layer.Namespace(key), key, scope))
	return nil
}

// updateWorkspaceLocked writes a key into a folder's settings file using
// the flat dotted-key convention, then mirrors it into the layer stack.
func (s *Store) updateWorkspaceLocked(sc *scopeState, key string, value any) error {
	raw := []byte("{}")
	if s.fs.Exists(sc.path) {
		data, err := s.fs.ReadFile(sc.path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", sc.path, err)
		}
		if len(data) > 0 {
			raw = data
		}
	}

	// Escape dots so the key stays a single flat JSON member.
	flat := strings.ReplaceAll(key, ".", `\.`)
	updated, err := sjson.SetBytes(raw, flat, value)
	if err != nil {
		return fmt.Errorf("updating %s: %w", sc.path, err)
	}
	if err := s.fs.WriteFile(sc.path, updated); err != nil {
		return fmt.Errorf("writing %s: %w", sc.path, err)
	}

	if sc.data == nil {
		sc.data = make(map[string]any)
	}
	layer.SetByPath(sc.data, key, value)
	return sc.manager.Set(layerWorkspace, key, value)
}

// updateUserLocked writes a key into the user settings file and mirrors
// it into every scope's user layer.
func (s *Store) updateUserLocked(key string, value any) error {
	data := layer.Clone(s.userData)
	if data == nil {
		data = make(map[string]any)
	}
	if !layer.SetByPath(data, key, value) {
		return fmt.Errorf("invalid settings path: %s", key)
	}

	encoded, err := toml.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding user settings: %w", err)
	}
	if err := s.fs.WriteFile(s.userPath, encoded); err != nil {
		return fmt.Errorf("writing %s: %w", s.userPath, err)
	}

	s.userData = data
	s.applyUserDataLocked()
	return nil
}

// applyUserDataLocked pushes the current user data into every manager.
func (s *Store) applyUserDataLocked() {
	_ = s.global.ReplaceData(layerUser, s.userData)
	for _, sc := range s.scopes {
		_ = sc.manager.ReplaceData(layerUser, s.userData)
	}
}

// OnDidChange subscribes an observer to all changes.
func (s *Store) OnDidChange(obs notify.Observer) *notify.Subscription {
	return s.notifier.Subscribe(obs)
}

// OnDidChangeScope subscribes an observer to changes affecting one scope.
func (s *Store) OnDidChangeScope(scope string, obs notify.Observer) *notify.Subscription {
	return s.notifier.SubscribeScope(scope, obs)
}

// Close stops watching and drops all subscriptions.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	unsub := s.unsubFolders
	fw := s.fw
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if fw != nil {
		fw.Close()
	}
	s.notifier.Close()
}

func (s *Store) managerFor(scope string) *layer.Manager {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sc, ok := s.scopes[scope]; ok {
		return sc.manager
	}
	return s.global
}

// syncScopesLocked reconciles scope state with the current folder list.
// New folders get a freshly loaded manager; departed folders are dropped.
func (s *Store) syncScopesLocked() error {
	var errs []error

	current := make(map[string]host.WorkspaceFolder)
	for _, f := range s.workspace.Folders() {
		current[filepath.Clean(f.Path)] = f
	}

	for scope, sc := range s.scopes {
		if _, ok := current[scope]; !ok {
			if s.fw != nil {
				_ = s.fw.Unwatch(sc.path)
			}
			delete(s.scopes, scope)
		}
	}

	for scope, folder := range current {
		if _, ok := s.scopes[scope]; ok {
			continue
		}

		path := filepath.Join(scope, filepath.FromSlash(workspaceSettingsRel))
		data, err := loader.NewJSONLoaderWithFS(s.fs, path).Load()
		if err != nil {
			errs = append(errs, err)
			data = nil
		}

		m := layer.NewManager()
		m.AddLayer(layer.NewWithData(layerDefaults, layer.SourceBuiltin, layer.PriorityBuiltin, layer.Clone(s.defaults)))
		m.AddLayer(layer.NewWithData(layerUser, layer.SourceUser, layer.PriorityUser, layer.Clone(s.userData)))
		m.AddLayer(layer.NewWithData(layerWorkspace, layer.SourceWorkspace, layer.PriorityWorkspace, layer.Clone(data)))
		if ro := m.GetLayer(layerDefaults); ro != nil {
			ro.ReadOnly = true
		}

		s.scopes[scope] = &scopeState{
			folder:  folder,
			manager: m,
			path:    path,
			data:    data,
		}
		if s.fw != nil {
			_ = s.fw.Watch(path)
		}
	}

	return errors.Join(errs...)
}

// onFoldersChanged rebuilds scope state after the folder list changes and
// announces a store-wide change.
func (s *Store) onFoldersChanged() {
	s.mu.Lock()
	if s.closed || !s.loaded {
		s.mu.Unlock()
		return
	}
	_ = s.syncScopesLocked()
	s.mu.Unlock()

	s.notifier.Notify(notify.NewChangeToken("", "", ""))
}

// handleFileEvent reloads the changed file and announces the namespaces
// that actually differ. A reload that parses to the same data is silent,
// which also swallows the echo of the store's own writes.
func (s *Store) handleFileEvent(ev watcher.Event) {
	s.mu.Lock()
	if s.closed || !s.loaded {
		s.mu.Unlock()
		return
	}

	var (
		scope   string
		changed []string
	)
	switch {
	case samePath(ev.Path, s.userPath):
		data := s.reloadFile(loader.NewTOMLLoaderWithFS(s.fs, s.userPath), ev, s.userData)
		changed = diffNamespaces(s.userData, data)
		if len(changed) > 0 {
			s.userData = data
			s.applyUserDataLocked()
		}
	default:
		sc := s.scopeByPathLocked(ev.Path)
		if sc == nil {
			s.mu.Unlock()
			return
		}
		scope = filepath.Clean(sc.folder.Path)
		data := s.reloadFile(loader.NewJSONLoaderWithFS(s.fs, sc.path), ev, sc.data)
		changed = diffNamespaces(sc.data, data)
		if len(changed) > 0 {
			sc.data = data
			_ = sc.manager.ReplaceData(layerWorkspace, data)
		}
	}
	s.mu.Unlock()

	for _, ns := range changed {
		s.notifier.Notify(notify.NewChangeToken(ns, "", scope))
	}
}

// reloadFile loads a settings file for a watcher event. Removals read as
// empty; parse failures keep the previous data.
func (s *Store) reloadFile(l loader.Loader, ev watcher.Event, previous map[string]any) map[string]any {
	if ev.Op == watcher.OpRemove {
		return nil
	}
	data, err := l.Load()
	if err != nil {
		return previous
	}
	return data
}

func (s *Store) scopeByPathLocked(path string) *scopeState {
	for _, sc := range s.scopes {
		if samePath(sc.path, path) {
			return sc
		}
	}
	return nil
}

// samePath compares two paths after absolutization. Watcher events carry
// absolute paths; configured paths may be relative.
func samePath(a, b string) bool {
	aa, err := filepath.Abs(a)
	if err != nil {
		aa = a
	}
	bb, err := filepath.Abs(b)
	if err != nil {
		bb = b
	}
	return aa == bb
}

// diffNamespaces returns the sorted top-level keys whose subtrees differ
// between two configuration trees.
func diffNamespaces(old, new map[string]any) []string {
	seen := make(map[string]bool)
	for ns := range old {
		seen[ns] = true
	}
	for ns := range new {
		seen[ns] = true
	}

	var changed []string
	for ns := range seen {
		if !reflect.DeepEqual(old[ns], new[ns]) {
			changed = append(changed, ns)
		}
	}
	sort.Strings(changed)
	return changed
}
