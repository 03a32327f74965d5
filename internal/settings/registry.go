package settings

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/Coffigny94/pymanager/internal/host"
	"github.com/Coffigny94/pymanager/internal/notify"
	"github.com/Coffigny94/pymanager/internal/store"
)

// debounceWindow coalesces bursts of recomputes into one changed firing.
const debounceWindow = 10 * time.Millisecond

// Registry caches one Snapshot per workspace scope.
type Registry struct {
	mu sync.Mutex

	store     *store.Store
	preferred host.PreferredExecutable
	fs        host.FileSystem
	family    host.OSFamily
	window    time.Duration

	snapshots map[string]*Snapshot
	notifier  *notify.Notifier
	storeSub  *notify.Subscription
	closed    bool
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithPreferredExecutable attaches the external interpreter-selection
// source.
func WithPreferredExecutable(pref host.PreferredExecutable) RegistryOption {
	return func(r *Registry) { r.preferred = pref }
}

// WithProbeFileSystem overrides the filesystem probe used for path
// resolution.
func WithProbeFileSystem(fs host.FileSystem) RegistryOption {
	return func(r *Registry) { r.fs = fs }
}

// WithOSFamily overrides the detected OS family.
func WithOSFamily(family host.OSFamily) RegistryOption {
	return func(r *Registry) { r.family = family }
}

// WithDebounceWindow overrides the changed-event coalescing window.
func WithDebounceWindow(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.window = d
		}
	}
}

// NewRegistry creates a registry over a loaded store.
func NewRegistry(st *store.Store, opts ...RegistryOption) *Registry {
	r := &Registry{
		store:     st,
		preferred: host.NoPreferredExecutable{},
		fs:        host.DefaultFS(),
		family:    host.CurrentFamily(),
		window:    debounceWindow,
		snapshots: make(map[string]*Snapshot),
		notifier:  notify.New(),
	}
	for _, opt := range opts {
		opt(r)
	}

	// Folder-list changes arrive as store-wide tokens with no namespace.
	r.storeSub = st.OnDidChange(func(token notify.ChangeToken) {
		if token.Namespace == "" && token.Key == "" && token.Scope == "" {
			r.collectDeparted()
		}
	})
	return r
}

// GetOrCreate returns the snapshot owning a resource, creating and
// initializing it on first access. Resources mapping to the same
// workspace folder share one instance.
func (r *Registry) GetOrCreate(resource string) *Snapshot {
	scope := r.store.ScopeFor(resource)

	r.mu.Lock()
	defer r.mu.Unlock()

	if snap, ok := r.snapshots[scope]; ok {
		return snap
	}

	root := scope
	if root == "" {
		if folders := r.store.Folders(); len(folders) > 0 {
			root = folders[0].Path
		}
	}

	snap := &Snapshot{
		scope:     scope,
		root:      root,
		store:     r.store,
		preferred: r.preferred,
		paths:     NewPathNormalizer(r.fs, r.family),
	}
	snap.initialize(r.window, func(token notify.ChangeToken) {
		token.Scope = scope
		r.notifier.Notify(token)
	})
	r.snapshots[scope] = snap
	return snap
}

// Len returns the number of live snapshots.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

// OnDidChange subscribes to changed firings from every snapshot.
func (r *Registry) OnDidChange(obs notify.Observer) *notify.Subscription {
	return r.notifier.Subscribe(obs)
}

// OnDidChangeScope subscribes to changed firings for one scope.
func (r *Registry) OnDidChangeScope(scope string, obs notify.Observer) *notify.Subscription {
	return r.notifier.SubscribeScope(scope, obs)
}

// ResetAll disposes every snapshot and clears the cache. Only test
// harnesses may call it; anywhere else this is a fatal usage error.
func (r *Registry) ResetAll() {
	if !TestMode() {
		panic(ErrResetOutsideTest)
	}

	r.mu.Lock()
	doomed := make([]*Snapshot, 0, len(r.snapshots))
	for _, snap := range r.snapshots {
		doomed = append(doomed, snap)
	}
	r.snapshots = make(map[string]*Snapshot)
	r.mu.Unlock()

	for _, snap := range doomed {
		snap.Dispose()
	}
}

// Close disposes all snapshots and drops subscriptions.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	doomed := make([]*Snapshot, 0, len(r.snapshots))
	for _, snap := range r.snapshots {
		doomed = append(doomed, snap)
	}
	r.snapshots = make(map[string]*Snapshot)
	r.mu.Unlock()

	if r.storeSub != nil {
		r.storeSub.Unsubscribe()
	}
	for _, snap := range doomed {
		snap.Dispose()
	}
	r.notifier.Close()
}

// collectDeparted drops snapshots whose scope left the workspace folder
// list. The global scope always survives.
func (r *Registry) collectDeparted() {
	current := make(map[string]bool)
	for _, f := range r.store.Folders() {
		current[filepath.Clean(f.Path)] = true
	}

	r.mu.Lock()
	var doomed []*Snapshot
	for scope, snap := range r.snapshots {
		if scope == "" || current[scope] {
			continue
		}
		doomed = append(doomed, snap)
		delete(r.snapshots, scope)
	}
	r.mu.Unlock()

	for _, snap := range doomed {
		snap.Dispose()
	}
}
