package settings

import (
	"sync"
	"time"

	"github.com/Coffigny94/pymanager/internal/host"
	"github.com/Coffigny94/pymanager/internal/notify"
	"github.com/Coffigny94/pymanager/internal/store"
)

// Snapshot holds the resolved settings for one workspace scope.
//
// A snapshot is created uninitialized and moves to initialized on its
// first successful recompute. Further recomputes mutate the fields in
// place; the instance identity is stable for the registry's lifetime.
type Snapshot struct {
	scope string
	root  string

	store     *store.Store
	preferred host.PreferredExecutable
	paths     *PathNormalizer

	mu          sync.RWMutex
	resolved    Resolved
	initialized bool
	disposed    bool

	debouncer *notify.Debouncer
	storeSub  *notify.Subscription
	prefUnsub func()
}

// Scope returns the snapshot's scope key.
func (s *Snapshot) Scope() string { return s.scope }

// Root returns the workspace root used for path resolution.
func (s *Snapshot) Root() string { return s.root }

// Initialized reports whether at least one recompute has completed.
func (s *Snapshot) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Settings returns the current resolved fields. The Terminal pointer is
// the snapshot's live sub-settings instance; its fields update in place
// on recompute.
func (s *Snapshot) Settings() Resolved {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolved
}

// initialize wires the snapshot to its change sources and performs the
// initial recompute. Recomputes triggered by external changes schedule a
// debounced firing through emit; the initial recompute stays silent.
func (s *Snapshot) initialize(window time.Duration, emit func(notify.ChangeToken)) {
	s.debouncer = notify.NewDebouncer(window, emit)

	s.storeSub = s.store.OnDidChangeScope(s.scope, func(token notify.ChangeToken) {
		if token.Namespace != "" && token.Namespace != Namespace {
			return
		}
		s.recompute(token, true)
	})

	s.prefUnsub = s.preferred.OnDidChange(func(resource string) {
		if s.store.ScopeFor(resource) != s.scope {
			return
		}
		s.recompute(notify.NewChangeToken(Namespace, keyInterpreterPath, s.scope), true)
	})

	if s.store.Loaded() {
		s.recompute(notify.NewChangeToken(Namespace, "", s.scope), false)
	}
}

// Dispose releases the snapshot's subscriptions and pending events.
func (s *Snapshot) Dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.mu.Unlock()

	if s.storeSub != nil {
		s.storeSub.Unsubscribe()
	}
	if s.prefUnsub != nil {
		s.prefUnsub()
	}
	if s.debouncer != nil {
		s.debouncer.Cancel()
	}
}

// recompute resolves every tracked field from the current raw
// configuration. When resolution fails unexpectedly, the previous values
// stay in effect. Successful recomputes for external events schedule a
// debounced changed firing.
func (s *Snapshot) recompute(token notify.ChangeToken, fire bool) {
	if !s.store.Loaded() {
		return
	}

	fields, ok := s.computeSafe()
	if !ok {
		return
	}

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	if existing := s.resolved.Terminal; existing != nil {
		existing.ActivateEnvironment = fields.Terminal.ActivateEnvironment
		existing.ExecuteInFileDir = fields.Terminal.ExecuteInFileDir
		existing.LaunchArgs = fields.Terminal.LaunchArgs
		fields.Terminal = existing
	}
	s.resolved = fields
	s.initialized = true
	s.mu.Unlock()

	if fire {
		s.debouncer.Trigger(token)
	}
}

// computeSafe wraps compute with panic absorption, so a misbehaving
// collaborator leaves the snapshot at its previous value.
func (s *Snapshot) computeSafe() (fields Resolved, ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return s.compute(), true
}

func (s *Snapshot) compute() Resolved {
	vars := NewVarTable(s.root, host.Environ())
	var res Resolved

	interp := s.rawString(keyInterpreterPath, vars)
	if pref := s.preferred.Get(s.scope); pref != "" {
		interp = pref
	}
	res.InterpreterPath = s.resolveInterpreter(interp)

	def := s.rawString(keyDefaultInterpreterPath, vars)
	if def == "" {
		def = DefaultInterpreter
	}
	res.DefaultInterpreterPath = s.resolveInterpreter(def)

	res.CondaPath = s.rawToolPath(keyCondaPath, vars)
	res.PipenvPath = s.rawToolPath(keyPipenvPath, vars)
	res.PoetryPath = s.rawToolPath(keyPoetryPath, vars)

	res.EnvFile = s.rawString(keyEnvFile, vars)
	res.VenvFolders = s.rawStringList(keyVenvFolders, vars)
	res.DevOptions = s.rawStringList(keyDevOptions, vars)
	res.Terminal = s.rawTerminal(vars)

	res.GlobalModuleInstallation = s.rawBool(keyGlobalModuleInstallation, false)
	res.AutoUpdate = s.rawBool(keyAutoUpdate, true)
	return res
}

// resolveInterpreter runs a configured interpreter value through the
// full path pipeline.
func (s *Snapshot) resolveInterpreter(raw string) string {
	abs := s.paths.Absolutize(raw, s.root)
	return s.paths.ResolveExecutable(abs)
}

// rawToolPath absolutizes an auxiliary tool path. Empty stays empty.
func (s *Snapshot) rawToolPath(key string, vars *VarTable) string {
	raw := s.rawString(key, vars)
	if raw == "" {
		return ""
	}
	return s.paths.Absolutize(raw, s.root)
}

func (s *Snapshot) rawString(key string, vars *VarTable) string {
	val, ok := s.store.Get(key, s.scope)
	if !ok {
		return ""
	}
	str, ok := vars.Resolve(val).(string)
	if !ok {
		return ""
	}
	return str
}

// rawStringList coerces a list-valued setting. Anything that is not a
// list reads as empty rather than propagating a type error.
func (s *Snapshot) rawStringList(key string, vars *VarTable) []string {
	val, ok := s.store.Get(key, s.scope)
	if !ok {
		return []string{}
	}
	return toStringList(vars.Resolve(val))
}

// rawBool applies strict boolean parsing: only the boolean true reads as
// true. Unset values read as the given default.
func (s *Snapshot) rawBool(key string, unset bool) bool {
	val, ok := s.store.Get(key, s.scope)
	if !ok {
		return unset
	}
	return val == true
}

func (s *Snapshot) rawTerminal(vars *VarTable) *TerminalSettings {
	term := &TerminalSettings{LaunchArgs: []string{}}

	val, ok := s.store.Get(keyTerminal, s.scope)
	if !ok {
		return term
	}
	sub, ok := vars.Resolve(val).(map[string]any)
	if !ok {
		return term
	}

	term.ActivateEnvironment = sub["activateEnvironment"] == true
	term.ExecuteInFileDir = sub["executeInFileDir"] == true
	term.LaunchArgs = toStringList(sub["launchArgs"])
	return term
}

func toStringList(val any) []string {
	switch items := val.(type) {
	case []string:
		out := make([]string, len(items))
		copy(out, items)
		return out
	case []any:
		out := make([]string, 0, len(items))
		for _, item := range items {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return []string{}
	}
}
