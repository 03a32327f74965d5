package terminal

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/Coffigny94/pymanager/internal/host"
	"github.com/Coffigny94/pymanager/internal/settings"
	"github.com/Coffigny94/pymanager/internal/shells"
)

// EnvType is a runtime environment flavor.
type EnvType int

const (
	EnvUnknown EnvType = iota
	EnvVenv
	EnvConda
	EnvPipenv
	EnvPyenv
)

// String returns the environment type name.
func (t EnvType) String() string {
	switch t {
	case EnvVenv:
		return "venv"
	case EnvConda:
		return "conda"
	case EnvPipenv:
		return "pipenv"
	case EnvPyenv:
		return "pyenv"
	default:
		return "unknown"
	}
}

// Runtime is the selected Python runtime to activate in a terminal.
type Runtime struct {
	// Path is the interpreter path, or an environment root directory.
	Path string

	// Name is the environment name, when known.
	Name string

	// Type is the environment flavor.
	Type EnvType

	// CondaPath and PipenvPath carry the configured tool executables,
	// empty for the PATH default.
	CondaPath  string
	PipenvPath string
}

// Service sends text to a live terminal. The host owns spawning and
// lifetime; this package only composes what to send.
type Service interface {
	SendText(ctx context.Context, text string) error
}

// Provider produces activation commands for a subset of shell dialects.
type Provider interface {
	// SupportsShell reports whether the provider can serve a dialect.
	SupportsShell(d shells.Dialect) bool

	// CommandsFor returns the activation command sequence, or nil when
	// this provider cannot activate the runtime.
	CommandsFor(resource string, d shells.Dialect, rt Runtime) []string
}

// Helper is the terminal-facing facade over settings, shell detection,
// and the provider chain.
type Helper struct {
	registry  *settings.Registry
	chain     *shells.Chain
	providers []Provider
	fs        host.FileSystem
	family    host.OSFamily
}

// HelperOption configures a Helper.
type HelperOption func(*Helper)

// WithDetectorChain overrides the shell detector chain.
func WithDetectorChain(chain *shells.Chain) HelperOption {
	return func(h *Helper) { h.chain = chain }
}

// WithProviders replaces the provider chain. Order is significant: the
// first provider returning commands wins.
func WithProviders(providers ...Provider) HelperOption {
	return func(h *Helper) { h.providers = providers }
}

// WithFileSystem overrides the filesystem probe.
func WithFileSystem(fs host.FileSystem) HelperOption {
	return func(h *Helper) { h.fs = fs }
}

// WithOSFamily overrides the detected OS family.
func WithOSFamily(family host.OSFamily) HelperOption {
	return func(h *Helper) { h.family = family }
}

// NewHelper creates a helper with the standard provider chain.
func NewHelper(registry *settings.Registry, opts ...HelperOption) *Helper {
	h := &Helper{
		registry: registry,
		chain:    shells.DefaultChain(),
		fs:       host.DefaultFS(),
		family:   host.CurrentFamily(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.providers == nil {
		h.providers = []Provider{
			NewCondaProvider(h.fs),
			NewPipenvProvider(),
			NewPyenvProvider(),
			NewVenvProvider(h.fs, h.family),
		}
	}
	return h
}

// IdentifyShell runs the detector chain.
func (h *Helper) IdentifyShell(sig shells.Signals) shells.Dialect {
	return h.chain.Identify(sig)
}

// ActivationCommands resolves the commands to activate the effective
// interpreter's environment for a resource. Nil means activation is
// disabled or not possible.
func (h *Helper) ActivationCommands(resource string, sig shells.Signals) []string {
	snap := h.registry.GetOrCreate(resource)
	res := snap.Settings()

	if res.Terminal == nil || !res.Terminal.ActivateEnvironment {
		return nil
	}

	dialect := h.chain.Identify(sig)
	rt := h.runtimeFor(res, snap.Root())
	return h.commandsFor(resource, dialect, rt)
}

// ActivationCommandsForInterpreter resolves activation commands for a
// specific interpreter and a known dialect, bypassing detection and the
// activation setting.
func (h *Helper) ActivationCommandsForInterpreter(interpreter string, d shells.Dialect) []string {
	rt := Runtime{Path: interpreter}
	rt.Type, rt.Name = h.classify(interpreter, "")
	return h.commandsFor("", d, rt)
}

// commandsFor queries providers in registration order and returns the
// first non-empty sequence.
func (h *Helper) commandsFor(resource string, d shells.Dialect, rt Runtime) []string {
	for _, p := range h.providers {
		if !p.SupportsShell(d) {
			continue
		}
		if cmds := p.CommandsFor(resource, d, rt); len(cmds) > 0 {
			return cmds
		}
	}
	return nil
}

func (h *Helper) runtimeFor(res settings.Resolved, root string) Runtime {
	path := res.InterpreterPath
	if path == "" {
		path = res.DefaultInterpreterPath
	}

	rt := Runtime{
		Path:       path,
		CondaPath:  res.CondaPath,
		PipenvPath: res.PipenvPath,
	}
	rt.Type, rt.Name = h.classify(path, root)
	return rt
}

// classify inspects an interpreter path to decide which environment
// flavor owns it.
func (h *Helper) classify(path, root string) (EnvType, string) {
	if path == "" || !strings.ContainsAny(path, `/\`) {
		return EnvUnknown, ""
	}

	envRoot := EnvRoot(path)
	if h.fs.Exists(filepath.Join(envRoot, "conda-meta")) {
		return EnvConda, filepath.Base(envRoot)
	}
	if version, ok := pyenvVersion(path); ok {
		return EnvPyenv, version
	}
	if root != "" && h.fs.Exists(filepath.Join(root, "Pipfile")) &&
		strings.Contains(path, "virtualenvs") {
		return EnvPipenv, filepath.Base(envRoot)
	}
	if h.fs.Exists(filepath.Join(envRoot, "pyvenv.cfg")) {
		return EnvVenv, filepath.Base(envRoot)
	}
	return EnvUnknown, ""
}

// EnvRoot maps an interpreter path to its environment root directory:
// the grandparent when the interpreter sits in a bin or Scripts layout,
// the parent for a flat layout, and the path itself for directories.
func EnvRoot(path string) string {
	base := filepath.Base(path)
	if !strings.HasPrefix(strings.ToLower(base), "python") {
		return path
	}

	dir := filepath.Dir(path)
	switch strings.ToLower(filepath.Base(dir)) {
	case "bin", "scripts":
		return filepath.Dir(dir)
	default:
		return dir
	}
}

// pyenvVersion extracts the version segment from a pyenv-managed
// interpreter path (.pyenv/versions/<version>/...).
func pyenvVersion(path string) (string, bool) {
	norm := filepath.ToSlash(path)
	idx := strings.Index(norm, ".pyenv/versions/")
	if idx < 0 {
		return "", false
	}
	rest := norm[idx+len(".pyenv/versions/"):]
	version, _, _ := strings.Cut(rest, "/")
	if version == "" {
		return "", false
	}
	return version, true
}

// Activate sends an activation command sequence to a terminal, one line
// at a time, stopping on the first failure or context cancellation.
func Activate(ctx context.Context, svc Service, commands []string) error {
	for _, cmd := range commands {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := svc.SendText(ctx, cmd); err != nil {
			return err
		}
	}
	return nil
}
