package terminal

import "github.com/Coffigny94/pymanager/internal/shells"

// PyenvProvider selects pyenv-managed interpreter versions. The pyenv
// shell integration only exists for POSIX shells.
type PyenvProvider struct{}

// NewPyenvProvider creates a pyenv activation provider.
func NewPyenvProvider() *PyenvProvider {
	return &PyenvProvider{}
}

// SupportsShell reports dialect support.
func (p *PyenvProvider) SupportsShell(d shells.Dialect) bool {
	return d.Posix()
}

// CommandsFor returns a "pyenv shell <version>" invocation for pyenv
// runtimes with a known version.
func (p *PyenvProvider) CommandsFor(_ string, d shells.Dialect, rt Runtime) []string {
	if rt.Type != EnvPyenv || rt.Name == "" {
		return nil
	}
	return []string{shells.BuildCommand(d, "pyenv", "shell", rt.Name)}
}
