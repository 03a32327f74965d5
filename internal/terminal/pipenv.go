package terminal

import "github.com/Coffigny94/pymanager/internal/shells"

// PipenvProvider activates pipenv-managed environments by spawning a
// pipenv subshell.
type PipenvProvider struct{}

// NewPipenvProvider creates a pipenv activation provider.
func NewPipenvProvider() *PipenvProvider {
	return &PipenvProvider{}
}

// SupportsShell reports dialect support. pipenv shell works wherever
// pipenv itself runs.
func (p *PipenvProvider) SupportsShell(d shells.Dialect) bool {
	if d.Posix() {
		return true
	}
	switch d {
	case shells.Cmd, shells.PowerShell, shells.PowerShellCore:
		return true
	}
	return false
}

// CommandsFor returns a "pipenv shell" invocation for pipenv runtimes.
func (p *PipenvProvider) CommandsFor(_ string, d shells.Dialect, rt Runtime) []string {
	if rt.Type != EnvPipenv {
		return nil
	}

	exe := rt.PipenvPath
	if exe == "" {
		exe = "pipenv"
	}
	return []string{shells.BuildCommand(d, exe, "shell")}
}
