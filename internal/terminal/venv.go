package terminal

import (
	"path/filepath"

	"github.com/Coffigny94/pymanager/internal/host"
	"github.com/Coffigny94/pymanager/internal/shells"
)

// VenvProvider activates virtualenv and venv environments through their
// per-shell activate scripts.
type VenvProvider struct {
	fs     host.FileSystem
	family host.OSFamily
}

// NewVenvProvider creates a venv activation provider.
func NewVenvProvider(fs host.FileSystem, family host.OSFamily) *VenvProvider {
	return &VenvProvider{fs: fs, family: family}
}

// SupportsShell reports dialect support. Nushell has no venv activate
// script, so it is excluded.
func (p *VenvProvider) SupportsShell(d shells.Dialect) bool {
	switch d {
	case shells.Nushell, shells.Unknown:
		return false
	}
	return true
}

// CommandsFor returns the source/call command for the environment's
// activate script, or nil when the script does not exist.
func (p *VenvProvider) CommandsFor(_ string, d shells.Dialect, rt Runtime) []string {
	if rt.Type != EnvVenv && rt.Type != EnvUnknown {
		return nil
	}

	envRoot := EnvRoot(rt.Path)
	if envRoot == "" {
		return nil
	}

	scriptsDir := "bin"
	if p.family == host.FamilyWindows {
		scriptsDir = "Scripts"
	}

	switch d {
	case shells.Fish:
		return p.sourceCommand(d, filepath.Join(envRoot, scriptsDir, "activate.fish"))
	case shells.Csh, shells.Tcsh:
		return p.sourceCommand(d, filepath.Join(envRoot, scriptsDir, "activate.csh"))
	case shells.Xonsh:
		return p.sourceCommand(d, filepath.Join(envRoot, scriptsDir, "activate.xsh"))
	case shells.PowerShell, shells.PowerShellCore:
		script := filepath.Join(envRoot, scriptsDir, "Activate.ps1")
		if !p.fs.Exists(script) {
			return nil
		}
		return []string{"& " + shells.QuoteArg(d, script)}
	case shells.Cmd:
		script := filepath.Join(envRoot, "Scripts", "activate.bat")
		if !p.fs.Exists(script) {
			return nil
		}
		return []string{shells.QuoteArg(d, script)}
	default:
		return p.sourceCommand(d, filepath.Join(envRoot, scriptsDir, "activate"))
	}
}

func (p *VenvProvider) sourceCommand(d shells.Dialect, script string) []string {
	if !p.fs.Exists(script) {
		return nil
	}
	return []string{shells.BuildCommand(d, "source", script)}
}
