package terminal

import (
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Coffigny94/pymanager/internal/host"
	"github.com/Coffigny94/pymanager/internal/shells"
)

// CondaProvider activates conda environments by name through the conda
// launcher.
type CondaProvider struct {
	fs host.FileSystem
}

// NewCondaProvider creates a conda activation provider.
func NewCondaProvider(fs host.FileSystem) *CondaProvider {
	return &CondaProvider{fs: fs}
}

// SupportsShell reports dialect support. Conda ships activation hooks
// for the POSIX family, cmd, and both PowerShell flavors.
func (p *CondaProvider) SupportsShell(d shells.Dialect) bool {
	if d.Posix() {
		return true
	}
	switch d {
	case shells.Cmd, shells.PowerShell, shells.PowerShellCore:
		return true
	}
	return false
}

// CommandsFor returns a "conda activate" invocation for conda-managed
// runtimes. The environment name falls back to the workspace's
// environment.yml declaration, then to the environment root path.
func (p *CondaProvider) CommandsFor(resource string, d shells.Dialect, rt Runtime) []string {
	if rt.Type != EnvConda {
		return nil
	}

	exe := rt.CondaPath
	if exe == "" {
		exe = "conda"
	}

	name := rt.Name
	if name == "" && resource != "" {
		name = p.environmentName(resource)
	}
	if name == "" {
		name = EnvRoot(rt.Path)
	}
	if name == "" {
		return nil
	}

	return []string{shells.BuildCommand(d, exe, "activate", name)}
}

// environmentName reads the environment name declared in a workspace's
// environment.yml, if present.
func (p *CondaProvider) environmentName(dir string) string {
	for _, filename := range []string{"environment.yml", "environment.yaml"} {
		path := filepath.Join(dir, filename)
		if !p.fs.Exists(path) {
			continue
		}
		data, err := p.fs.ReadFile(path)
		if err != nil {
			continue
		}

		var spec struct {
			Name string `yaml:"name"`
		}
		if err := yaml.Unmarshal(data, &spec); err != nil {
			continue
		}
		if spec.Name != "" {
			return spec.Name
		}
	}
	return ""
}
