package settings

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/Coffigny94/pymanager/internal/host"
)

// executablePrefix is the filename prefix a candidate must carry to be
// accepted as an interpreter.
const executablePrefix = "python"

// executableNames are the well-known interpreter basenames probed inside
// a candidate directory, in historical-compatibility order: unqualified
// first, then the 3.x line, then the 2.x line.
var executableNames = []string{
	"python",
	"python3",
	"python3.6",
	"python3.7",
	"python3.8",
	"python3.9",
	"python2",
	"python2.7",
}

// PathNormalizer turns raw configured paths into usable ones: tilde
// expansion, relativity resolution against a workspace root, and
// directory-to-interpreter resolution.
type PathNormalizer struct {
	fs     host.FileSystem
	family host.OSFamily
	home   func() (string, error)
}

// NewPathNormalizer creates a normalizer over the given filesystem probe
// and OS family.
func NewPathNormalizer(fs host.FileSystem, family host.OSFamily) *PathNormalizer {
	return &PathNormalizer{fs: fs, family: family, home: os.UserHomeDir}
}

// Absolutize resolves a raw path against a workspace root.
//
// A leading ~ expands to the home directory. A bare name with no path
// separator returns unchanged so the OS command lookup can find it later.
// Anything else containing a separator is a path fragment: relative ones
// resolve against root, or against the tool's own installation directory
// when root is empty. An empty raw value returns root under a test
// harness and stays empty otherwise.
func (p *PathNormalizer) Absolutize(raw, root string) string {
	if raw == "" {
		if TestMode() {
			return root
		}
		return raw
	}

	raw = p.expandHome(raw)

	if !strings.ContainsAny(raw, `/\`) {
		return raw
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}

	if root == "" {
		if exe, err := os.Executable(); err == nil {
			root = filepath.Dir(exe)
		}
	}
	return filepath.Join(root, raw)
}

func (p *PathNormalizer) expandHome(raw string) string {
	if raw != "~" && !strings.HasPrefix(raw, "~/") && !strings.HasPrefix(raw, `~\`) {
		return raw
	}
	home, err := p.home()
	if err != nil || home == "" {
		return raw
	}
	if raw == "~" {
		return home
	}
	return filepath.Join(home, raw[2:])
}

// ResolveExecutable canonicalizes an interpreter path or directory into a
// concrete interpreter executable.
//
// A candidate that already exists with an interpreter-like filename
// returns unchanged. Otherwise the candidate is treated as a directory
// and well-known basenames are probed directly and under the platform
// layout subdirectory (bin on POSIX, Scripts with an .exe suffix on
// Windows). When nothing matches, the original candidate comes back
// untouched. This never fails; probe errors read as "not found".
func (p *PathNormalizer) ResolveExecutable(candidate string) string {
	if candidate == "" {
		return candidate
	}
	if p.isInterpreter(candidate) {
		return candidate
	}

	subdir := "bin"
	suffix := ""
	if p.family == host.FamilyWindows {
		subdir = "Scripts"
		suffix = ".exe"
	}

	for _, name := range executableNames {
		name += suffix
		if direct := filepath.Join(candidate, name); p.isInterpreter(direct) {
			return direct
		}
		if nested := filepath.Join(candidate, subdir, name); p.isInterpreter(nested) {
			return nested
		}
	}
	return candidate
}

// isInterpreter reports whether a path exists and its filename starts
// with the interpreter prefix. The prefix check is case-insensitive on
// the Windows family only.
func (p *PathNormalizer) isInterpreter(path string) bool {
	if !p.exists(path) {
		return false
	}
	name := filepath.Base(path)
	if p.family == host.FamilyWindows {
		return strings.HasPrefix(strings.ToLower(name), executablePrefix)
	}
	return strings.HasPrefix(name, executablePrefix)
}

// exists probes the filesystem, absorbing panics from the probe so
// resolution degrades to "not found" instead of propagating.
func (p *PathNormalizer) exists(path string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return p.fs.Exists(path)
}
