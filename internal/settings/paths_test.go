package settings

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/Coffigny94/pymanager/internal/host"
)

// fakeFS is an in-memory filesystem probe.
type fakeFS struct {
	files map[string]string
}

func newFakeFS(paths ...string) *fakeFS {
	f := &fakeFS{files: make(map[string]string)}
	for _, p := range paths {
		f.files[p] = ""
	}
	return f
}

func (f *fakeFS) Exists(path string) bool {
	_, ok := f.files[path]
	return ok
}

func (f *fakeFS) ReadFile(path string) ([]byte, error) {
	content, ok := f.files[path]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(content), nil
}

func (f *fakeFS) WriteFile(path string, data []byte) error {
	f.files[path] = string(data)
	return nil
}

// panicFS simulates a filesystem probe that blows up.
type panicFS struct{}

func (panicFS) Exists(string) bool { panic("probe failure") }

func (panicFS) ReadFile(string) ([]byte, error) { return nil, errors.New("not found") }

func (panicFS) WriteFile(string, []byte) error { return nil }

func newNormalizer(fs host.FileSystem, family host.OSFamily) *PathNormalizer {
	p := NewPathNormalizer(fs, family)
	p.home = func() (string, error) { return "/home/u", nil }
	return p
}

func TestAbsolutize(t *testing.T) {
	p := newNormalizer(newFakeFS(), host.FamilyUnix)

	tests := []struct {
		name string
		raw  string
		root string
		want string
	}{
		{"tilde expansion", "~/envs/py", "/proj", "/home/u/envs/py"},
		{"bare tilde", "~", "/proj", "/home/u"},
		{"bare name unchanged", "python3", "/proj", "python3"},
		{"absolute unchanged", "/usr/bin/python3", "/proj", "/usr/bin/python3"},
		{"relative against root", "venv/bin/python", "/proj", filepath.Join("/proj", "venv/bin/python")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Absolutize(tt.raw, tt.root); got != tt.want {
				t.Errorf("Absolutize(%q, %q) = %q, want %q", tt.raw, tt.root, got, tt.want)
			}
		})
	}
}

func TestAbsolutizeEmpty(t *testing.T) {
	p := newNormalizer(newFakeFS(), host.FamilyUnix)

	SetTestMode(true)
	defer SetTestMode(true)
	if got := p.Absolutize("", "/proj"); got != "/proj" {
		t.Errorf("empty raw under test harness = %q, want root", got)
	}

	SetTestMode(false)
	if got := p.Absolutize("", "/proj"); got != "" {
		t.Errorf("empty raw = %q, want empty", got)
	}
	SetTestMode(true)
}

func TestAbsolutizeTildeBeforeRelativity(t *testing.T) {
	p := newNormalizer(newFakeFS(), host.FamilyUnix)

	// A tilde path never resolves against the root.
	got := p.Absolutize("~/x", "/proj")
	if got != "/home/u/x" {
		t.Errorf("Absolutize(~/x) = %q", got)
	}
}

func TestResolveExecutableDirectHit(t *testing.T) {
	p := newNormalizer(newFakeFS("/usr/bin/python3"), host.FamilyUnix)

	if got := p.ResolveExecutable("/usr/bin/python3"); got != "/usr/bin/python3" {
		t.Errorf("existing interpreter changed: %q", got)
	}
}

func TestResolveExecutableDirProbe(t *testing.T) {
	p := newNormalizer(newFakeFS("/opt/env/bin/python3.8"), host.FamilyUnix)

	if got := p.ResolveExecutable("/opt/env"); got != "/opt/env/bin/python3.8" {
		t.Errorf("ResolveExecutable(/opt/env) = %q, want /opt/env/bin/python3.8", got)
	}
}

func TestResolveExecutableNameOrder(t *testing.T) {
	// The unqualified name beats versioned ones.
	p := newNormalizer(newFakeFS(
		"/opt/env/bin/python",
		"/opt/env/bin/python3.8",
	), host.FamilyUnix)

	if got := p.ResolveExecutable("/opt/env"); got != "/opt/env/bin/python" {
		t.Errorf("ResolveExecutable = %q, want unqualified name first", got)
	}
}

func TestResolveExecutableNoMatchUnchanged(t *testing.T) {
	p := newNormalizer(newFakeFS(), host.FamilyUnix)

	got := p.ResolveExecutable("/opt/empty")
	if got != "/opt/empty" {
		t.Fatalf("ResolveExecutable = %q, want original", got)
	}
	// Idempotent on its own output.
	if again := p.ResolveExecutable(got); again != got {
		t.Errorf("second pass = %q, want %q", again, got)
	}
}

func TestResolveExecutableWindowsLayout(t *testing.T) {
	p := newNormalizer(newFakeFS(
		filepath.Join("/opt/env", "Scripts", "python.exe"),
	), host.FamilyWindows)

	want := filepath.Join("/opt/env", "Scripts", "python.exe")
	if got := p.ResolveExecutable("/opt/env"); got != want {
		t.Errorf("ResolveExecutable = %q, want %q", got, want)
	}
}

func TestResolveExecutableCaseSensitivity(t *testing.T) {
	path := "/opt/env/Python3" // capital P

	unix := newNormalizer(newFakeFS(path), host.FamilyUnix)
	if got := unix.ResolveExecutable(path); got != path {
		t.Errorf("unix result = %q", got)
	}
	// On POSIX the prefix check is case-sensitive, so the existing file
	// is not accepted as an interpreter and the directory probe finds
	// nothing either: the input comes back unchanged.
	if unix.isInterpreter(path) {
		t.Error("capitalized name accepted on POSIX")
	}

	win := newNormalizer(newFakeFS(path), host.FamilyWindows)
	if !win.isInterpreter(path) {
		t.Error("capitalized name rejected on Windows family")
	}
}

func TestResolveExecutableProbePanic(t *testing.T) {
	p := newNormalizer(panicFS{}, host.FamilyUnix)

	if got := p.ResolveExecutable("/opt/env"); got != "/opt/env" {
		t.Errorf("probe panic should degrade to original, got %q", got)
	}
}
