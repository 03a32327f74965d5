package loader

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTOMLLoader(t *testing.T) {
	path := writeFile(t, t.TempDir(), "settings.toml", `
[python]
interpreterPath = "/usr/bin/python3"
venvFolders = ["envs", ".venvs"]

[python.terminal]
activateEnvironment = true
`)

	tree, err := NewTOMLLoader(path).Load()
	if err != nil {
		t.Fatal(err)
	}

	python, ok := tree["python"].(map[string]any)
	if !ok {
		t.Fatalf("python namespace missing: %v", tree)
	}
	if python["interpreterPath"] != "/usr/bin/python3" {
		t.Errorf("interpreterPath = %v", python["interpreterPath"])
	}
	term, ok := python["terminal"].(map[string]any)
	if !ok || term["activateEnvironment"] != true {
		t.Errorf("terminal sub-table = %v", python["terminal"])
	}
}

func TestTOMLLoaderMissingFile(t *testing.T) {
	tree, err := NewTOMLLoader(filepath.Join(t.TempDir(), "absent.toml")).Load()
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if tree != nil {
		t.Errorf("missing file should yield nil tree, got %v", tree)
	}
}

func TestTOMLLoaderParseError(t *testing.T) {
	path := writeFile(t, t.TempDir(), "broken.toml", "[python\n")

	_, err := NewTOMLLoader(path).Load()
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.Path != path {
		t.Errorf("ParseError.Path = %q, want %q", perr.Path, path)
	}
}

func TestJSONLoaderFlatKeys(t *testing.T) {
	path := writeFile(t, t.TempDir(), "settings.json", `{
  "python.interpreterPath": "${workspaceFolder}/venv/bin/python",
  "python.terminal.activateEnvironment": true,
  "python": { "envFile": ".env" }
}`)

	tree, err := NewJSONLoader(path).Load()
	if err != nil {
		t.Fatal(err)
	}

	python, ok := tree["python"].(map[string]any)
	if !ok {
		t.Fatalf("flat keys not expanded: %v", tree)
	}
	if python["interpreterPath"] != "${workspaceFolder}/venv/bin/python" {
		t.Errorf("interpreterPath = %v", python["interpreterPath"])
	}
	if python["envFile"] != ".env" {
		t.Errorf("nested object lost in merge: %v", python)
	}
	term, ok := python["terminal"].(map[string]any)
	if !ok || term["activateEnvironment"] != true {
		t.Errorf("terminal = %v", python["terminal"])
	}
}

func TestJSONLoaderInvalid(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
	}{
		{"malformed", `{"python":`},
		{"non-object", `[1, 2]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name+".json", tt.content)
			_, err := NewJSONLoader(path).Load()
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected ParseError, got %v", err)
			}
		})
	}
}

func TestExpandDottedKeys(t *testing.T) {
	got := ExpandDottedKeys(map[string]any{
		"python.venvFolders": []any{"envs"},
		"editor":             map[string]any{"tabSize": float64(4)},
	})

	want := map[string]any{
		"python": map[string]any{"venvFolders": []any{"envs"}},
		"editor": map[string]any{"tabSize": float64(4)},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExpandDottedKeys = %v, want %v", got, want)
	}
}
