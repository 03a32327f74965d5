package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/Coffigny94/pymanager/internal/host"
	"github.com/Coffigny94/pymanager/internal/notify"
)

func newTestStore(t *testing.T, userTOML, workspaceJSON string) (*Store, string) {
	t.Helper()

	base := t.TempDir()
	userPath := filepath.Join(base, "settings.toml")
	if userTOML != "" {
		if err := os.WriteFile(userPath, []byte(userTOML), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	folder := filepath.Join(base, "proj")
	if err := os.MkdirAll(filepath.Join(folder, ".vscode"), 0o755); err != nil {
		t.Fatal(err)
	}
	if workspaceJSON != "" {
		wsPath := filepath.Join(folder, ".vscode", "settings.json")
		if err := os.WriteFile(wsPath, []byte(workspaceJSON), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	s := New(
		WithUserSettingsPath(userPath),
		WithWorkspace(host.NewStaticWorkspace(folder)),
		WithDefaults(map[string]any{
			"python": map[string]any{"autoUpdate": true},
		}),
	)
	if err := s.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	t.Cleanup(s.Close)
	return s, folder
}

func TestStoreLayerPrecedence(t *testing.T) {
	s, folder := newTestStore(t,
		"[python]\ninterpreterPath = \"/usr/bin/python3\"\nenvFile = \".env\"\n",
		`{"python.interpreterPath": "/proj/venv/bin/python"}`,
	)

	// Inside the folder, workspace wins.
	val, ok := s.GetString("python.interpreterPath", filepath.Join(folder, "main.py"))
	if !ok || val != "/proj/venv/bin/python" {
		t.Errorf("workspace value = %q ok=%v", val, ok)
	}

	// Workspace layer falls through to user for missing keys.
	val, ok = s.GetString("python.envFile", folder)
	if !ok || val != ".env" {
		t.Errorf("user fallthrough = %q ok=%v", val, ok)
	}

	// Outside the folder only defaults and user apply.
	val, ok = s.GetString("python.interpreterPath", "")
	if !ok || val != "/usr/bin/python3" {
		t.Errorf("global value = %q ok=%v", val, ok)
	}

	// Defaults apply everywhere.
	b, ok := s.GetBool("python.autoUpdate", folder)
	if !ok || !b {
		t.Errorf("default autoUpdate = %v ok=%v", b, ok)
	}
}

func TestStoreScopeFor(t *testing.T) {
	s, folder := newTestStore(t, "", "")

	tests := []struct {
		name     string
		resource string
		want     string
	}{
		{"inside folder", filepath.Join(folder, "src", "app.py"), filepath.Clean(folder)},
		{"folder itself", folder, filepath.Clean(folder)},
		{"outside", string(filepath.Separator) + "elsewhere", ""},
		{"sibling prefix", folder + "x", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.ScopeFor(tt.resource); got != tt.want {
				t.Errorf("ScopeFor(%q) = %q, want %q", tt.resource, got, tt.want)
			}
		})
	}
}

func TestStoreUpdateWorkspace(t *testing.T) {
	s, folder := newTestStore(t, "", `{"python.envFile": ".env"}`)

	var tokens []notify.ChangeToken
	sub := s.OnDidChange(func(token notify.ChangeToken) {
		tokens = append(tokens, token)
	})
	defer sub.Unsubscribe()

	resource := filepath.Join(folder, "main.py")
	if err := s.Update("python.condaPath", "/opt/conda/bin/conda", resource); err != nil {
		t.Fatal(err)
	}

	// In-memory view reflects the write.
	val, ok := s.GetString("python.condaPath", resource)
	if !ok || val != "/opt/conda/bin/conda" {
		t.Errorf("Get after Update = %q ok=%v", val, ok)
	}

	// The file keeps the flat dotted-key convention.
	data, err := os.ReadFile(filepath.Join(folder, ".vscode", "settings.json"))
	if err != nil {
		t.Fatal(err)
	}
	if got := gjson.GetBytes(data, `python\.condaPath`).String(); got != "/opt/conda/bin/conda" {
		t.Errorf("file value = %q; content: %s", got, data)
	}
	if got := gjson.GetBytes(data, `python\.envFile`).String(); got != ".env" {
		t.Errorf("existing key lost: %s", data)
	}

	if len(tokens) != 1 {
		t.Fatalf("got %d tokens, want 1", len(tokens))
	}
	if tokens[0].Namespace != "python" || tokens[0].Key != "python.condaPath" {
		t.Errorf("token = %+v", tokens[0])
	}
	if tokens[0].Scope != filepath.Clean(folder) {
		t.Errorf("token scope = %q, want %q", tokens[0].Scope, folder)
	}
}

func TestStoreUpdateUser(t *testing.T) {
	s, _ := newTestStore(t, "[python]\nenvFile = \".env\"\n", "")

	if err := s.Update("python.interpreterPath", "/usr/local/bin/python3", ""); err != nil {
		t.Fatal(err)
	}

	val, ok := s.GetString("python.interpreterPath", "")
	if !ok || val != "/usr/local/bin/python3" {
		t.Errorf("Get after Update = %q ok=%v", val, ok)
	}

	// A fresh store sees the persisted value.
	reloaded := New(
		WithUserSettingsPath(s.userPath),
		WithWorkspace(host.NewStaticWorkspace()),
	)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}
	defer reloaded.Close()

	val, ok = reloaded.GetString("python.interpreterPath", "")
	if !ok || val != "/usr/local/bin/python3" {
		t.Errorf("persisted value = %q ok=%v", val, ok)
	}
	val, ok = reloaded.GetString("python.envFile", "")
	if !ok || val != ".env" {
		t.Errorf("existing user key lost: %q ok=%v", val, ok)
	}
}

func TestStoreUpdateValidation(t *testing.T) {
	s, _ := newTestStore(t, "", "")

	if err := s.Update("", "x", ""); err != ErrEmptyKey {
		t.Errorf("empty key error = %v, want ErrEmptyKey", err)
	}

	unloaded := New(WithUserSettingsPath(filepath.Join(t.TempDir(), "s.toml")))
	defer unloaded.Close()
	if err := unloaded.Update("python.envFile", ".env", ""); err != ErrNotLoaded {
		t.Errorf("unloaded error = %v, want ErrNotLoaded", err)
	}
}

func TestStoreInspect(t *testing.T) {
	s, folder := newTestStore(t,
		"[python]\nautoUpdate = false\n",
		`{"python.autoUpdate": true}`,
	)

	insp := s.Inspect("python.autoUpdate", folder)
	if insp.DefaultValue != true {
		t.Errorf("default = %v", insp.DefaultValue)
	}
	if insp.UserValue != false {
		t.Errorf("user = %v", insp.UserValue)
	}
	if insp.WorkspaceValue != true {
		t.Errorf("workspace = %v", insp.WorkspaceValue)
	}
	if insp.Effective != true {
		t.Errorf("effective = %v", insp.Effective)
	}
	if insp.Scope != filepath.Clean(folder) {
		t.Errorf("scope = %q", insp.Scope)
	}
}

func TestStoreFolderChangeRebuildsScopes(t *testing.T) {
	base := t.TempDir()
	folderA := filepath.Join(base, "a")
	folderB := filepath.Join(base, "b")
	for _, dir := range []string{folderA, folderB} {
		if err := os.MkdirAll(filepath.Join(dir, ".vscode"), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(folderB, ".vscode", "settings.json"),
		[]byte(`{"python.envFile": "b.env"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	ws := host.NewStaticWorkspace(folderA)
	s := New(
		WithUserSettingsPath(filepath.Join(base, "settings.toml")),
		WithWorkspace(ws),
	)
	if err := s.Load(); err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var wide int
	sub := s.OnDidChange(func(token notify.ChangeToken) {
		if token.Namespace == "" && token.Scope == "" {
			wide++
		}
	})
	defer sub.Unsubscribe()

	ws.ChangeFolders(folderB)

	if got := s.ScopeFor(filepath.Join(folderA, "x.py")); got != "" {
		t.Errorf("departed folder still scoped: %q", got)
	}
	val, ok := s.GetString("python.envFile", filepath.Join(folderB, "x.py"))
	if !ok || val != "b.env" {
		t.Errorf("new folder settings = %q ok=%v", val, ok)
	}
	if wide != 1 {
		t.Errorf("store-wide tokens = %d, want 1", wide)
	}
}

func TestDiffNamespaces(t *testing.T) {
	old := map[string]any{
		"python": map[string]any{"envFile": ".env"},
		"editor": map[string]any{"tabSize": 4},
	}
	cur := map[string]any{
		"python": map[string]any{"envFile": ".env.local"},
		"editor": map[string]any{"tabSize": 4},
		"files":  map[string]any{"eol": "\n"},
	}

	got := diffNamespaces(old, cur)
	want := []string{"files", "python"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("diffNamespaces = %v, want %v", got, want)
	}

	if got := diffNamespaces(old, old); len(got) != 0 {
		t.Errorf("identical trees diff = %v", got)
	}
}
