package host

import (
	"sort"
	"strings"
	"testing"
)

func TestStaticWorkspaceFolders(t *testing.T) {
	ws := NewStaticWorkspace("/a", "/b")

	folders := ws.Folders()
	if len(folders) != 2 {
		t.Fatalf("got %d folders", len(folders))
	}
	if folders[0].Path != "/a" || folders[0].Index != 0 {
		t.Errorf("first folder = %+v", folders[0])
	}
	if folders[1].Path != "/b" || folders[1].Index != 1 {
		t.Errorf("second folder = %+v", folders[1])
	}
}

func TestStaticWorkspaceChangeNotifies(t *testing.T) {
	ws := NewStaticWorkspace("/a")

	var fired int
	unsub := ws.OnDidChangeFolders(func() { fired++ })

	ws.ChangeFolders("/b", "/c")
	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
	if got := ws.Folders(); len(got) != 2 || got[0].Path != "/b" {
		t.Errorf("folders after change = %+v", got)
	}

	unsub()
	ws.ChangeFolders("/d")
	if fired != 1 {
		t.Errorf("unsubscribed listener fired, count = %d", fired)
	}
}

func TestEnvironSorted(t *testing.T) {
	t.Setenv("PYMANAGER_TEST_VAR", "1")

	env := Environ()
	if !sort.StringsAreSorted(env) {
		t.Error("Environ not sorted")
	}

	found := false
	for _, kv := range env {
		if strings.HasPrefix(kv, "PYMANAGER_TEST_VAR=") {
			found = true
		}
		if !strings.Contains(kv, "=") {
			t.Errorf("malformed entry %q", kv)
		}
	}
	if !found {
		t.Error("set variable missing from Environ")
	}
}

func TestEnvPreferredExecutable(t *testing.T) {
	t.Setenv("PYMANAGER_PYTHON_TEST", "/opt/py/bin/python")

	pref := EnvPreferredExecutable{Var: "PYMANAGER_PYTHON_TEST"}
	if got := pref.Get("/any/resource"); got != "/opt/py/bin/python" {
		t.Errorf("Get = %q", got)
	}

	var none PreferredExecutable = NoPreferredExecutable{}
	if got := none.Get("x"); got != "" {
		t.Errorf("NoPreferredExecutable.Get = %q", got)
	}
}
