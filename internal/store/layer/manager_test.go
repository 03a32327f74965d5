package layer

import (
	"errors"
	"reflect"
	"testing"
)

func TestManagerPriorityOrder(t *testing.T) {
	m := NewManager()
	m.AddLayer(NewWithData("workspace", SourceWorkspace, PriorityWorkspace, map[string]any{
		"python": map[string]any{"interpreterPath": "/ws/python"},
	}))
	m.AddLayer(NewWithData("defaults", SourceBuiltin, PriorityBuiltin, map[string]any{
		"python": map[string]any{"interpreterPath": "python", "autoUpdate": true},
	}))
	m.AddLayer(NewWithData("user", SourceUser, PriorityUser, map[string]any{
		"python": map[string]any{"interpreterPath": "/usr/bin/python3"},
	}))

	val, l, ok := m.Get("python.interpreterPath")
	if !ok {
		t.Fatal("key not found")
	}
	if val != "/ws/python" {
		t.Errorf("effective value = %v, want workspace value", val)
	}
	if l.Source != SourceWorkspace {
		t.Errorf("providing layer = %v, want workspace", l.Source)
	}

	// Keys absent from higher layers fall through.
	val, _, ok = m.Get("python.autoUpdate")
	if !ok || val != true {
		t.Errorf("fallthrough value = %v ok=%v, want true", val, ok)
	}
}

func TestManagerReplaceByName(t *testing.T) {
	m := NewManager()
	m.AddLayer(NewWithData("user", SourceUser, PriorityUser, map[string]any{"a": 1}))
	m.AddLayer(NewWithData("user", SourceUser, PriorityUser, map[string]any{"a": 2}))

	if m.LayerCount() != 1 {
		t.Fatalf("layer count = %d, want 1", m.LayerCount())
	}
	val, _, _ := m.Get("a")
	if val != 2 {
		t.Errorf("value = %v, want 2", val)
	}
}

func TestManagerSetReadOnly(t *testing.T) {
	m := NewManager()
	l := NewWithData("defaults", SourceBuiltin, PriorityBuiltin, map[string]any{})
	l.ReadOnly = true
	m.AddLayer(l)

	if err := m.Set("defaults", "python.envFile", ".env"); !errors.Is(err, ErrLayerReadOnly) {
		t.Fatalf("read-only write error = %v, want ErrLayerReadOnly", err)
	}
	if err := m.Set("missing", "python.envFile", ".env"); !errors.Is(err, ErrLayerNotFound) {
		t.Fatalf("missing layer write error = %v, want ErrLayerNotFound", err)
	}
}

func TestManagerMergeCaching(t *testing.T) {
	m := NewManager()
	m.AddLayer(NewWithData("user", SourceUser, PriorityUser, map[string]any{
		"python": map[string]any{"envFile": ".env"},
	}))

	merged := m.Merge()
	merged["python"].(map[string]any)["envFile"] = "tampered"

	again := m.Merge()
	if got := again["python"].(map[string]any)["envFile"]; got != ".env" {
		t.Errorf("Merge returned shared state, got %v", got)
	}
}

func TestDeepMergeNested(t *testing.T) {
	base := map[string]any{
		"python": map[string]any{
			"terminal": map[string]any{"activateEnvironment": true},
			"envFile":  ".env",
		},
	}
	over := map[string]any{
		"python": map[string]any{
			"terminal": map[string]any{"executeInFileDir": true},
		},
	}

	got := DeepMerge(base, over)
	term := got["python"].(map[string]any)["terminal"].(map[string]any)
	if term["activateEnvironment"] != true || term["executeInFileDir"] != true {
		t.Errorf("nested merge lost keys: %v", term)
	}
	if got["python"].(map[string]any)["envFile"] != ".env" {
		t.Error("sibling key lost in merge")
	}
}

func TestPathHelpers(t *testing.T) {
	data := map[string]any{}
	if !SetByPath(data, "python.terminal.launchArgs", []any{"-q"}) {
		t.Fatal("SetByPath failed")
	}

	val, ok := GetByPath(data, "python.terminal.launchArgs")
	if !ok || !reflect.DeepEqual(val, []any{"-q"}) {
		t.Fatalf("GetByPath = %v ok=%v", val, ok)
	}

	if !DeleteByPath(data, "python.terminal.launchArgs") {
		t.Fatal("DeleteByPath failed")
	}
	if _, ok := GetByPath(data, "python.terminal.launchArgs"); ok {
		t.Error("key survived deletion")
	}

	if ns := Namespace("python.envFile"); ns != "python" {
		t.Errorf("Namespace = %q, want python", ns)
	}
}
