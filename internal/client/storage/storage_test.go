package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_FileNotExist(t *testing.T) {
	ls := New(filepath.Join(t.TempDir(), "storage.json"))
	if err := ls.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(ls.Keys()) != 0 {
		t.Errorf("expected no entries, got %v", ls.Keys())
	}
}

func TestLoad_FileExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	buf, _ := json.Marshal(map[string]any{"entries": map[string]string{"token": "abc"}})
	if err := os.WriteFile(path, buf, 0600); err != nil {
		t.Fatal(err)
	}

	ls := New(path)
	if err := ls.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if v, ok := ls.Get("token"); !ok || v != "abc" {
		t.Errorf("Get(token) = %q, %v", v, ok)
	}
}

func TestLoad_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	ls := New(path)
	ls.Set("stale", "x")
	if err := ls.Load(); err == nil {
		t.Fatal("expected decode error")
	}
	if len(ls.Keys()) != 0 {
		t.Errorf("corrupt load kept entries: %v", ls.Keys())
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "storage.json")
	ls := New(path)
	ls.Set("token", "t1")
	ls.Set("user", `{"_id":"1"}`)
	if err := ls.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o; want 600", perm)
	}

	reloaded := New(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := reloaded.Keys(); len(got) != 2 || got[0] != "token" || got[1] != "user" {
		t.Errorf("unexpected keys after reload: %v", got)
	}
}

func TestSetGetRemove(t *testing.T) {
	ls := &LocalStorage{}
	ls.Set("a", "1")
	if v, ok := ls.Get("a"); !ok || v != "1" {
		t.Errorf("Get(a) = %q, %v", v, ok)
	}

	ls.Set("a", "")
	if v, ok := ls.Get("a"); !ok || v != "" {
		t.Errorf("empty value should still be present, got %q, %v", v, ok)
	}

	ls.Remove("a")
	if _, ok := ls.Get("a"); ok {
		t.Error("Get after Remove should report missing")
	}
	ls.Remove("never-set")
}
