package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAtomicWrite_ReplacesContentWithPerms(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte("old"), 0644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := AtomicWrite(path, []byte("new"), 0600); err != nil {
		t.Fatalf("AtomicWrite: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "new" {
		t.Fatalf("content = %q, want %q", data, "new")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("mode = %o, want 0600", info.Mode().Perm())
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestAtomicWrite_MissingParent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "config.json")
	if err := AtomicWrite(path, []byte("x"), 0600); err == nil {
		t.Fatalf("expected error when parent directory is missing")
	}
}

func TestEnsurePrivateDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", ".secure_key")
	if err := EnsurePrivateDir(dir, 0700); err != nil {
		t.Fatalf("EnsurePrivateDir: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.IsDir() || info.Mode().Perm() != 0700 {
		t.Fatalf("unexpected dir mode %v", info.Mode())
	}
}

func TestFreePath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	got, err := FreePath(path, ".bak")
	if err != nil {
		t.Fatalf("FreePath: %v", err)
	}
	if got != path+".bak" {
		t.Fatalf("FreePath() = %q, want %q", got, path+".bak")
	}

	if err := os.WriteFile(path+".bak", nil, 0600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err = FreePath(path, ".bak")
	if err != nil {
		t.Fatalf("FreePath: %v", err)
	}
	if got != path+".bak.1" {
		t.Fatalf("FreePath() = %q, want %q", got, path+".bak.1")
	}
}

func TestRemoveTree(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "work")
	if err := os.MkdirAll(filepath.Join(target, "cache"), 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(target, "config"), []byte("client_id=x"), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := RemoveTree(target); err != nil {
		t.Fatalf("RemoveTree: %v", err)
	}
	if _, err := os.Stat(target); !os.IsNotExist(err) {
		t.Fatalf("expected %s to be removed, stat err = %v", target, err)
	}
	if err := RemoveTree(target); err != nil {
		t.Fatalf("RemoveTree on missing dir should succeed: %v", err)
	}
}

func TestRemoveTree_Refusals(t *testing.T) {
	if err := RemoveTree("/"); err == nil {
		t.Fatalf("expected refusal for root")
	}
	if err := RemoveTree(""); err == nil {
		t.Fatalf("expected refusal for empty path")
	}

	root := t.TempDir()
	realDir := filepath.Join(root, "real")
	if err := os.MkdirAll(realDir, 0700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	link := filepath.Join(root, "link")
	if err := os.Symlink(realDir, link); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	if err := RemoveTree(link); err == nil {
		t.Fatalf("expected refusal for symlink")
	}
	if _, err := os.Stat(realDir); err != nil {
		t.Fatalf("symlink target should survive: %v", err)
	}
}
