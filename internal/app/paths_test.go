package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDBPathPrecedence(t *testing.T) {
	t.Parallel()

	if got, _ := DBPath(" /tmp/flag.db ", "/tmp/env.db"); got != "/tmp/flag.db" {
		t.Fatalf("expected flag path, got %q", got)
	}
	if got, _ := DBPath("", "/tmp/env.db"); got != "/tmp/env.db" {
		t.Fatalf("expected env path, got %q", got)
	}
	got, err := DBPath("", "")
	if err != nil {
		t.Skipf("no user config dir: %v", err)
	}
	if filepath.Base(got) != "calorix.db" || filepath.Base(filepath.Dir(got)) != "calorix" {
		t.Fatalf("unexpected default path %q", got)
	}
}

func TestEnsureDBDirCreatesParents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b", "calorix.db")
	if err := EnsureDBDir(path); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}
	if info, err := os.Stat(filepath.Dir(path)); err != nil || !info.IsDir() {
		t.Fatalf("expected directory, got %v %v", info, err)
	}
}
