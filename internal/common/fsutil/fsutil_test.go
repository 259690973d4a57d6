package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	cases := map[string]string{
		"":            "",
		"~":           home,
		"~/data/reps": filepath.Join(home, "data", "reps"),
		"/abs/path":   "/abs/path",
	}
	for in, want := range cases {
		got, err := ExpandHome(in)
		if err != nil {
			t.Fatalf("ExpandHome(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPathExists(t *testing.T) {
	dir := t.TempDir()
	if !PathExists(dir) {
		t.Fatal("temp dir should exist")
	}
	if PathExists(filepath.Join(dir, "nope")) {
		t.Fatal("missing path reported as existing")
	}
}

func TestEnsureDir(t *testing.T) {
	base := t.TempDir()
	p, err := EnsureDir(filepath.Join(base, "a", "b"))
	if err != nil {
		t.Fatalf("EnsureDir: %v", err)
	}
	if !PathExists(p) {
		t.Fatalf("EnsureDir did not create %s", p)
	}
	// second call is a no-op
	if _, err := EnsureDir(p); err != nil {
		t.Fatalf("EnsureDir twice: %v", err)
	}
}
