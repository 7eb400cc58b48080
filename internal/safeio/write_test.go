package safeio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFileUnderCreatesParents(t *testing.T) {
	rootDir := t.TempDir()
	targetPath := filepath.Join(rootDir, "out", "nested", "a.js")

	if err := WriteFileUnder(rootDir, targetPath, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFileUnder returned error: %v", err)
	}
	data, err := os.ReadFile(targetPath)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "x" {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestWriteFileUnderKeepsExistingMode(t *testing.T) {
	rootDir := t.TempDir()
	targetPath := filepath.Join(rootDir, "a.js")
	if err := os.WriteFile(targetPath, []byte("old content"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if err := WriteFileUnder(rootDir, targetPath, []byte("new"), 0o644); err != nil {
		t.Fatalf("WriteFileUnder returned error: %v", err)
	}
	info, err := os.Stat(targetPath)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o600 {
		t.Fatalf("expected mode 0600 to be kept, got %o", got)
	}
	data, _ := os.ReadFile(targetPath)
	if string(data) != "new" {
		t.Fatalf("expected file to be truncated, got %q", data)
	}
}

func TestWriteFileUnderRejectsEscapes(t *testing.T) {
	parentDir := t.TempDir()
	rootDir := filepath.Join(parentDir, "root")
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		t.Fatalf("create root dir: %v", err)
	}

	err := WriteFileUnder(rootDir, filepath.Join(parentDir, "escape.js"), []byte("x"), 0o644)
	if err == nil || !strings.Contains(err.Error(), "path escapes root") {
		t.Fatalf("expected escape error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(parentDir, "escape.js")); !os.IsNotExist(statErr) {
		t.Fatalf("expected nothing to be written outside the root")
	}

	if err := WriteFileUnder(rootDir, rootDir, []byte("x"), 0o644); err == nil {
		t.Fatal("expected writing to the root itself to fail")
	}
}

func TestIsUnder(t *testing.T) {
	rootDir := t.TempDir()
	if !IsUnder(rootDir, filepath.Join(rootDir, "a", "b.js")) {
		t.Fatal("expected nested path to be under root")
	}
	if IsUnder(rootDir, filepath.Dir(rootDir)) {
		t.Fatal("expected parent path to be outside root")
	}
}
