package safeio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ben-ranford/deamdify/internal/testutil"
)

const amdSource = "define(['a'], function (a) {\r\n  return a;\r\n});\r\n"

func TestReadFileUnderReturnsModuleBytesUnchanged(t *testing.T) {
	rootDir := t.TempDir()
	sourcePath := filepath.Join(rootDir, "src", "lib", "mod.js")
	testutil.MustWriteFile(t, sourcePath, amdSource)

	data, err := ReadFileUnder(rootDir, sourcePath)
	if err != nil {
		t.Fatalf("ReadFileUnder returned error: %v", err)
	}
	if string(data) != amdSource {
		t.Fatalf("expected source bytes to be preserved, got %q", data)
	}
}

func TestReadFileUnderResolvesRelativePathsFromWorkingDirectory(t *testing.T) {
	rootDir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(rootDir, "src", "mod.js"), amdSource)
	testutil.Chdir(t, rootDir)

	data, err := ReadFileUnder(".", filepath.Join("src", "mod.js"))
	if err != nil {
		t.Fatalf("ReadFileUnder returned error: %v", err)
	}
	if string(data) != amdSource {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestReadFileUnderRejectsSiblingModules(t *testing.T) {
	parentDir := t.TempDir()
	rootDir := filepath.Join(parentDir, "project")
	testutil.MustWriteFile(t, filepath.Join(rootDir, "mod.js"), amdSource)
	siblingPath := filepath.Join(parentDir, "other", "mod.js")
	testutil.MustWriteFile(t, siblingPath, amdSource)

	_, err := ReadFileUnder(rootDir, siblingPath)
	if err == nil || !strings.Contains(err.Error(), "path escapes root") {
		t.Fatalf("expected escape error, got %v", err)
	}
	if IsUnder(rootDir, siblingPath) {
		t.Fatalf("expected %s to be outside %s", siblingPath, rootDir)
	}
}

func TestReadFileUnderRejectsSymlinkLeavingRoot(t *testing.T) {
	parentDir := t.TempDir()
	rootDir := filepath.Join(parentDir, "project")
	outsidePath := filepath.Join(parentDir, "outside.js")
	testutil.MustWriteFile(t, outsidePath, amdSource)
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		t.Fatalf("create root dir: %v", err)
	}
	linkPath := filepath.Join(rootDir, "linked.js")
	if err := os.Symlink(outsidePath, linkPath); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if _, err := ReadFileUnder(rootDir, linkPath); err == nil {
		t.Fatal("expected symlink pointing outside the root to be rejected")
	}
}

func TestReadFileUnderMissingModule(t *testing.T) {
	rootDir := t.TempDir()

	_, err := ReadFileUnder(rootDir, filepath.Join(rootDir, "missing.js"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestReadFileUnderRejectsFileAsRoot(t *testing.T) {
	rootFile := testutil.WriteTempFile(t, "mod.js", amdSource)

	_, err := ReadFileUnder(rootFile, rootFile)
	if err == nil || !strings.Contains(err.Error(), "open root") {
		t.Fatalf("expected open root error, got %v", err)
	}
}

func TestReadFileReadsConfigOutsideRoot(t *testing.T) {
	configPath := testutil.WriteTempFile(t, "shared.yml", "quote: double\n")

	data, err := ReadFile(configPath)
	if err != nil {
		t.Fatalf("ReadFile returned error: %v", err)
	}
	if string(data) != "quote: double\n" {
		t.Fatalf("unexpected content: %q", data)
	}
	if _, err := ReadFile(filepath.Join(filepath.Dir(configPath), "missing.yml")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
