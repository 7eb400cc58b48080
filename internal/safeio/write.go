package safeio

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFileUnder writes data to targetPath only if it resolves under rootDir,
// creating missing parent directories inside the root. An existing file keeps
// its permission bits.
func WriteFileUnder(rootDir, targetPath string, data []byte, perm os.FileMode) error {
	rel, err := relativeUnder(rootDir, targetPath)
	if err != nil {
		return err
	}
	if rel == "." {
		return fmt.Errorf("target is the root directory: %s", targetPath)
	}
	rootAbs, err := filepath.Abs(rootDir)
	if err != nil {
		return fmt.Errorf("resolve root path: %w", err)
	}

	root, err := os.OpenRoot(rootAbs)
	if err != nil {
		return fmt.Errorf("open root: %w", err)
	}
	defer root.Close()

	if dir := filepath.Dir(rel); dir != "." {
		if err := root.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create parent dir: %w", err)
		}
	}
	if info, err := root.Stat(rel); err == nil {
		perm = info.Mode().Perm()
	}

	file, err := root.OpenFile(rel, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}
