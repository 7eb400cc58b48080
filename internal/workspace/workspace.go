// Package workspace resolves command-line inputs into the source files a batch
// run will transcode.
package workspace

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ben-ranford/deamdify/internal/gitexec"
)

type Options struct {
	Extensions  []string
	ExcludeDirs []string
}

// Source is one file selected for a batch run. Root is the directory the input
// argument named (or the parent of a file argument) and Rel is the file path
// relative to Root.
type Source struct {
	Path    string
	Root    string
	Rel     string
	Display string
}

func NormalizeRepoPath(path string) (string, error) {
	if path == "" {
		path = "."
	}
	return filepath.Abs(path)
}

// CurrentCommitSHA returns the HEAD commit of the git repository containing
// repoPath.
func CurrentCommitSHA(ctx context.Context, repoPath string) (string, error) {
	normalized, err := NormalizeRepoPath(repoPath)
	if err != nil {
		return "", err
	}
	sha, err := gitexec.Output(ctx, normalized, "rev-parse", "--verify", "HEAD")
	if err != nil {
		return "", fmt.Errorf("resolve git commit sha: %w", err)
	}
	return sha, nil
}

// Collect expands inputs into sources. Directories are walked in lexical order,
// skipping excluded directory names; files named explicitly are always kept.
// A file reachable from several inputs is returned once, for its first input.
func Collect(ctx context.Context, inputs []string, opts Options) ([]Source, []string, error) {
	var (
		sources  []Source
		warnings []string
		seen     = make(map[string]bool)
	)
	for _, input := range inputs {
		found, err := collectInput(ctx, input, opts)
		if err != nil {
			return nil, nil, err
		}
		for _, source := range found {
			if seen[source.Path] {
				continue
			}
			seen[source.Path] = true
			sources = append(sources, source)
		}
		if len(found) == 0 {
			warnings = append(warnings, fmt.Sprintf("no source files found under %s", input))
		}
	}
	return sources, warnings, nil
}

func collectInput(ctx context.Context, input string, opts Options) ([]Source, error) {
	abs, err := NormalizeRepoPath(input)
	if err != nil {
		return nil, fmt.Errorf("resolve input path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat input %s: %w", input, err)
	}
	if !info.IsDir() {
		return []Source{{
			Path:    abs,
			Root:    filepath.Dir(abs),
			Rel:     filepath.Base(abs),
			Display: filepath.ToSlash(filepath.Clean(input)),
		}}, nil
	}

	var sources []Source
	err = filepath.WalkDir(abs, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if entry.IsDir() {
			if path != abs && slices.Contains(opts.ExcludeDirs, entry.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() || !hasExtension(path, opts.Extensions) {
			return nil
		}
		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return err
		}
		sources = append(sources, Source{
			Path:    path,
			Root:    abs,
			Rel:     rel,
			Display: filepath.ToSlash(filepath.Join(input, rel)),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", input, err)
	}
	return sources, nil
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext != "" && slices.Contains(extensions, ext)
}
