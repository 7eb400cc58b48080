// Package gitexec runs the system git binary with a fixed path and an
// environment stripped of repository overrides.
package gitexec

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
)

const SafeSystemPath = "PATH=/usr/bin:/bin:/usr/sbin:/sbin"

var executableCandidates = []string{"/usr/bin/git", "/bin/git"}

var strippedEnvPrefixes = []string{"GIT_DIR=", "GIT_WORK_TREE=", "GIT_INDEX_FILE=", "PATH="}

func ResolveBinaryPath() (string, error) {
	for _, candidate := range executableCandidates {
		if ExecutableAvailable(candidate) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("git executable not found")
}

func SanitizedEnv() []string {
	env := os.Environ()
	filtered := make([]string, 0, len(env)+1)
	for _, entry := range env {
		if slices.ContainsFunc(strippedEnvPrefixes, func(prefix string) bool { return strings.HasPrefix(entry, prefix) }) {
			continue
		}
		filtered = append(filtered, entry)
	}
	filtered = append(filtered, SafeSystemPath)
	return filtered
}

func ExecutableAvailable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	return info.Mode()&0o111 != 0
}

// Output runs git -C dir with args and returns trimmed stdout. Stderr is
// folded into the error.
func Output(ctx context.Context, dir string, args ...string) (string, error) {
	gitPath, err := ResolveBinaryPath()
	if err != nil {
		return "", err
	}
	// #nosec G204 -- the binary path is fixed and callers pass literal subcommands.
	cmd := exec.CommandContext(ctx, gitPath, append([]string{"-C", dir}, args...)...)
	cmd.Env = SanitizedEnv()
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(string(output)), nil
}
