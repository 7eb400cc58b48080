package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ben-ranford/deamdify/internal/testutil"
)

func TestRunHelp(t *testing.T) {
	in := strings.NewReader("")
	var out bytes.Buffer
	var errOut bytes.Buffer

	code := run([]string{"--help"}, in, &out, &errOut)
	if code != 0 {
		t.Fatalf("expected exit code 0 for help, got %d", code)
	}
	if !strings.Contains(out.String(), "Usage:") {
		t.Fatalf("expected usage output on stdout, got %q", out.String())
	}
	if errOut.Len() != 0 {
		t.Fatalf("expected no stderr output for help, got %q", errOut.String())
	}
}

func TestRunParseError(t *testing.T) {
	in := strings.NewReader("")
	var out bytes.Buffer
	var errOut bytes.Buffer

	code := run([]string{"convert"}, in, &out, &errOut)
	if code != 2 {
		t.Fatalf("expected parse error exit code 2, got %d", code)
	}
	if !strings.Contains(errOut.String(), "missing input path") {
		t.Fatalf("expected parse error details on stderr, got %q", errOut.String())
	}
	if !strings.Contains(errOut.String(), "Usage:") {
		t.Fatalf("expected usage text on stderr for parse error, got %q", errOut.String())
	}
	if out.Len() != 0 {
		t.Fatalf("expected no stdout output for parse error, got %q", out.String())
	}
}

func TestRunStreamConvertsStdin(t *testing.T) {
	dir := t.TempDir()
	in := strings.NewReader("define(['a'], function (a) {\n  return a;\n});\n")
	var out bytes.Buffer
	var errOut bytes.Buffer

	code := run([]string{"--repo", dir}, in, &out, &errOut)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d (%s)", code, errOut.String())
	}
	if want := "var a = require('a');\nmodule.exports = a;\n"; out.String() != want {
		t.Fatalf("expected %q, got %q", want, out.String())
	}
}

func TestRunCheckExitCode(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "a.js"), "define(function () { return 1; });\n")
	var out bytes.Buffer
	var errOut bytes.Buffer

	code := run([]string{"check", "--repo", dir, dir}, strings.NewReader(""), &out, &errOut)
	if code != 3 {
		t.Fatalf("expected exit code 3 when wrappers are found, got %d (%s)", code, errOut.String())
	}
	if !strings.Contains(out.String(), "amd: 1") {
		t.Fatalf("expected report on stdout, got %q", out.String())
	}
}
