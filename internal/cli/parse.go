package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/ben-ranford/deamdify/internal/amd"
	"github.com/ben-ranford/deamdify/internal/app"
	"github.com/ben-ranford/deamdify/internal/report"
)

var (
	ErrHelpRequested      = errors.New("help requested")
	ErrConflictingOutputs = errors.New("cannot use both --write and --out")
)

func ParseArgs(args []string) (app.Request, error) {
	req := app.DefaultRequest()
	if len(args) == 0 {
		return req, nil
	}

	if isHelpArg(args[0]) {
		return req, ErrHelpRequested
	}

	switch args[0] {
	case "convert":
		return parseBatch(app.ModeConvert, args[1:], req)
	case "check":
		return parseBatch(app.ModeCheck, args[1:], req)
	default:
		return parseStream(args, req)
	}
}

// commonFlags are shared by every mode.
type commonFlags struct {
	repoPath   *string
	configPath *string
	quote      *string
	noVerify   *bool
}

func registerCommonFlags(fs *flag.FlagSet, req app.Request) commonFlags {
	return commonFlags{
		repoPath:   fs.String("repo", req.RepoPath, "root for config discovery"),
		configPath: fs.String("config", req.ConfigPath, "config file path"),
		quote:      fs.String("quote", "", "quote style"),
		noVerify:   fs.Bool("no-verify", false, "skip output verification"),
	}
}

func (c commonFlags) apply(fs *flag.FlagSet, req app.Request) (app.Request, error) {
	visited := visitedFlags(fs)
	req.RepoPath = strings.TrimSpace(*c.repoPath)
	req.ConfigPath = strings.TrimSpace(*c.configPath)
	if visited["quote"] {
		if _, err := amd.ParseQuote(*c.quote); err != nil {
			return req, err
		}
		req.Overrides.Quote = c.quote
	}
	if visited["no-verify"] {
		verify := !*c.noVerify
		req.Overrides.Verify = &verify
	}
	return req, nil
}

func parseStream(args []string, req app.Request) (app.Request, error) {
	args = normalizeArgs(args)

	fs := flag.NewFlagSet("deamdify", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	common := registerCommonFlags(fs, req)

	if err := parseFlags(fs, args); err != nil {
		return req, err
	}

	remaining := fs.Args()
	if len(remaining) > 1 {
		return req, fmt.Errorf("too many arguments: expected at most one FILE, got %d", len(remaining))
	}
	req, err := common.apply(fs, req)
	if err != nil {
		return req, err
	}

	req.Mode = app.ModeStream
	if len(remaining) == 1 {
		req.Stream.InputPath = strings.TrimSpace(remaining[0])
	}
	return req, nil
}

func parseBatch(mode app.Mode, args []string, req app.Request) (app.Request, error) {
	args = normalizeArgs(args)

	fs := flag.NewFlagSet(string(mode), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	common := registerCommonFlags(fs, req)
	formatFlag := fs.String("format", string(req.Batch.Format), "report format")
	workers := fs.Int("workers", 0, "concurrent workers")
	verbose := fs.Bool("verbose", false, "progress output")
	var write *bool
	var outDir *string
	if mode == app.ModeConvert {
		write = fs.Bool("write", false, "rewrite files in place")
		outDir = fs.String("out", "", "output directory")
	}

	if err := parseFlags(fs, args); err != nil {
		return req, err
	}

	format, err := report.ParseFormat(*formatFlag)
	if err != nil {
		return req, err
	}
	visited := visitedFlags(fs)
	if visited["workers"] {
		if *workers < 1 {
			return req, fmt.Errorf("--workers must be >= 1")
		}
		req.Overrides.Workers = workers
	}

	paths := make([]string, 0, fs.NArg())
	for _, path := range fs.Args() {
		if path = strings.TrimSpace(path); path != "" {
			paths = append(paths, path)
		}
	}
	if len(paths) == 0 {
		return req, fmt.Errorf("missing input path for %s", mode)
	}

	req, err = common.apply(fs, req)
	if err != nil {
		return req, err
	}

	req.Mode = mode
	req.Batch = app.BatchRequest{
		Paths:   paths,
		Format:  format,
		Verbose: *verbose,
	}
	if mode == app.ModeConvert {
		req.Batch.Write = *write
		req.Batch.OutDir = strings.TrimSpace(*outDir)
		if req.Batch.Write && req.Batch.OutDir != "" {
			return req, ErrConflictingOutputs
		}
	}
	return req, nil
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ErrHelpRequested
		}
		return err
	}
	return nil
}

func isHelpArg(arg string) bool {
	switch arg {
	case "-h", "--help", "help":
		return true
	default:
		return false
	}
}

// normalizeArgs moves flags ahead of positionals so flags may follow paths.
// A lone "-" names stdin and stays positional.
func normalizeArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	flags := make([]string, 0, len(args))
	positionals := make([]string, 0, 1)

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if arg != "-" && strings.HasPrefix(arg, "-") {
			flags = append(flags, arg)
			if flagNeedsValue(arg) && i+1 < len(args) {
				flags = append(flags, args[i+1])
				i++
			}
			continue
		}
		positionals = append(positionals, arg)
	}

	return append(flags, positionals...)
}

func flagNeedsValue(arg string) bool {
	if strings.Contains(arg, "=") {
		return false
	}
	switch arg {
	case "--repo", "--config", "--quote", "--format", "--workers", "--out":
		return true
	default:
		return false
	}
}

func visitedFlags(fs *flag.FlagSet) map[string]bool {
	visited := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		visited[f.Name] = true
	})
	return visited
}
