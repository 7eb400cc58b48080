package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/ben-ranford/deamdify/internal/amd"
	"github.com/ben-ranford/deamdify/internal/config"
	"github.com/ben-ranford/deamdify/internal/report"
	"github.com/ben-ranford/deamdify/internal/safeio"
	"github.com/ben-ranford/deamdify/internal/workspace"
)

var (
	ErrUnknownMode      = errors.New("unknown mode")
	ErrWrappersFound    = errors.New("amd/umd wrappers found")
	ErrConversionFailed = errors.New("conversion failed")
	ErrOutputCollision  = errors.New("output paths collide")
)

const outputFileMode = 0o644

// Transcoder converts or inspects one module source.
type Transcoder interface {
	Transcode(ctx context.Context, src []byte) (amd.Result, error)
	Inspect(ctx context.Context, src []byte) (amd.Result, error)
}

type App struct {
	Formatter     report.Formatter
	In            io.Reader
	Progress      io.Writer
	Now           func() time.Time
	NewTranscoder func(amd.Options) Transcoder
	CommitSHA     func(ctx context.Context, root string) (string, error)

	progressMu sync.Mutex
}

func New(in io.Reader, progress io.Writer) *App {
	return &App{
		Formatter: report.NewFormatter(),
		In:        in,
		Progress:  progress,
		Now:       time.Now,
		NewTranscoder: func(opts amd.Options) Transcoder {
			return amd.New(opts)
		},
		CommitSHA: workspace.CurrentCommitSHA,
	}
}

func (a *App) Execute(ctx context.Context, req Request) (string, error) {
	switch req.Mode {
	case ModeStream:
		return a.executeStream(ctx, req)
	case ModeConvert, ModeCheck:
		return a.executeBatch(ctx, req)
	default:
		return "", ErrUnknownMode
	}
}

type settings struct {
	root       string
	configPath string
	values     config.Values
	options    amd.Options
}

// resolveSettings layers defaults, the config file and the command line, in
// that order.
func resolveSettings(req Request) (settings, error) {
	root, err := workspace.NormalizeRepoPath(req.RepoPath)
	if err != nil {
		return settings{}, fmt.Errorf("resolve root path: %w", err)
	}
	fileOverrides, configPath, err := config.Load(root, req.ConfigPath)
	if err != nil {
		return settings{}, err
	}
	values := req.Overrides.Apply(fileOverrides.Apply(config.Defaults()))
	if err := values.Validate(); err != nil {
		return settings{}, err
	}
	quote, err := amd.ParseQuote(values.Quote)
	if err != nil {
		return settings{}, err
	}
	return settings{
		root:       root,
		configPath: configPath,
		values:     values,
		options:    amd.Options{Quote: quote, Verify: values.Verify},
	}, nil
}

func (a *App) executeStream(ctx context.Context, req Request) (string, error) {
	resolved, err := resolveSettings(req)
	if err != nil {
		return "", err
	}

	name := "<stdin>"
	var src []byte
	if path := req.Stream.InputPath; path != "" && path != "-" {
		name = path
		src, err = safeio.ReadFile(path)
	} else {
		src, err = io.ReadAll(a.In)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}

	result, err := a.NewTranscoder(resolved.options).Transcode(ctx, src)
	if err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return string(result.Output), nil
}

func (a *App) executeBatch(ctx context.Context, req Request) (string, error) {
	resolved, err := resolveSettings(req)
	if err != nil {
		return "", err
	}

	sources, warnings, err := workspace.Collect(ctx, req.Batch.Paths, workspace.Options{
		Extensions:  resolved.values.Extensions,
		ExcludeDirs: resolved.values.ExcludeDirs,
	})
	if err != nil {
		return "", err
	}
	outDir := ""
	if req.Mode == ModeConvert && req.Batch.OutDir != "" {
		outDir, err = filepath.Abs(req.Batch.OutDir)
		if err != nil {
			return "", fmt.Errorf("resolve output dir: %w", err)
		}
		if err := checkOutputCollisions(sources); err != nil {
			return "", err
		}
	}

	files, err := a.processSources(ctx, req, resolved, sources, outDir)
	if err != nil {
		return "", err
	}

	reportData := report.Report{
		SchemaVersion: report.SchemaVersion,
		GeneratedAt:   a.Now().UTC(),
		Mode:          string(req.Mode),
		Root:          resolved.root,
		ConfigPath:    resolved.configPath,
		Files:         files,
		Summary:       report.Summarize(files),
		Warnings:      append(warnings, fileWarnings(files)...),
	}
	if a.CommitSHA != nil {
		if sha, err := a.CommitSHA(ctx, resolved.root); err == nil {
			reportData.CommitSHA = sha
		}
	}
	formatted, err := a.Formatter.Format(reportData, req.Batch.Format)
	if err != nil {
		return "", err
	}
	return formatted, outcome(req.Mode, reportData.Summary)
}

func outcome(mode Mode, summary report.Summary) error {
	if summary.FailedCount > 0 {
		return fmt.Errorf("%w: %d file(s)", ErrConversionFailed, summary.FailedCount)
	}
	if mode == ModeCheck && summary.WrapperCount() > 0 {
		return fmt.Errorf("%w: %d file(s)", ErrWrappersFound, summary.WrapperCount())
	}
	return nil
}

func checkOutputCollisions(sources []workspace.Source) error {
	seen := make(map[string]string, len(sources))
	for _, source := range sources {
		if previous, ok := seen[source.Rel]; ok {
			return fmt.Errorf("%w: %s and %s both map to %s", ErrOutputCollision, previous, source.Display, source.Rel)
		}
		seen[source.Rel] = source.Display
	}
	return nil
}

func fileWarnings(files []report.FileResult) []string {
	var warnings []string
	for _, file := range files {
		if file.Error != "" {
			warnings = append(warnings, file.Path+": "+file.Error)
		}
	}
	return warnings
}
