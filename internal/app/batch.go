package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ben-ranford/deamdify/internal/amd"
	"github.com/ben-ranford/deamdify/internal/report"
	"github.com/ben-ranford/deamdify/internal/safeio"
	"github.com/ben-ranford/deamdify/internal/workspace"
	"golang.org/x/sync/errgroup"
)

// processSources transcodes sources on a bounded worker pool. Per-file failures
// are recorded in the results; only cancellation aborts the run. Results keep
// the order of sources.
func (a *App) processSources(ctx context.Context, req Request, resolved settings, sources []workspace.Source, outDir string) ([]report.FileResult, error) {
	transcoder := a.NewTranscoder(resolved.options)
	results := make([]report.FileResult, len(sources))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(resolved.values.Workers)
	for i, source := range sources {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			results[i] = a.processSource(groupCtx, req, transcoder, source, outDir)
			a.reportProgress(req, results[i])
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (a *App) processSource(ctx context.Context, req Request, transcoder Transcoder, source workspace.Source, outDir string) report.FileResult {
	file := report.FileResult{Path: source.Display, Pattern: amd.Unrecognized.String()}

	src, err := safeio.ReadFileUnder(source.Root, source.Path)
	if err != nil {
		file.Error = fmt.Sprintf("read: %v", err)
		return file
	}

	var result amd.Result
	if req.Mode == ModeCheck {
		result, err = transcoder.Inspect(ctx, src)
	} else {
		result, err = transcoder.Transcode(ctx, src)
	}
	file.Pattern = result.Pattern.String()
	if err != nil {
		file.Error = err.Error()
		return file
	}
	file.Dependencies = result.Dependencies
	file.Params = result.Params
	file.Injected = result.Injected
	file.InjectionSkipped = result.InjectionSkipped
	file.Changed = result.Changed

	if req.Mode != ModeConvert {
		return file
	}
	switch {
	case outDir != "":
		target := filepath.Join(outDir, source.Rel)
		if err := safeio.WriteFileUnder(outDir, target, result.Output, outputFileMode); err != nil {
			file.Error = fmt.Sprintf("write: %v", err)
			return file
		}
		file.WrittenTo = filepath.ToSlash(filepath.Join(req.Batch.OutDir, source.Rel))
	case req.Batch.Write && result.Changed:
		if err := safeio.WriteFileUnder(source.Root, source.Path, result.Output, outputFileMode); err != nil {
			file.Error = fmt.Sprintf("write: %v", err)
			return file
		}
		file.WrittenTo = source.Display
	}
	return file
}

func (a *App) reportProgress(req Request, file report.FileResult) {
	if !req.Batch.Verbose || a.Progress == nil {
		return
	}
	status := "ok"
	switch {
	case file.Error != "":
		status = "error"
	case file.WrittenTo != "":
		status = "written"
	case file.Changed:
		status = "changed"
	}
	a.progressMu.Lock()
	defer a.progressMu.Unlock()
	_, _ = fmt.Fprintf(a.Progress, "%s\t%s\t%s\n", status, file.Pattern, file.Path)
}
