package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/agbru/pdfbasics/internal/cli"
	apperrors "github.com/agbru/pdfbasics/internal/errors"
	"github.com/agbru/pdfbasics/internal/logging"
	"github.com/agbru/pdfbasics/internal/merge"
	"github.com/agbru/pdfbasics/internal/metrics"
	"github.com/agbru/pdfbasics/internal/orchestration"
	"github.com/agbru/pdfbasics/internal/session"
	"github.com/agbru/pdfbasics/internal/tui"
	"github.com/agbru/pdfbasics/internal/ui"
)

// runMerge merges the positional files in order (one-shot mode).
func (a *Application) runMerge(ctx context.Context, out io.Writer) int {
	output := a.Config.OutputFile
	if output == "" {
		dir, err := a.outputDir()
		if err != nil {
			fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
			return apperrors.ExitErrorConfig
		}
		output = session.OutputPath(dir, time.Now())
	}

	ctx, cancelTimeout := orchestration.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()

	if !a.Config.Quiet {
		cli.DisplayMergePlan(a.Config.Files, output, a.metadata(), out)
	}

	// Choose progress reporter based on quiet mode
	var progressReporter orchestration.ProgressReporter = cli.CLIProgressReporter{}
	progressOut := out
	if a.Config.Quiet {
		progressReporter = orchestration.NullProgressReporter{}
		progressOut = io.Discard
	}

	mc := metrics.NewMemoryCollector()
	before := mc.Snapshot()

	opts := append(a.mergeOptions(), merge.WithMetadata(a.metadata()))
	result := orchestration.ExecuteMerge(ctx, a.Engine, a.Config.Files, output, progressReporter, progressOut, opts...)
	a.afterMerge(result)

	presenter := cli.CLIResultPresenter{}
	if result.Err != nil {
		return presenter.HandleError(result.Err, result.Duration, a.ErrWriter)
	}

	if a.Config.Quiet {
		cli.DisplayQuietResult(out, result)
		return apperrors.ExitSuccess
	}
	presenter.PresentMergeResult(result, a.Config.Verbose, out)
	if a.Config.Verbose {
		cli.DisplayMemoryStats(metrics.Footprint(before, mc.Snapshot()), out)
	}
	return apperrors.ExitSuccess
}

// runInspect reports pages and metadata of the positional files.
func (a *Application) runInspect(ctx context.Context, out io.Writer) int {
	ctx, cancelTimeout := orchestration.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()

	start := time.Now()
	results := orchestration.InspectFiles(ctx, a.Engine, a.Config.Files, a.Config.Jobs, a.recorder)
	a.exportMetrics()

	failed, firstErr := orchestration.CountFailures(results)
	if apperrors.IsContextError(firstErr) {
		return apperrors.HandleMergeError(firstErr, a.ErrWriter)
	}

	cli.CLIResultPresenter{}.PresentInspection(results, out)
	a.logger.Debug("inspection complete",
		logging.Int("files", len(results)),
		logging.Int("failed", failed),
		logging.Duration("duration", time.Since(start)))

	if failed > 0 {
		fmt.Fprintf(a.ErrWriter, "%s%d of %d file(s) could not be inspected.%s\n",
			ui.ColorRed(), failed, len(results), ui.ColorReset())
		return apperrors.ExitErrorMerge
	}
	return apperrors.ExitSuccess
}

// runREPL starts the interactive command shell.
func (a *Application) runREPL(ctx context.Context, out io.Writer) int {
	dir, err := a.outputDir()
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	sess := session.New(a.logger)
	sess.Add(a.Config.Files...)

	repl := cli.NewREPL(a.Engine, sess, cli.REPLConfig{
		OutputDir:    dir,
		Timeout:      a.Config.Timeout,
		Metadata:     a.metadata(),
		Quiet:        a.Config.Quiet,
		Verbose:      a.Config.Verbose,
		MergeOptions: a.mergeOptions(),
		AfterMerge:   a.afterMerge,
	})
	if a.In != nil {
		repl.SetInput(a.In)
	}
	repl.SetOutput(out)
	repl.Start(ctx)

	if ctx.Err() != nil {
		return apperrors.ExitErrorCanceled
	}
	return apperrors.ExitSuccess
}

// runTUI launches the interactive terminal UI.
func (a *Application) runTUI(ctx context.Context) int {
	dir, err := a.outputDir()
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	sess := session.New(a.logger)
	sess.Add(a.Config.Files...)

	return tui.Run(ctx, tui.Options{
		Engine:       a.Engine,
		Session:      sess,
		OutputDir:    dir,
		Metadata:     a.metadata(),
		Timeout:      a.Config.Timeout,
		Version:      Version,
		MergeOptions: a.mergeOptions(),
		AfterMerge:   a.afterMerge,
	})
}
