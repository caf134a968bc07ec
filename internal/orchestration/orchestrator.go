package orchestration

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/pdfbasics/internal/merge"
)

// ProgressBufferSize is the capacity of the progress channel. A merge emits
// one event per source plus four stage events. Events that do not fit are
// dropped rather than blocking the merge.
const ProgressBufferSize = 16

// WithTimeout bounds ctx by d. A zero or negative d means no limit: the
// returned context carries no deadline of its own.
func WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// ExecuteMerge merges paths into output and reports progress through
// reporter.
//
// It starts the reporter in its own goroutine, builds a merge.Merger from
// engine and opts whose progress callback feeds the reporter's channel, runs
// the merge synchronously, and waits for the reporter to finish before
// returning. A progress option in opts is superseded.
//
// Parameters:
//   - ctx: The context for cancellation; checked between merge stages.
//   - engine: The PDF engine.
//   - paths: The source files, in page order.
//   - output: The destination path. It must not exist.
//   - reporter: The progress reporter (use NullProgressReporter for quiet mode).
//   - out: The io.Writer handed to the reporter.
//   - opts: Additional merger options (logger, metadata, recorder, clock).
//
// Returns:
//   - MergeResult: The outcome. Err is nil on success.
func ExecuteMerge(ctx context.Context, engine merge.Engine, paths []string, output string, reporter ProgressReporter, out io.Writer, opts ...merge.Option) MergeResult {
	progressChan := make(chan merge.Event, ProgressBufferSize)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, out)

	opts = append(opts, merge.WithProgress(func(e merge.Event) {
		select {
		case progressChan <- e:
		default:
			// The display lags; the next event supersedes this one.
		}
	}))
	merger := merge.NewMerger(engine, opts...)

	files := append([]string(nil), paths...)
	start := time.Now()
	err := merger.MergeFiles(ctx, files, output)
	duration := time.Since(start)

	close(progressChan)
	displayWg.Wait()

	result := MergeResult{Files: files, Output: output, Duration: duration, Err: err}
	if err == nil {
		if info, statErr := os.Stat(output); statErr == nil {
			result.Size = info.Size()
		}
	}
	return result
}

// InspectFiles inspects every path with engine, at most jobs at a time.
// Results are returned in input order. A failure on one document is recorded
// in its InspectResult and does not stop the others; a canceled context
// marks the documents not yet started as failed.
func InspectFiles(ctx context.Context, engine merge.Engine, paths []string, jobs int, recorder InspectionRecorder) []InspectResult {
	results := make([]InspectResult, len(paths))
	if jobs < 1 {
		jobs = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, p := range paths {
		idx, path := i, p
		g.Go(func() error {
			report, err := inspectFile(gctx, engine, path)
			results[idx] = InspectResult{Path: path, Report: report, Err: err}
			if recorder != nil {
				recorder.ObserveInspection(err)
			}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func inspectFile(ctx context.Context, engine merge.Engine, path string) (*merge.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	report, err := engine.Inspect(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("inspecting %s: %w", path, err)
	}
	return report, nil
}

// CountFailures returns the number of failed inspections and the first error.
func CountFailures(results []InspectResult) (int, error) {
	failed := 0
	var first error
	for _, r := range results {
		if r.Err != nil {
			if first == nil {
				first = r.Err
			}
			failed++
		}
	}
	return failed, first
}
