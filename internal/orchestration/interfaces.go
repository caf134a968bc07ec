package orchestration

import (
	"io"
	"sync"
	"time"

	"github.com/agbru/pdfbasics/internal/merge"
)

// MergeResult encapsulates the outcome of one merge run.
// It serves as the shared domain type between orchestration and presentation layers.
type MergeResult struct {
	// Files are the merged sources, in page order.
	Files []string
	// Output is the destination path.
	Output string
	// Size is the size of the written document. Zero on failure.
	Size int64
	// Duration is the wall time of the whole run, including the write.
	Duration time.Duration
	// Err is the *apperrors.MergeError of a failed run, nil on success.
	Err error
}

// InspectResult is the inspection outcome for a single document.
type InspectResult struct {
	Path   string
	Report *merge.Report
	Err    error
}

// ProgressReporter defines the interface for displaying merge progress.
// This interface decouples the orchestration layer from the presentation layer.
//
// Implementations handle the visual representation of progress (spinners,
// progress bars, TUI messages) while the orchestration layer drives the merge.
type ProgressReporter interface {
	// DisplayProgress consumes events until progressChan is closed, then
	// calls wg.Done.
	//
	// Parameters:
	//   - wg: A WaitGroup to signal when display is complete.
	//   - progressChan: Channel receiving merge events.
	//   - out: The writer for progress output.
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan merge.Event, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan merge.Event, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan merge.Event, out io.Writer) {
	f(wg, progressChan, out)
}

// NullProgressReporter is a no-op implementation of ProgressReporter.
// It drains the progress channel without displaying anything.
// Useful for quiet mode or testing.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan merge.Event, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter defines the interface for presenting merge and inspection
// results, allowing different output styles without modifying the
// orchestration logic.
type ResultPresenter interface {
	// PresentMergeResult displays the outcome of a successful merge.
	PresentMergeResult(result MergeResult, verbose bool, out io.Writer)

	// PresentInspection displays inspection results in input order.
	PresentInspection(results []InspectResult, out io.Writer)
}

// ErrorHandler handles merge errors and returns exit codes.
type ErrorHandler interface {
	HandleError(err error, duration time.Duration, out io.Writer) int
}

// InspectionRecorder receives one observation per inspected document.
type InspectionRecorder interface {
	ObserveInspection(err error)
}
