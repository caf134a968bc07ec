package cli

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/pdfbasics/internal/format"
	"github.com/agbru/pdfbasics/internal/merge"
	"github.com/agbru/pdfbasics/internal/orchestration"
)

const (
	// ProgressRefreshRate defines the refresh frequency of the progress bar.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 30
)

// Spinner is an interface that abstracts the behavior of a terminal spinner.
// This allows for the decoupling of the `DisplayProgress` function from a
// specific spinner implementation, facilitating easier testing.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner is a wrapper for the `spinner.Spinner` that implements the
// `Spinner` interface.
type realSpinner struct {
	s *spinner.Spinner
}

// Start begins the spinner animation.
func (rs *realSpinner) Start() {
	rs.s.Start()
}

// Stop halts the spinner animation.
func (rs *realSpinner) Stop() {
	rs.s.Stop()
}

// UpdateSuffix sets the text that is displayed after the spinner. The
// spinner goroutine reads Suffix, so the write happens under its lock.
func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	// Using the same interval as ProgressRefreshRate to synchronize
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress shows a spinner with a progress bar and the current merge
// stage until progressChan is closed. It refreshes the elapsed time between
// events and calls wg.Done when it returns.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan merge.Event, out io.Writer) {
	defer wg.Done()

	s := newSpinner(spinner.WithWriter(out))
	tracker := orchestration.NewProgressTracker(nil)
	s.UpdateSuffix(FormatProgress(tracker.Current()))
	s.Start()
	defer s.Stop()

	ticker := time.NewTicker(ProgressRefreshRate)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-progressChan:
			if !ok {
				return
			}
			s.UpdateSuffix(FormatProgress(tracker.Update(e)))
		case <-ticker.C:
			s.UpdateSuffix(FormatProgress(tracker.Current()))
		}
	}
}

// FormatProgress renders a snapshot as the spinner suffix.
func FormatProgress(snap orchestration.ProgressSnapshot) string {
	label := snap.Label
	if label == "" {
		label = "Starting"
	}
	return fmt.Sprintf(" %s %3.0f%% %s (%s)",
		format.ProgressBar(snap.Fraction, ProgressBarWidth),
		snap.Fraction*100, label, format.FormatExecutionDuration(snap.Elapsed))
}
