package orchestration

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/agbru/pdfbasics/internal/merge"
)

// ProgressSnapshot is the display state derived from the latest event.
type ProgressSnapshot struct {
	Stage    merge.Stage
	Fraction float64
	Label    string
	Elapsed  time.Duration
}

// ProgressTracker turns a stream of merge events into display snapshots.
// The CLI spinner and the TUI both use it so they label stages identically.
// Fraction never decreases.
type ProgressTracker struct {
	now   func() time.Time
	start time.Time
	last  ProgressSnapshot
}

// NewProgressTracker starts tracking at now(). A nil now uses time.Now.
func NewProgressTracker(now func() time.Time) *ProgressTracker {
	if now == nil {
		now = time.Now
	}
	return &ProgressTracker{now: now, start: now()}
}

// Update folds e into the tracker and returns the new snapshot.
func (t *ProgressTracker) Update(e merge.Event) ProgressSnapshot {
	frac := e.Fraction()
	if frac < t.last.Fraction {
		frac = t.last.Fraction
	}
	t.last = ProgressSnapshot{
		Stage:    e.Stage,
		Fraction: frac,
		Label:    DescribeEvent(e),
		Elapsed:  t.now().Sub(t.start),
	}
	return t.last
}

// Current returns the latest snapshot with a refreshed elapsed time.
// Useful for periodic refresh between events.
func (t *ProgressTracker) Current() ProgressSnapshot {
	s := t.last
	s.Elapsed = t.now().Sub(t.start)
	return s
}

// DescribeEvent returns a short human-readable label for e.
func DescribeEvent(e merge.Event) string {
	switch e.Stage {
	case merge.StageReading:
		if e.Path != "" {
			return fmt.Sprintf("Reading %d/%d %s", e.Index+1, e.Total, filepath.Base(e.Path))
		}
		return fmt.Sprintf("Reading %d/%d", e.Index+1, e.Total)
	case merge.StageStamping:
		return "Building PDF/A metadata"
	case merge.StageMerging:
		if e.Total == 1 {
			return "Stamping 1 document"
		}
		return fmt.Sprintf("Merging %d documents", e.Total)
	case merge.StageWriting:
		return "Writing output"
	case merge.StageDone:
		return "Done"
	default:
		return string(e.Stage)
	}
}

// DrainChannel reads all events from the channel without processing.
func DrainChannel(progressChan <-chan merge.Event) {
	for range progressChan {
	}
}
