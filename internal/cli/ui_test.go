package cli

import (
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/pdfbasics/internal/merge"
	"github.com/agbru/pdfbasics/internal/orchestration"
)

// MockSpinner for testing
type MockSpinner struct {
	mu       sync.Mutex
	started  bool
	stopped  bool
	suffix   string
	suffixes []string
}

func (m *MockSpinner) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started = true
}

func (m *MockSpinner) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *MockSpinner) UpdateSuffix(suffix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suffix = suffix
	m.suffixes = append(m.suffixes, suffix)
}

func TestRealSpinner(t *testing.T) {
	t.Parallel()
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(io.Discard))
	rs := &realSpinner{s}

	// Just verify these methods don't panic
	rs.Start()
	rs.UpdateSuffix(" test")
	rs.Stop()
}

func TestDisplayProgress(t *testing.T) {
	originalNewSpinner := newSpinner
	defer func() { newSpinner = originalNewSpinner }()

	mockS := &MockSpinner{}
	newSpinner = func(options ...spinner.Option) Spinner {
		return mockS
	}

	var wg sync.WaitGroup
	wg.Add(1)

	progressChan := make(chan merge.Event)
	go func() {
		progressChan <- merge.Event{Stage: merge.StageReading, Index: 0, Total: 2, Path: "/x/a.pdf"}
		progressChan <- merge.Event{Stage: merge.StageMerging, Total: 2}
		time.Sleep(10 * time.Millisecond)
		close(progressChan)
	}()

	DisplayProgress(&wg, progressChan, io.Discard)
	wg.Wait()

	mockS.mu.Lock()
	defer mockS.mu.Unlock()
	if !mockS.started {
		t.Error("Spinner should have started")
	}
	if !mockS.stopped {
		t.Error("Spinner should have stopped")
	}
	if !strings.Contains(mockS.suffix, "Merging 2 documents") || !strings.Contains(mockS.suffix, "60%") {
		t.Errorf("last suffix = %q, want merging stage at 60%%", mockS.suffix)
	}
	found := false
	for _, s := range mockS.suffixes {
		if strings.Contains(s, "Reading 1/2 a.pdf") {
			found = true
		}
	}
	if !found {
		t.Errorf("reading stage never displayed: %q", mockS.suffixes)
	}
}

func TestDisplayProgress_ClosedChannel(t *testing.T) {
	originalNewSpinner := newSpinner
	defer func() { newSpinner = originalNewSpinner }()
	mockS := &MockSpinner{}
	newSpinner = func(options ...spinner.Option) Spinner { return mockS }

	var wg sync.WaitGroup
	wg.Add(1)
	progressChan := make(chan merge.Event)
	close(progressChan)

	DisplayProgress(&wg, progressChan, io.Discard)
	wg.Wait()
	if !mockS.stopped {
		t.Error("Spinner should be stopped when the channel closes")
	}
}

func TestFormatProgress(t *testing.T) {
	t.Parallel()
	got := FormatProgress(orchestration.ProgressSnapshot{Fraction: 0.5, Label: "Writing output", Elapsed: 1500 * time.Millisecond})
	for _, want := range []string{" 50%", "Writing output", "(1.5s)", "█"} {
		if !strings.Contains(got, want) {
			t.Errorf("FormatProgress() = %q, missing %q", got, want)
		}
	}
	if got := FormatProgress(orchestration.ProgressSnapshot{}); !strings.Contains(got, "Starting") {
		t.Errorf("empty snapshot should read Starting, got %q", got)
	}
}
