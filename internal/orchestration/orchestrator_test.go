package orchestration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/agbru/pdfbasics/internal/errors"
	"github.com/agbru/pdfbasics/internal/merge"
	"github.com/agbru/pdfbasics/internal/pdfa"
)

// fakeEngine concatenates its sources and reports the source length as the
// page count. It lets the orchestration be tested without a PDF library.
type fakeEngine struct {
	mergeErr   error
	inspectErr map[string]error
	inspecting atomic.Int32
	maxSeen    atomic.Int32
	lastInfo   pdfa.Metadata
	delay      time.Duration
}

func (f *fakeEngine) Merge(_ context.Context, req merge.Request, w io.Writer) error {
	if f.mergeErr != nil {
		return f.mergeErr
	}
	f.lastInfo = req.Info
	for _, src := range req.Sources {
		if _, err := io.Copy(w, src); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeEngine) Inspect(_ context.Context, rs io.ReadSeeker) (*merge.Report, error) {
	n := f.inspecting.Add(1)
	defer f.inspecting.Add(-1)
	for {
		m := f.maxSeen.Load()
		if n <= m || f.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	time.Sleep(f.delay)

	data, err := io.ReadAll(rs)
	if err != nil {
		return nil, err
	}
	if err := f.inspectErr[string(data)]; err != nil {
		return nil, err
	}
	return &merge.Report{Pages: len(data)}, nil
}

func writeFiles(t *testing.T, contents ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(contents))
	for i, c := range contents {
		paths[i] = filepath.Join(dir, fmt.Sprintf("%02d.pdf", i))
		if err := os.WriteFile(paths[i], []byte(c), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return paths
}

// recordingReporter collects every event it receives.
type recordingReporter struct {
	mu     sync.Mutex
	events []merge.Event
}

func (r *recordingReporter) DisplayProgress(wg *sync.WaitGroup, ch <-chan merge.Event, _ io.Writer) {
	defer wg.Done()
	for e := range ch {
		r.mu.Lock()
		r.events = append(r.events, e)
		r.mu.Unlock()
	}
}

// TestExecuteMerge verifies that the orchestrator runs the merge, waits for
// the reporter and fills the result.
func TestExecuteMerge(t *testing.T) {
	t.Parallel()
	paths := writeFiles(t, "one", "two", "three")
	output := filepath.Join(t.TempDir(), "out.pdf")
	engine := &fakeEngine{}
	reporter := &recordingReporter{}
	meta := pdfa.Metadata{Title: "T"}

	res := ExecuteMerge(context.Background(), engine, paths, output, reporter, io.Discard, merge.WithMetadata(meta))
	if res.Err != nil {
		t.Fatalf("ExecuteMerge() error = %v", res.Err)
	}
	if res.Size != int64(len("onetwothree")) {
		t.Errorf("Size = %d, want %d", res.Size, len("onetwothree"))
	}
	if res.Output != output || len(res.Files) != 3 {
		t.Errorf("unexpected result %+v", res)
	}
	data, _ := os.ReadFile(output)
	if string(data) != "onetwothree" {
		t.Errorf("output = %q, sources must be merged in order", data)
	}
	if engine.lastInfo != meta {
		t.Errorf("engine saw metadata %+v, want %+v", engine.lastInfo, meta)
	}

	reporter.mu.Lock()
	defer reporter.mu.Unlock()
	if len(reporter.events) != 3+4 {
		t.Fatalf("reporter received %d events, want 7", len(reporter.events))
	}
	if last := reporter.events[len(reporter.events)-1]; last.Stage != merge.StageDone {
		t.Errorf("last event = %v, want done", last.Stage)
	}
}

func TestExecuteMerge_Failure(t *testing.T) {
	t.Parallel()
	paths := writeFiles(t, "one")
	output := filepath.Join(t.TempDir(), "out.pdf")
	engine := &fakeEngine{mergeErr: errors.New("corrupt")}

	res := ExecuteMerge(context.Background(), engine, paths, output, NullProgressReporter{}, io.Discard)
	var me *apperrors.MergeError
	if !errors.As(res.Err, &me) || me.Stage != apperrors.StageEngine {
		t.Fatalf("Err = %v, want engine MergeError", res.Err)
	}
	if res.Size != 0 {
		t.Errorf("Size = %d on failure, want 0", res.Size)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Error("no output should be written on failure")
	}
}

func TestExecuteMerge_NoSources(t *testing.T) {
	t.Parallel()
	output := filepath.Join(t.TempDir(), "out.pdf")
	res := ExecuteMerge(context.Background(), &fakeEngine{}, nil, output, NullProgressReporter{}, io.Discard)
	if !errors.Is(res.Err, apperrors.ErrNoSources) {
		t.Fatalf("Err = %v, want ErrNoSources", res.Err)
	}
}

// TestExecuteMerge_SlowReporter verifies that a reporter that never reads
// until the channel is closed cannot deadlock the merge.
func TestExecuteMerge_SlowReporter(t *testing.T) {
	t.Parallel()
	contents := make([]string, 40)
	for i := range contents {
		contents[i] = "x"
	}
	paths := writeFiles(t, contents...)
	output := filepath.Join(t.TempDir(), "out.pdf")

	release := make(chan struct{})
	reporter := ProgressReporterFunc(func(wg *sync.WaitGroup, ch <-chan merge.Event, _ io.Writer) {
		defer wg.Done()
		<-release
		DrainChannel(ch)
	})

	done := make(chan MergeResult, 1)
	go func() {
		done <- ExecuteMerge(context.Background(), &fakeEngine{}, paths, output, reporter, io.Discard)
	}()

	time.Sleep(20 * time.Millisecond)
	close(release)
	select {
	case res := <-done:
		if res.Err != nil {
			t.Fatalf("ExecuteMerge() error = %v", res.Err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ExecuteMerge deadlocked with a slow reporter")
	}
}

func TestExecuteMerge_Canceled(t *testing.T) {
	t.Parallel()
	paths := writeFiles(t, "one", "two")
	output := filepath.Join(t.TempDir(), "out.pdf")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := ExecuteMerge(ctx, &fakeEngine{}, paths, output, NullProgressReporter{}, io.Discard)
	if !apperrors.IsContextError(res.Err) {
		t.Fatalf("Err = %v, want context error", res.Err)
	}
}

// TestInspectFiles verifies input order, per-file failures and the
// concurrency limit.
func TestInspectFiles(t *testing.T) {
	t.Parallel()
	paths := writeFiles(t, "a", "bb", "bad", "dddd", "eeeee")
	paths = append(paths, filepath.Join(t.TempDir(), "missing.pdf"))
	engine := &fakeEngine{
		inspectErr: map[string]error{"bad": errors.New("not a pdf")},
		delay:      5 * time.Millisecond,
	}
	rec := &countingRecorder{}

	results := InspectFiles(context.Background(), engine, paths, 2, rec)
	if len(results) != len(paths) {
		t.Fatalf("got %d results, want %d", len(results), len(paths))
	}
	for i, r := range results {
		if r.Path != paths[i] {
			t.Errorf("results[%d].Path = %q, want %q", i, r.Path, paths[i])
		}
	}
	wantPages := map[int]int{0: 1, 1: 2, 3: 4, 4: 5}
	for i, pages := range wantPages {
		if results[i].Err != nil || results[i].Report.Pages != pages {
			t.Errorf("results[%d] = %+v, want %d pages", i, results[i], pages)
		}
	}
	if results[2].Err == nil || !strings.Contains(results[2].Err.Error(), "not a pdf") {
		t.Errorf("results[2].Err = %v, want engine error", results[2].Err)
	}
	if !errors.Is(results[5].Err, os.ErrNotExist) {
		t.Errorf("results[5].Err = %v, want os.ErrNotExist", results[5].Err)
	}
	if got := engine.maxSeen.Load(); got > 2 {
		t.Errorf("observed %d concurrent inspections, limit is 2", got)
	}

	failed, first := CountFailures(results)
	if failed != 2 || first != results[2].Err {
		t.Errorf("CountFailures() = %d, %v", failed, first)
	}
	if rec.ok.Load() != 4 || rec.failed.Load() != 2 {
		t.Errorf("recorder saw %d ok / %d failed", rec.ok.Load(), rec.failed.Load())
	}
}

func TestInspectFiles_Canceled(t *testing.T) {
	t.Parallel()
	paths := writeFiles(t, "a", "b")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := InspectFiles(ctx, &fakeEngine{}, paths, 0, nil)
	for i, r := range results {
		if !errors.Is(r.Err, context.Canceled) {
			t.Errorf("results[%d].Err = %v, want context.Canceled", i, r.Err)
		}
	}
}

type countingRecorder struct {
	ok, failed atomic.Int32
}

func (c *countingRecorder) ObserveInspection(err error) {
	if err != nil {
		c.failed.Add(1)
		return
	}
	c.ok.Add(1)
}

func TestWithTimeout(t *testing.T) {
	t.Parallel()

	ctx, cancel := WithTimeout(context.Background(), 0)
	if _, ok := ctx.Deadline(); ok {
		t.Error("zero timeout should not set a deadline")
	}
	cancel()
	if ctx.Err() == nil {
		t.Error("cancel should still cancel the derived context")
	}

	ctx, cancel = WithTimeout(context.Background(), time.Hour)
	defer cancel()
	deadline, ok := ctx.Deadline()
	if !ok || time.Until(deadline) > time.Hour {
		t.Errorf("Deadline() = %v, %v; want one within the hour", deadline, ok)
	}
}

func TestNullProgressReporter(t *testing.T) {
	t.Parallel()
	ch := make(chan merge.Event, 3)
	ch <- merge.Event{Stage: merge.StageReading}
	ch <- merge.Event{Stage: merge.StageDone}
	close(ch)

	var wg sync.WaitGroup
	wg.Add(1)
	var buf bytes.Buffer
	NullProgressReporter{}.DisplayProgress(&wg, ch, &buf)
	wg.Wait()
	if buf.Len() != 0 {
		t.Errorf("NullProgressReporter wrote %q", buf.String())
	}
}
