package tui

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	apperrors "github.com/agbru/pdfbasics/internal/errors"
	"github.com/agbru/pdfbasics/internal/merge"
	"github.com/agbru/pdfbasics/internal/orchestration"
	"github.com/agbru/pdfbasics/internal/session"
	"github.com/agbru/pdfbasics/internal/sysmon"
)

// concatEngine writes its sources back to back.
type concatEngine struct {
	err         error
	hasDeadline bool
}

func (e *concatEngine) Merge(ctx context.Context, req merge.Request, w io.Writer) error {
	if e.err != nil {
		return e.err
	}
	_, e.hasDeadline = ctx.Deadline()
	for _, src := range req.Sources {
		if _, err := io.Copy(w, src); err != nil {
			return err
		}
	}
	return nil
}

func (e *concatEngine) Inspect(context.Context, io.ReadSeeker) (*merge.Report, error) {
	return &merge.Report{}, nil
}

var tuiNow = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

func newTestModel(t *testing.T, engine merge.Engine) (Model, *session.Session, string) {
	t.Helper()
	dir := t.TempDir()
	sess := session.New(nil)
	m := NewModel(context.Background(), Options{
		Engine:    engine,
		Session:   sess,
		OutputDir: dir,
		Timeout:   time.Minute,
		Version:   "v1.0.0",
		Now:       func() time.Time { return tuiNow },
	})
	t.Cleanup(m.cancel)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 200, Height: 30})
	return updated.(Model), sess, dir
}

func writeSources(t *testing.T, names ...string) []string {
	t.Helper()
	dir := t.TempDir()
	paths := make([]string, len(names))
	for i, name := range names {
		paths[i] = filepath.Join(dir, name)
		if err := os.WriteFile(paths[i], []byte(name), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return paths
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func paste(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s), Paste: true}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestModel_PasteAddsExistingFiles(t *testing.T) {
	m, sess, _ := newTestModel(t, &concatEngine{})
	paths := writeSources(t, "a.pdf", "b.pdf")
	missing := filepath.Join(t.TempDir(), "missing.pdf")

	m, _ = update(t, m, paste(paths[0]+"\n"+missing+"\n"+paths[1]))

	if got := sess.Files(); !reflect.DeepEqual(got, paths) {
		t.Errorf("Files() = %v, want %v", got, paths)
	}
	if m.files.Cursor() != 1 {
		t.Errorf("cursor = %d, want the last added entry", m.files.Cursor())
	}
	view := m.View()
	for _, want := range []string{"a.pdf", "b.pdf", "Not found", "2 file(s)"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestModel_ListCommands(t *testing.T) {
	m, sess, _ := newTestModel(t, &concatEngine{})
	paths := writeSources(t, "a.pdf", "b.pdf", "c.pdf")
	m, _ = update(t, m, paste(strings.Join(paths, "\n")))

	// Cursor is on c.pdf; move it to the front.
	m, _ = update(t, m, runes("K"))
	m, _ = update(t, m, runes("K"))
	want := []string{paths[2], paths[0], paths[1]}
	if got := sess.Files(); !reflect.DeepEqual(got, want) {
		t.Fatalf("after K K Files() = %v, want %v", got, want)
	}
	if m.files.Cursor() != 0 {
		t.Errorf("cursor = %d, want 0", m.files.Cursor())
	}

	// Moving past the top is a no-op.
	m, _ = update(t, m, runes("K"))
	if got := sess.Files(); !reflect.DeepEqual(got, want) {
		t.Errorf("moving past the top changed the list: %v", got)
	}

	m, _ = update(t, m, runes("j"))
	m, _ = update(t, m, runes("d"))
	want = []string{paths[2], paths[1]}
	if got := sess.Files(); !reflect.DeepEqual(got, want) {
		t.Fatalf("after j d Files() = %v, want %v", got, want)
	}

	m, _ = update(t, m, runes("c"))
	if sess.Len() != 0 {
		t.Errorf("after clear Len() = %d", sess.Len())
	}
	if !strings.Contains(m.View(), "Paste or drop") {
		t.Error("empty list should show the drop hint")
	}
}

func TestModel_AddPrompt(t *testing.T) {
	m, sess, _ := newTestModel(t, &concatEngine{})
	paths := writeSources(t, "my doc.pdf")

	m, _ = update(t, m, runes("a"))
	if !m.adding {
		t.Fatal("a should open the path prompt")
	}
	m, _ = update(t, m, paste(session.QuotePath(paths[0])))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.adding {
		t.Error("enter should close the prompt")
	}
	if got := sess.Files(); !reflect.DeepEqual(got, paths) {
		t.Errorf("Files() = %v, want %v", got, paths)
	}

	m, _ = update(t, m, runes("a"))
	m, _ = update(t, m, runes("x"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.adding || sess.Len() != 1 {
		t.Errorf("esc should cancel without adding, adding=%v len=%d", m.adding, sess.Len())
	}
}

func TestModel_MergeSuccess(t *testing.T) {
	m, sess, dir := newTestModel(t, &concatEngine{})
	paths := writeSources(t, "a.pdf", "b.pdf")
	m, _ = update(t, m, paste(strings.Join(paths, " ")))

	m, cmd := update(t, m, runes("m"))
	if !m.merging || cmd == nil {
		t.Fatal("m should start a merge")
	}

	// The list is locked while merging.
	m, _ = update(t, m, runes("c"))
	m, _ = update(t, m, paste(paths[0]))
	if sess.Len() != 2 {
		t.Errorf("list changed during merge: %v", sess.Files())
	}
	// A second merge request is ignored.
	gen := m.generation
	m, _ = update(t, m, runes("m"))
	if m.generation != gen {
		t.Error("merge should be serialized")
	}

	output := filepath.Join(dir, "merged_2024-05-01_09-30-00.pdf")
	msg := startMergeCmd(m.ref, m.ctx, m.opts, sess.Files(), output, m.generation)()
	done, ok := msg.(MergeDoneMsg)
	if !ok {
		t.Fatalf("merge command returned %T", msg)
	}
	if done.Result.Err != nil {
		t.Fatalf("merge error = %v", done.Result.Err)
	}

	m, _ = update(t, m, done)
	if m.merging {
		t.Error("merge should be finished")
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "a.pdfb.pdf" {
		t.Errorf("output = %q", data)
	}
	if sess.Len() != 2 {
		t.Errorf("list should be unchanged after merge, got %d", sess.Len())
	}
	view := m.View()
	if !strings.Contains(view, "DONE") || !strings.Contains(view, "Wrote") {
		t.Errorf("View() should report the merge:\n%s", view)
	}
}

func TestModel_MergeTimeout(t *testing.T) {
	for _, tt := range []struct {
		name         string
		timeout      time.Duration
		wantDeadline bool
	}{
		{"no limit", 0, false},
		{"bounded", time.Minute, true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			engine := &concatEngine{}
			m, sess, dir := newTestModel(t, engine)
			m.opts.Timeout = tt.timeout
			paths := writeSources(t, "a.pdf")
			m, _ = update(t, m, paste(paths[0]))

			msg := startMergeCmd(m.ref, m.ctx, m.opts, sess.Files(), filepath.Join(dir, "out.pdf"), m.generation)()
			if done, ok := msg.(MergeDoneMsg); !ok || done.Result.Err != nil {
				t.Fatalf("merge returned %#v", msg)
			}
			if engine.hasDeadline != tt.wantDeadline {
				t.Errorf("merge context deadline set = %v, want %v", engine.hasDeadline, tt.wantDeadline)
			}
		})
	}
}

func TestModel_MergeFailure(t *testing.T) {
	m, sess, dir := newTestModel(t, &concatEngine{err: errors.New("corrupt xref")})
	paths := writeSources(t, "a.pdf")
	m, _ = update(t, m, paste(paths[0]))
	m, _ = update(t, m, runes("m"))

	output := filepath.Join(dir, "out.pdf")
	msg := startMergeCmd(m.ref, m.ctx, m.opts, sess.Files(), output, m.generation)()
	m, _ = update(t, m, msg)

	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Errorf("failed merge left output behind: %v", err)
	}
	view := m.View()
	if !strings.Contains(view, "FAILED") || !strings.Contains(view, "corrupt xref") {
		t.Errorf("View() should report the failure:\n%s", view)
	}
	if sess.Len() != 1 {
		t.Error("list should be unchanged after a failed merge")
	}
}

func TestModel_MergeEmptyList(t *testing.T) {
	m, _, _ := newTestModel(t, &concatEngine{})
	m, cmd := update(t, m, runes("m"))
	if m.merging || cmd != nil {
		t.Error("merging an empty list should do nothing")
	}
	if !strings.Contains(m.View(), "Nothing to merge") {
		t.Error("expected a warning in the log")
	}
}

func TestModel_StaleMessagesIgnored(t *testing.T) {
	m, _, _ := newTestModel(t, &concatEngine{})
	m.generation = 2
	m.merging = true

	m, _ = update(t, m, ProgressMsg{Generation: 1, Snapshot: orchestration.ProgressSnapshot{Fraction: 0.5}})
	if m.header.progress.Fraction != 0 {
		t.Error("stale progress should be ignored")
	}
	m, _ = update(t, m, MergeDoneMsg{Generation: 1})
	if !m.merging {
		t.Error("stale completion should be ignored")
	}
	m, _ = update(t, m, ProgressMsg{Generation: 2, Snapshot: orchestration.ProgressSnapshot{Fraction: 0.5, Label: "Writing output"}})
	if m.header.progress.Fraction != 0.5 {
		t.Error("current progress should be applied")
	}
}

func TestModel_QuitAndCancel(t *testing.T) {
	m, _, _ := newTestModel(t, &concatEngine{})
	m, cmd := update(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("q should return tea.Quit")
	}
	if m.ctx.Err() == nil {
		t.Error("quitting should cancel the model context")
	}
	m, _ = update(t, m, ContextCancelledMsg{Err: context.Canceled})
	if m.ExitCode() != apperrors.ExitSuccess {
		t.Errorf("ExitCode() = %d after q, want success", m.ExitCode())
	}

	m2, _, _ := newTestModel(t, &concatEngine{})
	m2, cmd = update(t, m2, ContextCancelledMsg{Err: context.Canceled})
	if cmd == nil || m2.ExitCode() != apperrors.ExitErrorCanceled {
		t.Errorf("signal cancel: ExitCode() = %d, want %d", m2.ExitCode(), apperrors.ExitErrorCanceled)
	}
}

func TestModel_HelpToggle(t *testing.T) {
	m, _, _ := newTestModel(t, &concatEngine{})
	short := m.View()
	m, _ = update(t, m, runes("?"))
	if !m.footer.ShowAll() {
		t.Fatal("? should expand help")
	}
	if !strings.Contains(m.View(), "move up") || strings.Contains(short, "move up") {
		t.Error("full help should list the move bindings")
	}
}

func TestModel_ViewBeforeResize(t *testing.T) {
	m := NewModel(context.Background(), Options{Engine: &concatEngine{}})
	defer m.cancel()
	if m.View() != "Initializing..." {
		t.Errorf("View() = %q", m.View())
	}
}

func TestTruncateLeft(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"/home/user", 20, "/home/user"},
		{"/home/user/docs", 6, "…/docs"},
		{"/abc", 1, "…"},
	}
	for _, tt := range tests {
		if got := truncateLeft(tt.in, tt.width); got != tt.want {
			t.Errorf("truncateLeft(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestLogsModel_Capped(t *testing.T) {
	t.Parallel()
	l := NewLogsModel()
	for i := 0; i < maxLogEntries+25; i++ {
		l.Info(tuiNow, "entry")
	}
	if l.Len() != maxLogEntries {
		t.Errorf("Len() = %d, want %d", l.Len(), maxLogEntries)
	}
}

func TestModel_SysStatsShownWhileMerging(t *testing.T) {
	m, _, _ := newTestModel(t, &concatEngine{})
	stats := sysmon.Stats{CPUPercent: 12, MemPercent: 40, ProcessRSS: 3 << 20}

	m, _ = update(t, m, SysStatsMsg{Stats: stats})
	if strings.Contains(m.View(), "CPU 12%") {
		t.Error("idle header should not show resource usage")
	}

	m.merging = true
	m.header.Start(tuiNow)
	m, _ = update(t, m, SysStatsMsg{Stats: stats})
	if !strings.Contains(m.View(), "CPU 12% MEM 40% RSS 3.0 MiB") {
		t.Errorf("header should show resource usage:\n%s", m.View())
	}
}
