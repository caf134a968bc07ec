package tui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	apperrors "github.com/agbru/pdfbasics/internal/errors"
	"github.com/agbru/pdfbasics/internal/format"
	"github.com/agbru/pdfbasics/internal/merge"
	"github.com/agbru/pdfbasics/internal/orchestration"
	"github.com/agbru/pdfbasics/internal/pdfa"
	"github.com/agbru/pdfbasics/internal/session"
	"github.com/agbru/pdfbasics/internal/sysmon"
)

// Options configures a TUI session.
type Options struct {
	// Engine performs the merges.
	Engine merge.Engine
	// Session holds the file list. A nil Session starts empty.
	Session *session.Session
	// OutputDir is where merged documents are written.
	OutputDir string
	// Metadata is stamped on every output.
	Metadata pdfa.Metadata
	// Timeout bounds each merge. Zero means no limit.
	Timeout time.Duration
	// Version is shown in the header.
	Version string
	// MergeOptions are passed to every merge (logger, recorder).
	MergeOptions []merge.Option
	// AfterMerge, if set, is called from the merge goroutine after every attempt.
	AfterMerge func(orchestration.MergeResult)
	// Now is the clock used for output names and log timestamps.
	Now func() time.Time
}

// ExecutionState holds the merge-related fields of a TUI session.
type ExecutionState struct {
	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
	merging    bool
	quitting   bool
	exitCode   int
}

// LayoutManager holds terminal dimensions and provides layout calculations.
type LayoutManager struct {
	width  int
	height int
}

// Layout constants for the TUI.
const (
	headerHeight           = 1
	inputHeight            = 1
	minBodyHeight          = 5
	FilesPanelWidthPercent = 55
)

// bodyHeight returns the height left for the panels once the header and a
// footer of footerH lines are drawn.
func (l LayoutManager) bodyHeight(footerH int) int {
	h := l.height - headerHeight - footerH
	if h < minBodyHeight {
		h = minBodyHeight
	}
	return h
}

// filesWidth returns the width allocated to the file list.
func (l LayoutManager) filesWidth() int {
	return l.width * FilesPanelWidthPercent / 100
}

// logsWidth returns the width allocated to the activity log.
func (l LayoutManager) logsWidth() int {
	return l.width - l.filesWidth()
}

// Model is the root bubbletea model of the merge TUI.
type Model struct {
	header HeaderModel
	files  FilesModel
	logs   LogsModel
	footer FooterModel
	input  textinput.Model
	adding bool

	keymap KeyMap

	ExecutionState
	LayoutManager

	opts    Options
	session *session.Session
	sampler *sysmon.Sampler
	ref     *programRef
}

// NewModel creates a new TUI model. The returned model owns a context derived
// from parentCtx; cancel it through Run or by quitting.
func NewModel(parentCtx context.Context, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	sess := opts.Session
	if sess == nil {
		sess = session.New(nil)
	}

	ctx, cancel := context.WithCancel(parentCtx)

	in := textinput.New()
	in.Prompt = "Add: "
	in.Placeholder = "paths or file:// URIs"

	header := NewHeaderModel(opts.Version)
	header.SetFileCount(sess.Len())

	logs := NewLogsModel()
	logs.Info(opts.Now(), fmt.Sprintf("Output directory: %s", opts.OutputDir))

	return Model{
		header: header,
		files:  NewFilesModel(),
		logs:   logs,
		footer: NewFooterModel(),
		input:  in,
		keymap: DefaultKeyMap(),
		ExecutionState: ExecutionState{
			ctx:      ctx,
			cancel:   cancel,
			exitCode: apperrors.ExitSuccess,
		},
		opts:    opts,
		session: sess,
		sampler: sysmon.NewSampler(),
		ref:     &programRef{},
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	return watchContextCmd(m.ctx)
}

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.adding {
			return m.handleInputKey(msg)
		}
		if msg.Paste {
			m.addDropped(string(msg.Runes))
			return m, nil
		}
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layoutPanels()
		return m, nil

	case ProgressMsg:
		if msg.Generation == m.generation && m.merging {
			m.header.SetProgress(msg.Snapshot)
		}
		return m, nil

	case ProgressDoneMsg:
		return m, nil

	case MergeDoneMsg:
		if msg.Generation != m.generation {
			return m, nil // stale message from a previous merge
		}
		m.finishMerge(msg.Result)
		return m, nil

	case TickMsg:
		if !m.merging {
			return m, nil
		}
		return m, tea.Batch(sampleSysStatsCmd(m.ctx, m.sampler), tickCmd())

	case SysStatsMsg:
		if m.merging {
			m.header.SetSysStats(msg.Stats)
		}
		return m, nil

	case ContextCancelledMsg:
		if m.quitting {
			return m, nil
		}
		m.exitCode = apperrors.ExitErrorCanceled
		return m, tea.Quit
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keymap.Help):
		m.footer.ToggleHelp()
		m.layoutPanels()
		return m, nil

	case key.Matches(msg, m.keymap.Up):
		m.files.SetCursor(m.files.Cursor()-1, m.session.Len())
		return m, nil

	case key.Matches(msg, m.keymap.Down):
		m.files.SetCursor(m.files.Cursor()+1, m.session.Len())
		return m, nil

	case key.Matches(msg, m.keymap.Merge):
		return m.startMerge()
	}

	if !m.isListCommand(msg) {
		return m, nil
	}
	if m.merging {
		m.logs.Warn(m.opts.Now(), "Merge in progress, list is locked.")
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keymap.Add):
		m.adding = true
		m.footer.SetInputMode(true)
		m.input.SetValue("")
		m.layoutPanels()
		return m, m.input.Focus()

	case key.Matches(msg, m.keymap.Clear):
		n := m.session.Len()
		m.session.Clear()
		m.files.SetCursor(0, 0)
		m.header.SetFileCount(0)
		m.logs.Info(m.opts.Now(), fmt.Sprintf("Cleared %d file(s).", n))

	case key.Matches(msg, m.keymap.Remove):
		removed, err := m.session.Remove(m.files.Cursor())
		if err != nil {
			return m, nil
		}
		m.files.SetCursor(m.files.Cursor(), m.session.Len())
		m.header.SetFileCount(m.session.Len())
		m.logs.Info(m.opts.Now(), "Removed "+removed)

	case key.Matches(msg, m.keymap.MoveUp):
		m.moveCursorEntry(-1)

	case key.Matches(msg, m.keymap.MoveDown):
		m.moveCursorEntry(1)
	}
	return m, nil
}

func (m Model) isListCommand(msg tea.KeyMsg) bool {
	return key.Matches(msg, m.keymap.Add) ||
		key.Matches(msg, m.keymap.Clear) ||
		key.Matches(msg, m.keymap.Remove) ||
		key.Matches(msg, m.keymap.MoveUp) ||
		key.Matches(msg, m.keymap.MoveDown)
}

func (m *Model) moveCursorEntry(delta int) {
	from := m.files.Cursor()
	to := from + delta
	if err := m.session.Move(from, to); err != nil {
		return
	}
	m.files.SetCursor(to, m.session.Len())
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case !msg.Paste && key.Matches(msg, m.keymap.Cancel):
		m.closeInput()
		return m, nil

	case !msg.Paste && key.Matches(msg, m.keymap.Confirm):
		value := m.input.Value()
		m.closeInput()
		m.addDropped(value)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeInput() {
	m.adding = false
	m.input.Blur()
	m.input.SetValue("")
	m.footer.SetInputMode(false)
	m.layoutPanels()
}

// addDropped appends the paths found in text to the list. Paths that do not
// exist are reported and skipped.
func (m *Model) addDropped(text string) {
	now := m.opts.Now()
	if m.merging {
		m.logs.Warn(now, "Merge in progress, drop ignored.")
		return
	}

	var added []string
	for _, p := range session.ParseDrop(text) {
		if _, err := os.Stat(p); err != nil {
			m.logs.Warn(now, "Not found: "+p)
			continue
		}
		added = append(added, p)
	}
	if len(added) == 0 {
		return
	}
	m.session.Add(added...)
	m.header.SetFileCount(m.session.Len())
	m.files.SetCursor(m.session.Len()-1, m.session.Len())
	m.logs.Info(now, fmt.Sprintf("Added %d file(s), %d in list.", len(added), m.session.Len()))
}

func (m Model) startMerge() (tea.Model, tea.Cmd) {
	now := m.opts.Now()
	if m.merging {
		m.logs.Warn(now, "Merge already in progress.")
		return m, nil
	}
	files := m.session.Files()
	if len(files) == 0 {
		m.logs.Warn(now, "Nothing to merge. Drop files first.")
		return m, nil
	}

	m.generation++
	m.merging = true
	output := session.OutputPath(m.opts.OutputDir, now)
	m.header.Start(now)
	m.logs.Info(now, fmt.Sprintf("Merging %d file(s) into %s", len(files), output))

	return m, tea.Batch(
		tickCmd(),
		sampleSysStatsCmd(m.ctx, m.sampler),
		startMergeCmd(m.ref, m.ctx, m.opts, files, output, m.generation),
	)
}

func (m *Model) finishMerge(result orchestration.MergeResult) {
	now := m.opts.Now()
	m.merging = false
	m.header.Finish(now, result.Err != nil)
	if result.Err != nil {
		m.logs.Error(now, "Merge failed: "+result.Err.Error())
		return
	}
	m.logs.Success(now, fmt.Sprintf("Wrote %s (%s) in %s",
		result.Output, format.FormatBytes(uint64(result.Size)), format.FormatExecutionDuration(result.Duration)))
}

// View renders the whole screen.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	files := m.files.View(m.session.Files(), m.merging)
	logs := m.logs.View()
	body := lipgloss.JoinHorizontal(lipgloss.Top, files, logs)

	parts := []string{m.header.View(m.opts.Now()), body}
	if m.adding {
		parts = append(parts, " "+m.input.View())
	}
	parts = append(parts, m.footer.View(m.keymap))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) footerHeight() int {
	h := lipgloss.Height(m.footer.View(m.keymap))
	if m.adding {
		h += inputHeight
	}
	return h
}

func (m *Model) layoutPanels() {
	body := m.bodyHeight(m.footerHeight())
	m.header.SetWidth(m.width)
	m.footer.SetWidth(m.width)
	m.input.Width = m.width - 10
	m.files.SetSize(m.filesWidth(), body)
	m.files.SetCursor(m.files.Cursor(), m.session.Len())
	m.logs.SetSize(m.logsWidth(), body)
}

// ExitCode returns the code the process should exit with.
func (m Model) ExitCode() int {
	return m.exitCode
}

// Run is the public entry point for the TUI mode.
// It creates the bubbletea program, runs it, and returns the exit code.
func Run(ctx context.Context, opts Options) int {
	// Rebuild styles from the current ui theme (set by app.Run via InitTheme).
	initTUIStyles()

	model := NewModel(ctx, opts)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen())
	// Inject the program reference before running so bridge goroutines can Send.
	model.ref.SetProgram(p)

	finalModel, err := p.Run()
	if err != nil {
		return apperrors.ExitErrorGeneric
	}

	if m, ok := finalModel.(Model); ok {
		return m.exitCode
	}
	return apperrors.ExitSuccess
}

// startMergeCmd returns a tea.Cmd that runs one merge through the orchestrator.
func startMergeCmd(ref *programRef, ctx context.Context, opts Options, files []string, output string, gen uint64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := orchestration.WithTimeout(ctx, opts.Timeout)
		defer cancel()

		reporter := &TUIProgressReporter{ref: ref, generation: gen}
		mergeOpts := append([]merge.Option{merge.WithMetadata(opts.Metadata)}, opts.MergeOptions...)
		result := orchestration.ExecuteMerge(ctx, opts.Engine, files, output, reporter, io.Discard, mergeOpts...)
		if opts.AfterMerge != nil {
			opts.AfterMerge(result)
		}
		return MergeDoneMsg{Result: result, Generation: gen}
	}
}

// tickCmd returns a command that sends a TickMsg after 200ms.
func tickCmd() tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// sampleSysStatsCmd reads system and process resource usage.
func sampleSysStatsCmd(ctx context.Context, s *sysmon.Sampler) tea.Cmd {
	return func() tea.Msg {
		return SysStatsMsg{Stats: s.Sample(ctx)}
	}
}

// watchContextCmd waits for context cancellation and sends a message.
func watchContextCmd(ctx context.Context) tea.Cmd {
	return func() tea.Msg {
		<-ctx.Done()
		return ContextCancelledMsg{Err: ctx.Err()}
	}
}
