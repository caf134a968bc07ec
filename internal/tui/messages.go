package tui

import (
	"time"

	"github.com/agbru/pdfbasics/internal/orchestration"
	"github.com/agbru/pdfbasics/internal/sysmon"
)

// ProgressMsg carries a progress snapshot of the running merge.
type ProgressMsg struct {
	Snapshot   orchestration.ProgressSnapshot
	Generation uint64
}

// ProgressDoneMsg is sent when the progress channel of a merge is closed.
type ProgressDoneMsg struct {
	Generation uint64
}

// MergeDoneMsg is sent when a merge returns, successfully or not.
type MergeDoneMsg struct {
	Result     orchestration.MergeResult
	Generation uint64
}

// TickMsg refreshes the elapsed time while a merge runs.
type TickMsg time.Time

// SysStatsMsg carries a resource usage sample taken while a merge runs.
type SysStatsMsg struct {
	Stats sysmon.Stats
}

// ContextCancelledMsg is sent when the parent context ends (signal).
type ContextCancelledMsg struct {
	Err error
}
