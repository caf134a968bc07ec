package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/pdfbasics/internal/format"
	"github.com/agbru/pdfbasics/internal/orchestration"
	"github.com/agbru/pdfbasics/internal/sysmon"
)

// mergeStatus is the state shown in the header.
type mergeStatus int

const (
	statusIdle mergeStatus = iota
	statusRunning
	statusDone
	statusFailed
)

// HeaderModel renders the top bar: title, version, file count and the state
// of the current or last merge.
type HeaderModel struct {
	version   string
	width     int
	files     int
	status    mergeStatus
	progress  orchestration.ProgressSnapshot
	sys       sysmon.Stats
	hasSys    bool
	startTime time.Time
	endTime   time.Time
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version string) HeaderModel {
	return HeaderModel{version: version}
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// SetFileCount updates the number of listed files.
func (h *HeaderModel) SetFileCount(n int) {
	h.files = n
}

// Start marks a merge as running from now.
func (h *HeaderModel) Start(now time.Time) {
	h.status = statusRunning
	h.progress = orchestration.ProgressSnapshot{}
	h.hasSys = false
	h.startTime = now
	h.endTime = time.Time{}
}

// SetProgress records the latest progress snapshot.
func (h *HeaderModel) SetProgress(s orchestration.ProgressSnapshot) {
	h.progress = s
}

// SetSysStats records the latest resource usage sample.
func (h *HeaderModel) SetSysStats(s sysmon.Stats) {
	h.sys = s
	h.hasSys = true
}

// Finish freezes the timer and records the outcome.
func (h *HeaderModel) Finish(now time.Time, failed bool) {
	h.endTime = now
	h.status = statusDone
	if failed {
		h.status = statusFailed
	}
}

func (h HeaderModel) elapsed(now time.Time) time.Duration {
	if !h.endTime.IsZero() {
		return h.endTime.Sub(h.startTime)
	}
	return now.Sub(h.startTime)
}

// View renders the header.
func (h HeaderModel) View(now time.Time) string {
	titleText := "PDF Basics"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	pipe := versionStyle.Render(" | ")

	parts := []string{
		titleStyle.Render(titleText),
		versionStyle.Render(fmt.Sprintf("%d file(s)", h.files)),
		h.statusView(now),
	}
	if h.status == statusRunning && h.hasSys {
		parts = append(parts, versionStyle.Render(formatSysStats(h.sys)))
	}
	row := strings.Join(parts, pipe)
	if gap := h.width - 2 - lipgloss.Width(row); gap > 0 {
		row += spaces(gap)
	}
	return headerStyle.Render(row)
}

func (h HeaderModel) statusView(now time.Time) string {
	elapsed := format.FormatExecutionDuration(h.elapsed(now))
	switch h.status {
	case statusRunning:
		bar := renderBar(h.progress.Fraction, 20)
		label := h.progress.Label
		if label == "" {
			label = "Starting"
		}
		return statusRunningStyle.Render("MERGING ") + bar + " " + label + " " + versionStyle.Render(elapsed)
	case statusDone:
		return statusDoneStyle.Render("DONE") + " " + versionStyle.Render(elapsed)
	case statusFailed:
		return statusErrorStyle.Render("FAILED") + " " + versionStyle.Render(elapsed)
	default:
		return statusIdleStyle.Render("IDLE")
	}
}

// renderBar draws a progress bar with the filled part in the accent color.
func renderBar(progress float64, width int) string {
	bar := []rune(format.ProgressBar(progress, width))
	filled := 0
	for filled < len(bar) && bar[filled] == '█' {
		filled++
	}
	return barFullStyle.Render(string(bar[:filled])) + barEmptyStyle.Render(string(bar[filled:]))
}

// spaces returns a string of n space characters.
func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

// formatSysStats renders a resource sample compactly.
func formatSysStats(s sysmon.Stats) string {
	text := fmt.Sprintf("CPU %.0f%% MEM %.0f%%", s.CPUPercent, s.MemPercent)
	if s.ProcessRSS > 0 {
		text += " RSS " + format.FormatBytes(s.ProcessRSS)
	}
	return text
}
