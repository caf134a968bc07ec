package tui

import (
	"strings"
	"time"
)

// maxLogEntries bounds the log panel history.
const maxLogEntries = 200

type logLevel int

const (
	levelInfo logLevel = iota
	levelSuccess
	levelWarn
	levelError
)

type logEntry struct {
	at    time.Time
	level logLevel
	text  string
}

// LogsModel is the scrolling activity log shown next to the file list.
type LogsModel struct {
	entries []logEntry
	width   int
	height  int
}

// NewLogsModel creates an empty log panel.
func NewLogsModel() LogsModel {
	return LogsModel{}
}

// SetSize updates the panel dimensions, borders included.
func (l *LogsModel) SetSize(w, h int) {
	l.width = w
	l.height = h
}

// Info, Success, Warn and Error append an entry at the given time.
func (l *LogsModel) Info(at time.Time, text string)    { l.add(at, levelInfo, text) }
func (l *LogsModel) Success(at time.Time, text string) { l.add(at, levelSuccess, text) }
func (l *LogsModel) Warn(at time.Time, text string)    { l.add(at, levelWarn, text) }
func (l *LogsModel) Error(at time.Time, text string)   { l.add(at, levelError, text) }

func (l *LogsModel) add(at time.Time, level logLevel, text string) {
	l.entries = append(l.entries, logEntry{at: at, level: level, text: text})
	if over := len(l.entries) - maxLogEntries; over > 0 {
		l.entries = append([]logEntry(nil), l.entries[over:]...)
	}
}

// Len returns the number of stored entries.
func (l LogsModel) Len() int {
	return len(l.entries)
}

// View renders the most recent entries that fit the panel.
func (l LogsModel) View() string {
	rows := l.height - 3
	if rows < 1 {
		rows = 1
	}
	start := len(l.entries) - rows
	if start < 0 {
		start = 0
	}

	lines := []string{panelTitleStyle.Render("Activity")}
	for _, e := range l.entries[start:] {
		lines = append(lines, logTimeStyle.Render(e.at.Format("15:04:05"))+" "+e.style()(e.text))
	}

	return panelStyle.
		Width(l.width - 2).
		Height(l.height - 2).
		Render(strings.Join(lines, "\n"))
}

func (e logEntry) style() func(...string) string {
	switch e.level {
	case levelSuccess:
		return logSuccessStyle.Render
	case levelWarn:
		return logWarnStyle.Render
	case levelError:
		return logErrorStyle.Render
	default:
		return logInfoStyle.Render
	}
}
