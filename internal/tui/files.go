package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// FilesModel renders the ordered file list with a cursor. The list itself
// lives in the session; this model only tracks the cursor and the viewport.
type FilesModel struct {
	cursor int
	offset int
	width  int
	height int
}

// NewFilesModel creates an empty file panel.
func NewFilesModel() FilesModel {
	return FilesModel{}
}

// SetSize updates the panel dimensions, borders included.
func (f *FilesModel) SetSize(w, h int) {
	f.width = w
	f.height = h
}

// Cursor returns the 0-based index of the selected entry.
func (f FilesModel) Cursor() int {
	return f.cursor
}

// SetCursor moves the cursor to i, clamped to a list of n entries.
func (f *FilesModel) SetCursor(i, n int) {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	f.cursor = i
	f.scrollToCursor()
}

func (f *FilesModel) visibleRows() int {
	rows := f.height - 3 // borders and title
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (f *FilesModel) scrollToCursor() {
	rows := f.visibleRows()
	if f.cursor < f.offset {
		f.offset = f.cursor
	}
	if f.cursor >= f.offset+rows {
		f.offset = f.cursor - rows + 1
	}
}

// View renders files with the cursor entry highlighted.
func (f FilesModel) View(files []string, locked bool) string {
	innerW := f.width - 4
	if innerW < 10 {
		innerW = 10
	}

	title := "Files"
	if locked {
		title += " (merging)"
	}
	lines := []string{panelTitleStyle.Render(title)}

	if len(files) == 0 {
		lines = append(lines, fileMutedStyle.Render("Paste or drop PDF files here, or press a to type a path."))
	}

	rows := f.visibleRows()
	end := f.offset + rows
	if end > len(files) {
		end = len(files)
	}
	for i := f.offset; i < end; i++ {
		lines = append(lines, f.renderRow(i, files[i], innerW))
	}

	content := strings.Join(lines, "\n")
	return panelStyle.
		Width(f.width - 2).
		Height(f.height - 2).
		Render(content)
}

func (f FilesModel) renderRow(i int, path string, width int) string {
	idx := fmt.Sprintf("%3d ", i+1)
	name := filepath.Base(path)
	dir := filepath.Dir(path)
	avail := width - lipgloss.Width(idx) - lipgloss.Width(name) - 3
	if avail > 0 {
		name += "  " + truncateLeft(dir, avail)
	}
	if i == f.cursor {
		return fileCursorStyle.Render("▸") + fileIndexStyle.Render(idx) + fileCursorStyle.Render(name)
	}
	return " " + fileIndexStyle.Render(idx) + name
}

// truncateLeft keeps the end of s so that it fits in width runes.
func truncateLeft(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return "…"
	}
	return "…" + string(r[len(r)-width+1:])
}
