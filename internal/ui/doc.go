// Package ui provides theme and color support for the application's user interface.
// It registers named color schemes (dark, light, amber and none), each pairing
// ANSI codes for the CLI and REPL with a lipgloss palette for the TUI.
// The scheme is chosen with --theme or PDFBASICS_THEME; --no-color and
// NO_COLOR force "none".
//
// This package is shared by the CLI, the REPL and the TUI.
package ui
