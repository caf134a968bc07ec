package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/pdfbasics/internal/ui"
)

// Style variables for the TUI.
// Initialized from the ui theme system via initTUIStyles().
var (
	panelStyle         lipgloss.Style
	panelTitleStyle    lipgloss.Style
	headerStyle        lipgloss.Style
	titleStyle         lipgloss.Style
	versionStyle       lipgloss.Style
	logTimeStyle       lipgloss.Style
	logInfoStyle       lipgloss.Style
	logSuccessStyle    lipgloss.Style
	logWarnStyle       lipgloss.Style
	logErrorStyle      lipgloss.Style
	fileIndexStyle     lipgloss.Style
	fileCursorStyle    lipgloss.Style
	fileMutedStyle     lipgloss.Style
	barFullStyle       lipgloss.Style
	barEmptyStyle      lipgloss.Style
	footerKeyStyle     lipgloss.Style
	footerDescStyle    lipgloss.Style
	statusIdleStyle    lipgloss.Style
	statusRunningStyle lipgloss.Style
	statusDoneStyle    lipgloss.Style
	statusErrorStyle   lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all TUI styles from the current ui theme.
// Called at package init and again from Run() after InitTheme has been invoked.
func initTUIStyles() {
	t := ui.GetCurrentPalette()

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text)

	panelTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent)

	versionStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	logTimeStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	logInfoStyle = lipgloss.NewStyle().
		Foreground(t.Info)

	logSuccessStyle = lipgloss.NewStyle().
		Foreground(t.Success)

	logWarnStyle = lipgloss.NewStyle().
		Foreground(t.Warning)

	logErrorStyle = lipgloss.NewStyle().
		Foreground(t.Error)

	fileIndexStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	fileCursorStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	fileMutedStyle = lipgloss.NewStyle().
		Foreground(t.Dim).
		Italic(true)

	barFullStyle = lipgloss.NewStyle().
		Foreground(t.Accent)

	barEmptyStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	footerKeyStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	footerDescStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	statusIdleStyle = lipgloss.NewStyle().
		Foreground(t.Dim).
		Bold(true)

	statusRunningStyle = lipgloss.NewStyle().
		Foreground(t.Success).
		Bold(true)

	statusDoneStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	statusErrorStyle = lipgloss.NewStyle().
		Foreground(t.Error).
		Bold(true)
}

// helpStyles maps the footer styles onto the bubbles help component.
func helpStyles() help.Styles {
	return help.Styles{
		ShortKey:       footerKeyStyle,
		ShortDesc:      footerDescStyle,
		ShortSeparator: footerDescStyle,
		Ellipsis:       footerDescStyle,
		FullKey:        footerKeyStyle,
		FullDesc:       footerDescStyle,
		FullSeparator:  footerDescStyle,
	}
}
