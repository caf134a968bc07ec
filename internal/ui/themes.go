package ui

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// DefaultThemeName is the theme used when none is configured.
const DefaultThemeName = "dark"

// Theme is a named color scheme. The ANSI fields color the one-shot output
// and the REPL; Palette colors the file-list TUI.
type Theme struct {
	Name string

	Primary   string // accents such as counts and prompts
	Secondary string // paths and configuration values
	Success   string
	Warning   string
	Error     string
	Info      string
	Bold      string
	Underline string
	Reset     string

	Palette Palette
}

// Palette holds the lipgloss colors of the TUI panels.
type Palette struct {
	Text    lipgloss.TerminalColor
	Border  lipgloss.TerminalColor
	Accent  lipgloss.TerminalColor
	Success lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Dim     lipgloss.TerminalColor
	Info    lipgloss.TerminalColor
}

var (
	// DarkTheme suits dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;39m",
		Secondary: "\033[38;5;245m",
		Success:   "\033[38;5;82m",
		Warning:   "\033[38;5;220m",
		Error:     "\033[38;5;196m",
		Info:      "\033[38;5;141m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
		Palette: Palette{
			Text:    lipgloss.Color("#E0E0E0"),
			Border:  lipgloss.Color("#3A7BD5"),
			Accent:  lipgloss.Color("#5FAFFF"),
			Success: lipgloss.Color("#9ECE6A"),
			Warning: lipgloss.Color("#E0AF68"),
			Error:   lipgloss.Color("#FF4444"),
			Dim:     lipgloss.Color("#666666"),
			Info:    lipgloss.Color("#BB9AF7"),
		},
	}

	// LightTheme uses darker tones readable on light backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   "\033[38;5;27m",
		Secondary: "\033[38;5;240m",
		Success:   "\033[38;5;28m",
		Warning:   "\033[38;5;130m",
		Error:     "\033[38;5;124m",
		Info:      "\033[38;5;54m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
		Palette: Palette{
			Text:    lipgloss.Color("#1F1F1F"),
			Border:  lipgloss.Color("#005FAF"),
			Accent:  lipgloss.Color("#0037A0"),
			Success: lipgloss.Color("#1E7B1E"),
			Warning: lipgloss.Color("#AF5F00"),
			Error:   lipgloss.Color("#AF0000"),
			Dim:     lipgloss.Color("#808080"),
			Info:    lipgloss.Color("#5F0087"),
		},
	}

	// AmberTheme is a warm, orange-dominant dark scheme.
	AmberTheme = Theme{
		Name:      "amber",
		Primary:   "\033[38;5;208m",
		Secondary: "\033[38;5;245m",
		Success:   "\033[38;5;82m",
		Warning:   "\033[38;5;214m",
		Error:     "\033[38;5;196m",
		Info:      "\033[38;5;69m",
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
		Palette: Palette{
			Text:    lipgloss.Color("#E0E0E0"),
			Border:  lipgloss.Color("#FF6600"),
			Accent:  lipgloss.Color("#FF8C00"),
			Success: lipgloss.Color("#9ECE6A"),
			Warning: lipgloss.Color("#FFB347"),
			Error:   lipgloss.Color("#FF4444"),
			Dim:     lipgloss.Color("#666666"),
			Info:    lipgloss.Color("#4488FF"),
		},
	}

	// NoColorTheme disables color. It is forced by --no-color and NO_COLOR.
	NoColorTheme = Theme{
		Name: "none",
		Palette: Palette{
			Text:    lipgloss.NoColor{},
			Border:  lipgloss.NoColor{},
			Accent:  lipgloss.NoColor{},
			Success: lipgloss.NoColor{},
			Warning: lipgloss.NoColor{},
			Error:   lipgloss.NoColor{},
			Dim:     lipgloss.NoColor{},
			Info:    lipgloss.NoColor{},
		},
	}

	themes = map[string]Theme{
		DarkTheme.Name:    DarkTheme,
		LightTheme.Name:   LightTheme,
		AmberTheme.Name:   AmberTheme,
		NoColorTheme.Name: NoColorTheme,
	}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// ThemeNames returns the names accepted by SetTheme, sorted.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LookupTheme returns the theme registered under name.
func LookupTheme(name string) (Theme, bool) {
	t, ok := themes[name]
	return t, ok
}

// GetCurrentTheme returns the active theme.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// GetCurrentPalette returns the TUI palette of the active theme.
func GetCurrentPalette() Palette {
	return GetCurrentTheme().Palette
}

// SetCurrentTheme installs t as the active theme. Tests use it to restore
// state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme activates the theme registered under name. An unknown name leaves
// the active theme unchanged.
func SetTheme(name string) error {
	t, ok := LookupTheme(name)
	if !ok {
		return fmt.Errorf("unknown theme %q", name)
	}
	SetCurrentTheme(t)
	return nil
}

// InitTheme selects the theme at startup. noColor or a NO_COLOR environment
// variable (https://no-color.org/) forces the no-color theme; an empty name
// selects DefaultThemeName.
func InitTheme(name string, noColor bool) error {
	if noColor {
		SetCurrentTheme(NoColorTheme)
		return nil
	}
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		SetCurrentTheme(NoColorTheme)
		return nil
	}
	if name == "" {
		name = DefaultThemeName
	}
	return SetTheme(name)
}
