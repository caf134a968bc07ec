package ui

// Color accessors return the ANSI escape code of the active theme. With the
// no-color theme every accessor returns an empty string.

// ColorReset returns the escape code that clears all formatting.
func ColorReset() string { return GetCurrentTheme().Reset }

// ColorBold returns the bold escape code.
func ColorBold() string { return GetCurrentTheme().Bold }

// ColorUnderline returns the underline escape code.
func ColorUnderline() string { return GetCurrentTheme().Underline }

// ColorGreen returns the success color.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorRed returns the error color.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorYellow returns the warning color.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorBlue returns the primary accent color.
func ColorBlue() string { return GetCurrentTheme().Primary }

// ColorMagenta returns the info color.
func ColorMagenta() string { return GetCurrentTheme().Info }

// ColorCyan returns the secondary color.
func ColorCyan() string { return GetCurrentTheme().Secondary }

// Colorize wraps text in color and a reset. An empty color leaves text as is.
func Colorize(color, text string) string {
	if color == "" {
		return text
	}
	return color + text + ColorReset()
}
