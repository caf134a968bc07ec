// Package config handles command-line and environment configuration for
// pdfbasics.
package config

import (
	"flag"
	"fmt"
	"io"
	"runtime"
	"strings"
	"time"

	apperrors "github.com/agbru/pdfbasics/internal/errors"
	"github.com/agbru/pdfbasics/internal/ui"
)

// EnvPrefix is prepended to every environment variable read by the
// configuration layer (e.g. PDFBASICS_OUTPUT_DIR).
const EnvPrefix = "PDFBASICS_"

// DefaultTimeout leaves merges and inspections unbounded.
const DefaultTimeout time.Duration = 0

// Mode is the application entry point selected by the configuration.
type Mode string

// Application modes.
const (
	ModeTUI        Mode = "tui"
	ModeREPL       Mode = "repl"
	ModeMerge      Mode = "merge"
	ModeInspect    Mode = "inspect"
	ModeCompletion Mode = "completion"
)

// AppConfig aggregates all configuration parameters of the application.
type AppConfig struct {
	// Files are the positional arguments: documents to merge or inspect, in order.
	Files []string
	// OutputFile is the full destination path. When empty, a timestamped name
	// is generated inside OutputDir.
	OutputFile string
	// OutputDir is the directory for generated output names. Defaults to the
	// user's home directory.
	OutputDir string
	// Title, Creator and Subject form the metadata triple of merged documents.
	Title   string
	Creator string
	Subject string
	// TUI forces the interactive terminal UI, even with positional files.
	TUI bool
	// REPL starts the line-oriented interactive shell.
	REPL bool
	// Inspect reports page count and metadata of Files instead of merging.
	Inspect bool
	// Jobs bounds the number of documents inspected concurrently.
	Jobs int
	// Timeout bounds each merge or inspection. Zero means no limit.
	Timeout time.Duration
	// Quiet suppresses progress output.
	Quiet bool
	// Verbose enables debug logging and memory statistics.
	Verbose bool
	// NoColor disables colored output. It overrides Theme.
	NoColor bool
	// Theme names the color scheme (see ui.ThemeNames). Empty selects the
	// default.
	Theme string
	// MetricsFile, when set, receives a Prometheus text exposition after each merge.
	MetricsFile string
	// LogFile, when set, receives structured logs. The TUI logs nowhere else.
	LogFile string
	// Completion names a shell to generate a completion script for.
	Completion string
}

// Mode returns the entry point implied by the configuration.
func (c AppConfig) Mode() Mode {
	switch {
	case c.Completion != "":
		return ModeCompletion
	case c.Inspect:
		return ModeInspect
	case c.REPL:
		return ModeREPL
	case c.TUI || len(c.Files) == 0:
		return ModeTUI
	default:
		return ModeMerge
	}
}

// Validate checks the configuration for conflicting or invalid values.
//
// Returns:
//   - error: A ConfigError describing the first problem found, or nil.
func (c AppConfig) Validate() error {
	switch {
	case c.TUI && c.REPL:
		return apperrors.NewConfigError("--tui and --repl are mutually exclusive")
	case c.Inspect && (c.TUI || c.REPL):
		return apperrors.NewConfigError("--inspect cannot be combined with --tui or --repl")
	case c.Inspect && len(c.Files) == 0:
		return apperrors.NewConfigError("--inspect requires at least one file")
	case c.Quiet && c.Verbose:
		return apperrors.NewConfigError("--quiet and --verbose are mutually exclusive")
	case c.OutputFile != "" && c.OutputDir != "":
		return apperrors.NewConfigError("--output and --output-dir are mutually exclusive")
	case c.Jobs < 1:
		return apperrors.NewConfigError("--jobs must be at least 1, got %d", c.Jobs)
	case c.Timeout < 0:
		return apperrors.NewConfigError("--timeout must not be negative, got %s", c.Timeout)
	}
	if _, ok := ui.LookupTheme(c.Theme); c.Theme != "" && !ok {
		return apperrors.NewConfigError("unknown theme %q (accepted values: %s)", c.Theme, strings.Join(ui.ThemeNames(), ", "))
	}
	if c.Completion != "" && !isSupportedShell(c.Completion) {
		return apperrors.NewConfigError("unsupported shell %q (accepted values: %s)", c.Completion, strings.Join(SupportedShells, ", "))
	}
	return nil
}

// SupportedShells lists the shells --completion accepts.
var SupportedShells = []string{"bash", "zsh", "fish", "powershell"}

func isSupportedShell(s string) bool {
	for _, sh := range SupportedShells {
		if s == sh || (s == "ps" && sh == "powershell") {
			return true
		}
	}
	return false
}

// ParseConfig parses command-line arguments and environment variables into
// an AppConfig. Flags take precedence over PDFBASICS_* variables, which take
// precedence over defaults.
//
// Parameters:
//   - programName: The program name shown in usage output.
//   - args: The arguments without the program name.
//   - errorWriter: Where usage and parse errors are written.
//
// Returns:
//   - AppConfig: The parsed configuration.
//   - error: flag.ErrHelp when help was requested, a parse error, or a
//     ConfigError from Validate.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	fs.Usage = func() {
		fmt.Fprintf(errorWriter, "Usage: %s [flags] [file.pdf ...]\n\n", programName)
		fmt.Fprintln(errorWriter, "Merges PDF files, in the order given, into one PDF/A-1b document.")
		fmt.Fprintln(errorWriter, "Without files an interactive terminal UI starts; drop files onto it to build the list.")
		fmt.Fprintln(errorWriter)
		fmt.Fprintln(errorWriter, "Flags:")
		fs.PrintDefaults()
		fmt.Fprintln(errorWriter)
		fmt.Fprintf(errorWriter, "Every flag can also be set through a %s* environment variable.\n", EnvPrefix)
	}

	config := AppConfig{}
	fs.StringVar(&config.OutputFile, "output", "", "Output file path (default: <output-dir>/merged_<timestamp>.pdf).")
	fs.StringVar(&config.OutputFile, "o", "", "Output file path (shorthand).")
	fs.StringVar(&config.OutputDir, "output-dir", "", "Directory for generated output names (default: home directory).")
	fs.StringVar(&config.Title, "title", "", "Document title written to Info and XMP.")
	fs.StringVar(&config.Creator, "creator", "", "Document creator written to Info and XMP.")
	fs.StringVar(&config.Subject, "subject", "", "Document subject written to Info and XMP.")
	fs.BoolVar(&config.TUI, "tui", false, "Start the interactive terminal UI.")
	fs.BoolVar(&config.REPL, "repl", false, "Start the interactive command shell.")
	fs.BoolVar(&config.Inspect, "inspect", false, "Report pages and metadata of the given files instead of merging.")
	fs.IntVar(&config.Jobs, "jobs", runtime.NumCPU(), "Number of files inspected concurrently.")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum time for each merge or inspection (0 for no limit).")
	fs.BoolVar(&config.Quiet, "quiet", false, "Suppress progress output.")
	fs.BoolVar(&config.Quiet, "q", false, "Suppress progress output (shorthand).")
	fs.BoolVar(&config.Verbose, "verbose", false, "Enable debug logging and memory statistics.")
	fs.BoolVar(&config.Verbose, "v", false, "Enable debug logging (shorthand).")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&config.Theme, "theme", ui.DefaultThemeName, "Color theme ("+strings.Join(ui.ThemeNames(), ", ")+").")
	fs.StringVar(&config.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file after each merge.")
	fs.StringVar(&config.LogFile, "log-file", "", "Write structured logs to this file.")
	fs.StringVar(&config.Completion, "completion", "", "Generate a completion script (bash, zsh, fish, powershell).")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	config.Files = fs.Args()

	applyEnvOverrides(&config, fs)

	if err := config.Validate(); err != nil {
		fmt.Fprintln(errorWriter, "Error:", err)
		return AppConfig{}, err
	}
	return config, nil
}
