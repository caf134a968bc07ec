package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/agbru/pdfbasics/internal/cli"
	"github.com/agbru/pdfbasics/internal/config"
	apperrors "github.com/agbru/pdfbasics/internal/errors"
	"github.com/agbru/pdfbasics/internal/logging"
	"github.com/agbru/pdfbasics/internal/merge"
	"github.com/agbru/pdfbasics/internal/metrics"
	"github.com/agbru/pdfbasics/internal/orchestration"
	"github.com/agbru/pdfbasics/internal/pdfa"
	"github.com/agbru/pdfbasics/internal/session"
	"github.com/agbru/pdfbasics/internal/ui"
)

// Application represents the pdfbasics application instance.
type Application struct {
	Config    config.AppConfig
	Engine    merge.Engine
	ErrWriter io.Writer
	// In feeds the REPL. Defaults to os.Stdin.
	In io.Reader

	logger   logging.Logger
	recorder *metrics.Recorder
}

// AppOption configures an Application during construction.
type AppOption func(*Application)

// WithEngine sets a custom merge engine for the application.
func WithEngine(e merge.Engine) AppOption {
	return func(a *Application) { a.Engine = e }
}

// WithInput sets the reader the REPL takes commands from.
func WithInput(r io.Reader) AppOption {
	return func(a *Application) { a.In = r }
}

// New creates a new Application instance by parsing command-line arguments.
// args includes the program name.
func New(args []string, errWriter io.Writer, opts ...AppOption) (*Application, error) {
	app := &Application{ErrWriter: errWriter}
	for _, opt := range opts {
		opt(app)
	}
	if app.Engine == nil {
		app.Engine = merge.NewPDFCPUEngine()
	}

	programName := "pdfbasics"
	var cmdArgs []string
	if len(args) > 0 {
		programName = args[0]
		cmdArgs = args[1:]
	}

	cfg, err := config.ParseConfig(programName, cmdArgs, errWriter)
	if err != nil {
		return nil, err
	}

	app.Config = cfg
	return app, nil
}

// Run executes the application based on the configured mode.
func (a *Application) Run(ctx context.Context, out io.Writer) int {
	mode := a.Config.Mode()
	if mode == config.ModeCompletion {
		return a.runCompletion(out)
	}

	if err := ui.InitTheme(a.Config.Theme, a.Config.NoColor); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	logger, closeLog, err := a.setupLogger(mode)
	if err != nil {
		fmt.Fprintf(a.ErrWriter, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	defer closeLog()
	a.logger = logger
	a.recorder = metrics.NewRecorder()

	a.logger.Debug("starting", logging.String("mode", string(mode)), logging.String("version", Version))

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	switch mode {
	case config.ModeInspect:
		return a.runInspect(ctx, out)
	case config.ModeMerge:
		return a.runMerge(ctx, out)
	case config.ModeREPL:
		return a.runREPL(ctx, out)
	default:
		return a.runTUI(ctx)
	}
}

// runCompletion generates shell completion scripts.
func (a *Application) runCompletion(out io.Writer) int {
	if err := cli.GenerateCompletion(out, a.Config.Completion); err != nil {
		fmt.Fprintf(a.ErrWriter, "Error generating completion: %v\n", err)
		return apperrors.ExitErrorConfig
	}
	return apperrors.ExitSuccess
}

// setupLogger builds the application logger. Logs go to --log-file when set.
// Otherwise the TUI logs nowhere (the alternate screen owns the terminal) and
// the other modes log to stderr only in verbose mode.
func (a *Application) setupLogger(mode config.Mode) (logging.Logger, func(), error) {
	level := zerolog.InfoLevel
	if a.Config.Verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	if a.Config.LogFile != "" {
		f, err := os.OpenFile(a.Config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, apperrors.NewConfigError("cannot open log file: %v", err)
		}
		return logging.NewLogger(f, "pdfbasics"), func() { _ = f.Close() }, nil
	}
	if mode != config.ModeTUI && a.Config.Verbose {
		return logging.NewConsoleLogger(a.ErrWriter, "pdfbasics"), func() {}, nil
	}
	return logging.NewNopLogger(), func() {}, nil
}

// metadata returns the metadata triple stamped on merged documents.
func (a *Application) metadata() pdfa.Metadata {
	return pdfa.Metadata{
		Title:   a.Config.Title,
		Creator: a.Config.Creator,
		Subject: a.Config.Subject,
	}
}

// outputDir returns the configured output directory, defaulting to home.
func (a *Application) outputDir() (string, error) {
	if a.Config.OutputDir != "" {
		return a.Config.OutputDir, nil
	}
	return session.DefaultOutputDir()
}

// mergeOptions are the options shared by every merge of this run.
func (a *Application) mergeOptions() []merge.Option {
	return []merge.Option{
		merge.WithLogger(a.logger),
		merge.WithRecorder(a.recorder),
	}
}

// afterMerge exports metrics once a merge attempt returns.
func (a *Application) afterMerge(result orchestration.MergeResult) {
	a.exportMetrics()
	if result.Err != nil {
		a.logger.Error("merge failed", result.Err, logging.String("output", result.Output))
		return
	}
	a.logger.Info("merge complete",
		logging.String("output", result.Output),
		logging.Int("files", len(result.Files)),
		logging.Int64("bytes", result.Size),
		logging.Duration("duration", result.Duration))
}

// exportMetrics writes the metrics textfile if --metrics-file is set.
func (a *Application) exportMetrics() {
	if a.Config.MetricsFile == "" {
		return
	}
	if err := a.recorder.WriteTextfile(a.Config.MetricsFile); err != nil {
		a.logger.Error("writing metrics file", err, logging.String("path", a.Config.MetricsFile))
	}
}

// IsHelpError checks if the error is a help flag error (--help was used).
func IsHelpError(err error) bool {
	return errors.Is(err, flag.ErrHelp)
}
