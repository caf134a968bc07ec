package apperrors

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Application exit codes define the standard exit statuses for the application.
// These codes are used to signal the outcome of the program execution to the OS.
const (
	ExitSuccess       = 0   // Indicates successful execution.
	ExitErrorGeneric  = 1   // Indicates a generic error.
	ExitErrorMerge    = 3   // Indicates the PDF merge failed.
	ExitErrorConfig   = 4   // Indicates a configuration error.
	ExitErrorCanceled = 130 // Indicates the operation was canceled (e.g., SIGINT).
)

// ErrNoSources is returned when a merge is requested with an empty source list.
var ErrNoSources = errors.New("no source documents to merge")

// Stage identifies the step of a merge at which a failure occurred.
type Stage string

// Merge stages, in the order they are executed.
const (
	StageInput    Stage = "input"    // source list validation
	StageOpen     Stage = "open"     // opening a source file
	StageRead     Stage = "read"     // reading a source stream into memory
	StageMetadata Stage = "metadata" // building the document info / XMP packet
	StageEngine   Stage = "engine"   // the PDF engine merge itself
	StageWrite    Stage = "write"    // persisting the merged document
)

// ConfigError represents a user configuration error, such as invalid flags or
// values. It indicates that the application cannot proceed due to incorrect user input.
type ConfigError struct {
	// Message explains the specific configuration error.
	Message string
}

// Error returns the error message for a ConfigError.
func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a new ConfigError with a formatted message.
//
// Parameters:
//   - format: A format string (see fmt.Sprintf).
//   - a: Arguments to be formatted into the string.
//
// Returns:
//   - error: A new ConfigError instance containing the formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// MergeError is the single failure reported by a merge attempt. Whatever went
// wrong (an unreadable file, bad metadata, a corrupt PDF) is carried as Cause,
// and Stage records where it happened.
type MergeError struct {
	// Stage is the merge step that failed.
	Stage Stage
	// Path is the source file involved, when the failure concerns one.
	Path string
	// Cause is the underlying error.
	Cause error
}

// Error returns a message naming the failed stage and the cause.
func (e *MergeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("pdf merge problem (%s %s): %v", e.Stage, e.Path, e.Cause)
	}
	return fmt.Sprintf("pdf merge problem (%s): %v", e.Stage, e.Cause)
}

// Unwrap returns the original cause, allowing errors.Is and errors.As to
// inspect the chain.
func (e *MergeError) Unwrap() error { return e.Cause }

// NewMergeError wraps cause as a MergeError for the given stage. A cause that
// already is a MergeError is returned unchanged so that the innermost stage wins.
func NewMergeError(stage Stage, cause error) error {
	if cause == nil {
		return nil
	}
	var me *MergeError
	if errors.As(cause, &me) {
		return cause
	}
	return &MergeError{Stage: stage, Cause: cause}
}

// ValidationError represents an input validation failure. It identifies which
// field failed validation and provides a human-readable explanation.
type ValidationError struct {
	// Field is the name of the field that failed validation.
	Field string
	// Message explains the validation failure.
	Message string
}

// Error returns a formatted message describing the validation failure.
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error for %q: %s", e.Field, e.Message)
}

// WrapError wraps an error with additional context using fmt.Errorf and %w.
// This allows the wrapped error to be unwrapped with errors.Unwrap() and
// checked with errors.Is() and errors.As().
//
// Parameters:
//   - err: The error to wrap.
//   - format: A format string for the context message.
//   - args: Arguments for the format string.
//
// Returns:
//   - error: The wrapped error, or nil if err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	message := fmt.Sprintf(format, args...)
	return fmt.Errorf("%s: %w", message, err)
}

// IsContextError checks if the error is a context cancellation or deadline exceeded error.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// HandleMergeError prints err to out and maps it to a process exit code.
// A nil error maps to ExitSuccess and prints nothing.
func HandleMergeError(err error, out io.Writer) int {
	if err == nil {
		return ExitSuccess
	}

	var configErr ConfigError
	var mergeErr *MergeError
	switch {
	case IsContextError(err):
		fmt.Fprintf(out, "Merge canceled: %v\n", err)
		return ExitErrorCanceled
	case errors.As(err, &configErr):
		fmt.Fprintf(out, "Configuration error: %v\n", err)
		return ExitErrorConfig
	case errors.As(err, &mergeErr):
		fmt.Fprintf(out, "Error: %v\n", err)
		return ExitErrorMerge
	default:
		fmt.Fprintf(out, "Error: %v\n", err)
		return ExitErrorGeneric
	}
}
