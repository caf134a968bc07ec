// Package apperrors defines structured application error types,
// allowing for a clear distinction between error classes (configuration,
// merge, validation) and for carrying the underlying cause.
//
// Every failure of a merge attempt, whether the source could not be opened,
// the metadata could not be built or the PDF engine rejected a document, is
// reported as one *MergeError whose Stage names the failed step.
//
// Error Wrapping Guidelines:
// This package follows Go's error wrapping conventions using fmt.Errorf with %w.
// All error types that carry a cause implement the Unwrap() method to support
// errors.Is() and errors.As().
package apperrors
