// Package apperrors provides tests for application error types.
package apperrors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestConfigError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		err         error
		expected    string
		checkTypeAs bool
	}{
		{
			name:     "Error returns message",
			err:      ConfigError{Message: "invalid flag value"},
			expected: "invalid flag value",
		},
		{
			name:     "NewConfigError creates formatted error",
			err:      NewConfigError("flags --%s and --%s are mutually exclusive", "tui", "repl"),
			expected: "flags --tui and --repl are mutually exclusive",
		},
		{
			name:        "ConfigError type assertion",
			err:         NewConfigError("test error"),
			expected:    "test error",
			checkTypeAs: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.err.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.err.Error())
			}
			if tt.checkTypeAs {
				var configErr ConfigError
				if !errors.As(tt.err, &configErr) {
					t.Error("expected error to be ConfigError type")
				}
			}
		})
	}
}

func TestMergeError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      *MergeError
		expected string
		checkIs  error
	}{
		{
			name:     "Error without path",
			err:      &MergeError{Stage: StageEngine, Cause: errors.New("corrupt xref table")},
			expected: "pdf merge problem (engine): corrupt xref table",
		},
		{
			name:     "Error with path",
			err:      &MergeError{Stage: StageOpen, Path: "/tmp/a.pdf", Cause: fs.ErrNotExist},
			expected: "pdf merge problem (open /tmp/a.pdf): file does not exist",
			checkIs:  fs.ErrNotExist,
		},
		{
			name:     "errors.Is finds ErrNoSources",
			err:      &MergeError{Stage: StageInput, Cause: ErrNoSources},
			expected: "pdf merge problem (input): no source documents to merge",
			checkIs:  ErrNoSources,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if tt.err.Error() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, tt.err.Error())
			}
			if tt.err.Unwrap() != tt.err.Cause {
				t.Error("Unwrap should return the original cause")
			}
			if tt.checkIs != nil && !errors.Is(tt.err, tt.checkIs) {
				t.Errorf("errors.Is should find %v in the chain", tt.checkIs)
			}
		})
	}
}

func TestNewMergeError(t *testing.T) {
	t.Parallel()

	t.Run("nil cause yields nil", func(t *testing.T) {
		t.Parallel()
		if err := NewMergeError(StageEngine, nil); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("wraps plain cause", func(t *testing.T) {
		t.Parallel()
		err := NewMergeError(StageMetadata, errors.New("invalid UTF-8"))
		var me *MergeError
		if !errors.As(err, &me) {
			t.Fatal("expected *MergeError")
		}
		if me.Stage != StageMetadata {
			t.Errorf("expected stage %q, got %q", StageMetadata, me.Stage)
		}
	})

	t.Run("keeps innermost stage", func(t *testing.T) {
		t.Parallel()
		inner := &MergeError{Stage: StageRead, Path: "b.pdf", Cause: errors.New("short read")}
		err := NewMergeError(StageEngine, fmt.Errorf("merging: %w", inner))
		var me *MergeError
		if !errors.As(err, &me) {
			t.Fatal("expected *MergeError")
		}
		if me.Stage != StageRead {
			t.Errorf("expected stage %q, got %q", StageRead, me.Stage)
		}
	})
}

func TestValidationError(t *testing.T) {
	t.Parallel()
	err := ValidationError{Field: "index", Message: "out of range"}
	expected := `validation error for "index": out of range`
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}

	var validationErr ValidationError
	if !errors.As(WrapError(err, "move failed"), &validationErr) {
		t.Error("errors.As should find ValidationError through WrapError")
	}
}

func TestWrapError(t *testing.T) {
	t.Parallel()

	if WrapError(nil, "context") != nil {
		t.Error("WrapError(nil) should return nil")
	}

	base := errors.New("base")
	wrapped := WrapError(base, "writing %s", "out.pdf")
	if wrapped.Error() != "writing out.pdf: base" {
		t.Errorf("unexpected message %q", wrapped.Error())
	}
	if !errors.Is(wrapped, base) {
		t.Error("errors.Is should find the base error")
	}
}

func TestIsContextError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"canceled", context.Canceled, true},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped canceled", fmt.Errorf("merge: %w", context.Canceled), true},
		{"other", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := IsContextError(tt.err); got != tt.want {
				t.Errorf("IsContextError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestHandleMergeError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  string
	}{
		{"nil", nil, ExitSuccess, ""},
		{"canceled", &MergeError{Stage: StageEngine, Cause: context.Canceled}, ExitErrorCanceled, "canceled"},
		{"config", NewConfigError("bad flag"), ExitErrorConfig, "Configuration error"},
		{"merge", &MergeError{Stage: StageEngine, Cause: errors.New("bad pdf")}, ExitErrorMerge, "bad pdf"},
		{"generic", errors.New("disk full"), ExitErrorGeneric, "disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			code := HandleMergeError(tt.err, &buf)
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d", code, tt.wantCode)
			}
			if !strings.Contains(buf.String(), tt.wantOut) {
				t.Errorf("output %q should contain %q", buf.String(), tt.wantOut)
			}
		})
	}
}
