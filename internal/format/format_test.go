package format

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

// TestFormatExecutionDuration verifies duration formatting.
func TestFormatExecutionDuration(t *testing.T) {
	t.Parallel()
	tests := []struct {
		d        time.Duration
		expected string
	}{
		{500 * time.Nanosecond, "0µs"},
		{750 * time.Microsecond, "750µs"},
		{42 * time.Millisecond, "42ms"},
		{1500 * time.Millisecond, "1.5s"},
		{2 * time.Minute, "2m0s"},
	}
	for _, tt := range tests {
		got := FormatExecutionDuration(tt.d)
		if got != tt.expected {
			t.Errorf("FormatExecutionDuration(%v) = %s; want %s", tt.d, got, tt.expected)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		n        uint64
		expected string
	}{
		{0, "0 B"},
		{1023, "1023 B"},
		{1024, "1.0 KiB"},
		{673548, "657.8 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{3 << 30, "3.0 GiB"},
	}
	for _, tt := range tests {
		if got := FormatBytes(tt.n); got != tt.expected {
			t.Errorf("FormatBytes(%d) = %q; want %q", tt.n, got, tt.expected)
		}
	}
}

func TestProgressBar(t *testing.T) {
	t.Parallel()
	tests := []struct {
		progress float64
		filled   int
	}{
		{-1, 0},
		{0, 0},
		{0.5, 5},
		{1, 10},
		{2, 10},
	}
	for _, tt := range tests {
		bar := ProgressBar(tt.progress, 10)
		if n := utf8.RuneCountInString(bar); n != 10 {
			t.Errorf("ProgressBar(%v) has %d runes, want 10", tt.progress, n)
		}
		if got := strings.Count(bar, "█"); got != tt.filled {
			t.Errorf("ProgressBar(%v) filled = %d, want %d", tt.progress, got, tt.filled)
		}
	}
}
