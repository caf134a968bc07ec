package session

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// OutputTimeLayout formats the timestamp embedded in output file names.
const OutputTimeLayout = "2006-01-02_15-04-05"

// OutputName returns merged_<yyyy-MM-dd_HH-mm-ss>.pdf for the given instant,
// in its own location.
func OutputName(now time.Time) string {
	return "merged_" + now.Format(OutputTimeLayout) + ".pdf"
}

// OutputPath joins dir and OutputName(now).
func OutputPath(dir string, now time.Time) string {
	return filepath.Join(dir, OutputName(now))
}

// DefaultOutputDir returns the user's home directory.
func DefaultOutputDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return home, nil
}
