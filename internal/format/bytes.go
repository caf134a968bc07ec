package format

import "fmt"

// FormatBytes renders a byte count with a binary unit suffix (B, KiB, MiB, ...).
//
// Parameters:
//   - n: The number of bytes.
//
// Returns:
//   - string: The formatted size, e.g. "657.8 KiB".
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
