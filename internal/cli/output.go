// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//     Examples: [DisplayMergePlan], [DisplayQuietResult], [DisplayProgress].
//
//   - Format* functions return a formatted string without performing I/O.
//     They are pure functions suitable for composition.
//     Examples: [FormatQuietResult], [FormatProgress].

package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/agbru/pdfbasics/internal/orchestration"
	"github.com/agbru/pdfbasics/internal/pdfa"
	"github.com/agbru/pdfbasics/internal/ui"
)

// FormatQuietResult formats a merge result for quiet mode: the output path
// alone, so scripts can capture it.
func FormatQuietResult(result orchestration.MergeResult) string {
	return result.Output
}

// FormatTimeout renders a merge time limit, "none" when there is no limit.
func FormatTimeout(d time.Duration) string {
	if d <= 0 {
		return "none"
	}
	return d.String()
}

// DisplayQuietResult writes FormatQuietResult and a newline to out.
func DisplayQuietResult(out io.Writer, result orchestration.MergeResult) {
	fmt.Fprintln(out, FormatQuietResult(result))
}

// DisplayMergePlan shows what is about to be merged before the merge starts.
//
// Parameters:
//   - files: The source files, in page order.
//   - output: The destination path.
//   - meta: The metadata that will be stamped on the output.
//   - out: The writer for standard output.
func DisplayMergePlan(files []string, output string, meta pdfa.Metadata, out io.Writer) {
	fmt.Fprintf(out, "--- Merge Plan ---\n")
	for i, f := range files {
		fmt.Fprintf(out, "  %s%2d.%s %s\n", ui.ColorCyan(), i+1, ui.ColorReset(), displayName(f))
	}
	fmt.Fprintf(out, "Output: %s%s%s\n", ui.ColorBold(), output, ui.ColorReset())
	fmt.Fprintf(out, "Metadata: title=%s creator=%s subject=%s (PDF/A-%d%s)\n",
		quoteOrDash(meta.Title), quoteOrDash(meta.Creator), quoteOrDash(meta.Subject),
		pdfa.Part, pdfa.Conformance)
	fmt.Fprintf(out, "\n--- Starting Merge ---\n")
}

// DisplayFileList prints the numbered file list, or a hint when it is empty.
func DisplayFileList(files []string, out io.Writer) {
	if len(files) == 0 {
		fmt.Fprintf(out, "%sNo files. Use %sadd <path>%s%s or drop files here.%s\n",
			ui.ColorYellow(), ui.ColorBold(), ui.ColorReset(), ui.ColorYellow(), ui.ColorReset())
		return
	}
	for i, f := range files {
		fmt.Fprintf(out, "  %s%2d.%s %s\n", ui.ColorCyan(), i+1, ui.ColorReset(), f)
	}
}
