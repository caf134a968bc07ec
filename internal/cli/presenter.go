package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	apperrors "github.com/agbru/pdfbasics/internal/errors"
	"github.com/agbru/pdfbasics/internal/format"
	"github.com/agbru/pdfbasics/internal/merge"
	"github.com/agbru/pdfbasics/internal/metrics"
	"github.com/agbru/pdfbasics/internal/orchestration"
	"github.com/agbru/pdfbasics/internal/pdfa"
	"github.com/agbru/pdfbasics/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter for CLI output.
// It wraps the DisplayProgress function to provide a spinner and progress bar
// display during merges.
type CLIProgressReporter struct{}

// Verify that CLIProgressReporter implements orchestration.ProgressReporter.
var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress displays a spinner and progress bar for an ongoing merge.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan merge.Event, out io.Writer) {
	DisplayProgress(wg, progressChan, out)
}

// CLIResultPresenter implements orchestration.ResultPresenter for CLI output.
// It provides formatted, colorized output for merge and inspection results.
type CLIResultPresenter struct{}

// Verify interface compliance.
var (
	_ orchestration.ResultPresenter = CLIResultPresenter{}
	_ orchestration.ErrorHandler    = CLIResultPresenter{}
)

// PresentMergeResult displays the output path and size of a successful merge.
// In verbose mode the sources are listed in page order.
func (CLIResultPresenter) PresentMergeResult(result orchestration.MergeResult, verbose bool, out io.Writer) {
	fmt.Fprintf(out, "%s✅ Merged %d file(s)%s into %s%s%s\n",
		ui.ColorGreen(), len(result.Files), ui.ColorReset(),
		ui.ColorBold(), result.Output, ui.ColorReset())
	fmt.Fprintf(out, "   Size: %s%s%s   Time: %s%s%s\n",
		ui.ColorCyan(), format.FormatBytes(uint64(result.Size)), ui.ColorReset(),
		ui.ColorYellow(), format.FormatExecutionDuration(result.Duration), ui.ColorReset())
	if verbose {
		for i, f := range result.Files {
			fmt.Fprintf(out, "   %2d. %s\n", i+1, f)
		}
	}
}

// PresentInspection displays one block per document, in input order.
func (CLIResultPresenter) PresentInspection(results []orchestration.InspectResult, out io.Writer) {
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s%s%s\n", ui.ColorBold(), res.Path, ui.ColorReset())
		if res.Err != nil {
			fmt.Fprintf(out, "  %s❌ %v%s\n", ui.ColorRed(), res.Err, ui.ColorReset())
			continue
		}
		r := res.Report
		fmt.Fprintf(out, "  Pages:   %s%d%s\n", ui.ColorCyan(), r.Pages, ui.ColorReset())
		fmt.Fprintf(out, "  Title:   %s\n", quoteOrDash(r.Info.Title))
		fmt.Fprintf(out, "  Creator: %s\n", quoteOrDash(r.Info.Creator))
		fmt.Fprintf(out, "  Subject: %s\n", quoteOrDash(r.Info.Subject))
		fmt.Fprintf(out, "  PDF/A:   %s\n", FormatPDFAStatus(r))
		fmt.Fprintf(out, "  XMP:     %s\n", FormatXMPStatus(r))
	}
}

// FormatPDFAStatus describes the PDF/A identification of a report.
func FormatPDFAStatus(r *merge.Report) string {
	switch {
	case r.XMP == nil:
		return ui.ColorYellow() + "no identification" + ui.ColorReset()
	case r.PDFA():
		return fmt.Sprintf("%sPDF/A-%d%s%s", ui.ColorGreen(), pdfa.Part, strings.ToLower(pdfa.Conformance), ui.ColorReset())
	case r.XMP.Part == 0:
		return ui.ColorYellow() + "no identification" + ui.ColorReset()
	default:
		return fmt.Sprintf("%sPDF/A-%d%s (expected PDF/A-%d%s)%s", ui.ColorYellow(),
			r.XMP.Part, strings.ToLower(r.XMP.Conformance), pdfa.Part, strings.ToLower(pdfa.Conformance), ui.ColorReset())
	}
}

// FormatXMPStatus describes whether the XMP packet agrees with the Info
// dictionary.
func FormatXMPStatus(r *merge.Report) string {
	switch {
	case r.XMPError != nil:
		return fmt.Sprintf("%sunreadable (%v)%s", ui.ColorRed(), r.XMPError, ui.ColorReset())
	case r.XMP == nil:
		return "absent"
	case r.Consistent():
		return ui.ColorGreen() + "consistent with Info" + ui.ColorReset()
	default:
		return fmt.Sprintf("%sdiffers from Info (%s)%s", ui.ColorRed(),
			strings.Join(r.Mismatches(), ", "), ui.ColorReset())
	}
}

func quoteOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return fmt.Sprintf("%q", s)
}

// HandleError prints a merge failure and returns the matching exit code.
func (CLIResultPresenter) HandleError(err error, duration time.Duration, out io.Writer) int {
	if err == nil {
		return apperrors.ExitSuccess
	}
	fmt.Fprint(out, ui.ColorRed())
	code := apperrors.HandleMergeError(err, out)
	fmt.Fprint(out, ui.ColorReset())
	if duration > 0 {
		fmt.Fprintf(out, "Failed after %s.\n", format.FormatExecutionDuration(duration))
	}
	return code
}

// DisplayMemoryStats shows memory statistics around a merge.
func DisplayMemoryStats(fp metrics.MergeFootprint, out io.Writer) {
	fmt.Fprintf(out, "\nMemory Stats:\n")
	if fp.HeapGrowth >= 0 {
		fmt.Fprintf(out, "  Heap growth:     %s\n", format.FormatBytes(uint64(fp.HeapGrowth)))
	} else {
		fmt.Fprintf(out, "  Heap growth:     -%s (GC ran)\n", format.FormatBytes(uint64(-fp.HeapGrowth)))
	}
	fmt.Fprintf(out, "  Process memory:  %s\n", format.FormatBytes(fp.PeakSys))
	fmt.Fprintf(out, "  GC cycles:       %d\n", fp.GCCycles)
}

// displayName shortens a path to its base name for compact listings.
func displayName(p string) string {
	if base := filepath.Base(p); base != "." && base != string(filepath.Separator) {
		return base
	}
	return p
}
