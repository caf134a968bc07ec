// Package pdftest builds small, well-formed PDF documents for tests.
//
// Each page of a generated document carries a MediaBox whose width is chosen
// by the caller, so tests can tell documents apart after merging by looking at
// page dimensions alone.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// PageHeight is the MediaBox height of every generated page.
const PageHeight = 792

const pageContent = "q 0 0 1 rg 10 10 100 100 re f Q\n"

// Build returns a PDF 1.4 document with the given number of pages, each
// width points wide. pages must be at least 1.
func Build(pages int, width float64) []byte {
	if pages < 1 {
		pages = 1
	}
	var b bytes.Buffer
	var offsets []int

	b.WriteString("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n")

	obj := func(body string) {
		offsets = append(offsets, b.Len())
		fmt.Fprintf(&b, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	obj("<< /Type /Catalog /Pages 2 0 R >>")

	kids := make([]byte, 0, pages*8)
	for i := 0; i < pages; i++ {
		kids = fmt.Appendf(kids, "%d 0 R ", 3+2*i)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [ %s] /Count %d >>", kids, pages))

	for i := 0; i < pages; i++ {
		contentRef := 4 + 2*i
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %d] /Resources << >> /Contents %d 0 R >>",
			width, PageHeight, contentRef))
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(pageContent), pageContent))
	}

	xref := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&b, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&b, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return b.Bytes()
}

// WriteFile writes a generated document into dir and returns its path.
func WriteFile(tb testing.TB, dir, name string, pages int, width float64) string {
	tb.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, Build(pages, width), 0o644); err != nil {
		tb.Fatalf("writing %s: %v", path, err)
	}
	return path
}
