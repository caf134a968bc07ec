package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"testing"
)

func TestBuild_Layout(t *testing.T) {
	t.Parallel()
	doc := Build(3, 300)

	if !bytes.HasPrefix(doc, []byte("%PDF-1.4\n")) {
		t.Error("missing PDF header")
	}
	if !bytes.HasSuffix(doc, []byte("%%EOF\n")) {
		t.Error("missing EOF marker")
	}
	if got := bytes.Count(doc, []byte("/Type /Page ")); got != 3 {
		t.Errorf("page objects = %d, want 3", got)
	}
	if !bytes.Contains(doc, []byte("/MediaBox [0 0 300 792]")) {
		t.Error("MediaBox width not applied")
	}
	if !bytes.Contains(doc, []byte("/Count 3")) {
		t.Error("page tree count wrong")
	}
}

// TestBuild_XrefOffsets checks that every xref entry points at the matching
// "N 0 obj" header.
func TestBuild_XrefOffsets(t *testing.T) {
	t.Parallel()
	doc := Build(2, 200)

	start := regexp.MustCompile(`startxref\n(\d+)\n`).FindSubmatch(doc)
	if start == nil {
		t.Fatal("no startxref")
	}
	xrefAt, _ := strconv.Atoi(string(start[1]))
	if !bytes.HasPrefix(doc[xrefAt:], []byte("xref\n")) {
		t.Fatalf("startxref %d does not point at xref", xrefAt)
	}

	entries := regexp.MustCompile(`(\d{10}) 00000 n `).FindAllSubmatch(doc[xrefAt:], -1)
	if len(entries) != 6 {
		t.Fatalf("xref entries = %d, want 6", len(entries))
	}
	for i, e := range entries {
		off, _ := strconv.Atoi(string(e[1]))
		want := fmt.Sprintf("%d 0 obj", i+1)
		if !bytes.HasPrefix(doc[off:], []byte(want)) {
			t.Errorf("entry %d points at %q, want %q", i+1, doc[off:off+len(want)], want)
		}
	}
}

func TestBuild_MinimumOnePage(t *testing.T) {
	t.Parallel()
	if got := bytes.Count(Build(0, 100), []byte("/Type /Page ")); got != 1 {
		t.Errorf("page objects = %d, want 1", got)
	}
}

func TestWriteFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := WriteFile(t, dir, "a.pdf", 1, 100)

	if path != filepath.Join(dir, "a.pdf") {
		t.Errorf("path = %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, Build(1, 100)) {
		t.Error("written file differs from Build output")
	}
}
