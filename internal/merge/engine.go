package merge

//go:generate mockgen -source=engine.go -destination=mocks/mock_engine.go -package=mocks

import (
	"context"
	"io"
	"time"

	"github.com/agbru/pdfbasics/internal/pdfa"
)

// Request is everything an Engine needs for one merge.
type Request struct {
	// Sources are the documents to concatenate, in page order.
	Sources []io.ReadSeeker
	// Info is written to the document-information dictionary and, together
	// with the engine's producer and Date, to the catalog's XMP packet.
	Info pdfa.Metadata
	// Date is the creation and modification instant recorded in both the
	// Info dictionary and the XMP packet. The zero value means now.
	Date time.Time
}

// Engine performs the PDF-level work of a merge.
type Engine interface {
	// Merge concatenates req.Sources, stamps req.Info into the Info
	// dictionary and a matching PDF/A-1b XMP packet, and writes the resulting
	// document to w.
	Merge(ctx context.Context, req Request, w io.Writer) error

	// Inspect reads a document and reports its page layout and metadata.
	Inspect(ctx context.Context, rs io.ReadSeeker) (*Report, error)
}

// Report describes a document as seen by Engine.Inspect.
type Report struct {
	// Pages is the number of pages in the document.
	Pages int
	// PageWidths holds the MediaBox width of each page, in page order.
	PageWidths []float64
	// Info is the metadata triple read from the document-information dictionary.
	Info pdfa.Metadata
	// Producer, Created and Modified hold the Info dictionary's /Producer,
	// /CreationDate and /ModDate entries.
	Producer string
	Created  time.Time
	Modified time.Time
	// XMP is the decoded catalog metadata stream, or nil if there is none.
	XMP *pdfa.Packet
	// XMPError is set when a metadata stream exists but could not be decoded.
	XMPError error
}

// PDFA reports whether the document's XMP packet claims PDF/A-1b.
func (r *Report) PDFA() bool {
	return r.XMP != nil && r.XMP.IsPDFA1B()
}

// Consistent reports whether the document has an XMP packet and every Info
// entry equals its XMP counterpart.
func (r *Report) Consistent() bool {
	return r.XMP != nil && len(r.Mismatches()) == 0
}

// Mismatches lists the Info entries whose XMP counterpart differs. It returns
// nil when there is no XMP packet.
func (r *Report) Mismatches() []string {
	if r.XMP == nil {
		return nil
	}
	diff := r.Info.Mismatches(r.XMP.Metadata)
	if r.Info.Creator != r.XMP.CreatorTool {
		diff = append(diff, "creator tool")
	}
	if r.Producer != r.XMP.Producer {
		diff = append(diff, "producer")
	}
	if !r.Created.Equal(r.XMP.CreateDate) {
		diff = append(diff, "creation date")
	}
	if !r.Modified.Equal(r.XMP.ModifyDate) {
		diff = append(diff, "modification date")
	}
	return diff
}
