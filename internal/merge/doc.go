// Package merge turns an ordered list of PDF sources into one PDF/A-1b
// identified document.
//
// The byte-level work is done by an Engine; PDFCPUEngine is the production
// implementation backed by github.com/pdfcpu/pdfcpu. Merger sits in front of
// the engine and owns the contract callers rely on:
//
//   - page order follows source order;
//   - the document-information dictionary and the XMP packet carry the same
//     title, creator, subject, producer and dates;
//   - every source is closed before the call returns, whatever the outcome;
//   - any failure is reported as a single *apperrors.MergeError and no
//     partial output is left behind.
package merge
