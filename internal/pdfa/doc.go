// Package pdfa builds the metadata that identifies a merged document as
// PDF/A-1b: the document-information triple (title, creator, subject) and the
// XMP packet that must repeat those values exactly.
//
// The XMP packet carries four schemas:
//
//   - PDF/A identification (pdfaid:part = 1, pdfaid:conformance = B)
//   - Dublin Core (dc:title, dc:creator, dc:description)
//   - XMP Basic (xmp:CreateDate, xmp:ModifyDate, xmp:MetadataDate, xmp:CreatorTool)
//   - Adobe PDF (pdf:Producer)
//
// The dates and the producer come from a Stamp, which the writer also uses
// for the Info dictionary's /CreationDate, /ModDate and /Producer entries.
//
// Packets produced by Build can be read back with Parse, which is what the
// inspection code uses to verify that a document's Info dictionary and its
// XMP metadata agree.
package pdfa
