package pdfa

import (
	"fmt"
	"unicode/utf8"
)

// Metadata is the property triple written to both the document-information
// dictionary and the XMP packet of a merged document.
type Metadata struct {
	Title   string
	Creator string
	Subject string
}

// Info dictionary keys for the metadata triple.
const (
	InfoTitle   = "Title"
	InfoCreator = "Creator"
	InfoSubject = "Subject"
)

// Validate reports whether every field can be serialized into XML and into a
// PDF text string.
func (m Metadata) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"title", m.Title},
		{"creator", m.Creator},
		{"subject", m.Subject},
	} {
		if err := validateText(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

func validateText(name, value string) error {
	if !utf8.ValidString(value) {
		return fmt.Errorf("metadata %s is not valid UTF-8", name)
	}
	for _, r := range value {
		if !isXMLChar(r) {
			return fmt.Errorf("metadata %s contains character %U not allowed in XML", name, r)
		}
	}
	return nil
}

// InfoEntries returns the Info dictionary entries for m, keyed by PDF name.
func (m Metadata) InfoEntries() map[string]string {
	return map[string]string{
		InfoTitle:   m.Title,
		InfoCreator: m.Creator,
		InfoSubject: m.Subject,
	}
}

// Mismatches lists the fields in which m and other differ.
func (m Metadata) Mismatches(other Metadata) []string {
	var diff []string
	if m.Title != other.Title {
		diff = append(diff, "title")
	}
	if m.Creator != other.Creator {
		diff = append(diff, "creator")
	}
	if m.Subject != other.Subject {
		diff = append(diff, "subject")
	}
	return diff
}

// isXMLChar matches the Char production of XML 1.0.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		(r >= 0x20 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0xFFFD) ||
		(r >= 0x10000 && r <= 0x10FFFF)
}
