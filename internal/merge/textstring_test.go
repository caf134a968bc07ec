package merge

import (
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func TestEncodeText(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want types.Object
	}{
		{"empty", "", types.StringLiteral("")},
		{"plain", "Report", types.StringLiteral("Report")},
		{"parens", "a (b)", types.StringLiteral(`a \(b\)`)},
		{"backslash", `C:\x`, types.StringLiteral(`C:\\x`)},
		{"unicode", "é", types.HexLiteral("FEFF00E9")},
		{"newline", "a\nb", types.HexLiteral("FEFF0061000A0062")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := encodeText(tt.in); got != tt.want {
				t.Errorf("encodeText(%q) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecodeText(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		in      types.Object
		want    string
		wantErr bool
	}{
		{"nil", nil, "", false},
		{"literal", types.StringLiteral(`a \(b\) \\ c`), `a (b) \ c`, false},
		{"escapes", types.StringLiteral(`x\ny\101`), "x\nyA", false},
		{"utf16 hex", types.HexLiteral("FEFF00E9"), "é", false},
		{"utf16 hex with spaces", types.HexLiteral("FE FF 00 41"), "A", false},
		{"latin1 literal", types.StringLiteral("caf\xe9"), "café", false},
		{"bad hex", types.HexLiteral("ZZ"), "", true},
		{"wrong type", types.Integer(3), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := decodeText(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeText() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("decodeText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTextRoundTrip(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"", "plain", `(\)`, "naïve", "emoji 😀", "tab\there"} {
		got, err := decodeText(encodeText(s))
		if err != nil {
			t.Fatalf("decodeText(encodeText(%q)) error = %v", s, err)
		}
		if got != s {
			t.Errorf("round trip %q = %q", s, got)
		}
	}
}
