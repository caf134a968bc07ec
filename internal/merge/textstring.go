package merge

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// encodeText returns s as a PDF text string object. Printable ASCII is written
// as an escaped literal; anything else as UTF-16BE with a byte order mark.
func encodeText(s string) types.Object {
	if isPlainASCII(s) {
		return types.StringLiteral(escapeLiteral(s))
	}
	u := utf16.Encode([]rune(s))
	b := make([]byte, 2, 2+2*len(u))
	b[0], b[1] = 0xFE, 0xFF
	for _, c := range u {
		b = append(b, byte(c>>8), byte(c))
	}
	return types.HexLiteral(strings.ToUpper(hex.EncodeToString(b)))
}

// decodeText is the inverse of encodeText for the string forms found in Info
// dictionaries.
func decodeText(o types.Object) (string, error) {
	var raw []byte
	switch v := o.(type) {
	case nil:
		return "", nil
	case types.StringLiteral:
		raw = unescapeLiteral(string(v))
	case types.HexLiteral:
		b, err := hex.DecodeString(strings.Map(dropSpace, string(v)))
		if err != nil {
			return "", fmt.Errorf("invalid hex string: %w", err)
		}
		raw = b
	default:
		return "", fmt.Errorf("unexpected %T for text string", o)
	}

	if len(raw) >= 2 && raw[0] == 0xFE && raw[1] == 0xFF {
		body := raw[2:]
		if len(body)%2 != 0 {
			return "", fmt.Errorf("odd-length UTF-16 text string")
		}
		u := make([]uint16, len(body)/2)
		for i := range u {
			u[i] = uint16(body[2*i])<<8 | uint16(body[2*i+1])
		}
		return string(utf16.Decode(u)), nil
	}
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	// PDFDocEncoding coincides with Latin-1 for the code points that matter here.
	runes := make([]rune, len(raw))
	for i, c := range raw {
		runes[i] = rune(c)
	}
	return string(runes), nil
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c < 0x20 || c > 0x7E {
			return false
		}
	}
	return true
}

func escapeLiteral(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '(', ')':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func unescapeLiteral(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			out = append(out, c)
			continue
		}
		i++
		switch e := s[i]; e {
		case 'n':
			out = append(out, '\n')
		case 'r':
			out = append(out, '\r')
		case 't':
			out = append(out, '\t')
		case 'b':
			out = append(out, '\b')
		case 'f':
			out = append(out, '\f')
		case '\r':
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case '\n':
			// line continuation
		default:
			if e >= '0' && e <= '7' {
				v := int(e - '0')
				for n := 0; n < 2 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7'; n++ {
					i++
					v = v*8 + int(s[i]-'0')
				}
				out = append(out, byte(v))
				continue
			}
			out = append(out, e)
		}
	}
	return out
}

func dropSpace(r rune) rune {
	switch r {
	case ' ', '\t', '\r', '\n', '\f':
		return -1
	}
	return r
}
