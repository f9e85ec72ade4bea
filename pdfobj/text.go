package pdfobj

import (
	"bytes"
	"encoding/hex"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF16 = []byte{0xFE, 0xFF}
	bomUTF8  = []byte{0xEF, 0xBB, 0xBF}
)

// DecodeText interprets b as a PDF text string: UTF-16BE or UTF-8 when a
// byte order mark is present, PDFDocEncoding otherwise.
func DecodeText(b []byte) string {
	switch {
	case bytes.HasPrefix(b, bomUTF16):
		dec := unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM).NewDecoder()
		out, err := dec.Bytes(b)
		if err == nil {
			return string(out)
		}
	case bytes.HasPrefix(b, bomUTF8):
		return string(b[len(bomUTF8):])
	}
	// PDFDocEncoding matches Latin-1 for every printable byte fields carry in practice.
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

// EncodeText returns the string object for a text value. Plain ASCII is
// kept as a literal, anything else becomes UTF-16BE with a byte order mark.
func EncodeText(s string) types.Object {
	if isPlainASCII(s) {
		return types.StringLiteral(Escape(s))
	}
	enc := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	b, err := enc.Bytes([]byte(s))
	if err != nil {
		b = []byte(s)
	}
	return types.HexLiteral(strings.ToUpper(hex.EncodeToString(b)))
}

func isPlainASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= utf8.RuneSelf {
			return false
		}
		if c < 0x20 && c != '\n' && c != '\r' && c != '\t' {
			return false
		}
	}
	return true
}

// Escape quotes s for use inside a literal string.
func Escape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '(', ')':
			b.WriteByte('\\')
			b.WriteByte(c)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Unescape resolves the escape sequences of a literal string body.
func Unescape(s string) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			out = append(out, c)
			continue
		}
		i++
		switch c = s[i]; c {
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
		default:
			if c >= '0' && c <= '7' {
				v := int(c - '0')
				for n := 1; n < 3 && i+1 < len(s) && s[i+1] >= '0' && s[i+1] <= '7'; n++ {
					i++
					v = v*8 + int(s[i]-'0')
				}
				out = append(out, byte(v))
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

// DecodeHex decodes a hex string body, ignoring whitespace and padding an odd final digit.
func DecodeHex(s string) []byte {
	clean := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == ' ' || c == '\n' || c == '\r' || c == '\t' || c == '\f' {
			continue
		}
		clean = append(clean, c)
	}
	if len(clean)%2 == 1 {
		clean = append(clean, '0')
	}
	out := make([]byte, hex.DecodedLen(len(clean)))
	n, err := hex.Decode(out, clean)
	if err != nil {
		return out[:n]
	}
	return out
}
