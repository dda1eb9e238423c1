package codec

import (
	"encoding/base64"
	"strings"
	"unicode"
)

// EncodeBase64 returns the standard, padded base64 encoding of b.
func EncodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeBase64 decodes standard padded base64. Whitespace, including the line
// breaks introduced by Wrap, is ignored.
func DecodeBase64(s string) ([]byte, error) {
	compact := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return base64.StdEncoding.DecodeString(compact)
}

// Wrap splits s into lines of at most width characters.
func Wrap(s string, width int) []string {
	if width <= 0 || len(s) <= width {
		if s == "" {
			return nil
		}
		return []string{s}
	}
	lines := make([]string, 0, (len(s)+width-1)/width)
	for i := 0; i < len(s); i += width {
		end := i + width
		if end > len(s) {
			end = len(s)
		}
		lines = append(lines, s[i:end])
	}
	return lines
}
