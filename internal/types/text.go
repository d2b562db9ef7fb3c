package types

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// CleanText prepares a raw tag value for storage in a Tag.
//
// Trailing CR and LF characters are removed. Input that is not valid UTF-8
// is decoded as ISO-8859-1, the encoding legacy ID3 frames default to, and
// the result is NFC normalized.
func CleanText(s string) string {
	s = strings.TrimRight(s, "\r\n")
	if s == "" {
		return ""
	}
	if !utf8.ValidString(s) {
		decoded, err := charmap.ISO8859_1.NewDecoder().String(s)
		if err != nil {
			return ""
		}
		s = decoded
	}
	return norm.NFC.String(s)
}
