// Package textenc decodes platform file payloads into valid UTF-8 strings
package textenc

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Decode returns b as a UTF-8 string. Valid UTF-8 passes through unchanged;
// anything else is decoded as ISO-8859-1, and if that somehow fails the bytes
// are kept with invalid sequences replaced by U+FFFD.
// Text decoding never fails a repository
func Decode(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	if utf8.Valid(b) {
		return string(b)
	}
	if out, err := charmap.ISO8859_1.NewDecoder().Bytes(b); err == nil {
		return string(out)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}
