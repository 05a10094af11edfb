// Package source reads the two sides of a file diff from the file system
// or a git repository and turns them into engine inputs.
package source

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrEncodingUnavailable is returned when content cannot be read as text.
// Such files are diffed as binary.
var ErrEncodingUnavailable = errors.New("encoding unavailable")

// binarySniffLen matches the prefix git inspects for NUL bytes
const binarySniffLen = 8000

var (
	bomUTF16LE = []byte{0xff, 0xfe}
	bomUTF16BE = []byte{0xfe, 0xff}
)

// Decode returns raw content as text. UTF-8 is passed through unchanged so
// that patches match the bytes on disk; UTF-16 needs a byte order mark and
// is converted to UTF-8.
func Decode(raw []byte) (string, error) {
	if bytes.HasPrefix(raw, bomUTF16LE) || bytes.HasPrefix(raw, bomUTF16BE) {
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrEncodingUnavailable, err)
		}
		return string(out), nil
	}
	if looksBinary(raw) || !utf8.Valid(raw) {
		return "", ErrEncodingUnavailable
	}
	return string(raw), nil
}

func looksBinary(raw []byte) bool {
	if len(raw) > binarySniffLen {
		raw = raw[:binarySniffLen]
	}
	return bytes.IndexByte(raw, 0) >= 0
}
