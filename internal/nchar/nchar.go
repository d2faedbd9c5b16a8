// Package nchar converts between canonical strings and the byte layouts used
// to store wide ("nchar") column values.
//
// Matching on wide values always happens on decoded runes, so a multi-byte
// character is never split by a single-character wildcard.
package nchar

import (
	"errors"
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// Encoding names a wide storage layout.
type Encoding string

const (
	// UCS4 stores one little-endian 32-bit code point per character.
	UCS4 Encoding = "ucs4"

	// UTF16 stores little-endian UTF-16 code units.
	UTF16 Encoding = "utf16"

	// UTF8 stores the canonical string bytes unchanged.
	UTF8 Encoding = "utf8"
)

// ErrTruncated is returned when stored bytes are not a whole number of
// code units for the encoding.
var ErrTruncated = errors.New("nchar: truncated code unit")

// Encodings lists every supported encoding, in a stable order.
var Encodings = []Encoding{UCS4, UTF16, UTF8}

// Valid reports whether e is a supported encoding.
func (e Encoding) Valid() bool {
	switch e {
	case UCS4, UTF16, UTF8:
		return true
	}
	return false
}

// unitSize returns the code unit width in bytes.
func (e Encoding) unitSize() int {
	switch e {
	case UCS4:
		return 4
	case UTF16:
		return 2
	default:
		return 1
	}
}

func (e Encoding) codec() (encoding.Encoding, error) {
	switch e {
	case UCS4:
		return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM), nil
	case UTF16:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case UTF8:
		return encoding.Nop, nil
	default:
		return nil, fmt.Errorf("nchar: unsupported encoding %q", string(e))
	}
}

// Encode converts a canonical string into its stored form.
func (e Encoding) Encode(s string) ([]byte, error) {
	c, err := e.codec()
	if err != nil {
		return nil, err
	}
	out, err := c.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("nchar: encode %s: %w", e, err)
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}

// Decode converts stored bytes back into the canonical string.
func (e Encoding) Decode(b []byte) (string, error) {
	if len(b)%e.unitSize() != 0 {
		return "", fmt.Errorf("%w: %d bytes for %s", ErrTruncated, len(b), e)
	}
	c, err := e.codec()
	if err != nil {
		return "", err
	}
	out, err := c.NewDecoder().Bytes(b)
	if err != nil {
		return "", fmt.Errorf("nchar: decode %s: %w", e, err)
	}
	return string(out), nil
}
