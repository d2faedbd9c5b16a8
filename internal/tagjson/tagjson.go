// Package tagjson parses JSON tag payloads carried inside string literals.
//
// The literal is decoded first (package escape) and only the resulting bytes
// reach the JSON parser. This package never looks at literal-level escapes,
// which is what lets a literal like '{\"b\":\"\'a\'=b\"}' keep its inner
// single quotes for the JSON layer.
//
// Parsed payloads are stored in canonical form: object keys sorted by UTF-16
// code units, strings NFC-normalized, no HTML escaping, numbers kept as
// written.
package tagjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/sqlesc/internal/escape"
)

// ErrNotObject is returned when a tag payload is valid JSON but not an object.
var ErrNotObject = errors.New("tagjson: payload must be a JSON object")

// Object is a parsed tag payload. Values are string, json.Number, bool,
// nil, []any or map[string]any.
type Object map[string]any

// Parse parses an already-decoded literal value as a JSON object.
func Parse(decoded string) (Object, error) {
	dec := json.NewDecoder(strings.NewReader(decoded))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("tagjson: parse: %w", err)
	}
	// Reject trailing data after the first value.
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("tagjson: parse: unexpected data after object")
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return Object(obj), nil
}

// DecodeTagLiteral decodes a quoted literal and parses its value as a tag
// payload. It returns the object and its canonical encoding.
func DecodeTagLiteral(raw string, quote byte, opts escape.LiteralOptions) (Object, []byte, error) {
	decoded, err := escape.DecodeLiteralWith(raw, quote, opts)
	if err != nil {
		return nil, nil, err
	}
	obj, err := Parse(decoded)
	if err != nil {
		return nil, nil, err
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return nil, nil, err
	}
	return obj, canonical, nil
}

// MarshalCanonical produces deterministic JSON for v.
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		buf.WriteString("null")
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case string:
		writeString(buf, val)
	case json.Number:
		buf.WriteString(val.String())
	case int:
		fmt.Fprintf(buf, "%d", val)
	case int64:
		fmt.Fprintf(buf, "%d", val)
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case Object:
		return writeObject(buf, val)
	case map[string]any:
		return writeObject(buf, val)
	default:
		return fmt.Errorf("tagjson: unsupported type for canonical JSON: %T", v)
	}
	return nil
}

func writeObject(buf *bytes.Buffer, obj map[string]any) error {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)

	buf.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeString(buf, k)
		buf.WriteByte(':')
		if err := writeCanonical(buf, obj[k]); err != nil {
			return fmt.Errorf("value for key %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// writeString escapes only what JSON requires: quote, backslash and
// control characters. <, >, &, U+2028 and U+2029 are written as is.
func writeString(buf *bytes.Buffer, s string) {
	const hex = "0123456789abcdef"

	buf.WriteByte('"')
	for _, r := range norm.NFC.String(s) {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				buf.WriteString(`\u00`)
				buf.WriteByte(hex[r>>4])
				buf.WriteByte(hex[r&0xf])
				continue
			}
			buf.WriteRune(r)
		}
	}
	buf.WriteByte('"')
}

// compareUTF16 orders keys by UTF-16 code units, not UTF-8 bytes.
func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	return slices.Compare(a16, b16)
}
