package escape

import "strings"

// DecodeIdentifier decodes a delimited identifier such as `zz\t`.
//
// Backslashes are kept verbatim. A delimiter preceded by an odd number of
// backslashes is escaped: one backslash is consumed and the delimiter
// becomes part of the name. With an even number (including zero) the
// delimiter closes the identifier, unless it is immediately followed by a
// second delimiter, which is the doubled form of an escaped delimiter.
//
// Whitespace is significant; `      ` is a valid six-space name.
func DecodeIdentifier(raw string, delim byte) (string, error) {
	if delim == '\\' || delim == 0 {
		return "", newDecodeError(ErrCodeInvalidDelimiter, -1, "unsupported identifier delimiter %q", delim)
	}
	if len(raw) == 0 || raw[0] != delim {
		return "", newDecodeError(ErrCodeInvalidDelimiter, 0, "identifier must start with %q", delim)
	}

	var b strings.Builder
	b.Grow(len(raw))

	// run counts consecutive backslashes not yet written.
	run := 0
	for i := 1; i < len(raw); i++ {
		c := raw[i]
		switch c {
		case '\\':
			run++

		case delim:
			if run%2 == 1 {
				writeBackslashes(&b, run-1)
				b.WriteByte(delim)
				run = 0
				continue
			}
			writeBackslashes(&b, run)
			run = 0

			if i+1 < len(raw) && raw[i+1] == delim {
				b.WriteByte(delim)
				i++
				continue
			}
			if i != len(raw)-1 {
				return "", newDecodeError(ErrCodeUnterminatedIdentifier, i, "unescaped %q inside identifier", delim)
			}
			if b.Len() == 0 {
				return "", newDecodeError(ErrCodeEmptyIdentifier, i, "identifier is empty")
			}
			return b.String(), nil

		default:
			writeBackslashes(&b, run)
			run = 0
			b.WriteByte(c)
		}
	}

	return "", newDecodeError(ErrCodeUnterminatedIdentifier, len(raw), "missing closing %q", delim)
}

// QuoteIdentifier delimits name so that DecodeIdentifier returns it
// unchanged. Interior delimiters are doubled.
//
// Names in which an odd run of backslashes sits directly before a delimiter
// or at the very end cannot be written in this grammar and are rejected
// with ErrCodeUnrepresentable.
func QuoteIdentifier(name string, delim byte) (string, error) {
	if delim == '\\' || delim == 0 {
		return "", newDecodeError(ErrCodeInvalidDelimiter, -1, "unsupported identifier delimiter %q", delim)
	}
	if name == "" {
		return "", newDecodeError(ErrCodeEmptyIdentifier, -1, "identifier is empty")
	}

	var b strings.Builder
	b.Grow(len(name) + 2)
	b.WriteByte(delim)

	run := 0
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch c {
		case '\\':
			run++
		case delim:
			if run%2 == 1 {
				return "", newDecodeError(ErrCodeUnrepresentable, i, "odd backslash run before %q", delim)
			}
			run = 0
			b.WriteByte(delim)
		default:
			run = 0
		}
		b.WriteByte(c)
	}
	if run%2 == 1 {
		return "", newDecodeError(ErrCodeUnrepresentable, len(name), "odd backslash run at end of name")
	}

	b.WriteByte(delim)
	return b.String(), nil
}

func writeBackslashes(b *strings.Builder, n int) {
	for ; n > 0; n-- {
		b.WriteByte('\\')
	}
}
