package escape

import "strings"

// LiteralOptions tunes string literal decoding.
type LiteralOptions struct {
	// KeepWildcardEscapes keeps \% and \_ as the two-character sequences
	// instead of reducing them to % and _. MySQL-family dialects behave this
	// way so that a literal later used as a LIKE pattern still carries the
	// escaped wildcard.
	KeepWildcardEscapes bool
}

// literalReplacer is the inverse of the escapes DecodeLiteral understands.
// Backslash must be listed so it is never treated as plain text.
var literalReplacer = strings.NewReplacer(
	`\`, `\\`,
	"\t", `\t`,
	"\n", `\n`,
	"\r", `\r`,
	`'`, `\'`,
	`"`, `\"`,
)

// DecodeLiteral decodes a quoted string literal using the default options.
//
// raw must include both delimiters, e.g. 'it\'s' or "a\tb". quote is the
// delimiter in use and must be ' or ".
func DecodeLiteral(raw string, quote byte) (string, error) {
	return DecodeLiteralWith(raw, quote, LiteralOptions{})
}

// DecodeLiteralWith decodes a quoted string literal.
//
// Interior quotes may be doubled or backslash-escaped. Unrecognized escapes
// drop the backslash and keep the following byte, so \9 decodes to 9.
// An unescaped quote that is not the final byte of raw is an
// ErrCodeUnterminatedLiteral error.
func DecodeLiteralWith(raw string, quote byte, opts LiteralOptions) (string, error) {
	if quote != '\'' && quote != '"' {
		return "", newDecodeError(ErrCodeInvalidDelimiter, -1, "unsupported literal quote %q", quote)
	}
	if len(raw) == 0 || raw[0] != quote {
		return "", newDecodeError(ErrCodeInvalidDelimiter, 0, "literal must start with %q", quote)
	}

	var b strings.Builder
	b.Grow(len(raw))

	for i := 1; i < len(raw); i++ {
		c := raw[i]
		switch c {
		case '\\':
			if i+1 >= len(raw) {
				return "", newDecodeError(ErrCodeUnterminatedLiteral, i, "escape character at end of input")
			}
			i++
			next := raw[i]
			if opts.KeepWildcardEscapes && (next == '%' || next == '_') {
				b.WriteByte('\\')
			}
			b.WriteByte(unescapeByte(next))

		case quote:
			// Doubled quote is a single literal quote.
			if i+1 < len(raw) && raw[i+1] == quote {
				b.WriteByte(quote)
				i++
				continue
			}
			if i != len(raw)-1 {
				return "", newDecodeError(ErrCodeUnterminatedLiteral, i, "unescaped %q inside literal", quote)
			}
			return b.String(), nil

		default:
			b.WriteByte(c)
		}
	}

	return "", newDecodeError(ErrCodeUnterminatedLiteral, len(raw), "missing closing %q", quote)
}

// unescapeByte maps the byte after a backslash to its decoded form.
// Everything that is not a control-character escape decodes to itself.
func unescapeByte(c byte) byte {
	switch c {
	case 't':
		return '\t'
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	default:
		return c
	}
}

// EncodeLiteral quotes value so that DecodeLiteral(EncodeLiteral(v, q), q)
// returns v. Wildcards are written unescaped; they need no literal-level
// escaping.
func EncodeLiteral(value string, quote byte) string {
	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte(quote)
	literalReplacer.WriteString(&b, value)
	b.WriteByte(quote)
	return b.String()
}
