package like

import (
	"strings"
	"unicode/utf8"

	"github.com/roach88/sqlesc/internal/nchar"
)

const (
	// DefaultEscape is the escape character used when none is given.
	DefaultEscape rune = '\\'

	// NoEscape disables escaping; every % and _ is a wildcard.
	NoEscape rune = 0
)

// Pattern is a decoded LIKE pattern and its escape character.
type Pattern struct {
	Value  string
	Escape rune
}

// NewPattern returns a Pattern using DefaultEscape.
func NewPattern(value string) Pattern {
	return Pattern{Value: value, Escape: DefaultEscape}
}

type tokenKind uint8

const (
	tokLiteral tokenKind = iota
	tokAnyOne
	tokAnySeq
)

type token struct {
	kind tokenKind
	r    rune
}

// Matcher is a compiled Pattern.
type Matcher struct {
	pattern Pattern

	// runes matches logical characters; bytes matches single bytes.
	runes []token
	bytes []token
}

// Compile parses p into a Matcher.
//
// An escape character only quotes a directly following wildcard, so a
// literal escape character followed by an active wildcard cannot be
// written: with the default escape, \\% is a backslash and a literal %.
func Compile(p Pattern) (*Matcher, error) {
	if p.Escape == '%' || p.Escape == '_' {
		return nil, &PatternError{
			Code:    ErrCodeInvalidEscape,
			Message: "escape character cannot be a wildcard",
			Pattern: p.Value,
			Offset:  -1,
		}
	}

	src := []rune(p.Value)
	toks := make([]token, 0, len(src))

	for i := 0; i < len(src); i++ {
		r := src[i]
		switch {
		case p.Escape != NoEscape && r == p.Escape:
			if i+1 >= len(src) {
				return nil, &PatternError{
					Code:    ErrCodeMalformedPattern,
					Message: "escape character at end of pattern",
					Pattern: p.Value,
					Offset:  i,
				}
			}
			if next := src[i+1]; next == '%' || next == '_' {
				toks = append(toks, token{kind: tokLiteral, r: next})
				i++
				continue
			}
			toks = append(toks, token{kind: tokLiteral, r: r})

		case r == '%':
			// Runs of % are equivalent to one.
			if n := len(toks); n > 0 && toks[n-1].kind == tokAnySeq {
				continue
			}
			toks = append(toks, token{kind: tokAnySeq})

		case r == '_':
			toks = append(toks, token{kind: tokAnyOne})

		default:
			toks = append(toks, token{kind: tokLiteral, r: r})
		}
	}

	return &Matcher{
		pattern: p,
		runes:   toks,
		bytes:   compileBytes(p),
	}, nil
}

// MustCompile is like Compile but panics on error. For tests and constants.
func MustCompile(p Pattern) *Matcher {
	m, err := Compile(p)
	if err != nil {
		panic(err)
	}
	return m
}

// compileBytes tokenizes p.Value one byte at a time for narrow columns.
// Bytes that are not valid UTF-8 stay as they are. Compile has already
// rejected malformed patterns.
func compileBytes(p Pattern) []token {
	src := p.Value
	esc := ""
	if p.Escape != NoEscape {
		esc = string(p.Escape)
	}

	toks := make([]token, 0, len(src))
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case esc != "" && strings.HasPrefix(src[i:], esc):
			next := i + len(esc)
			if next < len(src) && (src[next] == '%' || src[next] == '_') {
				toks = append(toks, token{kind: tokLiteral, r: rune(src[next])})
				i = next
				continue
			}
			for j := i; j < next; j++ {
				toks = append(toks, token{kind: tokLiteral, r: rune(src[j])})
			}
			i = next - 1

		case c == '%':
			if n := len(toks); n > 0 && toks[n-1].kind == tokAnySeq {
				continue
			}
			toks = append(toks, token{kind: tokAnySeq})

		case c == '_':
			toks = append(toks, token{kind: tokAnyOne})

		default:
			toks = append(toks, token{kind: tokLiteral, r: rune(c)})
		}
	}
	return toks
}

// Pattern returns the pattern m was compiled from.
func (m *Matcher) Pattern() Pattern {
	return m.pattern
}

// MatchString matches s one logical character (rune) at a time.
func (m *Matcher) MatchString(s string) bool {
	return matchTokens(m.runes, []rune(s))
}

// MatchBytes matches b one byte at a time, for narrow (binary) columns.
func (m *Matcher) MatchBytes(b []byte) bool {
	return matchTokens(m.bytes, b)
}

// MatchWide decodes a stored nchar value and matches it on runes.
func (m *Matcher) MatchWide(b []byte, enc nchar.Encoding) (bool, error) {
	s, err := enc.Decode(b)
	if err != nil {
		return false, err
	}
	return m.MatchString(s), nil
}

// matchTokens is a two-pointer match that backtracks to the most recent %
// on mismatch. Worst case O(len(toks) * len(subject)).
func matchTokens[T rune | byte](toks []token, subject []T) bool {
	si, ti := 0, 0
	star, mark := -1, 0

	for si < len(subject) {
		if ti < len(toks) {
			switch t := toks[ti]; t.kind {
			case tokAnySeq:
				star, mark = ti, si
				ti++
				continue
			case tokAnyOne:
				si++
				ti++
				continue
			default:
				if rune(subject[si]) == t.r {
					si++
					ti++
					continue
				}
			}
		}
		if star < 0 {
			return false
		}
		// Let the last % absorb one more character and retry.
		mark++
		si, ti = mark, star+1
	}

	for ti < len(toks) && toks[ti].kind == tokAnySeq {
		ti++
	}
	return ti == len(toks)
}

// Match compiles p and matches subject on runes.
func Match(subject string, p Pattern) (bool, error) {
	m, err := Compile(p)
	if err != nil {
		return false, err
	}
	return m.MatchString(subject), nil
}

// QuoteMeta returns a pattern value that matches exactly s when compiled
// with escape. Values ending in the escape character cannot be expressed,
// nor can wildcards when escape is NoEscape.
func QuoteMeta(s string, escape rune) (string, error) {
	if escape == '%' || escape == '_' {
		return "", &PatternError{
			Code:    ErrCodeInvalidEscape,
			Message: "escape character cannot be a wildcard",
			Pattern: s,
			Offset:  -1,
		}
	}
	if escape == NoEscape {
		if i := strings.IndexAny(s, "%_"); i >= 0 {
			return "", &PatternError{
				Code:    ErrCodeUnrepresentable,
				Message: "wildcard cannot be escaped without an escape character",
				Pattern: s,
				Offset:  utf8.RuneCountInString(s[:i]),
			}
		}
		return s, nil
	}
	if strings.HasSuffix(s, string(escape)) {
		return "", &PatternError{
			Code:    ErrCodeUnrepresentable,
			Message: "value ends with the escape character",
			Pattern: s,
			Offset:  utf8.RuneCountInString(s) - 1,
		}
	}

	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		if r == '%' || r == '_' {
			b.WriteRune(escape)
		}
		b.WriteRune(r)
	}
	return b.String(), nil
}
