// Package config loads dialect settings that decide how raw query text is
// decoded and how LIKE patterns are escaped.
//
// Dialects are CUE files validated against an embedded schema (dialect.cue).
// A file that sets nothing yields Default().
//
//	dialect: {
//		keep_wildcard_escapes: true
//		wide_encoding:         "utf16"
//	}
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/sqlesc/internal/escape"
	"github.com/roach88/sqlesc/internal/like"
	"github.com/roach88/sqlesc/internal/nchar"
)

//go:embed dialect.cue
var schemaCUE string

// EnvDialect names the environment variable holding a dialect file path.
const EnvDialect = "SQLESC_DIALECT"

// Dialect holds the decode and match conventions of one SQL surface.
type Dialect struct {
	LiteralQuotes       string         `json:"literal_quotes"`
	IdentifierDelimiter string         `json:"identifier_delimiter"`
	LikeEscape          string         `json:"like_escape"`
	KeepWildcardEscapes bool           `json:"keep_wildcard_escapes"`
	WideEncoding        nchar.Encoding `json:"wide_encoding"`
}

// Default returns the built-in dialect. It matches the schema defaults.
func Default() Dialect {
	return Dialect{
		LiteralQuotes:       `'"`,
		IdentifierDelimiter: "`",
		LikeEscape:          `\`,
		KeepWildcardEscapes: false,
		WideEncoding:        nchar.UCS4,
	}
}

// LoadError describes a dialect file that failed to load.
type LoadError struct {
	Path    string
	Line    int
	Column  int
	Message string
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// LoadDialect reads and validates a dialect file.
func LoadDialect(path string) (Dialect, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dialect{}, fmt.Errorf("failed to read dialect file: %w", err)
	}
	return ParseDialect(data, path)
}

// ParseDialect validates CUE source against the dialect schema.
// filename is only used in error messages.
func ParseDialect(src []byte, filename string) (Dialect, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("dialect.cue"))
	if err := schema.Err(); err != nil {
		return Dialect{}, fmt.Errorf("compile dialect schema: %w", err)
	}

	user := ctx.CompileBytes(src, cue.Filename(filename))
	if err := user.Err(); err != nil {
		return Dialect{}, cueLoadError(filename, err)
	}

	v := schema.Unify(user)
	if err := v.Validate(); err != nil {
		return Dialect{}, cueLoadError(filename, err)
	}

	var d Dialect
	if err := v.LookupPath(cue.ParsePath("dialect")).Decode(&d); err != nil {
		return Dialect{}, cueLoadError(filename, err)
	}
	if err := d.Validate(); err != nil {
		return Dialect{}, &LoadError{Path: filename, Message: err.Error()}
	}
	return d, nil
}

// cueLoadError keeps the first CUE error and its position.
func cueLoadError(path string, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &LoadError{Path: path, Message: err.Error()}
	}
	first := errs[0]
	le := &LoadError{Path: path, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		le.Line = positions[0].Line()
		le.Column = positions[0].Column()
	}
	return le
}

// Validate checks invariants the schema cannot express.
func (d Dialect) Validate() error {
	if d.LiteralQuotes == "" {
		return fmt.Errorf("literal_quotes must not be empty")
	}
	for i := 0; i < len(d.LiteralQuotes); i++ {
		if q := d.LiteralQuotes[i]; q != '\'' && q != '"' {
			return fmt.Errorf("literal_quotes: unsupported quote %q", q)
		}
	}
	if len(d.IdentifierDelimiter) != 1 || d.IdentifierDelimiter == `\` {
		return fmt.Errorf("identifier_delimiter must be one character other than backslash")
	}
	if utf8.RuneCountInString(d.LikeEscape) > 1 || strings.ContainsAny(d.LikeEscape, "%_") {
		return fmt.Errorf("like_escape must be empty or one non-wildcard character")
	}
	if !d.WideEncoding.Valid() {
		return fmt.Errorf("wide_encoding: unsupported %q", string(d.WideEncoding))
	}
	return nil
}

// LiteralOptions returns the string literal decoding options.
func (d Dialect) LiteralOptions() escape.LiteralOptions {
	return escape.LiteralOptions{KeepWildcardEscapes: d.KeepWildcardEscapes}
}

// AcceptsQuote reports whether q may delimit a string literal.
func (d Dialect) AcceptsQuote(q byte) bool {
	return strings.IndexByte(d.LiteralQuotes, q) >= 0
}

// Delimiter returns the identifier delimiter byte.
func (d Dialect) Delimiter() byte {
	if d.IdentifierDelimiter == "" {
		return '`'
	}
	return d.IdentifierDelimiter[0]
}

// Escape returns the LIKE escape character, or like.NoEscape.
func (d Dialect) Escape() rune {
	if d.LikeEscape == "" {
		return like.NoEscape
	}
	r, _ := utf8.DecodeRuneInString(d.LikeEscape)
	return r
}

// DecodeLiteral decodes a raw literal whose quote is its first byte.
func (d Dialect) DecodeLiteral(raw string) (string, error) {
	if raw == "" || !d.AcceptsQuote(raw[0]) {
		return "", &escape.DecodeError{
			Code:    escape.ErrCodeInvalidDelimiter,
			Message: fmt.Sprintf("literal must start with one of %q", d.LiteralQuotes),
			Offset:  0,
		}
	}
	return escape.DecodeLiteralWith(raw, raw[0], d.LiteralOptions())
}

// DecodeIdentifier decodes a raw identifier with the dialect delimiter.
func (d Dialect) DecodeIdentifier(raw string) (string, error) {
	return escape.DecodeIdentifier(raw, d.Delimiter())
}

// Pattern builds a LIKE pattern from an already-decoded value.
func (d Dialect) Pattern(value string) like.Pattern {
	return like.Pattern{Value: value, Escape: d.Escape()}
}
