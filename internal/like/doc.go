// Package like evaluates LIKE predicates against canonical values.
//
// A Pattern is an already-decoded string (string literal escapes were
// resolved one layer earlier by package escape) plus the escape character
// used at match time.
//
// # Wildcards
//
//	%   zero or more characters
//	_   exactly one character
//
// # Escaping
//
// The escape character (default backslash) turns a following % or _ into a
// plain character. In front of any other character the escape character is
// itself a plain character, so the pattern zz\\ (two backslashes, space)
// matches exactly the stored name zz\\ . This keeps literal decoding and
// pattern escaping as two independent passes: the query text "zz\\\\ "
// decodes to zz\\  and that pattern matches the two-backslash name.
//
// A pattern whose last character is an unconsumed escape character is
// malformed and fails to compile; it is never treated as "no match".
//
// # Characters
//
// MatchString works on UTF-8 runes, MatchBytes on single bytes, and
// MatchWide decodes stored nchar bytes before matching on runes.
//
// # Concurrency
//
// A compiled Matcher is immutable and safe for concurrent use.
package like
