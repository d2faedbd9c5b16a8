// Package escape decodes delimited spans of query text into canonical values.
//
// Two grammars live here and they are deliberately different:
//
// String literals ('...' or "...") interpret backslash escapes:
//
//	\t \n \r      control characters
//	\\ \" \'      the escaped character itself
//	\% \_         the wildcard character as plain text
//	\x (other)    the backslash is dropped, x passes through
//
// Interior quotes may also be written doubled ('it''s').
//
// Identifiers (`...`) do NOT interpret backslashes. `zz\t` names a table
// whose four characters are z, z, backslash, t. The only escaping an
// identifier understands is escaping of its own delimiter, either by
// doubling it or by an odd-length run of backslashes in front of it.
//
// # Canonical values
//
// Decoding is a pure function of the raw span. The result is what gets
// stored, compared and returned to users. The matching Encode/Quote
// functions produce a raw span that decodes back to the same value.
//
// # Errors
//
// All failures are returned as *DecodeError with a Code. Nothing in this
// package logs or recovers; the caller aborts the statement that referenced
// the span.
//
// # Concurrency
//
// Every function is stateless and safe for concurrent use.
package escape
