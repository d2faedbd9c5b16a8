package escape

import (
	"errors"
	"fmt"
)

// DecodeErrorCode categorizes decode failures.
type DecodeErrorCode string

const (
	// ErrCodeUnterminatedLiteral indicates the closing quote of a string
	// literal was not found where expected.
	ErrCodeUnterminatedLiteral DecodeErrorCode = "UNTERMINATED_LITERAL"

	// ErrCodeUnterminatedIdentifier indicates the closing delimiter of an
	// identifier was not found where expected.
	ErrCodeUnterminatedIdentifier DecodeErrorCode = "UNTERMINATED_IDENTIFIER"

	// ErrCodeInvalidDelimiter indicates an unsupported delimiter byte or a
	// span that does not start with its delimiter.
	ErrCodeInvalidDelimiter DecodeErrorCode = "INVALID_DELIMITER"

	// ErrCodeEmptyIdentifier indicates a delimited identifier with no content.
	ErrCodeEmptyIdentifier DecodeErrorCode = "EMPTY_IDENTIFIER"

	// ErrCodeUnrepresentable indicates a name that the identifier grammar
	// cannot express (odd backslash run before a delimiter or the end).
	ErrCodeUnrepresentable DecodeErrorCode = "UNREPRESENTABLE_IDENTIFIER"
)

// DecodeError is returned by every decoder in this package.
type DecodeError struct {
	// Code identifies the error category.
	Code DecodeErrorCode

	// Message is a human-readable description.
	Message string

	// Offset is the byte offset in the raw span where the problem was
	// detected, or -1 when not applicable.
	Offset int
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s: %s (offset %d)", e.Code, e.Message, e.Offset)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newDecodeError(code DecodeErrorCode, offset int, format string, args ...any) *DecodeError {
	return &DecodeError{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Offset:  offset,
	}
}

// CodeOf returns the DecodeErrorCode carried by err, or "" if err is not a
// DecodeError. Uses errors.As to handle wrapped errors.
func CodeOf(err error) DecodeErrorCode {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// IsUnterminated reports whether err is an unterminated literal or
// identifier error.
func IsUnterminated(err error) bool {
	switch CodeOf(err) {
	case ErrCodeUnterminatedLiteral, ErrCodeUnterminatedIdentifier:
		return true
	}
	return false
}
