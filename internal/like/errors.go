package like

import (
	"errors"
	"fmt"
)

// PatternErrorCode categorizes pattern failures.
type PatternErrorCode string

const (
	// ErrCodeMalformedPattern indicates a trailing escape character with
	// nothing after it.
	ErrCodeMalformedPattern PatternErrorCode = "MALFORMED_PATTERN"

	// ErrCodeInvalidEscape indicates an escape character that is itself a
	// wildcard.
	ErrCodeInvalidEscape PatternErrorCode = "INVALID_ESCAPE"

	// ErrCodeUnrepresentable indicates a value that QuoteMeta cannot turn
	// into a pattern matching only itself.
	ErrCodeUnrepresentable PatternErrorCode = "UNREPRESENTABLE_PATTERN"
)

// PatternError is returned when a pattern cannot be compiled.
type PatternError struct {
	Code    PatternErrorCode
	Message string

	// Pattern is the offending pattern value.
	Pattern string

	// Offset is the rune index where the problem was detected.
	Offset int
}

// Error implements the error interface.
func (e *PatternError) Error() string {
	return fmt.Sprintf("%s: %s (pattern=%q, offset %d)", e.Code, e.Message, e.Pattern, e.Offset)
}

// IsMalformed reports whether err is a malformed pattern error.
// Uses errors.As to handle wrapped errors.
func IsMalformed(err error) bool {
	var pe *PatternError
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeMalformedPattern
	}
	return false
}
