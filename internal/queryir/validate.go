package queryir

import (
	"errors"
	"fmt"

	"github.com/roach88/sqlesc/internal/like"
)

// ErrInvalidQuery is wrapped by every structural validation error.
var ErrInvalidQuery = errors.New("invalid query")

// Validate checks that q only names known sources and fields and that
// every LIKE pattern compiles. Pattern errors are returned wrapped, so
// callers can still reach the *like.PatternError with errors.As.
//
// Validate is a pure function with no side effects.
func Validate(q Query) error {
	if q == nil {
		return fmt.Errorf("%w: nil query", ErrInvalidQuery)
	}

	switch query := q.(type) {
	case Select:
		return validateSelect(query)
	case *Select:
		if query == nil {
			return fmt.Errorf("%w: nil select", ErrInvalidQuery)
		}
		return validateSelect(*query)
	default:
		return fmt.Errorf("%w: unknown query type %T", ErrInvalidQuery, q)
	}
}

func validateSelect(sel Select) error {
	if sel.From.Fields() == nil {
		return fmt.Errorf("%w: unknown source %q", ErrInvalidQuery, sel.From)
	}
	if sel.Limit < 0 {
		return fmt.Errorf("%w: negative limit %d", ErrInvalidQuery, sel.Limit)
	}
	if sel.Filter == nil {
		return nil
	}
	return validatePredicate(sel.From, sel.Filter)
}

func validatePredicate(src Source, p Predicate) error {
	switch pred := p.(type) {
	case nil:
		return fmt.Errorf("%w: nil predicate", ErrInvalidQuery)
	case Equals:
		return checkField(src, pred.Field)
	case *Equals:
		if pred == nil {
			return fmt.Errorf("%w: nil equals", ErrInvalidQuery)
		}
		return checkField(src, pred.Field)
	case Like:
		return validateLike(src, pred)
	case *Like:
		if pred == nil {
			return fmt.Errorf("%w: nil like", ErrInvalidQuery)
		}
		return validateLike(src, *pred)
	case And:
		return validateAnd(src, pred)
	case *And:
		if pred == nil {
			return fmt.Errorf("%w: nil and", ErrInvalidQuery)
		}
		return validateAnd(src, *pred)
	default:
		return fmt.Errorf("%w: unknown predicate type %T", ErrInvalidQuery, p)
	}
}

func checkField(src Source, f Field) error {
	if !src.HasField(f) {
		return fmt.Errorf("%w: source %q has no field %q", ErrInvalidQuery, src, f)
	}
	return nil
}

func validateLike(src Source, l Like) error {
	if err := checkField(src, l.Field); err != nil {
		return err
	}
	if _, err := like.Compile(l.Pattern); err != nil {
		return fmt.Errorf("like on %s: %w", l.Field, err)
	}
	return nil
}

func validateAnd(src Source, and And) error {
	for i, sub := range and.Predicates {
		if err := validatePredicate(src, sub); err != nil {
			return fmt.Errorf("and[%d]: %w", i, err)
		}
	}
	return nil
}
