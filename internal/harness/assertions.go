package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when a step's outcome differs from its
// expect clause.
type AssertionError struct {
	Step     int    // Step index
	Op       string // Step operation
	Check    string // "error", "rows" or "values"
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "step %d (%s): %s mismatch\n", e.Step, e.Op, e.Check)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// checkExpect compares a step outcome against its expect clause. A step
// without an expect clause must simply succeed.
func checkExpect(index int, step Step, results []string, err error) []*AssertionError {
	want := step.Expect
	if want == nil {
		want = &Expect{}
	}

	fail := func(check, expected, actual string) *AssertionError {
		return &AssertionError{
			Step:     index,
			Op:       step.Op,
			Check:    check,
			Expected: expected,
			Actual:   actual,
		}
	}

	code := ErrorCode(err)
	switch {
	case err != nil && want.Error == "":
		return []*AssertionError{fail("error", "success", fmt.Sprintf("%s: %v", code, err))}
	case err == nil && want.Error != "":
		return []*AssertionError{fail("error", want.Error, "success")}
	case err != nil:
		if code != want.Error {
			return []*AssertionError{fail("error", want.Error, fmt.Sprintf("%s: %v", code, err))}
		}
		return nil
	}

	var failures []*AssertionError
	if want.Rows != nil && *want.Rows != len(results) {
		failures = append(failures, fail("rows",
			fmt.Sprintf("%d", *want.Rows),
			fmt.Sprintf("%d %s", len(results), quoteAll(results))))
	}
	if want.Values != nil && !slices.Equal(want.Values, results) {
		failures = append(failures, fail("values", quoteAll(want.Values), quoteAll(results)))
	}
	return failures
}

// quoteAll renders values with Go quoting so control characters and
// trailing spaces are visible.
func quoteAll(values []string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
