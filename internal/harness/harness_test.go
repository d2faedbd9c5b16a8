package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlesc/internal/config"
	"github.com/roach88/sqlesc/internal/like"
	"github.com/roach88/sqlesc/internal/nchar"
)

func runFile(t *testing.T, path string, opts ...Option) *Result {
	t.Helper()
	s, err := LoadScenario(path)
	require.NoError(t, err)

	result, err := Run(context.Background(), s, opts...)
	require.NoError(t, err)
	return result
}

func TestRun_Scenarios(t *testing.T) {
	files := []string{
		"testdata/scenarios/escape.yaml",
		"testdata/scenarios/wildcards.yaml",
		"testdata/scenarios/keep_wildcards.yaml",
		"testdata/scenarios/errors.yaml",
	}

	for _, f := range files {
		t.Run(f, func(t *testing.T) {
			result := runFile(t, f)
			assert.True(t, result.Pass, "errors: %v", result.Errors)
			assert.Empty(t, result.Errors)
		})
	}
}

func TestRun_EscapeUnderEveryEncoding(t *testing.T) {
	for _, enc := range nchar.Encodings {
		t.Run(string(enc), func(t *testing.T) {
			d := config.Default()
			d.WideEncoding = enc

			result := runFile(t, "testdata/scenarios/escape.yaml", WithDialect(d))
			assert.True(t, result.Pass, "errors: %v", result.Errors)
		})
	}
}

func TestRun_TraceRecordsDecodedInputs(t *testing.T) {
	result := runFile(t, "testdata/scenarios/escape.yaml")
	require.NotEmpty(t, result.Trace)

	ev := result.Trace[4]
	assert.Equal(t, OpCreateTable, ev.Op)
	assert.Equal(t, `zz\ `, ev.Input)

	ev = result.Trace[7]
	assert.Equal(t, OpSelectLike, ev.Op)
	assert.Equal(t, `zz\\ `, ev.Input)
	assert.Equal(t, []string{`zz\\ `}, ev.Results)

	for i := 1; i < len(result.Trace); i++ {
		assert.GreaterOrEqual(t, result.Trace[i].Seq, result.Trace[i-1].Seq)
		assert.Equal(t, i, result.Trace[i].Step)
	}
}

func TestRun_DeterministicTrace(t *testing.T) {
	first := runFile(t, "testdata/scenarios/escape.yaml")
	second := runFile(t, "testdata/scenarios/escape.yaml")

	a, err := MarshalSnapshot("escape", first)
	require.NoError(t, err)
	b, err := MarshalSnapshot("escape", second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRun_ReportsMismatches(t *testing.T) {
	one := 1
	s := &Scenario{
		Name:        "mismatch",
		Description: "expectations that do not hold",
		Steps: []Step{
			{Op: OpCreateTable, Name: "tt"},
			{Op: OpInsert, Table: "tt", Value: `'a'`},
			{Op: OpSelectEq, Table: "tt", Value: `'b'`, Expect: &Expect{Rows: &one}},
			{Op: OpSelectEq, Table: "tt", Value: `'a'`, Expect: &Expect{Values: []string{"b"}}},
			{Op: OpDecode, Value: `'a'`, Expect: &Expect{Error: "UNTERMINATED_LITERAL"}},
			{Op: OpDecode, Value: `'a`},
			{Op: OpDecode, Value: `'a`, Expect: &Expect{Error: "MALFORMED_PATTERN"}},
		},
	}

	result, err := Run(context.Background(), s)
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 5)
	assert.Contains(t, result.Errors[0], "step 2 (select_eq): rows mismatch")
	assert.Contains(t, result.Errors[1], "step 3 (select_eq): values mismatch")
	assert.Contains(t, result.Errors[2], "Expected: UNTERMINATED_LITERAL")
	assert.Contains(t, result.Errors[3], "Expected: success")
	assert.Contains(t, result.Errors[4], "Expected: MALFORMED_PATTERN")

	assert.Equal(t, "UNTERMINATED_LITERAL", result.Trace[5].Error)
}

func TestRun_CustomEscapeDialect(t *testing.T) {
	d := config.Default()
	d.LikeEscape = "!"

	s := &Scenario{
		Name:        "custom_escape",
		Description: "escape character from the dialect",
		Steps: []Step{
			{Op: OpCreateTable, Name: "tt"},
			{Op: OpInsert, Table: "tt", Value: `'100%'`},
			{Op: OpInsert, Table: "tt", Value: `'1000'`},
			{Op: OpInsert, Table: "tt", Value: `'a\\b'`},
			{Op: OpSelectLike, Field: "value", Table: "tt", Pattern: `'100!%'`, Expect: &Expect{Values: []string{"100%"}}},
			{Op: OpSelectLike, Field: "value", Table: "tt", Pattern: `'a\\b'`, Expect: &Expect{Values: []string{`a\b`}}},
		},
	}

	result, err := Run(context.Background(), s, WithDialect(d))
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestRun_BadDialect(t *testing.T) {
	d := config.Default()
	d.LikeEscape = "%"

	_, err := Run(context.Background(), &Scenario{Name: "x", Steps: []Step{{Op: OpShowTables}}}, WithDialect(d))
	assert.Error(t, err)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, &Scenario{Name: "x", Steps: []Step{{Op: OpShowTables}}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestErrorCode(t *testing.T) {
	assert.Empty(t, ErrorCode(nil))

	_, err := like.Compile(like.NewPattern(`a\`))
	assert.Equal(t, "MALFORMED_PATTERN", ErrorCode(err))

	assert.Equal(t, CodeError, ErrorCode(assert.AnError))
}
