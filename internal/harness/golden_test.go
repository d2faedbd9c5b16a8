package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_BackslashNames(t *testing.T) {
	scenario := &Scenario{
		Name:        "backslash_names",
		Description: "Backslash names survive storage and nested LIKE escaping",
		Steps: []Step{
			{Op: OpCreateStable, Name: "car"},
			{Op: OpCreateTable, Name: "`zz\\ `", Stable: "car"},
			{Op: OpCreateTable, Name: "`zz\\\\ `", Stable: "car"},
			{Op: OpShowTables, Pattern: `"zz\\\\ "`},
			{Op: OpDecode, Value: `'abc`, Expect: &Expect{Error: "UNTERMINATED_LITERAL"}},
		},
	}

	// Regenerate with:
	//   go test ./internal/harness -run TestRunWithGolden_BackslashNames -update
	result, err := RunWithGolden(t, scenario)
	require.NoError(t, err)
	assert.True(t, result.Pass, "errors: %v", result.Errors)
}

func TestMarshalSnapshot_OmitsEmptyFields(t *testing.T) {
	result := NewResult()
	result.AddTrace(TraceEvent{Step: 0, Op: OpShowTables, Seq: 0})

	got, err := MarshalSnapshot("empty", result)
	require.NoError(t, err)
	assert.Equal(t, `{"pass":true,"scenario_name":"empty","trace":[{"op":"show_tables","seq":0,"step":0}]}`, string(got))
}
