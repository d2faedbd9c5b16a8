package queryir

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlesc/internal/like"
)

func TestValidate_Valid(t *testing.T) {
	tests := []struct {
		name  string
		query Query
	}{
		{"no filter", Select{From: SourceTables}},
		{"pointer", &Select{From: SourceRows, Filter: Equals{Field: FieldValue, Value: "\t"}}},
		{"like on name", Select{From: SourceTables, Filter: Like{Field: FieldName, Pattern: like.NewPattern(`zz\\ `)}}},
		{"empty and", Select{From: SourceRows, Filter: And{}}},
		{"nested and", Select{
			From: SourceTables,
			Filter: &And{Predicates: []Predicate{
				Equals{Field: FieldStable, Value: "car"},
				And{Predicates: []Predicate{
					&Like{Field: FieldName, Pattern: like.Pattern{Value: "zz%", Escape: like.NoEscape}},
				}},
			}},
			Limit: 10,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, Validate(tt.query))
		})
	}
}

func TestValidate_Structural(t *testing.T) {
	tests := []struct {
		name  string
		query Query
	}{
		{"nil query", nil},
		{"nil select pointer", (*Select)(nil)},
		{"unknown source", Select{From: "users"}},
		{"negative limit", Select{From: SourceRows, Limit: -1}},
		{"field of other source", Select{From: SourceRows, Filter: Equals{Field: FieldName, Value: "x"}}},
		{"nil predicate in and", Select{From: SourceRows, Filter: And{Predicates: []Predicate{nil}}}},
		{"nil equals pointer", Select{From: SourceRows, Filter: (*Equals)(nil)}},
		{"nil like pointer", Select{From: SourceTables, Filter: (*Like)(nil)}},
		{"nil and pointer", Select{From: SourceRows, Filter: (*And)(nil)}},
		{"nil like pointer in and", Select{From: SourceRows, Filter: &And{Predicates: []Predicate{
			Equals{Field: FieldTable, Value: "tt"},
			(*Like)(nil),
		}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.query)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
}

func TestValidate_MalformedPatternSurfaces(t *testing.T) {
	q := Select{
		From: SourceTables,
		Filter: And{Predicates: []Predicate{
			Equals{Field: FieldStable, Value: "car"},
			Like{Field: FieldName, Pattern: like.NewPattern(`zz\`)},
		}},
	}

	err := Validate(q)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidQuery))
	assert.True(t, like.IsMalformed(err))

	var pe *like.PatternError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 2, pe.Offset)
}

func TestSource_Fields(t *testing.T) {
	assert.True(t, SourceTables.HasField(FieldName))
	assert.False(t, SourceTables.HasField(FieldValue))
	assert.True(t, SourceRows.HasField(FieldValue))
	assert.Nil(t, Source("nope").Fields())
}
