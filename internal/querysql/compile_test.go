package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sqlesc/internal/like"
	"github.com/roach88/sqlesc/internal/nchar"
	"github.com/roach88/sqlesc/internal/queryir"
)

func TestCompile_SelectAll(t *testing.T) {
	c := NewCompiler(nchar.UCS4)

	sql, params, err := c.Compile(queryir.Select{From: queryir.SourceTables})
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, name, stable, tags, seq FROM catalog_tables ORDER BY seq ASC", sql)
	assert.Empty(t, params)
}

func TestCompile_EqualsOnNameIsParameterized(t *testing.T) {
	c := NewCompiler(nchar.UCS4)

	sql, params, err := c.Compile(&queryir.Select{
		From:   queryir.SourceTables,
		Filter: queryir.Equals{Field: queryir.FieldName, Value: `zz\' OR 1=1`},
	})
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, name, stable, tags, seq FROM catalog_tables WHERE name = ? ORDER BY seq ASC", sql)
	assert.NotContains(t, sql, "OR 1=1")
	assert.Equal(t, []any{`zz\' OR 1=1`}, params)
}

func TestCompile_EqualsOnValueUsesEncodedBytes(t *testing.T) {
	for _, enc := range nchar.Encodings {
		t.Run(string(enc), func(t *testing.T) {
			c := NewCompiler(enc)

			sql, params, err := c.Compile(queryir.Select{
				From:   queryir.SourceRows,
				Filter: queryir.Equals{Field: queryir.FieldValue, Value: "\t"},
			})
			require.NoError(t, err)

			want, err := enc.Encode("\t")
			require.NoError(t, err)

			assert.Contains(t, sql, "((kind = 'nchar' AND value = ?) OR (kind = 'binary' AND value = ?))")
			assert.Equal(t, []any{want, []byte("\t")}, params)
		})
	}
}

func TestCompile_LikeOnName(t *testing.T) {
	c := NewCompiler(nchar.UCS4)

	sql, params, err := c.Compile(queryir.Select{
		From: queryir.SourceTables,
		Filter: queryir.And{Predicates: []queryir.Predicate{
			queryir.Equals{Field: queryir.FieldStable, Value: "car"},
			queryir.Like{Field: queryir.FieldName, Pattern: like.NewPattern(`zz\\ `)},
		}},
	})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT id, name, stable, tags, seq FROM catalog_tables WHERE (stable = ? AND sqlesc_like(name, 'text', '', ?, ?)) ORDER BY seq ASC",
		sql)
	assert.Equal(t, []any{"car", `zz\\ `, `\`}, params)
}

func TestCompile_LikeOnValue(t *testing.T) {
	c := NewCompiler(nchar.UTF16)

	sql, params, err := c.Compile(queryir.Select{
		From:   queryir.SourceRows,
		Filter: queryir.Like{Field: queryir.FieldValue, Pattern: like.Pattern{Value: "h!%d", Escape: '!'}},
		Limit:  5,
	})
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT table_name, kind, value, seq FROM table_values WHERE sqlesc_like(value, kind, ?, ?, ?) ORDER BY seq ASC LIMIT ?",
		sql)
	assert.Equal(t, []any{"utf16", "h!%d", "!", 5}, params)
}

func TestCompile_NoEscapeIsEmptyParam(t *testing.T) {
	c := NewCompiler(nchar.UCS4)

	_, params, err := c.Compile(queryir.Select{
		From:   queryir.SourceTables,
		Filter: queryir.Like{Field: queryir.FieldName, Pattern: like.Pattern{Value: "a%", Escape: like.NoEscape}},
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"a%", ""}, params)
}

func TestCompile_EmptyAnd(t *testing.T) {
	c := NewCompiler(nchar.UCS4)

	sql, _, err := c.Compile(queryir.Select{From: queryir.SourceRows, Filter: queryir.And{}})
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE 1 = 1 ORDER BY seq ASC")
}

func TestCompile_Errors(t *testing.T) {
	c := NewCompiler(nchar.UCS4)

	_, _, err := c.Compile(queryir.Select{
		From:   queryir.SourceTables,
		Filter: queryir.Like{Field: queryir.FieldName, Pattern: like.NewPattern(`abc\`)},
	})
	assert.True(t, like.IsMalformed(err))

	_, _, err = c.Compile(queryir.Select{From: "nope"})
	assert.ErrorIs(t, err, queryir.ErrInvalidQuery)

	_, _, err = c.Compile(nil)
	assert.ErrorIs(t, err, queryir.ErrInvalidQuery)

	bad := &Compiler{Wide: "latin1"}
	_, _, err = bad.Compile(queryir.Select{From: queryir.SourceRows})
	assert.Error(t, err)
}

func TestCompile_NilPredicatePointers(t *testing.T) {
	c := NewCompiler(nchar.UCS4)

	preds := []queryir.Predicate{
		(*queryir.Equals)(nil),
		(*queryir.Like)(nil),
		(*queryir.And)(nil),
		queryir.And{Predicates: []queryir.Predicate{(*queryir.Equals)(nil)}},
	}

	for _, p := range preds {
		assert.NotPanics(t, func() {
			_, _, err := c.Compile(queryir.Select{From: queryir.SourceRows, Filter: p})
			assert.ErrorIs(t, err, queryir.ErrInvalidQuery)

			_, _, err = c.compilePredicate(p)
			assert.ErrorIs(t, err, queryir.ErrInvalidQuery)
		}, "%T", p)
	}
}

func TestCompile_Deterministic(t *testing.T) {
	c := NewCompiler(nchar.UCS4)
	q := queryir.Select{
		From: queryir.SourceRows,
		Filter: queryir.And{Predicates: []queryir.Predicate{
			queryir.Equals{Field: queryir.FieldTable, Value: "tt"},
			queryir.Like{Field: queryir.FieldValue, Pattern: like.NewPattern(`h\_j`)},
		}},
	}

	sql1, params1, err := c.Compile(q)
	require.NoError(t, err)
	sql2, params2, err := c.Compile(q)
	require.NoError(t, err)

	assert.Equal(t, sql1, sql2)
	assert.Equal(t, params1, params2)
}
