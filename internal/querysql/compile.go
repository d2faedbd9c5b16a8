// Package querysql compiles queryir queries to parameterized SQLite SQL.
//
// Values are always bound as parameters, never interpolated, so decoded
// text containing quotes or backslashes cannot change the statement.
// Every statement ends with ORDER BY seq so results come back in insertion
// order.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/sqlesc/internal/nchar"
	"github.com/roach88/sqlesc/internal/queryir"
)

// LikeFunc is the SQL function the store registers for LIKE predicates:
//
//	sqlesc_like(value, kind, encoding, pattern, escape)
//
// kind is "text", "nchar" or "binary". encoding names the nchar encoding and
// is ignored for other kinds. escape is empty when escaping is disabled.
const LikeFunc = "sqlesc_like"

// Value kinds stored in table_values.kind.
const (
	KindText   = "text"
	KindNchar  = "nchar"
	KindBinary = "binary"
)

// Physical table names.
const (
	TablesTable = "catalog_tables"
	ValuesTable = "table_values"
)

type sourcePlan struct {
	table   string
	columns string
}

var plans = map[queryir.Source]sourcePlan{
	queryir.SourceTables: {table: TablesTable, columns: "id, name, stable, tags, seq"},
	queryir.SourceRows:   {table: ValuesTable, columns: "table_name, kind, value, seq"},
}

// Compiler compiles queries against a store whose nchar values use Wide.
type Compiler struct {
	Wide nchar.Encoding
}

// NewCompiler returns a Compiler for the given nchar encoding.
func NewCompiler(wide nchar.Encoding) *Compiler {
	return &Compiler{Wide: wide}
}

// Compile converts q to SQL and its parameters. q is validated first.
func (c *Compiler) Compile(q queryir.Query) (string, []any, error) {
	if err := queryir.Validate(q); err != nil {
		return "", nil, err
	}
	if !c.Wide.Valid() {
		return "", nil, fmt.Errorf("unsupported nchar encoding %q", c.Wide)
	}

	switch query := q.(type) {
	case queryir.Select:
		return c.compileSelect(query)
	case *queryir.Select:
		return c.compileSelect(*query)
	default:
		return "", nil, fmt.Errorf("unsupported query type: %T", q)
	}
}

func (c *Compiler) compileSelect(q queryir.Select) (string, []any, error) {
	plan := plans[q.From]

	var sb strings.Builder
	var params []any

	fmt.Fprintf(&sb, "SELECT %s FROM %s", plan.columns, plan.table)

	if q.Filter != nil {
		where, p, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
		params = append(params, p...)
	}

	sb.WriteString(" ORDER BY seq ASC")

	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		params = append(params, q.Limit)
	}

	return sb.String(), params, nil
}

func (c *Compiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	if isNilPredicate(p) {
		return "", nil, fmt.Errorf("%w: nil predicate %T", queryir.ErrInvalidQuery, p)
	}

	switch pred := p.(type) {
	case queryir.Equals:
		return c.compileEquals(pred)
	case *queryir.Equals:
		return c.compileEquals(*pred)
	case queryir.Like:
		return c.compileLike(pred)
	case *queryir.Like:
		return c.compileLike(*pred)
	case queryir.And:
		return c.compileAnd(pred)
	case *queryir.And:
		return c.compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func isNilPredicate(p queryir.Predicate) bool {
	switch pred := p.(type) {
	case nil:
		return true
	case *queryir.Equals:
		return pred == nil
	case *queryir.Like:
		return pred == nil
	case *queryir.And:
		return pred == nil
	}
	return false
}

// compileEquals compares stored values on their encoded bytes so equality
// is exact per character for both nchar and binary rows.
func (c *Compiler) compileEquals(eq queryir.Equals) (string, []any, error) {
	if eq.Field != queryir.FieldValue {
		return fmt.Sprintf("%s = ?", eq.Field), []any{eq.Value}, nil
	}

	wide, err := c.Wide.Encode(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("encode value: %w", err)
	}
	sql := fmt.Sprintf("((kind = '%s' AND value = ?) OR (kind = '%s' AND value = ?))", KindNchar, KindBinary)
	return sql, []any{wide, []byte(eq.Value)}, nil
}

func (c *Compiler) compileLike(l queryir.Like) (string, []any, error) {
	pattern, esc := l.Pattern.Value, escapeParam(l.Pattern.Escape)

	if l.Field != queryir.FieldValue {
		sql := fmt.Sprintf("%s(%s, '%s', '', ?, ?)", LikeFunc, l.Field, KindText)
		return sql, []any{pattern, esc}, nil
	}

	sql := fmt.Sprintf("%s(value, kind, ?, ?, ?)", LikeFunc)
	return sql, []any{string(c.Wide), pattern, esc}, nil
}

func (c *Compiler) compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	parts := make([]string, 0, len(and.Predicates))
	var params []any
	for _, pred := range and.Predicates {
		sql, p, err := c.compilePredicate(pred)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, p...)
	}
	return "(" + strings.Join(parts, " AND ") + ")", params, nil
}

func escapeParam(r rune) string {
	if r == 0 {
		return ""
	}
	return string(r)
}
