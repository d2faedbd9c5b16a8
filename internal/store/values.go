package store

import (
	"context"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/sqlesc/internal/queryir"
	"github.com/roach88/sqlesc/internal/querysql"
)

// Kind is how a value column stores its bytes.
type Kind string

const (
	KindNchar  Kind = querysql.KindNchar
	KindBinary Kind = querysql.KindBinary
)

// Valid reports whether k is a storable kind.
func (k Kind) Valid() bool {
	return k == KindNchar || k == KindBinary
}

// Value is one stored value, decoded back to its canonical string.
type Value struct {
	Table string
	Kind  Kind
	Value string
	Seq   int64
}

// InsertValue stores value in table. nchar values are written in the
// store's wide encoding; binary values are written byte for byte.
func (s *Store) InsertValue(ctx context.Context, table string, kind Kind, value string) (int64, error) {
	data, err := s.encode(kind, value)
	if err != nil {
		return 0, fmt.Errorf("insert into %q: %w", table, err)
	}

	seq := s.clock.Next()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO table_values (table_name, kind, value, seq)
		VALUES (?, ?, ?, ?)
	`, table, string(kind), data, seq)
	if err != nil {
		if isConstraint(err, sqlite3.ErrConstraintForeignKey) {
			return 0, fmt.Errorf("insert into %q: %w", table, ErrUnknownParent)
		}
		return 0, fmt.Errorf("insert into %q: %w", table, err)
	}

	s.logger.Debug("value inserted", "table", table, "kind", string(kind), "bytes", len(data), "seq", seq)
	return seq, nil
}

// Values returns every value stored in table in insertion order.
func (s *Store) Values(ctx context.Context, table string) ([]Value, error) {
	return s.QueryValues(ctx, queryir.Select{
		From:   queryir.SourceRows,
		Filter: queryir.Equals{Field: queryir.FieldTable, Value: table},
	})
}

// QueryValues runs a query over queryir.SourceRows.
func (s *Store) QueryValues(ctx context.Context, q queryir.Select) ([]Value, error) {
	if q.From != queryir.SourceRows {
		return nil, fmt.Errorf("query values: source %q: %w", q.From, queryir.ErrInvalidQuery)
	}

	query, params, err := s.compiler.Compile(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query values: %w", err)
	}
	defer rows.Close()

	var out []Value
	for rows.Next() {
		var (
			v    Value
			kind string
			data []byte
		)
		if err := rows.Scan(&v.Table, &kind, &data, &v.Seq); err != nil {
			return nil, fmt.Errorf("scan value: %w", err)
		}
		v.Kind = Kind(kind)
		if v.Value, err = s.decode(v.Kind, data); err != nil {
			return nil, fmt.Errorf("value seq %d: %w", v.Seq, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query values: %w", err)
	}
	return out, nil
}

func (s *Store) encode(kind Kind, value string) ([]byte, error) {
	switch kind {
	case KindNchar:
		return s.wide.Encode(value)
	case KindBinary:
		return []byte(value), nil
	default:
		return nil, fmt.Errorf("unknown value kind %q", string(kind))
	}
}

func (s *Store) decode(kind Kind, data []byte) (string, error) {
	switch kind {
	case KindNchar:
		return s.wide.Decode(data)
	case KindBinary:
		return string(data), nil
	default:
		return "", fmt.Errorf("unknown value kind %q", string(kind))
	}
}
