package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/roach88/sqlesc/internal/queryir"
	"github.com/roach88/sqlesc/internal/tagjson"
)

var (
	// ErrExists is returned when a stable or table name is already taken.
	ErrExists = errors.New("store: name already exists")

	// ErrUnknownParent is returned when a table or value references a
	// missing stable or table.
	ErrUnknownParent = errors.New("store: unknown parent")
)

// TableInfo is one child table as stored.
type TableInfo struct {
	ID     string
	Name   string
	Stable string // empty for plain tables
	Tags   []byte // canonical JSON object
	Seq    int64
}

// CreateStable registers a stable (parent table). name must be canonical.
func (s *Store) CreateStable(ctx context.Context, name string) error {
	seq := s.clock.Next()
	_, err := s.db.ExecContext(ctx, `INSERT INTO stables (name, seq) VALUES (?, ?)`, name, seq)
	if err != nil {
		if isConstraint(err, sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique) {
			return fmt.Errorf("create stable %q: %w", name, ErrExists)
		}
		return fmt.Errorf("create stable %q: %w", name, err)
	}
	s.logger.Debug("stable created", "name", name, "seq", seq)
	return nil
}

// CreateTable creates a child table of stable with the given tags. An
// empty stable creates a plain table. A nil tags object is stored as {}.
func (s *Store) CreateTable(ctx context.Context, name, stable string, tags tagjson.Object) (TableInfo, error) {
	if tags == nil {
		tags = tagjson.Object{}
	}
	canonical, err := tagjson.MarshalCanonical(tags)
	if err != nil {
		return TableInfo{}, fmt.Errorf("create table %q: %w", name, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return TableInfo{}, fmt.Errorf("create table %q: generate id: %w", name, err)
	}

	info := TableInfo{
		ID:     id.String(),
		Name:   name,
		Stable: stable,
		Tags:   canonical,
		Seq:    s.clock.Next(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO catalog_tables (id, name, stable, tags, seq)
		VALUES (?, ?, ?, ?, ?)
	`, info.ID, info.Name, nullIfEmpty(info.Stable), string(info.Tags), info.Seq)
	if err != nil {
		switch {
		case isConstraint(err, sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey):
			return TableInfo{}, fmt.Errorf("create table %q: %w", name, ErrExists)
		case isConstraint(err, sqlite3.ErrConstraintForeignKey):
			return TableInfo{}, fmt.Errorf("create table %q: stable %q: %w", name, stable, ErrUnknownParent)
		}
		return TableInfo{}, fmt.Errorf("create table %q: %w", name, err)
	}

	s.logger.Debug("table created", "name", name, "stable", stable, "id", info.ID, "seq", info.Seq)
	return info, nil
}

// ListTables returns the child tables of stable in creation order. An empty
// stable lists every table, plain tables included.
func (s *Store) ListTables(ctx context.Context, stable string) ([]TableInfo, error) {
	q := queryir.Select{From: queryir.SourceTables}
	if stable != "" {
		q.Filter = queryir.Equals{Field: queryir.FieldStable, Value: stable}
	}
	return s.QueryTables(ctx, q)
}

// QueryTables runs a query over queryir.SourceTables.
func (s *Store) QueryTables(ctx context.Context, q queryir.Select) ([]TableInfo, error) {
	if q.From != queryir.SourceTables {
		return nil, fmt.Errorf("query tables: source %q: %w", q.From, queryir.ErrInvalidQuery)
	}

	query, params, err := s.compiler.Compile(q)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	defer rows.Close()

	var out []TableInfo
	for rows.Next() {
		var (
			info   TableInfo
			stable sql.NullString
			tags   string
		)
		if err := rows.Scan(&info.ID, &info.Name, &stable, &tags, &info.Seq); err != nil {
			return nil, fmt.Errorf("scan table: %w", err)
		}
		info.Stable = stable.String
		info.Tags = []byte(tags)
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query tables: %w", err)
	}
	return out, nil
}

// TableTags returns the parsed and canonical tags of a table.
// Returns sql.ErrNoRows if the table does not exist.
func (s *Store) TableTags(ctx context.Context, name string) (tagjson.Object, []byte, error) {
	var tags string
	err := s.db.QueryRowContext(ctx, `SELECT tags FROM catalog_tables WHERE name = ?`, name).Scan(&tags)
	if err != nil {
		return nil, nil, err
	}
	obj, err := tagjson.Parse(tags)
	if err != nil {
		return nil, nil, fmt.Errorf("table %q tags: %w", name, err)
	}
	return obj, []byte(tags), nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isConstraint(err error, codes ...sqlite3.ErrNoExtended) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	for _, c := range codes {
		if se.ExtendedCode == c {
			return true
		}
	}
	return false
}
