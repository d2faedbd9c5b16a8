package harness

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/sqlesc/internal/escape"
	"github.com/roach88/sqlesc/internal/like"
	"github.com/roach88/sqlesc/internal/queryir"
	"github.com/roach88/sqlesc/internal/store"
	"github.com/roach88/sqlesc/internal/tagjson"
)

// Error codes for failures that are not decode or pattern errors.
const (
	CodeAlreadyExists = "ALREADY_EXISTS"
	CodeUnknownParent = "UNKNOWN_PARENT"
	CodeNotFound      = "NOT_FOUND"
	CodeInvalidTags   = "INVALID_TAGS"
	CodeInvalidQuery  = "INVALID_QUERY"
	CodeError         = "ERROR"
)

// tagsError marks a tag payload that decoded as a literal but is not a
// JSON object.
type tagsError struct {
	err error
}

func (e *tagsError) Error() string { return "invalid tags: " + e.err.Error() }
func (e *tagsError) Unwrap() error { return e.err }

// ErrorCode maps an error to the code used in expect clauses and traces.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var de *escape.DecodeError
	if errors.As(err, &de) {
		return string(de.Code)
	}
	var pe *like.PatternError
	if errors.As(err, &pe) {
		return string(pe.Code)
	}
	var te *tagsError
	if errors.As(err, &te) {
		return CodeInvalidTags
	}

	switch {
	case errors.Is(err, store.ErrExists):
		return CodeAlreadyExists
	case errors.Is(err, store.ErrUnknownParent):
		return CodeUnknownParent
	case errors.Is(err, sql.ErrNoRows):
		return CodeNotFound
	case errors.Is(err, queryir.ErrInvalidQuery):
		return CodeInvalidQuery
	}
	return CodeError
}

type stepOutput struct {
	input   string
	results []string
}

func (h *Harness) execute(ctx context.Context, st Step) (stepOutput, error) {
	switch st.Op {
	case OpCreateStable:
		return h.createStable(ctx, st)
	case OpCreateTable:
		return h.createTable(ctx, st)
	case OpInsert:
		return h.insert(ctx, st)
	case OpSelectEq:
		return h.selectEq(ctx, st)
	case OpSelectLike:
		return h.selectLike(ctx, st)
	case OpShowTables:
		return h.showTables(ctx, st)
	case OpSelectTags:
		return h.selectTags(ctx, st)
	case OpDecode:
		return h.decode(st)
	default:
		return stepOutput{}, fmt.Errorf("unknown op %q", st.Op)
	}
}

// name decodes a quoted identifier; unquoted names are used as written.
func (h *Harness) name(raw string) (string, error) {
	if raw != "" && raw[0] == h.dialect.Delimiter() {
		return h.dialect.DecodeIdentifier(raw)
	}
	return raw, nil
}

func (h *Harness) createStable(ctx context.Context, st Step) (stepOutput, error) {
	name, err := h.name(st.Name)
	if err != nil {
		return stepOutput{}, err
	}
	return stepOutput{input: name}, h.store.CreateStable(ctx, name)
}

func (h *Harness) createTable(ctx context.Context, st Step) (stepOutput, error) {
	name, err := h.name(st.Name)
	if err != nil {
		return stepOutput{}, err
	}
	out := stepOutput{input: name}

	stable, err := h.name(st.Stable)
	if err != nil {
		return out, err
	}

	var tags tagjson.Object
	if st.Tags != "" {
		decoded, err := h.dialect.DecodeLiteral(st.Tags)
		if err != nil {
			return out, err
		}
		if tags, err = tagjson.Parse(decoded); err != nil {
			return out, &tagsError{err: err}
		}
	}

	_, err = h.store.CreateTable(ctx, name, stable, tags)
	return out, err
}

func (h *Harness) insert(ctx context.Context, st Step) (stepOutput, error) {
	table, err := h.name(st.Table)
	if err != nil {
		return stepOutput{}, err
	}
	value, err := h.dialect.DecodeLiteral(st.Value)
	if err != nil {
		return stepOutput{}, err
	}

	kind := store.KindNchar
	if st.Kind != "" {
		kind = store.Kind(st.Kind)
	}
	_, err = h.store.InsertValue(ctx, table, kind, value)
	return stepOutput{input: value}, err
}

func (h *Harness) selectEq(ctx context.Context, st Step) (stepOutput, error) {
	table, err := h.name(st.Table)
	if err != nil {
		return stepOutput{}, err
	}
	value, err := h.dialect.DecodeLiteral(st.Value)
	if err != nil {
		return stepOutput{}, err
	}
	out := stepOutput{input: value}

	vals, err := h.store.QueryValues(ctx, queryir.Select{
		From: queryir.SourceRows,
		Filter: queryir.And{Predicates: []queryir.Predicate{
			queryir.Equals{Field: queryir.FieldTable, Value: table},
			queryir.Equals{Field: queryir.FieldValue, Value: value},
		}},
	})
	out.results = valueStrings(vals)
	return out, err
}

func (h *Harness) selectLike(ctx context.Context, st Step) (stepOutput, error) {
	pattern, err := h.dialect.DecodeLiteral(st.Pattern)
	if err != nil {
		return stepOutput{}, err
	}
	out := stepOutput{input: pattern}
	p := h.dialect.Pattern(pattern)

	if st.Field == "value" {
		table, err := h.name(st.Table)
		if err != nil {
			return out, err
		}
		vals, err := h.store.QueryValues(ctx, queryir.Select{
			From: queryir.SourceRows,
			Filter: queryir.And{Predicates: []queryir.Predicate{
				queryir.Equals{Field: queryir.FieldTable, Value: table},
				queryir.Like{Field: queryir.FieldValue, Pattern: p},
			}},
		})
		out.results = valueStrings(vals)
		return out, err
	}

	return h.queryTables(ctx, out, st.Stable, &p)
}

func (h *Harness) showTables(ctx context.Context, st Step) (stepOutput, error) {
	if st.Pattern == "" {
		return h.queryTables(ctx, stepOutput{}, st.Stable, nil)
	}
	pattern, err := h.dialect.DecodeLiteral(st.Pattern)
	if err != nil {
		return stepOutput{}, err
	}
	p := h.dialect.Pattern(pattern)
	return h.queryTables(ctx, stepOutput{input: pattern}, st.Stable, &p)
}

func (h *Harness) queryTables(ctx context.Context, out stepOutput, rawStable string, p *like.Pattern) (stepOutput, error) {
	var preds []queryir.Predicate
	if rawStable != "" {
		stable, err := h.name(rawStable)
		if err != nil {
			return out, err
		}
		preds = append(preds, queryir.Equals{Field: queryir.FieldStable, Value: stable})
	}
	if p != nil {
		preds = append(preds, queryir.Like{Field: queryir.FieldName, Pattern: *p})
	}

	q := queryir.Select{From: queryir.SourceTables}
	if len(preds) > 0 {
		q.Filter = queryir.And{Predicates: preds}
	}

	tables, err := h.store.QueryTables(ctx, q)
	for _, tb := range tables {
		out.results = append(out.results, tb.Name)
	}
	return out, err
}

func (h *Harness) selectTags(ctx context.Context, st Step) (stepOutput, error) {
	table, err := h.name(st.Table)
	if err != nil {
		return stepOutput{}, err
	}
	out := stepOutput{input: table}

	_, canonical, err := h.store.TableTags(ctx, table)
	if err != nil {
		return out, err
	}
	out.results = []string{string(canonical)}
	return out, nil
}

func (h *Harness) decode(st Step) (stepOutput, error) {
	value, err := h.dialect.DecodeLiteral(st.Value)
	if err != nil {
		return stepOutput{}, err
	}
	return stepOutput{results: []string{value}}, nil
}

func valueStrings(vals []store.Value) []string {
	var out []string
	for _, v := range vals {
		out = append(out, v.Value)
	}
	return out
}
