package queryir

import "github.com/roach88/sqlesc/internal/like"

// Source names a queryable collection.
type Source string

const (
	SourceTables Source = "tables"
	SourceRows   Source = "rows"
)

// Field names a filterable column of a Source.
type Field string

const (
	FieldName   Field = "name"       // tables: child table name
	FieldStable Field = "stable"     // tables: parent stable name
	FieldTable  Field = "table_name" // rows: owning table
	FieldValue  Field = "value"      // rows: stored value
)

var sourceFields = map[Source][]Field{
	SourceTables: {FieldName, FieldStable},
	SourceRows:   {FieldTable, FieldValue},
}

// Fields returns the filterable fields of s, or nil for an unknown source.
func (s Source) Fields() []Field {
	return sourceFields[s]
}

// HasField reports whether f can be filtered on in s.
func (s Source) HasField(f Field) bool {
	for _, known := range sourceFields[s] {
		if known == f {
			return true
		}
	}
	return false
}

// Query is a sealed interface; only Select implements it.
type Query interface {
	queryNode()
}

// Predicate is a sealed interface over Equals, Like and And.
type Predicate interface {
	predicateNode()
}

// Select reads rows of From matching Filter, in insertion order.
//
//	Select{
//	  From: SourceTables,
//	  Filter: And{Predicates: []Predicate{
//	    Equals{Field: FieldStable, Value: "car"},
//	    Like{Field: FieldName, Pattern: like.NewPattern(`zz\\ `)},
//	  }},
//	}
type Select struct {
	From   Source
	Filter Predicate // nil = all rows
	Limit  int       // 0 = no limit
}

func (Select) queryNode() {}

// Equals matches when the field holds exactly Value. For stored values the
// comparison is on the storage encoding, so it is exact per character.
type Equals struct {
	Field Field
	Value string
}

func (Equals) predicateNode() {}

// Like matches when the field matches Pattern. Pattern.Value is the decoded
// literal; its escape character is applied by the backend.
type Like struct {
	Field   Field
	Pattern like.Pattern
}

func (Like) predicateNode() {}

// And is a conjunction. An empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}
