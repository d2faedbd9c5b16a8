// Package queryir is the predicate IR used to look up stored names and
// values by equality or by LIKE pattern.
//
// Every value in the IR is already canonical: literal and identifier text
// has been decoded (package escape) before a query is built. Backends never
// see raw query text, so they cannot re-interpret backslashes.
//
// Query and Predicate are sealed interfaces using the marker method
// pattern. Backends can switch over them exhaustively:
//
//	switch p := pred.(type) {
//	case Equals:
//	case Like:
//	case And:
//	}
//
// Sources have a fixed projection. SourceTables yields child tables
// (id, name, stable, tags, seq) and SourceRows yields stored values
// (table_name, kind, value, seq).
package queryir
