// Package harness runs regression scenarios for literal decoding,
// identifier decoding and LIKE matching against a real store.
//
// # Scenario Format
//
// Scenarios are YAML files. Every name, value, tag payload and pattern is
// written as raw query text, exactly as a SQL client would send it, and is
// decoded by the harness before it reaches the store:
//
//	name: backslash_tables
//	description: "Backslashes in quoted identifiers are kept verbatim"
//	dialect: mysql.cue            # optional, relative to the scenario
//	steps:
//	  - op: create_stable
//	    name: car
//	  - op: create_table
//	    name: "`zz\\ `"
//	    stable: car
//	  - op: select_like
//	    field: name
//	    stable: car
//	    pattern: '"zz\\\\ "'
//	    expect:
//	      rows: 1
//	      values: ['zz\ ']
//
// Names starting with the dialect's identifier delimiter are decoded as
// quoted identifiers; anything else is taken as an unquoted name.
//
// # Operations
//
//   - create_stable: name
//   - create_table: name, optional stable, optional tags (raw JSON literal)
//   - insert: table, value (raw literal), optional kind (nchar|binary)
//   - select_eq: table, value
//   - select_like: field (name|value), pattern, stable or table
//   - show_tables: optional stable, optional pattern
//   - select_tags: table
//   - decode: value (raw literal), no store access
//
// Each step may carry an expect clause with rows, values and error. error
// is a code such as UNTERMINATED_LITERAL or MALFORMED_PATTERN.
//
// # Deterministic Testing
//
// Every scenario runs against a fresh in-memory SQLite database with a
// deterministic logical clock, so traces are byte-identical across runs
// and can be compared against golden files.
package harness
