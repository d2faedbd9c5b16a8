// Package store is a SQLite catalog of stables, child tables and stored
// values, used to check that decoded names and values survive storage and
// can be found again by equality and by LIKE.
//
// Everything the store receives is canonical. Table names arrive decoded
// by escape.DecodeIdentifier, values by escape.DecodeLiteral, and tag
// payloads as parsed tagjson objects. The store never looks at raw query
// text.
//
// # Storage
//
//   - nchar values are stored in the configured wide encoding (UCS-4 by
//     default) and decode back to the exact same string.
//   - binary values are stored as raw bytes.
//   - tags are stored as canonical JSON.
//   - Ordering uses seq INTEGER from a logical clock, never timestamps.
//
// # LIKE
//
// Every connection gets the sqlesc_like SQL function, which runs the
// like package matcher. Patterns are validated before a query is sent, so
// a malformed pattern comes back as *like.PatternError rather than a
// driver error.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
