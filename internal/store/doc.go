// Package store implements backend.Backend on SQLite.
//
// Every table declared in the metadata configuration is created on Open
// with the identity column uid as primary key. Columns missing from an
// existing table are added, so a configuration may grow without a manual
// migration. A catalog table records what was created.
//
// # Column encoding
//
//   - text: TEXT, NFC-normalized
//   - number: NUMERIC, bound as a decimal string
//   - timestamp: TEXT in field.TimestampLayout (UTC, fixed width, so text
//     order equals time order)
//   - bool: INTEGER 0/1
//   - identity: TEXT canonical UUID
//   - reference: TEXT canonical JSON
//
// # Deterministic ordering
//
// All selects order by the requested fields followed by
// uid COLLATE BINARY ASC, so page splits and cursors are stable.
//
// # Database configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON
//   - BEGIN IMMEDIATE: write transactions take the write lock up front
//
// The path must name a file. Open transactions pin a pooled connection;
// reads given NoTx use the others.
//
// # Single writer
//
// At most one transaction is open at a time. While it is, a second
// BeginTransaction and every write given NoTx fail at once with a
// WRITER_BUSY *backend.StateError instead of waiting on the SQLite lock.
// Reads are never blocked. A standalone write racing a concurrent begin
// can still wait up to busy_timeout.
package store
