// Package field provides the tagged value model used to move row data
// between persistence components and the storage backend without
// reflection.
//
// Every Value carries an explicit Kind. A Row is an ordered mapping from
// field name to Value; a RowSet keeps rows in the order the backend
// returned them. JoinMap holds display text resolved for reference fields.
//
// Key design constraints:
//   - Numbers are exact decimals (apd), never float64
//   - Timestamps are always UTC
//   - Text is NFC normalized at the storage and serialization boundary
//   - Null is an explicit value, not a nil interface
package field
