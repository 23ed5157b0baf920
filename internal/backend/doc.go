// Package backend defines the storage contract the persistence components
// are written against.
//
// The components never talk to a database directly. Every select, write,
// existence check and transaction boundary goes through Backend, so the
// same component code runs against the SQLite store or any other
// implementation.
//
// Transactions are identified by opaque TxID slot values handed out by
// BeginTransaction. NoTx means "no active transaction": mutating calls
// given NoTx run standalone and reads given NoTx see committed state. A
// read given an open slot sees that transaction's own writes.
package backend
