// Package ident provides the identity model shared by every persistence
// component: the 128-bit UniqueID and the polymorphic Reference that points
// into an arbitrary entity table.
//
// This package has no internal imports. Every other internal package may
// import ident; ident imports nothing internal.
//
// Key invariants:
//   - Empty (the nil UUID) means "not yet assigned"; a record whose identity
//     is Empty has never been persisted
//   - Generated identities are UUIDv7 and never equal Empty
//   - References are weak: they never imply ownership or cascading deletes
package ident
