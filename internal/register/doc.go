// Package register implements information registers in both forms.
//
// Object is a single record addressed by identity, with period and owner
// metadata. RecordsSet is an open collection of records browsed by owner
// and period, with page splitting for large result sets.
package register
