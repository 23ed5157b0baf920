// Package journal enumerates document pointers across the document tables
// of a journal, restricted to a date range.
//
// A Select loads every matching pointer; the cursor then moves forward
// only. Calling Select again restarts browsing with new bounds.
package journal
