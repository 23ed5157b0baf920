// Package query provides the declarative query descriptor passed from
// persistence components to the storage backend.
//
// A Query names a target table, an ordered projection list, a list of
// predicates (all must hold), an optional ordering and an optional window.
// The descriptor carries no execution state and is never executed by the
// components themselves; the backend compiles it (see internal/querysql).
//
// Validation is structural only. Unknown tables or fields surface when the
// backend executes the descriptor, which keeps this layer schema-agnostic.
//
// Example:
//
//	q := query.New("tab_b02", "period", "owner", "price").
//	    Filter("owner", query.EQ, field.ID(owner)).
//	    Filter("period", query.GTEQ, field.At(start)).
//	    OrderBy("period", false)
package query
