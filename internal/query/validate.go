package query

import (
	"errors"
	"fmt"
)

// ValidationResult lists structural problems found in a descriptor.
type ValidationResult struct {
	// Valid is true when Problems is empty.
	Valid bool

	// Problems describes each defect in a human-readable form.
	Problems []string
}

// Err folds the problems into a single error, or nil when valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	errs := make([]error, len(r.Problems))
	for i, p := range r.Problems {
		errs[i] = errors.New(p)
	}
	return fmt.Errorf("invalid query: %w", errors.Join(errs...))
}

// Validate checks a descriptor for structural defects: missing table,
// blank field names, unknown operators, missing comparison values and
// negative windows. It never consults a schema.
//
// Validate is a pure function with no side effects.
func Validate(q Query) ValidationResult {
	v := &validator{problems: []string{}}
	v.validate(q)
	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

// validator accumulates problems during traversal.
type validator struct {
	problems []string
}

func (v *validator) add(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) validate(q Query) {
	if q.Table == "" {
		v.add("table name is empty")
	}
	for i, f := range q.Fields {
		if f == "" {
			v.add("field %d: name is empty", i)
		}
	}
	for i, w := range q.Where {
		v.validateWhere(i, w)
	}
	for i, o := range q.Order {
		if o.Field == "" {
			v.add("order %d: field name is empty", i)
		}
	}
	if q.Limit < 0 {
		v.add("limit %d is negative", q.Limit)
	}
	if q.Offset < 0 {
		v.add("offset %d is negative", q.Offset)
	}
}

func (v *validator) validateWhere(i int, w Where) {
	if w.Field == "" {
		v.add("where %d: field name is empty", i)
	}
	if !w.Comparison.Valid() {
		v.add("where %d: unknown comparison %q", i, w.Comparison)
		return
	}
	if !w.Comparison.IsUnary() && w.Value == nil {
		v.add("where %d: comparison %s on '%s' requires a value", i, w.Comparison, w.Field)
	}
}
