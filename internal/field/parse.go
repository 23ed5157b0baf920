package field

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tarachom/accountingstore/internal/ident"
)

// Parse converts user-supplied text (CLI flags, fixture files) to a Value
// of the given kind. References are written as "<table>/<uuid>".
func Parse(kind Kind, s string) (Value, error) {
	switch kind {
	case KindText:
		return Text(s), nil
	case KindNumber:
		return NewNumber(s)
	case KindTimestamp:
		return ParseTimestamp(s)
	case KindBool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("parse bool %q: %w", s, err)
		}
		return Bool(b), nil
	case KindIdentity:
		id, err := ident.Parse(s)
		if err != nil {
			return nil, err
		}
		return ID(id), nil
	case KindReference:
		table, raw, ok := strings.Cut(s, "/")
		if !ok {
			return nil, fmt.Errorf("parse reference %q: expected <table>/<uuid>", s)
		}
		id, err := ident.Parse(raw)
		if err != nil {
			return nil, err
		}
		return Reference(ident.TableRef(id, table)), nil
	default:
		return nil, fmt.Errorf("cannot parse value of kind %q", kind)
	}
}
