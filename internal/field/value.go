package field

import (
	"fmt"
	"time"

	"github.com/cockroachdb/apd/v3"

	"github.com/tarachom/accountingstore/internal/ident"
)

// Value is a sealed interface over the supported field types.
// Only Null, Text, Number, Timestamp, Bool, Identity and Ref implement it.
type Value interface {
	Kind() Kind
	fieldValue()
}

// Null is an explicit absent value.
type Null struct{}

func (Null) Kind() Kind  { return KindNull }
func (Null) fieldValue() {}

// Text is a string value.
type Text string

func (Text) Kind() Kind  { return KindText }
func (Text) fieldValue() {}

// Number is an exact decimal value. The zero Number is 0.
type Number struct {
	d *apd.Decimal
}

func (Number) Kind() Kind  { return KindNumber }
func (Number) fieldValue() {}

// NewNumber parses a decimal literal such as "100.50".
func NewNumber(s string) (Number, error) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return Number{}, fmt.Errorf("parse number %q: %w", s, err)
	}
	return Number{d: d}, nil
}

// MustNumber is NewNumber that panics on error.
func MustNumber(s string) Number {
	n, err := NewNumber(s)
	if err != nil {
		panic(err)
	}
	return n
}

// IntNumber builds a Number from an integer.
func IntNumber(i int64) Number {
	return Number{d: apd.New(i, 0)}
}

// Decimal returns a copy of the underlying decimal.
func (n Number) Decimal() *apd.Decimal {
	out := new(apd.Decimal)
	if n.d != nil {
		out.Set(n.d)
	}
	return out
}

// Cmp compares two numbers numerically.
func (n Number) Cmp(other Number) int {
	return n.Decimal().Cmp(other.Decimal())
}

// String renders the number without exponent.
func (n Number) String() string {
	if n.d == nil {
		return "0"
	}
	return n.d.Text('f')
}

// Timestamp is a point in time, normalized to UTC.
type Timestamp struct {
	time.Time
}

func (Timestamp) Kind() Kind  { return KindTimestamp }
func (Timestamp) fieldValue() {}

// At builds a Timestamp in UTC.
func At(t time.Time) Timestamp {
	return Timestamp{t.UTC()}
}

// Bool is a boolean value.
type Bool bool

func (Bool) Kind() Kind  { return KindBool }
func (Bool) fieldValue() {}

// Identity holds a plain identity pointer (no table discriminator).
type Identity struct {
	ident.UniqueID
}

func (Identity) Kind() Kind  { return KindIdentity }
func (Identity) fieldValue() {}

// ID wraps a UniqueID as a Value.
func ID(id ident.UniqueID) Identity {
	return Identity{id}
}

// Ref holds a composite reference.
type Ref struct {
	ident.Reference
}

func (Ref) Kind() Kind  { return KindReference }
func (Ref) fieldValue() {}

// Reference wraps an ident.Reference as a Value.
func Reference(r ident.Reference) Ref {
	return Ref{r}
}

// Equal compares two values by kind and content. Numbers compare
// numerically, timestamps by instant, references ignoring presentation.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Text:
		return av == b.(Text)
	case Number:
		return av.Cmp(b.(Number)) == 0
	case Timestamp:
		return av.Equal(b.(Timestamp).Time)
	case Bool:
		return av == b.(Bool)
	case Identity:
		return av.UniqueID == b.(Identity).UniqueID
	case Ref:
		return av.Reference.Equal(b.(Ref).Reference)
	default:
		return false
	}
}

// Format renders a value as display text.
func Format(v Value) string {
	switch val := v.(type) {
	case nil, Null:
		return ""
	case Text:
		return string(val)
	case Number:
		return val.String()
	case Timestamp:
		return val.Format(time.RFC3339)
	case Bool:
		if val {
			return "true"
		}
		return "false"
	case Identity:
		return val.String()
	case Ref:
		if val.Presentation != "" {
			return val.Presentation
		}
		return val.Reference.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
