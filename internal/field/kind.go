package field

import "fmt"

// Kind tags a Value with its storage type.
type Kind string

const (
	KindNull      Kind = "null"
	KindText      Kind = "text"
	KindNumber    Kind = "number"
	KindTimestamp Kind = "timestamp"
	KindBool      Kind = "bool"
	KindIdentity  Kind = "identity"
	KindReference Kind = "reference"
)

// ValidKinds lists the kinds a column may be declared with.
var ValidKinds = []Kind{KindText, KindNumber, KindTimestamp, KindBool, KindIdentity, KindReference}

// ParseKind converts a metadata type name to a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range ValidKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown field kind %q: must be one of %v", s, ValidKinds)
}

func (k Kind) String() string {
	return string(k)
}
