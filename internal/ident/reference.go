package ident

import "fmt"

// RefKind is the closed set of reference shapes.
type RefKind string

const (
	// RefTable points at a row of a named table ("uuid and table").
	RefTable RefKind = "table"

	// RefText pairs an identity with free text ("uuid and text").
	RefText RefKind = "text"
)

// Reference is a weak, non-owning link to a row whose concrete entity kind
// is not known statically.
//
// Presentation is a cached display label filled in by a resolver; it is
// never persisted.
type Reference struct {
	Kind         RefKind
	ID           UniqueID
	Table        string
	Text         string
	Presentation string
}

// TableRef builds a RefTable reference.
func TableRef(id UniqueID, table string) Reference {
	return Reference{Kind: RefTable, ID: id, Table: table}
}

// TextRef builds a RefText reference.
func TextRef(id UniqueID, text string) Reference {
	return Reference{Kind: RefText, ID: id, Text: text}
}

// IsEmpty reports whether the reference points nowhere.
func (r Reference) IsEmpty() bool {
	return r.ID.IsEmpty()
}

// Discriminator returns the table name or free text carried by the reference.
func (r Reference) Discriminator() string {
	if r.Kind == RefText {
		return r.Text
	}
	return r.Table
}

// Equal compares references ignoring the cached presentation.
func (r Reference) Equal(other Reference) bool {
	return r.Kind == other.Kind && r.ID == other.ID && r.Table == other.Table && r.Text == other.Text
}

// Validate checks that the kind is known.
func (r Reference) Validate() error {
	switch r.Kind {
	case RefTable, RefText:
		return nil
	default:
		return fmt.Errorf("unknown reference kind %q", r.Kind)
	}
}

func (r Reference) String() string {
	return fmt.Sprintf("%s:%s(%s)", r.Kind, r.Discriminator(), r.ID)
}
