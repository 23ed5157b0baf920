package ident

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
)

// UniqueID identifies a persisted row. The zero value is Empty.
type UniqueID struct {
	uuid.UUID
}

// Empty is the "not yet assigned" identity.
var Empty = UniqueID{}

// New returns a fresh UUIDv7 identity.
//
// Panics if the random source fails (should never happen in practice).
func New() UniqueID {
	return UniqueID{uuid.Must(uuid.NewV7())}
}

// FromUUID wraps an existing 128-bit value.
func FromUUID(u uuid.UUID) UniqueID {
	return UniqueID{u}
}

// Parse decodes the canonical 36-character form. An empty string parses
// to Empty.
func Parse(s string) (UniqueID, error) {
	if s == "" {
		return Empty, nil
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return Empty, fmt.Errorf("parse unique id %q: %w", s, err)
	}
	return UniqueID{u}, nil
}

// MustParse is Parse that panics on error. Intended for tests and constants.
func MustParse(s string) UniqueID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsEmpty reports whether the identity is unassigned.
func (id UniqueID) IsEmpty() bool {
	return id.UUID == uuid.Nil
}

// Value implements driver.Valuer. Identities are stored as canonical text.
func (id UniqueID) Value() (driver.Value, error) {
	return id.String(), nil
}

// Scan implements sql.Scanner. NULL and empty text scan to Empty.
func (id *UniqueID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*id = Empty
		return nil
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	case []byte:
		parsed, err := Parse(string(v))
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	default:
		return fmt.Errorf("scan unique id: unsupported type %T", src)
	}
}
