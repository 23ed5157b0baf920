package ident

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReference_Constructors(t *testing.T) {
	id := New()

	tr := TableRef(id, "tab_d01")
	assert.Equal(t, RefTable, tr.Kind)
	assert.Equal(t, "tab_d01", tr.Discriminator())
	assert.NoError(t, tr.Validate())

	xr := TextRef(id, "Invoice")
	assert.Equal(t, RefText, xr.Kind)
	assert.Equal(t, "Invoice", xr.Discriminator())
	assert.NoError(t, xr.Validate())
}

func TestReference_IsEmpty(t *testing.T) {
	assert.True(t, Reference{}.IsEmpty())
	assert.True(t, TableRef(Empty, "tab_d01").IsEmpty())
	assert.False(t, TableRef(New(), "tab_d01").IsEmpty())
}

func TestReference_EqualIgnoresPresentation(t *testing.T) {
	id := New()
	a := TableRef(id, "tab_d01")
	b := a
	b.Presentation = "UAH"

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(TableRef(id, "tab_d02")))
	assert.False(t, a.Equal(TextRef(id, "tab_d01")))
}

func TestReference_ValidateUnknownKind(t *testing.T) {
	r := Reference{Kind: "catalog", ID: New()}
	assert.Error(t, r.Validate())
}
