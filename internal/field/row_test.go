package field

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarachom/accountingstore/internal/ident"
)

func TestRow_PreservesInsertionOrder(t *testing.T) {
	r := NewRow(F("zeta", Text("z")), F("alpha", Text("a")), F("mid", Text("m")))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, r.Names())
	assert.Equal(t, 3, r.Len())
}

func TestRow_SetReplacesInPlace(t *testing.T) {
	r := NewRow(F("a", Text("1")), F("b", Text("2")))
	r.Set("a", Text("3"))

	assert.Equal(t, []string{"a", "b"}, r.Names())
	v, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, Text("3"), v)
}

func TestRow_SetNilStoresNull(t *testing.T) {
	var r Row
	r.Set("a", nil)
	v, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, Null{}, v)
}

func TestRow_EqualIgnoresOrderAndID(t *testing.T) {
	a := NewRow(F("x", IntNumber(1)), F("y", Text("t")))
	b := NewRow(F("y", Text("t")), F("x", MustNumber("1.0")))
	b.ID = ident.New()

	assert.True(t, a.Equal(b))

	b.Set("z", Bool(true))
	assert.False(t, a.Equal(b))
}

func TestRow_CloneIsIndependent(t *testing.T) {
	a := NewRow(F("x", Text("1")))
	b := a.Clone()
	b.Set("x", Text("2"))

	v, _ := a.Get("x")
	assert.Equal(t, Text("1"), v)
}

func TestRowSet_Find(t *testing.T) {
	id := ident.New()
	r := NewRow(F("x", Text("1")))
	r.ID = id
	rs := RowSet{NewRow(), r}

	found, ok := rs.Find(id)
	require.True(t, ok)
	assert.Equal(t, id, found.ID)

	_, ok = rs.Find(ident.New())
	assert.False(t, ok)
}

func TestJoinMap(t *testing.T) {
	id := ident.New()
	j := JoinMap{}
	j.Set(id, "currency", "UAH")

	text, ok := j.Get(id, "currency")
	require.True(t, ok)
	assert.Equal(t, "UAH", text)

	_, ok = j.Get(id, "other")
	assert.False(t, ok)
	_, ok = j.Get(ident.New(), "currency")
	assert.False(t, ok)
}
