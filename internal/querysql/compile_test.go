package querysql

import (
	"fmt"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarachom/accountingstore/internal/field"
	"github.com/tarachom/accountingstore/internal/ident"
	"github.com/tarachom/accountingstore/internal/query"
)

var (
	ownerID  = ident.MustParse("0190a5e0-0000-7000-8000-000000000001")
	targetID = ident.MustParse("0190a5e0-0000-7000-8000-000000000002")
)

func render(sql string, params []any) []byte {
	return []byte(fmt.Sprintf("%s\n%v\n", sql, params))
}

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func pricesQuery() *query.Query {
	return query.New("tab_b02", "period", "owner", "price").
		Filter("owner", query.EQ, field.ID(ownerID)).
		Filter("period", query.GTEQ, field.At(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))).
		OrderBy("period", false)
}

func TestCompileSelect_Golden(t *testing.T) {
	q := pricesQuery().Page(2, 1000)

	sql, params, err := NewCompiler().CompileSelect(*q)
	require.NoError(t, err)

	newGoldie(t).Assert(t, "select_filtered", render(sql, params))
}

func TestCompileCount_Golden(t *testing.T) {
	q := pricesQuery().Page(2, 1000)

	sql, params, err := NewCompiler().CompileCount(*q)
	require.NoError(t, err)

	newGoldie(t).Assert(t, "count_filtered", render(sql, params))
}

func TestCompilePosition_Golden(t *testing.T) {
	q := query.New("tab_b02", "period").
		Filter("owner", query.EQ, field.ID(ownerID)).
		OrderBy("period", true)

	sql, params, err := NewCompiler().CompilePosition(*q, targetID)
	require.NoError(t, err)

	newGoldie(t).Assert(t, "position_target", render(sql, params))
}

func TestCompileJournal_Golden(t *testing.T) {
	posted := true
	j := JournalSelect{
		Branches: []JournalBranch{
			{Type: "Invoice", Table: "tab_c01"},
			{Type: "Receipt", Table: "tab_c02"},
		},
		Start:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC),
		Posted: &posted,
	}

	sql, params, err := NewCompiler().CompileJournal(j)
	require.NoError(t, err)

	newGoldie(t).Assert(t, "journal_posted", render(sql, params))
}

func TestCompileSelect_OrderByMandatory(t *testing.T) {
	testCases := []struct {
		name  string
		query query.Query
	}{
		{"no filter", *query.New("tab_a01", "code")},
		{"with filter", *query.New("tab_a01", "code").Filter("code", query.EQ, field.Text("UAH"))},
		{"explicit order", *query.New("tab_a01", "code").OrderBy("code", true)},
		{"no fields", query.Query{Table: "tab_a01"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sql, _, err := NewCompiler().CompileSelect(tc.query)
			require.NoError(t, err)
			assert.Contains(t, sql, "ORDER BY")
			assert.Contains(t, sql, "uid COLLATE BINARY ASC")
		})
	}
}

func TestCompileSelect_AlwaysProjectsIdentity(t *testing.T) {
	sql, _, err := NewCompiler().CompileSelect(*query.New("tab_a01", "uid", "code"))
	require.NoError(t, err)
	assert.Contains(t, sql, "SELECT uid, code FROM tab_a01")
}

func TestCompileSelect_NoStringInterpolation(t *testing.T) {
	dangerous := "'; DROP TABLE tab_a01; --"
	q := query.New("tab_a01", "code").Filter("code", query.EQ, field.Text(dangerous))

	sql, params, err := NewCompiler().CompileSelect(*q)
	require.NoError(t, err)

	assert.NotContains(t, sql, dangerous)
	assert.Contains(t, params, dangerous)
	assert.Contains(t, sql, "code = ?")
}

func TestCompileSelect_UnaryComparisons(t *testing.T) {
	q := query.New("tab_a01", "code").
		Filter("code", query.ISNULL, nil).
		Filter("rate", query.ISNOTNULL, nil)

	sql, params, err := NewCompiler().CompileSelect(*q)
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE code IS NULL AND rate IS NOT NULL")
	assert.Empty(t, params)
}

func TestCompileSelect_OffsetWithoutLimit(t *testing.T) {
	q := query.New("tab_a01").Window(0, 20)

	sql, params, err := NewCompiler().CompileSelect(*q)
	require.NoError(t, err)
	assert.Contains(t, sql, "LIMIT -1 OFFSET ?")
	assert.Equal(t, []any{20}, params)
}

func TestCompileSelect_RejectsBadIdentifiers(t *testing.T) {
	tests := []query.Query{
		{Table: "tab; DROP"},
		{Table: "tab_a01", Fields: []string{"code, secret"}},
		*query.New("tab_a01").Filter("a=1 OR 1", query.EQ, field.Text("x")),
		*query.New("tab_a01").OrderBy("code DESC --", false),
	}
	for _, q := range tests {
		_, _, err := NewCompiler().CompileSelect(q)
		assert.Error(t, err, "query %+v should be rejected", q)
	}
}

func TestCompileSelect_RejectsInvalidDescriptor(t *testing.T) {
	_, _, err := NewCompiler().CompileSelect(query.Query{})
	assert.ErrorContains(t, err, "table name is empty")
}

func TestCompileJournal_NoBranches(t *testing.T) {
	sql, params, err := NewCompiler().CompileJournal(JournalSelect{})
	require.NoError(t, err)
	assert.Empty(t, sql)
	assert.Nil(t, params)
}

func TestCompileJournal_WithoutPostedFilter(t *testing.T) {
	j := JournalSelect{
		Branches: []JournalBranch{{Type: "Invoice", Table: "tab_c01"}},
		Start:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	sql, params, err := NewCompiler().CompileJournal(j)
	require.NoError(t, err)
	assert.NotContains(t, sql, "spend = ?")
	assert.Len(t, params, 3)
}
