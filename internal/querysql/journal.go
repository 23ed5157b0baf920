package querysql

import (
	"fmt"
	"strings"
	"time"

	"github.com/tarachom/accountingstore/internal/field"
)

// Header columns every document table carries.
const (
	DocName          = "docname"
	DocNumber        = "docnomer"
	DocDate          = "docdate"
	DocDeletionLabel = "deletion_label"
	DocSpend         = "spend"
	DocSpendDate     = "spend_date"
)

// DocumentColumns lists the header columns in select order.
var DocumentColumns = []string{DocName, DocNumber, DocDate, DocDeletionLabel, DocSpend, DocSpendDate}

// JournalBranch is one document table taking part in a journal.
type JournalBranch struct {
	Type  string
	Table string
}

// JournalSelect describes a cross-table pointer query.
type JournalSelect struct {
	Branches []JournalBranch
	Start    time.Time
	End      time.Time
	Posted   *bool
}

// CompileJournal converts a journal select to a UNION ALL over the document
// tables. Each branch is tagged with its type name as the first column.
// Both period bounds are inclusive. Returns an empty statement when there
// are no branches.
//
// MANDATORY: results are ordered by document date, then identity.
func (c *Compiler) CompileJournal(j JournalSelect) (string, []any, error) {
	if len(j.Branches) == 0 {
		return "", nil, nil
	}

	start := field.FormatTimestamp(j.Start)
	end := field.FormatTimestamp(j.End)

	var branches []string
	var params []any
	for _, b := range j.Branches {
		if err := CheckIdentifier(b.Table); err != nil {
			return "", nil, fmt.Errorf("journal branch %q: %w", b.Type, err)
		}
		sql := fmt.Sprintf("SELECT ? AS typedoc, %s, %s FROM %s WHERE %s >= ? AND %s <= ?",
			IDColumn, strings.Join(DocumentColumns, ", "), b.Table, DocDate, DocDate)
		params = append(params, b.Type, start, end)
		if j.Posted != nil {
			sql += fmt.Sprintf(" AND %s = ?", DocSpend)
			params = append(params, boolParam(*j.Posted))
		}
		branches = append(branches, sql)
	}

	sql := strings.Join(branches, " UNION ALL ") +
		fmt.Sprintf(" ORDER BY %s ASC, %s COLLATE BINARY ASC", DocDate, IDColumn)

	return sql, params, nil
}

func boolParam(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
