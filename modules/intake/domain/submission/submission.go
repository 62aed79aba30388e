// Package submission defines the column conventions of role-holder
// submission tables.
package submission

import (
	"github.com/hrtools/rolecall/modules/intake/domain/roles"
	"github.com/hrtools/rolecall/pkg/excel"
)

// Header categories.
const (
	CategoryProposed = "Proposed changes"
	CategoryRoster   = "Roster details"
)

// Per-role field pair.
const (
	FieldPSID = "PS ID"
	FieldName = "Name"
)

// Process-assigned columns, unlabeled at the category and role levels.
const (
	FieldSubmittedBy   = "Submitted by"
	FieldSubmittedTime = "Submitted time"
	FieldConflictLog   = "Conflict Log"
)

// TimeLayout formats Submitted time values. It sorts lexicographically.
const TimeLayout = "2006-01-02 15:04:05"

func PSIDKey(role string) excel.ColumnKey {
	return excel.Key(CategoryProposed, role, FieldPSID)
}

func NameKey(role string) excel.ColumnKey {
	return excel.Key(CategoryProposed, role, FieldName)
}

func SubmittedByKey() excel.ColumnKey {
	return excel.Key("", "", FieldSubmittedBy)
}

func SubmittedTimeKey() excel.ColumnKey {
	return excel.Key("", "", FieldSubmittedTime)
}

func ConflictLogKey() excel.ColumnKey {
	return excel.Key("", "", FieldConflictLog)
}

// IsRoleColumn reports whether k belongs to one of the fixed role blocks,
// proposal and enrichment columns alike.
func IsRoleColumn(k excel.ColumnKey) bool {
	return k.Role.Valid && roles.IsRole(k.Role.Text)
}

// IsProposalColumn reports whether k is a role-holder proposal field.
func IsProposalColumn(k excel.ColumnKey) bool {
	return IsRoleColumn(k) && k.Category.Valid && k.Category.Text == CategoryProposed
}

// IsProcessColumn reports whether k is attached by the pipeline rather than
// the submitter.
func IsProcessColumn(k excel.ColumnKey) bool {
	if k.Role.Valid {
		return false
	}
	switch k.Field {
	case FieldSubmittedBy, FieldSubmittedTime, FieldConflictLog:
		return true
	}
	return false
}

// HasProposalData reports whether row i carries any non-blank role-holder
// proposal cell.
func HasProposalData(t *excel.Table, i int) bool {
	for j, k := range t.Columns() {
		if IsProposalColumn(k) && t.CellAt(i, j) != "" {
			return true
		}
	}
	return false
}
