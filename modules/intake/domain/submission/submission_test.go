package submission

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrtools/rolecall/modules/intake/domain/roles"
	"github.com/hrtools/rolecall/pkg/excel"
)

func TestColumnClassification(t *testing.T) {
	tests := []struct {
		name     string
		key      excel.ColumnKey
		role     bool
		proposal bool
		process  bool
	}{
		{"preparer ps id", PSIDKey(roles.Preparer), true, true, false},
		{"approver name", NameKey(roles.Approver), true, true, false},
		{"roster enrichment", excel.Key(CategoryRoster, roles.Reviewer, "Group Grade"), true, false, false},
		{"submitted by", SubmittedByKey(), false, false, true},
		{"submitted time", SubmittedTimeKey(), false, false, true},
		{"conflict log", ConflictLogKey(), false, false, true},
		{"identity column", excel.Key("Record details", "", "Record ID"), false, false, false},
		{"unlabeled identity", excel.Key("", "", "Notes"), false, false, false},
		{"non-role block", excel.Key(CategoryProposed, "Sponsor", FieldPSID), false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.role, IsRoleColumn(tt.key))
			require.Equal(t, tt.proposal, IsProposalColumn(tt.key))
			require.Equal(t, tt.process, IsProcessColumn(tt.key))
		})
	}
}

func TestHasProposalData(t *testing.T) {
	tab := excel.NewTable([]excel.ColumnKey{
		excel.Key("Record details", "", "Record ID"),
		PSIDKey(roles.Preparer),
		NameKey(roles.Preparer),
	})
	require.NoError(t, tab.AppendRow([]string{"R-1", "00000001", ""}))
	require.NoError(t, tab.AppendRow([]string{"R-2", "", ""}))

	require.True(t, HasProposalData(tab, 0))
	// A row with only identity data carries no proposal.
	require.False(t, HasProposalData(tab, 1))
}
