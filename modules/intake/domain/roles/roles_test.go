package roles

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrtools/rolecall/modules/intake/domain/normalize"
)

func TestAll_FixedOrder(t *testing.T) {
	require.Equal(t, []string{Preparer, Reviewer, Approver}, All())
	for _, r := range All() {
		require.True(t, IsRole(r))
	}
	require.False(t, IsRole("Role Holder4 Auditor"))
}

func TestSatisfies(t *testing.T) {
	tests := []struct {
		name  string
		role  string
		grade string
		want  bool
	}{
		{"grade 05 may review", Reviewer, "05", true},
		{"grade 05 unpadded may review", Reviewer, "5", true},
		{"grade 05 may not approve", Approver, "05", false},
		{"grade 04 may approve", Approver, "04", true},
		{"grade 01 may approve", Approver, "01", true},
		{"top rank may approve even when absent from the set", Approver, normalize.GradeTopRank, true},
		{"top rank may review", Reviewer, normalize.GradeTopRank, true},
		{"grade 09 may not prepare", Preparer, "09", false},
		{"grade 02 may review", Reviewer, "02", true},
		{"non numeric grade fails membership", Reviewer, "X1", false},
		{"not found marker fails", Reviewer, "User not found", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Satisfies(tt.role, tt.grade))
		})
	}
}

// Seniority is monotonic: when a numeric grade satisfies a role, every more
// senior numeric grade and the top-rank token satisfy it too.
func TestSatisfies_Monotonic(t *testing.T) {
	for _, role := range All() {
		for g := 1; g <= 12; g++ {
			grade := fmt.Sprintf("%02d", g)
			if !Satisfies(role, grade) {
				continue
			}
			for senior := 1; senior <= g; senior++ {
				require.True(t, Satisfies(role, fmt.Sprintf("%02d", senior)),
					"%s accepts %s but rejects the more senior %02d", role, grade, senior)
			}
			require.True(t, Satisfies(role, normalize.GradeTopRank))
		}
	}
}

func TestMinimumGrade(t *testing.T) {
	require.Equal(t, "08", MinimumGrade(Preparer))
	require.Equal(t, "06", MinimumGrade(Reviewer))
	require.Equal(t, "04", MinimumGrade(Approver))
	require.Equal(t, "", MinimumGrade("unknown role"))
}

func TestRequirements_Copies(t *testing.T) {
	req, ok := Requirements(Reviewer)
	require.True(t, ok)
	req[0] = "tampered"
	again, _ := Requirements(Reviewer)
	require.NotEqual(t, "tampered", again[0])

	_, ok = Requirements("unknown role")
	require.False(t, ok)
}
