// Package roles defines the fixed organizational role list and the
// role-grade requirement table.
package roles

import (
	"fmt"
	"strconv"

	"github.com/hrtools/rolecall/modules/intake/domain/normalize"
)

// The three fixed role-holder roles, in their canonical order.
const (
	Preparer = "Role Holder1 Preparer"
	Reviewer = "Role Holder2 Reviewer"
	Approver = "Role Holder3 Approver"
)

// All returns the fixed role list in canonical order.
func All() []string {
	return []string{Preparer, Reviewer, Approver}
}

// IsRole reports whether name is one of the fixed roles.
func IsRole(name string) bool {
	return name == Preparer || name == Reviewer || name == Approver
}

// requirements maps each role to its acceptable grade tokens. Grades are
// two-digit zero-padded numbers (a lower number is more senior) plus the
// top-rank token where the role admits it. Each entry set denotes one
// minimum-seniority threshold.
var requirements = map[string][]string{
	Preparer: {"04", "05", "06", "07", "08", normalize.GradeTopRank},
	Reviewer: {"03", "04", "05", "06", normalize.GradeTopRank},
	Approver: {"01", "02", "03", "04"},
}

// Requirements returns the acceptable grade set for role.
func Requirements(role string) ([]string, bool) {
	req, ok := requirements[role]
	if !ok {
		return nil, false
	}
	out := make([]string, len(req))
	copy(out, req)
	return out, true
}

// MinimumGrade returns the least senior acceptable grade for role: the
// maximum numeric entry of its requirement set.
func MinimumGrade(role string) string {
	req, ok := requirements[role]
	if !ok {
		return ""
	}
	maxN, found := maxNumeric(req)
	if !found {
		return normalize.GradeTopRank
	}
	return fmt.Sprintf("%02d", maxN)
}

// Satisfies reports whether grade meets the requirement of role. The
// top-rank token satisfies every requirement; a numeric grade satisfies it
// when it does not exceed the set's maximum numeric entry; any other grade
// must appear verbatim in the set.
func Satisfies(role, grade string) bool {
	req, ok := requirements[role]
	if !ok {
		// Unknown roles carry no grade constraint.
		return true
	}
	g := normalize.NormalizeGrade(grade)
	if g == normalize.GradeTopRank {
		return true
	}
	if n, err := strconv.Atoi(g); err == nil {
		if maxN, found := maxNumeric(req); found {
			return n <= maxN
		}
	}
	for _, r := range req {
		if r == g {
			return true
		}
	}
	return false
}

func maxNumeric(grades []string) (int, bool) {
	maxN, found := 0, false
	for _, g := range grades {
		if n, err := strconv.Atoi(g); err == nil {
			if !found || n > maxN {
				maxN = n
			}
			found = true
		}
	}
	return maxN, found
}
