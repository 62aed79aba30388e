// Package normalize holds the canonicalization rules for identifiers, grades
// and generic code cells. All functions are total: malformed input degrades
// to a best-effort string instead of failing the pipeline.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
)

// GradeTopRank is the sentinel highest-rank grade token. It outranks every
// numeric grade.
const GradeTopRank = "MD"

// identifierWidth is the fixed width of roster identifiers.
const identifierWidth = 8

// FormatIdentifier canonicalizes a roster identifier cell: a blank cell
// passes through, a trailing decimal remnant from numeric cells is dropped,
// and the result is zero-padded to eight characters.
func FormatIdentifier(v string) string {
	s := truncateDecimal(v)
	if s == "" {
		return ""
	}
	if len(s) < identifierWidth {
		s = strings.Repeat("0", identifierWidth-len(s)) + s
	}
	return s
}

// FormatProposalID canonicalizes a role-holder PS ID cell. Proposal ids are
// variable length, so no padding is applied.
func FormatProposalID(v string) string {
	return truncateDecimal(v)
}

func truncateDecimal(v string) string {
	s := strings.TrimSpace(v)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	return s
}

// NormalizeGrade canonicalizes a Group Grade cell. Numeric grades become
// two-digit zero-padded strings, the top-rank token is kept as-is, and
// grade codes outside the numeric scheme pass through trimmed and
// uppercased.
func NormalizeGrade(v string) string {
	s := strings.ToUpper(strings.TrimSpace(v))
	if s == "" {
		return ""
	}
	if s == GradeTopRank {
		return s
	}
	stripped := strings.TrimLeft(s, "0")
	if stripped == "" {
		stripped = "0"
	}
	if n, err := strconv.Atoi(stripped); err == nil {
		return fmt.Sprintf("%02d", n)
	}
	return s
}

// ConvertCode formats a numeric code cell as a two-digit zero-padded string;
// non-numeric values pass through as text.
func ConvertCode(v string) string {
	s := strings.TrimSpace(v)
	if s == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fmt.Sprintf("%02d", int(f))
	}
	return s
}
