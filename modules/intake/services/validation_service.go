package services

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/hrtools/rolecall/modules/intake/domain/finding"
	"github.com/hrtools/rolecall/modules/intake/domain/normalize"
	"github.com/hrtools/rolecall/modules/intake/domain/roles"
	"github.com/hrtools/rolecall/modules/intake/domain/roster"
	"github.com/hrtools/rolecall/modules/intake/domain/submission"
	"github.com/hrtools/rolecall/pkg/excel"
)

// ValidationService runs the data-level checks on a structurally valid
// submission table: field completeness per role and grade-based permission
// per role holder. Findings accumulate; none of them halt processing.
type ValidationService struct {
	logger *logrus.Logger
}

func NewValidationService(logger *logrus.Logger) *ValidationService {
	return &ValidationService{logger: logger}
}

// Validate returns the ordered finding list for the table: completeness
// findings in row order, then permission findings in row order.
func (s *ValidationService) Validate(file string, t *excel.Table, ix *roster.Index) []finding.Finding {
	findings := s.checkCompleteness(file, t)
	return append(findings, s.checkPermissions(file, t, ix)...)
}

// checkCompleteness flags every row whose (PS ID, Name) pair for a role is
// partially filled: the pair must be entirely blank or entirely populated.
// One finding per offending row and role, not per field.
func (s *ValidationService) checkCompleteness(file string, t *excel.Table) []finding.Finding {
	var findings []finding.Finding
	for i := 0; i < t.NumRows(); i++ {
		for _, role := range roles.All() {
			psKey, nameKey := submission.PSIDKey(role), submission.NameKey(role)
			if !t.HasColumn(psKey) && !t.HasColumn(nameKey) {
				continue
			}
			psID, name := t.Cell(i, psKey), t.Cell(i, nameKey)
			blanks := 0
			if psID == "" {
				blanks++
			}
			if name == "" {
				blanks++
			}
			if blanks == 0 || blanks == 2 {
				continue
			}
			findings = append(findings, finding.Finding{
				File:        file,
				Row:         i + excel.DataStartRow,
				Role:        role,
				PSID:        normalize.FormatProposalID(psID),
				Name:        name,
				Description: fmt.Sprintf("%s has an incomplete PS ID / Name pair: both fields must be filled or both left blank", role),
				Kind:        finding.KindDataCompleteness,
			})
		}
	}
	return findings
}

// checkPermissions verifies each proposed role holder against the roster
// grade requirement of the role. A missing roster index skips the stage
// with a warning; it never fails the pipeline.
func (s *ValidationService) checkPermissions(file string, t *excel.Table, ix *roster.Index) []finding.Finding {
	if ix == nil {
		s.logger.WithField("file", file).Warn("no roster supplied; role permission checks skipped")
		return nil
	}
	var findings []finding.Finding
	for i := 0; i < t.NumRows(); i++ {
		for _, role := range roles.All() {
			psKey := submission.PSIDKey(role)
			if !t.HasColumn(psKey) {
				continue
			}
			rawID := t.Cell(i, psKey)
			if rawID == "" {
				continue
			}
			psID := normalize.FormatProposalID(rawID)
			name := t.Cell(i, submission.NameKey(role))
			found, grade := ix.LookupGrade(rawID)
			base := finding.Finding{
				File:  file,
				Row:   i + excel.DataStartRow,
				Role:  role,
				PSID:  psID,
				Name:  name,
				Grade: grade,
				Kind:  finding.KindRolePermission,
			}
			switch {
			case !found:
				base.Description = fmt.Sprintf("%s (PS ID %s) was not found in the roster", name, psID)
				findings = append(findings, base)
			case !roles.Satisfies(role, grade):
				base.Description = fmt.Sprintf(
					"%s (grade %s) does not meet the %s requirement: grade %s or more senior is required",
					name, grade, role, roles.MinimumGrade(role),
				)
				findings = append(findings, base)
			}
		}
	}
	return findings
}
