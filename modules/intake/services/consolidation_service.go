package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hrtools/rolecall/modules/intake/domain/normalize"
	"github.com/hrtools/rolecall/modules/intake/domain/roles"
	"github.com/hrtools/rolecall/modules/intake/domain/submission"
	"github.com/hrtools/rolecall/modules/intake/infrastructure/workbook"
	"github.com/hrtools/rolecall/pkg/excel"
)

// Consolidated report sheet names.
const (
	sheetResolved    = "Resolved"
	sheetOutstanding = "Outstanding"
	sheetConflicts   = "Conflicts"
)

// ConsolidationService merges every submission workbook under a folder into
// one three-sheet report separating resolved, outstanding and conflicting
// rows.
type ConsolidationService struct {
	opts        workbook.Options
	submittedBy string
	logger      *logrus.Logger
	now         func() time.Time
}

func NewConsolidationService(opts workbook.Options, submittedBy string, logger *logrus.Logger) *ConsolidationService {
	return &ConsolidationService{
		opts:        opts,
		submittedBy: submittedBy,
		logger:      logger,
		now:         time.Now,
	}
}

// Consolidate merges all submissions under inputDir and writes the
// consolidated report into outputDir, returning its path. Every file must
// match the column schema of the first; a mismatch aborts the whole run
// with no output. Cancellation is polled between files.
func (s *ConsolidationService) Consolidate(ctx context.Context, inputDir, outputDir string, progress ProgressFunc) (string, error) {
	log := s.logger.WithFields(logrus.Fields{"job_id": uuid.NewString(), "input_dir": inputDir})

	notify(progress, 5, "discovering submission files")
	files, err := workbook.Discover(inputDir)
	if err != nil {
		return "", fmt.Errorf("reading input folder %s: %w", inputDir, err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no submission workbooks found under %s", inputDir)
	}
	log.WithField("files", len(files)).Info("consolidating submissions")

	var merged *excel.Table
	referenceFile := filepath.Base(files[0])
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		base := filepath.Base(path)
		notify(progress, 5+55*i/len(files), fmt.Sprintf("reading %s", base))

		t, err := workbook.OpenTable(path, s.opts)
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", base, err)
		}
		normalizeProposalIDs(t)
		if merged == nil {
			merged = t
			continue
		}
		if !merged.SameSchema(t) {
			return "", fmt.Errorf("%s does not match the column layout of %s; consolidation aborted", base, referenceFile)
		}
		if err := merged.AppendTable(t); err != nil {
			return "", fmt.Errorf("merging %s: %w", base, err)
		}
	}
	merged.DropDuplicateRows()
	if err := ctx.Err(); err != nil {
		return "", err
	}

	notify(progress, 65, "partitioning rows")
	resolved, outstanding, conflicts := partitionRows(merged)
	log.WithFields(logrus.Fields{
		"resolved":    resolved.NumRows(),
		"outstanding": outstanding.NumRows(),
		"conflicting": conflicts.NumRows(),
	}).Info("partitioned")

	notify(progress, 85, "writing consolidated workbook")
	var sheets []workbook.NamedTable
	for _, nt := range []workbook.NamedTable{
		{Name: sheetResolved, Table: resolved},
		{Name: sheetOutstanding, Table: outstanding},
		{Name: sheetConflicts, Table: conflicts},
	} {
		if nt.Table.NumRows() > 0 {
			sheets = append(sheets, nt)
		}
	}
	if len(sheets) == 0 {
		// No data rows anywhere: emit a headers-only resolved sheet so the
		// report still documents the schema.
		sheets = []workbook.NamedTable{{Name: sheetResolved, Table: resolved}}
	}
	outputPath := filepath.Join(outputDir, fmt.Sprintf("Consolidated_output_%s_%s.xlsx", s.submittedBy, s.now().Format(outputTimeLayout)))
	if err := workbook.WriteConsolidated(outputPath, sheets, s.opts); err != nil {
		return "", fmt.Errorf("writing %s: %w", outputPath, err)
	}

	notify(progress, 100, "done")
	return outputPath, nil
}

// normalizeProposalIDs canonicalizes every role-holder PS ID column in
// place.
func normalizeProposalIDs(t *excel.Table) {
	for _, role := range roles.All() {
		j, ok := t.ColumnIndex(submission.PSIDKey(role))
		if !ok {
			continue
		}
		for i := 0; i < t.NumRows(); i++ {
			t.SetCellAt(i, j, normalize.FormatProposalID(t.CellAt(i, j)))
		}
	}
}

// partitionRows splits the merged table so every row lands in exactly one
// partition. Rows without proposal data are outstanding. The rest group by
// identity key (every column that is neither a role-holder column nor a
// process-assigned one): singleton groups resolve, groups from one submitter
// resolve latest-wins, groups from several submitters conflict and carry a
// synthesized conflict log.
func partitionRows(t *excel.Table) (resolved, outstanding, conflicts *excel.Table) {
	cols := t.Columns()
	resolved = excel.NewTable(cols)
	outstanding = excel.NewTable(cols)
	conflicts = excel.NewTable(cols)
	_ = conflicts.AppendColumn(submission.ConflictLogKey(), nil)

	var identityIdx []int
	for j, k := range cols {
		if !submission.IsRoleColumn(k) && !submission.IsProcessColumn(k) {
			identityIdx = append(identityIdx, j)
		}
	}

	groups := make(map[string][]int)
	var groupOrder []string
	for i := 0; i < t.NumRows(); i++ {
		if !submission.HasProposalData(t, i) {
			_ = outstanding.AppendRow(t.Row(i))
			continue
		}
		parts := make([]string, len(identityIdx))
		for n, j := range identityIdx {
			parts[n] = t.CellAt(i, j)
		}
		key := strings.Join(parts, "\x1f")
		if _, seen := groups[key]; !seen {
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], i)
	}

	byIdx, hasBy := t.ColumnIndex(submission.SubmittedByKey())
	timeIdx, hasTime := t.ColumnIndex(submission.SubmittedTimeKey())
	submitter := func(i int) string {
		if !hasBy {
			return ""
		}
		return t.CellAt(i, byIdx)
	}
	submittedAt := func(i int) string {
		if !hasTime {
			return ""
		}
		return t.CellAt(i, timeIdx)
	}

	for _, key := range groupOrder {
		rows := groups[key]
		if len(rows) == 1 {
			_ = resolved.AppendRow(t.Row(rows[0]))
			continue
		}
		if distinctSubmitters(rows, submitter) <= 1 {
			_ = resolved.AppendRow(t.Row(latestRow(rows, submittedAt)))
			continue
		}
		narrative := conflictLog(t, rows, submitter, submittedAt)
		for _, i := range rows {
			_ = conflicts.AppendRow(append(t.Row(i), narrative))
		}
	}
	return resolved, outstanding, conflicts
}

func distinctSubmitters(rows []int, submitter func(int) string) int {
	seen := make(map[string]struct{}, len(rows))
	for _, i := range rows {
		seen[submitter(i)] = struct{}{}
	}
	return len(seen)
}

// latestRow picks the chronologically latest row by Submitted time; the
// layout sorts lexicographically, so string comparison suffices. Ties keep
// the later occurrence, matching latest-file-wins.
func latestRow(rows []int, submittedAt func(int) string) int {
	best := rows[0]
	for _, i := range rows[1:] {
		if submittedAt(i) >= submittedAt(best) {
			best = i
		}
	}
	return best
}

// conflictLog synthesizes the narrative for one conflicting group: one line
// per distinct non-blank value of every PS ID or Name column that diverges
// within the group. Every row of the group receives the identical log.
func conflictLog(t *excel.Table, rows []int, submitter, submittedAt func(int) string) string {
	var lines []string
	for j, k := range t.Columns() {
		if !strings.Contains(k.Field, submission.FieldPSID) && !strings.Contains(k.Field, submission.FieldName) {
			continue
		}
		var values []string
		seen := make(map[string]struct{})
		for _, i := range rows {
			v := t.CellAt(i, j)
			if v == "" {
				continue
			}
			if _, dup := seen[v]; !dup {
				seen[v] = struct{}{}
				values = append(values, v)
			}
		}
		if len(values) <= 1 {
			continue
		}
		for _, v := range values {
			var contributors []int
			for _, i := range rows {
				if t.CellAt(i, j) == v {
					contributors = append(contributors, i)
				}
			}
			lines = append(lines, fmt.Sprintf("- %s has value '%s' (Submitted by: %s, Submitted time: %s)",
				k.Title(), v,
				joinDistinct(contributors, submitter),
				joinDistinct(contributors, submittedAt),
			))
		}
	}
	return strings.Join(lines, "\n")
}

// joinDistinct pipe-joins the distinct values of f over rows, in first-seen
// order.
func joinDistinct(rows []int, f func(int) string) string {
	var out []string
	seen := make(map[string]struct{}, len(rows))
	for _, i := range rows {
		v := f(i)
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return strings.Join(out, " | ")
}
