package services

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/hrtools/rolecall/modules/intake/domain/roles"
	"github.com/hrtools/rolecall/modules/intake/domain/submission"
	"github.com/hrtools/rolecall/modules/intake/infrastructure/workbook"
	"github.com/hrtools/rolecall/pkg/excel"
)

func consolidationColumns() []excel.ColumnKey {
	cols := []excel.ColumnKey{excel.Key("Record details", "", "Record ID")}
	for _, role := range roles.All() {
		cols = append(cols, submission.PSIDKey(role), submission.NameKey(role))
	}
	return append(cols, submission.SubmittedByKey(), submission.SubmittedTimeKey())
}

// row builds (record id, preparer ps/name, reviewer ps/name, approver
// ps/name, submitted by, submitted time).
func consolidationRow(recordID, psID, name, by, at string) []string {
	return []string{recordID, psID, name, "", "", "", "", by, at}
}

func buildMerged(t *testing.T, rows ...[]string) *excel.Table {
	t.Helper()
	tab := excel.NewTable(consolidationColumns())
	for _, r := range rows {
		require.NoError(t, tab.AppendRow(r))
	}
	return tab
}

func TestPartitionRows_OutstandingAndResolved(t *testing.T) {
	merged := buildMerged(t,
		consolidationRow("R-1", "", "", "", ""),
		consolidationRow("R-1", "1", "Ada", "sam", "2026-08-01 09:00:00"),
	)
	resolved, outstanding, conflicts := partitionRows(merged)

	require.Equal(t, 1, outstanding.NumRows())
	require.Equal(t, 1, resolved.NumRows())
	require.Equal(t, 0, conflicts.NumRows())
	require.Equal(t, "Ada", resolved.Cell(0, submission.NameKey(roles.Preparer)))
}

func TestPartitionRows_SameSubmitterResolvesLatest(t *testing.T) {
	merged := buildMerged(t,
		consolidationRow("R-1", "1", "Ada", "sam", "2026-08-01 09:00:00"),
		consolidationRow("R-1", "2", "Grace", "sam", "2026-08-02 10:00:00"),
	)
	resolved, outstanding, conflicts := partitionRows(merged)

	require.Equal(t, 0, outstanding.NumRows())
	require.Equal(t, 0, conflicts.NumRows())
	require.Equal(t, 1, resolved.NumRows())
	require.Equal(t, "Grace", resolved.Cell(0, submission.NameKey(roles.Preparer)))
}

func TestPartitionRows_IdenticalContentDifferentSubmittersConflicts(t *testing.T) {
	merged := buildMerged(t,
		consolidationRow("R-1", "1", "Ada", "sam", "2026-08-01 09:00:00"),
		consolidationRow("R-1", "1", "Ada", "kim", "2026-08-01 10:00:00"),
		consolidationRow("R-1", "1", "Ada", "lee", "2026-08-01 11:00:00"),
	)
	resolved, outstanding, conflicts := partitionRows(merged)

	require.Equal(t, 0, resolved.NumRows())
	require.Equal(t, 0, outstanding.NumRows())
	require.Equal(t, 3, conflicts.NumRows())
	// Identical proposals diverge on nothing, so the shared narrative is
	// empty on every row.
	logKey := submission.ConflictLogKey()
	for i := 0; i < 3; i++ {
		require.Equal(t, "", conflicts.Cell(i, logKey))
	}
}

func TestPartitionRows_DivergentProposalsSynthesizeLog(t *testing.T) {
	merged := buildMerged(t,
		consolidationRow("R-1", "1", "Ada", "sam", "2026-08-01 09:00:00"),
		consolidationRow("R-1", "2", "Grace", "kim", "2026-08-02 10:00:00"),
	)
	resolved, outstanding, conflicts := partitionRows(merged)

	require.Equal(t, 0, resolved.NumRows())
	require.Equal(t, 0, outstanding.NumRows())
	require.Equal(t, 2, conflicts.NumRows())

	logKey := submission.ConflictLogKey()
	narrative := conflicts.Cell(0, logKey)
	require.Equal(t, narrative, conflicts.Cell(1, logKey))
	require.Contains(t, narrative, "- Role Holder1 Preparer PS ID has value '1' (Submitted by: sam, Submitted time: 2026-08-01 09:00:00)")
	require.Contains(t, narrative, "- Role Holder1 Preparer PS ID has value '2' (Submitted by: kim, Submitted time: 2026-08-02 10:00:00)")
	require.Contains(t, narrative, "- Role Holder1 Preparer Name has value 'Ada'")
	require.Contains(t, narrative, "- Role Holder1 Preparer Name has value 'Grace'")
	require.Len(t, strings.Split(narrative, "\n"), 4)
}

func TestPartitionRows_EveryRowLandsInExactlyOnePartition(t *testing.T) {
	merged := buildMerged(t,
		consolidationRow("R-1", "", "", "", ""),
		consolidationRow("R-2", "1", "Ada", "sam", "2026-08-01 09:00:00"),
		consolidationRow("R-3", "1", "Ada", "sam", "2026-08-01 09:00:00"),
		consolidationRow("R-4", "1", "Ada", "sam", "2026-08-01 09:00:00"),
		consolidationRow("R-4", "2", "Grace", "kim", "2026-08-02 10:00:00"),
	)
	resolved, outstanding, conflicts := partitionRows(merged)
	require.Equal(t, merged.NumRows(), resolved.NumRows()+outstanding.NumRows()+conflicts.NumRows())
}

// writeSubmissionFile lays a table out on disk the way processed submissions
// are stored.
func writeSubmissionFile(t *testing.T, path string, tab *excel.Table, opts workbook.Options) {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	f.SetSheetName("Sheet1", opts.MainSheet)
	require.NoError(t, excel.WriteHierarchical(f, opts.MainSheet, tab, nil, 0))
	require.NoError(t, f.SaveAs(path))
}

func testOptions() workbook.Options {
	return workbook.Options{
		MainSheet:      "Role Holders",
		RosterSheet:    "User Data",
		MaxFileSize:    32 << 20,
		HighlightColor: "FFFF00",
	}
}

func TestConsolidate_EndToEnd(t *testing.T) {
	inputDir, outputDir := t.TempDir(), t.TempDir()
	opts := testOptions()

	writeSubmissionFile(t, filepath.Join(inputDir, "a.xlsx"), buildMerged(t,
		consolidationRow("R-1", "1", "Ada", "sam", "2026-08-01 09:00:00"),
		consolidationRow("R-2", "", "", "", ""),
	), opts)
	writeSubmissionFile(t, filepath.Join(inputDir, "b.xlsx"), buildMerged(t,
		consolidationRow("R-1", "2", "Grace", "kim", "2026-08-02 10:00:00"),
		consolidationRow("R-3", "3", "Joan", "kim", "2026-08-02 10:00:00"),
	), opts)

	svc := NewConsolidationService(opts, "tester", quietLogger())
	outputPath, err := svc.Consolidate(context.Background(), inputDir, outputDir, nil)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(filepath.Base(outputPath), "Consolidated_output_tester_"))

	f, err := excelize.OpenFile(outputPath)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	resolved, err := excel.ReadHierarchical(f, "Resolved")
	require.NoError(t, err)
	require.Equal(t, 1, resolved.NumRows())
	require.Equal(t, "Joan", resolved.Cell(0, submission.NameKey(roles.Preparer)))

	outstanding, err := excel.ReadHierarchical(f, "Outstanding")
	require.NoError(t, err)
	require.Equal(t, 1, outstanding.NumRows())

	conflicts, err := excel.ReadHierarchical(f, "Conflicts")
	require.NoError(t, err)
	require.Equal(t, 2, conflicts.NumRows())
	require.Contains(t, conflicts.Cell(0, submission.ConflictLogKey()), "has value 'Ada'")
}

func TestConsolidate_SchemaMismatchFailsFast(t *testing.T) {
	inputDir, outputDir := t.TempDir(), t.TempDir()
	opts := testOptions()

	writeSubmissionFile(t, filepath.Join(inputDir, "a.xlsx"), buildMerged(t,
		consolidationRow("R-1", "1", "Ada", "sam", "2026-08-01 09:00:00"),
	), opts)

	// Same fields, but an extra identity column changes the schema.
	other := excel.NewTable(append([]excel.ColumnKey{excel.Key("Record details", "", "Region")}, consolidationColumns()...))
	require.NoError(t, other.AppendRow(append([]string{"EMEA"}, consolidationRow("R-9", "1", "Ada", "kim", "2026-08-02 10:00:00")...)))
	writeSubmissionFile(t, filepath.Join(inputDir, "b.xlsx"), other, opts)

	svc := NewConsolidationService(opts, "tester", quietLogger())
	_, err := svc.Consolidate(context.Background(), inputDir, outputDir, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "b.xlsx")

	// Fail-fast leaves no output behind.
	leftovers, globErr := filepath.Glob(filepath.Join(outputDir, "*.xlsx"))
	require.NoError(t, globErr)
	require.Empty(t, leftovers)
}

func TestConsolidate_EmptyFolder(t *testing.T) {
	svc := NewConsolidationService(testOptions(), "tester", quietLogger())
	_, err := svc.Consolidate(context.Background(), t.TempDir(), t.TempDir(), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "no submission workbooks")
}

func TestConsolidate_Cancellation(t *testing.T) {
	inputDir := t.TempDir()
	opts := testOptions()
	writeSubmissionFile(t, filepath.Join(inputDir, "a.xlsx"), buildMerged(t,
		consolidationRow("R-1", "1", "Ada", "sam", "2026-08-01 09:00:00"),
	), opts)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := NewConsolidationService(opts, "tester", quietLogger())
	_, err := svc.Consolidate(ctx, inputDir, t.TempDir(), nil)
	require.ErrorIs(t, err, context.Canceled)
}
