// Package workbook is the xlsx IO layer of the intake pipeline: opening and
// structural vetting of submission workbooks, output assembly, file
// discovery and the review copy side effect.
package workbook

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"github.com/hrtools/rolecall/modules/intake/domain/finding"
	"github.com/hrtools/rolecall/modules/intake/domain/roster"
	"github.com/hrtools/rolecall/modules/intake/domain/submission"
	"github.com/hrtools/rolecall/pkg/excel"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Options carries the workbook layout and limits from configuration.
type Options struct {
	MainSheet      string
	RosterSheet    string
	MaxFileSize    int64
	HighlightColor string
}

// Submission is one structurally valid input workbook, parsed.
type Submission struct {
	Path   string
	Table  *excel.Table
	Roster *roster.Index
}

// OpenSubmission opens and parses one submission workbook. A non-empty
// finding list means the file was rejected: read or structure failures are
// terminal and no Submission is returned.
func OpenSubmission(path string, opts Options) (*Submission, []finding.Finding) {
	base := filepath.Base(path)
	readFail := func(format string, args ...any) []finding.Finding {
		return []finding.Finding{{
			File:        base,
			Description: fmt.Sprintf(format, args...),
			Kind:        finding.KindFileRead,
		}}
	}
	structureFail := func(format string, args ...any) []finding.Finding {
		return []finding.Finding{{
			File:        base,
			Description: fmt.Sprintf(format, args...),
			Kind:        finding.KindFileStructure,
		}}
	}

	if err := probe(path, opts.MaxFileSize); err != nil {
		return nil, readFail("%v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, readFail("cannot open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	for _, sheet := range []string{opts.MainSheet, opts.RosterSheet} {
		idx, err := f.GetSheetIndex(sheet)
		if err != nil {
			return nil, structureFail("cannot inspect sheets: %v", err)
		}
		if idx < 0 {
			return nil, structureFail("workbook has no %q sheet", sheet)
		}
	}

	table, err := excel.ReadHierarchical(f, opts.MainSheet)
	if err != nil {
		return nil, structureFail("%q sheet is malformed: %v", opts.MainSheet, err)
	}
	headers, rows, err := excel.ReadFlat(f, opts.RosterSheet)
	if err != nil {
		return nil, structureFail("%q sheet is malformed: %v", opts.RosterSheet, err)
	}
	ix, err := roster.NewIndex(headers, rows)
	if err != nil {
		return nil, structureFail("%v", err)
	}
	return &Submission{Path: path, Table: table, Roster: ix}, nil
}

// OpenTable parses the main sheet only. Used by consolidation, where input
// files are the outputs of per-file processing and carry no roster.
func OpenTable(path string, opts Options) (*excel.Table, error) {
	if err := probe(path, opts.MaxFileSize); err != nil {
		return nil, err
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "cannot open workbook")
	}
	defer func() { _ = f.Close() }()

	idx, err := f.GetSheetIndex(opts.MainSheet)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, fmt.Errorf("workbook has no %q sheet", opts.MainSheet)
	}
	return excel.ReadHierarchical(f, opts.MainSheet)
}

func probe(path string, maxSize int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "cannot read file")
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", filepath.Base(path))
	}
	if maxSize > 0 && info.Size() > maxSize {
		return fmt.Errorf("file is %d bytes, exceeding the %d byte limit", info.Size(), maxSize)
	}
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return errors.Wrap(err, "cannot sniff file type")
	}
	if !mt.Is(xlsxMIME) {
		return fmt.Errorf("file type %s is not an xlsx workbook", mt.String())
	}
	return nil
}

// findingsSheetHeaders is the column order of the findings sheet.
var findingsSheetHeaders = []string{"Row", "Role", "PS ID", "Name", "Grade", "Description", "Kind"}

// WriteProcessed assembles the annotated single-file output in memory and
// writes it atomically: the main sheet in the three-row header convention
// with flagged cells highlighted, plus a Findings sheet when findings is
// non-empty.
func WriteProcessed(path string, t *excel.Table, findings []finding.Finding, opts Options) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	f.SetSheetName("Sheet1", opts.MainSheet)

	styleID, err := excel.HighlightStyle(f, opts.HighlightColor)
	if err != nil {
		return errors.Wrap(err, "register highlight style")
	}
	if err := excel.WriteHierarchical(f, opts.MainSheet, t, flaggedCells(findings), styleID); err != nil {
		return errors.Wrap(err, "lay out main sheet")
	}

	if len(findings) > 0 {
		rows := make([][]string, 0, len(findings))
		for _, fn := range findings {
			row := ""
			if fn.Row > 0 {
				row = fmt.Sprintf("%d", fn.Row)
			}
			rows = append(rows, []string{row, fn.Role, fn.PSID, fn.Name, fn.Grade, fn.Description, string(fn.Kind)})
		}
		if err := excel.WriteFlat(f, "Findings", findingsSheetHeaders, rows); err != nil {
			return errors.Wrap(err, "lay out findings sheet")
		}
	}
	return atomicSave(f, path)
}

// flaggedCells maps findings carrying both row and role to the PS ID and
// Name cells of that role.
func flaggedCells(findings []finding.Finding) []excel.CellRef {
	var refs []excel.CellRef
	for _, fn := range findings {
		if fn.Row <= 0 || fn.Role == "" {
			continue
		}
		refs = append(refs,
			excel.CellRef{Row: fn.Row, Key: submission.PSIDKey(fn.Role)},
			excel.CellRef{Row: fn.Row, Key: submission.NameKey(fn.Role)},
		)
	}
	return refs
}

// NamedTable pairs a consolidated partition with its sheet name.
type NamedTable struct {
	Name  string
	Table *excel.Table
}

// WriteConsolidated writes the consolidated report, one sheet per partition,
// atomically.
func WriteConsolidated(path string, sheets []NamedTable, opts Options) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	f.SetSheetName("Sheet1", sheets[0].Name)
	for _, s := range sheets {
		if err := excel.WriteHierarchical(f, s.Name, s.Table, nil, 0); err != nil {
			return errors.Wrapf(err, "lay out %s sheet", s.Name)
		}
	}
	return atomicSave(f, path)
}

// atomicSave serializes f fully in memory, writes it next to path and
// renames into place, so no partial output survives a mid-write failure.
func atomicSave(f *excelize.File, path string) error {
	buf, err := f.WriteToBuffer()
	if err != nil {
		return errors.Wrap(err, "serialize workbook")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.Wrap(err, "create temporary output")
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "write output")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "flush output")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return errors.Wrap(err, "move output into place")
	}
	return nil
}

// Discover finds submission workbooks under dir, recursively, skipping
// Office lock files. The result is sorted for a deterministic schema
// reference file.
func Discover(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		base := d.Name()
		if strings.HasPrefix(base, "~$") {
			return nil
		}
		if strings.EqualFold(filepath.Ext(base), ".xlsx") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// CopyForReview copies the original input, suffixed _REVIEW, into destDir.
// A pure file copy; the workbook is not transformed.
func CopyForReview(path, destDir string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "open input")
	}
	defer func() { _ = src.Close() }()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", errors.Wrap(err, "create review directory")
	}
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	dest := filepath.Join(destDir, stem+"_REVIEW"+ext)

	dst, err := os.Create(dest)
	if err != nil {
		return "", errors.Wrap(err, "create review copy")
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dest)
		return "", errors.Wrap(err, "copy input")
	}
	if err := dst.Close(); err != nil {
		return "", errors.Wrap(err, "flush review copy")
	}
	return dest, nil
}
