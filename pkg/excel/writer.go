package excel

import (
	"github.com/xuri/excelize/v2"
)

// CellRef identifies one data cell for styling, by 1-based workbook row and
// column key.
type CellRef struct {
	Row int
	Key ColumnKey
}

// HighlightStyle registers a solid-fill style on f and returns its id.
// color is a 6 or 8 digit hex color.
func HighlightStyle(f *excelize.File, color string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
	})
}

// WriteHierarchical lays t out on sheet in the three-row header convention.
// A category or role label is written once at the start of the contiguous
// run of columns sharing it and merged across the run. Cells named by
// flagged are styled with styleID.
func WriteHierarchical(f *excelize.File, sheet string, t *Table, flagged []CellRef, styleID int) error {
	if idx, err := f.GetSheetIndex(sheet); err != nil {
		return err
	} else if idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}

	cols := t.Columns()
	if err := writeLabelRow(f, sheet, 1, cols, func(k ColumnKey) Label { return k.Category }); err != nil {
		return err
	}
	if err := writeLabelRow(f, sheet, 2, cols, func(k ColumnKey) Label { return k.Role }); err != nil {
		return err
	}
	for j, c := range cols {
		cell, err := excelize.CoordinatesToCellName(j+1, HeaderRows)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, c.Field); err != nil {
			return err
		}
	}

	for i := 0; i < t.NumRows(); i++ {
		for j := 0; j < t.NumCols(); j++ {
			v := t.CellAt(i, j)
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, DataStartRow+i)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}

	for _, fl := range flagged {
		j, ok := t.ColumnIndex(fl.Key)
		if !ok || fl.Row < DataStartRow {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(j+1, fl.Row)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, styleID); err != nil {
			return err
		}
	}
	return nil
}

func writeLabelRow(f *excelize.File, sheet string, row int, cols []ColumnKey, label func(ColumnKey) Label) error {
	j := 0
	for j < len(cols) {
		l := label(cols[j])
		k := j + 1
		for k < len(cols) && label(cols[k]) == l {
			k++
		}
		if l.Valid {
			start, err := excelize.CoordinatesToCellName(j+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, start, l.Text); err != nil {
				return err
			}
			if k-j > 1 {
				end, err := excelize.CoordinatesToCellName(k, row)
				if err != nil {
					return err
				}
				if err := f.MergeCell(sheet, start, end); err != nil {
					return err
				}
			}
		}
		j = k
	}
	return nil
}

// WriteFlat lays out a single-header-row sheet.
func WriteFlat(f *excelize.File, sheet string, headers []string, rows [][]string) error {
	if idx, err := f.GetSheetIndex(sheet); err != nil {
		return err
	} else if idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
	}
	for j, h := range headers {
		cell, err := excelize.CoordinatesToCellName(j+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for i, row := range rows {
		for j, v := range row {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}
