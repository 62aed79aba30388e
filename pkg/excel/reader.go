package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	// HeaderRows is the fixed number of header rows on hierarchical sheets.
	HeaderRows = 3
	// DataStartRow is the first data row, 1-based.
	DataStartRow = HeaderRows + 1
)

// ReadHierarchical parses a sheet laid out in the three-row header
// convention: category row, role row, field row, data from row 4. Labels
// merged across a run of columns are expanded to every column in the run.
func ReadHierarchical(f *excelize.File, sheet string) (*Table, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(rows) < HeaderRows {
		return nil, fmt.Errorf("sheet %q has %d rows, expected at least %d header rows", sheet, len(rows), HeaderRows)
	}

	width := 0
	for i := 0; i < HeaderRows; i++ {
		if len(rows[i]) > width {
			width = len(rows[i])
		}
	}
	if width == 0 {
		return nil, fmt.Errorf("sheet %q has an empty header", sheet)
	}

	headers := make([][]string, HeaderRows)
	for i := range headers {
		headers[i] = make([]string, width)
		copy(headers[i], rows[i])
	}

	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, err
	}
	for _, m := range merges {
		scol, srow, err := excelize.CellNameToCoordinates(m.GetStartAxis())
		if err != nil {
			return nil, err
		}
		ecol, erow, err := excelize.CellNameToCoordinates(m.GetEndAxis())
		if err != nil {
			return nil, err
		}
		if srow > HeaderRows {
			continue
		}
		if erow > HeaderRows {
			erow = HeaderRows
		}
		v := m.GetCellValue()
		for r := srow; r <= erow; r++ {
			for c := scol; c <= ecol && c <= width; c++ {
				headers[r-1][c-1] = v
			}
		}
	}

	cols := make([]ColumnKey, width)
	for j := 0; j < width; j++ {
		cols[j] = Key(headers[0][j], headers[1][j], headers[2][j])
	}
	t := NewTable(cols)
	for _, r := range rows[HeaderRows:] {
		cells := make([]string, width)
		copy(cells, r)
		for j := range cells {
			cells[j] = strings.TrimSpace(cells[j])
		}
		if err := t.AppendRow(cells); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ReadFlat parses a sheet with a single header row, returning the trimmed
// header names and the data rows padded to the header width.
func ReadFlat(f *excelize.File, sheet string) ([]string, [][]string, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, nil, fmt.Errorf("sheet %q has no header row", sheet)
	}
	headers := make([]string, len(rows[0]))
	for j, h := range rows[0] {
		headers[j] = strings.TrimSpace(h)
	}
	data := make([][]string, 0, len(rows)-1)
	for _, r := range rows[1:] {
		cells := make([]string, len(headers))
		copy(cells, r)
		for j := range cells {
			cells[j] = strings.TrimSpace(cells[j])
		}
		data = append(data, cells)
	}
	return headers, data, nil
}
