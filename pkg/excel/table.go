package excel

import (
	"fmt"
	"strings"
)

// Label is an optional header label for the category and role levels of the
// three-row header convention. The zero Label means the column carries no
// label at that level.
type Label struct {
	Text  string
	Valid bool
}

// NewLabel builds a Label from a raw header cell. Blank cells yield an
// invalid (absent) label.
func NewLabel(text string) Label {
	text = strings.TrimSpace(text)
	if text == "" {
		return Label{}
	}
	return Label{Text: text, Valid: true}
}

func (l Label) String() string {
	if !l.Valid {
		return ""
	}
	return l.Text
}

// ColumnKey addresses one column by the ordered (category, role, field)
// triple of the three-row header convention.
type ColumnKey struct {
	Category Label
	Role     Label
	Field    string
}

// Key builds a ColumnKey from plain strings. An empty category or role means
// the column is unlabeled at that level.
func Key(category, role, field string) ColumnKey {
	return ColumnKey{
		Category: NewLabel(category),
		Role:     NewLabel(role),
		Field:    strings.TrimSpace(field),
	}
}

// Title is the human-readable column name used in findings and conflict logs.
func (k ColumnKey) Title() string {
	if k.Role.Valid {
		return k.Role.Text + " " + k.Field
	}
	return k.Field
}

// Table is an in-memory tabular dataset whose columns are addressed by
// hierarchical keys. Accessors copy; a Table never aliases caller state.
type Table struct {
	cols []ColumnKey
	rows [][]string
}

func NewTable(cols []ColumnKey) *Table {
	c := make([]ColumnKey, len(cols))
	copy(c, cols)
	return &Table{cols: c}
}

func (t *Table) NumRows() int { return len(t.rows) }
func (t *Table) NumCols() int { return len(t.cols) }

// Columns returns a copy of the ordered column keys.
func (t *Table) Columns() []ColumnKey {
	c := make([]ColumnKey, len(t.cols))
	copy(c, t.cols)
	return c
}

// ColumnIndex returns the position of key, if present.
func (t *Table) ColumnIndex(key ColumnKey) (int, bool) {
	for j, c := range t.cols {
		if c == key {
			return j, true
		}
	}
	return 0, false
}

func (t *Table) HasColumn(key ColumnKey) bool {
	_, ok := t.ColumnIndex(key)
	return ok
}

// AppendRow adds one row. The cell slice is copied and must match the
// current column count.
func (t *Table) AppendRow(cells []string) error {
	if len(cells) != len(t.cols) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(cells), len(t.cols))
	}
	row := make([]string, len(cells))
	copy(row, cells)
	t.rows = append(t.rows, row)
	return nil
}

// Row returns a copy of row i.
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.rows[i]))
	copy(row, t.rows[i])
	return row
}

func (t *Table) CellAt(i, j int) string { return t.rows[i][j] }

// Cell returns the value at row i of the column addressed by key, or the
// blank value when the column is absent.
func (t *Table) Cell(i int, key ColumnKey) string {
	j, ok := t.ColumnIndex(key)
	if !ok {
		return ""
	}
	return t.rows[i][j]
}

func (t *Table) SetCellAt(i, j int, v string) { t.rows[i][j] = v }

func (t *Table) SetCell(i int, key ColumnKey, v string) error {
	j, ok := t.ColumnIndex(key)
	if !ok {
		return fmt.Errorf("no column %q", key.Title())
	}
	t.rows[i][j] = v
	return nil
}

// Clone deep-copies the table.
func (t *Table) Clone() *Table {
	c := NewTable(t.cols)
	c.rows = make([][]string, len(t.rows))
	for i, row := range t.rows {
		r := make([]string, len(row))
		copy(r, row)
		c.rows[i] = r
	}
	return c
}

// AppendColumn adds a column at the rightmost position. A nil values slice
// fills the column with blanks; otherwise its length must match the row
// count.
func (t *Table) AppendColumn(key ColumnKey, values []string) error {
	if values != nil && len(values) != len(t.rows) {
		return fmt.Errorf("column %q has %d values, table has %d rows", key.Title(), len(values), len(t.rows))
	}
	t.cols = append(t.cols, key)
	for i := range t.rows {
		v := ""
		if values != nil {
			v = values[i]
		}
		t.rows[i] = append(t.rows[i], v)
	}
	return nil
}

// ReorderColumns rearranges columns into the given order, which must be a
// permutation of the current column positions.
func (t *Table) ReorderColumns(order []int) error {
	if len(order) != len(t.cols) {
		return fmt.Errorf("order has %d entries, table has %d columns", len(order), len(t.cols))
	}
	seen := make([]bool, len(t.cols))
	for _, j := range order {
		if j < 0 || j >= len(t.cols) || seen[j] {
			return fmt.Errorf("order is not a permutation of column positions")
		}
		seen[j] = true
	}
	cols := make([]ColumnKey, len(order))
	for n, j := range order {
		cols[n] = t.cols[j]
	}
	for i, row := range t.rows {
		next := make([]string, len(order))
		for n, j := range order {
			next[n] = row[j]
		}
		t.rows[i] = next
	}
	t.cols = cols
	return nil
}

// SameSchema reports whether both tables carry the identical ordered column
// key set, header hierarchy included.
func (t *Table) SameSchema(o *Table) bool {
	if len(t.cols) != len(o.cols) {
		return false
	}
	for j := range t.cols {
		if t.cols[j] != o.cols[j] {
			return false
		}
	}
	return true
}

// AppendTable concatenates the rows of o, which must share the schema.
func (t *Table) AppendTable(o *Table) error {
	if !t.SameSchema(o) {
		return fmt.Errorf("tables have different column layouts")
	}
	for i := range o.rows {
		if err := t.AppendRow(o.rows[i]); err != nil {
			return err
		}
	}
	return nil
}

// DropDuplicateRows removes rows identical to an earlier row across every
// column, keeping first occurrences in order.
func (t *Table) DropDuplicateRows() {
	seen := make(map[string]struct{}, len(t.rows))
	kept := t.rows[:0]
	for _, row := range t.rows {
		k := strings.Join(row, "\x1f")
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		kept = append(kept, row)
	}
	t.rows = kept
}
