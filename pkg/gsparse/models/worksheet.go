package models

import (
	"fmt"
	"iter"
	"regexp"
	"strings"
)

// Record maps header keys to the values of one data row.
type Record map[string]Value

type coord struct{ row, col int }

// Worksheet is a named rectangular grid of values. Each row is stored up
// to its last populated column; positions below RowCount and ColumnCount
// that the source never populated read as empty values. A Worksheet is
// immutable once built.
type Worksheet struct {
	name     string
	rows     [][]Value
	formulas map[coord]string
	rowCount int
	colCount int
}

// Name is the worksheet name.
func (w *Worksheet) Name() string { return w.name }

// RowCount is the number of rows in the grid.
func (w *Worksheet) RowCount() int { return w.rowCount }

// ColumnCount is the number of columns in the grid.
func (w *Worksheet) ColumnCount() int { return w.colCount }

// cellAt never fails; positions outside the grid are empty.
func (w *Worksheet) cellAt(row, col int) Cell {
	c := Cell{row: row, column: col}
	if w == nil || row > w.rowCount || col > w.colCount {
		return c
	}
	c.value = w.value(row, col)
	if w.formulas != nil {
		c.formula = w.formulas[coord{row, col}]
	}
	return c
}

// value returns the stored value at a 1-based position, or the empty value
// past the end of a short row.
func (w *Worksheet) value(row, col int) Value {
	if row < 1 || row > len(w.rows) {
		return Value{}
	}
	r := w.rows[row-1]
	if col < 1 || col > len(r) {
		return Value{}
	}
	return r[col-1]
}

// GetCell returns the cell at a 1-based position. Unpopulated positions,
// including those beyond the grid, return an empty cell.
func (w *Worksheet) GetCell(row, column int) (Cell, error) {
	if row < 1 || column < 1 {
		return Cell{}, fmt.Errorf("%w: cell (%d, %d) in worksheet %q", ErrOutOfRange, row, column, w.name)
	}
	return w.cellAt(row, column), nil
}

// GetCellByAddress returns the cell at an A1-style label.
func (w *Worksheet) GetCellByAddress(address string) (Cell, error) {
	row, col, err := DecodeAddress(address)
	if err != nil {
		return Cell{}, err
	}
	return w.cellAt(row, col), nil
}

// GetRange builds a range bound to this worksheet.
func (w *Worksheet) GetRange(startRow, endRow, startColumn, endColumn int) (Range, error) {
	r, err := NewRange(startRow, endRow, startColumn, endColumn)
	if err != nil {
		return Range{}, err
	}
	return r.InSheet(w.name), nil
}

// GetRangeByAddress parses an address such as "A1:C3" and binds it to this worksheet.
func (w *Worksheet) GetRangeByAddress(address string) (Range, error) {
	r, err := ParseRange(address)
	if err != nil {
		return Range{}, err
	}
	return r.InSheet(w.name), nil
}

// GetCellsInRange yields the cells of r, see Range.Cells.
func (w *Worksheet) GetCellsInRange(r Range) iter.Seq[Cell] {
	return r.Cells(w)
}

// AllCells yields every grid cell in row-major order.
func (w *Worksheet) AllCells() iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for row := 1; row <= w.rowCount; row++ {
			for col := 1; col <= w.colCount; col++ {
				if !yield(w.cellAt(row, col)) {
					return
				}
			}
		}
	}
}

// Row returns the cells of a row, or nil when the row is outside the grid.
func (w *Worksheet) Row(row int) []Cell {
	if row < 1 || row > w.rowCount {
		return nil
	}
	cells := make([]Cell, w.colCount)
	for col := 1; col <= w.colCount; col++ {
		cells[col-1] = w.cellAt(row, col)
	}
	return cells
}

// Column returns the cells of a column, or nil when the column is outside the grid.
func (w *Worksheet) Column(column int) []Cell {
	if column < 1 || column > w.colCount {
		return nil
	}
	cells := make([]Cell, w.rowCount)
	for row := 1; row <= w.rowCount; row++ {
		cells[row-1] = w.cellAt(row, column)
	}
	return cells
}

// Rows returns a copy of the grid values, one ColumnCount-long slice per row.
func (w *Worksheet) Rows() [][]Value {
	out := make([][]Value, w.rowCount)
	for i := range out {
		row := make([]Value, w.colCount)
		if i < len(w.rows) {
			copy(row, w.rows[i])
		}
		out[i] = row
	}
	return out
}

// Columns returns a copy of the grid values, one slice per column.
func (w *Worksheet) Columns() [][]Value {
	out := make([][]Value, w.colCount)
	for col := range out {
		out[col] = make([]Value, w.rowCount)
		for row := range out[col] {
			out[col][row] = w.value(row+1, col+1)
		}
	}
	return out
}

// Headers returns the keys produced by the header row. A blank header
// cell falls back to its column letters.
func (w *Worksheet) Headers(headersRow int) ([]string, error) {
	if headersRow < 1 || headersRow > w.rowCount {
		return nil, fmt.Errorf("%w: %d not in [1, %d] for worksheet %q",
			ErrInvalidHeaderRow, headersRow, w.rowCount, w.name)
	}

	headers := make([]string, w.colCount)
	for col := 1; col <= w.colCount; col++ {
		v := w.value(headersRow, col)
		if v.IsEmpty() {
			headers[col-1], _ = ColumnName(col)
			continue
		}
		headers[col-1] = strings.TrimSpace(v.String())
	}
	return headers, nil
}

// GetDataAsDict converts the rows below headersRow into records keyed by
// the header row. Rows above the header row and entirely empty rows are
// left out. When two columns share a header, the rightmost one wins.
func (w *Worksheet) GetDataAsDict(headersRow int) ([]Record, error) {
	headers, err := w.Headers(headersRow)
	if err != nil {
		return nil, err
	}

	result := make([]Record, 0, w.rowCount-headersRow)
	for row := headersRow + 1; row <= w.rowCount; row++ {
		if rowIsEmpty(w.rows[row-1]) {
			continue
		}
		rec := make(Record, len(headers))
		for col, key := range headers {
			rec[key] = w.value(row, col+1)
		}
		result = append(result, rec)
	}
	return result, nil
}

// FindCellsByValue returns the cells whose value equals v in kind and content.
func (w *Worksheet) FindCellsByValue(v Value) []Cell {
	var found []Cell
	for cell := range w.AllCells() {
		if cell.value.Equal(v) {
			found = append(found, cell)
		}
	}
	return found
}

// FindCellsByPattern returns the non-empty cells whose canonical text matches re.
func (w *Worksheet) FindCellsByPattern(re *regexp.Regexp) []Cell {
	var found []Cell
	for cell := range w.AllCells() {
		if cell.value.Kind() == KindEmpty {
			continue
		}
		if re.MatchString(cell.value.String()) {
			found = append(found, cell)
		}
	}
	return found
}

// NonEmptyCount is the number of cells that are not empty.
func (w *Worksheet) NonEmptyCount() int {
	n := 0
	for _, row := range w.rows {
		for _, v := range row {
			if !v.IsEmpty() {
				n++
			}
		}
	}
	return n
}

// RemoveEmptyRows returns a copy of the worksheet without entirely empty rows.
func (w *Worksheet) RemoveEmptyRows() *Worksheet {
	keep := make([]int, 0, w.rowCount)
	for row := 1; row <= w.rowCount; row++ {
		if !rowIsEmpty(w.rows[row-1]) {
			keep = append(keep, row)
		}
	}
	cols := make([]int, 0, w.colCount)
	if len(keep) > 0 {
		for col := 1; col <= w.colCount; col++ {
			cols = append(cols, col)
		}
	}
	return w.project(keep, cols)
}

// RemoveEmptyColumns returns a copy of the worksheet without entirely empty columns.
func (w *Worksheet) RemoveEmptyColumns() *Worksheet {
	rows := make([]int, 0, w.rowCount)
	for row := 1; row <= w.rowCount; row++ {
		rows = append(rows, row)
	}
	used := make([]bool, w.colCount)
	for _, row := range w.rows {
		for i, v := range row {
			if !v.IsEmpty() {
				used[i] = true
			}
		}
	}
	keep := make([]int, 0, w.colCount)
	for col := 1; col <= w.colCount; col++ {
		if used[col-1] {
			keep = append(keep, col)
		}
	}
	return w.project(rows, keep)
}

// Clean removes empty rows, then empty columns.
func (w *Worksheet) Clean() *Worksheet {
	return w.RemoveEmptyRows().RemoveEmptyColumns()
}

// project copies the selected rows and columns into a new worksheet.
func (w *Worksheet) project(rows, cols []int) *Worksheet {
	b := NewWorksheetBuilder(w.name)
	for i, row := range rows {
		b.touch(i+1, len(cols))
		for j, col := range cols {
			cell := w.cellAt(row, col)
			if cell.value.Kind() != KindEmpty {
				b.set(i+1, j+1, cell.value)
			}
			if cell.formula != "" {
				b.formula(i+1, j+1, cell.formula)
			}
		}
	}
	return b.build()
}

func rowIsEmpty(values []Value) bool {
	for _, v := range values {
		if !v.IsEmpty() {
			return false
		}
	}
	return true
}
