package models

import (
	"fmt"
	"strings"
)

// WorksheetBuilder accumulates cells for a worksheet. The grid extent
// tracks the largest row and column that were explicitly set, including
// positions set to an empty value. A builder is not safe for concurrent use.
type WorksheetBuilder struct {
	name     string
	rows     [][]Value
	formulas map[coord]string
	maxRow   int
	maxCol   int
}

// NewWorksheetBuilder starts a worksheet with the given name.
func NewWorksheetBuilder(name string) *WorksheetBuilder {
	return &WorksheetBuilder{name: name}
}

// Set stores a value at a 1-based position.
func (b *WorksheetBuilder) Set(row, column int, v Value) error {
	if row < 1 || column < 1 {
		return fmt.Errorf("%w: row %d, column %d", ErrInvalidCoordinate, row, column)
	}
	b.set(row, column, v)
	return nil
}

// SetFormula records the formula text of a position without changing its value.
func (b *WorksheetBuilder) SetFormula(row, column int, formula string) error {
	if row < 1 || column < 1 {
		return fmt.Errorf("%w: row %d, column %d", ErrInvalidCoordinate, row, column)
	}
	b.touch(row, column)
	b.formula(row, column, formula)
	return nil
}

// AppendRow stores values as the row after the current last row.
// An empty call still adds a row.
func (b *WorksheetBuilder) AppendRow(values ...Value) {
	row := b.maxRow + 1
	b.touch(row, 0)
	for i, v := range values {
		b.set(row, i+1, v)
	}
}

// RowCount is the current number of rows.
func (b *WorksheetBuilder) RowCount() int { return b.maxRow }

// ColumnCount is the current number of columns.
func (b *WorksheetBuilder) ColumnCount() int { return b.maxCol }

// Build returns the immutable worksheet. Rows keep their populated length;
// the grid is never materialized as a full rectangle.
func (b *WorksheetBuilder) Build() (*Worksheet, error) {
	if strings.TrimSpace(b.name) == "" {
		return nil, ErrEmptyWorksheetName
	}
	return b.build(), nil
}

func (b *WorksheetBuilder) touch(row, column int) {
	for len(b.rows) < row {
		b.rows = append(b.rows, nil)
	}
	if row > b.maxRow {
		b.maxRow = row
	}
	if column > b.maxCol {
		b.maxCol = column
	}
}

func (b *WorksheetBuilder) set(row, column int, v Value) {
	b.touch(row, column)
	r := b.rows[row-1]
	for len(r) < column {
		r = append(r, Value{})
	}
	r[column-1] = v
	b.rows[row-1] = r
}

func (b *WorksheetBuilder) formula(row, column int, f string) {
	if f == "" {
		return
	}
	if b.formulas == nil {
		b.formulas = make(map[coord]string)
	}
	b.formulas[coord{row, column}] = f
}

func (b *WorksheetBuilder) build() *Worksheet {
	grid := make([][]Value, b.maxRow)
	for i := range grid {
		if i < len(b.rows) && len(b.rows[i]) > 0 {
			grid[i] = append([]Value(nil), b.rows[i]...)
		}
	}

	var formulas map[coord]string
	if len(b.formulas) > 0 {
		formulas = make(map[coord]string, len(b.formulas))
		for k, v := range b.formulas {
			formulas[k] = v
		}
	}

	return &Worksheet{
		name:     b.name,
		rows:     grid,
		formulas: formulas,
		rowCount: b.maxRow,
		colCount: b.maxCol,
	}
}
