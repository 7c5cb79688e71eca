package models

import (
	"encoding/json"
	"fmt"
)

// Cell is one grid position with its value. Its address is derived from
// the coordinates on every call and never stored.
type Cell struct {
	row     int
	column  int
	value   Value
	formula string
}

// NewCell creates a cell at a 1-based row and column.
func NewCell(row, column int, value Value) (Cell, error) {
	if row < 1 || column < 1 {
		return Cell{}, fmt.Errorf("%w: row %d, column %d", ErrInvalidCoordinate, row, column)
	}
	return Cell{row: row, column: column, value: value}, nil
}

// Row is the 1-based row index.
func (c Cell) Row() int { return c.row }

// Column is the 1-based column index.
func (c Cell) Column() int { return c.column }

// Value is the cell content.
func (c Cell) Value() Value { return c.value }

// Formula is the formula text recorded by the source, without a leading '='.
// It is empty for plain cells. Formulas are never evaluated.
func (c Cell) Formula() string { return c.formula }

// Address returns the A1-style label of the cell.
// The zero Cell has no address.
func (c Cell) Address() string {
	addr, err := EncodeAddress(c.row, c.column)
	if err != nil {
		return ""
	}
	return addr
}

// IsEmpty reports whether the value is absent or blank text.
func (c Cell) IsEmpty() bool { return c.value.IsEmpty() }

// String implements fmt.Stringer.
func (c Cell) String() string {
	return c.Address() + "=" + c.value.String()
}

type cellJSON struct {
	Address string `json:"address"`
	Row     int    `json:"row"`
	Column  int    `json:"column"`
	Type    string `json:"type"`
	Value   Value  `json:"value"`
	Formula string `json:"formula,omitempty"`
}

// MarshalJSON includes the derived address and kind.
func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(cellJSON{
		Address: c.Address(),
		Row:     c.row,
		Column:  c.column,
		Type:    c.value.Kind().String(),
		Value:   c.value,
		Formula: c.formula,
	})
}
