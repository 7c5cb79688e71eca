package models

import (
	"fmt"
	"iter"
	"strings"
)

// Range is a rectangular region described by inclusive 1-based bounds.
// It owns no cells.
type Range struct {
	startRow    int
	endRow      int
	startColumn int
	endColumn   int
	sheet       string
}

// NewRange validates the bounds on each axis independently.
func NewRange(startRow, endRow, startColumn, endColumn int) (Range, error) {
	if startRow < 1 || endRow < 1 || startColumn < 1 || endColumn < 1 {
		return Range{}, fmt.Errorf("%w: bounds must be positive (rows %d-%d, columns %d-%d)",
			ErrInvalidRange, startRow, endRow, startColumn, endColumn)
	}
	if startRow > endRow {
		return Range{}, fmt.Errorf("%w: start row %d is after end row %d", ErrInvalidRange, startRow, endRow)
	}
	if startColumn > endColumn {
		return Range{}, fmt.Errorf("%w: start column %d is after end column %d", ErrInvalidRange, startColumn, endColumn)
	}
	return Range{
		startRow:    startRow,
		endRow:      endRow,
		startColumn: startColumn,
		endColumn:   endColumn,
	}, nil
}

// ParseRange parses "A1:D10", "B3" or "'My Sheet'!$A$1:$D$10".
func ParseRange(address string) (Range, error) {
	var sheet string
	ref := strings.TrimSpace(address)
	if idx := strings.LastIndex(ref, "!"); idx >= 0 {
		sheet = strings.ReplaceAll(strings.Trim(ref[:idx], "'"), "''", "'")
		ref = ref[idx+1:]
	}
	ref = strings.ReplaceAll(ref, "$", "")

	start, end, found := strings.Cut(ref, ":")
	if !found {
		end = start
	}

	r1, c1, err := DecodeAddress(start)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, address)
	}
	r2, c2, err := DecodeAddress(end)
	if err != nil {
		return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, address)
	}

	rng, err := NewRange(r1, r2, c1, c2)
	if err != nil {
		return Range{}, err
	}
	rng.sheet = sheet
	return rng, nil
}

// StartRow is the first row (inclusive).
func (r Range) StartRow() int { return r.startRow }

// EndRow is the last row (inclusive).
func (r Range) EndRow() int { return r.endRow }

// StartColumn is the first column (inclusive).
func (r Range) StartColumn() int { return r.startColumn }

// EndColumn is the last column (inclusive).
func (r Range) EndColumn() int { return r.endColumn }

// Worksheet is the worksheet name the range was bound to, if any.
func (r Range) Worksheet() string { return r.sheet }

// InSheet returns a copy of r bound to the named worksheet.
func (r Range) InSheet(name string) Range {
	r.sheet = name
	return r
}

// RowCount is the number of rows spanned.
func (r Range) RowCount() int { return r.endRow - r.startRow + 1 }

// ColumnCount is the number of columns spanned.
func (r Range) ColumnCount() int { return r.endColumn - r.startColumn + 1 }

// CellCount is the number of positions in the range.
func (r Range) CellCount() int { return r.RowCount() * r.ColumnCount() }

// Contains reports whether the position lies inside the bounds.
func (r Range) Contains(row, column int) bool {
	return row >= r.startRow && row <= r.endRow &&
		column >= r.startColumn && column <= r.endColumn
}

// Address renders the range as "A1:B2", prefixed with "Sheet!" when bound.
func (r Range) Address() string {
	start, err := EncodeAddress(r.startRow, r.startColumn)
	if err != nil {
		return ""
	}
	end, _ := EncodeAddress(r.endRow, r.endColumn)

	addr := start + ":" + end
	if r.sheet != "" {
		addr = quoteSheetName(r.sheet) + "!" + addr
	}
	return addr
}

// String implements fmt.Stringer.
func (r Range) String() string { return r.Address() }

// Cells yields the worksheet's cells inside the range in row-major order.
// Positions outside the worksheet's extent yield empty cells, so the
// sequence always has CellCount elements. The sequence may be consumed
// any number of times.
func (r Range) Cells(ws *Worksheet) iter.Seq[Cell] {
	return func(yield func(Cell) bool) {
		for row := r.startRow; row <= r.endRow; row++ {
			for col := r.startColumn; col <= r.endColumn; col++ {
				if !yield(ws.cellAt(row, col)) {
					return
				}
			}
		}
	}
}

func quoteSheetName(name string) string {
	if strings.ContainsAny(name, " '!-") {
		return "'" + strings.ReplaceAll(name, "'", "''") + "'"
	}
	return name
}
