package models

// DataRange returns the bounding box of the non-empty cells, bound to the
// worksheet. ok is false when every cell is empty.
func (w *Worksheet) DataRange() (r Range, ok bool) {
	minRow, maxRow, minCol, maxCol := findDataBounds(w.rows)
	if minRow < 0 {
		return Range{}, false
	}

	r, err := NewRange(minRow+1, maxRow+1, minCol+1, maxCol+1)
	if err != nil {
		return Range{}, false
	}
	return r.InSheet(w.name), true
}

// Density is the share of non-empty cells inside DataRange.
func (w *Worksheet) Density() float64 {
	r, ok := w.DataRange()
	if !ok {
		return 0
	}
	filled := 0
	for cell := range r.Cells(w) {
		if !cell.IsEmpty() {
			filled++
		}
	}
	return float64(filled) / float64(r.CellCount())
}

// findDataBounds finds the 0-based bounding box of non-empty values.
func findDataBounds(rows [][]Value) (minRow, maxRow, minCol, maxCol int) {
	minRow, maxRow = -1, -1
	minCol, maxCol = -1, -1

	for rowIdx, row := range rows {
		for colIdx, v := range row {
			if v.IsEmpty() {
				continue
			}
			if minRow < 0 || rowIdx < minRow {
				minRow = rowIdx
			}
			if maxRow < 0 || rowIdx > maxRow {
				maxRow = rowIdx
			}
			if minCol < 0 || colIdx < minCol {
				minCol = colIdx
			}
			if maxCol < 0 || colIdx > maxCol {
				maxCol = colIdx
			}
		}
	}

	return
}
