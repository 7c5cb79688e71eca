package models

import "strconv"

// CellRow represents a single row of non-empty cells.
type CellRow struct {
	// R is the row index (1-based).
	R int `json:"r"`
	// C maps column index (string, 1-based) to cell value.
	C map[string]Value `json:"c"`
	// Formulas maps column index to formula text (optional).
	Formulas map[string]string `json:"formulas,omitempty"`
}

// SheetData is the serializable form of a worksheet.
type SheetData struct {
	// Name is the worksheet name.
	Name string `json:"name"`
	// RowCount is the number of grid rows.
	RowCount int `json:"row_count"`
	// ColumnCount is the number of grid columns.
	ColumnCount int `json:"column_count"`
	// DataRange is the bounding box of non-empty cells, e.g. "A1:D10".
	DataRange string `json:"data_range,omitempty"`
	// Rows contains the rows that hold at least one non-empty cell.
	Rows []CellRow `json:"rows,omitempty"`
}

// WorkbookData is the serializable form of a spreadsheet.
type WorkbookData struct {
	// Title is the spreadsheet title.
	Title string `json:"title"`
	// URL is the source URL, if the spreadsheet was fetched.
	URL string `json:"url,omitempty"`
	// Sheets lists the worksheets in order.
	Sheets []SheetData `json:"sheets"`
	// NamedRanges maps defined names to their range addresses.
	NamedRanges map[string]string `json:"named_ranges,omitempty"`
}

// Data converts the worksheet into its serializable form.
func (w *Worksheet) Data() SheetData {
	data := SheetData{
		Name:        w.name,
		RowCount:    w.rowCount,
		ColumnCount: w.colCount,
	}
	if r, ok := w.DataRange(); ok {
		data.DataRange = r.InSheet("").Address()
	}

	formulasByRow := make(map[int]map[string]string)
	for pos, f := range w.formulas {
		m := formulasByRow[pos.row]
		if m == nil {
			m = make(map[string]string)
			formulasByRow[pos.row] = m
		}
		m[strconv.Itoa(pos.col)] = f
	}

	for rowIdx, row := range w.rows {
		rowNum := rowIdx + 1
		cellMap := make(map[string]Value)
		for colIdx, v := range row {
			if v.IsEmpty() {
				continue
			}
			cellMap[strconv.Itoa(colIdx+1)] = v
		}

		// Rows holding only formulas without cached values are kept.
		formulas := formulasByRow[rowNum]
		if len(cellMap) == 0 && len(formulas) == 0 {
			continue
		}
		data.Rows = append(data.Rows, CellRow{R: rowNum, C: cellMap, Formulas: formulas})
	}
	return data
}

// Data converts the spreadsheet into its serializable form.
func (s *Spreadsheet) Data() WorkbookData {
	data := WorkbookData{
		Title:  s.title,
		URL:    s.url,
		Sheets: make([]SheetData, 0, len(s.worksheets)),
	}
	for _, ws := range s.worksheets {
		data.Sheets = append(data.Sheets, ws.Data())
	}
	if len(s.namedRanges) > 0 {
		data.NamedRanges = make(map[string]string, len(s.namedRanges))
		for name, r := range s.namedRanges {
			data.NamedRanges[name] = r.Address()
		}
	}
	return data
}
