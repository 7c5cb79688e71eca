package models

import (
	"fmt"
	"iter"
)

// Spreadsheet is an ordered collection of uniquely named worksheets
// sharing a title. Insertion order is the canonical order.
type Spreadsheet struct {
	title       string
	url         string
	worksheets  []*Worksheet
	byName      map[string]int
	namedRanges map[string]Range
}

// NewSpreadsheet creates a spreadsheet. A worksheet whose name is already
// present fails the construction with ErrDuplicateWorksheetName.
func NewSpreadsheet(title string, worksheets ...*Worksheet) (*Spreadsheet, error) {
	s := &Spreadsheet{
		title:      title,
		worksheets: make([]*Worksheet, 0, len(worksheets)),
		byName:     make(map[string]int, len(worksheets)),
	}
	for _, ws := range worksheets {
		if err := s.add(ws); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Spreadsheet) add(ws *Worksheet) error {
	if ws == nil {
		return fmt.Errorf("%w: nil worksheet", ErrEmptyWorksheetName)
	}
	if _, exists := s.byName[ws.name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateWorksheetName, ws.name)
	}
	s.byName[ws.name] = len(s.worksheets)
	s.worksheets = append(s.worksheets, ws)
	return nil
}

// clone copies the spreadsheet shell; worksheets are shared since they are immutable.
func (s *Spreadsheet) clone() *Spreadsheet {
	c := &Spreadsheet{
		title:      s.title,
		url:        s.url,
		worksheets: append([]*Worksheet(nil), s.worksheets...),
		byName:     make(map[string]int, len(s.byName)),
	}
	for k, v := range s.byName {
		c.byName[k] = v
	}
	if s.namedRanges != nil {
		c.namedRanges = make(map[string]Range, len(s.namedRanges))
		for k, v := range s.namedRanges {
			c.namedRanges[k] = v
		}
	}
	return c
}

// WithWorksheet returns a new spreadsheet with ws appended.
func (s *Spreadsheet) WithWorksheet(ws *Worksheet) (*Spreadsheet, error) {
	c := s.clone()
	if err := c.add(ws); err != nil {
		return nil, err
	}
	return c, nil
}

// WithURL returns a copy of the spreadsheet that records its source URL.
func (s *Spreadsheet) WithURL(url string) *Spreadsheet {
	c := s.clone()
	c.url = url
	return c
}

// WithNamedRanges returns a copy of the spreadsheet carrying the given named ranges.
func (s *Spreadsheet) WithNamedRanges(ranges map[string]Range) *Spreadsheet {
	c := s.clone()
	c.namedRanges = make(map[string]Range, len(ranges))
	for k, v := range ranges {
		c.namedRanges[k] = v
	}
	return c
}

// Title is the spreadsheet title.
func (s *Spreadsheet) Title() string { return s.title }

// URL is the source URL, if the spreadsheet was fetched.
func (s *Spreadsheet) URL() string { return s.url }

// WorksheetCount is the number of worksheets.
func (s *Spreadsheet) WorksheetCount() int { return len(s.worksheets) }

// Worksheets returns the worksheets in order.
func (s *Spreadsheet) Worksheets() []*Worksheet {
	return append([]*Worksheet(nil), s.worksheets...)
}

// WorksheetNames returns the worksheet names in order.
func (s *Spreadsheet) WorksheetNames() []string {
	names := make([]string, len(s.worksheets))
	for i, ws := range s.worksheets {
		names[i] = ws.name
	}
	return names
}

// Has reports whether a worksheet with the exact name exists.
func (s *Spreadsheet) Has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// GetWorksheet returns the worksheet with the exact name.
func (s *Spreadsheet) GetWorksheet(name string) (*Worksheet, error) {
	idx, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrWorksheetNotFound, name)
	}
	return s.worksheets[idx], nil
}

// GetWorksheetByIndex returns the worksheet at a 0-based index.
func (s *Spreadsheet) GetWorksheetByIndex(index int) (*Worksheet, error) {
	if index < 0 || index >= len(s.worksheets) {
		return nil, fmt.Errorf("%w: worksheet index %d not in [0, %d)", ErrOutOfRange, index, len(s.worksheets))
	}
	return s.worksheets[index], nil
}

// GetFirstWorksheet returns the first worksheet.
func (s *Spreadsheet) GetFirstWorksheet() (*Worksheet, error) {
	if len(s.worksheets) == 0 {
		return nil, ErrEmptySpreadsheet
	}
	return s.worksheets[0], nil
}

// GetLastWorksheet returns the last worksheet.
func (s *Spreadsheet) GetLastWorksheet() (*Worksheet, error) {
	if len(s.worksheets) == 0 {
		return nil, ErrEmptySpreadsheet
	}
	return s.worksheets[len(s.worksheets)-1], nil
}

// NamedRanges returns a copy of the named ranges known to the spreadsheet.
func (s *Spreadsheet) NamedRanges() map[string]Range {
	out := make(map[string]Range, len(s.namedRanges))
	for k, v := range s.namedRanges {
		out[k] = v
	}
	return out
}

// NamedRange looks up a named range.
func (s *Spreadsheet) NamedRange(name string) (Range, bool) {
	r, ok := s.namedRanges[name]
	return r, ok
}

// AllCells yields the worksheet name and cell for every grid position,
// in worksheet order and row-major order within each worksheet.
func (s *Spreadsheet) AllCells() iter.Seq2[string, Cell] {
	return func(yield func(string, Cell) bool) {
		for _, ws := range s.worksheets {
			for cell := range ws.AllCells() {
				if !yield(ws.name, cell) {
					return
				}
			}
		}
	}
}

// ExportToDict runs GetDataAsDict on every worksheet, keyed by worksheet name.
// A worksheet without rows maps to no records.
func (s *Spreadsheet) ExportToDict(headersRow int) (map[string][]Record, error) {
	out := make(map[string][]Record, len(s.worksheets))
	for _, ws := range s.worksheets {
		if ws.rowCount == 0 {
			out[ws.name] = []Record{}
			continue
		}
		records, err := ws.GetDataAsDict(headersRow)
		if err != nil {
			return nil, err
		}
		out[ws.name] = records
	}
	return out, nil
}

// Summary describes a spreadsheet's shape.
type Summary struct {
	// Title is the spreadsheet title.
	Title string `json:"title"`
	// WorksheetCount is the number of worksheets.
	WorksheetCount int `json:"worksheet_count"`
	// WorksheetNames lists worksheet names in order.
	WorksheetNames []string `json:"worksheet_names"`
	// TotalCells is the sum of row count times column count over all worksheets.
	TotalCells int `json:"total_cells"`
	// NonEmptyCells counts the cells that hold a non-blank value.
	NonEmptyCells int `json:"non_empty_cells"`
	// URL is the source URL, if known.
	URL string `json:"url,omitempty"`
}

// Summary computes the spreadsheet summary.
func (s *Spreadsheet) Summary() Summary {
	sum := Summary{
		Title:          s.title,
		WorksheetCount: len(s.worksheets),
		WorksheetNames: s.WorksheetNames(),
		URL:            s.url,
	}
	for _, ws := range s.worksheets {
		sum.TotalCells += ws.rowCount * ws.colCount
		sum.NonEmptyCells += ws.NonEmptyCount()
	}
	return sum
}
