package models

import "errors"

// Lookup and construction errors returned by the grid model.
var (
	// ErrInvalidCoordinate indicates a row or column below 1 was encoded.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrInvalidAddress indicates a label that is not letters followed by digits.
	ErrInvalidAddress = errors.New("invalid cell address")
	// ErrInvalidRange indicates range bounds that are below 1 or inverted.
	ErrInvalidRange = errors.New("invalid range")
	// ErrOutOfRange indicates a row, column or index outside the valid domain.
	ErrOutOfRange = errors.New("out of range")
	// ErrInvalidHeaderRow indicates a header row outside [1, row count].
	ErrInvalidHeaderRow = errors.New("invalid header row")
	// ErrWorksheetNotFound indicates no worksheet carries the requested name.
	ErrWorksheetNotFound = errors.New("worksheet not found")
	// ErrEmptySpreadsheet indicates a spreadsheet without worksheets.
	ErrEmptySpreadsheet = errors.New("spreadsheet has no worksheets")
	// ErrDuplicateWorksheetName indicates a worksheet name already used in the spreadsheet.
	ErrDuplicateWorksheetName = errors.New("duplicate worksheet name")
	// ErrEmptyWorksheetName indicates a blank worksheet name.
	ErrEmptyWorksheetName = errors.New("worksheet name is empty")
)
