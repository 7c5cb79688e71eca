// Package search finds cells across the worksheets of a spreadsheet.
package search

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/Tsunami43/gsparse-go/pkg/gsparse/models"
)

// ErrInvalidPattern indicates a pattern that does not compile.
var ErrInvalidPattern = errors.New("invalid pattern")

// InvalidPatternError carries the pattern that failed to compile.
type InvalidPatternError struct {
	Pattern string
	Err     error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *InvalidPatternError) Unwrap() []error {
	return []error{ErrInvalidPattern, e.Err}
}

// Match is a cell found in a named worksheet.
type Match struct {
	Worksheet string      `json:"worksheet"`
	Cell      models.Cell `json:"cell"`
}

// FindData returns every cell whose value equals v, in worksheet order
// and row-major order within each worksheet.
func FindData(ss *models.Spreadsheet, v models.Value) []Match {
	var matches []Match
	for _, ws := range ss.Worksheets() {
		matches = appendMatches(matches, ws.Name(), ws.FindCellsByValue(v))
	}
	return matches
}

// FindByPattern returns every non-empty cell whose canonical text contains
// a match of the RE2 pattern.
func FindByPattern(ss *models.Spreadsheet, pattern string) ([]Match, error) {
	re, err := Compile(pattern)
	if err != nil {
		return nil, err
	}
	var matches []Match
	for _, ws := range ss.Worksheets() {
		matches = appendMatches(matches, ws.Name(), ws.FindCellsByPattern(re))
	}
	return matches, nil
}

// FindInWorksheet restricts FindData to one worksheet.
func FindInWorksheet(ss *models.Spreadsheet, worksheet string, v models.Value) ([]Match, error) {
	ws, err := ss.GetWorksheet(worksheet)
	if err != nil {
		return nil, err
	}
	return appendMatches(nil, ws.Name(), ws.FindCellsByValue(v)), nil
}

// FindPatternInWorksheet restricts FindByPattern to one worksheet.
func FindPatternInWorksheet(ss *models.Spreadsheet, worksheet, pattern string) ([]Match, error) {
	re, err := Compile(pattern)
	if err != nil {
		return nil, err
	}
	ws, err := ss.GetWorksheet(worksheet)
	if err != nil {
		return nil, err
	}
	return appendMatches(nil, ws.Name(), ws.FindCellsByPattern(re)), nil
}

// Count returns the number of matches per worksheet, leaving out
// worksheets without matches.
func Count(matches []Match) map[string]int {
	counts := make(map[string]int)
	for _, m := range matches {
		counts[m.Worksheet]++
	}
	return counts
}

// Compile compiles an RE2 pattern, reporting failures as InvalidPatternError.
func Compile(pattern string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &InvalidPatternError{Pattern: pattern, Err: err}
	}
	return re, nil
}

func appendMatches(dst []Match, worksheet string, cells []models.Cell) []Match {
	for _, c := range cells {
		dst = append(dst, Match{Worksheet: worksheet, Cell: c})
	}
	return dst
}
