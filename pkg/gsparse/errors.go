package gsparse

import (
	"errors"
	"fmt"

	"github.com/Tsunami43/gsparse-go/pkg/gsparse/parser"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrUnsupportedFormat indicates a format tag other than csv or xlsx.
var ErrUnsupportedFormat = parser.ErrUnsupportedFormat

// LoadError represents a failure to turn a source into a spreadsheet.
type LoadError struct {
	Source string
	Format parser.Format
	Err    error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("load %s: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("load %s (%s): %v", e.Source, e.Format, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// NewLoadError creates a new LoadError.
func NewLoadError(source string, format parser.Format, err error) *LoadError {
	return &LoadError{
		Source: source,
		Format: format,
		Err:    err,
	}
}
