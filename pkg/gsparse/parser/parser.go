// Package parser turns raw CSV and XLSX bytes into worksheets.
package parser

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Tsunami43/gsparse-go/pkg/gsparse/models"
)

// Format identifies a source format.
type Format string

const (
	// FormatCSV is delimited text.
	FormatCSV Format = "csv"
	// FormatXLSX is an Office Open XML workbook.
	FormatXLSX Format = "xlsx"
)

// ParseFormat maps a case-insensitive tag to a Format.
func ParseFormat(tag string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(tag))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, tag)
	}
}

// Parser converts raw bytes into worksheets in source order.
// A failed parse returns no worksheets.
type Parser interface {
	Parse(data []byte) ([]*models.Worksheet, error)
}

// Metadata is workbook-level information found in container formats.
type Metadata struct {
	// Title is the document title, empty when the container has none.
	Title string
	// NamedRanges maps defined names to the ranges they refer to.
	NamedRanges map[string]models.Range
}

// TitledParser is implemented by parsers whose input can carry a title
// and named ranges alongside the worksheets.
type TitledParser interface {
	Parser
	ParseWithMetadata(data []byte) ([]*models.Worksheet, Metadata, error)
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}
