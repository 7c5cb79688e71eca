// Package gsparse loads CSV and XLSX sources into spreadsheets.
package gsparse

import (
	"log/slog"

	"github.com/Tsunami43/gsparse-go/pkg/gsparse/parser"
)

// Options configures loading.
type Options struct {
	// Format selects the parser for LoadFile and LoadURL. LoadFile infers
	// it from the file extension when empty; LoadURL defaults to CSV.
	Format parser.Format
	// Title overrides the spreadsheet title. When empty the workbook's own
	// title is used, then the first worksheet's name.
	Title string
	// CSV configures delimited text parsing.
	CSV parser.CSVOptions
	// XLSX configures workbook parsing.
	XLSX parser.XLSXOptions
	// IncludeNamedRanges specifies whether workbook defined names are
	// attached to the spreadsheet. If nil, defaults to true.
	IncludeNamedRanges *bool
	// Logger is handed to the parsers when they carry none of their own.
	Logger *slog.Logger
}

// ShouldIncludeNamedRanges returns whether defined names are attached.
func (o Options) ShouldIncludeNamedRanges() bool {
	if o.IncludeNamedRanges != nil {
		return *o.IncludeNamedRanges
	}
	return true
}

// FormatOrDefault returns the configured format, or CSV.
func (o Options) FormatOrDefault() parser.Format {
	if o.Format == "" {
		return parser.FormatCSV
	}
	return o.Format
}

// NewParser builds the parser for format from opts.
func NewParser(format parser.Format, opts Options) (parser.Parser, error) {
	switch format {
	case parser.FormatCSV:
		csvOpts := opts.CSV
		if csvOpts.Logger == nil {
			csvOpts.Logger = opts.Logger
		}
		return parser.NewCSVParser(csvOpts), nil
	case parser.FormatXLSX:
		xlsxOpts := opts.XLSX
		if xlsxOpts.Logger == nil {
			xlsxOpts.Logger = opts.Logger
		}
		return parser.NewXLSXParser(xlsxOpts), nil
	default:
		return nil, &LoadError{Format: format, Err: ErrUnsupportedFormat}
	}
}
