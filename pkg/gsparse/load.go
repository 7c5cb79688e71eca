package gsparse

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Tsunami43/gsparse-go/pkg/gsparse/fetch"
	"github.com/Tsunami43/gsparse-go/pkg/gsparse/models"
	"github.com/Tsunami43/gsparse-go/pkg/gsparse/parser"
)

// Load parses data in the given format into a spreadsheet.
func Load(data []byte, format parser.Format, opts Options) (*models.Spreadsheet, error) {
	return load("", data, format, opts)
}

// LoadFile reads and parses the file at path. The format comes from the
// file extension unless opts.Format is set.
func LoadFile(path string, opts Options) (*models.Spreadsheet, error) {
	format := opts.Format
	if format == "" {
		f, err := FormatFromPath(path)
		if err != nil {
			return nil, NewLoadError(path, "", err)
		}
		format = f
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewLoadError(path, format, ErrFileNotFound)
		}
		return nil, NewLoadError(path, format, err)
	}

	if format == parser.FormatCSV {
		// Delimited text has no title of its own.
		if opts.Title == "" {
			opts.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		}
		if opts.CSV.Delimiter == 0 && strings.EqualFold(filepath.Ext(path), ".tsv") {
			opts.CSV.Delimiter = '\t'
		}
	}
	return load(path, data, format, opts)
}

// WorksheetFromCSVString builds one worksheet called name from already
// decoded delimited text.
func WorksheetFromCSVString(s, name string) (*models.Worksheet, error) {
	ws, err := parser.NewCSVParser(parser.CSVOptions{SheetName: name}).ParseString(s)
	if err != nil {
		return nil, NewLoadError("", parser.FormatCSV, err)
	}
	return ws, nil
}

// LoadCSVString wraps WorksheetFromCSVString in a spreadsheet titled name.
func LoadCSVString(s, name string) (*models.Spreadsheet, error) {
	ws, err := WorksheetFromCSVString(s, name)
	if err != nil {
		return nil, err
	}
	return models.NewSpreadsheet(ws.Name(), ws)
}

// LoadURL fetches url with f and parses the response. The URL is kept on
// the returned spreadsheet.
func LoadURL(ctx context.Context, f fetch.Fetcher, url string, opts Options) (*models.Spreadsheet, error) {
	format := opts.FormatOrDefault()
	data, err := f.Fetch(ctx, url, format)
	if err != nil {
		return nil, NewLoadError(url, format, err)
	}
	ss, err := load(url, data, format, opts)
	if err != nil {
		return nil, err
	}
	return ss.WithURL(url), nil
}

// FormatFromPath maps a file extension to a format.
func FormatFromPath(path string) (parser.Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	switch strings.ToLower(ext) {
	case "csv", "tsv", "txt":
		return parser.FormatCSV, nil
	default:
		return parser.ParseFormat(ext)
	}
}

func load(source string, data []byte, format parser.Format, opts Options) (*models.Spreadsheet, error) {
	p, err := NewParser(format, opts)
	if err != nil {
		return nil, err
	}

	var (
		sheets []*models.Worksheet
		meta   parser.Metadata
	)
	if tp, ok := p.(parser.TitledParser); ok {
		sheets, meta, err = tp.ParseWithMetadata(data)
	} else {
		sheets, err = p.Parse(data)
	}
	if err != nil {
		return nil, NewLoadError(source, format, err)
	}

	ss, err := models.NewSpreadsheet(resolveTitle(opts.Title, meta.Title, sheets), sheets...)
	if err != nil {
		return nil, NewLoadError(source, format, err)
	}
	if opts.ShouldIncludeNamedRanges() && len(meta.NamedRanges) > 0 {
		ss = ss.WithNamedRanges(meta.NamedRanges)
	}
	return ss, nil
}

func resolveTitle(override, document string, sheets []*models.Worksheet) string {
	switch {
	case strings.TrimSpace(override) != "":
		return override
	case strings.TrimSpace(document) != "":
		return document
	case len(sheets) > 0:
		return sheets[0].Name()
	default:
		return ""
	}
}
