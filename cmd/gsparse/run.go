package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tsunami43/gsparse-go/internal/config"
	"github.com/Tsunami43/gsparse-go/internal/logging"
	"github.com/Tsunami43/gsparse-go/pkg/gsparse"
	"github.com/Tsunami43/gsparse-go/pkg/gsparse/fetch"
	"github.com/Tsunami43/gsparse-go/pkg/gsparse/models"
	"github.com/Tsunami43/gsparse-go/pkg/gsparse/parser"
	"github.com/Tsunami43/gsparse-go/pkg/gsparse/search"
)

func run(cmd *cobra.Command, source string, cfg *config.Config, o *options) error {
	logger := logging.Setup(o.logLevel, o.logFormat)

	loadOpts, err := loadOptions(cfg, o, logger)
	if err != nil {
		return err
	}

	ss, err := loadSource(cmd.Context(), source, cfg, o, loadOpts)
	if err != nil {
		return fmt.Errorf("loading failed: %w", err)
	}
	logger.Info("loaded spreadsheet",
		slog.String("source", source),
		slog.String("title", ss.Title()),
		slog.Int("worksheets", ss.WorksheetCount()),
	)

	result, err := selectOutput(ss, o, loadOpts.CSV.BoolLiterals)
	if err != nil {
		return err
	}

	var jsonData []byte
	if o.pretty {
		jsonData, err = json.MarshalIndent(result, "", "  ")
	} else {
		jsonData, err = json.Marshal(result)
	}
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	if o.output != "" {
		if err := os.WriteFile(o.output, jsonData, 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}
	return writeLine(cmd.OutOrStdout(), jsonData)
}

func loadOptions(cfg *config.Config, o *options, logger *slog.Logger) (gsparse.Options, error) {
	delimiter, err := config.ParseDelimiter(o.delimiter)
	if err != nil {
		return gsparse.Options{}, fmt.Errorf("invalid delimiter: %w", err)
	}
	if delimiter == ',' {
		// Leave the default unset so .tsv files pick a tab.
		delimiter = 0
	}
	quote, err := config.ParseQuote(o.quote)
	if err != nil {
		return gsparse.Options{}, fmt.Errorf("invalid quote: %w", err)
	}

	fallback := parser.FormulaEmpty
	if strings.EqualFold(cfg.Parse.FormulaFallback, "text") {
		fallback = parser.FormulaText
	}

	literals := parser.BoolLiterals{True: cfg.Parse.TrueLiterals, False: cfg.Parse.FalseLiterals}
	trim := cfg.Parse.TrimSpace

	opts := gsparse.Options{
		CSV: parser.CSVOptions{
			Delimiter:     delimiter,
			Quote:         quote,
			Encoding:      cfg.Parse.Encoding,
			MinConfidence: cfg.Parse.MinConfidence,
			TrimSpace:     &trim,
			BoolLiterals:  literals,
		},
		XLSX: parser.XLSXOptions{
			FormulaFallback: fallback,
			BoolLiterals:    literals,
		},
		Logger: logger,
	}
	if o.format != "" {
		format, err := parser.ParseFormat(o.format)
		if err != nil {
			return gsparse.Options{}, err
		}
		opts.Format = format
	}
	return opts, nil
}

func loadSource(ctx context.Context, source string, cfg *config.Config, o *options, opts gsparse.Options) (*models.Spreadsheet, error) {
	u, err := url.Parse(source)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return gsparse.LoadFile(source, opts)
	}

	retries := o.retries
	fetchOpts := fetch.Options{
		Timeout:   o.timeout,
		Retries:   &retries,
		UserAgent: cfg.Fetch.UserAgent,
		Logger:    opts.Logger,
	}

	var f fetch.Fetcher
	if fetch.IsGoogleSheetsURL(source) {
		f = fetch.NewGoogleSheets(fetchOpts)
	} else {
		f = fetch.NewHTTP(fetchOpts)
		if opts.Format == "" {
			if format, err := gsparse.FormatFromPath(u.Path); err == nil {
				opts.Format = format
			}
		}
	}
	return gsparse.LoadURL(ctx, f, source, opts)
}

func selectOutput(ss *models.Spreadsheet, o *options, literals parser.BoolLiterals) (any, error) {
	switch {
	case o.summary:
		return ss.Summary(), nil

	case o.find != "":
		value := parser.CoerceValue(o.find, literals)
		if o.sheet != "" {
			return nonNil(search.FindInWorksheet(ss, o.sheet, value))
		}
		return nonNil(search.FindData(ss, value), nil)

	case o.pattern != "":
		if o.sheet != "" {
			return nonNil(search.FindPatternInWorksheet(ss, o.sheet, o.pattern))
		}
		return nonNil(search.FindByPattern(ss, o.pattern))

	case o.records:
		if o.sheet != "" {
			ws, err := ss.GetWorksheet(o.sheet)
			if err != nil {
				return nil, err
			}
			records, err := ws.GetDataAsDict(o.headersRow)
			if err != nil {
				return nil, err
			}
			if records == nil {
				records = []models.Record{}
			}
			return records, nil
		}
		return ss.ExportToDict(o.headersRow)

	case o.sheet != "":
		ws, err := ss.GetWorksheet(o.sheet)
		if err != nil {
			return nil, err
		}
		return ws.Data(), nil

	default:
		return ss.Data(), nil
	}
}

// nonNil keeps empty match lists serializing as [] rather than null.
func nonNil(matches []search.Match, err error) ([]search.Match, error) {
	if err != nil {
		return nil, err
	}
	if matches == nil {
		matches = []search.Match{}
	}
	return matches, nil
}

func writeLine(w io.Writer, data []byte) error {
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
