// Package main provides the CLI entry point for gsparse-go.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tsunami43/gsparse-go/internal/config"
)

type options struct {
	format     string
	sheet      string
	delimiter  string
	quote      string
	headersRow int
	records    bool
	find       string
	pattern    string
	summary    bool
	pretty     bool
	output     string
	logLevel   string
	logFormat  string
	timeout    time.Duration
	retries    int
}

func main() {
	if err := config.LoadEnvFiles(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the command with flag defaults taken from cfg.
func newRootCmd(cfg *config.Config) *cobra.Command {
	o := &options{}

	rootCmd := &cobra.Command{
		Use:   "gsparse [file|url]",
		Short: "Parse CSV and XLSX spreadsheets into JSON",
		Long: `gsparse-go reads a CSV or XLSX file, a public Google Sheets URL or any
other URL serving CSV/XLSX, and prints the grid, records, search matches
or a summary as JSON.`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], cfg, o)
		},
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&o.format, "format", "f", cfg.Parse.Format, "Input format: csv or xlsx (default: from the file extension)")
	flags.StringVarP(&o.sheet, "sheet", "s", "", "Restrict output to one worksheet")
	flags.StringVarP(&o.delimiter, "delimiter", "d", cfg.Parse.Delimiter, `CSV field separator; "tab" selects a tab`)
	flags.StringVar(&o.quote, "quote", cfg.Parse.Quote, "CSV quote character (default: detected)")
	flags.IntVar(&o.headersRow, "headers-row", cfg.Parse.HeadersRow, "1-based header row for --records")
	flags.BoolVar(&o.records, "records", false, "Output rows as header-keyed records")
	flags.StringVar(&o.find, "find", "", "Output cells whose value equals this literal")
	flags.StringVar(&o.pattern, "pattern", "", "Output cells whose text matches this regular expression")
	flags.BoolVar(&o.summary, "summary", false, "Output a spreadsheet summary")
	flags.BoolVar(&o.pretty, "pretty", false, "Pretty-print JSON output")
	flags.StringVarP(&o.output, "output", "o", "", "Output file path (default: stdout)")
	flags.StringVar(&o.logLevel, "log-level", cfg.Logging.Level, "Log level: debug, info, warn, error")
	flags.StringVar(&o.logFormat, "log-format", cfg.Logging.Format, "Log format: text or json")
	flags.DurationVar(&o.timeout, "timeout", cfg.Fetch.Timeout, "Timeout for each HTTP attempt")
	flags.IntVar(&o.retries, "retries", cfg.Fetch.Retries, "Retries after a failed HTTP attempt")

	rootCmd.MarkFlagsMutuallyExclusive("records", "find", "pattern", "summary")

	return rootCmd
}
