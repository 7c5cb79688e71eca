// Package config loads the command-line defaults from environment
// variables, optionally seeded from a .env file.
package config

import "time"

// Config holds all command defaults.
type Config struct {
	Parse   ParseConfig
	Fetch   FetchConfig
	Logging LoggingConfig
}

// ParseConfig holds parser settings.
type ParseConfig struct {
	// Format forces the input format: csv or xlsx (default: detect from the source)
	Format string `env:"GSPARSE_FORMAT"`

	// Delimiter is the CSV field separator; "tab" and "\t" select a tab (default: ,)
	Delimiter string `env:"GSPARSE_DELIMITER" default:","`

	// Quote is the CSV quote character; empty means detect among ", ' and `
	Quote string `env:"GSPARSE_QUOTE"`

	// Encoding is the CSV charset; empty means detect
	Encoding string `env:"GSPARSE_ENCODING"`

	// MinConfidence is the detector confidence (0-100) required for a guessed charset (default: 30)
	MinConfidence int `env:"GSPARSE_MIN_CONFIDENCE" default:"30"`

	// TrimSpace trims CSV fields and empties blank ones (default: true)
	TrimSpace bool `env:"GSPARSE_TRIM_SPACE" default:"true"`

	// TrueLiterals and FalseLiterals are the comma-separated boolean spellings
	TrueLiterals  []string `env:"GSPARSE_TRUE_LITERALS" default:"true"`
	FalseLiterals []string `env:"GSPARSE_FALSE_LITERALS" default:"false"`

	// FormulaFallback is empty or text for formulas without a cached value (default: empty)
	FormulaFallback string `env:"GSPARSE_FORMULA_FALLBACK" default:"empty"`

	// HeadersRow is the 1-based header row used for record output (default: 1)
	HeadersRow int `env:"GSPARSE_HEADERS_ROW" default:"1"`
}

// FetchConfig holds remote retrieval settings.
type FetchConfig struct {
	// Timeout bounds each HTTP attempt (default: 30s)
	Timeout time.Duration `env:"GSPARSE_TIMEOUT" default:"30s"`

	// Retries is the number of retries after the first attempt (default: 3)
	Retries int `env:"GSPARSE_RETRIES" default:"3"`

	// UserAgent is sent with every request
	UserAgent string `env:"GSPARSE_USER_AGENT" default:"gsparse-go"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: warn)
	Level string `env:"GSPARSE_LOG_LEVEL" envAlt:"LOG_LEVEL" default:"warn"`

	// Format is the log format: text or json (default: text)
	Format string `env:"GSPARSE_LOG_FORMAT" envAlt:"LOG_FORMAT" default:"text"`
}
