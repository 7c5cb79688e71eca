package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/Tsunami43/gsparse-go/pkg/gsparse/models"
)

// DefaultSheetName names the single worksheet produced from delimited text.
const DefaultSheetName = "Sheet1"

// delimiterCandidates are the separators DetectDelimiter chooses from, in
// order of preference on ties.
var delimiterCandidates = []rune{',', ';', '\t', '|'}

// quoteCandidates are the quote characters DetectQuote chooses from, in
// order of preference on ties.
var quoteCandidates = []rune{'"', '\'', '`'}

// CSVOptions configures CSVParser.
type CSVOptions struct {
	// Delimiter separates fields. Zero means ','.
	Delimiter rune
	// Quote encloses fields holding delimiters or line breaks. Zero means
	// the quote is detected with DetectQuote.
	Quote rune
	// SheetName names the produced worksheet. Empty means "Sheet1".
	SheetName string
	// Encoding names the source charset and skips detection when set.
	Encoding string
	// MinConfidence is the detector confidence (0-100) required to accept
	// a guessed charset. Values <= 0 use DefaultMinConfidence.
	MinConfidence int
	// TrimSpace decodes \uXXXX escapes, trims fields, normalizes line
	// endings to LF and turns blank fields into empty values. If nil,
	// defaults to true.
	TrimSpace *bool
	// BoolLiterals lists the boolean spellings. The zero value means true/false.
	BoolLiterals BoolLiterals
	// Logger receives debug output. Nil means slog.Default().
	Logger *slog.Logger
}

// ShouldTrimSpace returns whether fields are cleaned before typing.
func (o CSVOptions) ShouldTrimSpace() bool {
	if o.TrimSpace != nil {
		return *o.TrimSpace
	}
	return true
}

func (o CSVOptions) withDefaults() CSVOptions {
	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
	if strings.TrimSpace(o.SheetName) == "" {
		o.SheetName = DefaultSheetName
	}
	if o.MinConfidence <= 0 {
		o.MinConfidence = DefaultMinConfidence
	}
	o.BoolLiterals = o.BoolLiterals.withDefaults()
	o.Logger = loggerOrDefault(o.Logger)
	return o
}

// CSVParser reads RFC 4180 delimited text into one worksheet. Every line
// outside a quoted field is a row, blank lines included.
type CSVParser struct {
	opts CSVOptions
}

// NewCSVParser creates a parser with the given options.
func NewCSVParser(opts CSVOptions) *CSVParser {
	return &CSVParser{opts: opts.withDefaults()}
}

// Parse decodes data and returns exactly one worksheet.
func (p *CSVParser) Parse(data []byte) ([]*models.Worksheet, error) {
	text, charset, err := decodeText(data, p.opts.Encoding, p.opts.MinConfidence, p.opts.Logger)
	if err != nil {
		return nil, err
	}
	p.opts.Logger.Debug("decoded delimited text", slog.String("charset", charset), slog.Int("bytes", len(data)))

	ws, err := p.parseText(text)
	if err != nil {
		return nil, err
	}
	return []*models.Worksheet{ws}, nil
}

// ParseString parses delimited text that is already decoded.
func (p *CSVParser) ParseString(s string) (*models.Worksheet, error) {
	return p.parseText(strings.TrimPrefix(s, "\ufeff"))
}

func (p *CSVParser) parseText(text string) (*models.Worksheet, error) {
	if err := validDelimiter(p.opts.Delimiter); err != nil {
		return nil, err
	}
	quote := p.opts.Quote
	if quote == 0 {
		quote = detectQuote(text, p.opts.Delimiter)
	}
	if err := validQuote(quote, p.opts.Delimiter); err != nil {
		return nil, err
	}

	// encoding/csv only quotes with '"', so another quote character trades
	// places with it and fields are swapped back after reading.
	swap := swapRunes(quote, '"')
	src := text
	if quote != '"' {
		src = strings.Map(swap, text)
	}

	r := csv.NewReader(strings.NewReader(src))
	r.Comma = p.opts.Delimiter
	r.FieldsPerRecord = -1
	r.ReuseRecord = true
	r.LazyQuotes = quote != '"'

	trim := p.opts.ShouldTrimSpace()
	b := models.NewWorksheetBuilder(p.opts.SheetName)
	values := make([]models.Value, 0, 16)
	// lastLine is the line the previous record ended on.
	lastLine := 0
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &ParseError{Line: pe.Line, Column: pe.Column, Err: pe.Err}
			}
			return nil, &ParseError{Err: err}
		}

		// encoding/csv skips blank lines; each one is an empty row.
		start, _ := r.FieldPos(0)
		for ; lastLine+1 < start; lastLine++ {
			b.AppendRow()
		}
		end, _ := r.FieldPos(len(record) - 1)
		lastLine = end + strings.Count(record[len(record)-1], "\n")

		values = values[:0]
		for _, field := range record {
			if quote != '"' {
				field = strings.Map(swap, field)
			}
			if trim {
				field = cleanText(field)
			}
			values = append(values, CoerceValue(field, p.opts.BoolLiterals))
		}
		b.AppendRow(values...)
	}
	for n := countLines(text); lastLine < n; lastLine++ {
		b.AppendRow()
	}

	ws, err := b.Build()
	if err != nil {
		return nil, err
	}
	p.opts.Logger.Debug("parsed delimited text",
		slog.String("sheet", ws.Name()),
		slog.String("quote", string(quote)),
		slog.Int("rows", ws.RowCount()),
		slog.Int("columns", ws.ColumnCount()),
	)
	return ws, nil
}

// countLines counts lines the way encoding/csv numbers them. A final line
// break does not open another line.
func countLines(text string) int {
	n := strings.Count(text, "\n")
	if text != "" && !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}

func swapRunes(a, b rune) func(rune) rune {
	return func(r rune) rune {
		switch r {
		case a:
			return b
		case b:
			return a
		}
		return r
	}
}

func validDelimiter(r rune) error {
	if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError || !utf8.ValidRune(r) {
		return fmt.Errorf("%w: %q", ErrInvalidDelimiter, r)
	}
	return nil
}

func validQuote(q, delimiter rune) error {
	if q == delimiter || q == '\r' || q == '\n' || q == utf8.RuneError || !utf8.ValidRune(q) {
		return fmt.Errorf("%w: %q", ErrInvalidQuote, q)
	}
	return nil
}

// DetectQuote guesses the quote character of delimited text. Over the first
// five lines it counts, per candidate, the fields wrapped in that character
// on both ends. The most frequent candidate wins, '"' first on ties; '"' is
// returned when no field is wrapped.
func DetectQuote(data []byte, delimiter rune) rune {
	if delimiter == 0 {
		delimiter = ','
	}
	return detectQuote(strings.TrimPrefix(string(data), "\ufeff"), delimiter)
}

func detectQuote(text string, delimiter rune) rune {
	lines := strings.SplitN(text, "\n", 6)
	if len(lines) > 5 {
		lines = lines[:5]
	}
	best, bestCount := '"', 0
	for _, cand := range quoteCandidates {
		q := string(cand)
		count := 0
		for _, line := range lines {
			if strings.TrimSpace(line) == "" {
				continue
			}
			for field := range strings.SplitSeq(line, string(delimiter)) {
				field = strings.TrimSpace(field)
				if len(field) >= 2*len(q) && strings.HasPrefix(field, q) && strings.HasSuffix(field, q) {
					count++
				}
			}
		}
		if count > bestCount {
			best, bestCount = cand, count
		}
	}
	return best
}

// DetectDelimiter guesses the separator of delimited text by counting each
// candidate outside quoted sections over the first lines. The candidate
// with the highest minimum count per line wins; ',' is returned when no
// candidate occurs on every line.
func DetectDelimiter(data []byte) rune {
	lines := sampleLines(string(data), 10)
	best, bestScore := ',', 0
	for _, cand := range delimiterCandidates {
		score := -1
		for _, line := range lines {
			n := countUnquoted(line, cand)
			if score < 0 || n < score {
				score = n
			}
		}
		if score > bestScore {
			best, bestScore = cand, score
		}
	}
	return best
}

func sampleLines(text string, limit int) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	var lines []string
	for line := range strings.Lines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == limit {
			break
		}
	}
	return lines
}

func countUnquoted(line string, sep rune) int {
	n := 0
	quoted := false
	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
		case r == sep && !quoted:
			n++
		}
	}
	return n
}
