package parser

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/Tsunami43/gsparse-go/pkg/gsparse/models"
)

// numberPattern accepts plain decimal notation with an optional sign and
// exponent. Hex, inf, nan and digit separators are rejected before
// strconv sees them.
var numberPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

var escapePattern = regexp.MustCompile(`\\U[0-9a-fA-F]{8}|\\u[0-9a-fA-F]{4}`)

// BoolLiterals lists the spellings recognized as booleans.
// The zero value recognizes true and false in any letter case.
type BoolLiterals struct {
	True          []string
	False         []string
	CaseSensitive bool
}

// DefaultBoolLiterals returns the true/false literal set.
func DefaultBoolLiterals() BoolLiterals {
	return BoolLiterals{True: []string{"true"}, False: []string{"false"}}
}

func (b BoolLiterals) withDefaults() BoolLiterals {
	if len(b.True) == 0 && len(b.False) == 0 {
		d := DefaultBoolLiterals()
		d.CaseSensitive = b.CaseSensitive
		return d
	}
	return b
}

func (b BoolLiterals) match(s string) (value, ok bool) {
	eq := strings.EqualFold
	if b.CaseSensitive {
		eq = func(a, c string) bool { return a == c }
	}
	for _, lit := range b.True {
		if eq(s, lit) {
			return true, true
		}
	}
	for _, lit := range b.False {
		if eq(s, lit) {
			return false, true
		}
	}
	return false, false
}

// CoerceValue types a raw field: an empty string is empty, then a boolean
// literal, then a number, otherwise text. Malformed numbers stay text.
func CoerceValue(raw string, lits BoolLiterals) models.Value {
	if raw == "" {
		return models.Empty()
	}
	if b, ok := lits.withDefaults().match(raw); ok {
		return models.Bool(b)
	}
	if numberPattern.MatchString(raw) {
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return models.Number(f)
		}
	}
	return models.Text(raw)
}

// cleanText decodes \uXXXX and \UXXXXXXXX escapes, trims surrounding
// whitespace and normalizes line endings to LF.
func cleanText(s string) string {
	s = strings.TrimSpace(decodeEscapes(s))
	if strings.IndexByte(s, '\r') < 0 {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// decodeEscapes replaces literal \uXXXX and \UXXXXXXXX sequences with the
// characters they name. Sequences that name no valid character are kept.
func decodeEscapes(s string) string {
	if !strings.Contains(s, `\u`) && !strings.Contains(s, `\U`) {
		return s
	}
	return escapePattern.ReplaceAllStringFunc(s, func(seq string) string {
		n, err := strconv.ParseUint(seq[2:], 16, 32)
		if err != nil || !utf8.ValidRune(rune(n)) {
			return seq
		}
		return string(rune(n))
	})
}
