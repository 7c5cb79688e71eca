package parser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Tsunami43/gsparse-go/pkg/gsparse/models"
)

// FormulaFallback selects the value of a formula cell that carries no
// cached result.
type FormulaFallback int

const (
	// FormulaEmpty leaves the cell empty.
	FormulaEmpty FormulaFallback = iota
	// FormulaText stores the formula text, prefixed with '=', as text.
	FormulaText
)

// XLSXOptions configures XLSXParser.
type XLSXOptions struct {
	// FormulaFallback applies to formula cells without a cached value.
	FormulaFallback FormulaFallback
	// BoolLiterals types untyped cells the same way delimited text is typed.
	BoolLiterals BoolLiterals
	// Logger receives debug and warning output. Nil means slog.Default().
	Logger *slog.Logger
}

// XLSXParser reads every worksheet of an Office Open XML workbook.
type XLSXParser struct {
	opts XLSXOptions
}

// NewXLSXParser creates a parser with the given options.
func NewXLSXParser(opts XLSXOptions) *XLSXParser {
	opts.BoolLiterals = opts.BoolLiterals.withDefaults()
	opts.Logger = loggerOrDefault(opts.Logger)
	return &XLSXParser{opts: opts}
}

// Parse returns one worksheet per manifest entry, in manifest order.
func (p *XLSXParser) Parse(data []byte) ([]*models.Worksheet, error) {
	a, err := openArchive(data)
	if err != nil {
		return nil, err
	}
	return p.parseSheets(a)
}

// ParseWithMetadata also returns the document title and defined names.
// Unreadable metadata is logged and left out; it never fails the parse.
func (p *XLSXParser) ParseWithMetadata(data []byte) ([]*models.Worksheet, Metadata, error) {
	a, err := openArchive(data)
	if err != nil {
		return nil, Metadata{}, err
	}
	sheets, err := p.parseSheets(a)
	if err != nil {
		return nil, Metadata{}, err
	}
	return sheets, readMetadata(data, p.opts.Logger), nil
}

// SheetNames lists the worksheet names of the manifest without reading
// any worksheet part.
func SheetNames(data []byte) ([]string, error) {
	a, err := openArchive(data)
	if err != nil {
		return nil, err
	}
	_, entries, err := readManifest(a)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names, nil
}

func (p *XLSXParser) parseSheets(a *archive) ([]*models.Worksheet, error) {
	manifest, entries, err := readManifest(a)
	if err != nil {
		return nil, err
	}

	relsPart := relsPartFor(manifest)
	relsData, err := a.read(relsPart)
	if err != nil {
		return nil, err
	}
	rels, err := parseRelationships(relsPart, relsData)
	if err != nil {
		return nil, err
	}

	sharedPart, ok := rels.target(relSharedStrings)
	if !ok && a.has(partSharedStrings) {
		sharedPart, ok = partSharedStrings, true
	}
	var shared []string
	if ok {
		data, err := a.read(sharedPart)
		if err != nil {
			return nil, err
		}
		if shared, err = parseSharedStrings(sharedPart, data); err != nil {
			return nil, err
		}
	}

	worksheets := make([]*models.Worksheet, 0, len(entries))
	for _, e := range entries {
		rel, ok := rels[e.relID]
		if !ok {
			return nil, &ContainerFormatError{
				Part: relsPart,
				Err:  fmt.Errorf("%w: relationship %q of sheet %q", errMissingPart, e.relID, e.name),
			}
		}
		part := rel.target
		data, err := a.read(part)
		if err != nil {
			return nil, err
		}

		sr := &sheetReader{part: part, manifest: manifest, shared: shared, opts: &p.opts}
		ws, err := sr.read(e.name, data)
		if err != nil {
			return nil, err
		}
		p.opts.Logger.Debug("parsed worksheet",
			slog.String("sheet", ws.Name()),
			slog.String("part", part),
			slog.Int("rows", ws.RowCount()),
			slog.Int("columns", ws.ColumnCount()),
		)
		worksheets = append(worksheets, ws)
	}
	return worksheets, nil
}

// Grid limits of the file format. References beyond them are rejected
// before anything is stored.
const (
	maxRows    = 1 << 20
	maxColumns = 1 << 14
)

// sheetReader streams one worksheet part into a builder.
type sheetReader struct {
	part     string
	manifest string
	shared   []string
	opts     *XLSXOptions

	row, col int
}

func (r *sheetReader) fail(err error) error {
	return &ContainerFormatError{Part: r.part, Err: err}
}

func (r *sheetReader) read(name string, data []byte) (*models.Worksheet, error) {
	b := models.NewWorksheetBuilder(name)
	decoder := xml.NewDecoder(bytes.NewReader(data))

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, r.fail(err)
		}
		se, ok := token.(xml.StartElement)
		if !ok {
			continue
		}

		switch se.Name.Local {
		case "row":
			if err := r.startRow(se); err != nil {
				return nil, r.fail(err)
			}
		case "c":
			if err := r.readCell(decoder, se, b); err != nil {
				return nil, err
			}
		}
	}

	ws, err := b.Build()
	if err != nil {
		return nil, &ContainerFormatError{Part: r.manifest, Err: err}
	}
	return ws, nil
}

// startRow positions the reader on a row. Rows without an r attribute
// follow the previous row.
func (r *sheetReader) startRow(se xml.StartElement) error {
	r.col = 0
	ref, ok := attr(se, "r")
	if !ok {
		r.row++
		return nil
	}
	n, err := strconv.Atoi(ref)
	if err != nil || n < 1 {
		return fmt.Errorf("invalid row reference %q", ref)
	}
	if n > maxRows {
		return fmt.Errorf("row %d exceeds the limit of %d rows", n, maxRows)
	}
	r.row = n
	return nil
}

// position returns the cell coordinates. Cells without an r attribute
// follow the previous cell of the row.
func (r *sheetReader) position(se xml.StartElement) (int, int, error) {
	ref, ok := attr(se, "r")
	if !ok {
		if r.row == 0 {
			r.row = 1
		}
		r.col++
		if err := checkLimits(r.row, r.col); err != nil {
			return 0, 0, err
		}
		return r.row, r.col, nil
	}
	row, col, err := models.DecodeAddress(ref)
	if err != nil {
		return 0, 0, err
	}
	if err := checkLimits(row, col); err != nil {
		return 0, 0, fmt.Errorf("cell %s: %w", ref, err)
	}
	r.row, r.col = row, col
	return row, col, nil
}

func checkLimits(row, col int) error {
	if row > maxRows {
		return fmt.Errorf("row %d exceeds the limit of %d rows", row, maxRows)
	}
	if col > maxColumns {
		return fmt.Errorf("column %d exceeds the limit of %d columns", col, maxColumns)
	}
	return nil
}

func (r *sheetReader) readCell(decoder *xml.Decoder, se xml.StartElement, b *models.WorksheetBuilder) error {
	row, col, err := r.position(se)
	if err != nil {
		return r.fail(err)
	}
	cellType, _ := attr(se, "t")

	var cached, formula, inline string
	var hasCached, hasFormula, hasInline bool
	depth := 1
	for depth > 0 {
		token, err := decoder.Token()
		if err != nil {
			return r.fail(err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "v":
				if cached, err = readElementText(decoder); err != nil {
					return r.fail(err)
				}
				hasCached = cached != ""
			case "f":
				if formula, err = readElementText(decoder); err != nil {
					return r.fail(err)
				}
				hasFormula = true
			case "is":
				if inline, err = readRichText(decoder); err != nil {
					return r.fail(err)
				}
				hasInline = true
			default:
				depth++
			}
		case xml.EndElement:
			depth--
		}
	}

	if formula != "" {
		if err := b.SetFormula(row, col, formula); err != nil {
			return r.fail(err)
		}
	}

	var v models.Value
	switch {
	case hasCached:
		v, err = r.typedValue(cellType, cached, row, col)
		if err != nil {
			return err
		}
	case hasInline:
		v = textValue(inline)
	case hasFormula:
		if r.opts.FormulaFallback == FormulaText && formula != "" {
			v = models.Text("=" + formula)
		}
	default:
		// Styled but valueless cells do not extend the grid.
		return nil
	}
	return b.Set(row, col, v)
}

func (r *sheetReader) typedValue(cellType, raw string, row, col int) (models.Value, error) {
	switch cellType {
	case "s":
		idx, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || idx < 0 || idx >= len(r.shared) {
			addr, _ := models.EncodeAddress(row, col)
			return models.Value{}, r.fail(fmt.Errorf("%w: index %q at %s", errSharedString, raw, addr))
		}
		return textValue(r.shared[idx]), nil
	case "b":
		switch strings.TrimSpace(raw) {
		case "1", "true":
			return models.Bool(true), nil
		case "0", "false":
			return models.Bool(false), nil
		}
		return models.Text(raw), nil
	case "n":
		if f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			return models.Number(f), nil
		}
		return models.Text(raw), nil
	case "str", "inlineStr", "e", "d":
		return textValue(raw), nil
	default:
		return CoerceValue(raw, r.opts.BoolLiterals), nil
	}
}

func textValue(s string) models.Value {
	if s == "" {
		return models.Empty()
	}
	return models.Text(s)
}
