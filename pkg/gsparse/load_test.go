package gsparse

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Tsunami43/gsparse-go/internal/logging"
	"github.com/Tsunami43/gsparse-go/pkg/gsparse/models"
	"github.com/Tsunami43/gsparse-go/pkg/gsparse/parser"
)

func newWorkbook(t *testing.T, title string) *excelize.File {
	t.Helper()
	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })

	require.NoError(t, f.SetSheetName("Sheet1", "Orders"))
	require.NoError(t, f.SetSheetRow("Orders", "A1", &[]any{"Item", "Qty"}))
	require.NoError(t, f.SetSheetRow("Orders", "A2", &[]any{"Pen", 3}))
	require.NoError(t, f.SetSheetRow("Orders", "A3", &[]any{"Ink", 12}))
	if title != "" {
		require.NoError(t, f.SetDocProps(&excelize.DocProperties{Title: title}))
	}
	require.NoError(t, f.SetDefinedName(&excelize.DefinedName{Name: "Quantities", RefersTo: "Orders!$B$2:$B$3"}))
	return f
}

func workbookBytes(t *testing.T, title string) []byte {
	t.Helper()
	buf, err := newWorkbook(t, title).WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func quiet() Options {
	return Options{Logger: logging.Discard()}
}

func TestLoad_CSV(t *testing.T) {
	ss, err := Load([]byte("Name,Age,City\nJohn,25,Moscow\n"), parser.FormatCSV, quiet())
	require.NoError(t, err)

	assert.Equal(t, parser.DefaultSheetName, ss.Title())
	assert.Equal(t, []string{parser.DefaultSheetName}, ss.WorksheetNames())

	ws, err := ss.GetFirstWorksheet()
	require.NoError(t, err)
	records, err := ws.GetDataAsDict(1)
	require.NoError(t, err)
	assert.Equal(t, []models.Record{{"Name": models.Text("John"), "Age": models.Number(25), "City": models.Text("Moscow")}}, records)
}

func TestLoad_XLSXTitleAndNamedRanges(t *testing.T) {
	data := workbookBytes(t, "Q3 Orders")

	ss, err := Load(data, parser.FormatXLSX, quiet())
	require.NoError(t, err)
	assert.Equal(t, "Q3 Orders", ss.Title())
	r, ok := ss.NamedRange("Quantities")
	require.True(t, ok)
	assert.Equal(t, "Orders!B2:B3", r.Address())

	opts := quiet()
	opts.Title = "Override"
	opts.IncludeNamedRanges = new(bool)
	ss, err = Load(data, parser.FormatXLSX, opts)
	require.NoError(t, err)
	assert.Equal(t, "Override", ss.Title())
	assert.Empty(t, ss.NamedRanges())
}

func TestLoad_XLSXTitleFallsBackToFirstSheet(t *testing.T) {
	ss, err := Load(workbookBytes(t, ""), parser.FormatXLSX, quiet())
	require.NoError(t, err)
	assert.Equal(t, "Orders", ss.Title())
}

func TestLoad_Failures(t *testing.T) {
	_, err := Load([]byte("a,b"), parser.Format("ods"), quiet())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	ss, err := Load([]byte("not a zip"), parser.FormatXLSX, quiet())
	assert.Nil(t, ss)
	assert.ErrorIs(t, err, parser.ErrContainerFormat)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, parser.FormatXLSX, le.Format)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "people.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Name;Age\nAnn;40\n"), 0o644))
	opts := quiet()
	opts.CSV.Delimiter = ';'
	ss, err := LoadFile(csvPath, opts)
	require.NoError(t, err)
	assert.Equal(t, "people", ss.Title())
	ws, err := ss.GetWorksheet(parser.DefaultSheetName)
	require.NoError(t, err)
	assert.Equal(t, 2, ws.ColumnCount())

	tsvPath := filepath.Join(dir, "scores.tsv")
	require.NoError(t, os.WriteFile(tsvPath, []byte("a\tb\n1\t2\n"), 0o644))
	ss, err = LoadFile(tsvPath, quiet())
	require.NoError(t, err)
	ws, err = ss.GetFirstWorksheet()
	require.NoError(t, err)
	assert.Equal(t, 2, ws.ColumnCount())

	xlsxPath := filepath.Join(dir, "orders.xlsx")
	require.NoError(t, newWorkbook(t, "").SaveAs(xlsxPath))
	ss, err = LoadFile(xlsxPath, quiet())
	require.NoError(t, err)
	assert.Equal(t, []string{"Orders"}, ss.WorksheetNames())

	_, err = LoadFile(filepath.Join(dir, "missing.csv"), quiet())
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, err = LoadFile(filepath.Join(dir, "book.ods"), quiet())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    parser.Format
		wantErr bool
	}{
		{"a.csv", parser.FormatCSV, false},
		{"a.TSV", parser.FormatCSV, false},
		{"dir/a.txt", parser.FormatCSV, false},
		{"a.XLSX", parser.FormatXLSX, false},
		{"a.xls", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnsupportedFormat, tt.path)
			continue
		}
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestLoadCSVString(t *testing.T) {
	ss, err := LoadCSVString("x,y\n1,true\n", "Inline")
	require.NoError(t, err)
	assert.Equal(t, "Inline", ss.Title())

	ws, err := ss.GetWorksheet("Inline")
	require.NoError(t, err)
	c, err := ws.GetCellByAddress("B2")
	require.NoError(t, err)
	assert.Equal(t, models.Bool(true), c.Value())

	_, err = LoadCSVString("a,\"b\n", "Broken")
	assert.ErrorIs(t, err, parser.ErrParse)
}

type stubFetcher struct {
	data []byte
	err  error

	locator string
	format  parser.Format
}

func (s *stubFetcher) Fetch(_ context.Context, locator string, format parser.Format) ([]byte, error) {
	s.locator, s.format = locator, format
	return s.data, s.err
}

func TestLoadURL(t *testing.T) {
	const url = "https://docs.google.com/spreadsheets/d/abc/edit"
	f := &stubFetcher{data: workbookBytes(t, "Remote")}

	opts := quiet()
	opts.Format = parser.FormatXLSX
	ss, err := LoadURL(context.Background(), f, url, opts)
	require.NoError(t, err)
	assert.Equal(t, url, f.locator)
	assert.Equal(t, parser.FormatXLSX, f.format)
	assert.Equal(t, "Remote", ss.Title())
	assert.Equal(t, url, ss.URL())

	f = &stubFetcher{data: []byte("a\n1\n")}
	ss, err = LoadURL(context.Background(), f, url, quiet())
	require.NoError(t, err)
	assert.Equal(t, parser.FormatCSV, f.format)
	assert.Equal(t, 2, ss.Worksheets()[0].RowCount())

	boom := errors.New("boom")
	_, err = LoadURL(context.Background(), &stubFetcher{err: boom}, url, quiet())
	assert.ErrorIs(t, err, boom)
}
