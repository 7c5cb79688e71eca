package parser

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/Tsunami43/gsparse-go/pkg/gsparse/models"
)

func parseCSV(t *testing.T, opts CSVOptions, data string) *models.Worksheet {
	t.Helper()
	sheets, err := NewCSVParser(opts).Parse([]byte(data))
	require.NoError(t, err)
	require.Len(t, sheets, 1)
	return sheets[0]
}

func TestCSVParser_Dictionary(t *testing.T) {
	ws := parseCSV(t, CSVOptions{}, "Name,Age,City\nJohn,25,Moscow\nMary,30,St. Petersburg")

	assert.Equal(t, DefaultSheetName, ws.Name())
	assert.Equal(t, 3, ws.RowCount())
	assert.Equal(t, 3, ws.ColumnCount())

	records, err := ws.GetDataAsDict(1)
	require.NoError(t, err)
	assert.Equal(t, []models.Record{
		{"Name": models.Text("John"), "Age": models.Number(25), "City": models.Text("Moscow")},
		{"Name": models.Text("Mary"), "Age": models.Number(30), "City": models.Text("St. Petersburg")},
	}, records)
}

func TestCSVParser_RaggedRowsArePadded(t *testing.T) {
	ws := parseCSV(t, CSVOptions{SheetName: "Ragged"}, "a\nb,c,d\ne,f\n")

	assert.Equal(t, "Ragged", ws.Name())
	assert.Equal(t, 3, ws.RowCount())
	assert.Equal(t, 3, ws.ColumnCount())
	assert.Equal(t, [][]models.Value{
		{models.Text("a"), models.Empty(), models.Empty()},
		{models.Text("b"), models.Text("c"), models.Text("d")},
		{models.Text("e"), models.Text("f"), models.Empty()},
	}, ws.Rows())
}

func TestCSVParser_Quoting(t *testing.T) {
	data := "id,note\r\n1,\"a, b\"\r\n2,\"multi\r\nline\"\r\n3,\"say \"\"hi\"\"\"\r\n"
	ws := parseCSV(t, CSVOptions{}, data)

	require.Equal(t, 4, ws.RowCount())
	col := ws.Column(2)
	assert.Equal(t, models.Text("a, b"), col[1].Value())
	assert.Equal(t, models.Text("multi\nline"), col[2].Value())
	assert.Equal(t, models.Text(`say "hi"`), col[3].Value())
}

func TestCSVParser_TypingAndCleaning(t *testing.T) {
	ws := parseCSV(t, CSVOptions{}, " 42 ,TRUE,  ,1.5e2,0x10\n")

	assert.Equal(t, []models.Value{
		models.Number(42), models.Bool(true), models.Empty(), models.Number(150), models.Text("0x10"),
	}, ws.Rows()[0])

	keep := false
	raw := parseCSV(t, CSVOptions{TrimSpace: &keep}, " 42 ,  \n")
	assert.Equal(t, []models.Value{models.Text(" 42 "), models.Text("  ")}, raw.Rows()[0])
}

func TestCSVParser_Delimiter(t *testing.T) {
	ws := parseCSV(t, CSVOptions{Delimiter: ';'}, "a;b\n1,5;2\n")
	assert.Equal(t, []models.Value{models.Text("1,5"), models.Number(2)}, ws.Rows()[1])

	_, err := NewCSVParser(CSVOptions{Delimiter: '"'}).Parse([]byte("a"))
	assert.ErrorIs(t, err, ErrInvalidDelimiter)
}

func TestCSVParser_MalformedQuoting(t *testing.T) {
	_, err := NewCSVParser(CSVOptions{}).Parse([]byte("a,b\n1,\"unterminated\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrParse)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.GreaterOrEqual(t, pe.Line, 2)

	_, err = NewCSVParser(CSVOptions{}).Parse([]byte("a,b\"c\n"))
	assert.ErrorIs(t, err, ErrParse)
}

func TestCSVParser_Empty(t *testing.T) {
	ws := parseCSV(t, CSVOptions{}, "")
	assert.Equal(t, 0, ws.RowCount())
	assert.Equal(t, 0, ws.ColumnCount())
}

func TestCSVParser_ByteOrderMarks(t *testing.T) {
	ws := parseCSV(t, CSVOptions{}, "\xEF\xBB\xBFName,Age\nAnn,7\n")
	c, err := ws.GetCell(1, 1)
	require.NoError(t, err)
	assert.Equal(t, models.Text("Name"), c.Value())

	// "a,b\n1,2" as UTF-16LE with BOM.
	utf16 := []byte{0xFF, 0xFE}
	for _, r := range "a,b\n1,2" {
		utf16 = append(utf16, byte(r), 0)
	}
	sheets, err := NewCSVParser(CSVOptions{}).Parse(utf16)
	require.NoError(t, err)
	assert.Equal(t, [][]models.Value{
		{models.Text("a"), models.Text("b")},
		{models.Number(1), models.Number(2)},
	}, sheets[0].Rows())
}

func TestCSVParser_ExplicitEncoding(t *testing.T) {
	encoded, err := charmap.Windows1251.NewEncoder().String("Имя,Город\nИван,Москва\n")
	require.NoError(t, err)

	ws := parseCSV(t, CSVOptions{Encoding: "windows-1251"}, encoded)
	records, err := ws.GetDataAsDict(1)
	require.NoError(t, err)
	assert.Equal(t, []models.Record{{"Имя": models.Text("Иван"), "Город": models.Text("Москва")}}, records)

	_, err = NewCSVParser(CSVOptions{Encoding: "no-such-charset"}).Parse([]byte("a"))
	assert.ErrorIs(t, err, ErrEncodingDetection)
}

func TestCSVParser_DetectionBelowConfidence(t *testing.T) {
	encoded, err := charmap.Windows1251.NewEncoder().String("Имя,Город\nИван,Москва\n")
	require.NoError(t, err)

	_, err = NewCSVParser(CSVOptions{MinConfidence: 101}).Parse([]byte(encoded))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEncodingDetection)

	var de *EncodingDetectionError
	require.ErrorAs(t, err, &de)
	assert.LessOrEqual(t, de.Confidence, 100)
}

func TestCSVParser_DetectsLegacyCharset(t *testing.T) {
	text := strings.Repeat("Prénom,Ville,Remarque\nRené,Besançon,très élégant café crème\nAnaïs,Orléans,déjà vu à côté\n", 20)
	latin1, err := charmap.ISO8859_1.NewEncoder().String(text)
	require.NoError(t, err)
	require.False(t, utf8.ValidString(latin1))

	sheets, err := NewCSVParser(CSVOptions{MinConfidence: 1}).Parse([]byte(latin1))
	require.NoError(t, err)
	assert.Equal(t, 60, sheets[0].RowCount())
	for cell := range sheets[0].AllCells() {
		assert.True(t, utf8.ValidString(cell.Value().String()))
	}
}

func TestCSVParser_Idempotent(t *testing.T) {
	data := []byte("x,y\n1,true\n\"q, r\",\n")
	p := NewCSVParser(CSVOptions{})

	first, err := p.Parse(data)
	require.NoError(t, err)
	second, err := p.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCSVParser_ParseString(t *testing.T) {
	ws, err := NewCSVParser(CSVOptions{SheetName: "Lit"}).ParseString("\ufeffk,v\nx,1\n")
	require.NoError(t, err)
	assert.Equal(t, "Lit", ws.Name())
	c, err := ws.GetCellByAddress("A1")
	require.NoError(t, err)
	assert.Equal(t, models.Text("k"), c.Value())
}

func TestCSVParser_BlankLinesAreRows(t *testing.T) {
	ws := parseCSV(t, CSVOptions{}, "a,b\n\nc,d\n")
	assert.Equal(t, 3, ws.RowCount())
	c, err := ws.GetCellByAddress("A3")
	require.NoError(t, err)
	assert.Equal(t, models.Text("c"), c.Value())
	assert.Equal(t, []models.Value{models.Empty(), models.Empty()}, ws.Rows()[1])

	tests := []struct {
		name  string
		input string
		rows  int
		last  string
	}{
		{"leading blank line", "\na,b\n", 2, "A2"},
		{"quoted line break before blank line", "a,\"x\ny\"\n\nc,d\n", 3, "A3"},
		{"crlf", "a,b\r\n\r\nc,d\r\n", 3, "A3"},
		{"trailing blank line", "a,b\n\n", 2, "A1"},
		{"no final line break", "a,b\n\nc,d", 3, "A3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := parseCSV(t, CSVOptions{}, tt.input)
			assert.Equal(t, tt.rows, ws.RowCount())
			c, err := ws.GetCellByAddress(tt.last)
			require.NoError(t, err)
			assert.False(t, c.IsEmpty(), tt.last)
		})
	}
}

func TestCSVParser_QuoteCharacter(t *testing.T) {
	ws := parseCSV(t, CSVOptions{}, "'Name','Age','City'\n'John','25','Moscow, RU'\n'O'Brien','30','SPb'\n")
	assert.Equal(t, 3, ws.RowCount())
	assert.Equal(t, 3, ws.ColumnCount())
	assert.Equal(t, []models.Value{models.Text("John"), models.Number(25), models.Text("Moscow, RU")}, ws.Rows()[1])

	name, err := ws.GetCellByAddress("A3")
	require.NoError(t, err)
	assert.Equal(t, models.Text("O'Brien"), name.Value())

	ws = parseCSV(t, CSVOptions{Quote: '`'}, "id,note\n1,`say \"hi\", then go`\n")
	assert.Equal(t, []models.Value{models.Number(1), models.Text(`say "hi", then go`)}, ws.Rows()[1])

	_, err = NewCSVParser(CSVOptions{Delimiter: ';', Quote: ';'}).Parse([]byte("a;b"))
	assert.ErrorIs(t, err, ErrInvalidQuote)
}

func TestCSVParser_UnicodeEscapes(t *testing.T) {
	ws := parseCSV(t, CSVOptions{}, "Name,Age\n\\u0418\\u0432\\u0430\\u043d,25\n\\U0001F600 ok,30\n")

	c, err := ws.GetCell(2, 1)
	require.NoError(t, err)
	assert.Equal(t, models.Text("Иван"), c.Value())

	c, err = ws.GetCell(3, 1)
	require.NoError(t, err)
	assert.Equal(t, models.Text("😀 ok"), c.Value())

	keep := false
	raw := parseCSV(t, CSVOptions{TrimSpace: &keep}, "\\u0041\n")
	assert.Equal(t, models.Text(`\u0041`), raw.Rows()[0][0])
}

func TestDetectQuote(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		delimiter rune
		expected  rune
	}{
		{"double", "\"a\",\"b\"\n1,2\n", ',', '"'},
		{"single", "'a','b'\n'c',\"d\"\n", ',', '\''},
		{"backtick", "`a`;`b`\n", ';', '`'},
		{"padded fields", " 'a' , 'b' \n", ',', '\''},
		{"tie prefers double", "\"a\",'b'\n", ',', '"'},
		{"no quoting", "a,b\n1,2\n", ',', '"'},
		{"lone quote", "',b\n", ',', '"'},
		{"only first five lines", "a\nb\nc\nd\ne\n'f'\n", ',', '"'},
		{"empty", "", ',', '"'},
		{"default delimiter", "'a','b'\n", 0, '\''},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectQuote([]byte(tt.input), tt.delimiter))
		})
	}
}

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected rune
	}{
		{"comma", "a,b,c\n1,2,3\n", ','},
		{"semicolon", "a;b;c\n1,5;2,5;3\n", ';'},
		{"tab", "a\tb\n1\t2\n", '\t'},
		{"pipe", "a|b\n1|2\n", '|'},
		{"quoted commas", "a;b\n\"x,y,z\";2\n", ';'},
		{"single column", "a\nb\n", ','},
		{"empty", "", ','},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectDelimiter([]byte(tt.input)))
		})
	}
}
