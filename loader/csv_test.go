package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/tyr/source"
	"github.com/vegasq/tyr/table"
)

func loadCSV(t *testing.T, l *CSVLoader, data string) (*table.Table, error) {
	t.Helper()
	return l.Load(context.Background(), &source.Content{Source: "test.csv", Data: []byte(data)})
}

func TestCSVLoader_Inference(t *testing.T) {
	data := "name,age,score,active,note\n" +
		"Alice,30,1.5,true,\n" +
		"Bob,,2,false,x\n" +
		"Carol,41,,TRUE,7\n"

	tbl, err := loadCSV(t, NewCSVLoader(), data)
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.Height())
	assert.Equal(t, []table.Field{
		{Name: "name", Type: table.String},
		{Name: "age", Type: table.Int64},
		{Name: "score", Type: table.Float64},
		{Name: "active", Type: table.Bool},
		{Name: "note", Type: table.String},
	}, tbl.Schema())

	age, err := tbl.Column("age")
	require.NoError(t, err)
	assert.Equal(t, []any{int64(30), nil, int64(41)}, age.Values())

	score, err := tbl.Column("score")
	require.NoError(t, err)
	assert.Equal(t, []any{1.5, 2.0, nil}, score.Values())

	note, err := tbl.Column("note")
	require.NoError(t, err)
	assert.Equal(t, []any{nil, "x", "7"}, note.Values())
}

func TestCSVLoader_AllEmptyColumnIsString(t *testing.T) {
	tbl, err := loadCSV(t, NewCSVLoader(), "a,b\n1,\n2,\n")
	require.NoError(t, err)
	col, err := tbl.Column("b")
	require.NoError(t, err)
	assert.Equal(t, table.String, col.DataType())
	assert.Equal(t, 2, col.NullCount())
}

func TestCSVLoader_HeaderOnly(t *testing.T) {
	tbl, err := loadCSV(t, NewCSVLoader(), "name,age\n")
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Height())
	assert.Equal(t, []string{"name", "age"}, tbl.Names())
}

func TestCSVLoader_BlankHeaderNames(t *testing.T) {
	tbl, err := loadCSV(t, NewCSVLoader(), "id,,x\n1,2,3\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "column_2", "x"}, tbl.Names())
}

func TestCSVLoader_BOM(t *testing.T) {
	tbl, err := loadCSV(t, NewCSVLoader(), "\xef\xbb\xbfname\nAlice\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, tbl.Names())
}

func TestCSVLoader_Delimiters(t *testing.T) {
	tests := []struct {
		name  string
		delim rune
		data  string
	}{
		{"sniff semicolon", 0, "a;b\n1;2\n"},
		{"sniff tab", 0, "a\tb\n1\t2\n"},
		{"sniff pipe", 0, "a|b\n1|2\n"},
		{"sniff ignores quoted", 0, "\"a;x\",b\n1,2\n"},
		{"explicit", ';', "a;b\n1;2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := loadCSV(t, &CSVLoader{Delimiter: tt.delim}, tt.data)
			require.NoError(t, err)
			assert.Equal(t, 2, tbl.Width())
			v, err := tbl.Value("b", 0)
			require.NoError(t, err)
			assert.Equal(t, int64(2), v)
		})
	}
}

func TestCSVLoader_Errors(t *testing.T) {
	tests := []struct {
		name    string
		loader  *CSVLoader
		data    string
		wantErr error
		wantMsg string
	}{
		{"empty", NewCSVLoader(), "", ErrNoHeader, ""},
		{"ragged row", NewCSVLoader(), "a,b\n1,2\n3\n", ErrMalformed, ""},
		{"bad quote", NewCSVLoader(), "a,b\n\"1,2\n", ErrMalformed, ""},
		{"duplicate header", NewCSVLoader(), "a,a\n1,2\n", ErrMalformed, ""},
		{
			name:    "value outside inferred type",
			loader:  &CSVLoader{InferRows: 2},
			data:    "id,n\n1,10\n2,20\n3,abc\n",
			wantErr: ErrInvalidValue,
			wantMsg: `column "n" row 3`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadCSV(t, tt.loader, tt.data)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.wantMsg != "" {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestCSVLoader_InferAllRows(t *testing.T) {
	tbl, err := loadCSV(t, &CSVLoader{InferRows: -1}, "n\n1\n2\nabc\n")
	require.NoError(t, err)
	col, err := tbl.Column("n")
	require.NoError(t, err)
	assert.Equal(t, table.String, col.DataType())
	assert.Equal(t, []any{"1", "2", "abc"}, col.Values())
}

func TestCSVLoader_NumericWidening(t *testing.T) {
	tbl, err := loadCSV(t, NewCSVLoader(), "n\n1\n2.5\n1e3\n")
	require.NoError(t, err)
	col, err := tbl.Column("n")
	require.NoError(t, err)
	assert.Equal(t, table.Float64, col.DataType())
	assert.Equal(t, []any{1.0, 2.5, 1000.0}, col.Values())
}

func TestCSVLoader_NotNumeric(t *testing.T) {
	tbl, err := loadCSV(t, NewCSVLoader(), "n\nInf\nNaN\n0x10\n")
	require.NoError(t, err)
	col, err := tbl.Column("n")
	require.NoError(t, err)
	assert.Equal(t, table.String, col.DataType())
}

func TestCSVLoader_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var data []byte
	data = append(data, "n\n"...)
	for i := 0; i < 5000; i++ {
		data = append(data, "1\n"...)
	}
	_, err := NewCSVLoader().Load(ctx, &source.Content{Data: data})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSniffDelimiter(t *testing.T) {
	tests := map[string]rune{
		"":             ',',
		"a":            ',',
		"a,b;c,d":      ',',
		"a;b;c\n1,2,3": ';',
		"a\tb":         '\t',
		"a|b|c":        '|',
	}
	for in, want := range tests {
		assert.Equal(t, want, SniffDelimiter([]byte(in)), in)
	}
}
