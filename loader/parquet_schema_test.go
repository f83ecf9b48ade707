package loader

import (
	"bytes"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/tyr/source"
)

type address struct {
	City   string `parquet:"city"`
	Street string `parquet:"street"`
}

type customer struct {
	Address  address  `parquet:"address"`
	ID       int64    `parquet:"id"`
	Nickname *string  `parquet:"nickname,optional"`
	Tags     []string `parquet:"tags"`
}

func TestParquetColumns(t *testing.T) {
	nick := "al"
	var buf bytes.Buffer
	w := parquet.NewGenericWriter[customer](&buf)
	_, err := w.Write([]customer{
		{Address: address{City: "Oslo", Street: "Main"}, ID: 1, Nickname: &nick, Tags: []string{"a", "b"}},
		{Address: address{City: "Bergen", Street: "Side"}, ID: 2},
	})
	require.NoError(t, err)
	require.NoError(t, w.Close())

	cols, err := ParquetColumns(buf.Bytes())
	require.NoError(t, err)

	type leaf struct{ name, physical, repetition string }
	got := make([]leaf, len(cols))
	for i, c := range cols {
		got[i] = leaf{c.Name, c.PhysicalType, c.Repetition}
	}
	assert.Equal(t, []leaf{
		{"address.city", "BYTE_ARRAY", "required"},
		{"address.street", "BYTE_ARRAY", "required"},
		{"id", "INT64", "required"},
		{"nickname", "BYTE_ARRAY", "optional"},
		{"tags", "BYTE_ARRAY", "repeated"},
	}, got)
	assert.Equal(t, "STRING", cols[0].LogicalType)
}

func TestParquetColumns_Errors(t *testing.T) {
	_, err := ParquetColumns([]byte("id,name\n1,a\n"))
	assert.ErrorIs(t, err, ErrNotParquet)

	_, err = ParquetColumns([]byte("PAR1 truncated"))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestAuto_ParquetColumns(t *testing.T) {
	data := parquetBytes(t, people)
	a := NewAuto()

	cols, err := a.ParquetColumns(&source.Content{Source: "people.parquet.zst", Data: zstdBytes(t, data)})
	require.NoError(t, err)
	require.Len(t, cols, 5)
	assert.Equal(t, "age", cols[1].Name)
	assert.Equal(t, "INT32", cols[1].PhysicalType)

	_, err = a.ParquetColumns(&source.Content{Source: "people.csv", Data: []byte(peopleCSV)})
	assert.ErrorIs(t, err, ErrNotParquet)
}
