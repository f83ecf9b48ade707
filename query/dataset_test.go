package query

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vegasq/tyr/output"
	"github.com/vegasq/tyr/table"
)

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func testDataset(t *testing.T) *Dataset {
	t.Helper()
	s, err := table.NewSeries("formula", table.String, []any{"=1+2", nil, "ok"})
	require.NoError(t, err)
	n, err := table.NewSeries("n", table.Int64, []any{int64(-1), int64(0), nil})
	require.NoError(t, err)
	tbl, err := table.New(s, n)
	require.NoError(t, err)
	return &Dataset{Table: tbl}
}

func TestDataset_ToCSV(t *testing.T) {
	out, err := testDataset(t).ToCSV()
	require.NoError(t, err)
	assert.Equal(t, "formula,n\n=1+2,-1\n,0\nok,\n", out)
}

func TestDataset_WriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, testDataset(t).WriteCSV(&buf, output.WithFormulaEscaping()))
	assert.Equal(t, "formula,n\n'=1+2,-1\n,0\nok,\n", buf.String())

	err := testDataset(t).WriteCSV(failingWriter{})
	assert.ErrorIs(t, err, ErrSerialization)
	assert.Contains(t, err.Error(), "disk full")
}
