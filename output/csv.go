package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/vegasq/tyr/table"
)

// CSVWriter outputs a table as CSV with a header row
type CSVWriter struct {
	writer io.Writer
	opts   options
}

// NewCSVWriter creates a new CSV writer
func NewCSVWriter(w io.Writer, opts ...Option) *CSVWriter {
	c := &CSVWriter{writer: w}
	for _, opt := range opts {
		opt(&c.opts)
	}
	return c
}

// SetOutput sets the output writer
func (c *CSVWriter) SetOutput(w io.Writer) {
	c.writer = w
}

// Format writes the header and then every row in table column order.
// A table with no columns produces no output.
func (c *CSVWriter) Format(t *table.Table) error {
	csvWriter := csv.NewWriter(c.writer)

	if t.Width() > 0 {
		if err := csvWriter.Write(t.Names()); err != nil {
			return err
		}
	}

	columns := t.Columns()
	record := make([]string, len(columns))
	for i := 0; i < t.Height(); i++ {
		for j, col := range columns {
			record[j] = c.formatValue(col.Value(i))
		}
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return nil
}

// formatValue renders a cell; nulls are empty.
func (c *CSVWriter) formatValue(v any) string {
	if v == nil {
		return ""
	}
	s := table.FormatValue(v)
	if _, isString := v.(string); isString && c.opts.escapeFormulas {
		return escapeFormula(s)
	}
	return s
}

// escapeFormula defuses cells that spreadsheet applications would
// execute.
func escapeFormula(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '\n', '|':
		return "'" + strings.ReplaceAll(s, "'", "''")
	}
	return s
}
