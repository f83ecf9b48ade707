package query

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vegasq/tyr/output"
	"github.com/vegasq/tyr/table"
)

// Dataset is the result of a query. It embeds the result table, so every
// Table method (including Lazy for further processing) is available. The
// caller owns it.
type Dataset struct {
	*table.Table
}

// ToCSV renders the dataset as CSV with a header row.
func (d *Dataset) ToCSV() (string, error) {
	var buf bytes.Buffer
	if err := d.WriteCSV(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteCSV writes the dataset to w as CSV.
func (d *Dataset) WriteCSV(w io.Writer, opts ...output.Option) error {
	if err := output.NewCSVWriter(w, opts...).Format(d.Table); err != nil {
		return fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return nil
}
