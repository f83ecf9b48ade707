package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/tyr/source"
	"github.com/vegasq/tyr/table"
)

// ParquetLoader reads Apache Parquet content. Columns follow the file's
// top-level schema order and take the narrowest table type that holds
// their values.
type ParquetLoader struct{}

// Load decodes every row of c.Data.
func (ParquetLoader) Load(ctx context.Context, c *source.Content) (*table.Table, error) {
	f, err := parquet.OpenFile(bytes.NewReader(c.Data), int64(len(c.Data)))
	if err != nil {
		return nil, fmt.Errorf("%w: parquet: %w", ErrMalformed, err)
	}

	fields := f.Schema().Fields()
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = field.Name()
	}

	columns := make([][]any, len(names))
	reader := parquet.NewReader(f)
	defer func() { _ = reader.Close() }()

	for n := 0; ; n++ {
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := make(map[string]any, len(names))
		if err := reader.Read(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%w: parquet row %d: %w", ErrMalformed, n+1, err)
		}
		for i, name := range names {
			columns[i] = append(columns[i], row[name])
		}
	}

	series := make([]*table.Series, len(names))
	for i, name := range names {
		series[i] = table.InferSeries(name, columns[i])
	}
	t, err := table.New(series...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return t, nil
}
