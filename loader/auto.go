package loader

import (
	"context"

	"github.com/vegasq/tyr/source"
	"github.com/vegasq/tyr/table"
)

// Auto detects compression and format and delegates to the matching
// loader.
type Auto struct {
	csv      CSVLoader
	parquet  ParquetLoader
	maxBytes int64
}

// Option configures an Auto loader.
type Option func(*Auto)

// WithInferRows sets the number of CSV rows sampled for column types.
func WithInferRows(n int) Option {
	return func(a *Auto) { a.csv.InferRows = n }
}

// WithDelimiter fixes the CSV delimiter instead of sniffing it.
func WithDelimiter(r rune) Option {
	return func(a *Auto) { a.csv.Delimiter = r }
}

// WithMaxBytes bounds decompressed content. Zero means no limit.
func WithMaxBytes(n int64) Option {
	return func(a *Auto) { a.maxBytes = n }
}

// NewAuto returns a loader with default CSV settings.
func NewAuto(opts ...Option) *Auto {
	a := &Auto{csv: CSVLoader{InferRows: DefaultInferRows}}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load decompresses c if needed and parses it as Parquet, TSV or CSV.
func (a *Auto) Load(ctx context.Context, c *source.Content) (*table.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	plain, err := a.decompress(c)
	if err != nil {
		return nil, err
	}

	switch DetectFormat(TrimCompressionSuffix(c.Source), c.MediaType, plain.Data) {
	case FormatParquet:
		return a.parquet.Load(ctx, plain)
	case FormatTSV:
		l := a.csv
		if l.Delimiter == 0 {
			l.Delimiter = '\t'
		}
		return l.Load(ctx, plain)
	default:
		return a.csv.Load(ctx, plain)
	}
}

// ParquetColumns decompresses c if needed and lists its Parquet storage
// columns. Content in any other format yields ErrNotParquet.
func (a *Auto) ParquetColumns(c *source.Content) ([]ParquetColumn, error) {
	plain, err := a.decompress(c)
	if err != nil {
		return nil, err
	}
	return ParquetColumns(plain.Data)
}

func (a *Auto) decompress(c *source.Content) (*source.Content, error) {
	data, err := Decompress(DetectCompression(c.Source, c.Encoding, c.Data), c.Data, a.maxBytes)
	if err != nil {
		return nil, err
	}
	return &source.Content{
		Source:    c.Source,
		Data:      data,
		MediaType: c.MediaType,
	}, nil
}
