// Package loader turns retrieved source content into tables.
//
// Auto is the entry point: it undoes any compression, picks a format from
// magic bytes, file name or media type, and hands off to CSVLoader or
// ParquetLoader.
package loader

import (
	"context"
	"errors"
	"strings"

	"github.com/vegasq/tyr/source"
	"github.com/vegasq/tyr/table"
)

var (
	// ErrNoHeader is returned for CSV content without a header row
	ErrNoHeader = errors.New("missing header row")

	// ErrMalformed is returned when content cannot be parsed in its detected format
	ErrMalformed = errors.New("malformed content")

	// ErrInvalidValue is returned when a CSV field does not parse as its column type
	ErrInvalidValue = errors.New("invalid value")

	// ErrTooLarge is returned when decompressed content exceeds the configured limit
	ErrTooLarge = errors.New("decompressed content exceeds size limit")
)

// Loader parses content into a table.
type Loader interface {
	Load(ctx context.Context, c *source.Content) (*table.Table, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, c *source.Content) (*table.Table, error)

func (f LoaderFunc) Load(ctx context.Context, c *source.Content) (*table.Table, error) {
	return f(ctx, c)
}

// Format is a supported content format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatTSV     Format = "tsv"
	FormatParquet Format = "parquet"
)

var parquetMagic = []byte("PAR1")

// DetectFormat picks the format of decompressed content. name is the
// source identifier with any compression suffix removed.
func DetectFormat(name, mediaType string, data []byte) Format {
	lower := strings.ToLower(name)
	switch {
	case len(data) >= 4 && string(data[:4]) == string(parquetMagic):
		return FormatParquet
	case strings.HasSuffix(lower, ".parquet") || strings.HasSuffix(lower, ".pq"):
		return FormatParquet
	case mediaType == "application/vnd.apache.parquet":
		return FormatParquet
	case strings.HasSuffix(lower, ".tsv") || strings.HasSuffix(lower, ".tab"):
		return FormatTSV
	case mediaType == "text/tab-separated-values":
		return FormatTSV
	default:
		return FormatCSV
	}
}
