package loader

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/parquet-go/parquet-go"
)

// ErrNotParquet is returned when storage details are requested for content
// that is not Parquet.
var ErrNotParquet = errors.New("not parquet content")

// ParquetColumn describes how one leaf column is stored in a Parquet file.
type ParquetColumn struct {
	// Name uses dot notation for nested fields, e.g. "address.street".
	Name         string
	PhysicalType string
	LogicalType  string
	Repetition   string
}

// ParquetColumns lists the leaf columns of a Parquet file in schema order.
func ParquetColumns(data []byte) ([]ParquetColumn, error) {
	if !bytes.HasPrefix(data, parquetMagic) {
		return nil, ErrNotParquet
	}
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: parquet: %w", ErrMalformed, err)
	}

	var cols []ParquetColumn
	for _, field := range f.Schema().Fields() {
		cols = appendLeaves(cols, field, "", false)
	}
	return cols, nil
}

// appendLeaves walks field depth first. Groups contribute no entry of their
// own; a repeated group marks every leaf beneath it repeated.
func appendLeaves(cols []ParquetColumn, field parquet.Field, prefix string, repeated bool) []ParquetColumn {
	name := field.Name()
	if prefix != "" {
		name = prefix + "." + name
	}
	repeated = repeated || field.Repeated()

	if children := field.Fields(); len(children) > 0 {
		for _, child := range children {
			cols = appendLeaves(cols, child, name, repeated)
		}
		return cols
	}

	col := ParquetColumn{
		Name:         name,
		PhysicalType: physicalType(field),
		Repetition:   "required",
	}
	if t := field.Type(); t != nil {
		if lt := t.LogicalType(); lt != nil {
			col.LogicalType = lt.String()
		}
	}
	switch {
	case repeated:
		col.Repetition = "repeated"
	case field.Optional():
		col.Repetition = "optional"
	}
	return append(cols, col)
}

func physicalType(field parquet.Field) string {
	if field.Type() == nil {
		return "GROUP"
	}
	switch field.Type().Kind() {
	case parquet.Boolean:
		return "BOOLEAN"
	case parquet.Int32:
		return "INT32"
	case parquet.Int64:
		return "INT64"
	case parquet.Int96:
		return "INT96"
	case parquet.Float:
		return "FLOAT"
	case parquet.Double:
		return "DOUBLE"
	case parquet.ByteArray:
		return "BYTE_ARRAY"
	case parquet.FixedLenByteArray:
		return "FIXED_LEN_BYTE_ARRAY"
	}
	return "UNKNOWN"
}
