package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DataType is the logical type of a Series.
type DataType int

const (
	Null DataType = iota
	Bool
	Int64
	Float64
	String
)

func (d DataType) String() string {
	switch d {
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Int64:
		return "int64"
	case Float64:
		return "float64"
	case String:
		return "string"
	default:
		return fmt.Sprintf("DataType(%d)", int(d))
	}
}

// ParseDataType maps a SQL type name, as written in CAST, to a DataType.
func ParseDataType(name string) (DataType, bool) {
	switch strings.ToUpper(name) {
	case "BOOL", "BOOLEAN":
		return Bool, true
	case "INT", "INTEGER", "BIGINT", "SMALLINT", "TINYINT", "INT64", "LONG":
		return Int64, true
	case "FLOAT", "DOUBLE", "REAL", "DECIMAL", "NUMERIC", "FLOAT64":
		return Float64, true
	case "TEXT", "VARCHAR", "CHAR", "STRING", "UTF8":
		return String, true
	}
	return Null, false
}

// TypeOf returns the DataType of a normalized value.
func TypeOf(v any) DataType {
	switch v.(type) {
	case bool:
		return Bool
	case int64:
		return Int64
	case float64:
		return Float64
	case string:
		return String
	default:
		return Null
	}
}

// normalize converts Go scalars to the engine's value set:
// nil, bool, int64, float64 or string.
func normalize(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, true
	case bool, int64, float64, string:
		return val, true
	case int:
		return int64(val), true
	case int8:
		return int64(val), true
	case int16:
		return int64(val), true
	case int32:
		return int64(val), true
	case uint:
		return int64(val), true
	case uint8:
		return int64(val), true
	case uint16:
		return int64(val), true
	case uint32:
		return int64(val), true
	case uint64:
		if val > math.MaxInt64 {
			return float64(val), true
		}
		return int64(val), true
	case float32:
		return float64(val), true
	case []byte:
		return string(val), true
	case fmt.Stringer:
		return val.String(), true
	default:
		return nil, false
	}
}

// FormatValue renders a value the way it is written to CSV. Null renders
// as the empty string.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return formatFloat(val)
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

// formatFloat returns the shortest representation that parses back to f.
// Integral values keep a ".0" suffix so they are read back as floats.
func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if f == math.Trunc(f) && abs < 1e15 {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
