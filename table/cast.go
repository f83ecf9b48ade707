package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// CastValue converts v to the given type. Null stays null.
func CastValue(v any, to DataType) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch to {
	case Null:
		return nil, nil
	case String:
		return FormatValue(v), nil
	case Int64:
		switch x := v.(type) {
		case int64:
			return x, nil
		case float64:
			if math.IsNaN(x) || math.IsInf(x, 0) || x >= math.MaxInt64 || x < math.MinInt64 {
				return nil, fmt.Errorf("%w: %v out of int64 range", ErrInvalidCast, x)
			}
			return int64(x), nil
		case bool:
			if x {
				return int64(1), nil
			}
			return int64(0), nil
		case string:
			s := strings.TrimSpace(x)
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return i, nil
			}
			if f, err := strconv.ParseFloat(s, 64); err == nil {
				return CastValue(f, Int64)
			}
			return nil, fmt.Errorf("%w: %q to int64", ErrInvalidCast, x)
		}
	case Float64:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int64:
			return float64(x), nil
		case bool:
			if x {
				return 1.0, nil
			}
			return 0.0, nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q to float64", ErrInvalidCast, x)
			}
			return f, nil
		}
	case Bool:
		switch x := v.(type) {
		case bool:
			return x, nil
		case int64:
			return x != 0, nil
		case float64:
			return x != 0, nil
		case string:
			if b, ok := parseBool(x); ok {
				return b, nil
			}
			return nil, fmt.Errorf("%w: %q to bool", ErrInvalidCast, x)
		}
	}
	return nil, fmt.Errorf("%w: %s to %s", ErrInvalidCast, TypeOf(v), to)
}

// parseBool accepts the spellings commonly found in CSV exports.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1":
		return true, true
	case "false", "f", "no", "n", "0":
		return false, true
	}
	return false, false
}
