package table

import (
	"fmt"
	"math"
)

// Math Functions. Integer inputs keep integer results where the result is
// exact (ABS, SIGN, MOD, FLOOR, CEIL, ROUND without decimals).

func numericArg(name string, v any) (any, error) {
	switch v.(type) {
	case int64, float64:
		return v, nil
	default:
		return nil, fmt.Errorf("%s: %w: expected a number, got %s", name, ErrTypeMismatch, TypeOf(v))
	}
}

// AbsFunc returns the absolute value of a number
type AbsFunc struct{}

func (f *AbsFunc) Name() string  { return "ABS" }
func (f *AbsFunc) MinArity() int { return 1 }
func (f *AbsFunc) MaxArity() int { return 1 }
func (f *AbsFunc) Evaluate(args []any) (any, error) {
	if args[0] == nil {
		return nil, nil
	}
	v, err := numericArg("ABS", args[0])
	if err != nil {
		return nil, err
	}
	if i, ok := v.(int64); ok {
		if i < 0 {
			return -i, nil
		}
		return i, nil
	}
	return math.Abs(v.(float64)), nil
}

// RoundFunc rounds a number to the specified number of decimal places
type RoundFunc struct{}

func (f *RoundFunc) Name() string  { return "ROUND" }
func (f *RoundFunc) MinArity() int { return 1 }
func (f *RoundFunc) MaxArity() int { return 2 }
func (f *RoundFunc) Evaluate(args []any) (any, error) {
	if hasNull(args) {
		return nil, nil
	}
	v, err := numericArg("ROUND", args[0])
	if err != nil {
		return nil, err
	}

	// Default to 0 decimal places
	decimals := int64(0)
	if len(args) == 2 {
		decimals, err = valueToInt(args[1])
		if err != nil {
			return nil, fmt.Errorf("ROUND: decimals argument: %w", err)
		}
	}

	if i, ok := v.(int64); ok && decimals >= 0 {
		return i, nil
	}
	num, _ := toFloat64(v)
	multiplier := math.Pow(10, float64(decimals))
	return math.Round(num*multiplier) / multiplier, nil
}

// FloorFunc returns the largest integer less than or equal to a number
type FloorFunc struct{}

func (f *FloorFunc) Name() string  { return "FLOOR" }
func (f *FloorFunc) MinArity() int { return 1 }
func (f *FloorFunc) MaxArity() int { return 1 }
func (f *FloorFunc) Evaluate(args []any) (any, error) {
	return roundingFunc("FLOOR", args[0], math.Floor)
}

// CeilFunc returns the smallest integer greater than or equal to a number
type CeilFunc struct{}

func (f *CeilFunc) Name() string  { return "CEIL" }
func (f *CeilFunc) MinArity() int { return 1 }
func (f *CeilFunc) MaxArity() int { return 1 }
func (f *CeilFunc) Evaluate(args []any) (any, error) {
	return roundingFunc("CEIL", args[0], math.Ceil)
}

func roundingFunc(name string, arg any, fn func(float64) float64) (any, error) {
	if arg == nil {
		return nil, nil
	}
	v, err := numericArg(name, arg)
	if err != nil {
		return nil, err
	}
	if i, ok := v.(int64); ok {
		return i, nil
	}
	return fn(v.(float64)), nil
}

// ModFunc returns the remainder of a division
type ModFunc struct{}

func (f *ModFunc) Name() string  { return "MOD" }
func (f *ModFunc) MinArity() int { return 2 }
func (f *ModFunc) MaxArity() int { return 2 }
func (f *ModFunc) Evaluate(args []any) (any, error) {
	v, err := arithmetic(OpMod, args[0], args[1])
	if err != nil {
		return nil, fmt.Errorf("MOD: %w", err)
	}
	return v, nil
}

// SqrtFunc returns the square root of a non-negative number
type SqrtFunc struct{}

func (f *SqrtFunc) Name() string  { return "SQRT" }
func (f *SqrtFunc) MinArity() int { return 1 }
func (f *SqrtFunc) MaxArity() int { return 1 }
func (f *SqrtFunc) Evaluate(args []any) (any, error) {
	if args[0] == nil {
		return nil, nil
	}
	v, err := numericArg("SQRT", args[0])
	if err != nil {
		return nil, err
	}
	num, _ := toFloat64(v)
	if num < 0 {
		return nil, fmt.Errorf("SQRT: negative argument %v", num)
	}
	return math.Sqrt(num), nil
}

// PowerFunc raises a number to a power
type PowerFunc struct{}

func (f *PowerFunc) Name() string  { return "POWER" }
func (f *PowerFunc) MinArity() int { return 2 }
func (f *PowerFunc) MaxArity() int { return 2 }
func (f *PowerFunc) Evaluate(args []any) (any, error) {
	if hasNull(args) {
		return nil, nil
	}
	base, err := numericArg("POWER", args[0])
	if err != nil {
		return nil, err
	}
	exp, err := numericArg("POWER", args[1])
	if err != nil {
		return nil, err
	}
	b, _ := toFloat64(base)
	e, _ := toFloat64(exp)
	return math.Pow(b, e), nil
}

// SignFunc returns -1, 0 or 1 according to the sign of a number
type SignFunc struct{}

func (f *SignFunc) Name() string  { return "SIGN" }
func (f *SignFunc) MinArity() int { return 1 }
func (f *SignFunc) MaxArity() int { return 1 }
func (f *SignFunc) Evaluate(args []any) (any, error) {
	if args[0] == nil {
		return nil, nil
	}
	v, err := numericArg("SIGN", args[0])
	if err != nil {
		return nil, err
	}
	num, _ := toFloat64(v)
	switch {
	case num > 0:
		return int64(1), nil
	case num < 0:
		return int64(-1), nil
	default:
		return int64(0), nil
	}
}
