package table

import "fmt"

// Series is a named, typed column of values. A Series is never mutated
// after construction; operations return new Series.
type Series struct {
	name   string
	dtype  DataType
	values []any
}

// NewSeries builds a Series of the given type. Every non-nil value must
// already have the Go type matching dtype (int64, float64, string or bool);
// ints are widened to int64 and float32 to float64.
func NewSeries(name string, dtype DataType, values []any) (*Series, error) {
	out := make([]any, len(values))
	for i, v := range values {
		nv, ok := normalize(v)
		if !ok {
			return nil, fmt.Errorf("%w: column %q row %d: unsupported value %T", ErrTypeMismatch, name, i, v)
		}
		if nv != nil {
			if dtype == Float64 {
				if iv, isInt := nv.(int64); isInt {
					nv = float64(iv)
				}
			}
			if got := TypeOf(nv); got != dtype {
				return nil, fmt.Errorf("%w: column %q row %d: %s value in %s column", ErrTypeMismatch, name, i, got, dtype)
			}
		}
		out[i] = nv
	}
	return &Series{name: name, dtype: dtype, values: out}, nil
}

// InferSeries builds a Series whose type is inferred from its values.
// Integers mixed with floats widen to Float64; any other mix of types
// falls back to String with every value rendered as text. A series of
// only nulls has type Null.
func InferSeries(name string, values []any) *Series {
	out := make([]any, len(values))
	dtype := Null
	mixed := false
	for i, v := range values {
		nv, ok := normalize(v)
		if !ok {
			nv = fmt.Sprint(v)
		}
		out[i] = nv
		if nv == nil {
			continue
		}
		t := TypeOf(nv)
		switch {
		case dtype == Null || dtype == t:
			dtype = t
		case (dtype == Int64 && t == Float64) || (dtype == Float64 && t == Int64):
			dtype = Float64
		default:
			mixed = true
		}
	}

	switch {
	case mixed:
		dtype = String
		for i, v := range out {
			if v != nil {
				out[i] = FormatValue(v)
			}
		}
	case dtype == Float64:
		for i, v := range out {
			if iv, ok := v.(int64); ok {
				out[i] = float64(iv)
			}
		}
	}
	return &Series{name: name, dtype: dtype, values: out}
}

// Name returns the series name.
func (s *Series) Name() string { return s.name }

// DataType returns the series type.
func (s *Series) DataType() DataType { return s.dtype }

// Len returns the number of values.
func (s *Series) Len() int { return len(s.values) }

// Value returns the i-th value.
func (s *Series) Value(i int) any { return s.values[i] }

// Values returns a copy of the values.
func (s *Series) Values() []any {
	out := make([]any, len(s.values))
	copy(out, s.values)
	return out
}

// NullCount returns the number of null values.
func (s *Series) NullCount() int {
	n := 0
	for _, v := range s.values {
		if v == nil {
			n++
		}
	}
	return n
}

// Rename returns the same data under a new name.
func (s *Series) Rename(name string) *Series {
	return &Series{name: name, dtype: s.dtype, values: s.values}
}

// Take gathers the values at the given indices.
func (s *Series) Take(indices []int) *Series {
	out := make([]any, len(indices))
	for i, idx := range indices {
		out[i] = s.values[idx]
	}
	return &Series{name: s.name, dtype: s.dtype, values: out}
}

// Slice returns at most length values starting at offset. Out of range
// bounds are clamped.
func (s *Series) Slice(offset, length int) *Series {
	lo, hi := clampRange(len(s.values), offset, length)
	return &Series{name: s.name, dtype: s.dtype, values: s.values[lo:hi:hi]}
}

func clampRange(n, offset, length int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset > n {
		offset = n
	}
	if length < 0 || length > n-offset {
		length = n - offset
	}
	return offset, offset + length
}
