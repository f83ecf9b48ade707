package table

import (
	"fmt"
	"strings"
	"sync"
)

// Function is a scalar function callable from SQL.
type Function interface {
	// Name returns the function name (case-insensitive)
	Name() string
	// MinArity returns the minimum number of arguments
	MinArity() int
	// MaxArity returns the maximum number of arguments (-1 for unlimited)
	MaxArity() int
	// Evaluate evaluates the function with the given arguments
	Evaluate(args []any) (any, error)
}

// FunctionRegistry manages function lookup and registration
type FunctionRegistry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewFunctionRegistry creates an empty registry.
func NewFunctionRegistry() *FunctionRegistry {
	return &FunctionRegistry{
		functions: make(map[string]Function),
	}
}

// Register registers a function, replacing any function of the same name.
func (r *FunctionRegistry) Register(f Function) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.functions[strings.ToUpper(f.Name())] = f
}

// Get retrieves a function by name (case-insensitive)
func (r *FunctionRegistry) Get(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, exists := r.functions[strings.ToUpper(name)]
	return f, exists
}

// Names returns the registered function names.
func (r *FunctionRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	return names
}

// Call builds a call expression after checking the argument count.
func (r *FunctionRegistry) Call(name string, args ...Expr) (*CallExpr, error) {
	f, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFunction, strings.ToUpper(name))
	}
	if len(args) < f.MinArity() || (f.MaxArity() >= 0 && len(args) > f.MaxArity()) {
		return nil, fmt.Errorf("%w: %s takes %s, got %d", ErrArity, f.Name(), arityString(f), len(args))
	}
	return &CallExpr{Func: f, Args: args}, nil
}

func arityString(f Function) string {
	switch {
	case f.MaxArity() < 0:
		return fmt.Sprintf("at least %d", f.MinArity())
	case f.MinArity() == f.MaxArity():
		return fmt.Sprintf("%d", f.MinArity())
	default:
		return fmt.Sprintf("%d to %d", f.MinArity(), f.MaxArity())
	}
}

var defaultRegistry = newDefaultRegistry()

// DefaultRegistry returns the registry used by Call.
func DefaultRegistry() *FunctionRegistry {
	return defaultRegistry
}

func newDefaultRegistry() *FunctionRegistry {
	r := NewFunctionRegistry()

	// string
	r.Register(&UpperFunc{})
	r.Register(&LowerFunc{})
	r.Register(&TrimFunc{})
	r.Register(&LTrimFunc{})
	r.Register(&RTrimFunc{})
	r.Register(&LengthFunc{})
	r.Register(&ConcatFunc{})
	r.Register(&SubstringFunc{})
	r.Register(&ReplaceFunc{})
	r.Register(&ReverseFunc{})
	r.Register(&StartsWithFunc{})
	r.Register(&EndsWithFunc{})
	r.Register(&ContainsFunc{})

	// math
	r.Register(&AbsFunc{})
	r.Register(&RoundFunc{})
	r.Register(&FloorFunc{})
	r.Register(&CeilFunc{})
	r.Register(&ModFunc{})
	r.Register(&SqrtFunc{})
	r.Register(&PowerFunc{})
	r.Register(&SignFunc{})

	// conditional
	r.Register(&CoalesceFunc{})
	r.Register(&NullIfFunc{})
	r.Register(&GreatestFunc{})
	r.Register(&LeastFunc{})

	return r
}

// hasNull reports whether any argument is null.
func hasNull(args []any) bool {
	for _, a := range args {
		if a == nil {
			return true
		}
	}
	return false
}

func valueToString(v any) (string, error) {
	switch v.(type) {
	case string, int64, float64, bool:
		return FormatValue(v), nil
	default:
		return "", fmt.Errorf("%w: cannot convert %T to string", ErrTypeMismatch, v)
	}
}

func valueToInt(v any) (int64, error) {
	switch val := v.(type) {
	case int64:
		return val, nil
	case float64:
		return int64(val), nil
	default:
		return 0, fmt.Errorf("%w: expected a number, got %s", ErrTypeMismatch, TypeOf(v))
	}
}

// CoalesceFunc returns the first non-null value
type CoalesceFunc struct{}

func (f *CoalesceFunc) Name() string  { return "COALESCE" }
func (f *CoalesceFunc) MinArity() int { return 1 }
func (f *CoalesceFunc) MaxArity() int { return -1 }
func (f *CoalesceFunc) Evaluate(args []any) (any, error) {
	for _, arg := range args {
		if arg != nil {
			return arg, nil
		}
	}
	return nil, nil
}

// NullIfFunc returns null if both values are equal, otherwise the first value
type NullIfFunc struct{}

func (f *NullIfFunc) Name() string  { return "NULLIF" }
func (f *NullIfFunc) MinArity() int { return 2 }
func (f *NullIfFunc) MaxArity() int { return 2 }
func (f *NullIfFunc) Evaluate(args []any) (any, error) {
	if args[0] == nil || args[1] == nil {
		return args[0], nil
	}
	eq, err := compare(OpEq, args[0], args[1])
	if err != nil {
		return nil, fmt.Errorf("NULLIF: %w", err)
	}
	if eq == true {
		return nil, nil
	}
	return args[0], nil
}

// GreatestFunc returns the largest non-null argument
type GreatestFunc struct{}

func (f *GreatestFunc) Name() string  { return "GREATEST" }
func (f *GreatestFunc) MinArity() int { return 1 }
func (f *GreatestFunc) MaxArity() int { return -1 }
func (f *GreatestFunc) Evaluate(args []any) (any, error) {
	v, err := extreme(args, 1)
	if err != nil {
		return nil, fmt.Errorf("GREATEST: %w", err)
	}
	return v, nil
}

// LeastFunc returns the smallest non-null argument
type LeastFunc struct{}

func (f *LeastFunc) Name() string  { return "LEAST" }
func (f *LeastFunc) MinArity() int { return 1 }
func (f *LeastFunc) MaxArity() int { return -1 }
func (f *LeastFunc) Evaluate(args []any) (any, error) {
	v, err := extreme(args, -1)
	if err != nil {
		return nil, fmt.Errorf("LEAST: %w", err)
	}
	return v, nil
}

// extreme picks the argument whose comparison against the current best
// has the sign of want. Nulls are ignored.
func extreme(args []any, want int) (any, error) {
	var best any
	for _, arg := range args {
		if arg == nil {
			continue
		}
		if best == nil {
			best = arg
			continue
		}
		c, err := compareValues(arg, best)
		if err != nil {
			return nil, err
		}
		if c*want > 0 {
			best = arg
		}
	}
	return best, nil
}
