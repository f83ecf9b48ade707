package table

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// String Functions. All return null when any argument is null, except
// CONCAT which skips nulls.

// UpperFunc converts a string to uppercase
type UpperFunc struct{}

func (f *UpperFunc) Name() string  { return "UPPER" }
func (f *UpperFunc) MinArity() int { return 1 }
func (f *UpperFunc) MaxArity() int { return 1 }
func (f *UpperFunc) Evaluate(args []any) (any, error) {
	return mapString("UPPER", args[0], strings.ToUpper)
}

// LowerFunc converts a string to lowercase
type LowerFunc struct{}

func (f *LowerFunc) Name() string  { return "LOWER" }
func (f *LowerFunc) MinArity() int { return 1 }
func (f *LowerFunc) MaxArity() int { return 1 }
func (f *LowerFunc) Evaluate(args []any) (any, error) {
	return mapString("LOWER", args[0], strings.ToLower)
}

// TrimFunc trims whitespace from both ends of a string
type TrimFunc struct{}

func (f *TrimFunc) Name() string  { return "TRIM" }
func (f *TrimFunc) MinArity() int { return 1 }
func (f *TrimFunc) MaxArity() int { return 1 }
func (f *TrimFunc) Evaluate(args []any) (any, error) {
	return mapString("TRIM", args[0], strings.TrimSpace)
}

// LTrimFunc trims leading whitespace
type LTrimFunc struct{}

func (f *LTrimFunc) Name() string  { return "LTRIM" }
func (f *LTrimFunc) MinArity() int { return 1 }
func (f *LTrimFunc) MaxArity() int { return 1 }
func (f *LTrimFunc) Evaluate(args []any) (any, error) {
	return mapString("LTRIM", args[0], func(s string) string {
		return strings.TrimLeft(s, " \t\r\n")
	})
}

// RTrimFunc trims trailing whitespace
type RTrimFunc struct{}

func (f *RTrimFunc) Name() string  { return "RTRIM" }
func (f *RTrimFunc) MinArity() int { return 1 }
func (f *RTrimFunc) MaxArity() int { return 1 }
func (f *RTrimFunc) Evaluate(args []any) (any, error) {
	return mapString("RTRIM", args[0], func(s string) string {
		return strings.TrimRight(s, " \t\r\n")
	})
}

// ReverseFunc reverses the characters of a string
type ReverseFunc struct{}

func (f *ReverseFunc) Name() string  { return "REVERSE" }
func (f *ReverseFunc) MinArity() int { return 1 }
func (f *ReverseFunc) MaxArity() int { return 1 }
func (f *ReverseFunc) Evaluate(args []any) (any, error) {
	return mapString("REVERSE", args[0], func(s string) string {
		runes := []rune(s)
		for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
			runes[i], runes[j] = runes[j], runes[i]
		}
		return string(runes)
	})
}

func mapString(name string, v any, fn func(string) string) (any, error) {
	if v == nil {
		return nil, nil
	}
	str, err := valueToString(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return fn(str), nil
}

// LengthFunc returns the number of characters in a string
type LengthFunc struct{}

func (f *LengthFunc) Name() string  { return "LENGTH" }
func (f *LengthFunc) MinArity() int { return 1 }
func (f *LengthFunc) MaxArity() int { return 1 }
func (f *LengthFunc) Evaluate(args []any) (any, error) {
	if args[0] == nil {
		return nil, nil
	}
	str, err := valueToString(args[0])
	if err != nil {
		return nil, fmt.Errorf("LENGTH: %w", err)
	}
	return int64(utf8.RuneCountInString(str)), nil
}

// ConcatFunc concatenates its arguments, skipping nulls
type ConcatFunc struct{}

func (f *ConcatFunc) Name() string  { return "CONCAT" }
func (f *ConcatFunc) MinArity() int { return 1 }
func (f *ConcatFunc) MaxArity() int { return -1 } // variadic
func (f *ConcatFunc) Evaluate(args []any) (any, error) {
	var builder strings.Builder
	for i, arg := range args {
		if arg == nil {
			continue
		}
		str, err := valueToString(arg)
		if err != nil {
			return nil, fmt.Errorf("CONCAT: argument %d: %w", i+1, err)
		}
		builder.WriteString(str)
	}
	return builder.String(), nil
}

// SubstringFunc extracts a substring (1-indexed, SQL style)
type SubstringFunc struct{}

func (f *SubstringFunc) Name() string  { return "SUBSTRING" }
func (f *SubstringFunc) MinArity() int { return 2 }
func (f *SubstringFunc) MaxArity() int { return 3 }
func (f *SubstringFunc) Evaluate(args []any) (any, error) {
	if hasNull(args) {
		return nil, nil
	}
	str, err := valueToString(args[0])
	if err != nil {
		return nil, fmt.Errorf("SUBSTRING: %w", err)
	}
	start, err := valueToInt(args[1])
	if err != nil {
		return nil, fmt.Errorf("SUBSTRING: start: %w", err)
	}

	runes := []rune(str)
	end := int64(len(runes)) + 1
	if len(args) == 3 {
		length, err := valueToInt(args[2])
		if err != nil {
			return nil, fmt.Errorf("SUBSTRING: length: %w", err)
		}
		if length < 0 {
			return nil, fmt.Errorf("SUBSTRING: negative length %d", length)
		}
		end = start + length
	}

	// SQL positions are 1-based; positions before 1 consume length.
	lo := max(start, 1) - 1
	hi := min(end-1, int64(len(runes)))
	if lo >= hi {
		return "", nil
	}
	return string(runes[lo:hi]), nil
}

// ReplaceFunc replaces all occurrences of a substring
type ReplaceFunc struct{}

func (f *ReplaceFunc) Name() string  { return "REPLACE" }
func (f *ReplaceFunc) MinArity() int { return 3 }
func (f *ReplaceFunc) MaxArity() int { return 3 }
func (f *ReplaceFunc) Evaluate(args []any) (any, error) {
	if hasNull(args) {
		return nil, nil
	}
	parts := make([]string, 3)
	for i, arg := range args {
		s, err := valueToString(arg)
		if err != nil {
			return nil, fmt.Errorf("REPLACE: argument %d: %w", i+1, err)
		}
		parts[i] = s
	}
	return strings.ReplaceAll(parts[0], parts[1], parts[2]), nil
}

// StartsWithFunc reports whether a string starts with a prefix
type StartsWithFunc struct{}

func (f *StartsWithFunc) Name() string  { return "STARTS_WITH" }
func (f *StartsWithFunc) MinArity() int { return 2 }
func (f *StartsWithFunc) MaxArity() int { return 2 }
func (f *StartsWithFunc) Evaluate(args []any) (any, error) {
	return stringPredicate("STARTS_WITH", args, strings.HasPrefix)
}

// EndsWithFunc reports whether a string ends with a suffix
type EndsWithFunc struct{}

func (f *EndsWithFunc) Name() string  { return "ENDS_WITH" }
func (f *EndsWithFunc) MinArity() int { return 2 }
func (f *EndsWithFunc) MaxArity() int { return 2 }
func (f *EndsWithFunc) Evaluate(args []any) (any, error) {
	return stringPredicate("ENDS_WITH", args, strings.HasSuffix)
}

// ContainsFunc reports whether a string contains a substring
type ContainsFunc struct{}

func (f *ContainsFunc) Name() string  { return "CONTAINS" }
func (f *ContainsFunc) MinArity() int { return 2 }
func (f *ContainsFunc) MaxArity() int { return 2 }
func (f *ContainsFunc) Evaluate(args []any) (any, error) {
	return stringPredicate("CONTAINS", args, strings.Contains)
}

func stringPredicate(name string, args []any, fn func(s, sub string) bool) (any, error) {
	if hasNull(args) {
		return nil, nil
	}
	s, err := valueToString(args[0])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	sub, err := valueToString(args[1])
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return fn(s, sub), nil
}
