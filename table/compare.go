package table

import (
	"cmp"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Op is a binary operator.
type Op string

const (
	OpEq     Op = "="
	OpNe     Op = "<>"
	OpLt     Op = "<"
	OpLe     Op = "<="
	OpGt     Op = ">"
	OpGe     Op = ">="
	OpAnd    Op = "AND"
	OpOr     Op = "OR"
	OpAdd    Op = "+"
	OpSub    Op = "-"
	OpMul    Op = "*"
	OpDiv    Op = "/"
	OpMod    Op = "%"
	OpConcat Op = "||"
)

func (o Op) isComparison() bool {
	switch o {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// toFloat64 converts a numeric value to float64.
func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case int64:
		return float64(val), true
	default:
		return 0, false
	}
}

// compareValues orders two non-null values of compatible types: numbers
// with numbers, strings with strings, bools with bools (false < true).
func compareValues(a, b any) (int, error) {
	if ai, ok := a.(int64); ok {
		if bi, ok := b.(int64); ok {
			return cmp.Compare(ai, bi), nil
		}
	}

	aNum, aIsNum := toFloat64(a)
	bNum, bIsNum := toFloat64(b)
	if aIsNum && bIsNum {
		return cmp.Compare(aNum, bNum), nil
	}

	if aStr, ok := a.(string); ok {
		if bStr, ok := b.(string); ok {
			return strings.Compare(aStr, bStr), nil
		}
	}

	if aBool, ok := a.(bool); ok {
		if bBool, ok := b.(bool); ok {
			switch {
			case aBool == bBool:
				return 0, nil
			case !aBool:
				return -1, nil
			default:
				return 1, nil
			}
		}
	}

	return 0, fmt.Errorf("%w: cannot compare %s with %s", ErrTypeMismatch, TypeOf(a), TypeOf(b))
}

// numbersEqual compares floats with a relative epsilon so that values
// computed through different paths still compare equal.
func numbersEqual(left, right float64) bool {
	const epsilon = 1e-9
	diff := math.Abs(left - right)
	threshold := epsilon * max(1.0, math.Abs(left), math.Abs(right))
	return diff < threshold
}

// compare evaluates a comparison operator. A null operand yields null.
func compare(op Op, left, right any) (any, error) {
	if left == nil || right == nil {
		return nil, nil
	}

	_, leftInt := left.(int64)
	_, rightInt := right.(int64)
	if (op == OpEq || op == OpNe) && !(leftInt && rightInt) {
		l, lok := toFloat64(left)
		r, rok := toFloat64(right)
		if lok && rok {
			eq := numbersEqual(l, r)
			if op == OpEq {
				return eq, nil
			}
			return !eq, nil
		}
	}

	c, err := compareValues(left, right)
	if err != nil {
		return nil, err
	}
	switch op {
	case OpEq:
		return c == 0, nil
	case OpNe:
		return c != 0, nil
	case OpLt:
		return c < 0, nil
	case OpLe:
		return c <= 0, nil
	case OpGt:
		return c > 0, nil
	case OpGe:
		return c >= 0, nil
	}
	return nil, fmt.Errorf("unknown comparison operator %q", op)
}

// arithmetic evaluates + - * / %. Integer operands stay integers
// (division truncates); any float operand promotes to float.
func arithmetic(op Op, left, right any) (any, error) {
	if left == nil || right == nil {
		return nil, nil
	}

	li, lInt := left.(int64)
	ri, rInt := right.(int64)
	if lInt && rInt {
		switch op {
		case OpAdd:
			return li + ri, nil
		case OpSub:
			return li - ri, nil
		case OpMul:
			return li * ri, nil
		case OpDiv:
			if ri == 0 {
				return nil, ErrDivisionByZero
			}
			return li / ri, nil
		case OpMod:
			if ri == 0 {
				return nil, ErrDivisionByZero
			}
			return li % ri, nil
		}
	}

	lf, lok := toFloat64(left)
	rf, rok := toFloat64(right)
	if !lok || !rok {
		return nil, fmt.Errorf("%w: %s %s %s", ErrTypeMismatch, TypeOf(left), op, TypeOf(right))
	}
	switch op {
	case OpAdd:
		return lf + rf, nil
	case OpSub:
		return lf - rf, nil
	case OpMul:
		return lf * rf, nil
	case OpDiv:
		if rf == 0 {
			return nil, ErrDivisionByZero
		}
		return lf / rf, nil
	case OpMod:
		if rf == 0 {
			return nil, ErrDivisionByZero
		}
		return math.Mod(lf, rf), nil
	}
	return nil, fmt.Errorf("unknown arithmetic operator %q", op)
}

// asBool interprets a predicate value under three-valued logic.
func asBool(v any) (value bool, isNull bool, err error) {
	switch b := v.(type) {
	case nil:
		return false, true, nil
	case bool:
		return b, false, nil
	default:
		return false, false, fmt.Errorf("%w: got %s", ErrNotBoolean, TypeOf(v))
	}
}

// matchLike matches str against a SQL LIKE pattern where % matches any
// sequence of characters and _ matches exactly one character.
func matchLike(str, pattern string) bool {
	s, p := 0, 0
	starP, starS := -1, 0
	for s < len(str) {
		if p < len(pattern) {
			pr, pw := utf8.DecodeRuneInString(pattern[p:])
			sr, sw := utf8.DecodeRuneInString(str[s:])
			switch {
			case pr == '%':
				starP, starS = p, s
				p += pw
				continue
			case pr == '_' || pr == sr:
				p += pw
				s += sw
				continue
			}
		}
		if starP < 0 {
			return false
		}
		// Backtrack: let the last % absorb one more character.
		_, sw := utf8.DecodeRuneInString(str[starS:])
		starS += sw
		s = starS
		p = starP + 1
	}
	for p < len(pattern) && pattern[p] == '%' {
		p++
	}
	return p == len(pattern)
}
