package table

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Expr is a scalar expression evaluated against one row.
type Expr interface {
	// Eval computes the expression for row. Null is nil.
	Eval(row Row) (any, error)
	// Columns lists the column names the expression reads, in order of
	// first appearance.
	Columns() []string
	// String renders the expression as SQL.
	String() string
}

// OutputName is the column name a projected expression produces: the alias
// if any, the column name for a bare column, otherwise its SQL rendering.
func OutputName(e Expr) string {
	switch x := e.(type) {
	case *AliasExpr:
		return x.Name
	case *ColumnExpr:
		return x.Name
	default:
		return e.String()
	}
}

// ColumnExpr reads a column by name.
type ColumnExpr struct {
	Name string
}

// Col references the column name.
func Col(name string) *ColumnExpr { return &ColumnExpr{Name: name} }

func (c *ColumnExpr) Eval(row Row) (any, error) {
	v, ok := row.Get(c.Name)
	if !ok {
		return nil, &ColumnNotFoundError{Name: c.Name, Available: row.Names()}
	}
	return v, nil
}

func (c *ColumnExpr) Columns() []string { return []string{c.Name} }

func (c *ColumnExpr) String() string { return quoteIdent(c.Name) }

// LiteralExpr is a constant.
type LiteralExpr struct {
	Value any
}

// Lit wraps a constant. Go ints and float32 are normalized to int64 and
// float64; unsupported types are rendered as strings.
func Lit(v any) *LiteralExpr {
	nv, ok := normalize(v)
	if !ok {
		nv = fmt.Sprint(v)
	}
	return &LiteralExpr{Value: nv}
}

func (l *LiteralExpr) Eval(Row) (any, error) { return l.Value, nil }

func (l *LiteralExpr) Columns() []string { return nil }

func (l *LiteralExpr) String() string {
	switch v := l.Value.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case bool:
		return strings.ToUpper(strconv.FormatBool(v))
	default:
		return FormatValue(v)
	}
}

// WildcardExpr stands for every column of the input. It is only valid as a
// projection item, where it expands in place.
type WildcardExpr struct{}

// Wildcard returns the "*" projection item.
func Wildcard() *WildcardExpr { return &WildcardExpr{} }

func (*WildcardExpr) Eval(Row) (any, error) {
	return nil, errors.New("* is only valid as a projection item")
}

func (*WildcardExpr) Columns() []string { return nil }

func (*WildcardExpr) String() string { return "*" }

// BinaryExpr applies a binary operator.
type BinaryExpr struct {
	Op    Op
	Left  Expr
	Right Expr
}

// Binary combines left and right with op.
func Binary(op Op, left, right Expr) *BinaryExpr {
	return &BinaryExpr{Op: op, Left: left, Right: right}
}

// And is shorthand for Binary(OpAnd, left, right).
func And(left, right Expr) *BinaryExpr { return Binary(OpAnd, left, right) }

// Or is shorthand for Binary(OpOr, left, right).
func Or(left, right Expr) *BinaryExpr { return Binary(OpOr, left, right) }

func (b *BinaryExpr) Eval(row Row) (any, error) {
	left, err := b.Left.Eval(row)
	if err != nil {
		return nil, err
	}

	switch b.Op {
	case OpAnd, OpOr:
		return b.evalLogical(row, left)
	}

	right, err := b.Right.Eval(row)
	if err != nil {
		return nil, err
	}

	switch {
	case b.Op.isComparison():
		return compare(b.Op, left, right)
	case b.Op == OpConcat:
		if left == nil || right == nil {
			return nil, nil
		}
		return FormatValue(left) + FormatValue(right), nil
	default:
		return arithmetic(b.Op, left, right)
	}
}

// evalLogical implements three-valued AND/OR. The right side is skipped
// once the left side decides the result.
func (b *BinaryExpr) evalLogical(row Row, left any) (any, error) {
	l, lNull, err := asBool(left)
	if err != nil {
		return nil, err
	}
	if !lNull && ((b.Op == OpAnd && !l) || (b.Op == OpOr && l)) {
		return l, nil
	}

	right, err := b.Right.Eval(row)
	if err != nil {
		return nil, err
	}
	r, rNull, err := asBool(right)
	if err != nil {
		return nil, err
	}

	if b.Op == OpAnd {
		switch {
		case !rNull && !r:
			return false, nil
		case lNull || rNull:
			return nil, nil
		default:
			return true, nil
		}
	}
	switch {
	case !rNull && r:
		return true, nil
	case lNull || rNull:
		return nil, nil
	default:
		return false, nil
	}
}

func (b *BinaryExpr) Columns() []string { return mergeColumns(b.Left, b.Right) }

func (b *BinaryExpr) String() string {
	return operand(b.Left) + " " + string(b.Op) + " " + operand(b.Right)
}

// NotExpr is logical negation.
type NotExpr struct {
	Expr Expr
}

// Not negates a boolean expression; NOT NULL is NULL.
func Not(e Expr) *NotExpr { return &NotExpr{Expr: e} }

func (n *NotExpr) Eval(row Row) (any, error) {
	v, err := n.Expr.Eval(row)
	if err != nil {
		return nil, err
	}
	b, isNull, err := asBool(v)
	if err != nil || isNull {
		return nil, err
	}
	return !b, nil
}

func (n *NotExpr) Columns() []string { return n.Expr.Columns() }

func (n *NotExpr) String() string { return "NOT " + operand(n.Expr) }

// NegExpr is arithmetic negation.
type NegExpr struct {
	Expr Expr
}

// Neg negates a numeric expression.
func Neg(e Expr) *NegExpr { return &NegExpr{Expr: e} }

func (n *NegExpr) Eval(row Row) (any, error) {
	v, err := n.Expr.Eval(row)
	if err != nil {
		return nil, err
	}
	switch x := v.(type) {
	case nil:
		return nil, nil
	case int64:
		return -x, nil
	case float64:
		return -x, nil
	default:
		return nil, fmt.Errorf("%w: cannot negate %s", ErrTypeMismatch, TypeOf(v))
	}
}

func (n *NegExpr) Columns() []string { return n.Expr.Columns() }

func (n *NegExpr) String() string { return "-" + operand(n.Expr) }

// IsNullExpr tests for null. It never yields null itself.
type IsNullExpr struct {
	Expr    Expr
	Negated bool
}

// IsNull is "e IS NULL", or "e IS NOT NULL" when negated.
func IsNull(e Expr, negated bool) *IsNullExpr {
	return &IsNullExpr{Expr: e, Negated: negated}
}

func (n *IsNullExpr) Eval(row Row) (any, error) {
	v, err := n.Expr.Eval(row)
	if err != nil {
		return nil, err
	}
	return (v == nil) != n.Negated, nil
}

func (n *IsNullExpr) Columns() []string { return n.Expr.Columns() }

func (n *IsNullExpr) String() string {
	if n.Negated {
		return operand(n.Expr) + " IS NOT NULL"
	}
	return operand(n.Expr) + " IS NULL"
}

// InListExpr tests membership in a list of expressions.
type InListExpr struct {
	Expr    Expr
	List    []Expr
	Negated bool
}

// InList is "e IN (list...)", or "e NOT IN (list...)" when negated.
func InList(e Expr, list []Expr, negated bool) *InListExpr {
	return &InListExpr{Expr: e, List: list, Negated: negated}
}

func (in *InListExpr) Eval(row Row) (any, error) {
	v, err := in.Expr.Eval(row)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}

	sawNull := false
	for _, item := range in.List {
		iv, err := item.Eval(row)
		if err != nil {
			return nil, err
		}
		eq, err := compare(OpEq, v, iv)
		if err != nil {
			return nil, err
		}
		if eq == nil {
			sawNull = true
			continue
		}
		if eq.(bool) {
			return !in.Negated, nil
		}
	}
	if sawNull {
		return nil, nil
	}
	return in.Negated, nil
}

func (in *InListExpr) Columns() []string {
	return mergeColumns(append([]Expr{in.Expr}, in.List...)...)
}

func (in *InListExpr) String() string {
	items := make([]string, len(in.List))
	for i, item := range in.List {
		items[i] = item.String()
	}
	kw := " IN ("
	if in.Negated {
		kw = " NOT IN ("
	}
	return operand(in.Expr) + kw + strings.Join(items, ", ") + ")"
}

// BetweenExpr is "e BETWEEN low AND high", bounds inclusive.
type BetweenExpr struct {
	Expr    Expr
	Low     Expr
	High    Expr
	Negated bool
}

// Between tests low <= e <= high.
func Between(e, low, high Expr, negated bool) *BetweenExpr {
	return &BetweenExpr{Expr: e, Low: low, High: high, Negated: negated}
}

func (b *BetweenExpr) Eval(row Row) (any, error) {
	inRange := And(Binary(OpGe, b.Expr, b.Low), Binary(OpLe, b.Expr, b.High))
	v, err := inRange.Eval(row)
	if err != nil || v == nil || !b.Negated {
		return v, err
	}
	return !v.(bool), nil
}

func (b *BetweenExpr) Columns() []string { return mergeColumns(b.Expr, b.Low, b.High) }

func (b *BetweenExpr) String() string {
	kw := " BETWEEN "
	if b.Negated {
		kw = " NOT BETWEEN "
	}
	return operand(b.Expr) + kw + operand(b.Low) + " AND " + operand(b.High)
}

// LikeExpr matches a string against a LIKE pattern.
type LikeExpr struct {
	Expr            Expr
	Pattern         Expr
	CaseInsensitive bool
	Negated         bool
}

// Like is "e LIKE pattern"; caseInsensitive selects ILIKE.
func Like(e, pattern Expr, caseInsensitive, negated bool) *LikeExpr {
	return &LikeExpr{Expr: e, Pattern: pattern, CaseInsensitive: caseInsensitive, Negated: negated}
}

func (l *LikeExpr) Eval(row Row) (any, error) {
	v, err := l.Expr.Eval(row)
	if err != nil {
		return nil, err
	}
	p, err := l.Pattern.Eval(row)
	if err != nil {
		return nil, err
	}
	if v == nil || p == nil {
		return nil, nil
	}
	str, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: LIKE needs a string, got %s", ErrTypeMismatch, TypeOf(v))
	}
	pattern, ok := p.(string)
	if !ok {
		return nil, fmt.Errorf("%w: LIKE pattern must be a string, got %s", ErrTypeMismatch, TypeOf(p))
	}
	if l.CaseInsensitive {
		str, pattern = strings.ToLower(str), strings.ToLower(pattern)
	}
	return matchLike(str, pattern) != l.Negated, nil
}

func (l *LikeExpr) Columns() []string { return mergeColumns(l.Expr, l.Pattern) }

func (l *LikeExpr) String() string {
	kw := "LIKE"
	if l.CaseInsensitive {
		kw = "ILIKE"
	}
	if l.Negated {
		kw = "NOT " + kw
	}
	return operand(l.Expr) + " " + kw + " " + operand(l.Pattern)
}

// When is one WHEN ... THEN ... arm of a CASE expression.
type When struct {
	Cond   Expr
	Result Expr
}

// CaseExpr is a searched CASE (Operand nil) or a simple CASE comparing
// Operand with each When.Cond.
type CaseExpr struct {
	Operand Expr
	Whens   []When
	Else    Expr
}

// Case builds a CASE expression. operand and elseExpr may be nil.
func Case(operand Expr, whens []When, elseExpr Expr) *CaseExpr {
	return &CaseExpr{Operand: operand, Whens: whens, Else: elseExpr}
}

func (c *CaseExpr) Eval(row Row) (any, error) {
	var subject any
	if c.Operand != nil {
		v, err := c.Operand.Eval(row)
		if err != nil {
			return nil, err
		}
		subject = v
	}

	for _, w := range c.Whens {
		cond, err := w.Cond.Eval(row)
		if err != nil {
			return nil, err
		}
		var matched bool
		if c.Operand != nil {
			eq, err := compare(OpEq, subject, cond)
			if err != nil {
				return nil, err
			}
			matched = eq == true
		} else {
			b, isNull, err := asBool(cond)
			if err != nil {
				return nil, err
			}
			matched = b && !isNull
		}
		if matched {
			return w.Result.Eval(row)
		}
	}

	if c.Else != nil {
		return c.Else.Eval(row)
	}
	return nil, nil
}

func (c *CaseExpr) Columns() []string {
	exprs := []Expr{c.Operand}
	for _, w := range c.Whens {
		exprs = append(exprs, w.Cond, w.Result)
	}
	return mergeColumns(append(exprs, c.Else)...)
}

func (c *CaseExpr) String() string {
	var b strings.Builder
	b.WriteString("CASE")
	if c.Operand != nil {
		b.WriteString(" " + c.Operand.String())
	}
	for _, w := range c.Whens {
		b.WriteString(" WHEN " + w.Cond.String() + " THEN " + w.Result.String())
	}
	if c.Else != nil {
		b.WriteString(" ELSE " + c.Else.String())
	}
	b.WriteString(" END")
	return b.String()
}

// CastExpr converts a value to another type.
type CastExpr struct {
	Expr Expr
	To   DataType
}

// Cast converts e to the given type.
func Cast(e Expr, to DataType) *CastExpr { return &CastExpr{Expr: e, To: to} }

func (c *CastExpr) Eval(row Row) (any, error) {
	v, err := c.Expr.Eval(row)
	if err != nil {
		return nil, err
	}
	return CastValue(v, c.To)
}

func (c *CastExpr) Columns() []string { return c.Expr.Columns() }

func (c *CastExpr) String() string {
	return "CAST(" + c.Expr.String() + " AS " + strings.ToUpper(c.To.String()) + ")"
}

// CallExpr invokes a scalar function.
type CallExpr struct {
	Func Function
	Args []Expr
}

// Call resolves name in the default registry and checks the argument count.
func Call(name string, args ...Expr) (*CallExpr, error) {
	return DefaultRegistry().Call(name, args...)
}

func (c *CallExpr) Eval(row Row) (any, error) {
	values := make([]any, len(c.Args))
	for i, arg := range c.Args {
		v, err := arg.Eval(row)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return c.Func.Evaluate(values)
}

func (c *CallExpr) Columns() []string { return mergeColumns(c.Args...) }

func (c *CallExpr) String() string {
	args := make([]string, len(c.Args))
	for i, arg := range c.Args {
		args[i] = arg.String()
	}
	return strings.ToLower(c.Func.Name()) + "(" + strings.Join(args, ", ") + ")"
}

// AliasExpr renames the output of a projected expression.
type AliasExpr struct {
	Expr Expr
	Name string
}

// Alias names the projected value of e.
func Alias(e Expr, name string) *AliasExpr { return &AliasExpr{Expr: e, Name: name} }

func (a *AliasExpr) Eval(row Row) (any, error) { return a.Expr.Eval(row) }

func (a *AliasExpr) Columns() []string { return a.Expr.Columns() }

func (a *AliasExpr) String() string { return a.Expr.String() + " AS " + quoteIdent(a.Name) }

// mergeColumns concatenates the referenced columns of exprs without
// duplicates. Nil expressions are skipped.
func mergeColumns(exprs ...Expr) []string {
	var out []string
	seen := map[string]bool{}
	for _, e := range exprs {
		if e == nil {
			continue
		}
		for _, c := range e.Columns() {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// operand renders e, parenthesized when it is itself an operator expression.
func operand(e Expr) string {
	switch e.(type) {
	case *BinaryExpr, *BetweenExpr, *LikeExpr, *InListExpr, *IsNullExpr, *NotExpr:
		return "(" + e.String() + ")"
	}
	return e.String()
}

// quoteIdent double-quotes names that would not read back as a plain identifier.
func quoteIdent(name string) string {
	if name == "" {
		return `""`
	}
	for i, r := range name {
		plain := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9')
		if !plain {
			return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
		}
	}
	return name
}
