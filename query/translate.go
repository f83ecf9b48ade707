package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vegasq/tyr/sqlparse"
	"github.com/vegasq/tyr/table"
)

// aggregates are recognized so they can be rejected with a clear message
// rather than as unknown functions.
var aggregates = map[string]bool{
	"COUNT": true,
	"SUM":   true,
	"AVG":   true,
	"MIN":   true,
	"MAX":   true,
}

var comparisonOps = map[string]table.Op{
	"=":  table.OpEq,
	"<>": table.OpNe,
	"!=": table.OpNe,
	"<":  table.OpLt,
	"<=": table.OpLe,
	">":  table.OpGt,
	">=": table.OpGe,
}

var arithmeticOps = map[string]table.Op{
	"+":  table.OpAdd,
	"-":  table.OpSub,
	"||": table.OpConcat,
	"*":  table.OpMul,
	"/":  table.OpDiv,
	"%":  table.OpMod,
}

// Translate converts a parsed statement into a Descriptor. Only a plain
// SELECT over one table reference with optional WHERE, ORDER BY, LIMIT and
// OFFSET is accepted; every other shape is rejected with the error kind
// that names it.
func Translate(stmt *sqlparse.Statement) (*Descriptor, error) {
	if stmt == nil || stmt.Select == nil {
		kind := "UNKNOWN"
		if stmt != nil {
			kind = stmt.Kind()
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedStatement, kind)
	}
	sel := stmt.Select

	src, err := translateSource(sel.From)
	if err != nil {
		return nil, err
	}
	if err := checkClauses(sel); err != nil {
		return nil, err
	}

	d := &Descriptor{source: src}

	if sel.Where != nil {
		if d.condition, err = convertExpr(sel.Where); err != nil {
			return nil, err
		}
	}

	for _, item := range sel.Items {
		e, err := convertSelectItem(item)
		if err != nil {
			return nil, err
		}
		d.selection = append(d.selection, e)
	}

	for _, item := range sel.OrderBy {
		name, ok := plainColumn(item.Expr)
		if !ok {
			e, err := convertExpr(item.Expr)
			if err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: ORDER BY %s: only column names are supported", ErrUnsupportedClause, e)
		}
		d.orderBy = append(d.orderBy, OrderItem{Column: name, Desc: item.Direction == "DESC"})
	}

	for _, page := range sel.Paging {
		if page.Limit != nil {
			if d.hasLimit {
				return nil, fmt.Errorf("%w: LIMIT given more than once", ErrUnsupportedClause)
			}
			if d.limit, err = pageValue("LIMIT", page.Limit); err != nil {
				return nil, err
			}
			d.hasLimit = true
		}
		if page.Offset != nil {
			if d.hasOffset {
				return nil, fmt.Errorf("%w: OFFSET given more than once", ErrUnsupportedClause)
			}
			if d.offset, err = pageValue("OFFSET", page.Offset); err != nil {
				return nil, err
			}
			d.hasOffset = true
		}
	}

	return d, nil
}

func translateSource(from *sqlparse.From) (string, error) {
	switch {
	case from == nil:
		return "", fmt.Errorf("%w: missing FROM", ErrUnsupportedSource)
	case len(from.Joins) > 0:
		return "", fmt.Errorf("%w: JOIN", ErrUnsupportedSource)
	case len(from.Tables) != 1:
		return "", fmt.Errorf("%w: %d table references, expected 1", ErrUnsupportedSource, len(from.Tables))
	case from.Tables[0].Subquery != nil:
		return "", fmt.Errorf("%w: derived table", ErrUnsupportedSource)
	}
	return from.Tables[0].Name, nil
}

func checkClauses(sel *sqlparse.Select) error {
	switch {
	case sel.Distinct:
		return fmt.Errorf("%w: DISTINCT", ErrUnsupportedClause)
	case len(sel.GroupBy) > 0:
		return fmt.Errorf("%w: GROUP BY", ErrUnsupportedClause)
	case sel.Having != nil:
		return fmt.Errorf("%w: HAVING", ErrUnsupportedClause)
	case sel.SetOp != nil:
		op := sel.SetOp.Op
		if sel.SetOp.All {
			op += " ALL"
		}
		return fmt.Errorf("%w: %s", ErrUnsupportedClause, op)
	}
	return nil
}

func convertSelectItem(item *sqlparse.SelectItem) (table.Expr, error) {
	var e table.Expr = table.Wildcard()
	if !item.Star {
		var err error
		if e, err = convertExpr(item.Expr); err != nil {
			return nil, err
		}
	}
	if item.Alias != "" {
		if item.Star {
			return nil, fmt.Errorf("%w: alias on *", ErrUnsupportedClause)
		}
		e = table.Alias(e, item.Alias)
	}
	return e, nil
}

// plainColumn reports the column name when e is a bare column reference.
func plainColumn(e *sqlparse.Expression) (string, bool) {
	if len(e.Or) != 1 || len(e.Or[0].And) != 1 {
		return "", false
	}
	p := e.Or[0].And[0].Predicate
	if p == nil || p.Compare != nil || p.Is != nil || p.In != nil || p.Between != nil || p.Like != nil {
		return "", false
	}
	if len(p.Left.Right) > 0 || len(p.Left.Left.Right) > 0 {
		return "", false
	}
	u := p.Left.Left.Left
	if u.Primary == nil {
		return "", false
	}
	if u.Primary.Paren != nil {
		return plainColumn(u.Primary.Paren)
	}
	if u.Primary.Column == nil {
		return "", false
	}
	return u.Primary.Column.Name, true
}

// pageValue extracts a non-negative integer literal for LIMIT or OFFSET.
func pageValue(clause string, e *sqlparse.Expression) (int64, error) {
	expr, err := convertExpr(e)
	if err != nil {
		return 0, err
	}
	lit, ok := expr.(*table.LiteralExpr)
	if !ok {
		return 0, fmt.Errorf("%w: %s %s: expected an integer literal", ErrUnsupportedClause, clause, expr)
	}
	n, ok := lit.Value.(int64)
	if !ok || n < 0 {
		return 0, fmt.Errorf("%w: %s %s: expected a non-negative integer", ErrUnsupportedClause, clause, expr)
	}
	return n, nil
}

func convertExpr(e *sqlparse.Expression) (table.Expr, error) {
	var out table.Expr
	for _, and := range e.Or {
		term, err := convertAnd(and)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = term
		} else {
			out = table.Or(out, term)
		}
	}
	return out, nil
}

func convertAnd(e *sqlparse.AndExpr) (table.Expr, error) {
	var out table.Expr
	for _, not := range e.And {
		term, err := convertNot(not)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = term
		} else {
			out = table.And(out, term)
		}
	}
	return out, nil
}

func convertNot(e *sqlparse.NotExpr) (table.Expr, error) {
	if e.Not != nil {
		inner, err := convertNot(e.Not)
		if err != nil {
			return nil, err
		}
		return table.Not(inner), nil
	}
	return convertPredicate(e.Predicate)
}

func convertPredicate(p *sqlparse.Predicate) (table.Expr, error) {
	left, err := convertAdditive(p.Left)
	if err != nil {
		return nil, err
	}

	switch {
	case p.Compare != nil:
		right, err := convertAdditive(p.Compare.Right)
		if err != nil {
			return nil, err
		}
		return table.Binary(comparisonOps[p.Compare.Op], left, right), nil

	case p.Is != nil:
		return table.IsNull(left, p.Is.Not), nil

	case p.In != nil:
		if p.In.Subquery != nil {
			return nil, fmt.Errorf("%w: IN (subquery)", ErrUnsupportedClause)
		}
		list := make([]table.Expr, len(p.In.Values))
		for i, v := range p.In.Values {
			if list[i], err = convertExpr(v); err != nil {
				return nil, err
			}
		}
		return table.InList(left, list, p.In.Not), nil

	case p.Between != nil:
		low, err := convertAdditive(p.Between.Low)
		if err != nil {
			return nil, err
		}
		high, err := convertAdditive(p.Between.High)
		if err != nil {
			return nil, err
		}
		return table.Between(left, low, high, p.Between.Not), nil

	case p.Like != nil:
		pattern, err := convertAdditive(p.Like.Pattern)
		if err != nil {
			return nil, err
		}
		return table.Like(left, pattern, p.Like.Op == "ILIKE", p.Like.Not), nil
	}

	return left, nil
}

func convertAdditive(a *sqlparse.Additive) (table.Expr, error) {
	out, err := convertMultiplicative(a.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range a.Right {
		right, err := convertMultiplicative(op.Right)
		if err != nil {
			return nil, err
		}
		out = table.Binary(arithmeticOps[op.Op], out, right)
	}
	return out, nil
}

func convertMultiplicative(m *sqlparse.Multiplicative) (table.Expr, error) {
	out, err := convertUnary(m.Left)
	if err != nil {
		return nil, err
	}
	for _, op := range m.Right {
		right, err := convertUnary(op.Right)
		if err != nil {
			return nil, err
		}
		out = table.Binary(arithmeticOps[op.Op], out, right)
	}
	return out, nil
}

func convertUnary(u *sqlparse.Unary) (table.Expr, error) {
	if u.Primary != nil {
		return convertPrimary(u.Primary)
	}

	inner, err := convertUnary(u.Operand)
	if err != nil {
		return nil, err
	}
	if u.Op == "+" {
		return inner, nil
	}
	// Fold negative numeric literals so "-1" stays a literal.
	if lit, ok := inner.(*table.LiteralExpr); ok {
		switch v := lit.Value.(type) {
		case int64:
			return table.Lit(-v), nil
		case float64:
			return table.Lit(-v), nil
		}
	}
	return table.Neg(inner), nil
}

func convertPrimary(p *sqlparse.Primary) (table.Expr, error) {
	switch {
	case p.Exists != nil:
		return nil, fmt.Errorf("%w: EXISTS", ErrUnsupportedClause)
	case p.Subquery != nil:
		return nil, fmt.Errorf("%w: scalar subquery", ErrUnsupportedClause)
	case p.Paren != nil:
		return convertExpr(p.Paren)
	case p.Case != nil:
		return convertCase(p.Case)
	case p.Cast != nil:
		return convertCast(p.Cast)
	case p.Call != nil:
		return convertCall(p.Call)
	case p.Literal != nil:
		return convertLiteral(p.Literal)
	case p.Column != nil:
		return table.Col(p.Column.Name), nil
	}
	return nil, fmt.Errorf("%w: empty expression", ErrUnsupportedClause)
}

func convertCase(c *sqlparse.CaseExpr) (table.Expr, error) {
	var operand, elseExpr table.Expr
	var err error
	if c.Operand != nil {
		if operand, err = convertExpr(c.Operand); err != nil {
			return nil, err
		}
	}

	whens := make([]table.When, len(c.Whens))
	for i, w := range c.Whens {
		if whens[i].Cond, err = convertExpr(w.When); err != nil {
			return nil, err
		}
		if whens[i].Result, err = convertExpr(w.Then); err != nil {
			return nil, err
		}
	}

	if c.Else != nil {
		if elseExpr, err = convertExpr(c.Else); err != nil {
			return nil, err
		}
	}
	return table.Case(operand, whens, elseExpr), nil
}

func convertCast(c *sqlparse.CastExpr) (table.Expr, error) {
	to, ok := table.ParseDataType(c.Type)
	if !ok {
		return nil, fmt.Errorf("%w: CAST to unknown type %s", ErrUnsupportedClause, c.Type)
	}
	inner, err := convertExpr(c.Expr)
	if err != nil {
		return nil, err
	}
	return table.Cast(inner, to), nil
}

func convertCall(c *sqlparse.FunctionCall) (table.Expr, error) {
	name := strings.ToUpper(c.Name)
	switch {
	case c.Over != nil:
		return nil, fmt.Errorf("%w: window function %s() OVER", ErrUnsupportedClause, name)
	case aggregates[name]:
		return nil, fmt.Errorf("%w: aggregate function %s()", ErrUnsupportedClause, name)
	case c.Distinct:
		return nil, fmt.Errorf("%w: %s(DISTINCT ...)", ErrUnsupportedClause, name)
	case c.Star:
		return nil, fmt.Errorf("%w: %s(*)", ErrUnsupportedClause, name)
	}

	args := make([]table.Expr, len(c.Args))
	for i, a := range c.Args {
		var err error
		if args[i], err = convertExpr(a); err != nil {
			return nil, err
		}
	}
	call, err := table.Call(name, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedClause, err)
	}
	return call, nil
}

func convertLiteral(l *sqlparse.Literal) (table.Expr, error) {
	switch {
	case l.Str != nil:
		return table.Lit(l.Str.Value), nil
	case l.Bool != "":
		return table.Lit(l.Bool == "TRUE"), nil
	case l.Null:
		return table.Lit(nil), nil
	}

	if !strings.ContainsAny(l.Number, ".eE") {
		if n, err := strconv.ParseInt(l.Number, 10, 64); err == nil {
			return table.Lit(n), nil
		}
	}
	f, err := strconv.ParseFloat(l.Number, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid number %s", ErrUnsupportedClause, l.Number)
	}
	return table.Lit(f), nil
}
