package query

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vegasq/tyr/table"
)

// StepKind identifies a pipeline stage.
type StepKind int

const (
	StepFilter StepKind = iota
	StepOrder
	StepPaginate
	StepProject
)

func (k StepKind) String() string {
	switch k {
	case StepFilter:
		return "FILTER"
	case StepOrder:
		return "ORDER"
	case StepPaginate:
		return "PAGINATE"
	case StepProject:
		return "PROJECT"
	}
	return fmt.Sprintf("StepKind(%d)", int(k))
}

// Step is one stage of a Plan. Only the fields for its Kind are set.
type Step struct {
	Kind      StepKind
	Condition table.Expr
	Keys      []OrderItem
	Offset    int64
	// Limit is negative when unbounded.
	Limit     int64
	Selection []table.Expr
}

func (s Step) String() string {
	switch s.Kind {
	case StepFilter:
		return "FILTER " + s.Condition.String()
	case StepOrder:
		keys := make([]string, len(s.Keys))
		for i, k := range s.Keys {
			keys[i] = k.Column
			if k.Desc {
				keys[i] += " DESC"
			}
		}
		return "ORDER " + strings.Join(keys, ", ")
	case StepPaginate:
		limit := "all"
		if s.Limit >= 0 {
			limit = fmt.Sprint(s.Limit)
		}
		return fmt.Sprintf("PAGINATE offset=%d limit=%s", s.Offset, limit)
	case StepProject:
		items := make([]string, len(s.Selection))
		for i, e := range s.Selection {
			items[i] = e.String()
		}
		return "PROJECT " + strings.Join(items, ", ")
	}
	return s.Kind.String()
}

// Plan is the ordered pipeline for a Descriptor: filter, then order, then
// paginate, then project. Stages without a corresponding clause are left
// out, except the projection which is always present.
type Plan struct {
	source string
	steps  []Step
}

// BuildPlan lays out the pipeline for d. The step order is fixed and does
// not depend on where the clauses appeared in the SQL text.
func BuildPlan(d *Descriptor) *Plan {
	p := &Plan{source: d.Source()}

	if c := d.Condition(); c != nil {
		p.steps = append(p.steps, Step{Kind: StepFilter, Condition: c})
	}
	if keys := d.OrderBy(); len(keys) > 0 {
		p.steps = append(p.steps, Step{Kind: StepOrder, Keys: keys})
	}

	offset, hasOffset := d.Offset()
	limit, hasLimit := d.Limit()
	if hasOffset || hasLimit {
		if !hasLimit {
			limit = -1
		}
		p.steps = append(p.steps, Step{Kind: StepPaginate, Offset: offset, Limit: limit})
	}

	p.steps = append(p.steps, Step{Kind: StepProject, Selection: d.Selection()})
	return p
}

// Source is the data origin the plan reads.
func (p *Plan) Source() string { return p.source }

// Steps returns the pipeline stages in execution order.
func (p *Plan) Steps() []Step { return slices.Clone(p.steps) }

// String renders the source followed by one line per step.
func (p *Plan) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "SOURCE %s\n", p.source)
	for _, s := range p.steps {
		b.WriteString(s.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// Apply appends the plan's stages to lf.
//
// An ORDER BY key normally names a column of the input. When no input
// column has that name but a projection item is aliased to it, the aliased
// expression is sorted on instead. Unresolved keys are left as column
// references and fail when the frame is collected.
func (p *Plan) Apply(lf *table.LazyFrame) *table.LazyFrame {
	var selection []table.Expr
	for _, s := range p.steps {
		if s.Kind == StepProject {
			selection = s.Selection
		}
	}

	for _, s := range p.steps {
		switch s.Kind {
		case StepFilter:
			lf = lf.Filter(s.Condition)
		case StepOrder:
			names, _ := lf.Names()
			keys := make([]table.SortKey, len(s.Keys))
			for i, k := range s.Keys {
				keys[i] = table.SortKey{Expr: resolveSortKey(k.Column, names, selection), Desc: k.Desc}
			}
			lf = lf.Sort(keys...)
		case StepPaginate:
			lf = lf.Slice(s.Offset, s.Limit)
		case StepProject:
			lf = lf.Select(s.Selection...)
		}
	}
	return lf
}

func resolveSortKey(name string, columns []string, selection []table.Expr) table.Expr {
	if slices.Contains(columns, name) {
		return table.Col(name)
	}
	for _, e := range selection {
		if a, ok := e.(*table.AliasExpr); ok && a.Name == name {
			return a.Expr
		}
	}
	return table.Col(name)
}
