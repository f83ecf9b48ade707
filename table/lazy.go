package table

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"strings"
)

// LazyFrame is a deferred sequence of table operations. Building a
// LazyFrame does no work; Collect validates every referenced column
// against the schema each step produces and only then evaluates.
//
// LazyFrame values are immutable: each method returns a new frame.
type LazyFrame struct {
	source  *Table
	ops     []lazyOp
	workers int
}

type lazyOp interface {
	// names validates the op against its input columns and returns its
	// output columns.
	names(in []string) ([]string, error)
	apply(ctx context.Context, t *Table, workers int) (*Table, error)
	String() string
}

// NewLazyFrame starts a lazy query over t using GOMAXPROCS workers.
func NewLazyFrame(t *Table) *LazyFrame {
	return &LazyFrame{source: t, workers: runtime.GOMAXPROCS(0)}
}

func (lf *LazyFrame) with(op lazyOp) *LazyFrame {
	ops := make([]lazyOp, len(lf.ops), len(lf.ops)+1)
	copy(ops, lf.ops)
	return &LazyFrame{source: lf.source, ops: append(ops, op), workers: lf.workers}
}

// WithWorkers sets the number of goroutines used for evaluation. Values
// below 1 mean 1. Results do not depend on the worker count.
func (lf *LazyFrame) WithWorkers(n int) *LazyFrame {
	out := *lf
	out.workers = max(n, 1)
	return &out
}

// Filter keeps the rows for which pred is true; false and null drop the row.
func (lf *LazyFrame) Filter(pred Expr) *LazyFrame {
	return lf.with(&filterOp{pred: pred})
}

// Sort orders rows by keys, the first key being the primary one. The sort
// is stable and nulls come first in both directions.
func (lf *LazyFrame) Sort(keys ...SortKey) *LazyFrame {
	return lf.with(&sortOp{keys: keys})
}

// Slice skips offset rows and keeps at most length rows. A negative length
// keeps every remaining row.
func (lf *LazyFrame) Slice(offset, length int64) *LazyFrame {
	return lf.with(&sliceOp{offset: offset, length: length})
}

// Select projects exprs in order. A Wildcard expands to every input column.
func (lf *LazyFrame) Select(exprs ...Expr) *LazyFrame {
	return lf.with(&selectOp{exprs: exprs})
}

// Ops describes the pending operations, one per step.
func (lf *LazyFrame) Ops() []string {
	out := make([]string, len(lf.ops))
	for i, op := range lf.ops {
		out[i] = op.String()
	}
	return out
}

// Names validates the pipeline and returns the column names Collect would
// produce.
func (lf *LazyFrame) Names() ([]string, error) {
	names := lf.source.Names()
	for _, op := range lf.ops {
		var err error
		if names, err = op.names(names); err != nil {
			return nil, err
		}
	}
	return names, nil
}

// Collect validates and runs the pipeline.
func (lf *LazyFrame) Collect(ctx context.Context) (*Table, error) {
	if _, err := lf.Names(); err != nil {
		return nil, err
	}

	t := lf.source
	for _, op := range lf.ops {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var err error
		if t, err = op.apply(ctx, t, lf.workers); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// checkColumns reports the first column used by exprs that is not in names.
func checkColumns(names []string, exprs ...Expr) error {
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	for _, e := range exprs {
		for _, c := range e.Columns() {
			if !known[c] {
				return &ColumnNotFoundError{Name: c, Available: names}
			}
		}
	}
	return nil
}

type filterOp struct {
	pred Expr
}

func (op *filterOp) names(in []string) ([]string, error) {
	return in, checkColumns(in, op.pred)
}

func (op *filterOp) apply(ctx context.Context, t *Table, workers int) (*Table, error) {
	values, err := evalColumn(ctx, t, op.pred, workers)
	if err != nil {
		return nil, err
	}
	keep := make([]int, 0, len(values))
	for i, v := range values {
		ok, isNull, err := asBool(v)
		if err != nil {
			return nil, &RowError{Row: i, Expr: op.pred.String(), Err: err}
		}
		if ok && !isNull {
			keep = append(keep, i)
		}
	}
	return t.Take(keep), nil
}

func (op *filterOp) String() string { return "FILTER " + op.pred.String() }

type sortOp struct {
	keys []SortKey
}

func (op *sortOp) names(in []string) ([]string, error) {
	for _, k := range op.keys {
		if err := checkColumns(in, k.Expr); err != nil {
			return nil, err
		}
	}
	return in, nil
}

func (op *sortOp) apply(ctx context.Context, t *Table, workers int) (*Table, error) {
	if len(op.keys) == 0 || t.Height() < 2 {
		return t, nil
	}
	idx, err := sortIndices(ctx, t, op.keys, workers)
	if err != nil {
		return nil, err
	}
	return t.Take(idx), nil
}

func (op *sortOp) String() string { return "SORT " + sortKeysString(op.keys) }

type sliceOp struct {
	offset, length int64
}

func (op *sliceOp) names(in []string) ([]string, error) { return in, nil }

func (op *sliceOp) apply(_ context.Context, t *Table, _ int) (*Table, error) {
	offset := int(min(max(op.offset, 0), int64(t.Height())))
	length := -1
	if op.length >= 0 && op.length < math.MaxInt {
		length = int(op.length)
	}
	return t.Slice(offset, length), nil
}

func (op *sliceOp) String() string {
	if op.length < 0 {
		return fmt.Sprintf("SLICE offset=%d", op.offset)
	}
	return fmt.Sprintf("SLICE offset=%d length=%d", op.offset, op.length)
}

type selectOp struct {
	exprs []Expr
}

func (op *selectOp) names(in []string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for _, e := range op.exprs {
		if err := checkColumns(in, e); err != nil {
			return nil, err
		}
		names := []string{OutputName(e)}
		if _, ok := e.(*WildcardExpr); ok {
			names = in
		}
		for _, n := range names {
			if seen[n] {
				return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, n)
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out, nil
}

func (op *selectOp) apply(ctx context.Context, t *Table, workers int) (*Table, error) {
	var cols []*Series
	for _, e := range op.exprs {
		switch x := e.(type) {
		case *WildcardExpr:
			cols = append(cols, t.Columns()...)
			continue
		case *ColumnExpr:
			col, err := t.Column(x.Name)
			if err != nil {
				return nil, err
			}
			cols = append(cols, col)
			continue
		case *AliasExpr:
			if c, ok := x.Expr.(*ColumnExpr); ok {
				col, err := t.Column(c.Name)
				if err != nil {
					return nil, err
				}
				cols = append(cols, col.Rename(x.Name))
				continue
			}
		}

		values, err := evalColumn(ctx, t, e, workers)
		if err != nil {
			return nil, err
		}
		cols = append(cols, InferSeries(OutputName(e), values))
	}
	return New(cols...)
}

func (op *selectOp) String() string {
	parts := make([]string, len(op.exprs))
	for i, e := range op.exprs {
		parts[i] = e.String()
	}
	return "SELECT " + strings.Join(parts, ", ")
}
