package table

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func column(t *testing.T, tbl *Table, name string) []any {
	t.Helper()
	s, err := tbl.Column(name)
	require.NoError(t, err)
	return s.Values()
}

func TestLazyFrame_Pipeline(t *testing.T) {
	tbl, err := New(
		InferSeries("name", []any{"Alice", "Bob", "Carol"}),
		InferSeries("age", []any{30, 25, 25}),
	)
	require.NoError(t, err)

	out, err := tbl.Lazy().
		Filter(Binary(OpGe, Col("age"), Lit(25))).
		Sort(SortKey{Expr: Col("age"), Desc: true}, SortKey{Expr: Col("name")}).
		Slice(0, 2).
		Select(Col("name")).
		Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"name"}, out.Names())
	assert.Equal(t, []any{"Alice", "Bob"}, column(t, out, "name"))
}

func TestLazyFrame_FilterDropsFalseAndNull(t *testing.T) {
	out, err := people(t).Lazy().
		Filter(Binary(OpGt, Col("age"), Lit(26))).
		Collect(context.Background())
	require.NoError(t, err)
	// Dave has a null age and is dropped along with the false rows.
	assert.Equal(t, []any{"Alice", nil}, column(t, out, "name"))
}

func TestLazyFrame_FilterNonBoolean(t *testing.T) {
	_, err := people(t).Lazy().Filter(Col("age")).Collect(context.Background())
	assert.ErrorIs(t, err, ErrNotBoolean)
}

func TestLazyFrame_NullsFirstBothDirections(t *testing.T) {
	for _, desc := range []bool{false, true} {
		t.Run(fmt.Sprintf("desc=%v", desc), func(t *testing.T) {
			out, err := people(t).Lazy().
				Sort(SortKey{Expr: Col("age"), Desc: desc}).
				Collect(context.Background())
			require.NoError(t, err)
			ages := column(t, out, "age")
			assert.Nil(t, ages[0])
			if desc {
				assert.Equal(t, []any{nil, int64(41), int64(30), int64(25), int64(25)}, ages)
			} else {
				assert.Equal(t, []any{nil, int64(25), int64(25), int64(30), int64(41)}, ages)
			}
		})
	}
}

func TestLazyFrame_SortIsStable(t *testing.T) {
	out, err := people(t).Lazy().
		Sort(SortKey{Expr: Col("age")}).
		Collect(context.Background())
	require.NoError(t, err)
	// Bob precedes Carol in the input and both are 25.
	assert.Equal(t, []any{"Dave", "Bob", "Carol", "Alice", nil}, column(t, out, "name"))
}

// bigTable builds n rows with many duplicate keys so stability matters.
func bigTable(t *testing.T, n int) *Table {
	t.Helper()
	keys := make([]any, n)
	ids := make([]any, n)
	vals := make([]any, n)
	for i := 0; i < n; i++ {
		if i%17 == 0 {
			keys[i] = nil
		} else {
			keys[i] = int64((i * 7919) % 13)
		}
		ids[i] = int64(i)
		vals[i] = float64(i%5) / 2
	}
	tbl, err := New(InferSeries("k", keys), InferSeries("id", ids), InferSeries("v", vals))
	require.NoError(t, err)
	return tbl
}

func TestLazyFrame_WorkerCountIndependence(t *testing.T) {
	tbl := bigTable(t, 1000)
	query := func(workers int) *Table {
		out, err := tbl.Lazy().
			WithWorkers(workers).
			Filter(Binary(OpGe, Col("v"), Lit(0.5))).
			Sort(SortKey{Expr: Col("k"), Desc: true}, SortKey{Expr: Col("v")}).
			Slice(10, 500).
			Select(Col("id"), Alias(Binary(OpMul, Col("v"), Lit(2)), "v2")).
			Collect(context.Background())
		require.NoError(t, err)
		return out
	}

	want := query(1)
	for _, workers := range []int{2, 3, 8, 64} {
		got := query(workers)
		assert.Equal(t, column(t, want, "id"), column(t, got, "id"), "workers=%d", workers)
		assert.Equal(t, column(t, want, "v2"), column(t, got, "v2"), "workers=%d", workers)
	}

	// ties on (k, v) keep ascending id order
	ids := column(t, want, "id")
	ks := column(t, tbl.Take(toInts(ids)), "k")
	vs := column(t, tbl.Take(toInts(ids)), "v")
	for i := 1; i < len(ids); i++ {
		if ks[i] == ks[i-1] && vs[i] == vs[i-1] {
			assert.Less(t, ids[i-1].(int64), ids[i].(int64))
		}
	}
}

func toInts(values []any) []int {
	out := make([]int, len(values))
	for i, v := range values {
		out[i] = int(v.(int64))
	}
	return out
}

func TestLazyFrame_ErrorsAreDeterministic(t *testing.T) {
	tbl := bigTable(t, 1000)
	// id / (id % 100) divides by zero first at id 0, then at 100, 200, ...
	expr := Binary(OpDiv, Col("id"), Binary(OpMod, Col("id"), Lit(100)))

	var first string
	for _, workers := range []int{1, 2, 7, 32} {
		_, err := tbl.Lazy().WithWorkers(workers).Select(expr).Collect(context.Background())
		require.ErrorIs(t, err, ErrDivisionByZero)

		var rowErr *RowError
		require.ErrorAs(t, err, &rowErr)
		assert.Equal(t, 0, rowErr.Row)
		if first == "" {
			first = err.Error()
		}
		assert.Equal(t, first, err.Error())
	}
}

func TestLazyFrame_PlanTimeValidation(t *testing.T) {
	tests := []struct {
		name    string
		lf      func(*LazyFrame) *LazyFrame
		missing string
	}{
		{"filter", func(lf *LazyFrame) *LazyFrame { return lf.Filter(Binary(OpEq, Col("height"), Lit(1))) }, "height"},
		{"sort", func(lf *LazyFrame) *LazyFrame { return lf.Sort(SortKey{Expr: Col("rank")}) }, "rank"},
		{"select", func(lf *LazyFrame) *LazyFrame { return lf.Select(Col("name"), Col("email")) }, "email"},
		{"after projection", func(lf *LazyFrame) *LazyFrame {
			return lf.Select(Col("name")).Filter(Binary(OpGt, Col("age"), Lit(1)))
		}, "age"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.lf(people(t).Lazy()).Collect(context.Background())
			var notFound *ColumnNotFoundError
			require.ErrorAs(t, err, &notFound)
			assert.Equal(t, tt.missing, notFound.Name)
		})
	}
}

func TestLazyFrame_Select(t *testing.T) {
	tbl := people(t)

	t.Run("wildcard keeps order", func(t *testing.T) {
		out, err := tbl.Lazy().Select(Wildcard()).Collect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, tbl.Names(), out.Names())
		assert.Equal(t, tbl.Height(), out.Height())
	})

	t.Run("aliases and expressions", func(t *testing.T) {
		out, err := tbl.Lazy().
			Select(Alias(Col("name"), "who"), Binary(OpAdd, Col("age"), Lit(1)), Lit("x")).
			Collect(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"who", "age + 1", "'x'"}, out.Names())
		s, _ := out.Column("age + 1")
		assert.Equal(t, Int64, s.DataType())
	})

	t.Run("duplicate output names", func(t *testing.T) {
		_, err := tbl.Lazy().Select(Col("name"), Alias(Col("age"), "name")).Collect(context.Background())
		assert.ErrorIs(t, err, ErrDuplicateColumn)
	})

	t.Run("wildcard with column duplicates", func(t *testing.T) {
		_, err := tbl.Lazy().Select(Wildcard(), Col("age")).Collect(context.Background())
		assert.ErrorIs(t, err, ErrDuplicateColumn)
	})
}

func TestLazyFrame_Slice(t *testing.T) {
	tests := []struct {
		name           string
		offset, length int64
		want           []any
	}{
		{"limit", 0, 2, []any{"Alice", "Bob"}},
		{"offset only", 3, -1, []any{"Dave", nil}},
		{"offset and limit", 1, 2, []any{"Bob", "Carol"}},
		{"offset past end", 10, -1, []any{}},
		{"limit zero", 0, 0, []any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := people(t).Lazy().Slice(tt.offset, tt.length).Collect(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.want, column(t, out, "name"))
		})
	}
}

func TestLazyFrame_OpsAndImmutability(t *testing.T) {
	base := people(t).Lazy()
	filtered := base.Filter(Binary(OpGt, Col("age"), Lit(1)))
	full := filtered.Sort(SortKey{Expr: Col("age"), Desc: true}).Slice(0, 3).Select(Col("name"))

	assert.Empty(t, base.Ops())
	assert.Len(t, filtered.Ops(), 1)
	assert.Equal(t, []string{
		"FILTER age > 1",
		"SORT age DESC",
		"SLICE offset=0 length=3",
		"SELECT name",
	}, full.Ops())

	names, err := full.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, names)
}

func TestLazyFrame_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := bigTable(t, 100).Lazy().Filter(Lit(true)).Collect(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLazyFrame_SortMixedTypes(t *testing.T) {
	tbl := people(t)
	key := Case(nil, []When{{Cond: Binary(OpEq, Col("age"), Lit(30)), Result: Lit("x")}}, Lit(1))
	_, err := tbl.Lazy().Sort(SortKey{Expr: key}).Collect(context.Background())
	assert.ErrorIs(t, err, ErrTypeMismatch)
}
