package table

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
)

// SortKey is one ORDER BY key.
type SortKey struct {
	Expr Expr
	Desc bool
}

func (k SortKey) String() string {
	if k.Desc {
		return k.Expr.String() + " DESC"
	}
	return k.Expr.String() + " ASC"
}

// compareKey orders two key values. Nulls come first in both directions.
func compareKey(a, b any, desc bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	c, _ := compareValues(a, b)
	if desc {
		return -c
	}
	return c
}

// checkSortable rejects key columns whose non-null values cannot be
// ordered against each other.
func checkSortable(key SortKey, values []any) error {
	first := Null
	for _, v := range values {
		t := TypeOf(v)
		if t == Null {
			continue
		}
		if first == Null {
			first = t
			continue
		}
		numeric := (first == Int64 || first == Float64) && (t == Int64 || t == Float64)
		if t != first && !numeric {
			return fmt.Errorf("%w: sort key %s mixes %s and %s values", ErrTypeMismatch, key.Expr, first, t)
		}
	}
	return nil
}

// sortIndices returns the row permutation that orders t by keys. Chunks
// are sorted on separate workers and merged pairwise; ties fall back to
// the original row position, so the result is stable and independent of
// the worker count.
func sortIndices(ctx context.Context, t *Table, keys []SortKey, workers int) ([]int, error) {
	values := make([][]any, len(keys))
	for k, key := range keys {
		col, err := evalColumn(ctx, t, key.Expr, workers)
		if err != nil {
			return nil, err
		}
		if err := checkSortable(key, col); err != nil {
			return nil, err
		}
		values[k] = col
	}

	compareRows := func(a, b int) int {
		for k, key := range keys {
			if c := compareKey(values[k][a], values[k][b], key.Desc); c != 0 {
				return c
			}
		}
		return cmp.Compare(a, b)
	}

	n := t.Height()
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}

	err := forEachChunk(ctx, n, workers, func(lo, hi int) error {
		slices.SortStableFunc(idx[lo:hi], compareRows)
		return nil
	})
	if err != nil {
		return nil, err
	}

	runs := chunks(n, workers)
	buf := make([]int, n)
	for len(runs) > 1 {
		merged := make([]chunk, 0, (len(runs)+1)/2)
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(workers, 1))
		for i := 0; i < len(runs); i += 2 {
			if i+1 == len(runs) {
				r := runs[i]
				copy(buf[r.lo:r.hi], idx[r.lo:r.hi])
				merged = append(merged, r)
				continue
			}
			left, right := runs[i], runs[i+1]
			merged = append(merged, chunk{lo: left.lo, hi: right.hi})
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				mergeRuns(buf[left.lo:right.hi], idx[left.lo:left.hi], idx[right.lo:right.hi], compareRows)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		idx, buf = buf, idx
		runs = merged
	}
	return idx, nil
}

// mergeRuns merges two sorted runs into dst, preferring left on ties.
func mergeRuns(dst, left, right []int, compareRows func(a, b int) int) {
	i, j, k := 0, 0, 0
	for i < len(left) && j < len(right) {
		if compareRows(left[i], right[j]) <= 0 {
			dst[k] = left[i]
			i++
		} else {
			dst[k] = right[j]
			j++
		}
		k++
	}
	k += copy(dst[k:], left[i:])
	copy(dst[k:], right[j:])
}

func sortKeysString(keys []SortKey) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k.String()
	}
	return strings.Join(parts, ", ")
}
