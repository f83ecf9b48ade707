package table

import (
	"context"

	"golang.org/x/sync/errgroup"
)

type chunk struct {
	lo, hi int
}

// chunks splits [0, n) into at most parts contiguous ranges.
func chunks(n, parts int) []chunk {
	if n == 0 {
		return nil
	}
	if parts < 1 {
		parts = 1
	}
	if parts > n {
		parts = n
	}
	size := (n + parts - 1) / parts
	out := make([]chunk, 0, parts)
	for lo := 0; lo < n; lo += size {
		out = append(out, chunk{lo: lo, hi: min(lo+size, n)})
	}
	return out
}

// forEachChunk runs fn over contiguous ranges of [0, n) on up to workers
// goroutines. An error from fn does not stop other chunks; the error of
// the lowest chunk is returned, so the reported failure is always the one
// for the earliest failing row regardless of the number of workers.
func forEachChunk(ctx context.Context, n, workers int, fn func(lo, hi int) error) error {
	parts := chunks(n, workers)
	if len(parts) == 0 {
		return ctx.Err()
	}

	errs := make([]error, len(parts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(workers, 1))
	for i, c := range parts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			errs[i] = fn(c.lo, c.hi)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return ctx.Err()
}

// evalColumn evaluates e for every row of t.
func evalColumn(ctx context.Context, t *Table, e Expr, workers int) ([]any, error) {
	out := make([]any, t.Height())
	err := forEachChunk(ctx, t.Height(), workers, func(lo, hi int) error {
		for i := lo; i < hi; i++ {
			v, err := e.Eval(t.Row(i))
			if err != nil {
				return &RowError{Row: i, Expr: e.String(), Err: err}
			}
			out[i] = v
		}
		return nil
	})
	return out, err
}
