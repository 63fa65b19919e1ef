// Package result holds per-item outcomes of best-effort batch work.
package result

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of one unit of work
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the unit succeeded
func (r Result[T]) OK() bool {
	return r.Err == nil
}

// Values returns the values of the successful results, order preserved
func Values[T any](results []Result[T]) []T {
	out := make([]T, 0, len(results))
	for _, r := range results {
		if r.OK() {
			out = append(out, r.Value)
		}
	}
	return out
}

// Map runs fn over items with at most limit calls in flight and returns one
// Result per item in input order. A failing item does not cancel the others.
// A limit of zero or less means no limit.
func Map[T, R any](ctx context.Context, items []T, limit int, fn func(context.Context, T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, item := range items {
		g.Go(func() error {
			v, err := fn(ctx, item)
			results[i] = Result[R]{Value: v, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}
