package parallel

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Result is the outcome of a single mapped element.
type Result[D any] struct {
	Value D
	Err   error
}

// Map runs mapFunc over in with at most limit concurrent calls and waits for
// all of them. Results keep the input order, so callers can rely on position
// for preference ordering. Elements not yet started when ctx is canceled are
// skipped and get ctx.Err() as their error.
//
//	for i, r := range parallel.Map(ctx, 4, probes, probe) {}
func Map[E, D any](ctx context.Context, limit int, in []E, mapFunc func(context.Context, E) (D, error)) []Result[D] {
	ret := make([]Result[D], len(in))
	if len(in) == 0 {
		return ret
	}
	if limit <= 0 {
		limit = len(in)
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for idx, entry := range in {
		if err := ctx.Err(); err != nil {
			ret[idx].Err = err
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				ret[idx].Err = err
				return nil
			}
			d, err := mapFunc(ctx, entry)
			ret[idx] = Result[D]{Value: d, Err: err}
			return nil
		})
	}
	_ = g.Wait() // workers never return an error
	return ret
}
