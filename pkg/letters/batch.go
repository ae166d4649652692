package letters

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// SolveAll answers queries concurrently on at most workers goroutines
// (unbounded when workers <= 0). Results are in query order. Queries are
// independent and share nothing but the read-only index; ctx is checked
// before each query starts, never during one.
func SolveAll(ctx context.Context, solver ISolver, queries []string, workers int) ([][]string, error) {
	results := make([][]string, len(queries))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, q := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = solver.Solve(q)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
