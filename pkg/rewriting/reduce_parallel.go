package rewriting

import (
	"context"
	"sync"

	"github.com/gitrdm/gorewrite/internal/parallel"
)

// ReduceAll reduces every term in the batch and returns the normal forms
// in matching positions, fanning the work out across a worker pool.
//
// Reduction only reads the rule store and the index, so this is safe on
// a system that is no longer being mutated, the usual state after
// completion. Callers still inserting rules must not call ReduceAll
// concurrently. A non-positive workers count defaults to the CPU count.
func (s *System) ReduceAll(ctx context.Context, terms []Term, workers int) ([]Term, error) {
	out := make([]Term, len(terms))
	pool := parallel.NewWorkerPool(workers)

	var wg sync.WaitGroup
	for i, u := range terms {
		i, u := i, u
		wg.Add(1)
		if err := pool.Submit(ctx, func() {
			defer wg.Done()
			out[i] = s.Reduce(u)
		}); err != nil {
			wg.Done()
			pool.Shutdown()
			return nil, err
		}
	}
	wg.Wait()
	pool.Shutdown()
	return out, nil
}
