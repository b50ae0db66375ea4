package runs

import (
	"context"
	"sync"

	"github.com/newthinker/splitgate/internal/core"
)

type result struct {
	record core.RunRecord
	err    error
}

// parallel applies fn to every input on at most workers goroutines. Results
// keep the input order. Inputs not started before ctx is done get ctx's error.
func parallel(ctx context.Context, workers int, inputs []string, fn func(context.Context, string) (core.RunRecord, error)) []result {
	results := make([]result, len(inputs))
	if workers <= 0 {
		workers = 1
	}
	if workers > len(inputs) {
		workers = len(inputs)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				rec, err := fn(ctx, inputs[i])
				results[i] = result{record: rec, err: err}
			}
		}()
	}

	for i := range inputs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			results[i] = result{err: ctx.Err()}
		}
	}
	close(jobs)
	wg.Wait()
	return results
}
