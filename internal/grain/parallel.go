package grain

import (
	"context"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// MinChunk is the smallest range handed to one worker.
const MinChunk = 16

// ParallelFor executes fn over [0, n) split into contiguous chunks.
func ParallelFor(n, minChunk int, fn func(start, end int)) {
	if n <= 0 {
		return
	}
	if minChunk < 1 {
		minChunk = 1
	}
	numWorkers := runtime.GOMAXPROCS(0)
	if n <= minChunk || numWorkers <= 1 {
		fn(0, n)
		return
	}

	workers := numWorkers
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}

	wg.Wait()
}

// ForEach runs fn for every grain of t in parallel.
func ForEach(t *Table, fn func(id ID)) {
	ParallelFor(t.Len(), MinChunk, func(start, end int) {
		for i := start; i < end; i++ {
			fn(ID(i))
		}
	})
}

// ParallelErr runs fn over [0, n) in chunks with at most limit workers and
// returns the first error. Remaining chunks see a cancelled context.
func ParallelErr(ctx context.Context, n, limit int, fn func(ctx context.Context, start, end int) error) error {
	if n <= 0 {
		return nil
	}
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	chunkSize := (n + limit - 1) / limit
	if chunkSize < MinChunk {
		chunkSize = MinChunk
	}
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			return fn(gCtx, start, end)
		})
	}
	return g.Wait()
}
