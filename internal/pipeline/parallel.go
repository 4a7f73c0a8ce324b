// internal/pipeline/parallel.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

var (
	ErrPoolSize     = errors.New("worker pool size must be at least 1")
	ErrPoolTooLarge = errors.New("worker pool size exceeds available CPUs")
)

// Oversubscribe is how many workers per CPU we accept before refusing to
// start a pool.
const Oversubscribe = 8

// chunksPerWorker trades scheduling overhead against load balance when
// per-record cost is uneven.
const chunksPerWorker = 4

// cancelStride is how often (in records) a task polls for cancellation.
const cancelStride = 1024

// ValidateWorkers rejects pool sizes the pipeline will not start with.
func ValidateWorkers(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", ErrPoolSize, n)
	}
	ncpu := runtime.NumCPU()
	if max := ncpu * Oversubscribe; n > max {
		return fmt.Errorf("%w: %d requested, limit is %d (%d CPUs x %d)", ErrPoolTooLarge, n, max, ncpu, Oversubscribe)
	}
	return nil
}

type span struct{ lo, hi int }

// partition splits [0,n) into contiguous spans. It depends only on n and
// workers, never on timing.
func partition(n, workers int) []span {
	if n == 0 {
		return nil
	}
	parts := workers * chunksPerWorker
	if parts > n {
		parts = n
	}
	size := (n + parts - 1) / parts
	spans := make([]span, 0, parts)
	for lo := 0; lo < n; lo += size {
		spans = append(spans, span{lo: lo, hi: min(lo+size, n)})
	}
	return spans
}

// MapIndex evaluates fn(i) for every i in [0,n) on at most workers
// goroutines. Result i always lands in slot i: each task owns one span of
// the output slice and nothing else, so no locking is needed.
//
// A call that returns an error or panics leaves its slot at the zero value
// and is counted in failed; it never stops the batch. The returned error is
// only ever a setup error or ctx's error, in which case no results are
// returned at all.
func MapIndex[Out any](ctx context.Context, n, workers int, fn func(i int) (Out, error)) (out []Out, failed int, err error) {
	if err := ValidateWorkers(workers); err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	out = make([]Out, n)
	spans := partition(n, workers)
	fails := make([]int, len(spans)) // one slot per task, summed after Wait

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for k, sp := range spans {
		g.Go(func() error {
			for i := sp.lo; i < sp.hi; i++ {
				if i == sp.lo || i%cancelStride == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				v, ok := safeCall(fn, i)
				if !ok {
					fails[k]++
					continue
				}
				out[i] = v
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	for _, f := range fails {
		failed += f
	}
	return out, failed, nil
}

// Map is MapIndex over a slice.
func Map[In, Out any](ctx context.Context, in []In, workers int, fn func(In) (Out, error)) ([]Out, int, error) {
	return MapIndex(ctx, len(in), workers, func(i int) (Out, error) {
		return fn(in[i])
	})
}

func safeCall[Out any](fn func(int) (Out, error), i int) (v Out, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			var zero Out
			v, ok = zero, false
		}
	}()
	v, err := fn(i)
	if err != nil {
		var zero Out
		return zero, false
	}
	return v, true
}
