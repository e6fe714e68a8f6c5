// Package workerpool runs bounded concurrent work over a list of items.
package workerpool

import (
	"context"
	"sync"

	"go.uber.org/ratelimit"
)

// Process runs fn over items with at most workers goroutines. When limiter
// is not nil every item waits for a token before fn is called. The first
// error cancels the remaining work and is returned.
func Process[T any](
	ctx context.Context,
	workers int,
	items []T,
	limiter ratelimit.Limiter,
	fn func(context.Context, T) error,
) error {
	if workers <= 0 {
		workers = 1
	}
	if workers > len(items) && len(items) > 0 {
		workers = len(items)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	tasks := make(chan T)
	var (
		once     sync.Once
		firstErr error
		wg       sync.WaitGroup
	)
	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range tasks {
				if ctx.Err() != nil {
					continue
				}
				if limiter != nil {
					limiter.Take()
				}
				if err := fn(ctx, item); err != nil {
					fail(err)
				}
			}
		}()
	}

feed:
	for _, item := range items {
		select {
		case <-ctx.Done():
			break feed
		case tasks <- item:
		}
	}
	close(tasks)
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
