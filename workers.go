package slidezone

import (
	"context"
	"runtime"
	"sync"
)

// forEachSlide calls fn(i) for every i in [0, n) on at most concurrency
// goroutines. fn must only write to state owned by index i. Once ctx is done
// no further indices are started and ctx.Err() is returned.
func forEachSlide(ctx context.Context, n, concurrency int, fn func(i int)) error {
	if n == 0 {
		return ctx.Err()
	}
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	if concurrency > n {
		concurrency = n
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fn(i)
			}
		}()
	}

	var err error
feed:
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case jobs <- i:
		}
	}
	close(jobs)
	wg.Wait()
	return err
}
