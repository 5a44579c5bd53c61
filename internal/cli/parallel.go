package cli

import (
	"context"
	"sync"
)

// task is one entry build scheduled in a fan-out.
type task func(ctx context.Context) error

// runConcurrent issues every task up front and joins on a single barrier.
// The first failure in task order becomes the overall result; in-flight
// siblings are not cancelled, their outcomes are simply dropped.
func runConcurrent(ctx context.Context, concurrency int, tasks []task) error {
	if len(tasks) == 0 {
		return nil
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(tasks) {
		concurrency = len(tasks)
	}

	sem := make(chan struct{}, concurrency)
	errs := make([]error, len(tasks))

	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func(i int, t task) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			errs[i] = t(ctx)
		}(i, t)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
