package utils

import (
	"context"
	"sync"
)

// Worker processes a single item and returns a result.
type Worker[T any, R any] func(ctx context.Context, item T) (R, error)

// WorkerPool runs a worker function over a slice of items with bounded
// concurrency. Results and errors are returned positionally.
//
// Worker goroutines read from an internal channel until it is drained or the
// context is cancelled. ProcessItems blocks until all workers return. Panics
// in workers are recovered and converted to PanicError.
type WorkerPool[T any, R any] struct {
	numWorkers int
	worker     Worker[T, R]
}

// NewWorkerPool creates a worker pool with the given concurrency.
// A non-positive numWorkers falls back to GetWorkerLimit.
func NewWorkerPool[T any, R any](numWorkers int, worker Worker[T, R]) *WorkerPool[T, R] {
	if numWorkers <= 0 {
		numWorkers = GetWorkerLimit()
	}
	return &WorkerPool[T, R]{
		numWorkers: numWorkers,
		worker:     worker,
	}
}

// ProcessItems processes items using the worker pool.
func (wp *WorkerPool[T, R]) ProcessItems(ctx context.Context, items []T) ([]R, []error) {
	return wp.ProcessItemsFunc(ctx, items, nil)
}

// ProcessItemsFunc is ProcessItems with an optional per-item completion
// callback, invoked from worker goroutines as items finish. Used to drive
// progress reporting.
func (wp *WorkerPool[T, R]) ProcessItemsFunc(ctx context.Context, items []T, done func()) ([]R, []error) {
	if len(items) == 0 {
		return nil, nil
	}

	type indexed struct {
		item  T
		index int
	}

	itemsChan := make(chan indexed, len(items))
	for i, item := range items {
		itemsChan <- indexed{item: item, index: i}
	}
	close(itemsChan)

	results := make([]R, len(items))
	errors := make([]error, len(items))
	var wg sync.WaitGroup

	for i := 0; i < wp.numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case item, ok := <-itemsChan:
					if !ok {
						return
					}
					func() {
						defer RecoverWithCallback(func(err error) {
							errors[item.index] = err
						})
						results[item.index], errors[item.index] = wp.worker(ctx, item.item)
					}()
					if done != nil {
						done()
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	wg.Wait()
	return results, errors
}

// SemaphoreGather executes functions concurrently with a semaphore limiting
// concurrency, returning one error slot per function.
func SemaphoreGather(ctx context.Context, maxConcurrency int, functions ...func() error) []error {
	if len(functions) == 0 {
		return nil
	}
	if maxConcurrency <= 0 {
		maxConcurrency = GetWorkerLimit()
	}

	semaphore := make(chan struct{}, maxConcurrency)
	results := make([]error, len(functions))
	var wg sync.WaitGroup

	for i, fn := range functions {
		wg.Add(1)
		go func(index int, function func() error) {
			defer wg.Done()
			defer RecoverWithCallback(func(err error) {
				results[index] = err
			})

			select {
			case semaphore <- struct{}{}:
				defer func() { <-semaphore }()
			case <-ctx.Done():
				results[index] = ctx.Err()
				return
			}

			results[index] = function()
		}(i, fn)
	}

	wg.Wait()
	return results
}

// Batch splits items into batches of at most batchSize elements.
func Batch[T any](items []T, batchSize int) [][]T {
	if batchSize <= 0 {
		batchSize = 10
	}

	var batches [][]T
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}
	return batches
}
