// Package parallel provides small fan-out helpers for work that splits
// cleanly across CPU cores, such as per-fold model prediction.
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize divides items across the available CPU cores and calls fn for
// each half-open range [start, end). It returns after every range has been
// processed.
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	numWorkers := runtime.NumCPU()
	if numWorkers > items {
		numWorkers = items
	}
	chunkSize := (items + numWorkers - 1) / numWorkers

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > items {
			end = items
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ForEach runs fn(i) for every index in [0, items) concurrently, one
// goroutine per index, and waits for all of them. The first non-nil error is
// returned; the remaining calls still run to completion. Item counts here
// are small (cross-validation folds), so no worker pool is needed.
func ForEach(items int, fn func(i int) error) error {
	if items <= 0 {
		return nil
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i := 0; i < items; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := fn(i); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()
	return firstErr
}
