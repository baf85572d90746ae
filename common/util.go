package common

import (
	"errors"
	"sync"
)

// RunParallel runs every task concurrently and waits for all of them. It
// returns how many failed along with their joined errors.
func RunParallel(tasks ...func() error) (int, error) {
	errs := make([]error, len(tasks))
	var wg sync.WaitGroup
	wg.Add(len(tasks))
	for i, task := range tasks {
		go func() {
			defer wg.Done()
			errs[i] = task()
		}()
	}
	wg.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	return failed, errors.Join(errs...)
}
