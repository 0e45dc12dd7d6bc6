package utils

import (
	"os"
	"runtime"
	"strconv"
)

// DefaultWorkerLimit is the fallback concurrency for worker pools when
// neither configuration nor environment specifies one.
var DefaultWorkerLimit = runtime.NumCPU()

// GetWorkerLimit returns the worker limit from the WORKER_LIMIT environment
// variable, or DefaultWorkerLimit.
func GetWorkerLimit() int {
	val := os.Getenv("WORKER_LIMIT")
	if val == "" {
		return DefaultWorkerLimit
	}
	limit, err := strconv.Atoi(val)
	if err != nil || limit <= 0 {
		return DefaultWorkerLimit
	}
	return limit
}

// FirstError returns the first non-nil error from a slice, or nil.
func FirstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
