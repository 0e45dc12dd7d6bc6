package utils

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// PanicError wraps a panic value as an error.
type PanicError struct {
	Value      interface{}
	StackTrace string
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// RecoverAsError recovers from a panic and converts it to an error.
// It should be called with defer; errPtr points at the error return value.
//
//	func doWork() (err error) {
//	    defer utils.RecoverAsError(&err)
//	    ...
//	}
func RecoverAsError(errPtr *error) {
	if r := recover(); r != nil {
		stack := string(debug.Stack())
		*errPtr = &PanicError{
			Value:      r,
			StackTrace: stack,
		}
		slog.Error("Recovered from panic", "panic", r, "stack", stack)
	}
}

// RecoverWithCallback recovers from a panic and calls the callback with the
// error. Useful in goroutines where the error return pattern is unavailable.
func RecoverWithCallback(callback func(error)) {
	if r := recover(); r != nil {
		stack := string(debug.Stack())
		err := &PanicError{
			Value:      r,
			StackTrace: stack,
		}
		slog.Error("Recovered from panic", "panic", r, "stack", stack)
		if callback != nil {
			callback(err)
		}
	}
}
