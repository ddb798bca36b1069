// Package errors provides structured error handling for the reflow library.
package errors

import (
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindSignal indicates a failure in signal dispatch or subscription.
	KindSignal
	// KindWatch indicates a structural mutation watcher error.
	KindWatch
	// KindInspect indicates an inspection server error.
	KindInspect
	// KindPanic indicates a recovered panic.
	KindPanic
)

func (k ErrorKind) String() string {
	switch k {
	case KindSignal:
		return "signal"
	case KindWatch:
		return "watch"
	case KindInspect:
		return "inspect"
	case KindPanic:
		return "panic"
	default:
		return "unknown"
	}
}

// ReflowError represents a structured error in the reflow library.
type ReflowError struct {
	// Op is the operation that failed (e.g., "fsenv.Watcher.Observe").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// Source is the signal source name, if applicable.
	Source string
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *ReflowError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s [%s] source=%s: %v", e.Op, e.Kind, e.Source, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *ReflowError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "signal.Source.Emit").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// ErrorHandler receives errors reported by the reflow library.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *ReflowError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}
