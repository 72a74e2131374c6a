package kernel

import (
	"errors"
	"fmt"
)

// ErrKernelPanic is wrapped by errors produced from recovered kernel panics.
var ErrKernelPanic = errors.New("kernel panicked")

// NotFoundError is returned when a kernel name is not registered.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("kernel not found: %s", e.Name)
}

// PanicError carries the value and stack of a recovered kernel panic.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("%v: %v", ErrKernelPanic, e.Value)
}

func (e *PanicError) Unwrap() error {
	return ErrKernelPanic
}
