package kernel

import (
	"errors"
	"fmt"
)

// Kernel errors.
var (
	// ErrAlreadyStarted indicates Start was called twice.
	ErrAlreadyStarted = errors.New("kernel already started")

	// ErrClosed indicates the kernel was closed.
	ErrClosed = errors.New("kernel closed")

	// ErrUnknownStorage indicates an unsupported storage kind.
	ErrUnknownStorage = errors.New("unknown storage kind")

	// ErrNoWorld indicates container storage without a world.
	ErrNoWorld = errors.New("container storage requires a world")
)

// InitError reports a component that failed to initialize.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("failed to initialize %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}
