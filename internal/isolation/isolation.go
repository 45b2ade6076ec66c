// Package isolation converts faults raised by extension code into log
// records attributed to the owning extension. Handlers, injections and
// persistence calls run through a Catcher so that a bug in one extension
// never unwinds into the host.
package isolation

import (
	"fmt"
	"runtime/debug"

	"github.com/dshills/simext/internal/identity"
	"github.com/dshills/simext/internal/logging"
)

// PanicError wraps a recovered panic value with the stack at the point of
// the panic.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements error.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// StackTrace implements logging.StackTracer.
func (e *PanicError) StackTrace() string {
	return string(e.Stack)
}

// Catcher runs callables under fault isolation.
type Catcher struct {
	logs *logging.Registry
}

// New creates a Catcher reporting to logs.
func New(logs *logging.Registry) *Catcher {
	return &Catcher{logs: logs}
}

// Logs returns the registry faults are reported to.
func (c *Catcher) Logs() *logging.Registry {
	return c.logs
}

// Catch runs fn. A panic or returned error is reported against owner under
// the given name and returned; it never propagates as a panic.
func (c *Catcher) Catch(owner identity.Identity, name string, fn func() error, kv ...any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
			c.report(owner, name, err, kv)
		}
	}()

	if err = fn(); err != nil {
		c.report(owner, name, err, kv)
	}
	return err
}

// Run is Catch for a callable without an error result.
func (c *Catcher) Run(owner identity.Identity, name string, fn func(), kv ...any) error {
	return c.Catch(owner, name, func() error {
		fn()
		return nil
	}, kv...)
}

// Report writes a fault directly, without running anything.
func (c *Catcher) Report(owner identity.Identity, msg string, err error, kv ...any) {
	if c == nil || c.logs == nil {
		return
	}
	c.logs.Exceptions(owner).Exception(msg, err, kv...)
}

func (c *Catcher) report(owner identity.Identity, name string, err error, kv []any) {
	fields := make([]any, 0, len(kv)+2)
	fields = append(fields, "callable", name)
	fields = append(fields, kv...)
	c.Report(owner, fmt.Sprintf("error occurred in %s", name), err, fields...)
}

// CatchValue runs fn and returns its result, or fallback if it panicked.
func CatchValue[T any](c *Catcher, owner identity.Identity, name string, fallback T, fn func() T, kv ...any) T {
	result := fallback
	_ = c.Catch(owner, name, func() error {
		result = fn()
		return nil
	}, kv...)
	return result
}

// CatchValueE runs fn and returns its result, or fallback if it panicked or
// returned an error.
func CatchValueE[T any](c *Catcher, owner identity.Identity, name string, fallback T, fn func() (T, error), kv ...any) T {
	result := fallback
	err := c.Catch(owner, name, func() error {
		v, err := fn()
		if err != nil {
			return err
		}
		result = v
		return nil
	}, kv...)
	if err != nil {
		return fallback
	}
	return result
}
