package inject

import (
	"fmt"
	"iter"
)

// Func is the shape of every host method: a receiver and positional arguments.
type Func func(recv any, args ...any) any

// Around is a replacement that receives the original as its first argument.
type Around func(original Func, recv any, args ...any) any

// After is a replacement that runs after the original; the original's
// result is returned to the host.
type After func(recv any, args ...any)

// AsSeq reports whether v is a generator: an iter.Seq[any] or an unnamed
// func(func(any) bool).
func AsSeq(v any) (iter.Seq[any], bool) {
	switch seq := v.(type) {
	case iter.Seq[any]:
		return seq, true
	case func(func(any) bool):
		return seq, true
	}
	return nil, false
}

// Target identifies a host method.
type Target struct {
	Class  string
	Method string
}

// String returns "Class.Method".
func (t Target) String() string {
	return fmt.Sprintf("%s.%s", t.Class, t.Method)
}

// Kind is how a host method binds its receiver.
type Kind int

const (
	// Instance methods receive the object the host called them on.
	Instance Kind = iota
	// ClassMethod methods receive the *Class descriptor of their class.
	ClassMethod
	// Static methods receive a nil receiver.
	Static
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Instance:
		return "instance"
	case ClassMethod:
		return "classmethod"
	case Static:
		return "staticmethod"
	default:
		return "unknown"
	}
}

// Class is the receiver passed to class methods.
type Class struct {
	Name string
}

// String returns the class name.
func (c *Class) String() string {
	return c.Name
}
