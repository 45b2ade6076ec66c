package lua

import "errors"

// Errors returned by Lua states.
var (
	// ErrStateClosed indicates the state was closed.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNotFunction indicates a value that was expected to be callable.
	ErrNotFunction = errors.New("lua value is not a function")
)
