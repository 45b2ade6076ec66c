package inject

import "errors"

// Injection registry errors.
var (
	// ErrUnknownTarget is returned for a target the host never defined.
	ErrUnknownTarget = errors.New("inject: unknown target")

	// ErrAlreadyDefined is returned when the host defines a target twice.
	ErrAlreadyDefined = errors.New("inject: target already defined")

	// ErrInvalidReplacement is returned for a nil replacement or one whose
	// signature matches neither call convention.
	ErrInvalidReplacement = errors.New("inject: invalid replacement")

	// ErrNilFunc is returned when the host defines a target with a nil function.
	ErrNilFunc = errors.New("inject: nil function")
)
