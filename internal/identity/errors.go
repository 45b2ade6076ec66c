package identity

import "errors"

// Identity errors.
var (
	// ErrMissingName is returned when an identity has no name.
	ErrMissingName = errors.New("identity: name is required")

	// ErrInvalidNamespace is returned when the namespace cannot be used in a file name.
	ErrInvalidNamespace = errors.New("identity: namespace contains path characters")

	// ErrUnsupportedManifest is returned for manifest files that are neither JSON nor YAML.
	ErrUnsupportedManifest = errors.New("identity: unsupported manifest format")
)
