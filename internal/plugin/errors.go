package plugin

import "errors"

// Errors returned by the plugin system.
var (
	// ErrNoManifest indicates a directory without an extension manifest.
	ErrNoManifest = errors.New("no extension manifest")

	// ErrAlreadyLoaded indicates an extension with the same name is loaded.
	ErrAlreadyLoaded = errors.New("extension already loaded")

	// ErrNotLoaded indicates the extension is not loaded.
	ErrNotLoaded = errors.New("extension not loaded")

	// ErrMissingMain indicates the entry script does not exist.
	ErrMissingMain = errors.New("extension entry script not found")
)
