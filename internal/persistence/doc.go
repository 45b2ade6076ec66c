// Package persistence stores extension data blobs.
//
// A blob is a JSON object keyed by a data name derived from the owning
// identity and an optional discriminator: "<namespace>_<discriminator>",
// or "<namespace>_main" without one. Backends store blobs in different
// media:
//
//   - FileBackend: one JSON file per blob under <root>/<namespace>/,
//     optionally qualified by the current save slot.
//   - ContainerBackend: the text attribute of a hidden in-world container
//     named after the blob, so the data lives inside the host's save.
//   - FolderBackend: a directory of JSON files merged in lexical order
//     with main.json last.
//   - BoltBackend: a bbolt database with one bucket per namespace.
//
// Backends return errors. Service wraps a backend for extension code and
// never returns or panics: faults are reported and replaced by an empty
// blob or a false result.
package persistence
