package kernel

import (
	"path/filepath"
	"time"

	"github.com/dshills/simext/internal/config"
	"github.com/dshills/simext/internal/host"
	"github.com/dshills/simext/internal/persistence"
)

// Storage selects the persistence backend.
type Storage string

// Storage kinds.
const (
	StorageFile      Storage = "file"
	StorageFolder    Storage = "folder"
	StorageBolt      Storage = "bolt"
	StorageContainer Storage = "container"
)

// BoltFile is the database file name used by StorageBolt.
const BoltFile = "simext.db"

// Options configures a Kernel.
type Options struct {
	// Root is the host's documents folder. Logs, config and data default
	// to it.
	Root string

	// ConfigPath overrides <Root>/simext.config.json.
	ConfigPath string

	// LogDir overrides Root as the log directory.
	LogDir string

	// DataDir overrides Root as the data directory.
	DataDir string

	// Storage selects the persistence backend. Defaults to StorageFile.
	Storage Storage

	// World is the host world used by StorageContainer.
	World persistence.WorldFunc

	// Slots overrides the save slot tracking of the kernel.
	Slots persistence.SlotProvider

	// Clock scales real time into game time. Defaults to real time.
	Clock host.GameClock

	// Now returns the current real time. Defaults to time.Now.
	Now func() time.Time

	// ExtensionPaths are searched for script extensions on Start.
	ExtensionPaths []string

	// ScriptTimeout bounds every script call. Zero keeps the default.
	ScriptTimeout time.Duration

	// WatchConfig reloads the config file when it changes.
	WatchConfig bool
}

func (o Options) configPath() string {
	if o.ConfigPath != "" {
		return o.ConfigPath
	}
	return filepath.Join(o.Root, config.FileName)
}

func (o Options) logDir() string {
	if o.LogDir != "" {
		return o.LogDir
	}
	return o.Root
}

func (o Options) dataDir() string {
	if o.DataDir != "" {
		return o.DataDir
	}
	return o.Root
}

func (o Options) storage() Storage {
	if o.Storage == "" {
		return StorageFile
	}
	return o.Storage
}
