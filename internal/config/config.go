package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/simext/internal/logging"
)

// FileName is the default configuration file name.
const FileName = "simext.config.json"

// Config is the kernel configuration.
type Config struct {
	// EnableVanillaLogging forwards host log lines to the Vanilla channel.
	EnableVanillaLogging bool `json:"enable_vanilla_logging" toml:"enable_vanilla_logging"`

	// PersistModDataPerSaveSlot qualifies persisted file names with the
	// current save slot.
	PersistModDataPerSaveSlot bool `json:"persist_mod_data_per_save_slot" toml:"persist_mod_data_per_save_slot"`

	// CreateCombinedJSON makes folder backends write combined.json.
	CreateCombinedJSON bool `json:"create_combined_json" toml:"create_combined_json"`

	// MaxOutputFileSizeInBytes caps every log file.
	MaxOutputFileSizeInBytes int64 `json:"max_output_file_size_in_bytes" toml:"max_output_file_size_in_bytes"`

	// EnableLogs pre-enables levels per channel name.
	EnableLogs map[string][]string `json:"enable_logs" toml:"enable_logs"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		EnableVanillaLogging:      false,
		PersistModDataPerSaveSlot: true,
		CreateCombinedJSON:        false,
		MaxOutputFileSizeInBytes:  logging.DefaultMaxFileSize,
		EnableLogs:                map[string][]string{},
	}
}

// Validate checks value ranges and log level names.
func (c Config) Validate() error {
	if c.MaxOutputFileSizeInBytes <= 0 {
		return fmt.Errorf("%w: max_output_file_size_in_bytes must be positive, got %d",
			ErrValidationFailed, c.MaxOutputFileSizeInBytes)
	}
	if _, err := c.LogLevels(); err != nil {
		return fmt.Errorf("%w: enable_logs: %w", ErrValidationFailed, err)
	}
	return nil
}

// LogLevels parses EnableLogs.
func (c Config) LogLevels() (map[string][]logging.Level, error) {
	out := make(map[string][]logging.Level, len(c.EnableLogs))
	for channel, names := range c.EnableLogs {
		levels, err := logging.ParseLevels(names)
		if err != nil {
			return nil, fmt.Errorf("channel %s: %w", channel, err)
		}
		out[channel] = levels
	}
	return out, nil
}

// LoggingOptions returns the log registry options the configuration sets.
func (c Config) LoggingOptions() []logging.Option {
	opts := []logging.Option{
		logging.WithMaxFileSize(c.MaxOutputFileSizeInBytes),
		logging.WithVanillaLogging(c.EnableVanillaLogging),
	}
	if levels, err := c.LogLevels(); err == nil {
		opts = append(opts, logging.WithEnabledLevels(levels))
	}
	return opts
}

type format int

const (
	formatJSON format = iota
	formatTOML
)

func formatOf(path string) (format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".toml":
		return formatTOML, nil
	default:
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Load reads the configuration at path. Keys missing from the file keep
// their defaults.
func Load(path string) (Config, error) {
	f, err := formatOf(path)
	if err != nil {
		return Default(), err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		return Default(), fmt.Errorf("reading config file %s: %w", path, err)
	}

	cfg := Default()
	switch f {
	case formatTOML:
		err = toml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Default(), &ParseError{Path: path, Err: err}
	}
	if cfg.EnableLogs == nil {
		cfg.EnableLogs = map[string][]string{}
	}
	if err := cfg.Validate(); err != nil {
		return Default(), &ParseError{Path: path, Err: err}
	}
	return cfg, nil
}

// Write writes cfg to path in the format its extension names.
func Write(path string, cfg Config) error {
	f, err := formatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	switch f {
	case formatTOML:
		data, err = toml.Marshal(cfg)
	default:
		data, err = json.MarshalIndent(cfg, "", "    ")
	}
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// Ensure loads path and always returns a usable configuration. A missing
// file is created with defaults. A malformed file is logged, kept as
// <path>.bak and replaced with defaults. log may be nil.
func Ensure(path string, log *logging.Channel) Config {
	cfg, err := Load(path)
	if err == nil {
		return cfg
	}

	var parseErr *ParseError
	switch {
	case errors.Is(err, ErrFileNotFound):
		logWarn(log, "config file missing, writing defaults", "path", path)
	case errors.As(err, &parseErr):
		logException(log, "config file malformed, using defaults", err, "path", path)
		if rerr := os.Rename(path, path+".bak"); rerr != nil {
			logException(log, "failed to back up malformed config", rerr, "path", path)
		}
	default:
		logException(log, "failed to load config, using defaults", err, "path", path)
		return Default()
	}

	if werr := Write(path, cfg); werr != nil {
		logException(log, "failed to write default config", werr, "path", path)
	}
	return cfg
}

func logWarn(log *logging.Channel, msg string, kv ...any) {
	if log != nil {
		log.Warn(msg, kv...)
	}
}

func logException(log *logging.Channel, msg string, err error, kv ...any) {
	if log != nil {
		log.Exception(msg, err, kv...)
	}
}

// Apply pushes the logging settings onto a live registry.
func (c Config) Apply(reg *logging.Registry) error {
	reg.SetMaxFileSize(c.MaxOutputFileSizeInBytes)
	reg.SetVanillaLogging(c.EnableVanillaLogging)
	return reg.Apply(c.EnableLogs)
}
