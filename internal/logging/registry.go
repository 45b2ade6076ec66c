package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/dshills/simext/internal/identity"
)

// Well-known channel names.
const (
	// ExceptionsChannel receives every isolated fault of an extension.
	ExceptionsChannel = "Exceptions"

	// VanillaChannel receives host log lines when forwarding is enabled.
	VanillaChannel = "Vanilla"

	// KernelChannel is the kernel's own diagnostics channel.
	KernelChannel = "Kernel"
)

// DefaultMaxFileSize is the per-file cap when none is configured.
const DefaultMaxFileSize int64 = 5 * 1024 * 1024

type channelKey struct {
	owner   string
	channel string
}

// Registry owns every log channel of the process.
type Registry struct {
	mu       sync.Mutex
	dir      string
	maxSize  int64
	vanilla  bool
	presets  map[string][]Level
	channels map[channelKey]*Channel
	sinks    map[string]*fileSink
}

// Option configures a Registry.
type Option func(*Registry)

// WithDirectory sets the directory log files are written to.
func WithDirectory(dir string) Option {
	return func(r *Registry) {
		r.dir = dir
	}
}

// WithMaxFileSize sets the per-file byte cap. Zero or less disables the cap.
func WithMaxFileSize(n int64) Option {
	return func(r *Registry) {
		r.maxSize = n
	}
}

// WithVanillaLogging enables forwarding of host log lines.
func WithVanillaLogging(enabled bool) Option {
	return func(r *Registry) {
		r.vanilla = enabled
	}
}

// WithEnabledLevels presets the levels of channels by channel name.
func WithEnabledLevels(levels map[string][]Level) Option {
	return func(r *Registry) {
		for name, l := range levels {
			r.presets[name] = l
		}
	}
}

// NewRegistry creates a log registry. Without WithDirectory logs go to
// "logs" under the working directory.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		dir:      "logs",
		maxSize:  DefaultMaxFileSize,
		presets:  make(map[string][]Level),
		channels: make(map[channelKey]*Channel),
		sinks:    make(map[string]*fileSink),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register returns the channel for (owner, name), creating it on first use.
func (r *Registry) Register(owner identity.Identity, name string) *Channel {
	key := channelKey{owner: owner.Name, channel: name}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.channels[key]; ok {
		return c
	}

	levels, ok := r.presets[name]
	if !ok {
		levels = DefaultLevels
		if name == ExceptionsChannel {
			levels = AllLevels
		}
	}

	path := r.pathFor(owner, name)
	sink, ok := r.sinks[path]
	if !ok {
		sink = newFileSink(path, r.maxSize)
		r.sinks[path] = sink
	}

	c := newChannel(owner, name, sink, levels)
	r.channels[key] = c
	return c
}

// Exceptions returns the exceptions channel of owner.
func (r *Registry) Exceptions(owner identity.Identity) *Channel {
	return r.Register(owner, ExceptionsChannel)
}

// Kernel returns the kernel's diagnostics channel.
func (r *Registry) Kernel() *Channel {
	return r.Register(identity.Kernel, KernelChannel)
}

// Lookup returns an existing channel without creating it.
func (r *Registry) Lookup(owner identity.Identity, name string) (*Channel, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.channels[channelKey{owner: owner.Name, channel: name}]
	return c, ok
}

// Channels returns every registered channel.
func (r *Registry) Channels() []*Channel {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Channel, 0, len(r.channels))
	for _, c := range r.channels {
		out = append(out, c)
	}
	return out
}

// Apply sets channel levels by channel name, as read from the enable_logs
// configuration section. Existing channels are updated in place and the
// values are kept for channels registered later. Unknown level names are
// skipped and reported in the returned error.
func (r *Registry) Apply(enable map[string][]string) error {
	var firstErr error

	r.mu.Lock()
	parsed := make(map[string][]Level, len(enable))
	for name, names := range enable {
		levels, err := ParseLevels(names)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("channel %q: %w", name, err)
		}
		parsed[name] = levels
		r.presets[name] = levels
	}
	channels := make([]*Channel, 0, len(r.channels))
	for _, c := range r.channels {
		channels = append(channels, c)
	}
	r.mu.Unlock()

	for _, c := range channels {
		if levels, ok := parsed[c.name]; ok {
			c.Set(levels...)
		}
	}
	return firstErr
}

// SetMaxFileSize changes the cap on every file.
func (r *Registry) SetMaxFileSize(n int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.maxSize = n
	for _, s := range r.sinks {
		s.SetMaxSize(n)
	}
}

// SetVanillaLogging toggles forwarding of host log lines.
func (r *Registry) SetVanillaLogging(enabled bool) {
	r.mu.Lock()
	r.vanilla = enabled
	r.mu.Unlock()
}

// ForwardHost writes a host log line to the kernel's Vanilla channel when
// forwarding is enabled. It reports whether the line was forwarded.
func (r *Registry) ForwardHost(level Level, group, msg string) bool {
	r.mu.Lock()
	enabled := r.vanilla
	r.mu.Unlock()
	if !enabled {
		return false
	}
	c := r.Register(identity.Kernel, VanillaChannel)
	c.Log(level, msg, "group", group)
	return true
}

// Dir returns the log directory.
func (r *Registry) Dir() string {
	return r.dir
}

// Sync flushes every channel.
func (r *Registry) Sync() {
	for _, c := range r.Channels() {
		c.Sync()
	}
}

// Close flushes and closes every file. Channels stay usable and reopen
// their files on the next write.
func (r *Registry) Close() {
	r.Sync()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sinks {
		s.Close()
	}
}

func (r *Registry) pathFor(owner identity.Identity, name string) string {
	return filepath.Join(r.dir, fmt.Sprintf("%s_%s.txt", owner.Namespace(), sanitize(name)))
}

func sanitize(name string) string {
	out := []rune(name)
	for i, ch := range out {
		if ch == os.PathSeparator || ch == '/' || ch == '\\' || ch == ':' {
			out[i] = '_'
		}
	}
	return string(out)
}
