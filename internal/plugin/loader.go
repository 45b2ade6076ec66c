package plugin

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/multierr"

	"github.com/dshills/simext/internal/identity"
)

// Loader discovers extensions on the filesystem.
type Loader struct {
	paths []string
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithPaths sets the extension search paths.
func WithPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.paths = paths
	}
}

// NewLoader creates a loader.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Paths returns the configured search paths.
func (l *Loader) Paths() []string {
	return l.paths
}

// AddPath adds a search path.
func (l *Loader) AddPath(path string) {
	l.paths = append(l.paths, path)
}

// Discover returns the manifests found in the search paths. A search path
// is either an extension directory itself or a directory of extension
// directories. Missing paths are skipped. Manifests that fail to load are
// reported in the error while the others are still returned.
func (l *Loader) Discover() ([]*identity.Manifest, error) {
	var (
		found []*identity.Manifest
		errs  error
		seen  = make(map[string]bool)
	)

	add := func(dir string) {
		m, err := ReadManifest(dir)
		if errors.Is(err, ErrNoManifest) {
			return
		}
		if err != nil {
			errs = multierr.Append(errs, err)
			return
		}
		if seen[m.Name] {
			errs = multierr.Append(errs, fmt.Errorf("%w: %s in %s", ErrAlreadyLoaded, m.Name, dir))
			return
		}
		seen[m.Name] = true
		found = append(found, m)
	}

	for _, root := range l.paths {
		if _, ok := identity.FindManifest(root); ok {
			add(root)
			continue
		}

		entries, err := os.ReadDir(root)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("reading extension path %s: %w", root, err))
			continue
		}

		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDir() {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			add(filepath.Join(root, name))
		}
	}

	return found, errs
}

// ReadManifest loads the manifest of the extension in dir and checks that
// its entry script exists.
func ReadManifest(dir string) (*identity.Manifest, error) {
	path, ok := identity.FindManifest(dir)
	if !ok {
		return nil, fmt.Errorf("%w in %s", ErrNoManifest, dir)
	}

	m, err := identity.LoadManifest(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}

	if info, err := os.Stat(m.MainPath()); err != nil || info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrMissingMain, m.MainPath())
	}
	return m, nil
}
