// Package identity provides the attribution key every kernel subsystem uses
// to name the extension that owns a log channel, injection, subscription,
// tracker or data store.
package identity

import (
	"fmt"
	"strings"
)

// Identity describes an extension. Identities are immutable values and
// compare equal when their names match.
type Identity struct {
	// Name is the unique extension name.
	Name string `json:"name" yaml:"name"`

	// Author is the extension author.
	Author string `json:"author" yaml:"author"`

	// BaseNamespace prefixes log files and persisted data names.
	BaseNamespace string `json:"namespace" yaml:"namespace"`

	// FilePath is where the extension was loaded from.
	FilePath string `json:"-" yaml:"-"`

	// Version is the extension version string.
	Version string `json:"version" yaml:"version"`
}

// Option configures an Identity at construction.
type Option func(*Identity)

// WithNamespace sets the base namespace.
func WithNamespace(ns string) Option {
	return func(i *Identity) {
		i.BaseNamespace = ns
	}
}

// WithFilePath sets the file path the extension was loaded from.
func WithFilePath(path string) Option {
	return func(i *Identity) {
		i.FilePath = path
	}
}

// WithVersion sets the version string.
func WithVersion(v string) Option {
	return func(i *Identity) {
		i.Version = v
	}
}

// New creates an identity. The name must not be empty.
func New(name, author string, opts ...Option) (Identity, error) {
	id := Identity{Name: strings.TrimSpace(name), Author: author}
	for _, opt := range opts {
		opt(&id)
	}
	if err := id.Validate(); err != nil {
		return Identity{}, err
	}
	return id, nil
}

// MustNew is like New but panics on an invalid identity.
func MustNew(name, author string, opts ...Option) Identity {
	id, err := New(name, author, opts...)
	if err != nil {
		panic(err)
	}
	return id
}

// Validate checks that the identity can be used as an attribution key.
func (i Identity) Validate() error {
	if i.Name == "" {
		return ErrMissingName
	}
	if strings.ContainsAny(i.Namespace(), `/\:*?"<>|`) {
		return fmt.Errorf("%w: %q", ErrInvalidNamespace, i.Namespace())
	}
	return nil
}

// Namespace returns the base namespace, falling back to a lowercased,
// underscore-separated form of the name.
func (i Identity) Namespace() string {
	if i.BaseNamespace != "" {
		return i.BaseNamespace
	}
	return strings.ToLower(strings.Join(strings.Fields(i.Name), "_"))
}

// Equal reports whether two identities name the same extension.
func (i Identity) Equal(other Identity) bool {
	return i.Name == other.Name
}

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool {
	return i.Name == ""
}

// String returns "name (author) version".
func (i Identity) String() string {
	var b strings.Builder
	b.WriteString(i.Name)
	if i.Author != "" {
		b.WriteString(" (")
		b.WriteString(i.Author)
		b.WriteString(")")
	}
	if i.Version != "" {
		b.WriteString(" ")
		b.WriteString(i.Version)
	}
	return b.String()
}

// Kernel is the identity the kernel uses for its own logs and injections.
var Kernel = Identity{
	Name:          "simext",
	Author:        "simext",
	BaseNamespace: "simext",
	Version:       "1.0.0",
}
