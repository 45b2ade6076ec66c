// Package services holds process-wide singletons of the kernel and of
// extensions, created lazily and torn down together at zone teardown.
package services

import (
	"fmt"
	"reflect"
	"slices"
	"sync"

	"go.uber.org/multierr"
)

// Teardowner is implemented by services holding per-zone state.
type Teardowner interface {
	Teardown() error
}

// Registry holds one instance per service type.
type Registry struct {
	mu        sync.Mutex
	instances map[reflect.Type]any
	order     []reflect.Type
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{instances: make(map[reflect.Type]any)}
}

// Get returns the registry's T, creating it with factory on first use.
func Get[T any](r *Registry, factory func() T) T {
	t := reflect.TypeFor[T]()

	r.mu.Lock()
	if v, ok := r.instances[t]; ok {
		r.mu.Unlock()
		return v.(T)
	}
	r.mu.Unlock()

	v := factory()

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.instances[t]; ok {
		return existing.(T)
	}
	r.instances[t] = v
	r.order = append(r.order, t)
	return v
}

// Lookup returns the registry's T if it was created.
func Lookup[T any](r *Registry) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.instances[reflect.TypeFor[T]()]
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// Register stores v as the registry's T, replacing any previous instance.
func Register[T any](r *Registry, v T) {
	t := reflect.TypeFor[T]()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.instances[t]; !ok {
		r.order = append(r.order, t)
	}
	r.instances[t] = v
}

// Len returns the number of services created.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.instances)
}

// Teardown calls Teardown on every service implementing Teardowner, newest
// first, and combines their errors. Services stay registered. A panicking
// Teardown is reported as an error.
func (r *Registry) Teardown() error {
	r.mu.Lock()
	order := slices.Clone(r.order)
	instances := make([]any, len(order))
	for i, t := range order {
		instances[i] = r.instances[t]
	}
	r.mu.Unlock()

	var err error
	for i := len(instances) - 1; i >= 0; i-- {
		td, ok := instances[i].(Teardowner)
		if !ok {
			continue
		}
		err = multierr.Append(err, teardown(order[i], td))
	}
	return err
}

func teardown(t reflect.Type, td Teardowner) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("services: %s teardown panicked: %v", t, r)
		}
	}()
	if err := td.Teardown(); err != nil {
		return fmt.Errorf("services: %s teardown: %w", t, err)
	}
	return nil
}

// Reset drops every service without tearing it down.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.instances = make(map[reflect.Type]any)
	r.order = nil
	r.mu.Unlock()
}
