/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/suparena/topobind/errors"
)

// Registry maps keys to registered values (typically factories).
// It is safe for concurrent use, but is meant to be populated during
// session start and read afterwards.
type Registry[K comparable, V any] struct {
	mu      sync.RWMutex
	name    string
	entries map[K]V
}

// New creates an empty registry. The name is used in error messages.
func New[K comparable, V any](name string) *Registry[K, V] {
	return &Registry[K, V]{
		name:    name,
		entries: make(map[K]V),
	}
}

// Name returns the name the registry was created with.
func (r *Registry[K, V]) Name() string {
	return r.name
}

// Add registers v under key. A key that is already registered is left
// untouched and an AlreadyExistsError is returned.
func (r *Registry[K, V]) Add(key K, v V) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[key]; exists {
		return errors.NewAlreadyExistsError(r.name, fmt.Sprint(key))
	}
	r.entries[key] = v
	return nil
}

// Replace registers v under key, overwriting any previous registration.
// It reports whether a previous registration was replaced.
func (r *Registry[K, V]) Replace(key K, v V) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, existed := r.entries[key]
	r.entries[key] = v
	return existed
}

// Find returns the value registered under key, or a NotFoundError.
func (r *Registry[K, V]) Find(key K) (V, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.entries[key]
	if !ok {
		var zero V
		return zero, errors.NewNotFoundError(r.name, fmt.Sprint(key))
	}
	return v, nil
}

// Lookup is the comma-ok form of Find.
func (r *Registry[K, V]) Lookup(key K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.entries[key]
	return v, ok
}

// Remove deletes the registration for key, if any.
func (r *Registry[K, V]) Remove(key K) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[key]; !exists {
		return errors.NewNotFoundError(r.name, fmt.Sprint(key))
	}
	delete(r.entries, key)
	return nil
}

// Keys returns all registered keys, sorted by their printed form.
func (r *Registry[K, V]) Keys() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]K, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
	})
	return keys
}

// Len returns the number of registrations.
func (r *Registry[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
