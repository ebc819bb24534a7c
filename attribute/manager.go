/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package attribute

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/suparena/topobind/errors"
	"github.com/suparena/topobind/registry"
)

// Factory converts one attribute variant to and from Go values.
type Factory interface {
	// Tag is the variant the factory produces.
	Tag() Tag
	// Accepts reports whether v has the Go type this factory wraps.
	Accepts(v any) bool
	// Wrap turns v into an attribute. The manager is passed for nested values.
	Wrap(m *Manager, v any) (Attribute, error)
	// Unwrap turns a into a Go value.
	Unwrap(m *Manager, a Attribute) (any, error)
}

// Manager owns the attribute factories of a session.
type Manager struct {
	factories *registry.Registry[Tag, Factory]

	mu      sync.Mutex // serializes refresh
	ordered atomic.Pointer[[]Factory]
}

// NewManager returns a manager with the four built-in factories.
func NewManager() *Manager {
	m := &Manager{factories: registry.New[Tag, Factory]("attribute factory")}
	for _, f := range []Factory{intFactory{}, doubleFactory{}, stringFactory{}, listFactory{}} {
		// tags are distinct, Add cannot fail here
		_ = m.factories.Add(f.Tag(), f)
	}
	m.refresh()
	return m
}

// refresh rebuilds the tag-ordered factory list that Wrap scans.
func (m *Manager) refresh() {
	m.mu.Lock()
	defer m.mu.Unlock()

	tags := m.factories.Keys()
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	ordered := make([]Factory, 0, len(tags))
	for _, tag := range tags {
		if f, ok := m.factories.Lookup(tag); ok {
			ordered = append(ordered, f)
		}
	}
	m.ordered.Store(&ordered)
}

// Register installs a factory for a tag that has none yet.
func (m *Manager) Register(f Factory) error {
	if f == nil {
		return errors.NewValidationError("factory", "factory is nil")
	}
	if err := m.factories.Add(f.Tag(), f); err != nil {
		return err
	}
	m.refresh()
	return nil
}

// Replace installs f, overwriting the factory of the same tag.
func (m *Manager) Replace(f Factory) error {
	if f == nil {
		return errors.NewValidationError("factory", "factory is nil")
	}
	m.factories.Replace(f.Tag(), f)
	m.refresh()
	return nil
}

// Wrap classifies v by its exact Go type and converts it.
func (m *Manager) Wrap(v any) (Attribute, error) {
	for _, f := range *m.ordered.Load() {
		if f.Accepts(v) {
			return f.Wrap(m, v)
		}
	}
	return Attribute{}, errors.NewUnsupportedTypeError(v)
}

// Unwrap converts a back into a Go value.
func (m *Manager) Unwrap(a Attribute) (any, error) {
	f, err := m.factories.Find(a.Tag())
	if err != nil {
		return nil, fmt.Errorf("unwrap %s: %w", a.Tag(), err)
	}
	return f.Unwrap(m, a)
}

// WrapAll converts a whole dictionary. On failure nothing is returned.
func (m *Manager) WrapAll(dict map[string]any) (map[string]Attribute, error) {
	out := make(map[string]Attribute, len(dict))
	for k, v := range dict {
		a, err := m.Wrap(v)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[k] = a
	}
	return out, nil
}

// UnwrapAll converts a dictionary of attributes back to Go values. A nil
// input yields a nil map.
func (m *Manager) UnwrapAll(attrs map[string]Attribute) (map[string]any, error) {
	if attrs == nil {
		return nil, nil
	}
	out := make(map[string]any, len(attrs))
	for k, a := range attrs {
		v, err := m.Unwrap(a)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[k] = v
	}
	return out, nil
}

// ByKeysValues builds a dictionary from parallel key and value slices.
func (m *Manager) ByKeysValues(keys []string, values []any) (map[string]Attribute, error) {
	if len(keys) != len(values) {
		return nil, errors.NewValidationError("values",
			fmt.Sprintf("%d keys for %d values", len(keys), len(values)))
	}
	out := make(map[string]Attribute, len(keys))
	for i, k := range keys {
		if _, dup := out[k]; dup {
			return nil, errors.NewValidationError("keys", fmt.Sprintf("duplicate key %q", k))
		}
		a, err := m.Wrap(values[i])
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		out[k] = a
	}
	return out, nil
}

type intFactory struct{}

func (intFactory) Tag() Tag { return TagInt }

func (intFactory) Accepts(v any) bool {
	_, ok := v.(int64)
	return ok
}

func (intFactory) Wrap(_ *Manager, v any) (Attribute, error) {
	i, ok := v.(int64)
	if !ok {
		return Attribute{}, errors.NewUnsupportedTypeError(v)
	}
	return NewInt(i), nil
}

func (intFactory) Unwrap(_ *Manager, a Attribute) (any, error) {
	i, ok := a.AsInt()
	if !ok {
		return nil, errors.NewValidationError("attribute", fmt.Sprintf("%s is not an Int", a.Tag()))
	}
	return i, nil
}

type doubleFactory struct{}

func (doubleFactory) Tag() Tag { return TagDouble }

func (doubleFactory) Accepts(v any) bool {
	_, ok := v.(float64)
	return ok
}

func (doubleFactory) Wrap(_ *Manager, v any) (Attribute, error) {
	d, ok := v.(float64)
	if !ok {
		return Attribute{}, errors.NewUnsupportedTypeError(v)
	}
	return NewDouble(d), nil
}

func (doubleFactory) Unwrap(_ *Manager, a Attribute) (any, error) {
	d, ok := a.AsDouble()
	if !ok {
		return nil, errors.NewValidationError("attribute", fmt.Sprintf("%s is not a Double", a.Tag()))
	}
	return d, nil
}

type stringFactory struct{}

func (stringFactory) Tag() Tag { return TagString }

func (stringFactory) Accepts(v any) bool {
	_, ok := v.(string)
	return ok
}

func (stringFactory) Wrap(_ *Manager, v any) (Attribute, error) {
	s, ok := v.(string)
	if !ok {
		return Attribute{}, errors.NewUnsupportedTypeError(v)
	}
	return NewString(s), nil
}

func (stringFactory) Unwrap(_ *Manager, a Attribute) (any, error) {
	s, ok := a.AsString()
	if !ok {
		return nil, errors.NewValidationError("attribute", fmt.Sprintf("%s is not a String", a.Tag()))
	}
	return s, nil
}

type listFactory struct{}

func (listFactory) Tag() Tag { return TagList }

func (listFactory) Accepts(v any) bool {
	_, ok := v.([]any)
	return ok
}

func (listFactory) Wrap(m *Manager, v any) (Attribute, error) {
	items, ok := v.([]any)
	if !ok {
		return Attribute{}, errors.NewUnsupportedTypeError(v)
	}
	list := make([]Attribute, len(items))
	for i, item := range items {
		a, err := m.Wrap(item)
		if err != nil {
			return Attribute{}, fmt.Errorf("list element %d: %w", i, err)
		}
		list[i] = a
	}
	return Attribute{tag: TagList, list: list}, nil
}

func (listFactory) Unwrap(m *Manager, a Attribute) (any, error) {
	if a.Tag() != TagList {
		return nil, errors.NewValidationError("attribute", fmt.Sprintf("%s is not a List", a.Tag()))
	}
	out := make([]any, len(a.list))
	for i, item := range a.list {
		v, err := m.Unwrap(item)
		if err != nil {
			return nil, fmt.Errorf("list element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
