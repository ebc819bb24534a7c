/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package topobind

import (
	"context"
	"fmt"

	"github.com/suparena/topobind/attribute"
	"github.com/suparena/topobind/attrstore"
	"github.com/suparena/topobind/datastore"
	"github.com/suparena/topobind/datastore/memory"
	"github.com/suparena/topobind/errors"
	"github.com/suparena/topobind/kernel"
	"github.com/suparena/topobind/storagemodels"
	"github.com/suparena/topobind/topology"
)

// Session is the binding context: one kernel, its factory resolver, the
// attribute manager and the attribute store.
type Session struct {
	kernel   kernel.Kernel
	resolver *topology.Resolver
	attrs    *attribute.Manager
	store    *attrstore.Store
}

// Option configures a Session.
type Option func(*sessionOptions)

type sessionOptions struct {
	attrs     *attribute.Manager
	storeOpts []attrstore.Option
}

// WithAttributeManager replaces the default attribute manager.
func WithAttributeManager(m *attribute.Manager) Option {
	return func(o *sessionOptions) {
		o.attrs = m
	}
}

// WithStoreOptions passes options to the attribute store.
func WithStoreOptions(opts ...attrstore.Option) Option {
	return func(o *sessionOptions) {
		o.storeOpts = append(o.storeOpts, opts...)
	}
}

// New creates a session on kernel k. Dictionaries are persisted in ds; a
// nil ds selects an in-memory store. The canonical factories are
// registered before New returns.
func New(k kernel.Kernel, ds datastore.DataStore[storagemodels.DictionaryRecord], opts ...Option) (*Session, error) {
	if k == nil {
		return nil, errors.NewValidationError("kernel", "kernel is nil")
	}
	o := sessionOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.attrs == nil {
		o.attrs = attribute.NewManager()
	}
	if ds == nil {
		ds = memory.New[storagemodels.DictionaryRecord](attrstore.RecordKey)
	}

	s := &Session{
		kernel:   k,
		resolver: topology.NewResolver(k),
		attrs:    o.attrs,
		store:    attrstore.New(ds, o.storeOpts...),
	}
	if err := s.resolver.EnsureDefaults(); err != nil {
		return nil, fmt.Errorf("registering default factories: %w", err)
	}
	tracer().Debugf("session ready with %d factories", len(s.resolver.Tokens()))
	return s, nil
}

func (s *Session) Kernel() kernel.Kernel          { return s.kernel }
func (s *Session) Resolver() *topology.Resolver   { return s.resolver }
func (s *Session) Attributes() *attribute.Manager { return s.attrs }
func (s *Session) Store() *attrstore.Store        { return s.store }

// ByCoreTopology resolves a kernel entity to its wrapper. A nil entity
// yields nil.
func (s *Session) ByCoreTopology(shape kernel.Shape) (topology.Topology, error) {
	return s.resolver.ByCoreTopology(shape)
}

// ByID resolves the entity with the given handle.
func (s *Session) ByID(id kernel.ShapeID) (topology.Topology, error) {
	shape, err := s.kernel.Shape(id)
	if err != nil {
		return nil, errors.NewKernelError("Shape", err)
	}
	return s.resolver.ByCoreTopology(shape)
}

// RegisterFactory binds an identity token to a factory.
func (s *Session) RegisterFactory(token string, f topology.Factory) error {
	return s.resolver.RegisterFactory(token, f)
}

// RegisterFactoryFor binds the identity token carried by shape.
func (s *Session) RegisterFactoryFor(shape kernel.Shape, f topology.Factory) error {
	return s.resolver.RegisterFactoryFor(shape, f)
}

// deepCopy copies t in the kernel without touching any dictionary.
func (s *Session) deepCopy(op string, t topology.Topology) (kernel.Shape, kernel.Correspondence, error) {
	if topology.IsNil(t) {
		return nil, nil, errors.NewNullEntityError(op)
	}
	cp, corr, err := s.kernel.DeepCopy(t.Shape())
	if err != nil {
		return nil, nil, errors.NewKernelError("DeepCopy", err)
	}
	return cp, corr, nil
}

// SetDictionary returns a deep copy of t carrying dict. Every value is
// converted before anything is copied; on failure no copy is made. t and
// its dictionary are left unchanged. An empty dict yields an unannotated
// copy.
func (s *Session) SetDictionary(ctx context.Context, t topology.Topology, dict map[string]any) (topology.Topology, error) {
	if topology.IsNil(t) {
		return nil, errors.NewNullEntityError("SetDictionary")
	}
	attrs, err := s.attrs.WrapAll(dict)
	if err != nil {
		return nil, err
	}

	cp, _, err := s.deepCopy("SetDictionary", t)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetAttributes(ctx, cp.ID(), attrs); err != nil {
		return nil, errors.NewKernelError("SetAttributes", err)
	}
	return s.resolver.ByCoreTopology(cp)
}

// SetDictionaries returns one deep copy of t in which, for each selector,
// the entity of the copy (the copy itself included) nearest the selector
// vertex with a kind in filter carries the matching dictionary. A zero
// filter matches every kind. All targets are resolved before anything is
// written; if a write fails, the dictionaries already written are removed.
func (s *Session) SetDictionaries(
	ctx context.Context,
	t topology.Topology,
	selectors []*topology.Vertex,
	dicts []map[string]any,
	filter kernel.Kind,
) (topology.Topology, error) {
	if topology.IsNil(t) {
		return nil, errors.NewNullEntityError("SetDictionaries")
	}
	if len(selectors) != len(dicts) {
		return nil, errors.NewValidationError("selectors",
			fmt.Sprintf("%d selectors for %d dictionaries", len(selectors), len(dicts)))
	}
	if filter == 0 {
		filter = kernel.KindAll
	}

	wrapped := make([]map[string]attribute.Attribute, len(dicts))
	for i, d := range dicts {
		if selectors[i] == nil {
			return nil, errors.NewNullEntityError(fmt.Sprintf("SetDictionaries selector %d", i))
		}
		attrs, err := s.attrs.WrapAll(d)
		if err != nil {
			return nil, fmt.Errorf("dictionary %d: %w", i, err)
		}
		wrapped[i] = attrs
	}

	cp, _, err := s.deepCopy("SetDictionaries", t)
	if err != nil {
		return nil, err
	}
	targets := make([]kernel.Shape, len(selectors))
	for i, sel := range selectors {
		p, err := sel.Coordinates()
		if err != nil {
			return nil, fmt.Errorf("selector %d: %w", i, err)
		}
		if targets[i], err = s.kernel.SelectSubshape(cp, p, filter); err != nil {
			return nil, errors.NewKernelError("SelectSubshape", err)
		}
	}

	for i, target := range targets {
		if err := s.store.SetAttributes(ctx, target.ID(), wrapped[i]); err != nil {
			for _, done := range targets[:i] {
				if rerr := s.store.Remove(ctx, done.ID()); rerr != nil {
					tracer().Errorf("removing dictionary of %s: %v", done.ID(), rerr)
				}
			}
			return nil, errors.NewKernelError("SetAttributes", err)
		}
		tracer().Debugf("selector %d annotated %s %s", i, target.Kind(), target.ID())
	}
	return s.resolver.ByCoreTopology(cp)
}

// Dictionary reads the dictionary of t. It is nil when t was never
// annotated.
func (s *Session) Dictionary(ctx context.Context, t topology.Topology) (map[string]any, error) {
	if topology.IsNil(t) {
		return nil, errors.NewNullEntityError("Dictionary")
	}
	attrs, found, err := s.store.FindAll(ctx, t.ID())
	if err != nil {
		return nil, errors.NewKernelError("FindAll", err)
	}
	if !found {
		return nil, nil
	}
	return s.attrs.UnwrapAll(attrs)
}

// Copy deep-copies t and transfers the dictionaries of the whole closure
// to the copy. The result is resolved through factory dispatch and must be
// a T.
func Copy[T topology.Topology](ctx context.Context, s *Session, t T) (T, error) {
	var zero T
	cp, corr, err := s.deepCopy("Copy", t)
	if err != nil {
		return zero, err
	}
	if _, err := s.store.DeepCopyAttributes(ctx, corr); err != nil {
		return zero, errors.NewKernelError("DeepCopyAttributes", err)
	}

	resolved, err := s.resolver.ByCoreTopology(cp)
	if err != nil {
		return zero, err
	}
	out, ok := resolved.(T)
	if !ok {
		return zero, errors.NewValidationError("type",
			fmt.Sprintf("copy resolved to %T, not %T", resolved, zero))
	}
	return out, nil
}
