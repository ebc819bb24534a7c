/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package topology

import (
	"fmt"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/topobind/errors"
	"github.com/suparena/topobind/kernel"
	"github.com/suparena/topobind/registry"
)

// Factory builds the wrapper for a kernel entity.
type Factory interface {
	Create(r *Resolver, s kernel.Shape) (Topology, error)
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(r *Resolver, s kernel.Shape) (Topology, error)

func (f FactoryFunc) Create(r *Resolver, s kernel.Shape) (Topology, error) {
	return f(r, s)
}

// kindFactory is the default factory of one kind. It refuses nil entities.
func kindFactory[T Topology](kind kernel.Kind, wrap func(*Resolver, kernel.Shape) T) Factory {
	return FactoryFunc(func(r *Resolver, s kernel.Shape) (Topology, error) {
		if kernel.IsNil(s) {
			return nil, errors.NewNullEntityError(kind.String() + "Factory.Create")
		}
		return wrap(r, s), nil
	})
}

func defaultFactories() map[kernel.Kind]Factory {
	return map[kernel.Kind]Factory{
		kernel.KindVertex:      kindFactory(kernel.KindVertex, NewVertex),
		kernel.KindEdge:        kindFactory(kernel.KindEdge, NewEdge),
		kernel.KindWire:        kindFactory(kernel.KindWire, NewWire),
		kernel.KindFace:        kindFactory(kernel.KindFace, NewFace),
		kernel.KindShell:       kindFactory(kernel.KindShell, NewShell),
		kernel.KindCell:        kindFactory(kernel.KindCell, NewCell),
		kernel.KindCellComplex: kindFactory(kernel.KindCellComplex, NewCellComplex),
		kernel.KindCluster:     kindFactory(kernel.KindCluster, NewCluster),
		kernel.KindAperture:    kindFactory(kernel.KindAperture, NewAperture),
	}
}

// Resolver maps kernel entities to wrappers. It holds the identity registry
// (token to factory) and the default factory of every kind.
type Resolver struct {
	kernel    kernel.Kernel
	factories *registry.Registry[string, Factory]
	defaults  map[kernel.Kind]Factory
	latch     registry.Latch
}

// NewResolver creates a resolver for entities of k. The canonical bindings
// are registered lazily, on first use.
func NewResolver(k kernel.Kernel) *Resolver {
	return &Resolver{
		kernel:    k,
		factories: registry.New[string, Factory]("factory"),
		defaults:  defaultFactories(),
	}
}

// Kernel returns the kernel the resolver reads entities from.
func (r *Resolver) Kernel() kernel.Kernel {
	return r.kernel
}

// EnsureDefaults binds the nine canonical tokens to their default factories.
// Only the first call does any work.
func (r *Resolver) EnsureDefaults() error {
	first, err := r.latch.Do(func() error {
		for _, kind := range kernel.Kinds() {
			if err := r.factories.Add(kernel.GUID(kind), r.defaults[kind]); err != nil {
				return err
			}
		}
		return nil
	})
	if first {
		tracer().Debugf("registered %d canonical topology factories", r.factories.Len())
	}
	return err
}

func validToken(token string) error {
	if !strfmt.IsUUID(token) {
		return errors.NewValidationError("token", fmt.Sprintf("%q is not a UUID", token))
	}
	return nil
}

// RegisterFactory binds an identity token to a factory. Registering a token
// twice fails with an AlreadyExistsError.
func (r *Resolver) RegisterFactory(token string, f Factory) error {
	if err := validToken(token); err != nil {
		return err
	}
	if f == nil {
		return errors.NewValidationError("factory", "factory is nil")
	}
	if err := r.EnsureDefaults(); err != nil {
		return err
	}
	if err := r.factories.Add(token, f); err != nil {
		return err
	}
	tracer().Debugf("registered factory for %s", token)
	return nil
}

// ReplaceFactory binds a token to f, overwriting any earlier binding,
// canonical ones included.
func (r *Resolver) ReplaceFactory(token string, f Factory) error {
	if err := validToken(token); err != nil {
		return err
	}
	if f == nil {
		return errors.NewValidationError("factory", "factory is nil")
	}
	if err := r.EnsureDefaults(); err != nil {
		return err
	}
	if r.factories.Replace(token, f) {
		tracer().Infof("replaced factory for %s", token)
	}
	return nil
}

// RegisterFactoryFor binds the identity token carried by s.
func (r *Resolver) RegisterFactoryFor(s kernel.Shape, f Factory) error {
	if s == nil {
		return errors.NewNullEntityError("RegisterFactoryFor")
	}
	return r.RegisterFactory(s.InstanceGUID(), f)
}

// Find looks up the factory bound to token.
func (r *Resolver) Find(token string) (Factory, error) {
	if err := r.EnsureDefaults(); err != nil {
		return nil, err
	}
	return r.factories.Find(token)
}

// Tokens lists the registered identity tokens.
func (r *Resolver) Tokens() []string {
	_ = r.EnsureDefaults()
	return r.factories.Keys()
}

// DefaultFactory returns the factory of s's kind, ignoring its token.
func (r *Resolver) DefaultFactory(s kernel.Shape) (Factory, error) {
	if kernel.IsNil(s) {
		return nil, errors.NewNullEntityError("DefaultFactory")
	}
	f, ok := r.defaults[s.Kind()]
	if !ok {
		return nil, errors.NewValidationError("kind", fmt.Sprintf("%s is not a topology kind", s.Kind()))
	}
	return f, nil
}

// ByCoreTopology builds the most specific wrapper for s. A nil entity,
// typed or not, yields a nil Topology and no error. An unregistered token falls back to
// the default factory of s's kind. Whether a registered factory produces a
// wrapper of the entity's kind is not checked.
func (r *Resolver) ByCoreTopology(s kernel.Shape) (Topology, error) {
	if kernel.IsNil(s) {
		return nil, nil
	}
	f, err := r.Find(s.InstanceGUID())
	switch {
	case errors.IsNotFound(err):
		tracer().Debugf("no factory for %s, using %s default", s.InstanceGUID(), s.Kind())
		if f, err = r.DefaultFactory(s); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}
	return f.Create(r, s)
}
