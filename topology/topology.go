/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package topology

import (
	"fmt"
	"reflect"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/suparena/topobind/errors"
	"github.com/suparena/topobind/kernel"
)

// Topology is the common surface of every wrapper. A wrapper never owns its
// entity; several wrappers may share one kernel.Shape.
type Topology interface {
	// Shape returns the wrapped kernel entity.
	Shape() kernel.Shape
	ID() kernel.ShapeID
	Kind() kernel.Kind
	InstanceGUID() string

	// Geometry returns the kind-specific basic geometry.
	Geometry() (Geometry, error)

	// SubTopologies resolves the contained entities whose kind is in the
	// mask, each through factory dispatch.
	SubTopologies(kind kernel.Kind) ([]Topology, error)

	// SelectSubtopology resolves the entity of this topology's closure,
	// itself included, with a kind in filter that lies nearest to selector.
	SelectSubtopology(selector *Vertex, filter kernel.Kind) (Topology, error)

	// IsSame reports whether other wraps the same kernel entity.
	IsSame(other Topology) bool
}

// base carries the entity and the resolver that built the wrapper.
type base struct {
	shape kernel.Shape
	r     *Resolver
}

func (b *base) Shape() kernel.Shape   { return b.shape }
func (b *base) ID() kernel.ShapeID    { return b.shape.ID() }
func (b *base) Kind() kernel.Kind     { return b.shape.Kind() }
func (b *base) InstanceGUID() string  { return b.shape.InstanceGUID() }
func (b *base) Resolver() *Resolver   { return b.r }
func (b *base) kernel() kernel.Kernel { return b.r.kernel }

func (b *base) String() string {
	return fmt.Sprintf("%s(%s)", b.Kind(), b.ID())
}

func (b *base) subShapes(kind kernel.Kind) ([]kernel.Shape, error) {
	subs, err := b.kernel().SubShapes(b.shape, kind)
	if err != nil {
		return nil, errors.NewKernelError("SubShapes", err)
	}
	return subs, nil
}

func (b *base) SubTopologies(kind kernel.Kind) ([]Topology, error) {
	subs, err := b.subShapes(kind)
	if err != nil {
		return nil, err
	}
	out := make([]Topology, 0, len(subs))
	for _, s := range subs {
		t, err := b.r.ByCoreTopology(s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (b *base) SelectSubtopology(selector *Vertex, filter kernel.Kind) (Topology, error) {
	if selector == nil || kernel.IsNil(selector.shape) {
		return nil, errors.NewNullEntityError("SelectSubtopology")
	}
	if filter == 0 {
		filter = kernel.KindAll
	}
	p, err := selector.Coordinates()
	if err != nil {
		return nil, err
	}
	s, err := b.kernel().SelectSubshape(b.shape, p, filter)
	if err != nil {
		return nil, errors.NewKernelError("SelectSubshape", err)
	}
	return b.r.ByCoreTopology(s)
}

func (b *base) IsSame(other Topology) bool {
	if IsNil(other) || kernel.IsNil(other.Shape()) {
		return false
	}
	return other.ID() == b.ID()
}

func (b *base) Geometry() (Geometry, error) {
	switch b.Kind() {
	case kernel.KindVertex:
		p, err := b.kernel().Coordinates(b.shape)
		if err != nil {
			return nil, errors.NewKernelError("Coordinates", err)
		}
		return Point{Vec: p}, nil
	case kernel.KindEdge:
		pts, err := b.points()
		if err != nil {
			return nil, err
		}
		if len(pts) != 2 {
			return nil, errors.NewValidationError("Edge", fmt.Sprintf("%d end vertices", len(pts)))
		}
		return Segment{Start: pts[0], End: pts[1]}, nil
	default:
		pts, err := b.points()
		if err != nil {
			return nil, err
		}
		return boundsOf(b.Kind(), pts)
	}
}

// points returns the coordinates of the distinct vertices below b.
func (b *base) points() ([]v3.Vec, error) {
	verts, err := b.subShapes(kernel.KindVertex)
	if err != nil {
		return nil, err
	}
	pts := make([]v3.Vec, 0, len(verts))
	for _, v := range verts {
		p, err := b.kernel().Coordinates(v)
		if err != nil {
			return nil, errors.NewKernelError("Coordinates", err)
		}
		pts = append(pts, p)
	}
	return pts, nil
}

// Structural accessors. They wrap with the plain kind wrapper and do not go
// through factory dispatch; use SubTopologies for that.

func (b *base) Vertices() ([]*Vertex, error)     { return collect(b, kernel.KindVertex, NewVertex) }
func (b *base) Edges() ([]*Edge, error)          { return collect(b, kernel.KindEdge, NewEdge) }
func (b *base) Wires() ([]*Wire, error)          { return collect(b, kernel.KindWire, NewWire) }
func (b *base) Faces() ([]*Face, error)          { return collect(b, kernel.KindFace, NewFace) }
func (b *base) Shells() ([]*Shell, error)        { return collect(b, kernel.KindShell, NewShell) }
func (b *base) Cells() ([]*Cell, error)          { return collect(b, kernel.KindCell, NewCell) }
func (b *base) CellComplexes() ([]*CellComplex, error) {
	return collect(b, kernel.KindCellComplex, NewCellComplex)
}

func collect[T any](b *base, kind kernel.Kind, wrap func(*Resolver, kernel.Shape) T) ([]T, error) {
	subs, err := b.subShapes(kind)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(subs))
	for _, s := range subs {
		out = append(out, wrap(b.r, s))
	}
	return out, nil
}

// Vertex is a 0-dimensional entity.
type Vertex struct{ base }

// Coordinates returns the location of the vertex.
func (v *Vertex) Coordinates() (v3.Vec, error) {
	p, err := v.kernel().Coordinates(v.shape)
	if err != nil {
		return v3.Vec{}, errors.NewKernelError("Coordinates", err)
	}
	return p, nil
}

// Edge is bounded by a start and an end vertex.
type Edge struct{ base }

type Wire struct{ base }

type Face struct{ base }

type Shell struct{ base }

type Cell struct{ base }

type CellComplex struct{ base }

// Cluster is a heterogeneous collection of topologies.
type Cluster struct{ base }

// Aperture is an opening hosted by a context topology.
type Aperture struct{ base }

// Topology resolves the topology the aperture wraps.
func (a *Aperture) Topology() (Topology, error) {
	subs, err := a.subShapes(kernel.KindAll)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, errors.NewNotFoundError("aperture topology", a.ID().String())
	}
	// first visited entity is the direct member
	return a.r.ByCoreTopology(subs[0])
}

// Constructors for the plain wrappers. They do not validate the entity's
// kind; registered factories use them to embed a default wrapper. s must
// not be nil: factories check kernel.IsNil before wrapping, and
// ByCoreTopology never passes a nil entity to a factory.

func NewVertex(r *Resolver, s kernel.Shape) *Vertex   { return &Vertex{base{s, r}} }
func NewEdge(r *Resolver, s kernel.Shape) *Edge       { return &Edge{base{s, r}} }
func NewWire(r *Resolver, s kernel.Shape) *Wire       { return &Wire{base{s, r}} }
func NewFace(r *Resolver, s kernel.Shape) *Face       { return &Face{base{s, r}} }
func NewShell(r *Resolver, s kernel.Shape) *Shell     { return &Shell{base{s, r}} }
func NewCell(r *Resolver, s kernel.Shape) *Cell       { return &Cell{base{s, r}} }
func NewCluster(r *Resolver, s kernel.Shape) *Cluster { return &Cluster{base{s, r}} }
func NewAperture(r *Resolver, s kernel.Shape) *Aperture {
	return &Aperture{base{s, r}}
}
func NewCellComplex(r *Resolver, s kernel.Shape) *CellComplex {
	return &CellComplex{base{s, r}}
}

// IsNil reports whether t is nil or a typed nil wrapper.
func IsNil(t Topology) bool {
	if t == nil {
		return true
	}
	v := reflect.ValueOf(t)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// Filter keeps the topologies whose kind is in the mask, preserving order.
func Filter(ts []Topology, mask kernel.Kind) []Topology {
	var out []Topology
	for _, t := range ts {
		if t != nil && t.Kind().Has(mask) {
			out = append(out, t)
		}
	}
	return out
}
