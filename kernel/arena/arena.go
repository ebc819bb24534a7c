/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package arena

import (
	"fmt"
	"math"
	"sync"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/suparena/topobind/errors"
	"github.com/suparena/topobind/kernel"
)

// Compile-time interface check.
var _ kernel.Kernel = (*Kernel)(nil)

// shape is the arena's entity record. It implements kernel.Shape.
type shape struct {
	id       kernel.ShapeID
	kind     kernel.Kind
	guid     string
	children []*shape
	point    v3.Vec // vertices only
}

func (s *shape) ID() kernel.ShapeID   { return s.id }
func (s *shape) Kind() kernel.Kind    { return s.kind }
func (s *shape) InstanceGUID() string { return s.guid }

func (s *shape) String() string {
	return fmt.Sprintf("%s(%s)", s.kind, s.id)
}

// Option customizes an entity at construction.
type Option func(*shape)

// WithGUID gives the entity a non-canonical identity token, so that it is
// dispatched to a factory registered for that token.
func WithGUID(token string) Option {
	return func(s *shape) {
		s.guid = token
	}
}

// Kernel is an in-memory topology kernel. Entities live in an arena keyed
// by ShapeID and are never freed while the kernel is alive.
type Kernel struct {
	mu     sync.RWMutex
	shapes map[kernel.ShapeID]*shape
}

// New returns an empty kernel.
func New() *Kernel {
	return &Kernel{
		shapes: make(map[kernel.ShapeID]*shape),
	}
}

// Len returns the number of entities in the arena.
func (k *Kernel) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.shapes)
}

// Shape looks up an entity by id.
func (k *Kernel) Shape(id kernel.ShapeID) (kernel.Shape, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	s, ok := k.shapes[id]
	if !ok {
		return nil, errors.NewNotFoundError("shape", id.String())
	}
	return s, nil
}

// own resolves a handle to the arena's record. Caller must hold the lock.
func (k *Kernel) own(s kernel.Shape) (*shape, error) {
	if kernel.IsNil(s) {
		return nil, errors.NewNullEntityError("arena")
	}
	rec, ok := k.shapes[s.ID()]
	if !ok {
		return nil, errors.NewNotFoundError("shape", s.ID().String())
	}
	return rec, nil
}

// add stores a new entity. Caller must hold the write lock.
func (k *Kernel) add(kind kernel.Kind, children []*shape, opts []Option) *shape {
	s := &shape{
		id:       kernel.NewShapeID(),
		kind:     kind,
		guid:     kernel.GUID(kind),
		children: children,
	}
	for _, opt := range opts {
		opt(s)
	}
	k.shapes[s.id] = s
	return s
}

// build validates the children of a new entity and stores it.
func (k *Kernel) build(kind kernel.Kind, accept kernel.Kind, min int, members []kernel.Shape, opts []Option) (kernel.Shape, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if len(members) < min {
		return nil, errors.NewValidationError(kind.String(),
			fmt.Sprintf("needs at least %d member(s), got %d", min, len(members)))
	}
	children := make([]*shape, 0, len(members))
	for i, m := range members {
		rec, err := k.own(m)
		if err != nil {
			return nil, fmt.Errorf("%s member %d: %w", kind, i, err)
		}
		if !rec.kind.Has(accept) {
			return nil, errors.NewValidationError(kind.String(),
				fmt.Sprintf("member %d is a %s, expected %s", i, rec.kind, accept))
		}
		children = append(children, rec)
	}
	return k.add(kind, children, opts), nil
}

// Vertex creates a vertex at (x, y, z).
func (k *Kernel) Vertex(x, y, z float64, opts ...Option) kernel.Shape {
	k.mu.Lock()
	defer k.mu.Unlock()

	s := k.add(kernel.KindVertex, nil, opts)
	s.point = v3.Vec{X: x, Y: y, Z: z}
	return s
}

// Edge creates an edge between two distinct vertices.
func (k *Kernel) Edge(start, end kernel.Shape, opts ...Option) (kernel.Shape, error) {
	if start != nil && end != nil && start.ID() == end.ID() {
		return nil, errors.NewValidationError("Edge", "start and end vertex are the same")
	}
	return k.build(kernel.KindEdge, kernel.KindVertex, 2, []kernel.Shape{start, end}, opts)
}

// Wire creates a wire from edges.
func (k *Kernel) Wire(edges []kernel.Shape, opts ...Option) (kernel.Shape, error) {
	return k.build(kernel.KindWire, kernel.KindEdge, 1, edges, opts)
}

// Face creates a face bounded by wires. The first wire is the outer one.
func (k *Kernel) Face(wires []kernel.Shape, opts ...Option) (kernel.Shape, error) {
	return k.build(kernel.KindFace, kernel.KindWire, 1, wires, opts)
}

// Shell creates a shell from faces.
func (k *Kernel) Shell(faces []kernel.Shape, opts ...Option) (kernel.Shape, error) {
	return k.build(kernel.KindShell, kernel.KindFace, 1, faces, opts)
}

// Cell creates a cell bounded by shells. The first shell is the outer one.
func (k *Kernel) Cell(shells []kernel.Shape, opts ...Option) (kernel.Shape, error) {
	return k.build(kernel.KindCell, kernel.KindShell, 1, shells, opts)
}

// CellComplex creates a cell complex from cells.
func (k *Kernel) CellComplex(cells []kernel.Shape, opts ...Option) (kernel.Shape, error) {
	return k.build(kernel.KindCellComplex, kernel.KindCell, 1, cells, opts)
}

// Cluster groups arbitrary topologies. An empty cluster is allowed.
func (k *Kernel) Cluster(members []kernel.Shape, opts ...Option) (kernel.Shape, error) {
	return k.build(kernel.KindCluster, kernel.KindAll, 0, members, opts)
}

// Aperture wraps a topology as an aperture.
func (k *Kernel) Aperture(topology kernel.Shape, opts ...Option) (kernel.Shape, error) {
	return k.build(kernel.KindAperture, kernel.KindAll&^kernel.KindAperture, 1, []kernel.Shape{topology}, opts)
}

// Coordinates returns the location of a vertex.
func (k *Kernel) Coordinates(vertex kernel.Shape) (v3.Vec, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	rec, err := k.own(vertex)
	if err != nil {
		return v3.Vec{}, err
	}
	if rec.kind != kernel.KindVertex {
		return v3.Vec{}, errors.NewValidationError("vertex", fmt.Sprintf("%s is not a vertex", rec))
	}
	return rec.point, nil
}

// SubShapes enumerates the entities below s whose kind is in the kind mask,
// in first-visit order and without duplicates. s itself is not included.
func (k *Kernel) SubShapes(s kernel.Shape, kind kernel.Kind) ([]kernel.Shape, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	rec, err := k.own(s)
	if err != nil {
		return nil, err
	}
	var out []kernel.Shape
	for _, d := range descendants(rec) {
		if d.kind.Has(kind) {
			out = append(out, d)
		}
	}
	return out, nil
}

// descendants walks the closure below root depth-first.
func descendants(root *shape) []*shape {
	seen := map[kernel.ShapeID]bool{root.id: true}
	var out []*shape
	var walk func(s *shape)
	walk = func(s *shape) {
		for _, c := range s.children {
			if seen[c.id] {
				continue
			}
			seen[c.id] = true
			out = append(out, c)
			walk(c)
		}
	}
	walk(root)
	return out
}

// DeepCopy copies s and its whole closure. Entities shared inside the
// closure stay shared in the copy.
func (k *Kernel) DeepCopy(s kernel.Shape) (kernel.Shape, kernel.Correspondence, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	rec, err := k.own(s)
	if err != nil {
		return nil, nil, err
	}

	memo := make(map[kernel.ShapeID]*shape)
	var clone func(src *shape) *shape
	clone = func(src *shape) *shape {
		if dst, ok := memo[src.id]; ok {
			return dst
		}
		dst := &shape{
			id:    kernel.NewShapeID(),
			kind:  src.kind,
			guid:  src.guid,
			point: src.point,
		}
		memo[src.id] = dst
		for _, c := range src.children {
			dst.children = append(dst.children, clone(c))
		}
		k.shapes[dst.id] = dst
		return dst
	}
	root := clone(rec)

	corr := make(kernel.Correspondence, len(memo))
	for oldID, dst := range memo {
		corr[oldID] = dst.id
	}
	return root, corr, nil
}

// SelectSubshape returns the entity of the closure of s, s included, with a
// kind in the filter, whose vertex centroid lies nearest to the selector.
// Ties go to the entity visited first; s is visited before its members.
func (k *Kernel) SelectSubshape(s kernel.Shape, selector v3.Vec, filter kernel.Kind) (kernel.Shape, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	rec, err := k.own(s)
	if err != nil {
		return nil, err
	}

	var best *shape
	bestDist := math.Inf(1)
	candidates := append([]*shape{rec}, descendants(rec)...)
	for _, d := range candidates {
		if !d.kind.Has(filter) {
			continue
		}
		c, ok := centroid(d)
		if !ok {
			continue
		}
		if dist := c.Sub(selector).Length(); dist < bestDist {
			best, bestDist = d, dist
		}
	}
	if best == nil {
		return nil, errors.NewNotFoundError("subshape", fmt.Sprintf("%s in %s", filter, rec))
	}
	return best, nil
}

// centroid is the mean location of the distinct vertices of s.
func centroid(s *shape) (v3.Vec, bool) {
	if s.kind == kernel.KindVertex {
		return s.point, true
	}
	var sum v3.Vec
	n := 0
	for _, d := range descendants(s) {
		if d.kind == kernel.KindVertex {
			sum = sum.Add(d.point)
			n++
		}
	}
	if n == 0 {
		return v3.Vec{}, false
	}
	return sum.MulScalar(1 / float64(n)), true
}
