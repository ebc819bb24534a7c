/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package topology

import (
	"fmt"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/suparena/topobind/errors"
	"github.com/suparena/topobind/kernel"
)

// Geometry is the basic geometry of a topology: a point for a vertex, a
// segment for an edge and an axis-aligned box for everything else.
type Geometry interface {
	BoundingBox() sdf.Box3
}

// Point is the geometry of a vertex.
type Point struct {
	v3.Vec
}

func (p Point) BoundingBox() sdf.Box3 {
	return sdf.Box3{Min: p.Vec, Max: p.Vec}
}

// Segment is the geometry of an edge.
type Segment struct {
	Start, End v3.Vec
}

func (s Segment) BoundingBox() sdf.Box3 {
	return sdf.Box3{Min: s.Start, Max: s.Start}.Include(s.End)
}

// Length returns the distance between the end points.
func (s Segment) Length() float64 {
	return s.End.Sub(s.Start).Length()
}

// Bounds is the geometry of a higher-dimensional topology.
type Bounds struct {
	sdf.Box3
}

func (b Bounds) BoundingBox() sdf.Box3 {
	return b.Box3
}

func boundsOf(kind kernel.Kind, pts []v3.Vec) (Geometry, error) {
	if len(pts) == 0 {
		return nil, errors.NewValidationError(kind.String(), fmt.Sprintf("%s has no vertices", kind))
	}
	box := sdf.Box3{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		box = box.Include(p)
	}
	return Bounds{Box3: box}, nil
}
