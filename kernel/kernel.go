/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package kernel

import (
	"reflect"

	"github.com/google/uuid"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// ShapeID identifies one entity inside the kernel. It is the key under which
// attributes are stored, so it stays stable for the lifetime of the entity
// and is unique across sessions.
type ShapeID = uuid.UUID

// NewShapeID mints a fresh entity handle.
func NewShapeID() ShapeID {
	return uuid.New()
}

// Shape is an opaque handle to an entity owned by the kernel. Several
// wrappers may hold the same Shape.
type Shape interface {
	// ID returns the entity handle.
	ID() ShapeID
	// Kind returns the dimensional kind.
	Kind() Kind
	// InstanceGUID returns the identity token that selects the construction
	// factory. All entities built by the same constructor share it.
	InstanceGUID() string
}

// IsNil reports whether s is nil or a typed nil pointer.
func IsNil(s Shape) bool {
	if s == nil {
		return true
	}
	v := reflect.ValueOf(s)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// Correspondence maps the id of every entity in an original closure to the
// id of its counterpart in a deep copy.
type Correspondence map[ShapeID]ShapeID

// Kernel is the interface consumed from the topology kernel.
type Kernel interface {
	// Shape looks up an entity by its handle.
	Shape(id ShapeID) (Shape, error)

	// SubShapes enumerates the entities of the given kind contained in s.
	SubShapes(s Shape, kind Kind) ([]Shape, error)

	// Coordinates returns the location of a vertex.
	Coordinates(vertex Shape) (v3.Vec, error)

	// DeepCopy copies s and everything it contains. The copy gets fresh ids
	// throughout; the returned correspondence covers the whole closure.
	DeepCopy(s Shape) (Shape, Correspondence, error)

	// SelectSubshape returns the entity contained in s, with a kind in the
	// filter mask, that best matches the selector point.
	SelectSubshape(s Shape, selector v3.Vec, filter Kind) (Shape, error)
}
