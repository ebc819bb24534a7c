/*
Package arena is an in-process topology kernel.

It stores entities in an arena keyed by kernel.ShapeID and implements the
primitives the binding layer consumes: kind and identity-token queries,
sub-entity enumeration, structural deep copy with an old to new
correspondence, and nearest sub-entity selection. It performs no geometric
booleans; faces and cells are purely combinatorial.

Usage:

	k := arena.New()
	cell, err := k.Box(v3.Vec{}, v3.Vec{X: 1, Y: 1, Z: 1})
	if err != nil {
	    return err
	}
	faces, _ := k.SubShapes(cell, kernel.KindFace) // six faces
*/
package arena
