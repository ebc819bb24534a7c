/*
Package kernel defines the interface consumed from the topology kernel.

The kernel owns every topological entity. Callers only ever see opaque
Shape handles, which report a dimensional Kind, an instance identity token
used for factory dispatch, and a ShapeID used as the attribute-store key.

Kinds form the containment hierarchy

	Vertex < Edge < Wire < Face < Shell < Cell < CellComplex
	Cluster (any collection), Aperture (opening in a context)

and are bit flags, so that sub-entity selection can take a filter mask:

	shape, err := k.SelectSubshape(copy, point, kernel.KindFace|kernel.KindCell)

A deep copy returns a Correspondence from original to copied ids, which is
what allows attributes to be carried across a copy without re-deriving
identity from geometry.

The arena subpackage provides an in-process implementation.
*/
package kernel
