/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package arena

import (
	"fmt"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/suparena/topobind/errors"
	"github.com/suparena/topobind/kernel"
)

// Box builds an axis-aligned cuboid cell spanning min..max. The eight
// vertices and twelve edges are shared between the six faces.
func (k *Kernel) Box(min, max v3.Vec, opts ...Option) (kernel.Shape, error) {
	if min.X >= max.X || min.Y >= max.Y || min.Z >= max.Z {
		return nil, errors.NewValidationError("Box",
			fmt.Sprintf("degenerate extent %v..%v", min, max))
	}

	// corner i has bit 0 set for max.X, bit 1 for max.Y, bit 2 for max.Z
	var corners [8]kernel.Shape
	for i := range corners {
		p := min
		if i&1 != 0 {
			p.X = max.X
		}
		if i&2 != 0 {
			p.Y = max.Y
		}
		if i&4 != 0 {
			p.Z = max.Z
		}
		corners[i] = k.Vertex(p.X, p.Y, p.Z)
	}

	edges := make(map[[2]int]kernel.Shape, 12)
	edge := func(a, b int) (kernel.Shape, error) {
		if a > b {
			a, b = b, a
		}
		if e, ok := edges[[2]int{a, b}]; ok {
			return e, nil
		}
		e, err := k.Edge(corners[a], corners[b])
		if err != nil {
			return nil, err
		}
		edges[[2]int{a, b}] = e
		return e, nil
	}

	var faces []kernel.Shape
	for axis := 0; axis < 3; axis++ {
		u, v := 1<<((axis+1)%3), 1<<((axis+2)%3)
		for side := 0; side < 2; side++ {
			base := side << axis
			loop := []int{base, base | u, base | u | v, base | v}

			ring := make([]kernel.Shape, 0, len(loop))
			for i := range loop {
				e, err := edge(loop[i], loop[(i+1)%len(loop)])
				if err != nil {
					return nil, err
				}
				ring = append(ring, e)
			}
			w, err := k.Wire(ring)
			if err != nil {
				return nil, err
			}
			f, err := k.Face([]kernel.Shape{w})
			if err != nil {
				return nil, err
			}
			faces = append(faces, f)
		}
	}

	shell, err := k.Shell(faces)
	if err != nil {
		return nil, err
	}
	return k.Cell([]kernel.Shape{shell}, opts...)
}
