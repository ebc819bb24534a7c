/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package kernel

import (
	"fmt"
	"strings"
)

// Kind is the dimensional kind of a topological entity. Kinds are bit
// flags so that several of them can be combined into a filter mask.
type Kind int

const (
	KindVertex      Kind = 1 << iota // 0-dimensional point
	KindEdge                         // bounded curve between two vertices
	KindWire                         // connected sequence of edges
	KindFace                         // surface bounded by wires
	KindShell                        // connected set of faces
	KindCell                         // volume bounded by shells
	KindCellComplex                  // set of cells sharing faces
	KindCluster                      // arbitrary collection of topologies
	KindAperture                     // opening hosted by a context topology
)

// KindAll matches every kind.
const KindAll = KindVertex | KindEdge | KindWire | KindFace | KindShell |
	KindCell | KindCellComplex | KindCluster | KindAperture

var kindNames = map[Kind]string{
	KindVertex:      "Vertex",
	KindEdge:        "Edge",
	KindWire:        "Wire",
	KindFace:        "Face",
	KindShell:       "Shell",
	KindCell:        "Cell",
	KindCellComplex: "CellComplex",
	KindCluster:     "Cluster",
	KindAperture:    "Aperture",
}

// Kinds returns the nine canonical kinds in hierarchy order.
func Kinds() []Kind {
	return []Kind{
		KindVertex, KindEdge, KindWire, KindFace, KindShell,
		KindCell, KindCellComplex, KindCluster, KindAperture,
	}
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	if k != 0 && k&^KindAll == 0 {
		parts := make([]string, 0, len(kindNames))
		for _, c := range Kinds() {
			if k&c != 0 {
				parts = append(parts, kindNames[c])
			}
		}
		return strings.Join(parts, "|")
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Valid reports whether k is exactly one of the canonical kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// Has reports whether k is contained in the filter mask.
func (k Kind) Has(filter Kind) bool {
	return k&filter != 0
}

// ParseKind parses a kind name case-insensitively ("cell", "CellComplex").
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown topology kind %q", s)
}
