/*
Package topobind binds a topology kernel to polymorphic Go wrappers and
typed per-entity dictionaries.

A Session owns everything a binding needs: the kernel, the factory
resolver, the attribute manager and the shape-keyed attribute store. There
is no package-level state; two sessions never share registrations.

Key Features:
  - Factory dispatch: kernel entities resolve to the most specific
    registered wrapper, falling back to the default wrapper of their kind
  - Typed dictionaries: int64, float64, string and []any values, stored per
    entity in a pluggable datastore (in-memory or DynamoDB)
  - Copy semantics: writing a dictionary deep-copies the topology first;
    the original and its dictionary are never modified
  - Attribute transfer: Copy carries every dictionary in the closure over to
    the copy through the kernel's old to new correspondence

Basic Usage:

	k := arena.New()
	s, err := topobind.New(k, nil) // in-memory attribute store

	cell, _ := k.Box(v3.Vec{}, v3.Vec{X: 4, Y: 3, Z: 3})
	t, _ := s.ByCoreTopology(cell)

	annotated, err := s.SetDictionary(ctx, t, map[string]any{"area": 12.5, "label": "A1"})
	dict, err := s.Dictionary(ctx, annotated) // {"area": 12.5, "label": "A1"}
	orig, err := s.Dictionary(ctx, t)         // nil, t was never annotated

	dup, err := topobind.Copy(ctx, s, annotated.(*topology.Cell))
*/
package topobind

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'topobind'.
func tracer() tracing.Trace {
	return tracing.Select("topobind")
}
