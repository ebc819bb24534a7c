/*
Package topology wraps opaque kernel entities in polymorphic Go values.

A Resolver turns a kernel.Shape into the most specific Topology wrapper
registered for it. Dispatch looks up the entity's identity token
(InstanceGUID) in the identity registry; when no factory is registered for
the token, the default factory of the entity's kind is used instead, so
dispatch never fails for a non-nil entity of a canonical kind.

Registering a subtype:

	r := topology.NewResolver(k)
	err := r.RegisterFactory(panelGUID, topology.FactoryFunc(
	    func(r *topology.Resolver, s kernel.Shape) (topology.Topology, error) {
	        return &Panel{Face: topology.NewFace(r, s)}, nil
	    }))

	t, err := r.ByCoreTopology(shape) // *Panel for entities carrying panelGUID

The nine canonical tokens are bound on first use through a one-shot latch.
*/
package topology

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'topobind'.
func tracer() tracing.Trace {
	return tracing.Select("topobind")
}
