/*
Package registry provides the keyed registries used for factory dispatch.

A Registry maps a key to a registered value. topobind uses two of them:

  - identity tokens (UUID strings) to topology factories, so that an opaque
    kernel entity can be resolved to the right wrapper type
  - attribute tags to attribute factories, so that raw values can be wrapped
    into attributes and unwrapped again

Registries are created explicitly and owned by a session; there is no
package-level state. Conflicting registrations are rejected:

	factories := registry.New[string, topology.Factory]("topology factory")
	if err := factories.Add(token, roomFactory); err != nil {
	    // errors.IsAlreadyExists(err) == true when token is taken
	}

	// Overwriting has to be asked for explicitly
	factories.Replace(token, otherFactory)

A Latch guards one-shot population, so that the canonical registrations
happen exactly once per session no matter how often they are requested.
*/
package registry
