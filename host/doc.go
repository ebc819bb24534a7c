/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

/*
Package host exposes a topobind session to zygomys Lisp scripts.

Every evaluation runs in a fresh sandboxed environment. Entities are built
in an arena kernel and annotated through the session:

	(def b (box 2 1 3))
	(def top (set_dictionaries b [(vertex 1 0.5 3)] [(dict ["role"] ["roof"])] "Face"))
	(dictionary (copy top))

Builtin names use underscores; zygomys reads a hyphen as subtraction.
*/
package host

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'topobind'.
func tracer() tracing.Trace {
	return tracing.Select("topobind")
}
