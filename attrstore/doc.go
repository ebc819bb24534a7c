/*
Package attrstore is the shape-keyed attribute store.

Each annotated kernel entity owns one storagemodels.DictionaryRecord in the
underlying datastore, keyed by its ShapeID. Attributes are persisted in a
tagged form (Encode/Decode) so that any backend able to store the record
struct can hold them.

	store := attrstore.New(memory.New[storagemodels.DictionaryRecord](attrstore.RecordKey))
	err := store.SetAttributes(ctx, id, attrs)
	attrs, found, err := store.FindAll(ctx, id)

Deep copies transfer dictionaries through the kernel's correspondence:

	n, err := store.DeepCopyAttributes(ctx, corr)
*/
package attrstore

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'topobind'.
func tracer() tracing.Trace {
	return tracing.Select("topobind")
}
