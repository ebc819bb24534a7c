/*
Package ddb provides a DynamoDB implementation of the DataStore interface.

The DynamodbDataStore supports:
  - Single-table design with an EntityType discriminator on every item
  - Macro-based key expansion (e.g., "SHAPE#{ShapeID}")
  - Paginated scan streaming with retry logic and progress callbacks

Macro Expansion:
Keys use macros that are replaced with record field values on Put and
with the lookup key on GetOne and Delete:

	indexMap := map[string]string{
	    "PK": "SHAPE#{ShapeID}", // Becomes "SHAPE#3f2c..."
	    "SK": "DICT",            // Static value
	}

	client, err := ddb.NewDynamoDBClient(ctx, key, secret, "us-east-1", "")
	store, err := ddb.New[storagemodels.DictionaryRecord](client, "topobind", indexMap, "Dictionary")

Streaming:

	results := store.Stream(ctx,
	    storagemodels.WithPageSize(25),
	    storagemodels.WithMaxRetries(3),
	    storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {
	        log.Printf("Processed %d items", p.ItemsProcessed)
	    }),
	)
*/
package ddb

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'topobind'.
func tracer() tracing.Trace {
	return tracing.Select("topobind")
}
