/*
Package datastore defines the persistence interface of the attribute store.

The main interface is DataStore[T], which provides generic keyed storage for
any record type T:

	type DataStore[T any] interface {
	    GetOne(ctx context.Context, key string) (*T, error)
	    Put(ctx context.Context, entity T) error
	    Delete(ctx context.Context, key string) error
	    Stream(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]
	}

Implementations:
  - memory: in-process map, the default backend; supports failure injection for tests
  - ddb: DynamoDB single-table implementation

The package uses Go generics to ensure type safety at compile time while maintaining
flexibility for different storage backends.
*/
package datastore
