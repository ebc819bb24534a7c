/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/topobind/storagemodels"
)

// DataStore persists records of type T under a string key.
type DataStore[T any] interface {
	// GetOne returns the record stored under key, or a NotFoundError.
	GetOne(ctx context.Context, key string) (*T, error)

	// Put stores entity, replacing any record with the same key.
	Put(ctx context.Context, entity T) error

	// Delete removes the record stored under key. A missing record yields a
	// NotFoundError.
	Delete(ctx context.Context, key string) error

	// Stream delivers every stored record. The channel is closed when the
	// stream ends or ctx is cancelled.
	Stream(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]
}

// KeyFunc extracts the storage key of a record.
type KeyFunc[T any] func(entity T) string
