/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package memory provides an in-process implementation of datastore.DataStore.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/suparena/topobind/datastore"
	"github.com/suparena/topobind/errors"
	"github.com/suparena/topobind/storagemodels"
)

// Compile-time interface check.
var _ datastore.DataStore[struct{}] = (*DataStore[struct{}])(nil)

// DataStore keeps records in a map guarded by a RWMutex.
type DataStore[T any] struct {
	mu          sync.RWMutex
	data        map[string]T
	keyFunc     datastore.KeyFunc[T]
	getError    error
	putError    error
	deleteError error
}

// New creates an empty store. keyFunc extracts the key of a record.
func New[T any](keyFunc datastore.KeyFunc[T]) *DataStore[T] {
	return &DataStore[T]{
		data:    make(map[string]T),
		keyFunc: keyFunc,
	}
}

// WithGetError makes GetOne operations return an error
func (m *DataStore[T]) WithGetError(err error) *DataStore[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getError = err
	return m
}

// WithPutError makes Put operations return an error
func (m *DataStore[T]) WithPutError(err error) *DataStore[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.putError = err
	return m
}

// WithDeleteError makes Delete operations return an error
func (m *DataStore[T]) WithDeleteError(err error) *DataStore[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteError = err
	return m
}

// GetOne retrieves a record by key
func (m *DataStore[T]) GetOne(ctx context.Context, key string) (*T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.getError != nil {
		return nil, m.getError
	}
	if entity, exists := m.data[key]; exists {
		return &entity, nil
	}

	var zero T
	return nil, errors.NewNotFoundError(fmt.Sprintf("%T", zero), key)
}

// Put stores a record
func (m *DataStore[T]) Put(ctx context.Context, entity T) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.putError != nil {
		return m.putError
	}
	key := m.keyFunc(entity)
	if key == "" {
		return errors.NewValidationError("key", "unable to extract key from entity")
	}

	m.data[key] = entity
	return nil
}

// Delete removes a record by key
func (m *DataStore[T]) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteError != nil {
		return m.deleteError
	}
	if _, exists := m.data[key]; !exists {
		var zero T
		return errors.NewNotFoundError(fmt.Sprintf("%T", zero), key)
	}

	delete(m.data, key)
	return nil
}

// Stream delivers a snapshot of all records in key order. Records are
// numbered into pages of PageSize to mirror paginated backends.
func (m *DataStore[T]) Stream(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	options := storagemodels.ApplyStreamOptions(opts...)
	resultChan := make(chan storagemodels.StreamResult[T], options.BufferSize)

	snapshot := m.snapshot()
	go func() {
		defer close(resultChan)

		pageSize := int64(options.PageSize)
		if pageSize <= 0 {
			pageSize = 1
		}
		progress := storagemodels.StreamProgress{StartTime: time.Now()}

		for i, v := range snapshot {
			index := int64(i)
			result := storagemodels.StreamResult[T]{
				Item: v,
				Meta: storagemodels.StreamMeta{
					Index:      index,
					PageNumber: int(index/pageSize) + 1,
					Timestamp:  time.Now(),
				},
			}
			select {
			case <-ctx.Done():
				return
			case resultChan <- result:
			}

			progress.ItemsProcessed++
			if progress.ItemsProcessed%pageSize == 0 || i == len(snapshot)-1 {
				progress.PagesProcessed = result.Meta.PageNumber
				if elapsed := time.Since(progress.StartTime).Seconds(); elapsed > 0 {
					progress.CurrentRate = float64(progress.ItemsProcessed) / elapsed
				}
				if options.ProgressHandler != nil {
					options.ProgressHandler(progress)
				}
			}
		}
	}()

	return resultChan
}

func (m *DataStore[T]) snapshot() []T {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]T, len(keys))
	for i, k := range keys {
		out[i] = m.data[k]
	}
	return out
}

// Count returns the number of stored records
func (m *DataStore[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Clear removes all data
func (m *DataStore[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string]T)
}
