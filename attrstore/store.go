/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package attrstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"

	"github.com/suparena/topobind/attribute"
	"github.com/suparena/topobind/datastore"
	"github.com/suparena/topobind/errors"
	"github.com/suparena/topobind/kernel"
	"github.com/suparena/topobind/storagemodels"
)

// RecordKey is the datastore key function for dictionary records.
func RecordKey(r storagemodels.DictionaryRecord) string {
	return r.ShapeID
}

// Store keeps the dictionaries of kernel entities, one record per entity.
// Every read or read-modify-write sequence runs under a reader-writer lock.
type Store struct {
	mu  sync.RWMutex
	ds  datastore.DataStore[storagemodels.DictionaryRecord]
	now func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a store on top of ds.
func New(ds datastore.DataStore[storagemodels.DictionaryRecord], opts ...Option) *Store {
	s := &Store{ds: ds, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// find loads and decodes the record of id. Caller must hold a lock.
func (s *Store) find(ctx context.Context, id kernel.ShapeID) (map[string]attribute.Attribute, bool, error) {
	rec, err := s.ds.GetOne(ctx, id.String())
	if errors.IsNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	attrs, err := DecodeAll(rec.Attributes)
	if err != nil {
		return nil, false, fmt.Errorf("record %s: %w", id, err)
	}
	return attrs, true, nil
}

// put encodes and writes the record of id. Caller must hold the write lock.
func (s *Store) put(ctx context.Context, id kernel.ShapeID, attrs map[string]attribute.Attribute) error {
	values, err := EncodeAll(attrs)
	if err != nil {
		return err
	}
	return s.ds.Put(ctx, storagemodels.DictionaryRecord{
		ShapeID:    id.String(),
		Attributes: values,
		UpdatedAt:  strfmt.DateTime(s.now()).String(),
	})
}

// FindAll returns the dictionary of id. found is false when the entity was
// never annotated.
func (s *Store) FindAll(ctx context.Context, id kernel.ShapeID) (attrs map[string]attribute.Attribute, found bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.find(ctx, id)
}

// SetAttributes merges attrs into the dictionary of id. Keys already
// present are overwritten. An empty attrs writes nothing, so a stored
// dictionary is never empty.
func (s *Store) SetAttributes(ctx context.Context, id kernel.ShapeID, attrs map[string]attribute.Attribute) error {
	if len(attrs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, _, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if merged == nil {
		merged = make(map[string]attribute.Attribute, len(attrs))
	}
	for k, a := range attrs {
		merged[k] = a
	}
	if err := s.put(ctx, id, merged); err != nil {
		return err
	}
	tracer().Debugf("stored %d attribute(s) on %s", len(attrs), id)
	return nil
}

// DeepCopyAttributes copies the dictionary of every original entity in corr
// that has one onto its counterpart. It returns the number of dictionaries
// copied.
func (s *Store) DeepCopyAttributes(ctx context.Context, corr kernel.Correspondence) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	olds := make([]kernel.ShapeID, 0, len(corr))
	for old := range corr {
		olds = append(olds, old)
	}
	sort.Slice(olds, func(i, j int) bool { return olds[i].String() < olds[j].String() })

	copied := 0
	for _, old := range olds {
		attrs, found, err := s.find(ctx, old)
		if err != nil {
			return copied, err
		}
		if !found {
			continue
		}
		if err := s.put(ctx, corr[old], attrs); err != nil {
			return copied, err
		}
		copied++
	}
	if copied > 0 {
		tracer().Debugf("transferred %d dictionar(ies) to copy", copied)
	}
	return copied, nil
}

// Remove drops the dictionary of id. Removing a missing dictionary is not
// an error.
func (s *Store) Remove(ctx context.Context, id kernel.ShapeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ds.Delete(ctx, id.String()); err != nil && !errors.IsNotFound(err) {
		return err
	}
	return nil
}

// Each calls fn for every stored dictionary. It stops at the first error.
func (s *Store) Each(ctx context.Context, fn func(id kernel.ShapeID, attrs map[string]attribute.Attribute) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	for r := range s.ds.Stream(ctx) {
		if r.Error != nil {
			return r.Error
		}
		id, err := uuid.Parse(r.Item.ShapeID)
		if err != nil {
			return errors.NewValidationError("ShapeID", fmt.Sprintf("record %q: %v", r.Item.ShapeID, err))
		}
		attrs, err := DecodeAll(r.Item.Attributes)
		if err != nil {
			return fmt.Errorf("record %s: %w", id, err)
		}
		if err := fn(id, attrs); err != nil {
			return err
		}
	}
	return ctx.Err()
}
