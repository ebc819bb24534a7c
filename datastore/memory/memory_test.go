/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package memory_test

import (
	"context"
	"testing"

	"github.com/suparena/topobind/datastore/memory"
	"github.com/suparena/topobind/errors"
	"github.com/suparena/topobind/storagemodels"
)

func byShapeID(r storagemodels.DictionaryRecord) string { return r.ShapeID }

func TestMemoryDataStore(t *testing.T) {
	ctx := context.Background()

	t.Run("BasicOperations", func(t *testing.T) {
		store := memory.New[storagemodels.DictionaryRecord](byShapeID)

		rec := storagemodels.DictionaryRecord{ShapeID: "123", UpdatedAt: "2025-01-01T00:00:00.000Z"}
		if err := store.Put(ctx, rec); err != nil {
			t.Fatalf("Put failed: %v", err)
		}

		retrieved, err := store.GetOne(ctx, "123")
		if err != nil {
			t.Fatalf("GetOne failed: %v", err)
		}
		if retrieved.ShapeID != "123" || retrieved.UpdatedAt != rec.UpdatedAt {
			t.Fatalf("Retrieved record mismatch: %+v", retrieved)
		}

		if err := store.Delete(ctx, "123"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		_, err = store.GetOne(ctx, "123")
		if !errors.IsNotFound(err) {
			t.Fatalf("Expected not found error, got: %v", err)
		}

		if err := store.Delete(ctx, "123"); !errors.IsNotFound(err) {
			t.Fatalf("Expected not found error on second delete, got: %v", err)
		}
	})

	t.Run("EmptyKey", func(t *testing.T) {
		store := memory.New[storagemodels.DictionaryRecord](byShapeID)
		err := store.Put(ctx, storagemodels.DictionaryRecord{})
		if !errors.IsValidationError(err) {
			t.Fatalf("Expected validation error, got: %v", err)
		}
	})

	t.Run("ErrorSimulation", func(t *testing.T) {
		store := memory.New[storagemodels.DictionaryRecord](byShapeID)

		getErr := errors.NewKernelError("GetItem", context.DeadlineExceeded)
		store.WithGetError(getErr)
		if _, err := store.GetOne(ctx, "123"); err != getErr {
			t.Fatalf("Expected get error, got: %v", err)
		}

		putErr := errors.NewValidationError("ShapeID", "required")
		store.WithPutError(putErr)
		if err := store.Put(ctx, storagemodels.DictionaryRecord{ShapeID: "123"}); err != putErr {
			t.Fatalf("Expected put error, got: %v", err)
		}

		deleteErr := errors.NewKernelError("DeleteItem", context.Canceled)
		store.WithDeleteError(deleteErr)
		if err := store.Delete(ctx, "123"); err != deleteErr {
			t.Fatalf("Expected delete error, got: %v", err)
		}
	})
}

func TestMemoryStream(t *testing.T) {
	ctx := context.Background()
	store := memory.New[storagemodels.DictionaryRecord](byShapeID)

	for _, id := range []string{"c", "a", "b", "e", "d"} {
		if err := store.Put(ctx, storagemodels.DictionaryRecord{ShapeID: id}); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
	}

	var progressCalls int
	var lastProgress storagemodels.StreamProgress
	results := store.Stream(ctx,
		storagemodels.WithPageSize(2),
		storagemodels.WithBufferSize(1),
		storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {
			progressCalls++
			lastProgress = p
		}),
	)

	var ids []string
	var pages []int
	for r := range results {
		if r.Error != nil {
			t.Fatalf("unexpected stream error: %v", r.Error)
		}
		ids = append(ids, r.Item.ShapeID)
		pages = append(pages, r.Meta.PageNumber)
	}

	want := []string{"a", "b", "c", "d", "e"}
	if len(ids) != len(want) {
		t.Fatalf("Expected %d records, got %d", len(want), len(ids))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("record %d: expected %s, got %s", i, want[i], ids[i])
		}
	}
	if pages[0] != 1 || pages[2] != 2 || pages[4] != 3 {
		t.Errorf("unexpected page numbers %v", pages)
	}
	if progressCalls != 3 {
		t.Errorf("Expected 3 progress calls, got %d", progressCalls)
	}
	if lastProgress.ItemsProcessed != 5 || lastProgress.PagesProcessed != 3 {
		t.Errorf("unexpected final progress %+v", lastProgress)
	}
}

func TestMemoryStreamCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := memory.New[storagemodels.DictionaryRecord](byShapeID)
	for _, id := range []string{"a", "b", "c"} {
		_ = store.Put(ctx, storagemodels.DictionaryRecord{ShapeID: id})
	}

	results := store.Stream(ctx, storagemodels.WithBufferSize(0))
	<-results
	cancel()

	// drain; the producer stops once it observes cancellation
	n := 0
	for range results {
		n++
	}
	if n > 2 {
		t.Errorf("Expected at most 2 further records after cancel, got %d", n)
	}
}
