/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/topobind/errors"
	"github.com/suparena/topobind/storagemodels"
)

// fakeClient is an in-memory stand-in for the DynamoDB API.
type fakeClient struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue
	scanErrs []error
	scanErr  error // returned by every Scan once scanErrs is drained
	scans    int
}

func newFakeClient() *fakeClient {
	return &fakeClient{items: make(map[string]map[string]types.AttributeValue)}
}

func str(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func itemKey(m map[string]types.AttributeValue) string {
	return str(m["PK"]) + "|" + str(m["SK"])
}

func (f *fakeClient) GetItem(_ context.Context, in *sdk.GetItemInput, _ ...func(*sdk.Options)) (*sdk.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &sdk.GetItemOutput{Item: f.items[itemKey(in.Key)]}, nil
}

func (f *fakeClient) PutItem(_ context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[itemKey(in.Item)] = in.Item
	return &sdk.PutItemOutput{}, nil
}

func (f *fakeClient) DeleteItem(_ context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := itemKey(in.Key)
	old := f.items[k]
	delete(f.items, k)
	return &sdk.DeleteItemOutput{Attributes: old}, nil
}

func (f *fakeClient) Scan(_ context.Context, in *sdk.ScanInput, _ ...func(*sdk.Options)) (*sdk.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans++
	if len(f.scanErrs) > 0 {
		err := f.scanErrs[0]
		f.scanErrs = f.scanErrs[1:]
		return nil, err
	}
	if f.scanErr != nil {
		return nil, f.scanErr
	}

	keys := make([]string, 0, len(f.items))
	for k := range f.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	start := ""
	if in.ExclusiveStartKey != nil {
		start = itemKey(in.ExclusiveStartKey)
	}
	want := str(in.ExpressionAttributeValues[":et"])

	out := &sdk.ScanOutput{}
	for _, k := range keys {
		if start != "" && k <= start {
			continue
		}
		item := f.items[k]
		if want != "" && str(item[EntityTypeAttribute]) != want {
			continue
		}
		out.Items = append(out.Items, item)
		if in.Limit != nil && int32(len(out.Items)) == *in.Limit {
			out.LastEvaluatedKey = map[string]types.AttributeValue{"PK": item["PK"], "SK": item["SK"]}
			break
		}
	}
	return out, nil
}

var dictIndexMap = map[string]string{
	"PK": "SHAPE#{ShapeID}",
	"SK": "DICT",
}

func newDictStore(t *testing.T, client Client) *DynamodbDataStore[storagemodels.DictionaryRecord] {
	t.Helper()
	store, err := New[storagemodels.DictionaryRecord](client, "topobind-test", dictIndexMap, "Dictionary")
	require.NoError(t, err)
	return store
}

func label(s string) *string { return &s }

func TestPutGetDelete(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	store := newDictStore(t, client)

	n := int64(3)
	rec := storagemodels.DictionaryRecord{
		ShapeID: "3f2c8b7e-1d4a-4c6b-9e0f-1a2b3c4d5e6f",
		Attributes: map[string]storagemodels.AttributeValue{
			"label": {Kind: "String", String: label("A1")},
			"count": {Kind: "Int", Int: &n},
			"tags":  {Kind: "List", List: []storagemodels.AttributeValue{{Kind: "String", String: label("x")}}},
		},
		UpdatedAt: "2025-06-01T10:00:00.000Z",
	}
	require.NoError(t, store.Put(ctx, rec))

	raw := client.items["SHAPE#"+rec.ShapeID+"|DICT"]
	require.NotNil(t, raw, "item stored under expanded key")
	assert.Equal(t, "Dictionary", str(raw[EntityTypeAttribute]))

	got, err := store.GetOne(ctx, rec.ShapeID)
	require.NoError(t, err)
	assert.Equal(t, rec, *got)

	require.NoError(t, store.Delete(ctx, rec.ShapeID))
	_, err = store.GetOne(ctx, rec.ShapeID)
	assert.True(t, errors.IsNotFound(err))
	assert.True(t, errors.IsNotFound(store.Delete(ctx, rec.ShapeID)))
}

func TestNewValidation(t *testing.T) {
	client := newFakeClient()

	_, err := New[storagemodels.DictionaryRecord](nil, "t", dictIndexMap, "Dictionary")
	assert.True(t, errors.IsValidationError(err))
	_, err = New[storagemodels.DictionaryRecord](client, "", dictIndexMap, "Dictionary")
	assert.True(t, errors.IsValidationError(err))
	_, err = New[storagemodels.DictionaryRecord](client, "t", map[string]string{"PK": "{ShapeID}"}, "Dictionary")
	assert.True(t, errors.IsValidationError(err))
	_, err = New[storagemodels.DictionaryRecord](client, "t", dictIndexMap, "")
	assert.True(t, errors.IsValidationError(err))
}

func TestPutRejectsEmptyKey(t *testing.T) {
	store := newDictStore(t, newFakeClient())
	err := store.Put(context.Background(), storagemodels.DictionaryRecord{})
	assert.True(t, errors.IsValidationError(err))
}

func TestExpandMacros(t *testing.T) {
	expanded, err := expandMacros(map[string]string{
		"PK": "SHAPE#{ShapeID}",
		"SK": "AT#{UpdatedAt}",
		"X":  "{Missing}",
	}, storagemodels.DictionaryRecord{ShapeID: "abc", UpdatedAt: "now"})
	require.NoError(t, err)
	assert.Equal(t, "SHAPE#abc", expanded["PK"])
	assert.Equal(t, "AT#now", expanded["SK"])
	assert.Equal(t, "", expanded["X"])

	assert.Equal(t, map[string]string{"PK": "SHAPE#k", "SK": "DICT"},
		expandStringKey(dictIndexMap, "k"))
}

func TestStreamPaginates(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	store := newDictStore(t, client)

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		require.NoError(t, store.Put(ctx, storagemodels.DictionaryRecord{ShapeID: id}))
	}
	// an item of another entity type sharing the table
	client.items["OTHER|X"] = map[string]types.AttributeValue{
		"PK":                &types.AttributeValueMemberS{Value: "OTHER"},
		"SK":                &types.AttributeValueMemberS{Value: "X"},
		EntityTypeAttribute: &types.AttributeValueMemberS{Value: "Other"},
	}

	var progress []storagemodels.StreamProgress
	var ids []string
	for r := range store.Stream(ctx,
		storagemodels.WithPageSize(2),
		storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {
			progress = append(progress, p)
		}),
	) {
		require.NoError(t, r.Error)
		ids = append(ids, r.Item.ShapeID)
		assert.NotNil(t, r.Raw)
	}

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids)
	require.NotEmpty(t, progress)
	last := progress[len(progress)-1]
	assert.Equal(t, int64(5), last.ItemsProcessed)
	assert.Equal(t, 3, last.PagesProcessed)
}

func TestStreamRetriesThrottling(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	store := newDictStore(t, client)
	require.NoError(t, store.Put(ctx, storagemodels.DictionaryRecord{ShapeID: "a"}))

	client.scanErrs = []error{
		&types.ProvisionedThroughputExceededException{Message: label("slow down")},
	}

	var ids []string
	for r := range store.Stream(ctx, storagemodels.WithRetryBackoff(time.Millisecond)) {
		require.NoError(t, r.Error)
		ids = append(ids, r.Item.ShapeID)
	}
	assert.Equal(t, []string{"a"}, ids)
	assert.Equal(t, 2, client.scans)
}

func TestStreamStopsOnFatalError(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	store := newDictStore(t, client)

	client.scanErrs = []error{&types.ResourceNotFoundException{Message: label("no table")}}

	var results []storagemodels.StreamResult[storagemodels.DictionaryRecord]
	for r := range store.Stream(ctx) {
		results = append(results, r)
	}
	require.Len(t, results, 1)
	assert.Error(t, results[0].Error)
	assert.Equal(t, 1, client.scans)
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, isRetryableError(&types.ProvisionedThroughputExceededException{}))
	assert.True(t, isRetryableError(&types.RequestLimitExceeded{}))
	assert.True(t, isRetryableError(&types.InternalServerError{}))
	assert.False(t, isRetryableError(&types.ResourceNotFoundException{}))
	assert.False(t, isRetryableError(context.Canceled))
}

func TestStreamEndsOnHandledError(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client := newFakeClient()
	store := newDictStore(t, client)
	client.scanErr = &types.ResourceNotFoundException{Message: label("no table")}

	var handled []error
	var progress []storagemodels.StreamProgress
	var results []storagemodels.StreamResult[storagemodels.DictionaryRecord]
	for r := range store.Stream(ctx,
		storagemodels.WithErrorHandler(func(err error) bool {
			handled = append(handled, err)
			return true
		}),
		storagemodels.WithProgressHandler(func(p storagemodels.StreamProgress) {
			progress = append(progress, p)
		}),
	) {
		results = append(results, r)
	}

	require.NoError(t, ctx.Err(), "stream must end on its own")
	assert.Empty(t, results)
	assert.Len(t, handled, 1)
	assert.Equal(t, 1, client.scans)
	require.Len(t, progress, 1)
	assert.Len(t, progress[0].Errors, 1)
}
