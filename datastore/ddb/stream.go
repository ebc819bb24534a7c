/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/topobind/storagemodels"
)

// Stream scans the table for items of the store's entity type, page by
// page, with retry on throttling.
func (d *DynamodbDataStore[T]) Stream(ctx context.Context, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T] {
	options := storagemodels.ApplyStreamOptions(opts...)
	resultCh := make(chan storagemodels.StreamResult[T], options.BufferSize)

	params := &storagemodels.ScanParams{
		TableName:                d.tableName,
		FilterExpression:         aws.String("#et = :et"),
		ExpressionAttributeNames: map[string]string{"#et": EntityTypeAttribute},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":et": &types.AttributeValueMemberS{Value: d.entityType},
		},
		Limit: aws.Int32(options.PageSize),
	}

	go d.streamWorker(ctx, params, options, resultCh)
	return resultCh
}

// streamWorker handles the actual streaming logic
func (d *DynamodbDataStore[T]) streamWorker(
	ctx context.Context,
	params *storagemodels.ScanParams,
	options storagemodels.StreamOptions,
	resultCh chan<- storagemodels.StreamResult[T],
) {
	defer close(resultCh)

	var itemIndex int64
	var pageNumber int
	var nonFatal []error
	startTime := time.Now()

	reportProgress := func() {
		if options.ProgressHandler == nil {
			return
		}
		progress := storagemodels.StreamProgress{
			ItemsProcessed: itemIndex,
			PagesProcessed: pageNumber,
			Errors:         nonFatal,
			StartTime:      startTime,
		}
		if elapsed := time.Since(startTime).Seconds(); elapsed > 0 {
			progress.CurrentRate = float64(progress.ItemsProcessed) / elapsed
		}
		options.ProgressHandler(progress)
	}

	send := func(r storagemodels.StreamResult[T]) bool {
		select {
		case <-ctx.Done():
			return false
		case resultCh <- r:
			return true
		}
	}

	input := &sdk.ScanInput{
		TableName:                 &params.TableName,
		FilterExpression:          params.FilterExpression,
		ExpressionAttributeNames:  params.ExpressionAttributeNames,
		ExpressionAttributeValues: params.ExpressionAttributeValues,
		Limit:                     params.Limit,
		ExclusiveStartKey:         params.ExclusiveStartKey,
	}

	for {
		if ctx.Err() != nil {
			return
		}

		out, err := d.scanWithRetry(ctx, input, options)
		if err != nil {
			// A failed page has no LastEvaluatedKey to resume from, so a
			// handled failure ends the stream without an error result.
			if options.ErrorHandler != nil && options.ErrorHandler(err) {
				nonFatal = append(nonFatal, err)
				tracer().Errorf("scan of %s failed, ending stream: %v", d.tableName, err)
				reportProgress()
				return
			}
			send(storagemodels.StreamResult[T]{
				Error: fmt.Errorf("scan failed: %w", err),
				Meta: storagemodels.StreamMeta{
					Index:      itemIndex,
					PageNumber: pageNumber,
					Timestamp:  time.Now(),
				},
			})
			return
		}

		pageNumber++
		for _, item := range out.Items {
			result := d.processItem(item, itemIndex, pageNumber)
			itemIndex++
			if result.Error != nil {
				nonFatal = append(nonFatal, result.Error)
			}
			if !send(result) {
				return
			}
		}
		reportProgress()

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	tracer().Debugf("streamed %d %s items in %d pages", itemIndex, d.entityType, pageNumber)
}

// scanWithRetry executes a scan with configurable retry logic
func (d *DynamodbDataStore[T]) scanWithRetry(
	ctx context.Context,
	input *sdk.ScanInput,
	options storagemodels.StreamOptions,
) (*sdk.ScanOutput, error) {
	var lastErr error

	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := d.client.Scan(ctx, input)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, err
		}

		if attempt < options.MaxRetries {
			backoff := time.Duration(attempt+1) * options.RetryBackoff
			tracer().Debugf("scan throttled, retrying in %s", backoff)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("scan failed after %d retries: %w", options.MaxRetries, lastErr)
}

// processItem converts a DynamoDB item to a typed result
func (d *DynamodbDataStore[T]) processItem(
	item map[string]types.AttributeValue,
	index int64,
	pageNumber int,
) storagemodels.StreamResult[T] {
	meta := storagemodels.StreamMeta{
		Index:      index,
		PageNumber: pageNumber,
		Timestamp:  time.Now(),
	}

	var result T
	if err := attributevalue.UnmarshalMap(item, &result); err != nil {
		return storagemodels.StreamResult[T]{
			Error: fmt.Errorf("failed to unmarshal item to type %T: %w", result, err),
			Raw:   item,
			Meta:  meta,
		}
	}
	return storagemodels.StreamResult[T]{
		Item: result,
		Raw:  item,
		Meta: meta,
	}
}

// isRetryableError determines if a DynamoDB error is retryable
func isRetryableError(err error) bool {
	var pte *types.ProvisionedThroughputExceededException
	var rle *types.RequestLimitExceeded
	var ise *types.InternalServerError
	if stderrors.As(err, &pte) || stderrors.As(err, &rle) || stderrors.As(err, &ise) {
		return true
	}

	var retryable interface{ RetryableError() bool }
	if stderrors.As(err, &retryable) {
		return retryable.RetryableError()
	}
	return false
}
