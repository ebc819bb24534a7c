/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DictionaryRecord is the persisted dictionary of one kernel entity.
type DictionaryRecord struct {
	// ShapeID is the entity handle in its canonical string form.
	ShapeID string `dynamodbav:"ShapeID" json:"shapeId" yaml:"shapeId"`
	// Attributes maps dictionary keys to persisted attribute values.
	Attributes map[string]AttributeValue `dynamodbav:"Attributes" json:"attributes" yaml:"attributes"`
	// UpdatedAt is an RFC 3339 timestamp of the last write.
	UpdatedAt string `dynamodbav:"UpdatedAt" json:"updatedAt" yaml:"updatedAt"`
}

// AttributeValue is the persisted form of an attribute. Kind names the
// variant; exactly the matching field is set.
type AttributeValue struct {
	Kind   string           `dynamodbav:"Kind" json:"kind" yaml:"kind"`
	Int    *int64           `dynamodbav:"Int,omitempty" json:"int,omitempty" yaml:"int,omitempty"`
	Double *float64         `dynamodbav:"Double,omitempty" json:"double,omitempty" yaml:"double,omitempty"`
	String *string          `dynamodbav:"String,omitempty" json:"string,omitempty" yaml:"string,omitempty"`
	List   []AttributeValue `dynamodbav:"List,omitempty" json:"list,omitempty" yaml:"list,omitempty"`
}

// ScanParams defines parameters for a paginated DynamoDB Scan.
type ScanParams struct {
	// TableName is the DynamoDB table name.
	TableName string
	// FilterExpression is an optional filter expression.
	FilterExpression *string
	// ExpressionAttributeNames contains the name placeholders of the filter.
	ExpressionAttributeNames map[string]string
	// ExpressionAttributeValues contains the values for expression placeholders.
	ExpressionAttributeValues map[string]types.AttributeValue
	// Limit defines an optional limit per scan page.
	Limit *int32
	// ExclusiveStartKey for pagination
	ExclusiveStartKey map[string]types.AttributeValue
}
