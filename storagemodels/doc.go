/*
Package storagemodels defines the data structures shared by the datastore
backends.

DictionaryRecord:
The persisted dictionary of one kernel entity, keyed by its ShapeID:

	rec := DictionaryRecord{
	    ShapeID: id.String(),
	    Attributes: map[string]AttributeValue{
	        "label": {Kind: "String", String: &label},
	    },
	    UpdatedAt: strfmt.DateTime(time.Now()).String(),
	}

StreamResult:
Results from streaming operations with metadata:

	type StreamResult[T any] struct {
	    Item  T                               // The typed record
	    Raw   map[string]types.AttributeValue // Raw DynamoDB attributes
	    Error error                           // Item-specific error, if any
	    Meta  StreamMeta                      // Metadata about this item
	}

StreamOptions:
Configuration for streaming behavior:

	opts := []StreamOption{
	    WithBufferSize(100),
	    WithPageSize(25),
	    WithMaxRetries(3),
	    WithProgressHandler(progressFunc),
	}
*/
package storagemodels
