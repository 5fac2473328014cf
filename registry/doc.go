/*
Package registry manages index maps for the DynamoDB session.

The registry enables:
  - Storing several column families in a single DynamoDB table
  - Deriving partition and sort keys from entity columns
  - Recognising which query conditions address the key

Index Map Registry:
Associates a column family with DynamoDB key patterns:

	registry.RegisterIndexMap("users", map[string]string{
	    "PK":     "USER#{id}",
	    "SK":     "USER#{id}",
	    "GSI1PK": "EMAIL#{email}",
	    "GSI1SK": "USER",
	})

The registry is thread-safe and should be populated during initialization,
typically in init() functions.
*/
package registry
