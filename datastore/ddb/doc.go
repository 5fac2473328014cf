/*
Package ddb provides a DynamoDB implementation of the datastore.Session interface.

The Session supports:
  - Single-table design, with column families told apart by an EntityType attribute
  - Macro-based key expansion (e.g., "USER#{id}") from registry index maps
  - Global Secondary Index (GSI) lookups when the primary key is not fixed
  - Paged reads with retry of throttling errors
  - Expiry through a numeric TTL attribute
  - Raw PartiQL statements for native queries

Macro Expansion:
Keys are built from column values named in the index map of the column family:

	registry.RegisterIndexMap("users", map[string]string{
	    "PK":     "USER#{id}",      // Becomes "USER#u1"
	    "SK":     "USER#{id}",
	    "GSI1PK": "EMAIL#{email}",
	    "GSI1SK": "USER",           // Static value
	})

Consistency:
Reads at a level stronger than ONE are issued with ConsistentRead on the table.
GSIs only offer eventual consistency, so the flag is dropped there.
*/
package ddb
