/*
Package datastore defines the collaborator contracts consumed by the entity manager.

	type Session interface {
	    Execute(ctx context.Context, stmt *storagemodels.Statement) (*storagemodels.ResultSet, error)
	    ExecuteAsync(ctx context.Context, stmt *storagemodels.Statement) PendingOperation
	    Prepare(ctx context.Context, query string) (*storagemodels.Prepared, error)
	    Close() error
	}

A PendingOperation notifies listeners through an Executor once the store completes
it. Future is the implementation shared by every session in this module.

StatementBuilder and ResultConverter are the pure seams between entities and
statements or rows. DefaultBuilder and DefaultConverter are backend neutral.

Implementations:
  - cql: Cassandra and Scylla over gocql
  - ddb: DynamoDB with single-table key expansion
  - mock: in-memory recording session for testing
*/
package datastore
