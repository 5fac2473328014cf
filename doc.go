/*
Package columnstore provides an entity manager for column-family stores such as
Cassandra, ScyllaDB and DynamoDB.

A Manager turns entity operations into statements for one keyspace and runs them on a
datastore.Session, either blocking or asynchronously:
  - Save, Update, Delete and Find, each with consistency level and TTL overrides
  - Asynchronous variants that return at dispatch and deliver results to a callback
  - Native queries passed to the store as is, and prepared statements for reuse
  - Semantic error types (see the errors package)

Callbacks run on the executor given to the manager, never on the caller's goroutine.
A callback receives either the result or a StoreExecutionError.

Basic Usage:

	cfg, _ := config.Load("columnstore.yaml")
	managers, _ := columnstore.Open(ctx, cfg)
	defer managers.Close()

	m, _ := managers.Get("app")
	user := storagemodels.NewEntity("users",
	    storagemodels.Column{Name: "id", Value: "u1"},
	    storagemodels.Column{Name: "name", Value: "Ann"},
	)
	_, err := m.SaveWithTTL(ctx, user, time.Hour)

	_ = m.FindAsync(ctx, storagemodels.Query{
	    Table: "users",
	    Where: []storagemodels.Condition{storagemodels.Eq("id", "u1")},
	}, func(users []storagemodels.Entity, err error) {
	    // runs on the manager's worker pool
	})
*/
package columnstore
