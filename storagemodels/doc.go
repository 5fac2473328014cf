/*
Package storagemodels defines the data structures shared by the manager and the sessions.

Key Types:

Entity:
An ordered set of named columns belonging to one column family:

	user := storagemodels.NewEntity("users",
	    storagemodels.Column{Name: "id", Value: "u1"},
	    storagemodels.Column{Name: "name", Value: "Ann"},
	)

Query:
A read or delete specification, opaque to the manager:

	q := storagemodels.Query{
	    Table: "users",
	    Where: []storagemodels.Condition{storagemodels.Eq("id", "u1")},
	}

Statement:
What a statement builder produces and a session executes. Consistency and TTL are
set on a built statement, never by the builder:

	stmt.SetConsistency(storagemodels.Quorum)
	stmt.SetTTL(60)

These types carry no backend specific data, so the same statement can be executed
by the CQL and the DynamoDB sessions.
*/
package storagemodels
