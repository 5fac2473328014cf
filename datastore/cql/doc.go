/*
Package cql provides a Cassandra and Scylla implementation of the datastore.Session interface.

Statements are rendered to CQL with bind markers:

	INSERT INTO app.users (id, name) VALUES (?, ?) USING TTL 60
	DELETE email FROM app.users WHERE id = ?
	SELECT * FROM app.events WHERE id = ? ORDER BY at DESC LIMIT 10

Consistency overrides map to gocql consistencies; SERIAL and LOCAL_SERIAL set the
serial consistency of the query. Asynchronous executions run on their own goroutine
and complete a datastore.Future.
*/
package cql
