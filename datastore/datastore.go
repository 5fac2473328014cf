/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/columnstore/storagemodels"
)

// Session executes statements against a column-family store.
type Session interface {
	// Execute runs the statement and blocks until the store responds.
	Execute(ctx context.Context, stmt *storagemodels.Statement) (*storagemodels.ResultSet, error)

	// ExecuteAsync dispatches the statement and returns without waiting.
	// The returned operation never completes inline with this call.
	ExecuteAsync(ctx context.Context, stmt *storagemodels.Statement) PendingOperation

	// Prepare compiles a raw query for repeated execution.
	Prepare(ctx context.Context, query string) (*storagemodels.Prepared, error)

	Close() error
}

// PendingOperation is an in-flight asynchronous execution.
type PendingOperation interface {
	// AddListener schedules listener on executor once the operation completes.
	AddListener(listener func(), executor Executor)

	// Get blocks until completion and returns the outcome.
	Get() (*storagemodels.ResultSet, error)

	// Done is closed on completion.
	Done() <-chan struct{}
}

// Executor runs tasks off the calling goroutine.
type Executor interface {
	Execute(task func())
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(task func())

func (f ExecutorFunc) Execute(task func()) {
	f(task)
}

// GoExecutor runs every task on a new goroutine.
var GoExecutor Executor = ExecutorFunc(func(task func()) { go task() })

// StatementBuilder turns entities and queries into statements. Implementations are pure.
type StatementBuilder interface {
	BuildInsert(entity storagemodels.Entity, keyspace string) (*storagemodels.Statement, error)
	BuildDelete(query storagemodels.Query, keyspace string) (*storagemodels.Statement, error)
	BuildSelect(query storagemodels.Query, keyspace string) (*storagemodels.Statement, error)
}

// ResultConverter maps one raw row to an entity. Implementations are pure.
type ResultConverter interface {
	RowToEntity(row storagemodels.Row) (storagemodels.Entity, error)
}

// ConverterFunc adapts a function to the ResultConverter interface.
type ConverterFunc func(row storagemodels.Row) (storagemodels.Entity, error)

func (f ConverterFunc) RowToEntity(row storagemodels.Row) (storagemodels.Entity, error) {
	return f(row)
}
