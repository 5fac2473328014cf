/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package columnstore

import (
	"sync"

	"github.com/suparena/columnstore/datastore"
	"github.com/suparena/columnstore/errors"
	"github.com/suparena/columnstore/storagemodels"
)

// EntityCallback receives the saved entity, or the store failure.
type EntityCallback func(entity storagemodels.Entity, err error)

// EntitiesCallback receives every converted row, or the store failure.
type EntitiesCallback func(entities []storagemodels.Entity, err error)

// DeleteCallback receives nil once the delete completed, or the store failure.
type DeleteCallback func(err error)

// completion bridges one pending operation to one callback.
type completion[P any] struct {
	pending   datastore.PendingOperation
	operation string
	convert   func(*storagemodels.ResultSet) (P, error)
	callback  func(P, error)
	once      sync.Once
}

// observe registers a completion as the listener of pending, run on executor.
func observe[P any](
	pending datastore.PendingOperation,
	executor datastore.Executor,
	operation string,
	convert func(*storagemodels.ResultSet) (P, error),
	callback func(P, error),
) {
	c := &completion[P]{
		pending:   pending,
		operation: operation,
		convert:   convert,
		callback:  callback,
	}
	pending.AddListener(c.run, executor)
}

func (c *completion[P]) run() {
	c.once.Do(func() {
		var zero P
		rs, err := c.pending.Get()
		if err != nil {
			c.callback(zero, errors.NewStoreExecutionError(c.operation, err))
			return
		}
		payload, err := c.convert(rs)
		if err != nil {
			c.callback(zero, err)
			return
		}
		c.callback(payload, nil)
	})
}

func discard(*storagemodels.ResultSet) (struct{}, error) {
	return struct{}{}, nil
}

// returning ignores the result and yields the entity that was written.
func returning(entity storagemodels.Entity) func(*storagemodels.ResultSet) (storagemodels.Entity, error) {
	return func(*storagemodels.ResultSet) (storagemodels.Entity, error) {
		return entity, nil
	}
}
