/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package columnstore

import (
	"context"

	"github.com/suparena/columnstore/datastore"
	"github.com/suparena/columnstore/errors"
	"github.com/suparena/columnstore/storagemodels"
)

// PreparedStatement is a compiled raw query bound to the session and executor of
// the manager that prepared it. It is owned by the caller.
type PreparedStatement struct {
	prepared  storagemodels.Prepared
	session   datastore.Session
	executor  datastore.Executor
	converter datastore.ResultConverter
}

// Query returns the query text.
func (p *PreparedStatement) Query() string {
	return p.prepared.Query
}

// ID returns the session assigned identifier.
func (p *PreparedStatement) ID() string {
	return p.prepared.ID
}

func (p *PreparedStatement) statement(values []any) *storagemodels.Statement {
	handle := p.prepared
	return &storagemodels.Statement{
		Kind:     storagemodels.KindRaw,
		Raw:      handle.Query,
		Args:     values,
		Prepared: &handle,
	}
}

// Execute binds values and runs the statement. Query errors surface here, not at prepare time.
func (p *PreparedStatement) Execute(ctx context.Context, values ...any) ([]storagemodels.Entity, error) {
	rs, err := p.session.Execute(ctx, p.statement(values))
	if err != nil {
		return nil, errors.NewStoreExecutionError("prepared", err)
	}
	return datastore.ConvertAll(p.converter, rs)
}

// ExecuteAsync binds values and dispatches the statement; callback receives the rows.
func (p *PreparedStatement) ExecuteAsync(ctx context.Context, callback EntitiesCallback, values ...any) error {
	if callback == nil {
		return errors.NewInvalidArgumentError("callback", "callback is required")
	}
	pending := p.session.ExecuteAsync(ctx, p.statement(values))
	observe(pending, p.executor, "prepared", func(rs *storagemodels.ResultSet) ([]storagemodels.Entity, error) {
		return datastore.ConvertAll(p.converter, rs)
	}, callback)
	return nil
}
