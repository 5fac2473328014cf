/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package columnstore

import (
	"context"
	"time"

	"github.com/suparena/columnstore/errors"
	"github.com/suparena/columnstore/storagemodels"
)

// Save inserts entity and returns it unchanged.
func (m *Manager) Save(ctx context.Context, entity storagemodels.Entity) (storagemodels.Entity, error) {
	return m.save(ctx, entity, dispatchOptions{})
}

// SaveWithTTL inserts entity with a time-to-live truncated to whole seconds.
func (m *Manager) SaveWithTTL(ctx context.Context, entity storagemodels.Entity, ttl time.Duration) (storagemodels.Entity, error) {
	return m.save(ctx, entity, withTTL(ttl))
}

// SaveWithConsistency inserts entity at the given consistency level.
func (m *Manager) SaveWithConsistency(ctx context.Context, entity storagemodels.Entity, level storagemodels.ConsistencyLevel) (storagemodels.Entity, error) {
	return m.save(ctx, entity, withConsistency(level))
}

func (m *Manager) SaveWithTTLAndConsistency(ctx context.Context, entity storagemodels.Entity, ttl time.Duration, level storagemodels.ConsistencyLevel) (storagemodels.Entity, error) {
	return m.save(ctx, entity, withTTLAndConsistency(ttl, level))
}

func (m *Manager) save(ctx context.Context, entity storagemodels.Entity, opts dispatchOptions) (storagemodels.Entity, error) {
	stmt, err := m.insertStatement(entity, opts)
	if err != nil {
		return storagemodels.Entity{}, err
	}
	if _, err := m.execute(ctx, stmt); err != nil {
		return storagemodels.Entity{}, err
	}
	return entity, nil
}

// SaveAsync dispatches the insert and returns without waiting for the store.
// The returned error only reports invalid arguments.
func (m *Manager) SaveAsync(ctx context.Context, entity storagemodels.Entity) error {
	return m.saveAsync(ctx, entity, dispatchOptions{})
}

func (m *Manager) SaveAsyncWithTTL(ctx context.Context, entity storagemodels.Entity, ttl time.Duration) error {
	return m.saveAsync(ctx, entity, withTTL(ttl))
}

func (m *Manager) SaveAsyncWithConsistency(ctx context.Context, entity storagemodels.Entity, level storagemodels.ConsistencyLevel) error {
	return m.saveAsync(ctx, entity, withConsistency(level))
}

func (m *Manager) SaveAsyncWithTTLAndConsistency(ctx context.Context, entity storagemodels.Entity, ttl time.Duration, level storagemodels.ConsistencyLevel) error {
	return m.saveAsync(ctx, entity, withTTLAndConsistency(ttl, level))
}

func (m *Manager) saveAsync(ctx context.Context, entity storagemodels.Entity, opts dispatchOptions) error {
	stmt, err := m.insertStatement(entity, opts)
	if err != nil {
		return err
	}
	m.dispatch(ctx, stmt)
	return nil
}

// SaveAsyncCallback dispatches the insert; callback receives entity once the store completes.
func (m *Manager) SaveAsyncCallback(ctx context.Context, entity storagemodels.Entity, callback EntityCallback) error {
	return m.saveAsyncCallback(ctx, entity, dispatchOptions{}, callback)
}

func (m *Manager) SaveAsyncWithTTLCallback(ctx context.Context, entity storagemodels.Entity, ttl time.Duration, callback EntityCallback) error {
	return m.saveAsyncCallback(ctx, entity, withTTL(ttl), callback)
}

func (m *Manager) saveAsyncCallback(ctx context.Context, entity storagemodels.Entity, opts dispatchOptions, callback EntityCallback) error {
	if callback == nil {
		return errors.NewInvalidArgumentError("callback", "callback is required")
	}
	stmt, err := m.insertStatement(entity, opts)
	if err != nil {
		return err
	}
	pending := m.session.ExecuteAsync(ctx, stmt)
	observe(pending, m.executor, stmt.Kind.String(), returning(entity), callback)
	return nil
}

// Update is Save: the store treats inserts as upserts.
func (m *Manager) Update(ctx context.Context, entity storagemodels.Entity) (storagemodels.Entity, error) {
	return m.Save(ctx, entity)
}

func (m *Manager) UpdateAsync(ctx context.Context, entity storagemodels.Entity) error {
	return m.SaveAsync(ctx, entity)
}

func (m *Manager) UpdateAsyncCallback(ctx context.Context, entity storagemodels.Entity, callback EntityCallback) error {
	return m.SaveAsyncCallback(ctx, entity, callback)
}

// Delete removes the rows, or the projected columns, selected by query.
func (m *Manager) Delete(ctx context.Context, query storagemodels.Query) error {
	return m.delete(ctx, query, dispatchOptions{})
}

func (m *Manager) DeleteWithConsistency(ctx context.Context, query storagemodels.Query, level storagemodels.ConsistencyLevel) error {
	return m.delete(ctx, query, withConsistency(level))
}

func (m *Manager) delete(ctx context.Context, query storagemodels.Query, opts dispatchOptions) error {
	stmt, err := m.deleteStatement(query, opts)
	if err != nil {
		return err
	}
	_, err = m.execute(ctx, stmt)
	return err
}

func (m *Manager) DeleteAsync(ctx context.Context, query storagemodels.Query) error {
	return m.deleteAsync(ctx, query, dispatchOptions{})
}

func (m *Manager) DeleteAsyncWithConsistency(ctx context.Context, query storagemodels.Query, level storagemodels.ConsistencyLevel) error {
	return m.deleteAsync(ctx, query, withConsistency(level))
}

func (m *Manager) deleteAsync(ctx context.Context, query storagemodels.Query, opts dispatchOptions) error {
	stmt, err := m.deleteStatement(query, opts)
	if err != nil {
		return err
	}
	m.dispatch(ctx, stmt)
	return nil
}

// DeleteAsyncCallback dispatches the delete; callback runs once the store completes.
func (m *Manager) DeleteAsyncCallback(ctx context.Context, query storagemodels.Query, callback DeleteCallback) error {
	if callback == nil {
		return errors.NewInvalidArgumentError("callback", "callback is required")
	}
	stmt, err := m.deleteStatement(query, dispatchOptions{})
	if err != nil {
		return err
	}
	pending := m.session.ExecuteAsync(ctx, stmt)
	observe(pending, m.executor, stmt.Kind.String(), discard, func(_ struct{}, err error) {
		callback(err)
	})
	return nil
}

// Find returns the converted rows selected by query, in store order.
// No match yields an empty slice.
func (m *Manager) Find(ctx context.Context, query storagemodels.Query) ([]storagemodels.Entity, error) {
	return m.find(ctx, query, dispatchOptions{})
}

func (m *Manager) FindWithConsistency(ctx context.Context, query storagemodels.Query, level storagemodels.ConsistencyLevel) ([]storagemodels.Entity, error) {
	return m.find(ctx, query, withConsistency(level))
}

func (m *Manager) find(ctx context.Context, query storagemodels.Query, opts dispatchOptions) ([]storagemodels.Entity, error) {
	stmt, err := m.selectStatement(query, opts)
	if err != nil {
		return nil, err
	}
	return m.query(ctx, stmt)
}

// FindAsync dispatches the select; callback receives every converted row at once.
func (m *Manager) FindAsync(ctx context.Context, query storagemodels.Query, callback EntitiesCallback) error {
	return m.findAsync(ctx, query, dispatchOptions{}, callback)
}

func (m *Manager) FindAsyncWithConsistency(ctx context.Context, query storagemodels.Query, level storagemodels.ConsistencyLevel, callback EntitiesCallback) error {
	return m.findAsync(ctx, query, withConsistency(level), callback)
}

func (m *Manager) findAsync(ctx context.Context, query storagemodels.Query, opts dispatchOptions, callback EntitiesCallback) error {
	if callback == nil {
		return errors.NewInvalidArgumentError("callback", "callback is required")
	}
	stmt, err := m.selectStatement(query, opts)
	if err != nil {
		return err
	}
	m.queryAsync(ctx, stmt, callback)
	return nil
}

// NativeQuery sends query text to the session as is, bypassing the statement builder.
func (m *Manager) NativeQuery(ctx context.Context, query string, args ...any) ([]storagemodels.Entity, error) {
	stmt, err := rawStatement(query, args)
	if err != nil {
		return nil, err
	}
	return m.query(ctx, stmt)
}

func (m *Manager) NativeQueryAsync(ctx context.Context, query string, callback EntitiesCallback, args ...any) error {
	if callback == nil {
		return errors.NewInvalidArgumentError("callback", "callback is required")
	}
	stmt, err := rawStatement(query, args)
	if err != nil {
		return err
	}
	m.queryAsync(ctx, stmt, callback)
	return nil
}

// NativeQueryPrepare returns a handle for query that can be executed repeatedly.
// The manager keeps no reference to it.
//
// Neither backend validates the query here: gocql prepares it on first execution and
// caches it per session, and DynamoDB binds PartiQL parameters on every call. A malformed
// query therefore fails with a StoreExecutionError from the first Execute or ExecuteAsync.
func (m *Manager) NativeQueryPrepare(ctx context.Context, query string) (*PreparedStatement, error) {
	if query == "" {
		return nil, errors.NewInvalidArgumentError("query", "query text is required")
	}
	prepared, err := m.session.Prepare(ctx, query)
	if err != nil {
		return nil, errors.NewStoreExecutionError("prepare", err)
	}
	return &PreparedStatement{
		prepared:  *prepared,
		session:   m.session,
		executor:  m.executor,
		converter: m.converter,
	}, nil
}

func (m *Manager) query(ctx context.Context, stmt *storagemodels.Statement) ([]storagemodels.Entity, error) {
	rs, err := m.execute(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return m.entities(rs)
}

func (m *Manager) queryAsync(ctx context.Context, stmt *storagemodels.Statement, callback EntitiesCallback) {
	pending := m.session.ExecuteAsync(ctx, stmt)
	observe(pending, m.executor, stmt.Kind.String(), m.entities, callback)
}
