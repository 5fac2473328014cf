/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package columnstore

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/suparena/columnstore/datastore"
	"github.com/suparena/columnstore/errors"
	"github.com/suparena/columnstore/storagemodels"
	"go.uber.org/zap"
)

// Manager translates entity operations into statements for one keyspace and runs them
// on a session. Callbacks of asynchronous operations run on the manager's executor.
//
// A Manager holds no mutable state and is safe for concurrent use.
type Manager struct {
	session   datastore.Session
	executor  datastore.Executor
	keyspace  string
	builder   datastore.StatementBuilder
	converter datastore.ResultConverter
}

// Option customises a Manager at construction.
type Option func(*Manager)

// WithStatementBuilder replaces datastore.DefaultBuilder.
func WithStatementBuilder(b datastore.StatementBuilder) Option {
	return func(m *Manager) {
		m.builder = b
	}
}

// WithResultConverter replaces datastore.DefaultConverter.
func WithResultConverter(c datastore.ResultConverter) Option {
	return func(m *Manager) {
		m.converter = c
	}
}

// New creates a Manager bound to session, executor and keyspace.
func New(session datastore.Session, executor datastore.Executor, keyspace string, opts ...Option) (*Manager, error) {
	if session == nil {
		return nil, errors.NewInvalidArgumentError("session", "session is required")
	}
	if executor == nil {
		return nil, errors.NewInvalidArgumentError("executor", "executor is required")
	}
	if keyspace == "" {
		return nil, errors.NewInvalidArgumentError("keyspace", "keyspace is required")
	}

	m := &Manager{
		session:   session,
		executor:  executor,
		keyspace:  keyspace,
		builder:   datastore.DefaultBuilder{},
		converter: datastore.DefaultConverter{},
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.builder == nil || m.converter == nil {
		return nil, errors.NewInvalidArgumentError("options", "statement builder and result converter must not be nil")
	}
	return m, nil
}

// Keyspace returns the namespace every statement targets.
func (m *Manager) Keyspace() string {
	return m.keyspace
}

// Session returns the underlying session.
func (m *Manager) Session() datastore.Session {
	return m.session
}

// Close releases the session. Calling it twice has session defined behavior.
func (m *Manager) Close() error {
	return m.session.Close()
}

func (m *Manager) String() string {
	return fmt.Sprintf("Manager{keyspace=%s, session=%T}", m.keyspace, m.session)
}

// dispatchOptions are the per-operation statement decorations.
type dispatchOptions struct {
	consistency *storagemodels.ConsistencyLevel
	ttl         *time.Duration
}

func withConsistency(level storagemodels.ConsistencyLevel) dispatchOptions {
	return dispatchOptions{consistency: &level}
}

func withTTL(ttl time.Duration) dispatchOptions {
	return dispatchOptions{ttl: &ttl}
}

func withTTLAndConsistency(ttl time.Duration, level storagemodels.ConsistencyLevel) dispatchOptions {
	return dispatchOptions{ttl: &ttl, consistency: &level}
}

func (o dispatchOptions) validate() error {
	if o.consistency != nil && !o.consistency.Valid() {
		return errors.NewInvalidArgumentError("consistency", "consistency level is required")
	}
	if o.ttl != nil {
		if *o.ttl < 0 {
			return errors.NewInvalidArgumentError("ttl", "must not be negative")
		}
		if int64(*o.ttl/time.Second) > math.MaxInt32 {
			return errors.NewInvalidArgumentError("ttl", "does not fit in 32-bit seconds")
		}
	}
	return nil
}

// decorate applies the overrides; fractional TTL seconds are dropped.
func (o dispatchOptions) decorate(stmt *storagemodels.Statement) {
	if o.consistency != nil {
		stmt.SetConsistency(*o.consistency)
	}
	if o.ttl != nil {
		stmt.SetTTL(int32(*o.ttl / time.Second))
	}
}

// statement validates opts, then builds and decorates exactly one statement.
func (m *Manager) statement(opts dispatchOptions, build func() (*storagemodels.Statement, error)) (*storagemodels.Statement, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	stmt, err := build()
	if err != nil {
		return nil, err
	}
	opts.decorate(stmt)
	return stmt, nil
}

func (m *Manager) insertStatement(entity storagemodels.Entity, opts dispatchOptions) (*storagemodels.Statement, error) {
	return m.statement(opts, func() (*storagemodels.Statement, error) {
		return m.builder.BuildInsert(entity, m.keyspace)
	})
}

func (m *Manager) deleteStatement(query storagemodels.Query, opts dispatchOptions) (*storagemodels.Statement, error) {
	return m.statement(opts, func() (*storagemodels.Statement, error) {
		return m.builder.BuildDelete(query, m.keyspace)
	})
}

func (m *Manager) selectStatement(query storagemodels.Query, opts dispatchOptions) (*storagemodels.Statement, error) {
	return m.statement(opts, func() (*storagemodels.Statement, error) {
		return m.builder.BuildSelect(query, m.keyspace)
	})
}

func rawStatement(query string, args []any) (*storagemodels.Statement, error) {
	if query == "" {
		return nil, errors.NewInvalidArgumentError("query", "query text is required")
	}
	return &storagemodels.Statement{Kind: storagemodels.KindRaw, Raw: query, Args: args}, nil
}

// execute blocks on the session.
func (m *Manager) execute(ctx context.Context, stmt *storagemodels.Statement) (*storagemodels.ResultSet, error) {
	zap.S().Debugw("Executing statement", "kind", stmt.Kind, "keyspace", m.keyspace, "table", stmt.Table, "consistency", stmt.Consistency)
	rs, err := m.session.Execute(ctx, stmt)
	if err != nil {
		return nil, errors.NewStoreExecutionError(stmt.Kind.String(), err)
	}
	return rs, nil
}

// dispatch sends stmt without a caller callback. Failures are only logged.
func (m *Manager) dispatch(ctx context.Context, stmt *storagemodels.Statement) {
	pending := m.session.ExecuteAsync(ctx, stmt)
	observe(pending, m.executor, stmt.Kind.String(), discard, func(_ struct{}, err error) {
		if err != nil {
			zap.S().Warnw("Asynchronous statement failed", "kind", stmt.Kind, "keyspace", m.keyspace, "table", stmt.Table, "error", err)
		}
	})
}

func (m *Manager) entities(rs *storagemodels.ResultSet) ([]storagemodels.Entity, error) {
	entities, err := datastore.ConvertAll(m.converter, rs)
	if err != nil {
		return nil, fmt.Errorf("failed to convert rows: %w", err)
	}
	return entities, nil
}
