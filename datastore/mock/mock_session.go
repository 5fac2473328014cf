/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mock provides an in-memory, recording implementation of datastore.Session for testing
package mock

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/suparena/columnstore/datastore"
	"github.com/suparena/columnstore/errors"
	"github.com/suparena/columnstore/storagemodels"
)

// AsyncMode controls when asynchronous executions complete.
type AsyncMode int

const (
	// AsyncImmediate completes each operation on its own goroutine right away.
	AsyncImmediate AsyncMode = iota
	// AsyncDeferred holds operations until Release or ReleaseAll is called.
	AsyncDeferred
)

// Session is a mock implementation of datastore.Session for testing
type Session struct {
	mu         sync.Mutex
	tables     map[string][]storagemodels.Row
	keys       map[string][]string
	executed   []storagemodels.Statement
	prepared   []storagemodels.Prepared
	pending    []*deferred
	queryFunc  func(stmt *storagemodels.Statement) (*storagemodels.ResultSet, error)
	execError  error
	closeError error
	asyncMode  AsyncMode
	asyncDelay time.Duration
	closed     int
}

type deferred struct {
	future *datastore.Future
	stmt   *storagemodels.Statement
}

// New creates a new mock Session
func New() *Session {
	return &Session{
		tables: make(map[string][]storagemodels.Row),
		keys:   make(map[string][]string),
	}
}

// WithKeyColumns declares the primary key columns of a table. Inserts with the same
// key replace each other. By default the first column of an insert is the key.
func (s *Session) WithKeyColumns(table string, columns ...string) *Session {
	s.keys[table] = columns
	return s
}

// WithQueryFunc answers every execution with f instead of the in-memory tables
func (s *Session) WithQueryFunc(f func(stmt *storagemodels.Statement) (*storagemodels.ResultSet, error)) *Session {
	s.queryFunc = f
	return s
}

// WithExecuteError makes every execution fail with err
func (s *Session) WithExecuteError(err error) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.execError = err
	return s
}

// WithCloseError makes Close return err
func (s *Session) WithCloseError(err error) *Session {
	s.closeError = err
	return s
}

// WithAsyncMode selects how asynchronous executions complete
func (s *Session) WithAsyncMode(mode AsyncMode) *Session {
	s.asyncMode = mode
	return s
}

// WithAsyncDelay delays completion of immediate asynchronous executions
func (s *Session) WithAsyncDelay(d time.Duration) *Session {
	s.asyncDelay = d
	return s
}

// Execute runs the statement against the in-memory tables
func (s *Session) Execute(ctx context.Context, stmt *storagemodels.Statement) (*storagemodels.ResultSet, error) {
	s.record(stmt)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.apply(stmt)
}

// ExecuteAsync records the statement and completes it according to the async mode
func (s *Session) ExecuteAsync(ctx context.Context, stmt *storagemodels.Statement) datastore.PendingOperation {
	s.record(stmt)
	future := datastore.NewFuture()

	s.mu.Lock()
	mode, delay := s.asyncMode, s.asyncDelay
	if mode == AsyncDeferred {
		s.pending = append(s.pending, &deferred{future: future, stmt: stmt})
		s.mu.Unlock()
		return future
	}
	s.mu.Unlock()

	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		future.Complete(s.apply(stmt))
	}()
	return future
}

// Prepare hands out a handle for query
func (s *Session) Prepare(ctx context.Context, query string) (*storagemodels.Prepared, error) {
	if query == "" {
		return nil, errors.NewInvalidArgumentError("query", "query text is required")
	}
	p := storagemodels.Prepared{ID: uuid.NewString(), Query: query}
	s.mu.Lock()
	s.prepared = append(s.prepared, p)
	s.mu.Unlock()
	return &p, nil
}

// Close marks the session closed. Closing twice returns errors.ErrClosed.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
	if s.closeError != nil {
		return s.closeError
	}
	if s.closed > 1 {
		return fmt.Errorf("session already closed: %w", errors.ErrClosed)
	}
	return nil
}

// Helper methods for testing

// Statements returns a copy of every statement received, in order
func (s *Session) Statements() []storagemodels.Statement {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storagemodels.Statement(nil), s.executed...)
}

// ExecuteCount returns the number of statements received
func (s *Session) ExecuteCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.executed)
}

// Prepared returns every handle created by Prepare
func (s *Session) Prepared() []storagemodels.Prepared {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storagemodels.Prepared(nil), s.prepared...)
}

// PendingCount returns the number of deferred operations not yet released
func (s *Session) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Release completes the oldest deferred operation. It reports false when none is pending.
func (s *Session) Release() bool {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.mu.Unlock()
		return false
	}
	d := s.pending[0]
	s.pending = s.pending[1:]
	s.mu.Unlock()

	d.future.Complete(s.apply(d.stmt))
	return true
}

// ReleaseAll completes every deferred operation in dispatch order
func (s *Session) ReleaseAll() {
	for s.Release() {
	}
}

// Closed reports how many times Close was called
func (s *Session) Closed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Rows returns a copy of the rows stored for table
func (s *Session) Rows(table string) []storagemodels.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storagemodels.Row(nil), s.tables[table]...)
}

func (s *Session) record(stmt *storagemodels.Statement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.executed = append(s.executed, *stmt)
}

func (s *Session) apply(stmt *storagemodels.Statement) (*storagemodels.ResultSet, error) {
	s.mu.Lock()
	execError, queryFunc := s.execError, s.queryFunc
	s.mu.Unlock()

	if execError != nil {
		return nil, execError
	}
	if queryFunc != nil {
		return queryFunc(stmt)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch stmt.Kind {
	case storagemodels.KindInsert:
		s.upsert(stmt)
		return &storagemodels.ResultSet{}, nil
	case storagemodels.KindDelete:
		s.remove(stmt)
		return &storagemodels.ResultSet{}, nil
	case storagemodels.KindSelect:
		return s.selectRows(stmt), nil
	case storagemodels.KindRaw:
		return &storagemodels.ResultSet{}, nil
	}
	return nil, fmt.Errorf("unsupported statement kind %v", stmt.Kind)
}

func (s *Session) keyColumns(table string, row []storagemodels.Column) []string {
	if keys, ok := s.keys[table]; ok {
		return keys
	}
	if len(row) == 0 {
		return nil
	}
	return []string{row[0].Name}
}

func (s *Session) upsert(stmt *storagemodels.Statement) {
	row := storagemodels.Row{
		Table:   stmt.Table,
		Columns: append([]storagemodels.Column(nil), stmt.Columns...),
	}
	keys := s.keyColumns(stmt.Table, row.Columns)

	rows := s.tables[stmt.Table]
	for i, existing := range rows {
		if sameKey(existing, row, keys) {
			rows[i] = row
			return
		}
	}
	s.tables[stmt.Table] = append(rows, row)
}

func (s *Session) remove(stmt *storagemodels.Statement) {
	rows := s.tables[stmt.Table]
	kept := rows[:0]
	for _, row := range rows {
		if !matches(row, stmt.Where) {
			kept = append(kept, row)
			continue
		}
		if len(stmt.Projection) > 0 {
			kept = append(kept, dropColumns(row, stmt.Projection))
		}
	}
	s.tables[stmt.Table] = kept
}

func (s *Session) selectRows(stmt *storagemodels.Statement) *storagemodels.ResultSet {
	rs := &storagemodels.ResultSet{}
	for _, row := range s.tables[stmt.Table] {
		if !matches(row, stmt.Where) {
			continue
		}
		rs.Rows = append(rs.Rows, project(row, stmt.Projection))
		if stmt.Limit > 0 && len(rs.Rows) == stmt.Limit {
			break
		}
	}
	return rs
}

func sameKey(a, b storagemodels.Row, keys []string) bool {
	if len(keys) == 0 {
		return false
	}
	for _, k := range keys {
		av, aok := value(a, k)
		bv, bok := value(b, k)
		if !aok || !bok || !reflect.DeepEqual(av, bv) {
			return false
		}
	}
	return true
}

// matches supports equality and IN conditions; other operators never match.
func matches(row storagemodels.Row, where []storagemodels.Condition) bool {
	for _, c := range where {
		v, ok := value(row, c.Column)
		if !ok {
			return false
		}
		switch c.Operator {
		case storagemodels.OpEqual:
			if !reflect.DeepEqual(v, c.Value) {
				return false
			}
		case storagemodels.OpIn:
			found := false
			for _, candidate := range c.Value.([]any) {
				if reflect.DeepEqual(candidate, v) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func value(row storagemodels.Row, name string) (any, bool) {
	for _, c := range row.Columns {
		if c.Name == name {
			return c.Value, true
		}
	}
	return nil, false
}

func project(row storagemodels.Row, columns []string) storagemodels.Row {
	out := storagemodels.Row{Table: row.Table}
	if len(columns) == 0 {
		out.Columns = append([]storagemodels.Column(nil), row.Columns...)
		return out
	}
	for _, name := range columns {
		if v, ok := value(row, name); ok {
			out.Columns = append(out.Columns, storagemodels.Column{Name: name, Value: v})
		}
	}
	return out
}

func dropColumns(row storagemodels.Row, columns []string) storagemodels.Row {
	out := storagemodels.Row{Table: row.Table}
	for _, c := range row.Columns {
		drop := false
		for _, name := range columns {
			if c.Name == name {
				drop = true
				break
			}
		}
		if !drop {
			out.Columns = append(out.Columns, c)
		}
	}
	return out
}
