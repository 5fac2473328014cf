/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cql

import (
	"context"
	"fmt"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/suparena/columnstore/datastore"
	"github.com/suparena/columnstore/errors"
	"github.com/suparena/columnstore/storagemodels"
	"go.uber.org/zap"
)

// Options configures the cluster a Session connects to.
type Options struct {
	Hosts        []string
	Port         int
	Username     string
	Password     string
	ProtoVersion int
	Consistency  storagemodels.ConsistencyLevel
	Timeout      time.Duration
}

// Session implements datastore.Session on top of gocql.
type Session struct {
	session *gocql.Session
}

// NewCluster builds the gocql cluster configuration for opts.
func NewCluster(opts Options) (*gocql.ClusterConfig, error) {
	if len(opts.Hosts) == 0 {
		return nil, errors.NewInvalidArgumentError("hosts", "at least one host is required")
	}
	cluster := gocql.NewCluster(opts.Hosts...)
	if opts.Port > 0 {
		cluster.Port = opts.Port
	}
	if opts.ProtoVersion > 0 {
		cluster.ProtoVersion = opts.ProtoVersion
	}
	if opts.Timeout > 0 {
		cluster.Timeout = opts.Timeout
	}
	if c, ok := Consistency(opts.Consistency); ok {
		cluster.Consistency = c
	}
	if opts.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: opts.Username,
			Password: opts.Password,
		}
	}
	return cluster, nil
}

// NewSession connects to the cluster described by opts.
func NewSession(opts Options) (*Session, error) {
	cluster, err := NewCluster(opts)
	if err != nil {
		return nil, err
	}
	s, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create CQL session: %w", err)
	}
	zap.S().Infow("CQL session initialized", "hosts", opts.Hosts, "consistency", opts.Consistency)
	return &Session{session: s}, nil
}

// Wrap adapts an existing gocql session.
func Wrap(s *gocql.Session) *Session {
	return &Session{session: s}
}

func (s *Session) Execute(ctx context.Context, stmt *storagemodels.Statement) (*storagemodels.ResultSet, error) {
	text, args, err := Render(stmt)
	if err != nil {
		return nil, err
	}
	q := s.session.Query(text, args...).WithContext(ctx)
	applyConsistency(q, stmt.Consistency)

	if stmt.Kind == storagemodels.KindInsert || stmt.Kind == storagemodels.KindDelete {
		if err := q.Exec(); err != nil {
			return nil, fmt.Errorf("CQL %s error: %w", stmt.Kind, err)
		}
		return &storagemodels.ResultSet{}, nil
	}

	iter := q.Iter()
	columns := iter.Columns()
	table := stmt.Table
	if len(columns) > 0 && columns[0].Table != "" {
		table = columns[0].Table
	}

	rs := &storagemodels.ResultSet{}
	for {
		values := make(map[string]interface{}, len(columns))
		if !iter.MapScan(values) {
			break
		}
		row := storagemodels.Row{Table: table, Columns: make([]storagemodels.Column, 0, len(columns))}
		for _, c := range columns {
			row.Columns = append(row.Columns, storagemodels.Column{Name: c.Name, Value: values[c.Name]})
		}
		rs.Rows = append(rs.Rows, row)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("CQL %s error: %w", stmt.Kind, err)
	}
	return rs, nil
}

// ExecuteAsync runs the statement on its own goroutine.
func (s *Session) ExecuteAsync(ctx context.Context, stmt *storagemodels.Statement) datastore.PendingOperation {
	future := datastore.NewFuture()
	go func() {
		future.Complete(s.Execute(ctx, stmt))
	}()
	return future
}

// Prepare returns a handle for query. gocql prepares statements on their first
// execution and caches them per session, so nothing is sent here.
func (s *Session) Prepare(ctx context.Context, query string) (*storagemodels.Prepared, error) {
	if query == "" {
		return nil, errors.NewInvalidArgumentError("query", "query text is required")
	}
	return &storagemodels.Prepared{ID: uuid.NewString(), Query: query}, nil
}

func (s *Session) Close() error {
	s.session.Close()
	return nil
}
