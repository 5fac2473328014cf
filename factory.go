/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package columnstore

import (
	"context"
	"fmt"

	"github.com/suparena/columnstore/config"
	"github.com/suparena/columnstore/datastore"
	"github.com/suparena/columnstore/datastore/cql"
	"github.com/suparena/columnstore/datastore/ddb"
	"github.com/suparena/columnstore/errors"
	"go.uber.org/zap"
)

// SessionFactory opens the session serving one keyspace.
type SessionFactory func(ctx context.Context, cfg *config.Config, keyspace string) (datastore.Session, error)

// Open connects a session per configured keyspace and returns their managers.
// Callbacks run on a worker pool of cfg.Workers goroutines owned by the result.
func Open(ctx context.Context, cfg *config.Config) (*Managers, error) {
	return OpenWith(ctx, cfg, BackendSessionFactory)
}

// OpenWith is Open with a custom session factory. On failure every session
// opened so far is closed.
func OpenWith(ctx context.Context, cfg *config.Config, factory SessionFactory) (*Managers, error) {
	if cfg == nil {
		return nil, errors.NewInvalidArgumentError("config", "configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool := NewWorkerPool(cfg.Workers)
	managers := NewManagers(pool)

	for _, keyspace := range cfg.Keyspaces {
		if err := ctx.Err(); err != nil {
			_ = managers.Close()
			return nil, err
		}
		session, err := factory(ctx, cfg, keyspace)
		if err != nil {
			_ = managers.Close()
			return nil, fmt.Errorf("failed to open session for keyspace %s: %w", keyspace, err)
		}
		m, err := New(session, pool, keyspace)
		if err == nil {
			err = managers.Register(m)
		}
		if err != nil {
			_ = session.Close()
			_ = managers.Close()
			return nil, err
		}
		zap.S().Infow("Manager opened", "backend", cfg.Backend, "keyspace", keyspace)
	}
	return managers, nil
}

// BackendSessionFactory opens a gocql or DynamoDB session according to cfg.Backend.
func BackendSessionFactory(ctx context.Context, cfg *config.Config, keyspace string) (datastore.Session, error) {
	switch cfg.Backend {
	case config.BackendCQL:
		return cql.NewSession(cql.Options{
			Hosts:        cfg.Cassandra.Hosts,
			Port:         cfg.Cassandra.Port,
			Username:     cfg.Cassandra.Username,
			Password:     cfg.Cassandra.Password,
			ProtoVersion: cfg.Cassandra.ProtoVersion,
			Consistency:  cfg.Consistency,
			Timeout:      cfg.Timeout,
		})
	case config.BackendDynamoDB:
		d := cfg.DynamoDB
		return ddb.NewDynamoDBSession(d.AccessKey, d.SecretKey, d.Region, d.Table,
			ddb.WithPageSize(d.PageSize),
			ddb.WithMaxRetries(d.MaxRetries),
			ddb.WithRetryBackoff(d.RetryBackoff),
			ddb.WithTTLAttribute(d.TTLAttribute),
		)
	}
	return nil, errors.NewInvalidArgumentError("backend", fmt.Sprintf("unsupported backend %q", cfg.Backend))
}
