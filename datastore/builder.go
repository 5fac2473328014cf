/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"github.com/suparena/columnstore/errors"
	"github.com/suparena/columnstore/storagemodels"
)

// DefaultBuilder builds backend neutral statements; sessions render them.
type DefaultBuilder struct{}

func (DefaultBuilder) BuildInsert(entity storagemodels.Entity, keyspace string) (*storagemodels.Statement, error) {
	if entity.Name == "" {
		return nil, errors.NewInvalidArgumentError("entity", "column family name is required")
	}
	if len(entity.Columns) == 0 {
		return nil, errors.NewInvalidArgumentError("entity", "at least one column is required")
	}
	columns := make([]storagemodels.Column, len(entity.Columns))
	copy(columns, entity.Columns)
	for _, c := range columns {
		if c.Name == "" {
			return nil, errors.NewInvalidArgumentError("entity", "column name is required")
		}
	}
	return &storagemodels.Statement{
		Kind:     storagemodels.KindInsert,
		Keyspace: keyspace,
		Table:    entity.Name,
		Columns:  columns,
	}, nil
}

func (DefaultBuilder) BuildDelete(query storagemodels.Query, keyspace string) (*storagemodels.Statement, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	if len(query.Where) == 0 {
		return nil, errors.NewInvalidArgumentError("query", "delete requires at least one condition")
	}
	return &storagemodels.Statement{
		Kind:       storagemodels.KindDelete,
		Keyspace:   keyspace,
		Table:      query.Table,
		Projection: cloneStrings(query.Columns),
		Where:      cloneConditions(query.Where),
	}, nil
}

func (DefaultBuilder) BuildSelect(query storagemodels.Query, keyspace string) (*storagemodels.Statement, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}
	if query.Limit < 0 {
		return nil, errors.NewInvalidArgumentError("query", "limit must not be negative")
	}
	stmt := &storagemodels.Statement{
		Kind:       storagemodels.KindSelect,
		Keyspace:   keyspace,
		Table:      query.Table,
		Projection: cloneStrings(query.Columns),
		Where:      cloneConditions(query.Where),
		Limit:      query.Limit,
	}
	if len(query.OrderBy) > 0 {
		stmt.OrderBy = append([]storagemodels.Sort(nil), query.OrderBy...)
	}
	return stmt, nil
}

func validateQuery(query storagemodels.Query) error {
	if query.Table == "" {
		return errors.NewInvalidArgumentError("query", "table is required")
	}
	for _, c := range query.Where {
		if c.Column == "" {
			return errors.NewInvalidArgumentError("query", "condition column is required")
		}
		if c.Operator == storagemodels.OpIn {
			if _, ok := c.Value.([]any); !ok {
				return errors.NewInvalidArgumentError("query", "IN condition on "+c.Column+" needs a []any value")
			}
		}
	}
	return nil
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneConditions(in []storagemodels.Condition) []storagemodels.Condition {
	if len(in) == 0 {
		return nil
	}
	return append([]storagemodels.Condition(nil), in...)
}
