/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cql

import (
	"fmt"
	"strings"

	"github.com/suparena/columnstore/errors"
	"github.com/suparena/columnstore/storagemodels"
)

// Render turns a statement into CQL text and its bind values.
func Render(stmt *storagemodels.Statement) (string, []any, error) {
	switch stmt.Kind {
	case storagemodels.KindInsert:
		return renderInsert(stmt)
	case storagemodels.KindDelete:
		return renderDelete(stmt)
	case storagemodels.KindSelect:
		return renderSelect(stmt)
	case storagemodels.KindRaw:
		if stmt.Raw == "" {
			return "", nil, errors.NewInvalidArgumentError("query", "query text is required")
		}
		return stmt.Raw, stmt.Args, nil
	}
	return "", nil, fmt.Errorf("unsupported statement kind %v", stmt.Kind)
}

func qualified(stmt *storagemodels.Statement) string {
	if stmt.Keyspace == "" {
		return stmt.Table
	}
	return stmt.Keyspace + "." + stmt.Table
}

func renderInsert(stmt *storagemodels.Statement) (string, []any, error) {
	if len(stmt.Columns) == 0 {
		return "", nil, errors.NewInvalidArgumentError("entity", "insert without columns")
	}
	names := make([]string, len(stmt.Columns))
	args := make([]any, len(stmt.Columns))
	for i, c := range stmt.Columns {
		names[i] = c.Name
		args[i] = c.Value
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s)",
		qualified(stmt), strings.Join(names, ", "), placeholders(len(names)))
	if stmt.TTL != nil {
		fmt.Fprintf(&b, " USING TTL %d", *stmt.TTL)
	}
	return b.String(), args, nil
}

func renderDelete(stmt *storagemodels.Statement) (string, []any, error) {
	var b strings.Builder
	b.WriteString("DELETE ")
	if len(stmt.Projection) > 0 {
		b.WriteString(strings.Join(stmt.Projection, ", "))
		b.WriteString(" ")
	}
	b.WriteString("FROM ")
	b.WriteString(qualified(stmt))

	where, args, err := renderWhere(stmt.Where)
	if err != nil {
		return "", nil, err
	}
	b.WriteString(where)
	return b.String(), args, nil
}

func renderSelect(stmt *storagemodels.Statement) (string, []any, error) {
	var b strings.Builder
	b.WriteString("SELECT ")
	if len(stmt.Projection) == 0 {
		b.WriteString("*")
	} else {
		b.WriteString(strings.Join(stmt.Projection, ", "))
	}
	b.WriteString(" FROM ")
	b.WriteString(qualified(stmt))

	where, args, err := renderWhere(stmt.Where)
	if err != nil {
		return "", nil, err
	}
	b.WriteString(where)

	if len(stmt.OrderBy) > 0 {
		orders := make([]string, len(stmt.OrderBy))
		for i, s := range stmt.OrderBy {
			dir := "ASC"
			if s.Descending {
				dir = "DESC"
			}
			orders[i] = s.Column + " " + dir
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(orders, ", "))
	}
	if stmt.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", stmt.Limit)
	}
	return b.String(), args, nil
}

func renderWhere(conditions []storagemodels.Condition) (string, []any, error) {
	if len(conditions) == 0 {
		return "", nil, nil
	}
	clauses := make([]string, 0, len(conditions))
	var args []any
	for _, c := range conditions {
		if c.Operator == storagemodels.OpIn {
			values, ok := c.Value.([]any)
			if !ok || len(values) == 0 {
				return "", nil, errors.NewInvalidArgumentError("query", "IN condition on "+c.Column+" needs values")
			}
			clauses = append(clauses, fmt.Sprintf("%s IN (%s)", c.Column, placeholders(len(values))))
			args = append(args, values...)
			continue
		}
		switch c.Operator {
		case storagemodels.OpEqual, storagemodels.OpGreater, storagemodels.OpGreaterOrEqual,
			storagemodels.OpLesser, storagemodels.OpLesserOrEqual:
		default:
			return "", nil, errors.NewInvalidArgumentError("query", fmt.Sprintf("unsupported operator %q", c.Operator))
		}
		clauses = append(clauses, fmt.Sprintf("%s %s ?", c.Column, c.Operator))
		args = append(args, c.Value)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
