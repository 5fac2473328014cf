/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import "fmt"

// StatementKind tells a session how to execute a Statement.
type StatementKind int

const (
	KindInsert StatementKind = iota + 1
	KindDelete
	KindSelect
	KindRaw
)

func (k StatementKind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindDelete:
		return "delete"
	case KindSelect:
		return "select"
	case KindRaw:
		return "raw"
	}
	return fmt.Sprintf("StatementKind(%d)", int(k))
}

// Statement is a backend-neutral store statement.
// Builders fill the shape fields; Consistency and TTL are decorations applied afterwards.
type Statement struct {
	Kind     StatementKind
	Keyspace string
	Table    string

	// Columns holds the values of an insert.
	Columns []Column
	// Projection names the selected columns, or the columns removed by a delete.
	Projection []string
	Where      []Condition
	OrderBy    []Sort
	Limit      int

	// Raw is the caller supplied query text of a KindRaw statement, bound with Args.
	Raw      string
	Args     []any
	Prepared *Prepared

	// Consistency is ConsistencyUnset unless overridden for this statement.
	Consistency ConsistencyLevel
	// TTL is in whole seconds; nil means no TTL.
	TTL *int32
}

// SetConsistency overrides the consistency level of the statement.
func (s *Statement) SetConsistency(level ConsistencyLevel) {
	s.Consistency = level
}

// SetTTL attaches a TTL in seconds to the statement.
func (s *Statement) SetTTL(seconds int32) {
	s.TTL = &seconds
}
