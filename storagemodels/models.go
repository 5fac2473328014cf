/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

// Column is a single named value of an entity or a result row.
type Column struct {
	Name  string
	Value any
}

// Entity is one persisted record of a column family.
// Name is the column family (table) the entity belongs to; Columns keep their declared order.
type Entity struct {
	Name    string
	Columns []Column
}

// NewEntity creates an entity for the given column family.
func NewEntity(name string, columns ...Column) Entity {
	return Entity{Name: name, Columns: columns}
}

// Find returns the column with the given name.
func (e Entity) Find(name string) (Column, bool) {
	for _, c := range e.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Size returns the number of columns.
func (e Entity) Size() int {
	return len(e.Columns)
}

// ToMap returns the columns as a map keyed by column name.
func (e Entity) ToMap() map[string]any {
	m := make(map[string]any, len(e.Columns))
	for _, c := range e.Columns {
		m[c.Name] = c.Value
	}
	return m
}

// Operator is a comparison used in a query condition.
type Operator string

const (
	OpEqual          Operator = "="
	OpGreater        Operator = ">"
	OpGreaterOrEqual Operator = ">="
	OpLesser         Operator = "<"
	OpLesserOrEqual  Operator = "<="
	OpIn             Operator = "IN"
)

// Condition restricts a query to rows whose column compares to Value.
// For OpIn, Value must be a []any.
type Condition struct {
	Column   string
	Operator Operator
	Value    any
}

// Eq is shorthand for an equality condition.
func Eq(column string, value any) Condition {
	return Condition{Column: column, Operator: OpEqual, Value: value}
}

// Sort orders a select by a clustering column.
type Sort struct {
	Column     string
	Descending bool
}

// Query is a declarative read/delete specification.
type Query struct {
	// Table is the target column family.
	Table string
	// Columns is the projection for selects, or the columns to remove for deletes.
	// Empty means every column (or the whole row for deletes).
	Columns []string
	// Where holds the predicates, joined with AND.
	Where []Condition
	// OrderBy is optional.
	OrderBy []Sort
	// Limit caps the number of rows; zero means no limit.
	Limit int
}

// Row is one raw row returned by a session.
type Row struct {
	Table   string
	Columns []Column
}

// ResultSet holds every row of a completed execution, in store order.
type ResultSet struct {
	Rows []Row
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// Prepared is a compiled raw query handed out by a session.
type Prepared struct {
	ID    string
	Query string
}
