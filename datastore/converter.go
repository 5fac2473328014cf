/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import "github.com/suparena/columnstore/storagemodels"

// DefaultConverter maps a row to an entity of the row's table, keeping column order.
type DefaultConverter struct{}

func (DefaultConverter) RowToEntity(row storagemodels.Row) (storagemodels.Entity, error) {
	columns := make([]storagemodels.Column, len(row.Columns))
	copy(columns, row.Columns)
	return storagemodels.Entity{Name: row.Table, Columns: columns}, nil
}

// ConvertAll converts every row of rs in order. A nil or empty result yields an empty slice.
func ConvertAll(converter ResultConverter, rs *storagemodels.ResultSet) ([]storagemodels.Entity, error) {
	entities := make([]storagemodels.Entity, 0, rs.Len())
	if rs == nil {
		return entities, nil
	}
	for _, row := range rs.Rows {
		entity, err := converter.RowToEntity(row)
		if err != nil {
			return nil, err
		}
		entities = append(entities, entity)
	}
	return entities, nil
}
