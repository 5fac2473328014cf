/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cql

import (
	"github.com/gocql/gocql"
	"github.com/suparena/columnstore/storagemodels"
)

var consistencies = map[storagemodels.ConsistencyLevel]gocql.Consistency{
	storagemodels.Any:         gocql.Any,
	storagemodels.One:         gocql.One,
	storagemodels.Two:         gocql.Two,
	storagemodels.Three:       gocql.Three,
	storagemodels.Quorum:      gocql.Quorum,
	storagemodels.All:         gocql.All,
	storagemodels.LocalQuorum: gocql.LocalQuorum,
	storagemodels.EachQuorum:  gocql.EachQuorum,
	storagemodels.LocalOne:    gocql.LocalOne,
}

// Consistency maps a level to gocql. Serial levels are not regular consistencies; see SerialConsistency.
func Consistency(level storagemodels.ConsistencyLevel) (gocql.Consistency, bool) {
	c, ok := consistencies[level]
	return c, ok
}

// SerialConsistency maps SERIAL and LOCAL_SERIAL.
func SerialConsistency(level storagemodels.ConsistencyLevel) (gocql.SerialConsistency, bool) {
	switch level {
	case storagemodels.Serial:
		return gocql.Serial, true
	case storagemodels.LocalSerial:
		return gocql.LocalSerial, true
	}
	return 0, false
}

func applyConsistency(q *gocql.Query, level storagemodels.ConsistencyLevel) {
	if c, ok := Consistency(level); ok {
		q.Consistency(c)
		return
	}
	if sc, ok := SerialConsistency(level); ok {
		q.SerialConsistency(sc)
	}
}
