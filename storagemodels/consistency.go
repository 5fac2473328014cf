/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package storagemodels

import (
	"fmt"
	"strings"
)

// ConsistencyLevel is a per-statement replica acknowledgement requirement.
// The zero value means no override: the session's configured default applies.
type ConsistencyLevel uint8

const (
	ConsistencyUnset ConsistencyLevel = iota
	Any
	One
	Two
	Three
	Quorum
	All
	LocalQuorum
	EachQuorum
	LocalOne
	Serial
	LocalSerial
)

var consistencyNames = map[ConsistencyLevel]string{
	Any:         "ANY",
	One:         "ONE",
	Two:         "TWO",
	Three:       "THREE",
	Quorum:      "QUORUM",
	All:         "ALL",
	LocalQuorum: "LOCAL_QUORUM",
	EachQuorum:  "EACH_QUORUM",
	LocalOne:    "LOCAL_ONE",
	Serial:      "SERIAL",
	LocalSerial: "LOCAL_SERIAL",
}

func (c ConsistencyLevel) String() string {
	if name, ok := consistencyNames[c]; ok {
		return name
	}
	if c == ConsistencyUnset {
		return "UNSET"
	}
	return fmt.Sprintf("ConsistencyLevel(%d)", uint8(c))
}

// Valid reports whether c names a real level. ConsistencyUnset is not valid.
func (c ConsistencyLevel) Valid() bool {
	_, ok := consistencyNames[c]
	return ok
}

// Strong reports whether the level requires more than a single replica.
func (c ConsistencyLevel) Strong() bool {
	switch c {
	case ConsistencyUnset, Any, One, LocalOne:
		return false
	}
	return c.Valid()
}

// ParseConsistencyLevel parses names such as "quorum" or "LOCAL_ONE".
func ParseConsistencyLevel(s string) (ConsistencyLevel, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for level, n := range consistencyNames {
		if n == name {
			return level, nil
		}
	}
	return ConsistencyUnset, fmt.Errorf("unknown consistency level %q", s)
}

// UnmarshalText lets a ConsistencyLevel be decoded from configuration files.
func (c *ConsistencyLevel) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*c = ConsistencyUnset
		return nil
	}
	level, err := ParseConsistencyLevel(string(text))
	if err != nil {
		return err
	}
	*c = level
	return nil
}
