/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// IndexMapRegistry associates column families with their DynamoDB index maps.

var (
	indexMapRegistry = make(map[string]map[string]string)
	mu               sync.RWMutex
)

var macroPattern = regexp.MustCompile(`{([^}]+)}`)

// RegisterIndexMap associates a column family with a DynamoDB index map (PK, SK, etc.).
// Registering a table again replaces its map.
func RegisterIndexMap(table string, idxMap map[string]string) {
	copied := make(map[string]string, len(idxMap))
	for k, v := range idxMap {
		copied[k] = v
	}

	mu.Lock()
	defer mu.Unlock()
	indexMapRegistry[table] = copied
}

// GetIndexMap retrieves the index map of a column family, if any.
func GetIndexMap(table string) (map[string]string, bool) {
	mu.RLock()
	defer mu.RUnlock()
	m, ok := indexMapRegistry[table]
	return m, ok
}

// UnregisterIndexMap removes the index map of a column family.
func UnregisterIndexMap(table string) {
	mu.Lock()
	defer mu.Unlock()
	delete(indexMapRegistry, table)
}

// Tables lists every registered column family, sorted.
func Tables() []string {
	mu.RLock()
	defer mu.RUnlock()
	tables := make([]string, 0, len(indexMapRegistry))
	for t := range indexMapRegistry {
		tables = append(tables, t)
	}
	sort.Strings(tables)
	return tables
}

// MacroFields returns the column names referenced by a key template, e.g. "USER#{id}" → [id].
func MacroFields(template string) []string {
	matches := macroPattern.FindAllStringSubmatch(template, -1)
	fields := make([]string, 0, len(matches))
	for _, m := range matches {
		fields = append(fields, strings.TrimSpace(m[1]))
	}
	return fields
}

// ExpandTemplate replaces every macro of template with value(field), using the
// same field names as MacroFields.
func ExpandTemplate(template string, value func(field string) string) string {
	return macroPattern.ReplaceAllStringFunc(template, func(macro string) string {
		return value(strings.TrimSpace(macro[1 : len(macro)-1]))
	})
}
