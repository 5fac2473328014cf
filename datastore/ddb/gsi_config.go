/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import "sort"

// GSIConfig holds the configuration for GSI key mappings
type GSIConfig struct {
	// IndexName is the actual GSI name in DynamoDB (e.g., "GSI1")
	IndexName string
	// PartitionKeyName is the index map entry and attribute holding the GSI partition key
	PartitionKeyName string
	// SortKeyName is the index map entry and attribute holding the GSI sort key
	SortKeyName string
}

// DefaultGSIConfigs holds the default GSI configurations
var DefaultGSIConfigs = map[string]GSIConfig{
	"GSI1": {
		IndexName:        "GSI1",
		PartitionKeyName: "GSI1PK",
		SortKeyName:      "GSI1SK",
	},
}

// GetGSIConfig returns the GSI configuration for a given index name
func GetGSIConfig(indexName string) (GSIConfig, bool) {
	config, ok := DefaultGSIConfigs[indexName]
	return config, ok
}

// gsiConfigs returns the configured indexes in name order.
func gsiConfigs() []GSIConfig {
	names := make([]string, 0, len(DefaultGSIConfigs))
	for name := range DefaultGSIConfigs {
		names = append(names, name)
	}
	sort.Strings(names)
	configs := make([]GSIConfig, len(names))
	for i, name := range names {
		configs[i] = DefaultGSIConfigs[name]
	}
	return configs
}
