/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suparena/columnstore/errors"
	"github.com/suparena/columnstore/storagemodels"
)

func TestLoadYAML(t *testing.T) {
	t.Setenv("CFSTORE_BACKEND", "")
	t.Setenv("CFSTORE_KEYSPACES", "")
	t.Setenv("CFSTORE_CONSISTENCY", "")

	path := filepath.Join(t.TempDir(), "cfstore.yaml")
	content := `
backend: dynamodb
keyspaces: [app, audit]
workers: 8
consistency: local_quorum
timeout: 2s
dynamodb:
  region: eu-west-1
  table: single-table
  pageSize: 25
  retryBackoff: 250ms
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, BackendDynamoDB, cfg.Backend)
	assert.Equal(t, []string{"app", "audit"}, cfg.Keyspaces)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, storagemodels.LocalQuorum, cfg.Consistency)
	assert.Equal(t, 2*time.Second, cfg.Timeout)
	assert.Equal(t, "single-table", cfg.DynamoDB.Table)
	assert.Equal(t, int32(25), cfg.DynamoDB.PageSize)
	assert.Equal(t, 250*time.Millisecond, cfg.DynamoDB.RetryBackoff)
	// Defaults survive partial files
	assert.Equal(t, 3, cfg.DynamoDB.MaxRetries)
	assert.Equal(t, "ttl", cfg.DynamoDB.TTLAttribute)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"CFSTORE_KEYSPACES":   "app, audit ,",
		"CFSTORE_HOSTS":       "10.0.0.1,10.0.0.2",
		"CFSTORE_CONSISTENCY": "quorum",
		"CFSTORE_WORKERS":     "2",
		"AWS_REGION":          "us-east-1",
	}
	cfg := Default()
	require.NoError(t, cfg.applyEnv(func(k string) string { return env[k] }))

	assert.Equal(t, []string{"app", "audit"}, cfg.Keyspaces)
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.Cassandra.Hosts)
	assert.Equal(t, storagemodels.Quorum, cfg.Consistency)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "us-east-1", cfg.DynamoDB.Region)
	assert.NoError(t, cfg.Validate())

	err := cfg.applyEnv(func(k string) string {
		if k == "CFSTORE_CONSISTENCY" {
			return "most"
		}
		return ""
	})
	assert.True(t, errors.IsInvalidArgument(err))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no keyspaces", func(c *Config) { c.Keyspaces = nil }},
		{"empty keyspace", func(c *Config) { c.Keyspaces = []string{""} }},
		{"no workers", func(c *Config) { c.Workers = 0 }},
		{"unknown backend", func(c *Config) { c.Backend = "hbase" }},
		{"no hosts", func(c *Config) { c.Cassandra.Hosts = nil }},
		{"dynamodb without region", func(c *Config) { c.Backend = BackendDynamoDB }},
		{"negative dynamodb retries", func(c *Config) {
			c.Backend = BackendDynamoDB
			c.DynamoDB.Region = "eu-west-1"
			c.DynamoDB.MaxRetries = -1
		}},
		{"negative dynamodb backoff", func(c *Config) {
			c.Backend = BackendDynamoDB
			c.DynamoDB.Region = "eu-west-1"
			c.DynamoDB.RetryBackoff = -time.Second
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Keyspaces = []string{"app"}
			tt.mutate(cfg)
			assert.True(t, errors.IsInvalidArgument(cfg.Validate()))
		})
	}
}
