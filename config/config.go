/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/suparena/columnstore/errors"
	"github.com/suparena/columnstore/storagemodels"
	"gopkg.in/yaml.v3"
)

const (
	BackendCQL      = "cql"
	BackendDynamoDB = "dynamodb"
)

// Config holds everything needed to open managers.
type Config struct {
	Backend   string   `yaml:"backend"`
	Keyspaces []string `yaml:"keyspaces"`
	// Workers is the size of the callback worker pool.
	Workers int `yaml:"workers"`
	// Consistency is the session default; statements may override it.
	Consistency storagemodels.ConsistencyLevel `yaml:"consistency"`
	Timeout     time.Duration                  `yaml:"timeout"`

	Cassandra CassandraConfig `yaml:"cassandra"`
	DynamoDB  DynamoDBConfig  `yaml:"dynamodb"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CassandraConfig contains cluster connection settings
type CassandraConfig struct {
	Hosts        []string `yaml:"hosts"`
	Port         int      `yaml:"port"`
	Username     string   `yaml:"username"`
	Password     string   `yaml:"password"`
	ProtoVersion int      `yaml:"protoVersion"`
}

// DynamoDBConfig contains AWS settings
type DynamoDBConfig struct {
	Region    string `yaml:"region"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	// Table is the physical table; when empty the keyspace is used.
	Table        string        `yaml:"table"`
	PageSize     int32         `yaml:"pageSize"`
	MaxRetries   int           `yaml:"maxRetries"`
	RetryBackoff time.Duration `yaml:"retryBackoff"`
	TTLAttribute string        `yaml:"ttlAttribute"`
}

// LoggingConfig contains logger settings
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Default returns a configuration for a local Cassandra node.
func Default() *Config {
	return &Config{
		Backend:     BackendCQL,
		Workers:     4,
		Consistency: storagemodels.One,
		Timeout:     5 * time.Second,
		Cassandra: CassandraConfig{
			Hosts: []string{"127.0.0.1"},
			Port:  9042,
		},
		DynamoDB: DynamoDBConfig{
			PageSize:     100,
			MaxRetries:   3,
			RetryBackoff: time.Second,
			TTLAttribute: "ttl",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads the YAML file at path (optional), then .env and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("CFSTORE_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := getenv("CFSTORE_KEYSPACES"); v != "" {
		c.Keyspaces = splitList(v)
	}
	if v := getenv("CFSTORE_HOSTS"); v != "" {
		c.Cassandra.Hosts = splitList(v)
	}
	if v := getenv("CFSTORE_CONSISTENCY"); v != "" {
		level, err := storagemodels.ParseConsistencyLevel(v)
		if err != nil {
			return errors.NewInvalidArgumentError("CFSTORE_CONSISTENCY", err.Error())
		}
		c.Consistency = level
	}
	if v := getenv("CFSTORE_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.NewInvalidArgumentError("CFSTORE_WORKERS", err.Error())
		}
		c.Workers = n
	}
	if v := getenv("AWS_ACCESS_KEY"); v != "" {
		c.DynamoDB.AccessKey = v
	}
	if v := getenv("AWS_SECRET_KEY"); v != "" {
		c.DynamoDB.SecretKey = v
	}
	if v := getenv("AWS_REGION"); v != "" {
		c.DynamoDB.Region = v
	}
	if v := getenv("AWS_DDB_TABLE"); v != "" {
		c.DynamoDB.Table = v
	}
	return nil
}

// Validate checks the settings required by the selected backend.
func (c *Config) Validate() error {
	if len(c.Keyspaces) == 0 {
		return errors.NewInvalidArgumentError("keyspaces", "at least one keyspace is required")
	}
	for _, ks := range c.Keyspaces {
		if ks == "" {
			return errors.NewInvalidArgumentError("keyspaces", "keyspace names must not be empty")
		}
	}
	if c.Workers < 1 {
		return errors.NewInvalidArgumentError("workers", "must be at least 1")
	}
	if c.Timeout < 0 {
		return errors.NewInvalidArgumentError("timeout", "must not be negative")
	}

	switch c.Backend {
	case BackendCQL:
		if len(c.Cassandra.Hosts) == 0 {
			return errors.NewInvalidArgumentError("cassandra.hosts", "at least one host is required")
		}
	case BackendDynamoDB:
		if c.DynamoDB.Region == "" {
			return errors.NewInvalidArgumentError("dynamodb.region", "region is required")
		}
		if c.DynamoDB.PageSize < 1 {
			return errors.NewInvalidArgumentError("dynamodb.pageSize", "must be at least 1")
		}
		if c.DynamoDB.MaxRetries < 0 {
			return errors.NewInvalidArgumentError("dynamodb.maxRetries", "must not be negative")
		}
		if c.DynamoDB.RetryBackoff < 0 {
			return errors.NewInvalidArgumentError("dynamodb.retryBackoff", "must not be negative")
		}
	default:
		return errors.NewInvalidArgumentError("backend", fmt.Sprintf("unsupported backend %q", c.Backend))
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
