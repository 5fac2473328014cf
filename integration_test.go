//go:build integration
// +build integration

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package columnstore_test

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/suparena/columnstore"
	"github.com/suparena/columnstore/datastore/cql"
	"github.com/suparena/columnstore/datastore/ddb"
	"github.com/suparena/columnstore/registry"
	"github.com/suparena/columnstore/storagemodels"
)

func init() {
	registry.RegisterIndexMap("integration_users", map[string]string{
		"PK":     "USER#{id}",
		"SK":     "USER#{id}",
		"GSI1PK": "EMAIL#{email}",
		"GSI1SK": "USER",
	})
	registry.RegisterIndexMap("integration_orders", map[string]string{
		"PK": "USER#{user_id}",
		"SK": "ORDER#{order_id}",
	})
}

func setupDynamoDBManager(t *testing.T) (*columnstore.Manager, func()) {
	accessKey := os.Getenv("AWS_ACCESS_KEY_ID")
	secretKey := os.Getenv("AWS_SECRET_ACCESS_KEY")
	region := os.Getenv("AWS_REGION")
	tableName := os.Getenv("DDB_TEST_TABLE_NAME")

	if tableName == "" {
		t.Skip("DDB_TEST_TABLE_NAME not set, skipping integration test")
	}

	session, err := ddb.NewDynamoDBSession(accessKey, secretKey, region, tableName)
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	pool := columnstore.NewWorkerPool(2)
	m, err := columnstore.New(session, pool, tableName)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	return m, func() {
		m.Close()
		pool.Shutdown()
	}
}

func setupCQLManager(t *testing.T) (*columnstore.Manager, func()) {
	hosts := os.Getenv("CQL_TEST_HOSTS")
	keyspace := os.Getenv("CQL_TEST_KEYSPACE")

	if hosts == "" || keyspace == "" {
		t.Skip("CQL_TEST_HOSTS or CQL_TEST_KEYSPACE not set, skipping integration test")
	}

	session, err := cql.NewSession(cql.Options{
		Hosts:       strings.Split(hosts, ","),
		Consistency: storagemodels.One,
		Timeout:     10 * time.Second,
	})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if _, err := session.Execute(context.Background(), &storagemodels.Statement{
		Kind: storagemodels.KindRaw,
		Raw:  "CREATE TABLE IF NOT EXISTS " + keyspace + ".integration_users (id text PRIMARY KEY, email text, name text)",
	}); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}

	pool := columnstore.NewWorkerPool(2)
	m, err := columnstore.New(session, pool, keyspace)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	return m, func() {
		m.Close()
		pool.Shutdown()
	}
}

func TestIntegrationDynamoDB(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	m, cleanup := setupDynamoDBManager(t)
	defer cleanup()

	runBasicOperations(t, m)
}

func TestIntegrationCQL(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	m, cleanup := setupCQLManager(t)
	defer cleanup()

	runBasicOperations(t, m)
}

func runBasicOperations(t *testing.T, m *columnstore.Manager) {
	ctx := context.Background()
	id := fmt.Sprintf("test-%d", time.Now().UnixNano())
	byID := storagemodels.Query{
		Table: "integration_users",
		Where: []storagemodels.Condition{storagemodels.Eq("id", id)},
	}

	user := storagemodels.NewEntity("integration_users",
		storagemodels.Column{Name: "id", Value: id},
		storagemodels.Column{Name: "email", Value: id + "@example.com"},
		storagemodels.Column{Name: "name", Value: "Test User"},
	)

	// Save with TTL
	if _, err := m.SaveWithTTL(ctx, user, time.Hour); err != nil {
		t.Fatalf("Failed to save user: %v", err)
	}

	// Find at a strong consistency level
	found, err := m.FindWithConsistency(ctx, byID, storagemodels.Quorum)
	if err != nil {
		t.Fatalf("Failed to find user: %v", err)
	}
	if len(found) != 1 {
		t.Fatalf("Expected 1 user, got %d", len(found))
	}
	if name, _ := found[0].Find("name"); name.Value != "Test User" {
		t.Errorf("Retrieved user doesn't match: got %+v", found[0])
	}

	// Async update with callback
	renamed := storagemodels.NewEntity("integration_users",
		storagemodels.Column{Name: "id", Value: id},
		storagemodels.Column{Name: "email", Value: id + "@example.com"},
		storagemodels.Column{Name: "name", Value: "Updated Name"},
	)
	done := make(chan error, 1)
	if err := m.UpdateAsyncCallback(ctx, renamed, func(_ storagemodels.Entity, err error) {
		done <- err
	}); err != nil {
		t.Fatalf("Failed to dispatch update: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
	case <-time.After(30 * time.Second):
		t.Fatal("Update callback not invoked")
	}

	// Delete
	if err := m.Delete(ctx, byID); err != nil {
		t.Fatalf("Failed to delete user: %v", err)
	}

	// Verify deletion
	found, err = m.FindWithConsistency(ctx, byID, storagemodels.Quorum)
	if err != nil {
		t.Fatalf("Failed to find user: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("Expected user to be deleted, got %+v", found)
	}
}
