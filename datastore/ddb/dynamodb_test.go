/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cserrors "github.com/suparena/columnstore/errors"
	"github.com/suparena/columnstore/registry"
	"github.com/suparena/columnstore/storagemodels"
)

// fakeClient records every request and answers queries from scripted pages.
type fakeClient struct {
	mu             sync.Mutex
	puts           []*sdk.PutItemInput
	deletes        []*sdk.DeleteItemInput
	updates        []*sdk.UpdateItemInput
	queries        []*sdk.QueryInput
	statements     []*sdk.ExecuteStatementInput
	pages          []*sdk.QueryOutput
	statementPages []*sdk.ExecuteStatementOutput
	queryErrs      []error
	deleteErr      error
}

func (f *fakeClient) PutItem(ctx context.Context, in *sdk.PutItemInput, _ ...func(*sdk.Options)) (*sdk.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts = append(f.puts, in)
	return &sdk.PutItemOutput{}, nil
}

func (f *fakeClient) DeleteItem(ctx context.Context, in *sdk.DeleteItemInput, _ ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, in)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return &sdk.DeleteItemOutput{}, nil
}

func (f *fakeClient) UpdateItem(ctx context.Context, in *sdk.UpdateItemInput, _ ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, in)
	return &sdk.UpdateItemOutput{}, nil
}

func (f *fakeClient) Query(ctx context.Context, in *sdk.QueryInput, _ ...func(*sdk.Options)) (*sdk.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *in
	f.queries = append(f.queries, &copied)
	if len(f.queryErrs) > 0 {
		err := f.queryErrs[0]
		f.queryErrs = f.queryErrs[1:]
		return nil, err
	}
	if len(f.pages) == 0 {
		return &sdk.QueryOutput{}, nil
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func (f *fakeClient) ExecuteStatement(ctx context.Context, in *sdk.ExecuteStatementInput, _ ...func(*sdk.Options)) (*sdk.ExecuteStatementOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *in
	f.statements = append(f.statements, &copied)
	if len(f.statementPages) == 0 {
		return &sdk.ExecuteStatementOutput{}, nil
	}
	page := f.statementPages[0]
	f.statementPages = f.statementPages[1:]
	return page, nil
}

func registerTestMaps(t *testing.T) {
	registry.RegisterIndexMap("ddb_users", map[string]string{
		"PK":     "USER#{id}",
		"SK":     "USER#{id}",
		"GSI1PK": "EMAIL#{email}",
		"GSI1SK": "USER",
	})
	registry.RegisterIndexMap("ddb_orders", map[string]string{
		"PK": "USER#{user_id}",
		"SK": "ORDER#{order_id}",
	})
	t.Cleanup(func() {
		registry.UnregisterIndexMap("ddb_users")
		registry.UnregisterIndexMap("ddb_orders")
	})
}

func userItem(t *testing.T, id, name string) map[string]types.AttributeValue {
	item, err := attributevalue.MarshalMap(map[string]any{
		"id": id, "name": name, "PK": "USER#" + id, "SK": "USER#" + id,
		"EntityType": "ddb_users", "ttl": 1700000000,
	})
	require.NoError(t, err)
	return item
}

func TestSessionPut(t *testing.T) {
	registerTestMaps(t)
	client := &fakeClient{}
	now := time.Unix(1_000_000, 0)
	s := NewSession(client, "single-table", WithClock(func() time.Time { return now }))

	ttl := int32(90)
	_, err := s.Execute(context.Background(), &storagemodels.Statement{
		Kind:  storagemodels.KindInsert,
		Table: "ddb_users",
		Columns: []storagemodels.Column{
			{Name: "id", Value: "u1"},
			{Name: "email", Value: "ann@example.com"},
		},
		TTL: &ttl,
	})
	require.NoError(t, err)
	require.Len(t, client.puts, 1)

	put := client.puts[0]
	assert.Equal(t, "single-table", aws.ToString(put.TableName))
	assert.Equal(t, &types.AttributeValueMemberS{Value: "USER#u1"}, put.Item["PK"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "EMAIL#ann@example.com"}, put.Item["GSI1PK"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "ddb_users"}, put.Item["EntityType"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "1000090"}, put.Item["ttl"])
}

func TestSessionPutWithoutIndexMap(t *testing.T) {
	s := NewSession(&fakeClient{}, "single-table")
	_, err := s.Execute(context.Background(), &storagemodels.Statement{
		Kind:    storagemodels.KindInsert,
		Table:   "ddb_unregistered",
		Columns: []storagemodels.Column{{Name: "id", Value: "x"}},
	})
	assert.ErrorIs(t, err, cserrors.ErrNoIndexMap)
}

func TestSessionDelete(t *testing.T) {
	registerTestMaps(t)
	client := &fakeClient{}
	s := NewSession(client, "", WithPageSize(10))

	_, err := s.Execute(context.Background(), &storagemodels.Statement{
		Kind:     storagemodels.KindDelete,
		Keyspace: "app",
		Table:    "ddb_orders",
		Where: []storagemodels.Condition{
			storagemodels.Eq("user_id", "u1"),
			storagemodels.Eq("order_id", 7),
		},
	})
	require.NoError(t, err)
	require.Len(t, client.deletes, 1)
	assert.Equal(t, "app", aws.ToString(client.deletes[0].TableName))
	assert.Equal(t, &types.AttributeValueMemberS{Value: "ORDER#7"}, client.deletes[0].Key["SK"])

	// Projection removes attributes instead of the item
	_, err = s.Execute(context.Background(), &storagemodels.Statement{
		Kind:       storagemodels.KindDelete,
		Keyspace:   "app",
		Table:      "ddb_orders",
		Projection: []string{"note"},
		Where: []storagemodels.Condition{
			storagemodels.Eq("user_id", "u1"),
			storagemodels.Eq("order_id", 7),
		},
	})
	require.NoError(t, err)
	require.Len(t, client.updates, 1)
	assert.Equal(t, "REMOVE #r0", aws.ToString(client.updates[0].UpdateExpression))
	assert.Equal(t, "#et = :et", aws.ToString(client.updates[0].ConditionExpression), "only existing items of the family")

	// A partial key cannot address an item
	_, err = s.Execute(context.Background(), &storagemodels.Statement{
		Kind:     storagemodels.KindDelete,
		Keyspace: "app",
		Table:    "ddb_orders",
		Where:    []storagemodels.Condition{storagemodels.Eq("user_id", "u1")},
	})
	assert.Error(t, err)
}

func TestSessionDeleteConditions(t *testing.T) {
	registerTestMaps(t)
	client := &fakeClient{}
	s := NewSession(client, "single-table")

	_, err := s.Execute(context.Background(), &storagemodels.Statement{
		Kind:  storagemodels.KindDelete,
		Table: "ddb_users",
		Where: []storagemodels.Condition{
			storagemodels.Eq("id", "u1"),
			storagemodels.Eq("name", "SomeoneElse"),
			{Column: "age", Operator: storagemodels.OpGreater, Value: 99},
		},
	})
	require.NoError(t, err)
	require.Len(t, client.deletes, 1)

	del := client.deletes[0]
	assert.Equal(t, "#et = :et AND #f1 = :f1 AND #f2 > :f2", aws.ToString(del.ConditionExpression))
	assert.Equal(t, "name", del.ExpressionAttributeNames["#f1"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "SomeoneElse"}, del.ExpressionAttributeValues[":f1"])
	assert.Equal(t, &types.AttributeValueMemberN{Value: "99"}, del.ExpressionAttributeValues[":f2"])
	assert.Equal(t, &types.AttributeValueMemberS{Value: "ddb_users"}, del.ExpressionAttributeValues[":et"])

	// Conditions on projected deletes guard the attribute removal
	_, err = s.Execute(context.Background(), &storagemodels.Statement{
		Kind:       storagemodels.KindDelete,
		Table:      "ddb_users",
		Projection: []string{"email"},
		Where: []storagemodels.Condition{
			storagemodels.Eq("id", "u1"),
			{Column: "role", Operator: storagemodels.OpIn, Value: []any{"admin", "owner"}},
		},
	})
	require.NoError(t, err)
	require.Len(t, client.updates, 1)
	assert.Equal(t, "#et = :et AND #f1 IN (:f1_0, :f1_1)", aws.ToString(client.updates[0].ConditionExpression))
	assert.Equal(t, "email", client.updates[0].ExpressionAttributeNames["#r0"])
}

func TestSessionDeleteNoMatch(t *testing.T) {
	registerTestMaps(t)
	client := &fakeClient{deleteErr: &types.ConditionalCheckFailedException{Message: aws.String("condition failed")}}
	s := NewSession(client, "single-table")

	_, err := s.Execute(context.Background(), &storagemodels.Statement{
		Kind:  storagemodels.KindDelete,
		Table: "ddb_users",
		Where: []storagemodels.Condition{
			storagemodels.Eq("id", "u1"),
			storagemodels.Eq("name", "SomeoneElse"),
		},
	})
	assert.NoError(t, err, "a delete matching no item removes nothing")

	client.deleteErr = errors.New("throttled")
	_, err = s.Execute(context.Background(), &storagemodels.Statement{
		Kind:  storagemodels.KindDelete,
		Table: "ddb_users",
		Where: []storagemodels.Condition{storagemodels.Eq("id", "u1")},
	})
	assert.Error(t, err)
}

func TestSessionSpacedMacros(t *testing.T) {
	registry.RegisterIndexMap("ddb_spaced", map[string]string{"PK": "ITEM#{ id }", "SK": "ITEM"})
	t.Cleanup(func() { registry.UnregisterIndexMap("ddb_spaced") })
	client := &fakeClient{}
	s := NewSession(client, "single-table")

	_, err := s.Execute(context.Background(), &storagemodels.Statement{
		Kind:    storagemodels.KindInsert,
		Table:   "ddb_spaced",
		Columns: []storagemodels.Column{{Name: "id", Value: "i9"}},
	})
	require.NoError(t, err)
	require.Len(t, client.puts, 1)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "ITEM#i9"}, client.puts[0].Item["PK"])
}

func TestSessionQuery(t *testing.T) {
	registerTestMaps(t)
	client := &fakeClient{
		pages: []*sdk.QueryOutput{
			{
				Items:            []map[string]types.AttributeValue{userItem(t, "u1", "Ann")},
				LastEvaluatedKey: map[string]types.AttributeValue{"PK": &types.AttributeValueMemberS{Value: "USER#u1"}},
			},
			{Items: []map[string]types.AttributeValue{userItem(t, "u1", "Ann again")}},
		},
	}
	s := NewSession(client, "single-table")

	rs, err := s.Execute(context.Background(), &storagemodels.Statement{
		Kind:        storagemodels.KindSelect,
		Table:       "ddb_users",
		Where:       []storagemodels.Condition{storagemodels.Eq("id", "u1")},
		Consistency: storagemodels.Quorum,
	})
	require.NoError(t, err)
	require.Equal(t, 2, rs.Len())

	assert.Equal(t, storagemodels.Row{
		Table:   "ddb_users",
		Columns: []storagemodels.Column{{Name: "id", Value: "u1"}, {Name: "name", Value: "Ann"}},
	}, rs.Rows[0])

	require.Len(t, client.queries, 2)
	first := client.queries[0]
	assert.Nil(t, first.IndexName)
	assert.Equal(t, "#pk = :pk AND #sk = :sk", aws.ToString(first.KeyConditionExpression))
	assert.Equal(t, "#et = :et", aws.ToString(first.FilterExpression))
	assert.True(t, aws.ToBool(first.ConsistentRead))
	assert.NotNil(t, client.queries[1].ExclusiveStartKey)
}

func TestSessionQueryUsesGSI(t *testing.T) {
	registerTestMaps(t)
	client := &fakeClient{}
	s := NewSession(client, "single-table")

	rs, err := s.Execute(context.Background(), &storagemodels.Statement{
		Kind:  storagemodels.KindSelect,
		Table: "ddb_users",
		Where: []storagemodels.Condition{
			storagemodels.Eq("email", "ann@example.com"),
			{Column: "age", Operator: storagemodels.OpGreater, Value: 30},
		},
		Consistency: storagemodels.All,
	})
	require.NoError(t, err)
	assert.Zero(t, rs.Len())

	require.Len(t, client.queries, 1)
	q := client.queries[0]
	assert.Equal(t, "GSI1", aws.ToString(q.IndexName))
	assert.Equal(t, "GSI1PK", q.ExpressionAttributeNames["#pk"])
	assert.Equal(t, "#et = :et AND #f1 > :f1", aws.ToString(q.FilterExpression))
	assert.Nil(t, q.ConsistentRead, "GSIs cannot be read consistently")
}

func TestSessionQueryNeedsPartitionKey(t *testing.T) {
	registerTestMaps(t)
	s := NewSession(&fakeClient{}, "single-table")

	_, err := s.Execute(context.Background(), &storagemodels.Statement{
		Kind:  storagemodels.KindSelect,
		Table: "ddb_users",
		Where: []storagemodels.Condition{storagemodels.Eq("name", "Ann")},
	})
	assert.True(t, cserrors.IsInvalidArgument(err))
}

func TestSessionQueryRetriesThrottling(t *testing.T) {
	registerTestMaps(t)
	client := &fakeClient{
		queryErrs: []error{&types.ProvisionedThroughputExceededException{Message: aws.String("slow down")}},
		pages:     []*sdk.QueryOutput{{Items: []map[string]types.AttributeValue{userItem(t, "u1", "Ann")}}},
	}
	s := NewSession(client, "single-table", WithRetryBackoff(time.Millisecond))

	rs, err := s.Execute(context.Background(), &storagemodels.Statement{
		Kind:  storagemodels.KindSelect,
		Table: "ddb_users",
		Where: []storagemodels.Condition{storagemodels.Eq("id", "u1")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())
	assert.Len(t, client.queries, 2)

	assert.False(t, isRetryableError(errors.New("validation")))
}

func TestSessionExecuteStatement(t *testing.T) {
	registerTestMaps(t)
	client := &fakeClient{
		statementPages: []*sdk.ExecuteStatementOutput{
			{Items: []map[string]types.AttributeValue{userItem(t, "u1", "Ann")}, NextToken: aws.String("next")},
			{Items: []map[string]types.AttributeValue{userItem(t, "u2", "Bob")}},
		},
	}
	s := NewSession(client, "single-table")

	rs, err := s.Execute(context.Background(), &storagemodels.Statement{
		Kind: storagemodels.KindRaw,
		Raw:  `SELECT * FROM "single-table" WHERE PK = ?`,
		Args: []any{"USER#u1"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, rs.Len())
	assert.Equal(t, "ddb_users", rs.Rows[1].Table)
	assert.Equal(t, "Bob", rs.Rows[1].Columns[1].Value)

	require.Len(t, client.statements, 2)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "USER#u1"}, client.statements[0].Parameters[0])
	assert.Equal(t, "next", aws.ToString(client.statements[1].NextToken))
}

func TestSessionAsyncAndClose(t *testing.T) {
	registerTestMaps(t)
	s := NewSession(&fakeClient{}, "single-table")

	pending := s.ExecuteAsync(context.Background(), &storagemodels.Statement{
		Kind:    storagemodels.KindInsert,
		Table:   "ddb_users",
		Columns: []storagemodels.Column{{Name: "id", Value: "u1"}},
	})
	_, err := pending.Get()
	require.NoError(t, err)

	p, err := s.Prepare(context.Background(), `SELECT * FROM "single-table"`)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Close(), cserrors.ErrClosed)

	_, err = s.Execute(context.Background(), &storagemodels.Statement{Kind: storagemodels.KindRaw, Raw: "SELECT 1"})
	assert.ErrorIs(t, err, cserrors.ErrClosed)
}
