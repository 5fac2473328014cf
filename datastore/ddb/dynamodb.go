/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/suparena/columnstore/datastore"
	cserrors "github.com/suparena/columnstore/errors"
	"github.com/suparena/columnstore/registry"
	"github.com/suparena/columnstore/storagemodels"
	"go.uber.org/zap"
)

// entityTypeAttribute stores the column family of every item.
const entityTypeAttribute = "EntityType"

// API is the subset of the DynamoDB client used by Session.
type API interface {
	PutItem(ctx context.Context, params *sdk.PutItemInput, optFns ...func(*sdk.Options)) (*sdk.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *sdk.DeleteItemInput, optFns ...func(*sdk.Options)) (*sdk.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, params *sdk.UpdateItemInput, optFns ...func(*sdk.Options)) (*sdk.UpdateItemOutput, error)
	Query(ctx context.Context, params *sdk.QueryInput, optFns ...func(*sdk.Options)) (*sdk.QueryOutput, error)
	ExecuteStatement(ctx context.Context, params *sdk.ExecuteStatementInput, optFns ...func(*sdk.Options)) (*sdk.ExecuteStatementOutput, error)
}

// Options configures paging, retries and TTL handling
type Options struct {
	PageSize     int32         // Items per DynamoDB page (default: 100)
	MaxRetries   int           // Retry attempts for throttling errors (default: 3)
	RetryBackoff time.Duration // Backoff between retries (default: 1s)
	TTLAttribute string        // Numeric epoch-seconds attribute (default: "ttl")
	Now          func() time.Time
}

// Option is a functional option for configuring a Session
type Option func(*Options)

// DefaultOptions returns default session options
func DefaultOptions() Options {
	return Options{
		PageSize:     100,
		MaxRetries:   3,
		RetryBackoff: time.Second,
		TTLAttribute: "ttl",
		Now:          time.Now,
	}
}

// WithPageSize sets the DynamoDB page size
func WithPageSize(size int32) Option {
	return func(opts *Options) {
		opts.PageSize = size
	}
}

// WithMaxRetries sets the maximum retry attempts
func WithMaxRetries(retries int) Option {
	return func(opts *Options) {
		opts.MaxRetries = retries
	}
}

// WithRetryBackoff sets the retry backoff duration
func WithRetryBackoff(backoff time.Duration) Option {
	return func(opts *Options) {
		opts.RetryBackoff = backoff
	}
}

// WithTTLAttribute sets the attribute DynamoDB TTL is configured on
func WithTTLAttribute(name string) Option {
	return func(opts *Options) {
		opts.TTLAttribute = name
	}
}

// WithClock replaces time.Now when computing expiry times
func WithClock(now func() time.Time) Option {
	return func(opts *Options) {
		opts.Now = now
	}
}

// Session implements datastore.Session on a single DynamoDB table. Column families
// are told apart by the EntityType attribute; keys come from registry index maps.
type Session struct {
	client    API
	tableName string
	options   Options
	closed    atomic.Bool
}

// NewSession wraps client. When tableName is empty, statements use their keyspace as table.
func NewSession(client API, tableName string, opts ...Option) *Session {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Session{client: client, tableName: tableName, options: options}
}

// NewDynamoDBClient initializes a DynamoDB client using AWS credentials.
// Empty keys fall back to the default credential chain.
func NewDynamoDBClient(awsAccessKey, awsSecretKey, awsRegion string) (*sdk.Client, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(awsRegion)}
	if awsAccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(awsAccessKey, awsSecretKey, ""),
		))
	}
	cfg, err := config.LoadDefaultConfig(context.TODO(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := sdk.NewFromConfig(cfg)

	zap.S().Infow("DynamoDB client initialized", "region", awsRegion)
	return client, nil
}

// NewDynamoDBSession constructs a Session with a new client.
func NewDynamoDBSession(awsAccessKey, awsSecretKey, awsRegion, tableName string, opts ...Option) (*Session, error) {
	client, err := NewDynamoDBClient(awsAccessKey, awsSecretKey, awsRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to create DynamoDB client: %w", err)
	}
	return NewSession(client, tableName, opts...), nil
}

// expandMacros fills the templates of indexMap with values. Missing values expand to "".
func expandMacros(indexMap map[string]string, values map[string]any) (map[string]string, error) {
	av, err := attributevalue.MarshalMap(values)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal key values: %w", err)
	}

	res := make(map[string]string, len(indexMap))

	for fieldName, template := range indexMap {
		expanded := registry.ExpandTemplate(template, func(key string) string {
			val, ok := av[key]
			if !ok {
				return ""
			}

			switch tv := val.(type) {
			case *types.AttributeValueMemberS:
				return tv.Value
			case *types.AttributeValueMemberN:
				return tv.Value
			case *types.AttributeValueMemberBOOL:
				return strconv.FormatBool(tv.Value)
			default:
				// NULL, binary and set values cannot be part of a key
				return ""
			}
		})
		res[fieldName] = expanded
	}

	return res, nil
}

// covers reports whether every macro of template has a value.
func covers(template string, values map[string]any) bool {
	for _, field := range registry.MacroFields(template) {
		if _, ok := values[field]; !ok {
			return false
		}
	}
	return true
}

func (s *Session) table(stmt *storagemodels.Statement) (string, error) {
	if s.tableName != "" {
		return s.tableName, nil
	}
	if stmt.Keyspace == "" {
		return "", cserrors.NewInvalidArgumentError("keyspace", "no DynamoDB table configured and statement has no keyspace")
	}
	return stmt.Keyspace, nil
}

func indexMapFor(table string) (map[string]string, error) {
	indexMap, ok := registry.GetIndexMap(table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", cserrors.ErrNoIndexMap, table)
	}
	return indexMap, nil
}

// Execute runs the statement and blocks until DynamoDB responds.
func (s *Session) Execute(ctx context.Context, stmt *storagemodels.Statement) (*storagemodels.ResultSet, error) {
	if s.closed.Load() {
		return nil, fmt.Errorf("dynamodb session: %w", cserrors.ErrClosed)
	}
	switch stmt.Kind {
	case storagemodels.KindInsert:
		return &storagemodels.ResultSet{}, s.put(ctx, stmt)
	case storagemodels.KindDelete:
		return &storagemodels.ResultSet{}, s.delete(ctx, stmt)
	case storagemodels.KindSelect:
		return s.query(ctx, stmt)
	case storagemodels.KindRaw:
		return s.executeStatement(ctx, stmt)
	}
	return nil, fmt.Errorf("unsupported statement kind %v", stmt.Kind)
}

// ExecuteAsync runs the statement on its own goroutine.
func (s *Session) ExecuteAsync(ctx context.Context, stmt *storagemodels.Statement) datastore.PendingOperation {
	future := datastore.NewFuture()
	go func() {
		future.Complete(s.Execute(ctx, stmt))
	}()
	return future
}

// Prepare returns a handle for a PartiQL statement. DynamoDB has no client side
// preparation; parameters are bound on every execution.
func (s *Session) Prepare(ctx context.Context, query string) (*storagemodels.Prepared, error) {
	if query == "" {
		return nil, cserrors.NewInvalidArgumentError("query", "query text is required")
	}
	return &storagemodels.Prepared{ID: uuid.NewString(), Query: query}, nil
}

// Close marks the session closed; the client holds no connections to release.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return fmt.Errorf("dynamodb session: %w", cserrors.ErrClosed)
	}
	return nil
}

// put stores the entity with its expanded keys, EntityType and optional expiry.
func (s *Session) put(ctx context.Context, stmt *storagemodels.Statement) error {
	tableName, err := s.table(stmt)
	if err != nil {
		return err
	}
	indexMap, err := indexMapFor(stmt.Table)
	if err != nil {
		return err
	}

	values := make(map[string]any, len(stmt.Columns))
	for _, c := range stmt.Columns {
		values[c.Name] = c.Value
	}
	av, err := attributevalue.MarshalMap(values)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	expanded, err := expandMacros(indexMap, values)
	if err != nil {
		return err
	}
	for k, v := range expanded {
		av[k] = &types.AttributeValueMemberS{Value: v}
	}
	av[entityTypeAttribute] = &types.AttributeValueMemberS{Value: stmt.Table}

	if stmt.TTL != nil && *stmt.TTL > 0 {
		expiry := s.options.Now().Add(time.Duration(*stmt.TTL) * time.Second).Unix()
		av[s.options.TTLAttribute] = &types.AttributeValueMemberN{Value: strconv.FormatInt(expiry, 10)}
	}

	_, err = s.client.PutItem(ctx, &sdk.PutItemInput{
		TableName: &tableName,
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("PutItem failed: %w", err)
	}
	return nil
}

// delete removes the item addressed by the key equality conditions, or only the
// projected attributes when a projection is given. Every other condition, and the
// column family, must hold on the stored item; otherwise nothing is removed.
func (s *Session) delete(ctx context.Context, stmt *storagemodels.Statement) error {
	tableName, err := s.table(stmt)
	if err != nil {
		return err
	}
	indexMap, err := indexMapFor(stmt.Table)
	if err != nil {
		return err
	}

	expanded, err := expandMacros(indexMap, equalities(stmt.Where))
	if err != nil {
		return err
	}
	keyMap, err := buildKeyFromExpanded(indexMap, expanded, equalities(stmt.Where))
	if err != nil {
		return fmt.Errorf("failed to build key for Delete: %w", err)
	}

	keyColumns := make(map[string]bool)
	for _, f := range registry.MacroFields(indexMap["PK"]) {
		keyColumns[f] = true
	}
	for _, f := range registry.MacroFields(indexMap["SK"]) {
		keyColumns[f] = true
	}
	names := map[string]string{"#et": entityTypeAttribute}
	values := map[string]types.AttributeValue{
		":et": &types.AttributeValueMemberS{Value: stmt.Table},
	}
	condition, err := buildFilter(stmt.Where, keyColumns, names, values)
	if err != nil {
		return err
	}

	if len(stmt.Projection) > 0 {
		err = s.removeAttributes(ctx, tableName, keyMap, stmt.Projection, condition, names, values)
	} else {
		_, err = s.client.DeleteItem(ctx, &sdk.DeleteItemInput{
			TableName:                 &tableName,
			Key:                       keyMap,
			ConditionExpression:       &condition,
			ExpressionAttributeNames:  names,
			ExpressionAttributeValues: values,
		})
	}
	if err != nil {
		var cfe *types.ConditionalCheckFailedException
		if errors.As(err, &cfe) {
			// No stored item matches the conditions
			zap.S().Debugw("Delete matched no item", "table", stmt.Table, "condition", condition)
			return nil
		}
		return fmt.Errorf("failed to delete item in DynamoDB: %w", err)
	}
	return nil
}

func (s *Session) removeAttributes(
	ctx context.Context,
	tableName string,
	key map[string]types.AttributeValue,
	attributes []string,
	condition string,
	names map[string]string,
	values map[string]types.AttributeValue,
) error {
	placeholders := make([]string, len(attributes))
	for i, attr := range attributes {
		placeholder := fmt.Sprintf("#r%d", i)
		names[placeholder] = attr
		placeholders[i] = placeholder
	}
	expr := "REMOVE " + strings.Join(placeholders, ", ")

	_, err := s.client.UpdateItem(ctx, &sdk.UpdateItemInput{
		TableName:                 &tableName,
		Key:                       key,
		UpdateExpression:          &expr,
		ConditionExpression:       &condition,
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("UpdateItem failed: %w", err)
	}
	return nil
}

// buildKeyFromExpanded builds the primary key from PK and SK.
// It requires every macro of both templates to have a value.
func buildKeyFromExpanded(indexMap, expanded map[string]string, values map[string]any) (map[string]types.AttributeValue, error) {
	pkTemplate, okPK := indexMap["PK"]
	skTemplate, okSK := indexMap["SK"]
	if !okPK || !okSK {
		return nil, errors.New("index map must define PK and SK")
	}
	if !covers(pkTemplate, values) || !covers(skTemplate, values) {
		return nil, errors.New("conditions do not cover every PK and SK column")
	}

	pk, sk := expanded["PK"], expanded["SK"]
	if pk == "" || sk == "" {
		return nil, errors.New("expanded index map missing valid PK or SK")
	}

	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: pk},
		"SK": &types.AttributeValueMemberS{Value: sk},
	}, nil
}

// equalities collects the values of the equality conditions.
func equalities(conditions []storagemodels.Condition) map[string]any {
	values := make(map[string]any, len(conditions))
	for _, c := range conditions {
		if c.Operator == storagemodels.OpEqual {
			values[c.Column] = c.Value
		}
	}
	return values
}
