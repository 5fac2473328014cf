/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	cserrors "github.com/suparena/columnstore/errors"
	"github.com/suparena/columnstore/registry"
	"github.com/suparena/columnstore/storagemodels"
)

// keyTarget is the table key or GSI a select can be answered from.
type keyTarget struct {
	indexName *string
	pkName    string
	skName    string
	pkValue   string
	skValue   string
	useSK     bool
	// columns consumed by the key condition
	columns map[string]bool
}

// resolveKey picks the primary key first, then each GSI, whose partition template
// is fully covered by equality conditions.
func resolveKey(indexMap map[string]string, values map[string]any) (keyTarget, error) {
	expanded, err := expandMacros(indexMap, values)
	if err != nil {
		return keyTarget{}, err
	}

	candidates := []keyTarget{{pkName: "PK", skName: "SK"}}
	for _, gsi := range gsiConfigs() {
		name := gsi.IndexName
		candidates = append(candidates, keyTarget{indexName: &name, pkName: gsi.PartitionKeyName, skName: gsi.SortKeyName})
	}

	for _, target := range candidates {
		pkTemplate, ok := indexMap[target.pkName]
		if !ok || !covers(pkTemplate, values) || len(registry.MacroFields(pkTemplate)) == 0 {
			continue
		}
		target.pkValue = expanded[target.pkName]
		target.columns = make(map[string]bool)
		for _, f := range registry.MacroFields(pkTemplate) {
			target.columns[f] = true
		}
		if skTemplate, ok := indexMap[target.skName]; ok && covers(skTemplate, values) {
			target.useSK = true
			target.skValue = expanded[target.skName]
			for _, f := range registry.MacroFields(skTemplate) {
				target.columns[f] = true
			}
		}
		return target, nil
	}
	return keyTarget{}, cserrors.NewInvalidArgumentError("query", "conditions must fix the partition key of the table or of a GSI")
}

// query answers a select with paged Query calls.
func (s *Session) query(ctx context.Context, stmt *storagemodels.Statement) (*storagemodels.ResultSet, error) {
	tableName, err := s.table(stmt)
	if err != nil {
		return nil, err
	}
	indexMap, err := indexMapFor(stmt.Table)
	if err != nil {
		return nil, err
	}

	target, err := resolveKey(indexMap, equalities(stmt.Where))
	if err != nil {
		return nil, err
	}

	names := map[string]string{"#pk": target.pkName, "#et": entityTypeAttribute}
	values := map[string]types.AttributeValue{
		":pk": &types.AttributeValueMemberS{Value: target.pkValue},
		":et": &types.AttributeValueMemberS{Value: stmt.Table},
	}
	keyCond := "#pk = :pk"
	if target.useSK {
		keyCond += " AND #sk = :sk"
		names["#sk"] = target.skName
		values[":sk"] = &types.AttributeValueMemberS{Value: target.skValue}
	}

	filter, err := buildFilter(stmt.Where, target.columns, names, values)
	if err != nil {
		return nil, err
	}

	input := &sdk.QueryInput{
		TableName:                 &tableName,
		IndexName:                 target.indexName,
		KeyConditionExpression:    &keyCond,
		FilterExpression:          &filter,
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		Limit:                     aws.Int32(s.options.PageSize),
	}
	// GSIs only support eventual consistency
	if target.indexName == nil && stmt.Consistency.Strong() {
		input.ConsistentRead = aws.Bool(true)
	}
	if len(stmt.OrderBy) > 0 && stmt.OrderBy[0].Descending {
		input.ScanIndexForward = aws.Bool(false)
	}

	rs := &storagemodels.ResultSet{}
	for {
		out, err := withRetry(ctx, s.options, func() (*sdk.QueryOutput, error) {
			return s.client.Query(ctx, input)
		})
		if err != nil {
			return nil, fmt.Errorf("query error: %w", err)
		}

		for _, item := range out.Items {
			row, err := s.toRow(stmt.Table, item, indexMap, stmt.Projection)
			if err != nil {
				return nil, err
			}
			rs.Rows = append(rs.Rows, row)
			if stmt.Limit > 0 && len(rs.Rows) == stmt.Limit {
				return rs, nil
			}
		}

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return rs, nil
}

// buildFilter renders every condition not consumed by the key, always
// restricting the items to the statement's column family. The result serves as
// a Query filter or as a write condition.
func buildFilter(conditions []storagemodels.Condition, keyColumns map[string]bool, names map[string]string, values map[string]types.AttributeValue) (string, error) {
	clauses := []string{"#et = :et"}
	for i, c := range conditions {
		if c.Operator == storagemodels.OpEqual && keyColumns[c.Column] {
			continue
		}
		name := fmt.Sprintf("#f%d", i)
		names[name] = c.Column

		if c.Operator == storagemodels.OpIn {
			list, ok := c.Value.([]any)
			if !ok || len(list) == 0 {
				return "", cserrors.NewInvalidArgumentError("query", "IN condition on "+c.Column+" needs values")
			}
			placeholders := make([]string, len(list))
			for j, v := range list {
				placeholder := fmt.Sprintf(":f%d_%d", i, j)
				av, err := attributevalue.Marshal(v)
				if err != nil {
					return "", fmt.Errorf("failed to marshal condition value: %w", err)
				}
				values[placeholder] = av
				placeholders[j] = placeholder
			}
			clauses = append(clauses, fmt.Sprintf("%s IN (%s)", name, strings.Join(placeholders, ", ")))
			continue
		}

		switch c.Operator {
		case storagemodels.OpEqual, storagemodels.OpGreater, storagemodels.OpGreaterOrEqual,
			storagemodels.OpLesser, storagemodels.OpLesserOrEqual:
		default:
			return "", cserrors.NewInvalidArgumentError("query", fmt.Sprintf("unsupported operator %q", c.Operator))
		}
		placeholder := fmt.Sprintf(":f%d", i)
		av, err := attributevalue.Marshal(c.Value)
		if err != nil {
			return "", fmt.Errorf("failed to marshal condition value: %w", err)
		}
		values[placeholder] = av
		clauses = append(clauses, fmt.Sprintf("%s %s %s", name, c.Operator, placeholder))
	}
	return strings.Join(clauses, " AND "), nil
}

// executeStatement runs a raw PartiQL statement, following NextToken.
func (s *Session) executeStatement(ctx context.Context, stmt *storagemodels.Statement) (*storagemodels.ResultSet, error) {
	if stmt.Raw == "" {
		return nil, cserrors.NewInvalidArgumentError("query", "query text is required")
	}
	var params []types.AttributeValue
	for _, arg := range stmt.Args {
		av, err := attributevalue.Marshal(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal parameter: %w", err)
		}
		params = append(params, av)
	}

	input := &sdk.ExecuteStatementInput{
		Statement:  aws.String(stmt.Raw),
		Parameters: params,
	}
	if stmt.Consistency.Strong() {
		input.ConsistentRead = aws.Bool(true)
	}

	rs := &storagemodels.ResultSet{}
	for {
		out, err := withRetry(ctx, s.options, func() (*sdk.ExecuteStatementOutput, error) {
			return s.client.ExecuteStatement(ctx, input)
		})
		if err != nil {
			return nil, fmt.Errorf("ExecuteStatement error: %w", err)
		}

		for _, item := range out.Items {
			table := ""
			if attr, ok := item[entityTypeAttribute].(*types.AttributeValueMemberS); ok {
				table = attr.Value
			}
			indexMap, _ := registry.GetIndexMap(table)
			row, err := s.toRow(table, item, indexMap, nil)
			if err != nil {
				return nil, err
			}
			rs.Rows = append(rs.Rows, row)
		}

		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}
	return rs, nil
}

// toRow drops key, EntityType and TTL attributes and unmarshals the rest.
// Without a projection, columns are sorted by name.
func (s *Session) toRow(table string, item map[string]types.AttributeValue, indexMap map[string]string, projection []string) (storagemodels.Row, error) {
	row := storagemodels.Row{Table: table}

	names := projection
	if len(names) == 0 {
		names = make([]string, 0, len(item))
		for name := range item {
			if _, isKey := indexMap[name]; isKey || name == entityTypeAttribute || name == s.options.TTLAttribute {
				continue
			}
			names = append(names, name)
		}
		sort.Strings(names)
	}

	for _, name := range names {
		attr, ok := item[name]
		if !ok {
			continue
		}
		var v any
		if err := attributevalue.Unmarshal(attr, &v); err != nil {
			return storagemodels.Row{}, fmt.Errorf("failed to unmarshal attribute %q: %w", name, err)
		}
		row.Columns = append(row.Columns, storagemodels.Column{Name: name, Value: v})
	}
	return row, nil
}
