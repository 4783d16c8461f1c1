package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/PranavNaik-adage/CarbonReady/internal/engine"
)

// CalculationStore persists and serves calculation results. The table is
// keyed (farmId, calculatedAt); writes are append-only, so concurrent
// farm pipelines never conflict.
type CalculationStore struct {
	client *dynamodb.Client
	table  string
}

// NewCalculationStore creates a calculation store for the given table.
func NewCalculationStore(client *dynamodb.Client, table string) *CalculationStore {
	return &CalculationStore{client: client, table: table}
}

// Put appends one calculation result.
func (s *CalculationStore) Put(ctx context.Context, result *engine.CalculationResult) error {
	item, err := attributevalue.MarshalMap(result)
	if err != nil {
		return fmt.Errorf("failed to marshal calculation result: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to store calculation result: %w", err)
	}
	return nil
}

// GetLatestBiomass returns the farm biomass from the newest stored
// calculation, or nil when the farm has no history.
func (s *CalculationStore) GetLatestBiomass(ctx context.Context, farmID string) (*float64, error) {
	result, err := s.GetLatest(ctx, farmID)
	if errors.Is(err, engine.ErrNoCalculations) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &result.BiomassKg, nil
}

// GetLatest returns the newest calculation result for a farm.
func (s *CalculationStore) GetLatest(ctx context.Context, farmID string) (*engine.CalculationResult, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("farmId = :farmId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":farmId": &types.AttributeValueMemberS{Value: farmID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query calculation results: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, engine.ErrNoCalculations
	}

	var result engine.CalculationResult
	if err := attributevalue.UnmarshalMap(out.Items[0], &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal calculation result: %w", err)
	}
	return &result, nil
}

// ListSince returns the results for a farm calculated at or after the
// given instant, oldest first.
func (s *CalculationStore) ListSince(ctx context.Context, farmID string, since time.Time) ([]engine.CalculationResult, error) {
	sinceAttr, err := attributevalue.Marshal(since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal time bound: %w", err)
	}

	var results []engine.CalculationResult
	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.table),
			KeyConditionExpression: aws.String("farmId = :farmId AND calculatedAt >= :since"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":farmId": &types.AttributeValueMemberS{Value: farmID},
				":since":  sinceAttr,
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query calculation history: %w", err)
		}

		page := make([]engine.CalculationResult, 0, len(out.Items))
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal calculation history: %w", err)
		}
		results = append(results, page...)

		if out.LastEvaluatedKey == nil {
			return results, nil
		}
		startKey = out.LastEvaluatedKey
	}
}
