package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/PranavNaik-adage/CarbonReady/internal/cri"
)

// weightConfigID is the single partition every weight version lives
// under; versions are the sort key.
const weightConfigID = "default"

// WeightStore persists versioned CRI weight configurations. The table is
// keyed (configId, version) and append-only.
type WeightStore struct {
	client *dynamodb.Client
	table  string
}

// NewWeightStore creates a weight store for the given table.
func NewWeightStore(client *dynamodb.Client, table string) *WeightStore {
	return &WeightStore{client: client, table: table}
}

// Stored item shape; weights are flattened to match the table layout the
// admin tooling seeds.
type weightItem struct {
	ConfigID            string    `dynamodbav:"configId"`
	Version             int       `dynamodbav:"version"`
	NetCarbonPosition   float64   `dynamodbav:"netCarbonPosition"`
	SOCTrend            float64   `dynamodbav:"socTrend"`
	ManagementPractices float64   `dynamodbav:"managementPractices"`
	UpdatedBy           string    `dynamodbav:"updatedBy"`
	UpdatedAt           time.Time `dynamodbav:"updatedAt"`
}

// GetLatest returns the newest stored weight version, or
// cri.ErrWeightsNotFound when none has been written.
func (s *WeightStore) GetLatest(ctx context.Context) (*cri.WeightRecord, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("configId = :configId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":configId": &types.AttributeValueMemberS{Value: weightConfigID},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query CRI weights: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, cri.ErrWeightsNotFound
	}

	var item weightItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal CRI weights: %w", err)
	}

	return &cri.WeightRecord{
		Version: item.Version,
		Weights: cri.Weights{
			NetCarbonPosition:   item.NetCarbonPosition,
			SOCTrend:            item.SOCTrend,
			ManagementPractices: item.ManagementPractices,
		},
		UpdatedBy: item.UpdatedBy,
		UpdatedAt: item.UpdatedAt,
	}, nil
}

// Put appends a new weight version.
func (s *WeightStore) Put(ctx context.Context, record *cri.WeightRecord) error {
	item, err := attributevalue.MarshalMap(weightItem{
		ConfigID:            weightConfigID,
		Version:             record.Version,
		NetCarbonPosition:   record.Weights.NetCarbonPosition,
		SOCTrend:            record.Weights.SOCTrend,
		ManagementPractices: record.Weights.ManagementPractices,
		UpdatedBy:           record.UpdatedBy,
		UpdatedAt:           record.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal CRI weights: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to store CRI weights: %w", err)
	}
	return nil
}
