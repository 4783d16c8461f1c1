package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/PranavNaik-adage/CarbonReady/internal/carbon"
)

// GrowthCurveStore reads regional Chapman-Richards calibration entries.
// The table is keyed (cropType, region); entries are reference data
// written by the calibration tooling, never by this engine.
type GrowthCurveStore struct {
	client *dynamodb.Client
	table  string
}

// NewGrowthCurveStore creates a growth curve store for the given table.
func NewGrowthCurveStore(client *dynamodb.Client, table string) *GrowthCurveStore {
	return &GrowthCurveStore{client: client, table: table}
}

// Stored entry shape, as written by the calibration scripts.
type growthCurveItem struct {
	CropType    string `dynamodbav:"cropType"`
	Region      string `dynamodbav:"region"`
	GrowthCurve struct {
		Model      string                       `dynamodbav:"model"`
		Parameters carbon.GrowthCurveParameters `dynamodbav:"parameters"`
	} `dynamodbav:"growthCurve"`
}

// Get returns the curve parameters for a (cropType, region) pair, or
// carbon.ErrGrowthCurveNotFound when no entry exists.
func (s *GrowthCurveStore) Get(ctx context.Context, cropType carbon.CropType, region string) (*carbon.GrowthCurveParameters, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"cropType": &types.AttributeValueMemberS{Value: string(cropType)},
			"region":   &types.AttributeValueMemberS{Value: region},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read growth curve entry: %w", err)
	}
	if out.Item == nil {
		return nil, carbon.ErrGrowthCurveNotFound
	}

	var item growthCurveItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal growth curve entry: %w", err)
	}
	return &item.GrowthCurve.Parameters, nil
}
