package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/PranavNaik-adage/CarbonReady/internal/carbon"
	"github.com/PranavNaik-adage/CarbonReady/internal/engine"
)

// FarmProfileStore reads and appends versioned farm metadata. The table
// is keyed (farmId, version); the latest version is the newest sort key.
type FarmProfileStore struct {
	client *dynamodb.Client
	table  string
}

// NewFarmProfileStore creates a profile store for the given table.
func NewFarmProfileStore(client *dynamodb.Client, table string) *FarmProfileStore {
	return &FarmProfileStore{client: client, table: table}
}

// GetLatest returns the newest metadata version for a farm.
func (s *FarmProfileStore) GetLatest(ctx context.Context, farmID string) (*carbon.FarmProfile, error) {
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
		return nil, fmt.Errorf("failed to query farm metadata: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, engine.ErrProfileNotFound
	}

	var profile carbon.FarmProfile
	if err := attributevalue.UnmarshalMap(out.Items[0], &profile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal farm metadata: %w", err)
	}
	return &profile, nil
}

// ListFarmIDs scans the metadata table and returns every distinct farm ID.
func (s *FarmProfileStore) ListFarmIDs(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var farmIDs []string

	var startKey map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:            aws.String(s.table),
			ProjectionExpression: aws.String("farmId"),
			ExclusiveStartKey:    startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan farm metadata: %w", err)
		}

		for _, item := range out.Items {
			var row struct {
				FarmID string `dynamodbav:"farmId"`
			}
			if err := attributevalue.UnmarshalMap(item, &row); err != nil {
				return nil, fmt.Errorf("failed to unmarshal farm metadata key: %w", err)
			}
			if _, ok := seen[row.FarmID]; ok {
				continue
			}
			seen[row.FarmID] = struct{}{}
			farmIDs = append(farmIDs, row.FarmID)
		}

		if out.LastEvaluatedKey == nil {
			return farmIDs, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// Put appends a new metadata version. The caller sets Version; existing
// versions are never overwritten.
func (s *FarmProfileStore) Put(ctx context.Context, profile *carbon.FarmProfile) error {
	item, err := attributevalue.MarshalMap(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal farm metadata: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to store farm metadata: %w", err)
	}
	return nil
}
