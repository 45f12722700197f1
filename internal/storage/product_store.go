package storage

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"membersCardAPI/internal/types/product"
)

// ProductStore reads the pre-seeded, read-only product catalog.
type ProductStore struct {
	client    DynamoAPI
	tableName string
}

func NewProductStore(client DynamoAPI, tableName string) *ProductStore {
	return &ProductStore{client: client, tableName: tableName}
}

// Get fetches one product. Ids are expected to densely cover 1..Count, so a
// missing id is an error, not an empty result.
func (s *ProductStore) Get(ctx context.Context, productID int64) (*product.Record, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"productId": &types.AttributeValueMemberN{Value: strconv.FormatInt(productID, 10)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get product %d: %w", productID, err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("product %d not found (seed data must cover ids 1..count without gaps)", productID)
	}

	var rec product.Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("get product %d: %w", productID, err)
	}
	return &rec, nil
}

// Count returns the number of catalog entries, used to bound the random
// product draw.
func (s *ProductStore) Count(ctx context.Context) (int64, error) {
	var total int64
	var startKey map[string]types.AttributeValue

	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.tableName),
			Select:            types.SelectCount,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return 0, fmt.Errorf("count products: %w", err)
		}
		total += int64(out.Count)
		if out.LastEvaluatedKey == nil {
			return total, nil
		}
		startKey = out.LastEvaluatedKey
	}
}
