package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"membersCardAPI/internal/types/member"
	"membersCardAPI/utils"
)

const barcodeIndex = "barcodeNum-index"

// MemberStore reads and writes membership records. The table is keyed by
// userId with a barcodeNum-index GSI for the uniqueness lookup.
type MemberStore struct {
	client    DynamoAPI
	tableName string

	now func() time.Time
}

func NewMemberStore(client DynamoAPI, tableName string) *MemberStore {
	return &MemberStore{
		client:    client,
		tableName: tableName,
		now:       utils.NowJST,
	}
}

// Get fetches the membership record for userID. A missing record is
// (nil, nil), not an error.
func (s *MemberStore) Get(ctx context.Context, userID string) (*member.Record, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get member %s: %w", userID, err)
	}
	if len(out.Item) == 0 {
		return nil, nil
	}

	var rec member.Record
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("get member %s: %w", userID, err)
	}
	return &rec, nil
}

// Put inserts a new membership record. The insert is conditional on the
// userId not existing yet, so two concurrent creates for the same user
// cannot both succeed. CreatedTime and UpdatedTime are stamped here.
func (s *MemberStore) Put(ctx context.Context, rec *member.Record) error {
	now := utils.Timestamp(s.now())
	rec.CreatedTime = now
	rec.UpdatedTime = now

	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("put member %s: %w", rec.UserID, err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(userId)"),
	})
	if err != nil {
		return fmt.Errorf("put member %s: %w", rec.UserID, err)
	}
	return nil
}

// UpdatePointExpiration persists the new balance and expiration date. Only
// point, pointExpirationDate and updatedTime are touched; barcodeNum and
// createdTime stay as written at creation.
func (s *MemberStore) UpdatePointExpiration(ctx context.Context, userID string, point int64, expirationDate string) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"userId": &types.AttributeValueMemberS{Value: userID},
		},
		UpdateExpression: aws.String("SET point = :point, pointExpirationDate = :expiration_date, updatedTime = :updated_time"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":point":           &types.AttributeValueMemberN{Value: strconv.FormatInt(point, 10)},
			":expiration_date": &types.AttributeValueMemberS{Value: expirationDate},
			":updated_time":    &types.AttributeValueMemberS{Value: utils.Timestamp(s.now())},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return fmt.Errorf("update member %s: %w", userID, err)
	}
	return nil
}

// BarcodeExists checks the barcodeNum-index for an existing record with the
// candidate barcode.
func (s *MemberStore) BarcodeExists(ctx context.Context, barcodeNum int64) (bool, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String(barcodeIndex),
		KeyConditionExpression: aws.String("barcodeNum = :barcode_num"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":barcode_num": &types.AttributeValueMemberN{Value: strconv.FormatInt(barcodeNum, 10)},
		},
	})
	if err != nil {
		return false, fmt.Errorf("query barcode %d: %w", barcodeNum, err)
	}
	return out.Count > 0, nil
}
