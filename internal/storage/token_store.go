package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// TokenStore looks up channel access tokens by channel id. The tokens are
// maintained by a separate refresh process; this system only reads them.
type TokenStore struct {
	client    DynamoAPI
	tableName string
}

func NewTokenStore(client DynamoAPI, tableName string) *TokenStore {
	return &TokenStore{client: client, tableName: tableName}
}

type tokenItem struct {
	ChannelID          string `dynamodbav:"channelId"`
	ChannelAccessToken string `dynamodbav:"channelAccessToken"`
}

// GetAccessToken returns the stored access token for channelID.
func (s *TokenStore) GetAccessToken(ctx context.Context, channelID string) (string, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"channelId": &types.AttributeValueMemberS{Value: channelID},
		},
	})
	if err != nil {
		return "", fmt.Errorf("get access token for channel %s: %w", channelID, err)
	}
	if len(out.Item) == 0 {
		return "", fmt.Errorf("no access token stored for channel %s", channelID)
	}

	var item tokenItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return "", fmt.Errorf("get access token for channel %s: %w", channelID, err)
	}
	if item.ChannelAccessToken == "" {
		return "", fmt.Errorf("empty access token stored for channel %s", channelID)
	}
	return item.ChannelAccessToken, nil
}
