package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-xray-sdk-go/xray"
)

// ErrBusinessNotFound は店舗レコードが存在しないことを表します
var ErrBusinessNotFound = errors.New("business not found")

// Business は店舗の表示用レコードです
type Business struct {
	BusinessID string `dynamodbav:"BusinessId"`
	Name       string `dynamodbav:"Name"`
	Address    string `dynamodbav:"Address"`
	Rating     string `dynamodbav:"Rating"`
}

// BusinessRepository は店舗IDから表示用レコードを解決するインターフェースです
type BusinessRepository interface {
	GetByID(ctx context.Context, businessID string) (*Business, error)
}

// DynamoDBBusinessRepository はBusinessRepositoryのDynamoDB実装です
type DynamoDBBusinessRepository struct {
	client    *dynamodb.Client
	tableName string
}

// NewDynamoDBBusinessRepository は新しいDynamoDBBusinessRepositoryを作成します
func NewDynamoDBBusinessRepository(client *dynamodb.Client, tableName string) *DynamoDBBusinessRepository {
	return &DynamoDBBusinessRepository{
		client:    client,
		tableName: tableName,
	}
}

// GetByID は店舗レコードを取得します
// 存在しない場合はErrBusinessNotFoundを返します
func (r *DynamoDBBusinessRepository) GetByID(ctx context.Context, businessID string) (*Business, error) {
	ctx, seg := xray.BeginSubsegment(ctx, "BusinessRepository.GetByID")
	defer seg.Close(nil)

	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"BusinessId": &types.AttributeValueMemberS{Value: businessID},
		},
	})
	if err != nil {
		seg.Close(err)
		return nil, fmt.Errorf("failed to get business %s: %w", businessID, err)
	}
	if out.Item == nil {
		return nil, fmt.Errorf("%w: %s", ErrBusinessNotFound, businessID)
	}

	var business Business
	if err := attributevalue.UnmarshalMap(out.Item, &business); err != nil {
		seg.Close(err)
		return nil, fmt.Errorf("failed to unmarshal business %s: %w", businessID, err)
	}

	return &business, nil
}
