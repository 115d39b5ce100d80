package services

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

// fakeDynamoClient scripts the DynamoDBAPI surface per test. Unset
// handlers return empty results.
type fakeDynamoClient struct {
	queryFn    func(*dynamodb.QueryInput) (*dynamodb.QueryOutput, error)
	scanFn     func(*dynamodb.ScanInput) (*dynamodb.ScanOutput, error)
	getFn      func(*dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error)
	putFn      func(*dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	updateFn   func(*dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error)
	deleteFn   func(*dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error)
	batchFn    func(*dynamodb.BatchGetItemInput) (*dynamodb.BatchGetItemOutput, error)
	transactFn func(*dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error)
}

func (f *fakeDynamoClient) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if f.queryFn != nil {
		return f.queryFn(params)
	}
	return &dynamodb.QueryOutput{}, nil
}

func (f *fakeDynamoClient) Scan(_ context.Context, params *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	if f.scanFn != nil {
		return f.scanFn(params)
	}
	return &dynamodb.ScanOutput{}, nil
}

func (f *fakeDynamoClient) GetItem(_ context.Context, params *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	if f.getFn != nil {
		return f.getFn(params)
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (f *fakeDynamoClient) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.putFn != nil {
		return f.putFn(params)
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoClient) UpdateItem(_ context.Context, params *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	if f.updateFn != nil {
		return f.updateFn(params)
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeDynamoClient) DeleteItem(_ context.Context, params *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	if f.deleteFn != nil {
		return f.deleteFn(params)
	}
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeDynamoClient) BatchGetItem(_ context.Context, params *dynamodb.BatchGetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.BatchGetItemOutput, error) {
	if f.batchFn != nil {
		return f.batchFn(params)
	}
	return &dynamodb.BatchGetItemOutput{}, nil
}

func (f *fakeDynamoClient) TransactWriteItems(_ context.Context, params *dynamodb.TransactWriteItemsInput, _ ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	if f.transactFn != nil {
		return f.transactFn(params)
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

func newDynamo(client *fakeDynamoClient) *DynamoService {
	return &DynamoService{Client: client}
}

func mustMarshal(t *testing.T, v interface{}) map[string]types.AttributeValue {
	t.Helper()
	item, err := attributevalue.MarshalMap(v)
	require.NoError(t, err)
	return item
}

func stringKey(key map[string]types.AttributeValue, name string) string {
	if av, ok := key[name].(*types.AttributeValueMemberS); ok {
		return av.Value
	}
	return ""
}
