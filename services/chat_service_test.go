package services

import (
	"context"
	"testing"

	"am4m_server/apperrors"
	"am4m_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServiceFor(t *testing.T, conn models.Connection, client *fakeDynamoClient) *ChatService {
	t.Helper()
	if client.queryFn == nil {
		client.queryFn = func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			if in.IndexName != nil && *in.IndexName == models.ConnectionIDIndex {
				return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
					mustMarshal(t, conn),
				}}, nil
			}
			return &dynamodb.QueryOutput{}, nil
		}
	}
	dynamo := newDynamo(client)
	return &ChatService{
		Dynamo:      dynamo,
		Connections: &ConnectionService{Dynamo: dynamo},
		Bus:         NewMessageBus(),
	}
}

func TestSendMessageRejectsEmptyContent(t *testing.T) {
	svc := chatServiceFor(t, testConnection(models.StatusAccepted), &fakeDynamoClient{})

	_, err := svc.SendMessage(context.Background(), "conn-1", "omar", "   \n\t ")
	require.ErrorIs(t, err, apperrors.ErrEmptyMessage)
}

func TestSendMessageRejectsOutsider(t *testing.T) {
	svc := chatServiceFor(t, testConnection(models.StatusAccepted), &fakeDynamoClient{})

	_, err := svc.SendMessage(context.Background(), "conn-1", "stranger", "hello")
	require.ErrorIs(t, err, apperrors.ErrNotParticipant)
}

func TestSendMessageRequiresAcceptedConnection(t *testing.T) {
	for _, status := range []string{models.StatusPending, models.StatusDeclined} {
		t.Run(status, func(t *testing.T) {
			svc := chatServiceFor(t, testConnection(status), &fakeDynamoClient{})

			_, err := svc.SendMessage(context.Background(), "conn-1", "omar", "hello")
			require.ErrorIs(t, err, apperrors.ErrNotAccepted)
		})
	}
}

func TestSendMessageStoresAndFansOut(t *testing.T) {
	var put *dynamodb.PutItemInput
	client := &fakeDynamoClient{
		putFn: func(in *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
			put = in
			return &dynamodb.PutItemOutput{}, nil
		},
	}
	svc := chatServiceFor(t, testConnection(models.StatusAccepted), client)

	var published []models.Message
	svc.Bus.Subscribe("conn-1", func(m models.Message) {
		published = append(published, m)
	})

	msg, err := svc.SendMessage(context.Background(), "conn-1", "omar", "  assalamu alaikum  ")
	require.NoError(t, err)
	assert.Equal(t, "assalamu alaikum", msg.Content)
	assert.Equal(t, "conn-1", msg.ConnectionID)
	assert.Equal(t, "omar", msg.SenderID)
	assert.NotEmpty(t, msg.MessageID)
	assert.NotEmpty(t, msg.CreatedAt)

	require.NotNil(t, put)
	assert.Equal(t, models.MessagesTable, *put.TableName)
	var stored models.Message
	require.NoError(t, attributevalue.UnmarshalMap(put.Item, &stored))
	assert.Equal(t, *msg, stored)

	require.Len(t, published, 1)
	assert.Equal(t, *msg, published[0])
}

func TestSendMessageStoreFailure(t *testing.T) {
	client := &fakeDynamoClient{
		putFn: func(in *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
			return nil, assert.AnError
		},
	}
	svc := chatServiceFor(t, testConnection(models.StatusAccepted), client)

	var published int
	svc.Bus.Subscribe("conn-1", func(models.Message) { published++ })

	_, err := svc.SendMessage(context.Background(), "conn-1", "omar", "hello")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeUnavailable))
	assert.Zero(t, published)
}

func TestListMessagesQueriesAscending(t *testing.T) {
	var query *dynamodb.QueryInput
	client := &fakeDynamoClient{
		queryFn: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			query = in
			return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
				mustMarshal(t, models.Message{ConnectionID: "conn-1", CreatedAt: "t1", MessageID: "m-1", SenderID: "omar", Content: "first"}),
				mustMarshal(t, models.Message{ConnectionID: "conn-1", CreatedAt: "t2", MessageID: "m-2", SenderID: "aisha", Content: "second"}),
			}}, nil
		},
	}
	svc := &ChatService{Dynamo: newDynamo(client)}

	msgs, err := svc.ListMessages(context.Background(), "conn-1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m-1", msgs[0].MessageID)

	require.NotNil(t, query)
	require.NotNil(t, query.ScanIndexForward)
	assert.True(t, *query.ScanIndexForward)
}

func TestLatestMessageEmptyThread(t *testing.T) {
	svc := &ChatService{Dynamo: newDynamo(&fakeDynamoClient{})}

	msg, err := svc.LatestMessage(context.Background(), "conn-1")
	require.NoError(t, err)
	assert.Nil(t, msg)
}

func TestLatestMessageQueriesNewestFirstWithLimit(t *testing.T) {
	var query *dynamodb.QueryInput
	client := &fakeDynamoClient{
		queryFn: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			query = in
			return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
				mustMarshal(t, models.Message{ConnectionID: "conn-1", CreatedAt: "t9", MessageID: "m-9", SenderID: "omar", Content: "latest"}),
			}}, nil
		},
	}
	svc := &ChatService{Dynamo: newDynamo(client)}

	msg, err := svc.LatestMessage(context.Background(), "conn-1")
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "m-9", msg.MessageID)

	require.NotNil(t, query)
	require.NotNil(t, query.ScanIndexForward)
	assert.False(t, *query.ScanIndexForward)
	require.NotNil(t, query.Limit)
	assert.Equal(t, int32(1), *query.Limit)
}
