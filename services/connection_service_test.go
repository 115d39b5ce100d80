package services

import (
	"context"
	"testing"

	"am4m_server/apperrors"
	"am4m_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConnection(status string) models.Connection {
	return models.Connection{
		PK:           models.ConnectionPK("omar"),
		SK:           models.ConnectionSK("aisha"),
		ConnectionID: "conn-1",
		RequesterID:  "omar",
		ReceiverID:   "aisha",
		Status:       status,
		CreatedAt:    models.NowTimestamp(),
		LastUpdated:  models.NowTimestamp(),
	}
}

func TestRequestConnectionRejectsSelf(t *testing.T) {
	svc := &ConnectionService{Dynamo: newDynamo(&fakeDynamoClient{})}

	_, err := svc.RequestConnection(context.Background(), "omar", "omar")
	require.ErrorIs(t, err, apperrors.ErrSelfConnection)
}

func TestRequestConnectionRejectsLiveEdgeEitherDirection(t *testing.T) {
	for _, status := range []string{models.StatusPending, models.StatusAccepted} {
		t.Run(status, func(t *testing.T) {
			// The existing edge points the other way: aisha -> omar.
			existing := testConnection(status)
			existing.PK = models.ConnectionPK("aisha")
			existing.SK = models.ConnectionSK("omar")
			existing.RequesterID, existing.ReceiverID = "aisha", "omar"

			client := &fakeDynamoClient{
				getFn: func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
					if stringKey(in.Key, "PK") == models.ConnectionPK("aisha") {
						return &dynamodb.GetItemOutput{Item: mustMarshal(t, existing)}, nil
					}
					return &dynamodb.GetItemOutput{}, nil
				},
			}
			svc := &ConnectionService{Dynamo: newDynamo(client)}

			_, err := svc.RequestConnection(context.Background(), "omar", "aisha")
			require.ErrorIs(t, err, apperrors.ErrDuplicateConnection)
		})
	}
}

func TestRequestConnectionOverwritesDeclinedEdge(t *testing.T) {
	declined := testConnection(models.StatusDeclined)

	var transact *dynamodb.TransactWriteItemsInput
	client := &fakeDynamoClient{
		getFn: func(in *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
			if stringKey(in.Key, "PK") == models.ConnectionPK("omar") {
				return &dynamodb.GetItemOutput{Item: mustMarshal(t, declined)}, nil
			}
			return &dynamodb.GetItemOutput{}, nil
		},
		transactFn: func(in *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
			transact = in
			return &dynamodb.TransactWriteItemsOutput{}, nil
		},
	}
	svc := &ConnectionService{Dynamo: newDynamo(client)}

	conn, err := svc.RequestConnection(context.Background(), "omar", "aisha")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, conn.Status)
	assert.NotEqual(t, declined.ConnectionID, conn.ConnectionID)

	require.NotNil(t, transact)
	require.Len(t, transact.TransactItems, 2)

	put := transact.TransactItems[0].Put
	require.NotNil(t, put)
	assert.Equal(t, models.ConnectionsTable, *put.TableName)

	var stored models.Connection
	require.NoError(t, attributevalue.UnmarshalMap(put.Item, &stored))
	assert.Equal(t, models.ConnectionPK("omar"), stored.PK)
	assert.Equal(t, models.ConnectionSK("aisha"), stored.SK)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestRequestConnectionGuardsBothDirectionsAtWrite(t *testing.T) {
	var transact *dynamodb.TransactWriteItemsInput
	client := &fakeDynamoClient{
		transactFn: func(in *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
			transact = in
			return &dynamodb.TransactWriteItemsOutput{}, nil
		},
	}
	svc := &ConnectionService{Dynamo: newDynamo(client)}

	_, err := svc.RequestConnection(context.Background(), "omar", "aisha")
	require.NoError(t, err)

	require.NotNil(t, transact)
	require.Len(t, transact.TransactItems, 2)

	put := transact.TransactItems[0].Put
	require.NotNil(t, put)
	require.NotNil(t, put.ConditionExpression)
	assert.Contains(t, *put.ConditionExpression, "attribute_not_exists(PK)")
	assert.Contains(t, *put.ConditionExpression, ":declined")

	check := transact.TransactItems[1].ConditionCheck
	require.NotNil(t, check)
	assert.Equal(t, models.ConnectionPK("aisha"), stringKey(check.Key, "PK"))
	assert.Equal(t, models.ConnectionSK("omar"), stringKey(check.Key, "SK"))
	require.NotNil(t, check.ConditionExpression)
	assert.Contains(t, *check.ConditionExpression, "attribute_not_exists(PK)")
}

func TestRequestConnectionLosesRaceToConcurrentEdge(t *testing.T) {
	// Both reads see nothing, but by write time the reverse edge exists,
	// so the transaction is canceled on its condition check.
	client := &fakeDynamoClient{
		transactFn: func(in *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
			return nil, &types.TransactionCanceledException{
				CancellationReasons: []types.CancellationReason{
					{Code: aws.String("None")},
					{Code: aws.String("ConditionalCheckFailed")},
				},
			}
		},
	}
	svc := &ConnectionService{Dynamo: newDynamo(client)}

	_, err := svc.RequestConnection(context.Background(), "omar", "aisha")
	require.ErrorIs(t, err, apperrors.ErrDuplicateConnection)
}

func TestAnswerRequiresReceiver(t *testing.T) {
	client := &fakeDynamoClient{
		queryFn: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
				mustMarshal(t, testConnection(models.StatusPending)),
			}}, nil
		},
	}
	svc := &ConnectionService{Dynamo: newDynamo(client)}

	// The requester cannot answer their own request.
	_, err := svc.AcceptConnection(context.Background(), "conn-1", "omar")
	require.ErrorIs(t, err, apperrors.ErrNotReceiver)
}

func TestAnswerUnknownConnection(t *testing.T) {
	svc := &ConnectionService{Dynamo: newDynamo(&fakeDynamoClient{})}

	_, err := svc.AcceptConnection(context.Background(), "missing", "aisha")
	require.ErrorIs(t, err, apperrors.ErrConnectionNotFound)
}

func TestAnswerFirstWriteWins(t *testing.T) {
	client := &fakeDynamoClient{
		queryFn: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
				mustMarshal(t, testConnection(models.StatusPending)),
			}}, nil
		},
		updateFn: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			return nil, &types.ConditionalCheckFailedException{}
		},
	}
	svc := &ConnectionService{Dynamo: newDynamo(client)}

	_, err := svc.DeclineConnection(context.Background(), "conn-1", "aisha")
	require.ErrorIs(t, err, apperrors.ErrNotPending)
}

func TestAcceptConnection(t *testing.T) {
	var update *dynamodb.UpdateItemInput
	client := &fakeDynamoClient{
		queryFn: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
				mustMarshal(t, testConnection(models.StatusPending)),
			}}, nil
		},
		updateFn: func(in *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
			update = in
			return &dynamodb.UpdateItemOutput{
				Attributes: mustMarshal(t, testConnection(models.StatusAccepted)),
			}, nil
		},
	}
	svc := &ConnectionService{Dynamo: newDynamo(client)}

	conn, err := svc.AcceptConnection(context.Background(), "conn-1", "aisha")
	require.NoError(t, err)
	assert.Equal(t, models.StatusAccepted, conn.Status)

	require.NotNil(t, update)
	require.NotNil(t, update.ConditionExpression)
	assert.Contains(t, *update.ConditionExpression, ":pending")
	assert.Equal(t, models.ConnectionPK("omar"), stringKey(update.Key, "PK"))
	assert.Equal(t, models.ConnectionSK("aisha"), stringKey(update.Key, "SK"))
}

func TestListPendingForReceiverNewestFirst(t *testing.T) {
	older := testConnection(models.StatusPending)
	older.ConnectionID = "conn-old"
	older.CreatedAt = "2025-06-01T10:00:00.000000000Z"
	newer := testConnection(models.StatusPending)
	newer.ConnectionID = "conn-new"
	newer.CreatedAt = "2025-06-02T10:00:00.000000000Z"

	client := &fakeDynamoClient{
		queryFn: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			assert.Equal(t, models.ReceiverIDIndex, *in.IndexName)
			return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
				mustMarshal(t, older),
				mustMarshal(t, newer),
			}}, nil
		},
	}
	svc := &ConnectionService{Dynamo: newDynamo(client)}

	conns, err := svc.ListPendingForReceiver(context.Background(), "aisha")
	require.NoError(t, err)
	require.Len(t, conns, 2)
	assert.Equal(t, "conn-new", conns[0].ConnectionID)
	assert.Equal(t, "conn-old", conns[1].ConnectionID)
}

func TestListAcceptedForUserMergesBothSides(t *testing.T) {
	outgoing := testConnection(models.StatusAccepted)
	outgoing.ConnectionID = "conn-out"
	incoming := testConnection(models.StatusAccepted)
	incoming.ConnectionID = "conn-in"

	client := &fakeDynamoClient{
		queryFn: func(in *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
			if in.IndexName != nil {
				return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
					mustMarshal(t, incoming),
				}}, nil
			}
			return &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{
				mustMarshal(t, outgoing),
			}}, nil
		},
	}
	svc := &ConnectionService{Dynamo: newDynamo(client)}

	conns, err := svc.ListAcceptedForUser(context.Background(), "omar")
	require.NoError(t, err)
	require.Len(t, conns, 2)
	ids := []string{conns[0].ConnectionID, conns[1].ConnectionID}
	assert.ElementsMatch(t, []string{"conn-out", "conn-in"}, ids)
}
