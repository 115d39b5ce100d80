package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"am4m_server/apperrors"
	"am4m_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// ConnectionService owns the request/accept/decline lifecycle of the
// social graph edges that gate messaging.
type ConnectionService struct {
	Dynamo *DynamoService
}

// GetEdge retrieves the directed edge requester -> receiver, or nil when
// no such edge exists.
func (s *ConnectionService) GetEdge(ctx context.Context, requesterID, receiverID string) (*models.Connection, error) {
	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: models.ConnectionPK(requesterID)},
		"SK": &types.AttributeValueMemberS{Value: models.ConnectionSK(receiverID)},
	}

	item, err := s.Dynamo.GetItem(ctx, models.ConnectionsTable, key)
	if err != nil {
		return nil, apperrors.ErrStore("get connection", err)
	}
	if item == nil {
		return nil, nil
	}

	var conn models.Connection
	if err := attributevalue.UnmarshalMap(item, &conn); err != nil {
		return nil, fmt.Errorf("failed to unmarshal connection: %w", err)
	}
	return &conn, nil
}

// RequestConnection creates a pending edge from requester to receiver.
// A live edge (pending or accepted) in either direction is a conflict;
// a declined edge may be re-requested and is overwritten with a fresh
// pending row. The reads give fast feedback, but the transactional write
// is the authority: it only lands while both directed keys are absent or
// declined, so racing requests cannot create two live edges for a pair.
func (s *ConnectionService) RequestConnection(ctx context.Context, requesterID, receiverID string) (*models.Connection, error) {
	if requesterID == receiverID {
		return nil, apperrors.ErrSelfConnection
	}

	log.Printf("🔄 Processing connection request %s -> %s", requesterID, receiverID)

	outgoing, err := s.GetEdge(ctx, requesterID, receiverID)
	if err != nil {
		return nil, err
	}
	incoming, err := s.GetEdge(ctx, receiverID, requesterID)
	if err != nil {
		return nil, err
	}
	for _, existing := range []*models.Connection{outgoing, incoming} {
		if existing != nil && existing.Status != models.StatusDeclined {
			log.Printf("ℹ️ Edge %s <-> %s already exists with status %q", requesterID, receiverID, existing.Status)
			return nil, apperrors.ErrDuplicateConnection
		}
	}

	now := models.NowTimestamp()
	conn := models.Connection{
		PK:           models.ConnectionPK(requesterID),
		SK:           models.ConnectionSK(receiverID),
		ConnectionID: uuid.New().String(),
		RequesterID:  requesterID,
		ReceiverID:   receiverID,
		Status:       models.StatusPending,
		CreatedAt:    now,
		LastUpdated:  now,
	}

	edgeOpen := "attribute_not_exists(PK) OR #status = :declined"
	reverseKey := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: models.ConnectionPK(receiverID)},
		"SK": &types.AttributeValueMemberS{Value: models.ConnectionSK(requesterID)},
	}
	expressionValues := map[string]types.AttributeValue{
		":declined": &types.AttributeValueMemberS{Value: models.StatusDeclined},
	}
	expressionNames := map[string]string{"#status": "status"}

	err = s.Dynamo.TransactPut(ctx, models.ConnectionsTable, conn, edgeOpen, reverseKey, edgeOpen, expressionValues, expressionNames)
	if err != nil {
		if isEdgeConflict(err) {
			log.Printf("ℹ️ Edge %s <-> %s was created concurrently", requesterID, receiverID)
			return nil, apperrors.ErrDuplicateConnection
		}
		log.Printf("❌ Error inserting connection: %v", err)
		return nil, apperrors.ErrStore("create connection", err)
	}

	log.Printf("✅ Connection %s created (%s -> %s)", conn.ConnectionID, requesterID, receiverID)
	return &conn, nil
}

// isEdgeConflict reports whether a write failed because another live edge
// for the pair already holds one of the directed keys.
func isEdgeConflict(err error) bool {
	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		for _, reason := range canceled.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return true
			}
		}
		return false
	}
	var conditional *types.ConditionalCheckFailedException
	return errors.As(err, &conditional)
}

// GetConnectionByID resolves an edge by its stable connection id.
func (s *ConnectionService) GetConnectionByID(ctx context.Context, connectionID string) (*models.Connection, error) {
	keyCondition := "connectionId = :id"
	expressionValues := map[string]types.AttributeValue{
		":id": &types.AttributeValueMemberS{Value: connectionID},
	}

	items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.ConnectionsTable, models.ConnectionIDIndex, keyCondition, expressionValues, nil, "")
	if err != nil {
		return nil, apperrors.ErrStore("lookup connection", err)
	}
	if len(items) == 0 {
		return nil, apperrors.ErrConnectionNotFound
	}

	var conn models.Connection
	if err := attributevalue.UnmarshalMap(items[0], &conn); err != nil {
		return nil, fmt.Errorf("failed to unmarshal connection: %w", err)
	}
	return &conn, nil
}

// AcceptConnection transitions a pending edge to accepted. Only the
// receiver may answer, and only the first answer wins.
func (s *ConnectionService) AcceptConnection(ctx context.Context, connectionID, actorID string) (*models.Connection, error) {
	return s.answer(ctx, connectionID, actorID, models.StatusAccepted)
}

// DeclineConnection transitions a pending edge to declined.
func (s *ConnectionService) DeclineConnection(ctx context.Context, connectionID, actorID string) (*models.Connection, error) {
	return s.answer(ctx, connectionID, actorID, models.StatusDeclined)
}

func (s *ConnectionService) answer(ctx context.Context, connectionID, actorID, newStatus string) (*models.Connection, error) {
	conn, err := s.GetConnectionByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if conn.ReceiverID != actorID {
		return nil, apperrors.ErrNotReceiver
	}

	log.Printf("🔄 Answering connection %s: %s", connectionID, newStatus)

	key := map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: conn.PK},
		"SK": &types.AttributeValueMemberS{Value: conn.SK},
	}
	updateExpression := "SET #status = :status, #lastUpdated = :lastUpdated"
	// First write wins: the update only applies while the edge is pending.
	conditionExpression := "#status = :pending"
	expressionValues := map[string]types.AttributeValue{
		":status":      &types.AttributeValueMemberS{Value: newStatus},
		":pending":     &types.AttributeValueMemberS{Value: models.StatusPending},
		":lastUpdated": &types.AttributeValueMemberS{Value: models.NowTimestamp()},
	}
	expressionNames := map[string]string{
		"#status":      "status",
		"#lastUpdated": "lastUpdated",
	}

	attrs, err := s.Dynamo.UpdateItem(ctx, models.ConnectionsTable, updateExpression, conditionExpression, key, expressionValues, expressionNames)
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			log.Printf("ℹ️ Connection %s was already answered", connectionID)
			return nil, apperrors.ErrNotPending
		}
		log.Printf("❌ Error updating connection %s: %v", connectionID, err)
		return nil, apperrors.ErrStore("update connection status", err)
	}

	var updated models.Connection
	if err := attributevalue.UnmarshalMap(attrs, &updated); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated connection: %w", err)
	}
	log.Printf("✅ Connection %s is now %s", connectionID, updated.Status)
	return &updated, nil
}

// ListPendingForReceiver fetches pending requests addressed to the user,
// newest first.
func (s *ConnectionService) ListPendingForReceiver(ctx context.Context, receiverID string) ([]models.Connection, error) {
	keyCondition := "receiverId = :receiver"
	filterExpression := "#status = :pending"
	expressionValues := map[string]types.AttributeValue{
		":receiver": &types.AttributeValueMemberS{Value: receiverID},
		":pending":  &types.AttributeValueMemberS{Value: models.StatusPending},
	}
	expressionNames := map[string]string{"#status": "status"}

	items, err := s.Dynamo.QueryItemsWithIndex(ctx, models.ConnectionsTable, models.ReceiverIDIndex, keyCondition, expressionValues, expressionNames, filterExpression)
	if err != nil {
		return nil, apperrors.ErrStore("list pending connections", err)
	}

	var conns []models.Connection
	if err := attributevalue.UnmarshalListOfMaps(items, &conns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending connections: %w", err)
	}
	sortNewestFirst(conns)
	return conns, nil
}

// ListAcceptedForUser fetches accepted connections where the user sits on
// either side of the edge, newest first.
func (s *ConnectionService) ListAcceptedForUser(ctx context.Context, userID string) ([]models.Connection, error) {
	// Outgoing: own partition.
	keyCondition := "PK = :user AND begins_with(SK, :prefix)"
	expressionValues := map[string]types.AttributeValue{
		":user":     &types.AttributeValueMemberS{Value: models.ConnectionPK(userID)},
		":prefix":   &types.AttributeValueMemberS{Value: "CONN#"},
		":accepted": &types.AttributeValueMemberS{Value: models.StatusAccepted},
	}
	expressionNames := map[string]string{"#status": "status"}

	outgoing, err := s.Dynamo.QueryItemsWithFilters(ctx, models.ConnectionsTable, keyCondition, expressionValues, expressionNames, "#status = :accepted")
	if err != nil {
		return nil, apperrors.ErrStore("list accepted connections", err)
	}

	// Incoming: receiver GSI.
	inKeyCondition := "receiverId = :receiver"
	inValues := map[string]types.AttributeValue{
		":receiver": &types.AttributeValueMemberS{Value: userID},
		":accepted": &types.AttributeValueMemberS{Value: models.StatusAccepted},
	}
	incoming, err := s.Dynamo.QueryItemsWithIndex(ctx, models.ConnectionsTable, models.ReceiverIDIndex, inKeyCondition, inValues, expressionNames, "#status = :accepted")
	if err != nil {
		return nil, apperrors.ErrStore("list accepted connections", err)
	}

	var conns []models.Connection
	if err := attributevalue.UnmarshalListOfMaps(append(outgoing, incoming...), &conns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal accepted connections: %w", err)
	}
	sortNewestFirst(conns)
	return conns, nil
}

// CountPendingForReceiver counts pending requests addressed to the user.
func (s *ConnectionService) CountPendingForReceiver(ctx context.Context, receiverID string) (int, error) {
	keyCondition := "receiverId = :receiver"
	filterExpression := "#status = :pending"
	expressionValues := map[string]types.AttributeValue{
		":receiver": &types.AttributeValueMemberS{Value: receiverID},
		":pending":  &types.AttributeValueMemberS{Value: models.StatusPending},
	}
	expressionNames := map[string]string{"#status": "status"}

	count, err := s.Dynamo.QueryCount(ctx, models.ConnectionsTable, models.ReceiverIDIndex, keyCondition, expressionValues, expressionNames, filterExpression)
	if err != nil {
		return 0, apperrors.ErrStore("count pending connections", err)
	}
	return int(count), nil
}

func sortNewestFirst(conns []models.Connection) {
	sort.SliceStable(conns, func(i, j int) bool {
		ti, _ := time.Parse(models.TimestampLayout, conns[i].CreatedAt)
		tj, _ := time.Parse(models.TimestampLayout, conns[j].CreatedAt)
		return ti.After(tj)
	})
}
