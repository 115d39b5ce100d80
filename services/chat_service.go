package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"am4m_server/apperrors"
	"am4m_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// ChatService manages the message log of accepted connections.
type ChatService struct {
	Dynamo      *DynamoService
	Connections *ConnectionService
	Bus         *MessageBus
}

// ListMessages fetches the full thread for a connection, oldest first.
func (s *ChatService) ListMessages(ctx context.Context, connectionID string) ([]models.Message, error) {
	keyCondition := "connectionId = :connectionId"
	expressionValues := map[string]types.AttributeValue{
		":connectionId": &types.AttributeValueMemberS{Value: connectionID},
	}

	items, err := s.Dynamo.QueryItemsWithOptions(ctx, models.MessagesTable, keyCondition, expressionValues, nil, 0, true)
	if err != nil {
		log.Printf("❌ Error querying messages for %s: %v", connectionID, err)
		return nil, apperrors.ErrStore("fetch messages", err)
	}

	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}
	return messages, nil
}

// LatestMessage returns the most recent message of a thread, or nil for an
// empty thread.
func (s *ChatService) LatestMessage(ctx context.Context, connectionID string) (*models.Message, error) {
	keyCondition := "connectionId = :connectionId"
	expressionValues := map[string]types.AttributeValue{
		":connectionId": &types.AttributeValueMemberS{Value: connectionID},
	}

	items, err := s.Dynamo.QueryItemsWithOptions(ctx, models.MessagesTable, keyCondition, expressionValues, nil, 1, false)
	if err != nil {
		return nil, apperrors.ErrStore("fetch latest message", err)
	}
	if len(items) == 0 {
		return nil, nil
	}

	var msg models.Message
	if err := attributevalue.UnmarshalMap(items[0], &msg); err != nil {
		return nil, fmt.Errorf("failed to parse latest message: %w", err)
	}
	return &msg, nil
}

// LatestMessages resolves the most recent message per connection id.
// Connections with no messages are absent from the returned map.
func (s *ChatService) LatestMessages(ctx context.Context, connectionIDs []string) (map[string]models.Message, error) {
	latest := make(map[string]models.Message, len(connectionIDs))
	for _, id := range connectionIDs {
		msg, err := s.LatestMessage(ctx, id)
		if err != nil {
			return nil, err
		}
		if msg != nil {
			latest[id] = *msg
		}
	}
	return latest, nil
}

// SendMessage validates, stores and fans out one message. The sender must
// be a participant of the connection and the connection must be accepted.
func (s *ChatService) SendMessage(ctx context.Context, connectionID, senderID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.ErrEmptyMessage
	}

	conn, err := s.Connections.GetConnectionByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if !conn.Involves(senderID) {
		return nil, apperrors.ErrNotParticipant
	}
	if conn.Status != models.StatusAccepted {
		return nil, apperrors.ErrNotAccepted
	}

	msg := models.Message{
		ConnectionID: connectionID,
		CreatedAt:    models.NowTimestamp(),
		MessageID:    uuid.New().String(),
		SenderID:     senderID,
		Content:      content,
	}

	log.Printf("📩 Storing message %s in connection %s", msg.MessageID, connectionID)
	if err := s.Dynamo.PutItem(ctx, models.MessagesTable, msg); err != nil {
		log.Printf("❌ Failed to store message: %v", err)
		return nil, apperrors.ErrStore("store message", err)
	}

	if s.Bus != nil {
		s.Bus.Publish(msg)
	}
	return &msg, nil
}
