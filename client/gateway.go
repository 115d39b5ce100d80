package client

import (
	"context"

	"am4m_server/models"
	"am4m_server/services"
)

// ServiceStore adapts the backend services to the Store boundary for
// in-process use (the hosted binary and the test harness share it).
type ServiceStore struct {
	Connections *services.ConnectionService
	Chat        *services.ChatService
	Profiles    *services.ProfileService
}

func NewServiceStore(connections *services.ConnectionService, chat *services.ChatService, profiles *services.ProfileService) *ServiceStore {
	return &ServiceStore{Connections: connections, Chat: chat, Profiles: profiles}
}

func (s *ServiceStore) RequestConnection(ctx context.Context, requesterID, receiverID string) (*models.Connection, error) {
	return s.Connections.RequestConnection(ctx, requesterID, receiverID)
}

func (s *ServiceStore) AcceptConnection(ctx context.Context, connectionID, actorID string) (*models.Connection, error) {
	return s.Connections.AcceptConnection(ctx, connectionID, actorID)
}

func (s *ServiceStore) DeclineConnection(ctx context.Context, connectionID, actorID string) (*models.Connection, error) {
	return s.Connections.DeclineConnection(ctx, connectionID, actorID)
}

func (s *ServiceStore) ListPendingConnections(ctx context.Context, receiverID string) ([]models.Connection, error) {
	return s.Connections.ListPendingForReceiver(ctx, receiverID)
}

func (s *ServiceStore) ListAcceptedConnections(ctx context.Context, userID string) ([]models.Connection, error) {
	return s.Connections.ListAcceptedForUser(ctx, userID)
}

func (s *ServiceStore) ListMessages(ctx context.Context, connectionID string) ([]models.Message, error) {
	return s.Chat.ListMessages(ctx, connectionID)
}

func (s *ServiceStore) InsertMessage(ctx context.Context, connectionID, senderID, content string) (*models.Message, error) {
	return s.Chat.SendMessage(ctx, connectionID, senderID, content)
}

func (s *ServiceStore) LatestMessages(ctx context.Context, connectionIDs []string) (map[string]models.Message, error) {
	return s.Chat.LatestMessages(ctx, connectionIDs)
}

func (s *ServiceStore) ProfileBriefs(ctx context.Context, userIDs []string) (map[string]models.ProfileBrief, error) {
	return s.Profiles.GetProfileBriefs(ctx, userIDs)
}

// BusFeed exposes the in-process message bus as a Feed.
type BusFeed struct {
	Bus *services.MessageBus
}

func NewBusFeed(bus *services.MessageBus) *BusFeed {
	return &BusFeed{Bus: bus}
}

func (f *BusFeed) Subscribe(connectionID string, onInsert func(models.Message)) (func(), error) {
	return f.Bus.Subscribe(connectionID, onInsert), nil
}
