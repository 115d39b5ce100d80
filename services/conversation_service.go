package services

import (
	"context"
	"sort"

	"am4m_server/models"
)

// ConversationSummary is the derived view the conversation list renders:
// one entry per accepted connection, labeled with the counterpart brief
// and the most recent message. LastMessage is nil for a thread with no
// messages yet, and Other is nil when the counterpart profile is gone.
type ConversationSummary struct {
	Connection  models.Connection    `json:"connection"`
	Other       *models.ProfileBrief `json:"other"`
	LastMessage *models.Message      `json:"lastMessage"`
}

// ConversationService derives conversation lists by joining accepted
// connections with profile briefs and last messages.
type ConversationService struct {
	Connections *ConnectionService
	Profiles    *ProfileService
	Chat        *ChatService
}

// ListConversations produces the viewer's conversations ordered by most
// recent activity (last message, falling back to the connection's
// creation time).
func (cs *ConversationService) ListConversations(ctx context.Context, userID string) ([]ConversationSummary, error) {
	accepted, err := cs.Connections.ListAcceptedForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(accepted) == 0 {
		return []ConversationSummary{}, nil
	}

	otherIDs := make([]string, 0, len(accepted))
	connectionIDs := make([]string, 0, len(accepted))
	for _, conn := range accepted {
		otherIDs = append(otherIDs, conn.OtherParty(userID))
		connectionIDs = append(connectionIDs, conn.ConnectionID)
	}

	briefs, err := cs.Profiles.GetProfileBriefs(ctx, otherIDs)
	if err != nil {
		return nil, err
	}
	latest, err := cs.Chat.LatestMessages(ctx, connectionIDs)
	if err != nil {
		return nil, err
	}

	conversations := make([]ConversationSummary, 0, len(accepted))
	for _, conn := range accepted {
		summary := ConversationSummary{Connection: conn}
		if brief, ok := briefs[conn.OtherParty(userID)]; ok {
			b := brief
			summary.Other = &b
		}
		if msg, ok := latest[conn.ConnectionID]; ok {
			m := msg
			summary.LastMessage = &m
		}
		conversations = append(conversations, summary)
	}

	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].activity() > conversations[j].activity()
	})
	return conversations, nil
}

// CountConversations counts the viewer's active conversations.
func (cs *ConversationService) CountConversations(ctx context.Context, userID string) (int, error) {
	accepted, err := cs.Connections.ListAcceptedForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return len(accepted), nil
}

// activity is the ordering key: timestamps share a fixed-width layout so
// string comparison matches chronological order.
func (c ConversationSummary) activity() string {
	if c.LastMessage != nil {
		return c.LastMessage.CreatedAt
	}
	return c.Connection.CreatedAt
}
