package client

import (
	"context"
	"sort"

	"am4m_server/models"
)

// Conversation is the derived list entry for one accepted connection.
// LastMessage is nil while the thread has no messages yet ("say salam to
// start the conversation"); Other is nil when the counterpart profile no
// longer resolves.
type Conversation struct {
	Connection  models.Connection
	Other       *models.ProfileBrief
	LastMessage *models.Message
}

// ListConversations recomputes the viewer's conversation list: one entry
// per accepted connection, ordered by most recent activity. The
// projection is read-only and idempotent; counterpart briefs come from a
// single batched fetch.
func ListConversations(ctx context.Context, store Store, viewerID string) ([]Conversation, error) {
	accepted, err := store.ListAcceptedConnections(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	if len(accepted) == 0 {
		return []Conversation{}, nil
	}

	otherIDs := make([]string, 0, len(accepted))
	connectionIDs := make([]string, 0, len(accepted))
	for _, conn := range accepted {
		otherIDs = append(otherIDs, conn.OtherParty(viewerID))
		connectionIDs = append(connectionIDs, conn.ConnectionID)
	}

	briefs, err := store.ProfileBriefs(ctx, otherIDs)
	if err != nil {
		return nil, err
	}
	latest, err := store.LatestMessages(ctx, connectionIDs)
	if err != nil {
		return nil, err
	}

	conversations := make([]Conversation, 0, len(accepted))
	for _, conn := range accepted {
		conv := Conversation{Connection: conn}
		if brief, ok := briefs[conn.OtherParty(viewerID)]; ok {
			b := brief
			conv.Other = &b
		}
		if msg, ok := latest[conn.ConnectionID]; ok {
			m := msg
			conv.LastMessage = &m
		}
		conversations = append(conversations, conv)
	}

	// Timestamps use a fixed-width layout, so string order is time order.
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].activity() > conversations[j].activity()
	})
	return conversations, nil
}

func (c Conversation) activity() string {
	if c.LastMessage != nil {
		return c.LastMessage.CreatedAt
	}
	return c.Connection.CreatedAt
}
