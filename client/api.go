// Package client is the social graph and messaging core consumed by the
// UI shell: connection lifecycle with optimistic mutation, conversation
// projection, the live message channel, and the gender visibility filter.
// It talks to the backend only through the Store/Feed/Session boundaries.
package client

import (
	"context"

	"am4m_server/models"
)

// Store is the remote state the core reads and writes. Implementations
// wrap the hosted backend; see ServiceStore for the in-process one.
type Store interface {
	// RequestConnection creates a pending edge requester -> receiver.
	RequestConnection(ctx context.Context, requesterID, receiverID string) (*models.Connection, error)
	// AcceptConnection / DeclineConnection answer a pending request as
	// the authenticated receiver.
	AcceptConnection(ctx context.Context, connectionID, actorID string) (*models.Connection, error)
	DeclineConnection(ctx context.Context, connectionID, actorID string) (*models.Connection, error)
	// ListPendingConnections returns pending requests addressed to the
	// user, newest first.
	ListPendingConnections(ctx context.Context, receiverID string) ([]models.Connection, error)
	// ListAcceptedConnections returns accepted edges with the user on
	// either side, newest first.
	ListAcceptedConnections(ctx context.Context, userID string) ([]models.Connection, error)

	// ListMessages returns a full thread ordered ascending by createdAt.
	ListMessages(ctx context.Context, connectionID string) ([]models.Message, error)
	// InsertMessage stores one message and returns the authoritative row.
	InsertMessage(ctx context.Context, connectionID, senderID, content string) (*models.Message, error)
	// LatestMessages resolves the newest message per connection id;
	// empty threads are absent from the map.
	LatestMessages(ctx context.Context, connectionIDs []string) (map[string]models.Message, error)

	// ProfileBriefs batch-fetches list-rendering briefs in one call.
	ProfileBriefs(ctx context.Context, userIDs []string) (map[string]models.ProfileBrief, error)
}

// Feed is the realtime insert feed for one conversation. Delivery is
// at-least-once; consumers deduplicate (see Channel).
type Feed interface {
	// Subscribe registers a handler for message inserts scoped to the
	// connection id and returns a cancel func. Cancel must be called
	// before subscribing to another conversation.
	Subscribe(connectionID string, onInsert func(models.Message)) (cancel func(), err error)
}

// Session exposes the authenticated user and login/logout notification.
// Components depend on this interface rather than any global auth state.
type Session interface {
	// UserID returns the current user id, or "" when signed out.
	UserID() string
	// OnChange registers a listener for session changes; it returns a
	// cancel func.
	OnChange(fn func(userID string)) (cancel func())
}
