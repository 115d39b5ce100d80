package client

import (
	"context"
	"sync"

	"am4m_server/apperrors"
	"am4m_server/models"
)

// ConnectionEntry pairs an edge with the counterpart's profile brief.
// Other is nil when the counterpart profile could not be resolved; list
// rendering tolerates a missing name/photo.
type ConnectionEntry struct {
	Connection models.Connection
	Other      *models.ProfileBrief
}

// Connections owns the viewer's pending and accepted connection lists and
// the optimistic accept/decline mutations over them. Accept and Decline
// apply the new state locally first and roll back to the exact prior
// snapshot when the remote update fails, so the lists never show a state
// that was neither confirmed nor revertible.
type Connections struct {
	mu       sync.Mutex
	store    Store
	session  Session
	pending  []ConnectionEntry
	accepted []ConnectionEntry
	loaded   bool

	detachSession func()
}

func NewConnections(store Store, session Session) *Connections {
	c := &Connections{store: store, session: session}
	c.detachSession = session.OnChange(func(userID string) {
		// Any session change invalidates the lists.
		c.mu.Lock()
		c.pending, c.accepted, c.loaded = nil, nil, false
		c.mu.Unlock()
	})
	return c
}

// Close detaches the session listener.
func (c *Connections) Close() {
	if c.detachSession != nil {
		c.detachSession()
	}
}

// Load fetches the viewer's incoming pending requests and accepted
// connections, resolving counterpart briefs with one batched call.
func (c *Connections) Load(ctx context.Context) error {
	viewerID := c.session.UserID()
	if viewerID == "" {
		return apperrors.Forbidden("sign in to see your connections")
	}

	pendingConns, err := c.store.ListPendingConnections(ctx, viewerID)
	if err != nil {
		return err
	}
	acceptedConns, err := c.store.ListAcceptedConnections(ctx, viewerID)
	if err != nil {
		return err
	}

	otherIDs := make([]string, 0, len(pendingConns)+len(acceptedConns))
	for _, conn := range pendingConns {
		otherIDs = append(otherIDs, conn.RequesterID)
	}
	for _, conn := range acceptedConns {
		otherIDs = append(otherIDs, conn.OtherParty(viewerID))
	}
	briefs, err := c.store.ProfileBriefs(ctx, otherIDs)
	if err != nil {
		return err
	}

	pending := make([]ConnectionEntry, 0, len(pendingConns))
	for _, conn := range pendingConns {
		pending = append(pending, entryFor(conn, conn.RequesterID, briefs))
	}
	accepted := make([]ConnectionEntry, 0, len(acceptedConns))
	for _, conn := range acceptedConns {
		accepted = append(accepted, entryFor(conn, conn.OtherParty(viewerID), briefs))
	}

	c.mu.Lock()
	c.pending, c.accepted, c.loaded = pending, accepted, true
	c.mu.Unlock()
	return nil
}

func entryFor(conn models.Connection, otherID string, briefs map[string]models.ProfileBrief) ConnectionEntry {
	entry := ConnectionEntry{Connection: conn}
	if brief, ok := briefs[otherID]; ok {
		b := brief
		entry.Other = &b
	}
	return entry
}

// Pending returns a copy of the incoming pending request list.
func (c *Connections) Pending() []ConnectionEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ConnectionEntry(nil), c.pending...)
}

// Accepted returns a copy of the accepted connection list.
func (c *Connections) Accepted() []ConnectionEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ConnectionEntry(nil), c.accepted...)
}

// Request sends a connection request to receiverID. Nothing is shown
// optimistically, so a duplicate or failure needs no rollback.
func (c *Connections) Request(ctx context.Context, receiverID string) error {
	viewerID := c.session.UserID()
	if viewerID == "" {
		return apperrors.Forbidden("sign in to send a request")
	}
	if viewerID == receiverID {
		return apperrors.ErrSelfConnection
	}
	_, err := c.store.RequestConnection(ctx, viewerID, receiverID)
	return err
}

// Accept answers a pending request: the entry leaves the pending list and
// heads the accepted list immediately, then the remote update runs. On
// failure both lists are restored to their pre-mutation snapshot and the
// error is surfaced.
func (c *Connections) Accept(ctx context.Context, connectionID string) error {
	return c.answer(ctx, connectionID, models.StatusAccepted)
}

// Decline answers a pending request: the entry leaves the pending list
// immediately and is restored on remote failure.
func (c *Connections) Decline(ctx context.Context, connectionID string) error {
	return c.answer(ctx, connectionID, models.StatusDeclined)
}

func (c *Connections) answer(ctx context.Context, connectionID, newStatus string) error {
	viewerID := c.session.UserID()

	c.mu.Lock()
	idx := -1
	for i, entry := range c.pending {
		if entry.Connection.ConnectionID == connectionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return apperrors.ErrConnectionNotFound
	}

	// Snapshot for rollback before any optimistic mutation.
	prevPending := append([]ConnectionEntry(nil), c.pending...)
	prevAccepted := append([]ConnectionEntry(nil), c.accepted...)

	entry := c.pending[idx]
	c.pending = append(c.pending[:idx:idx], c.pending[idx+1:]...)
	if newStatus == models.StatusAccepted {
		optimistic := entry
		optimistic.Connection.Status = models.StatusAccepted
		c.accepted = append([]ConnectionEntry{optimistic}, c.accepted...)
	}
	c.mu.Unlock()

	var updated *models.Connection
	var err error
	if newStatus == models.StatusAccepted {
		updated, err = c.store.AcceptConnection(ctx, connectionID, viewerID)
	} else {
		updated, err = c.store.DeclineConnection(ctx, connectionID, viewerID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.pending, c.accepted = prevPending, prevAccepted
		return err
	}
	if updated != nil && newStatus == models.StatusAccepted {
		for i := range c.accepted {
			if c.accepted[i].Connection.ConnectionID == connectionID {
				c.accepted[i].Connection = *updated
				break
			}
		}
	}
	return nil
}
