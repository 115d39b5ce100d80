package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"am4m_server/apperrors"
	"am4m_server/models"

	"github.com/google/uuid"
)

// ts builds deterministic, strictly increasing timestamps.
func ts(i int) string {
	return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC).
		Add(time.Duration(i) * time.Second).
		Format(models.TimestampLayout)
}

// fakeStore is an in-memory Store with per-operation failure switches.
type fakeStore struct {
	mu          sync.Mutex
	connections map[string]*models.Connection
	messages    map[string][]models.Message
	briefs      map[string]models.ProfileBrief

	failAccept  error
	failDecline error
	failInsert  error

	// blockInsert, when set, stalls InsertMessage until the channel closes.
	blockInsert chan struct{}
	insertCount int
	seq         int

	// publish mirrors a successful insert, like the hosted fan-out.
	publish func(models.Message)
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		connections: make(map[string]*models.Connection),
		messages:    make(map[string][]models.Message),
		briefs:      make(map[string]models.ProfileBrief),
	}
}

func (f *fakeStore) addConnection(c models.Connection) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conn := c
	f.connections[c.ConnectionID] = &conn
}

func (f *fakeStore) addMessage(m models.Message) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[m.ConnectionID] = append(f.messages[m.ConnectionID], m)
}

func (f *fakeStore) addBrief(b models.ProfileBrief) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.briefs[b.UserID] = b
}

func (f *fakeStore) inserts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insertCount
}

func (f *fakeStore) RequestConnection(ctx context.Context, requesterID, receiverID string) (*models.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.connections {
		if c.Involves(requesterID) && c.Involves(receiverID) && c.Status != models.StatusDeclined {
			return nil, apperrors.ErrDuplicateConnection
		}
	}
	f.seq++
	conn := models.Connection{
		ConnectionID: uuid.New().String(),
		RequesterID:  requesterID,
		ReceiverID:   receiverID,
		Status:       models.StatusPending,
		CreatedAt:    ts(f.seq),
		LastUpdated:  ts(f.seq),
	}
	f.connections[conn.ConnectionID] = &conn
	out := conn
	return &out, nil
}

func (f *fakeStore) AcceptConnection(ctx context.Context, connectionID, actorID string) (*models.Connection, error) {
	return f.answer(connectionID, actorID, models.StatusAccepted, f.failAccept)
}

func (f *fakeStore) DeclineConnection(ctx context.Context, connectionID, actorID string) (*models.Connection, error) {
	return f.answer(connectionID, actorID, models.StatusDeclined, f.failDecline)
}

func (f *fakeStore) answer(connectionID, actorID, status string, fail error) (*models.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fail != nil {
		return nil, fail
	}
	conn, ok := f.connections[connectionID]
	if !ok {
		return nil, apperrors.ErrConnectionNotFound
	}
	if conn.ReceiverID != actorID {
		return nil, apperrors.ErrNotReceiver
	}
	if conn.Status != models.StatusPending {
		return nil, apperrors.ErrNotPending
	}
	f.seq++
	conn.Status = status
	conn.LastUpdated = ts(f.seq)
	out := *conn
	return &out, nil
}

func (f *fakeStore) ListPendingConnections(ctx context.Context, receiverID string) ([]models.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Connection
	for _, c := range f.connections {
		if c.ReceiverID == receiverID && c.Status == models.StatusPending {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeStore) ListAcceptedConnections(ctx context.Context, userID string) ([]models.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Connection
	for _, c := range f.connections {
		if c.Involves(userID) && c.Status == models.StatusAccepted {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeStore) ListMessages(ctx context.Context, connectionID string) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Message(nil), f.messages[connectionID]...), nil
}

func (f *fakeStore) InsertMessage(ctx context.Context, connectionID, senderID, content string) (*models.Message, error) {
	f.mu.Lock()
	block := f.blockInsert
	f.mu.Unlock()
	if block != nil {
		<-block
	}

	f.mu.Lock()
	f.insertCount++
	if f.failInsert != nil {
		err := f.failInsert
		f.mu.Unlock()
		return nil, err
	}
	f.seq++
	msg := models.Message{
		ConnectionID: connectionID,
		CreatedAt:    ts(f.seq),
		MessageID:    fmt.Sprintf("m-%d", f.seq),
		SenderID:     senderID,
		Content:      content,
	}
	f.messages[connectionID] = append(f.messages[connectionID], msg)
	publish := f.publish
	f.mu.Unlock()

	if publish != nil {
		publish(msg)
	}
	return &msg, nil
}

func (f *fakeStore) LatestMessages(ctx context.Context, connectionIDs []string) (map[string]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	latest := make(map[string]models.Message)
	for _, id := range connectionIDs {
		if msgs := f.messages[id]; len(msgs) > 0 {
			latest[id] = msgs[len(msgs)-1]
		}
	}
	return latest, nil
}

func (f *fakeStore) ProfileBriefs(ctx context.Context, userIDs []string) (map[string]models.ProfileBrief, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]models.ProfileBrief)
	for _, id := range userIDs {
		if b, ok := f.briefs[id]; ok {
			out[id] = b
		}
	}
	return out, nil
}

// fakeFeed is a manually driven Feed.
type fakeFeed struct {
	mu            sync.Mutex
	failSubscribe error
	handlers      map[string][]func(models.Message)
	cancels       int
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{handlers: make(map[string][]func(models.Message))}
}

func (f *fakeFeed) Subscribe(connectionID string, onInsert func(models.Message)) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSubscribe != nil {
		return nil, f.failSubscribe
	}
	f.handlers[connectionID] = append(f.handlers[connectionID], onInsert)
	return func() {
		f.mu.Lock()
		f.cancels++
		f.mu.Unlock()
	}, nil
}

func (f *fakeFeed) emit(m models.Message) {
	f.mu.Lock()
	handlers := append(([]func(models.Message))(nil), f.handlers[m.ConnectionID]...)
	f.mu.Unlock()
	for _, h := range handlers {
		h(m)
	}
}
