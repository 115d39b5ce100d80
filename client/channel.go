package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"am4m_server/apperrors"
	"am4m_server/models"

	"github.com/google/uuid"
)

// DeliveryStatus tags each displayed message. Confirmed rows are "sent";
// a locally originated message passes through "sending" and ends in
// exactly one of "sent" or "failed".
type DeliveryStatus string

const (
	DeliverySending DeliveryStatus = "sending"
	DeliverySent    DeliveryStatus = "sent"
	DeliveryFailed  DeliveryStatus = "failed"
)

// ChatMessage is one thread entry: the (possibly still unconfirmed)
// message plus its delivery tag. ClientID is set only for messages that
// originated locally as shadows.
type ChatMessage struct {
	models.Message
	ClientID string
	Delivery DeliveryStatus
}

// ChannelState is the per-thread lifecycle: idle until a thread is
// opened, loading while history is in flight, ready afterwards.
type ChannelState string

const (
	StateIdle    ChannelState = "idle"
	StateLoading ChannelState = "loading"
	StateReady   ChannelState = "ready"
)

// DefaultPollInterval is the fallback re-fetch cadence used while the
// live feed has not yet been confirmed.
const DefaultPollInterval = 8 * time.Second

// Channel manages the open conversation thread: history load, the live
// insert feed with a polling backstop, and optimistic sends with
// replace-in-place reconciliation. Switching threads tears down the
// previous feed subscription and poller, and an epoch counter discards
// any late results still in flight for the old thread.
type Channel struct {
	store   Store
	feed    Feed
	session Session

	// PollInterval overrides DefaultPollInterval when positive.
	PollInterval time.Duration

	mu           sync.Mutex
	state        ChannelState
	connectionID string
	epoch        int
	messages     []ChatMessage
	drafts       map[string]string
	lastErr      error
	unsubscribe  func()
	pollStop     chan struct{}
	feedLive     bool

	onChange      func()
	detachSession func()
}

func NewChannel(store Store, feed Feed, session Session) *Channel {
	c := &Channel{
		store:   store,
		feed:    feed,
		session: session,
		state:   StateIdle,
		drafts:  make(map[string]string),
	}
	c.detachSession = session.OnChange(func(userID string) {
		if userID == "" {
			c.Close()
		}
	})
	return c
}

// OnChange registers a single observer invoked (outside the lock) after
// every state mutation; the UI shell re-renders from it.
func (c *Channel) OnChange(fn func()) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

func (c *Channel) notify() {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Open switches the channel to the given conversation: tears down the
// previous thread's subscription and poller, loads the full history
// ascending, then subscribes to the live feed and starts the polling
// backstop. A stale load (the user switched again mid-flight) is
// discarded silently.
func (c *Channel) Open(ctx context.Context, connectionID string) error {
	c.mu.Lock()
	c.teardownLocked()
	c.epoch++
	epoch := c.epoch
	c.connectionID = connectionID
	c.state = StateLoading
	c.messages = nil
	c.lastErr = nil
	c.mu.Unlock()
	c.notify()

	history, err := c.store.ListMessages(ctx, connectionID)

	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		return nil
	}
	if err != nil {
		c.state = StateIdle
		c.lastErr = err
		c.mu.Unlock()
		c.notify()
		return err
	}
	msgs := make([]ChatMessage, 0, len(history))
	for _, m := range history {
		msgs = append(msgs, ChatMessage{Message: m, Delivery: DeliverySent})
	}
	c.messages = msgs
	c.state = StateReady
	c.mu.Unlock()

	cancel, subErr := c.feed.Subscribe(connectionID, func(m models.Message) {
		c.handleFeedInsert(epoch, m)
	})

	stop := make(chan struct{})
	c.mu.Lock()
	if epoch != c.epoch {
		c.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		return nil
	}
	if subErr == nil {
		c.unsubscribe = cancel
	}
	// The poller runs regardless; a confirmed live feed suppresses it.
	c.pollStop = stop
	c.mu.Unlock()
	go c.pollLoop(epoch, connectionID, stop)

	c.notify()
	return nil
}

// Close tears down the open thread and returns the channel to idle.
func (c *Channel) Close() {
	c.mu.Lock()
	c.teardownLocked()
	c.epoch++
	c.connectionID = ""
	c.state = StateIdle
	c.messages = nil
	c.mu.Unlock()
	c.notify()
}

// Shutdown closes the thread and detaches the session listener.
func (c *Channel) Shutdown() {
	c.Close()
	if c.detachSession != nil {
		c.detachSession()
	}
}

func (c *Channel) teardownLocked() {
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	if c.pollStop != nil {
		close(c.pollStop)
		c.pollStop = nil
	}
	c.feedLive = false
}

// State returns the thread lifecycle state.
func (c *Channel) State() ChannelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ConnectionID returns the open thread id, or "" when idle.
func (c *Channel) ConnectionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connectionID
}

// Err returns the last surfaced error, if any.
func (c *Channel) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Messages returns a copy of the displayed thread.
func (c *Channel) Messages() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]ChatMessage(nil), c.messages...)
}

// Draft returns the compose text for the open thread. Drafts are kept
// per conversation so switching threads never loses typed text.
func (c *Channel) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drafts[c.connectionID]
}

// SetDraft records the compose text for the open thread.
func (c *Channel) SetDraft(text string) {
	c.mu.Lock()
	if c.connectionID != "" {
		c.drafts[c.connectionID] = text
	}
	c.mu.Unlock()
}

// Send posts the current draft: a "sending" shadow appears in the thread
// immediately and the draft clears; the remote insert resolves the
// shadow to sent (replaced in place by the authoritative row) or failed
// (draft restored for retry). Blank drafts are rejected locally. The
// returned client id identifies the shadow.
func (c *Channel) Send(ctx context.Context) (string, error) {
	senderID := c.session.UserID()
	if senderID == "" {
		return "", apperrors.Forbidden("sign in to send messages")
	}

	c.mu.Lock()
	if c.state != StateReady || c.connectionID == "" {
		c.mu.Unlock()
		return "", apperrors.InvalidArg("no conversation is open")
	}
	text := strings.TrimSpace(c.drafts[c.connectionID])
	if text == "" {
		c.mu.Unlock()
		return "", apperrors.ErrEmptyMessage
	}
	c.drafts[c.connectionID] = ""
	// Capture the thread and append the shadow in the same critical
	// section, so a concurrent Open cannot slip between draft claim and
	// shadow append and route the text into the wrong thread.
	connectionID := c.connectionID
	epoch := c.epoch
	clientID := c.appendShadowLocked(connectionID, senderID, text)
	c.mu.Unlock()
	c.notify()

	go c.deliver(ctx, epoch, connectionID, clientID, senderID, text)
	return clientID, nil
}

// Retry re-drives a failed shadow: the failed bubble is replaced by a
// fresh "sending" shadow carrying the same text.
func (c *Channel) Retry(ctx context.Context, clientID string) (string, error) {
	c.mu.Lock()
	idx := -1
	for i, m := range c.messages {
		if m.ClientID == clientID && m.Delivery == DeliveryFailed {
			idx = i
			break
		}
	}
	if idx < 0 {
		c.mu.Unlock()
		return "", apperrors.NotFound("no failed message to retry")
	}
	shadow := c.messages[idx]
	c.messages = append(c.messages[:idx:idx], c.messages[idx+1:]...)
	connectionID := c.connectionID
	epoch := c.epoch
	newID := c.appendShadowLocked(connectionID, shadow.SenderID, shadow.Content)
	c.mu.Unlock()
	c.notify()

	go c.deliver(ctx, epoch, connectionID, newID, shadow.SenderID, shadow.Content)
	return newID, nil
}

func (c *Channel) appendShadowLocked(connectionID, senderID, text string) string {
	clientID := "local-" + uuid.New().String()
	c.messages = append(c.messages, ChatMessage{
		Message: models.Message{
			ConnectionID: connectionID,
			CreatedAt:    models.NowTimestamp(),
			SenderID:     senderID,
			Content:      text,
		},
		ClientID: clientID,
		Delivery: DeliverySending,
	})
	return clientID
}

func (c *Channel) deliver(ctx context.Context, epoch int, connectionID, clientID, senderID, text string) {
	inserted, err := c.store.InsertMessage(ctx, connectionID, senderID, text)

	c.mu.Lock()
	if epoch != c.epoch {
		// Thread switched mid-send; the shadow is already gone.
		c.mu.Unlock()
		return
	}
	if err != nil {
		for i := range c.messages {
			if c.messages[i].ClientID == clientID {
				c.messages[i].Delivery = DeliveryFailed
				break
			}
		}
		c.drafts[connectionID] = text
		c.lastErr = err
		c.mu.Unlock()
		c.notify()
		return
	}
	c.resolveShadowLocked(clientID, *inserted)
	c.mu.Unlock()
	c.notify()
}

// resolveShadowLocked settles the direct-insert result. When the feed
// (or a poll) already reconciled the shadow, the id-based dedupe in
// applyServerRowLocked keeps the thread at exactly one entry.
func (c *Channel) resolveShadowLocked(clientID string, row models.Message) {
	for i := range c.messages {
		if c.messages[i].ClientID == clientID && c.messages[i].Delivery == DeliverySending {
			c.messages[i].Message = row
			c.messages[i].Delivery = DeliverySent
			return
		}
	}
	c.applyServerRowLocked(row)
}

func (c *Channel) handleFeedInsert(epoch int, m models.Message) {
	c.mu.Lock()
	if epoch != c.epoch || m.ConnectionID != c.connectionID {
		c.mu.Unlock()
		return
	}
	c.feedLive = true
	c.applyServerRowLocked(m)
	c.mu.Unlock()
	c.notify()
}

// applyServerRowLocked folds one authoritative row into the thread:
// drop if the id is already displayed, otherwise replace a matching
// in-flight shadow in place (same sender and text), otherwise append.
func (c *Channel) applyServerRowLocked(m models.Message) {
	for i := range c.messages {
		if m.MessageID != "" && c.messages[i].MessageID == m.MessageID {
			return
		}
	}
	for i := range c.messages {
		if c.messages[i].Delivery == DeliverySending &&
			c.messages[i].SenderID == m.SenderID &&
			c.messages[i].Content == m.Content {
			c.messages[i].Message = m
			c.messages[i].Delivery = DeliverySent
			return
		}
	}
	c.messages = append(c.messages, ChatMessage{Message: m, Delivery: DeliverySent})
}

func (c *Channel) pollLoop(epoch int, connectionID string, stop chan struct{}) {
	interval := c.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			stale := epoch != c.epoch
			live := c.feedLive
			c.mu.Unlock()
			if stale {
				return
			}
			if live {
				// Feed confirmed; polling would only race it.
				continue
			}

			rows, err := c.store.ListMessages(context.Background(), connectionID)
			if err != nil {
				continue
			}
			if c.mergePoll(epoch, rows) {
				c.notify()
			}
		}
	}
}

// mergePoll replaces the thread with the authoritative rows while
// preserving local sending/failed shadows that the store has not echoed
// back yet. Returns false when the result was stale.
func (c *Channel) mergePoll(epoch int, rows []models.Message) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch || c.state != StateReady {
		return false
	}

	// Only rows not already displayed can absorb an in-flight shadow,
	// and each such row absorbs at most one. Two identical sends keep
	// two bubbles until the store has echoed both.
	echoed := make(map[string]int, len(rows))
	merged := make([]ChatMessage, 0, len(rows)+2)
	for _, r := range rows {
		echoed[r.SenderID+"\x00"+r.Content]++
		merged = append(merged, ChatMessage{Message: r, Delivery: DeliverySent})
	}
	for _, m := range c.messages {
		if m.Delivery == DeliverySent {
			if key := m.SenderID + "\x00" + m.Content; echoed[key] > 0 {
				echoed[key]--
			}
		}
	}
	for _, m := range c.messages {
		if m.ClientID == "" || m.Delivery == DeliverySent {
			continue
		}
		if m.Delivery == DeliverySending {
			key := m.SenderID + "\x00" + m.Content
			if echoed[key] > 0 {
				// Already echoed back by the store; the direct-insert
				// resolution will dedupe by message id.
				echoed[key]--
				continue
			}
		}
		merged = append(merged, m)
	}
	c.messages = merged
	return true
}
