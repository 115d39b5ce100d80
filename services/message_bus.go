package services

import (
	"sync"

	"am4m_server/models"
)

// MessageBus fans newly stored messages out to in-process subscribers
// scoped by connection id: the socket server bridges events into rooms,
// and the client core consumes it as its realtime feed.
type MessageBus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[string]map[int]func(models.Message)
	all    map[int]func(models.Message)
}

func NewMessageBus() *MessageBus {
	return &MessageBus{
		subs: make(map[string]map[int]func(models.Message)),
		all:  make(map[int]func(models.Message)),
	}
}

// Subscribe registers a handler for inserts on one connection id and
// returns a cancel func. Cancel is idempotent.
func (b *MessageBus) Subscribe(connectionID string, handler func(models.Message)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	if b.subs[connectionID] == nil {
		b.subs[connectionID] = make(map[int]func(models.Message))
	}
	b.subs[connectionID][id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[connectionID], id)
			if len(b.subs[connectionID]) == 0 {
				delete(b.subs, connectionID)
			}
		})
	}
}

// SubscribeAll registers a handler for inserts on every connection; the
// socket server uses it to mirror inserts into per-connection rooms.
func (b *MessageBus) SubscribeAll(handler func(models.Message)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.all[id] = handler

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.all, id)
		})
	}
}

// Publish delivers a stored message to every subscriber of its connection.
// Handlers run synchronously on the publisher's goroutine.
func (b *MessageBus) Publish(msg models.Message) {
	b.mu.RLock()
	handlers := make([]func(models.Message), 0, len(b.subs[msg.ConnectionID])+len(b.all))
	for _, h := range b.subs[msg.ConnectionID] {
		handlers = append(handlers, h)
	}
	for _, h := range b.all {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(msg)
	}
}
