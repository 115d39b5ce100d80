package client

import "sync"

// SessionHub is a Session implementation fed by the auth boundary:
// the shell calls SetUserID on login/logout and every registered
// component observes the change.
type SessionHub struct {
	mu     sync.Mutex
	userID string
	nextID int
	subs   map[int]func(string)
}

func NewSessionHub() *SessionHub {
	return &SessionHub{subs: make(map[int]func(string))}
}

func (h *SessionHub) UserID() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.userID
}

// SetUserID records a login ("" means logout) and notifies listeners.
func (h *SessionHub) SetUserID(userID string) {
	h.mu.Lock()
	if h.userID == userID {
		h.mu.Unlock()
		return
	}
	h.userID = userID
	listeners := make([]func(string), 0, len(h.subs))
	for _, fn := range h.subs {
		listeners = append(listeners, fn)
	}
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(userID)
	}
}

func (h *SessionHub) OnChange(fn func(string)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	h.subs[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}
