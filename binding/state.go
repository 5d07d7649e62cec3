package binding

import (
	"encoding/json"
	"sync"
)

// State is the three-valued observable snapshot of one bound operation.
// While Loading is true, Data holds the previously settled payload (if
// any) so consumers can keep rendering it.
type State struct {
	Loading bool
	Data    json.RawMessage
	Err     error
}

// Observer receives state transitions.
type Observer func(State)

// hub owns the current state and the observer set. Notification runs
// under the same lock unsubscribe takes, which is what guarantees no
// delivery after unsubscribe or close.
type hub struct {
	mu        sync.Mutex
	state     State
	observers map[int]Observer
	next      int
	closed    bool
}

// Subscribe registers an observer and returns its unsubscribe function.
// Unsubscribing twice is harmless. Subscribing after Close is a no-op.
func (h *hub) Subscribe(fn Observer) (unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return func() {}
	}
	if h.observers == nil {
		h.observers = map[int]Observer{}
	}
	id := h.next
	h.next++
	h.observers[id] = fn

	return func() {
		h.mu.Lock()
		delete(h.observers, id)
		h.mu.Unlock()
	}
}

// State returns the current snapshot.
func (h *hub) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Close drops all observers; later transitions are discarded silently.
func (h *hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.observers = nil
}

func (h *hub) publish(s State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.state = s
	for _, fn := range h.observers {
		fn(s)
	}
}
