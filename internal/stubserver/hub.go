package stubserver

import "sync"

// hub fans formatted SSE events out to every client attached to a
// conversation's stream.
type hub struct {
	mu   sync.Mutex
	subs map[string]map[chan string]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[string]map[chan string]struct{})}
}

// subscribe attaches a listener to conversationID and returns its event
// channel plus a detach function.
func (h *hub) subscribe(conversationID string) (<-chan string, func()) {
	ch := make(chan string, 64)

	h.mu.Lock()
	if h.subs[conversationID] == nil {
		h.subs[conversationID] = make(map[chan string]struct{})
	}
	h.subs[conversationID][ch] = struct{}{}
	h.mu.Unlock()

	unsub := func() {
		h.mu.Lock()
		delete(h.subs[conversationID], ch)
		h.mu.Unlock()
	}
	return ch, unsub
}

// publish sends an event to every listener; a slow listener's full
// buffer drops the event instead of blocking generation.
func (h *hub) publish(conversationID, event string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[conversationID] {
		select {
		case ch <- event:
		default:
		}
	}
}
