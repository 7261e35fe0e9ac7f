package events

import "sync"

const subscriberBuffer = 16

// Hub fans events out to SSE subscribers. Slow subscribers miss events
// rather than block publishers.
type Hub struct {
	mu      sync.Mutex
	clients map[chan string]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan string]struct{})}
}

func (h *Hub) Subscribe() chan string {
	ch := make(chan string, subscriberBuffer)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan string) {
	h.mu.Lock()
	if _, ok := h.clients[ch]; ok {
		delete(h.clients, ch)
		close(ch)
	}
	h.mu.Unlock()
}

// Publish returns how many subscribers received evt.
func (h *Hub) Publish(evt string) int {
	if h == nil {
		return 0
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for ch := range h.clients {
		select {
		case ch <- evt:
			sent++
		default:
		}
	}
	return sent
}
