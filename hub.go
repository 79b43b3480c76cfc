package main

import "sync"

// Receiver is the hub's view of a connection: an identity and a non-blocking
// delivery sink. Tests substitute fakes the same way the tickers are fed.
type Receiver interface {
	PlayerID() string
	Deliver(line string)
	closeSend()
}

// Hub is the broadcast roster. Delivery is a non-blocking enqueue onto each
// client's outbound channel: a slow or broken client drops the message and
// never blocks, fails, or tears down anyone else — teardown is driven solely
// by the owning read pump.
type Hub struct {
	mu      sync.RWMutex
	clients map[Receiver]struct{}

	metrics *Metrics
}

// NewHub creates an empty roster.
func NewHub(metrics *Metrics) *Hub {
	return &Hub{
		clients: make(map[Receiver]struct{}),
		metrics: metrics,
	}
}

// Register adds a connection to the roster.
func (h *Hub) Register(r Receiver) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[r] = struct{}{}
	h.metrics.IncConnect()
}

// Unregister removes a connection and closes its outbound channel, which
// terminates the write pump. Holding the write lock here excludes concurrent
// broadcasts, so nothing delivers onto the closed channel.
func (h *Hub) Unregister(r Receiver) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[r]; !ok {
		return
	}
	delete(h.clients, r)
	r.closeSend()
	h.metrics.IncDisconnect()
}

// Broadcast delivers a line to every client with an initialized player id.
func (h *Hub) Broadcast(line string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for r := range h.clients {
		if r.PlayerID() == "" {
			continue
		}
		r.Deliver(line)
	}
	h.metrics.IncBroadcast()
}

// BroadcastExcept delivers a line to everyone but the named player.
func (h *Hub) BroadcastExcept(line, playerID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for r := range h.clients {
		if r.PlayerID() == "" || r.PlayerID() == playerID {
			continue
		}
		r.Deliver(line)
	}
	h.metrics.IncBroadcast()
}

// AnyReceiver returns an arbitrary registered connection with a player id, or
// nil. Used for host promotion after the previous host disconnects.
func (h *Hub) AnyReceiver() Receiver {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for r := range h.clients {
		if r.PlayerID() != "" {
			return r
		}
	}
	return nil
}

// ClientCount returns the roster size.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
