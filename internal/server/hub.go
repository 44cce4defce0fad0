package server

import (
	"context"
	"log/slog"
	"sync"
)

// Event is one notification for all open windows.
type Event struct {
	Channel string `json:"channel"`
	Args    []any  `json:"args"`
}

// Hub fans events out to every subscribed window. Delivery is best effort:
// a subscriber whose buffer is full misses the event.
type Hub struct {
	clients    map[chan Event]bool
	broadcast  chan Event
	register   chan chan Event
	unregister chan chan Event
	done       chan struct{}
	mu         sync.RWMutex
	logger     *slog.Logger
}

// NewHub creates a new hub. Call Run to start delivering.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}

	return &Hub{
		clients:    make(map[chan Event]bool),
		broadcast:  make(chan Event, 100),
		register:   make(chan chan Event),
		unregister: make(chan chan Event),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run starts the hub's event loop and returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		h.mu.Lock()
		for client := range h.clients {
			delete(h.clients, client)
			close(client)
		}
		h.mu.Unlock()

		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Debug("window subscribed", "total", h.ClientCount())

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client)
			}
			h.mu.Unlock()
			h.logger.Debug("window unsubscribed", "total", h.ClientCount())

		case event := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client <- event:
				default:
					h.logger.Warn("window buffer full, dropping event", "channel", event.Channel)
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Send queues an event for all windows. It never blocks.
func (h *Hub) Send(channel string, args ...any) {
	select {
	case h.broadcast <- Event{Channel: channel, Args: args}:
	default:
		h.logger.Warn("broadcast channel full, dropping event", "channel", channel)
	}
}

// Subscribe registers a new window. The returned channel is closed on
// Unsubscribe or when the hub stops; ok is false if the hub already stopped.
func (h *Hub) Subscribe(buffer int) (chan Event, bool) {
	client := make(chan Event, buffer)

	select {
	case h.register <- client:
		return client, true
	case <-h.done:
		return nil, false
	}
}

// Unsubscribe removes a window.
func (h *Hub) Unsubscribe(client chan Event) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientCount returns the number of subscribed windows
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
