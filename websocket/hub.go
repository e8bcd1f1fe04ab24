package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

const EventPong = "pong"

type Hub struct {
	userConns  map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
	logger     *slog.Logger
}

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

type ClientMessage struct {
	Action string `json:"action"`
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		userConns:  make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run owns client registration until ctx is cancelled, then closes every
// remaining connection's send queue.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.userConns[client.UserID] == nil {
				h.userConns[client.UserID] = make(map[*Client]bool)
			}
			h.userConns[client.UserID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.remove(client)

		case <-ctx.Done():
			h.mu.Lock()
			for userID, clients := range h.userConns {
				for client := range clients {
					close(client.Send)
				}
				delete(h.userConns, userID)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.userConns[client.UserID]
	if !clients[client] {
		return
	}
	delete(clients, client)
	if len(clients) == 0 {
		delete(h.userConns, client.UserID)
	}
	close(client.Send)
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.Send)
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// SendToUser queues msg on every connection of userID. A connection whose
// queue is full is dropped.
func (h *Hub) SendToUser(userID string, msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("marshal websocket message failed", slog.String("event", msg.Event), slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	var slow []*Client
	for client := range h.userConns[userID] {
		select {
		case client.Send <- data:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		go h.Unregister(client)
	}
}

// sendToClient queues data on one connection if it is still registered.
func (h *Hub) sendToClient(client *Client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.userConns[client.UserID][client] {
		return
	}
	select {
	case client.Send <- data:
	default:
	}
}

// Notify implements the services notifier.
func (h *Hub) Notify(userID, event string, data interface{}) {
	h.SendToUser(userID, &Message{Event: event, Data: data})
}

func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userConns[userID]) > 0
}
