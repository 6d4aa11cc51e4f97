package ws

import (
	"encoding/json"
	"log/slog"
	"sync"

	"webstore/entity"
)

// ClientMessageHandler handles incoming WebSocket messages from admin clients.
type ClientMessageHandler interface {
	HandleMarkRead(readerID, conversationID string) error
}

// Event represents a WebSocket event pushed to admin clients.
type Event struct {
	Type string      `json:"type"` // "new_message", "conversation_started", "read_receipt"
	Data interface{} `json:"data"`
}

// Hub maintains the set of active WebSocket clients and broadcasts
// support-chat events to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan *Event
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	handler    ClientMessageHandler
	log        *slog.Logger
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan *Event, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		log:        log,
	}
}

// SetHandler sets the handler for incoming client messages.
func (h *Hub) SetHandler(handler ClientMessageHandler) {
	h.handler = handler
}

// Run starts the hub's event loop. Should be called in a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				continue
			}
			// write lock: slow clients are dropped from the map here
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastMessage pushes a new chat message to all connected admin clients.
func (h *Hub) BroadcastMessage(msg entity.MessageView) {
	h.broadcast <- &Event{
		Type: "new_message",
		Data: msg,
	}
}

// BroadcastConversationStarted announces a new support thread.
func (h *Hub) BroadcastConversationStarted(conversation entity.Conversation) {
	h.broadcast <- &Event{
		Type: "conversation_started",
		Data: conversation,
	}
}

// BroadcastReadReceipt announces that a reader caught up on a conversation.
func (h *Hub) BroadcastReadReceipt(readerID, conversationID string) {
	h.broadcast <- &Event{
		Type: "read_receipt",
		Data: map[string]string{
			"reader_id":       readerID,
			"conversation_id": conversationID,
		},
	}
}

// clientEvent represents an incoming WebSocket message from an admin client.
type clientEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// HandleClientMessage parses and dispatches an incoming message from a client.
func (h *Hub) HandleClientMessage(readerID string, raw []byte) {
	if h.handler == nil {
		return
	}

	var event clientEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		if h.log != nil {
			h.log.Warn("failed to parse client ws message", slog.String("error", err.Error()))
		}
		return
	}

	switch event.Type {
	case "mark_read":
		var data struct {
			ConversationID string `json:"conversation_id"`
		}
		if err := json.Unmarshal(event.Data, &data); err != nil {
			if h.log != nil {
				h.log.Warn("failed to parse mark_read data", slog.String("error", err.Error()))
			}
			return
		}
		if data.ConversationID == "" {
			return
		}
		if err := h.handler.HandleMarkRead(readerID, data.ConversationID); err != nil {
			if h.log != nil {
				h.log.Error("failed to handle mark_read",
					slog.String("reader_id", readerID),
					slog.String("conversation_id", data.ConversationID),
					slog.String("error", err.Error()),
				)
			}
		}
	}
}
