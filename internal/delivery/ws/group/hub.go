package ws_group

import (
	"log/slog"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type EventType string

const (
	RoundCreated       EventType = "round_created"
	VoteCast           EventType = "vote_cast"
	RoundStatusChanged EventType = "round_status_changed"
	RatingSubmitted    EventType = "rating_submitted"
)

type Event struct {
	Type    EventType      `json:"type"`
	GroupID uuid.UUID      `json:"group_id"`
	Data    map[string]any `json:"data,omitempty"`
}

type Client struct {
	Hub     *Hub
	Conn    *websocket.Conn
	Send    chan []byte
	GroupID uuid.UUID
}

const sendBuffer = 256

func NewClient(hub *Hub, conn *websocket.Conn, groupID uuid.UUID) *Client {
	return &Client{
		Hub:     hub,
		Conn:    conn,
		Send:    make(chan []byte, sendBuffer),
		GroupID: groupID,
	}
}

type Hub struct {
	mu sync.Mutex

	// Connected clients per household
	groups map[uuid.UUID]map[*Client]struct{}

	logger *slog.Logger
}

func New(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		groups: make(map[uuid.UUID]map[*Client]struct{}),
		logger: logger,
	}
}

func (h *Hub) RegisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.groups[client.GroupID]; !ok {
		h.groups[client.GroupID] = make(map[*Client]struct{})
	}
	h.groups[client.GroupID][client] = struct{}{}

	h.logger.Info("client registered", slog.String("group_id", client.GroupID.String()))
}

// RemoveClient drops the client and closes its send channel, which stops the writer.
// Removing an unknown client is a no-op.
func (h *Hub) RemoveClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.drop(client) {
		h.logger.Info("client unregistered", slog.String("group_id", client.GroupID.String()))
	}
}

// drop must be called with mu held.
func (h *Hub) drop(client *Client) bool {
	clients, ok := h.groups[client.GroupID]
	if !ok {
		return false
	}
	if _, ok := clients[client]; !ok {
		return false
	}
	delete(clients, client)
	close(client.Send)
	if len(clients) == 0 {
		delete(h.groups, client.GroupID)
	}
	return true
}

// Broadcast fans an event out to every client of the group. Slow clients whose
// buffer is full are disconnected instead of blocking the caller.
func (h *Hub) Broadcast(groupID uuid.UUID, eventType EventType, data map[string]any) {
	payload, err := json.Marshal(Event{Type: eventType, GroupID: groupID, Data: data})
	if err != nil {
		h.logger.Error("failed to encode event", slog.String("type", string(eventType)), slog.String("error", err.Error()))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.groups[groupID] {
		select {
		case client.Send <- payload:
		default:
			h.logger.Warn("dropping slow client", slog.String("group_id", groupID.String()))
			h.drop(client)
		}
	}
}

// ClientCount reports how many clients listen on the group.
func (h *Hub) ClientCount(groupID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.groups[groupID])
}

// StartClientReading discards inbound frames and unregisters the client once
// the connection fails.
func (h *Hub) StartClientReading(client *Client) {
	defer func() {
		h.RemoveClient(client)
		client.Conn.Close()
	}()

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (h *Hub) StartClientWriting(client *Client) {
	defer client.Conn.Close()

	for message := range client.Send {
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			break
		}
	}
}
